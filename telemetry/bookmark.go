package telemetry

import (
	"fmt"
	"log/slog"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkTurnedLush   BookmarkType = "turned_lush"
	BookmarkTurnedBarren BookmarkType = "turned_barren"
	BookmarkBloomWave    BookmarkType = "bloom_wave"
	BookmarkMassFade     BookmarkType = "mass_fade"
	BookmarkEmptyGarden  BookmarkType = "empty_garden"
)

// PolarityThreshold is the |level| the garden must reach before it counts as
// lush or barren.
const PolarityThreshold = 0.5

// Bookmark marks a notable moment on the timeline.
type Bookmark struct {
	Type        BookmarkType `csv:"type"`
	Frame       int          `csv:"frame"`
	Time        string       `csv:"time"`
	Description string       `csv:"description"`
}

// LogBookmark logs the bookmark using slog.
func (b Bookmark) LogBookmark(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("bookmark",
		"type", string(b.Type),
		"frame", b.Frame,
		"time", b.Time,
		"description", b.Description,
	)
}

// BookmarkDetector detects notable moments from a stream of FrameStats.
type BookmarkDetector struct {
	// Rolling history (circular buffer)
	history     []FrameStats
	historySize int
	historyIdx  int
	historyFull bool

	polarity    int // last polarity the garden settled in: -1 lush, +1 barren
	sawOrganism bool
}

// NewBookmarkDetector creates a detector with the given history size.
func NewBookmarkDetector(historySize int) *BookmarkDetector {
	if historySize < 3 {
		historySize = 3
	}
	return &BookmarkDetector{
		history:     make([]FrameStats, historySize),
		historySize: historySize,
	}
}

// Check analyzes the latest stats and returns any triggered bookmarks.
func (bd *BookmarkDetector) Check(stats FrameStats) []Bookmark {
	var bookmarks []Bookmark
	add := func(b *Bookmark) {
		if b != nil {
			b.Frame, b.Time = stats.Frame, stats.Time
			bookmarks = append(bookmarks, *b)
		}
	}

	add(bd.checkPolarity(stats))
	add(bd.checkWave(stats, BookmarkBloomWave, func(s FrameStats) int { return s.Appeared }, "appeared"))
	add(bd.checkWave(stats, BookmarkMassFade, func(s FrameStats) int { return s.Faded }, "faded"))
	add(bd.checkEmpty(stats))

	bd.addToHistory(stats)
	return bookmarks
}

func (bd *BookmarkDetector) addToHistory(stats FrameStats) {
	bd.history[bd.historyIdx] = stats
	bd.historyIdx = (bd.historyIdx + 1) % bd.historySize
	if bd.historyIdx == 0 {
		bd.historyFull = true
	}
}

func (bd *BookmarkDetector) getHistory() []FrameStats {
	if bd.historyFull {
		return bd.history
	}
	return bd.history[:bd.historyIdx]
}

func (bd *BookmarkDetector) checkPolarity(stats FrameStats) *Bookmark {
	var p int
	switch {
	case stats.Level <= -PolarityThreshold:
		p = -1
	case stats.Level >= PolarityThreshold:
		p = 1
	default:
		return nil
	}
	if p == bd.polarity {
		return nil
	}
	bd.polarity = p

	if p < 0 {
		return &Bookmark{
			Type:        BookmarkTurnedLush,
			Description: fmt.Sprintf("Garden level fell to %.2f", stats.Level),
		}
	}
	return &Bookmark{
		Type:        BookmarkTurnedBarren,
		Description: fmt.Sprintf("Garden level rose to %.2f", stats.Level),
	}
}

// checkWave fires when a per-frame event count exceeds twice its rolling
// average and at least three events happened.
func (bd *BookmarkDetector) checkWave(stats FrameStats, typ BookmarkType, count func(FrameStats) int, verb string) *Bookmark {
	history := bd.getHistory()
	if len(history) < 3 {
		return nil
	}
	var total int
	for _, h := range history {
		total += count(h)
	}
	avg := float64(total) / float64(len(history))

	n := count(stats)
	if n >= 3 && float64(n) > 2*avg {
		return &Bookmark{
			Type:        typ,
			Description: fmt.Sprintf("%d organisms %s (rolling average %.1f)", n, verb, avg),
		}
	}
	return nil
}

func (bd *BookmarkDetector) checkEmpty(stats FrameStats) *Bookmark {
	if stats.Visible > 0 {
		bd.sawOrganism = true
		return nil
	}
	if !bd.sawOrganism {
		return nil
	}
	bd.sawOrganism = false
	return &Bookmark{
		Type:        BookmarkEmptyGarden,
		Description: "Every organism has faded",
	}
}
