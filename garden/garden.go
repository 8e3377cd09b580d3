// Package garden runs the load pipeline and per-frame evaluation of a mood
// garden: every entry is calibrated, placed and given a genome once, then
// visibility and growth are re-derived from the clock on every frame.
package garden

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/pthm-cable/garden/calibrate"
	"github.com/pthm-cable/garden/components"
	"github.com/pthm-cable/garden/config"
	"github.com/pthm-cable/garden/growth"
	"github.com/pthm-cable/garden/layout"
	"github.com/pthm-cable/garden/lifecycle"
	"github.com/pthm-cable/garden/shape"
	"github.com/pthm-cable/garden/telemetry"
	"github.com/pthm-cable/garden/traits"
)

var (
	ErrNoEntries      = errors.New("garden: no entries")
	ErrEmptyID        = errors.New("garden: entry has empty id")
	ErrDuplicateEntry = errors.New("garden: duplicate entry id")
)

// RenderItem is everything a renderer needs to draw one visible organism.
type RenderItem struct {
	EntryID   string
	Index     int // position in Entries()
	Type      components.OrganismType
	Placement components.Placement
	Genome    traits.Genome
	Scale     float64
	Opacity   float64
	Growth    growth.State
}

// Garden holds the immutable load-time results and the frame loop state.
type Garden struct {
	cfg    *config.Config
	logger *slog.Logger

	entries     []components.Entry
	byID        map[string]int
	percentiles []components.PercentileRecord
	layout      layout.Result
	genomes     *traits.Cache
	models      *shape.Cache

	env  *lifecycle.Index
	life lifecycle.Config
	anim *growth.Animator

	start, end time.Time

	// Frame loop state; not safe for concurrent use.
	scene     *Scene
	clock     growth.Clock
	frame     int
	perf      *telemetry.PerfCollector
	collector *telemetry.Collector
	bookmarks *telemetry.BookmarkDetector
}

// Option configures a Garden.
type Option func(*Garden)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(g *Garden) {
		if l != nil {
			g.logger = l
		}
	}
}

// New validates entries and runs the load pipeline: calibration, layout and
// genome derivation. entries must not be modified afterwards.
func New(entries []components.Entry, cfg *config.Config, opts ...Option) (*Garden, error) {
	if len(entries) == 0 {
		return nil, ErrNoEntries
	}
	if cfg == nil {
		cfg = config.Default()
	}

	g := &Garden{
		cfg:     cfg,
		logger:  slog.Default(),
		entries: entries,
		byID:    make(map[string]int, len(entries)),
	}
	for _, opt := range opts {
		opt(g)
	}

	for i, e := range entries {
		if e.ID == "" {
			return nil, fmt.Errorf("%w: entry %d", ErrEmptyID, i)
		}
		if prev, ok := g.byID[e.ID]; ok {
			return nil, fmt.Errorf("%w: %q at %d and %d", ErrDuplicateEntry, e.ID, prev, i)
		}
		g.byID[e.ID] = i
		if i == 0 || e.Timestamp.Before(g.start) {
			g.start = e.Timestamp
		}
		if i == 0 || e.Timestamp.After(g.end) {
			g.end = e.Timestamp
		}
	}

	cal := calibrate.FromConfig(cfg)
	g.percentiles = calibrate.Calibrate(entries, cal)

	lc, err := layout.FromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("layout config: %w", err)
	}
	g.layout, err = layout.Compute(entries, lc)
	if err != nil {
		return nil, fmt.Errorf("computing layout: %w", err)
	}

	g.genomes = traits.NewCache()
	for _, e := range entries {
		g.genomes.Get(e)
	}
	g.models = shape.NewCache(shape.OptionsFromConfig(cfg))

	g.life = lifecycle.FromConfig(cfg)
	g.env = lifecycle.NewIndex(entries, g.life.HalfLife)
	g.anim = growth.NewAnimator(growth.FromConfig(cfg))

	g.scene = NewScene()
	g.perf = telemetry.NewPerfCollector(cfg.Telemetry.PerfWindow)
	g.collector = telemetry.NewCollector(cfg.Telemetry.FrameLogEvery)
	g.bookmarks = telemetry.NewBookmarkDetector(10)

	g.logLoad()
	return g, nil
}

func (g *Garden) logLoad() {
	g.logger.Info("garden loaded",
		"entries", len(g.entries),
		"start", g.start,
		"end", g.end,
		"layout", g.layout,
	)
	if g.layout.Residual > 0 {
		g.logger.Warn("layout left overlaps",
			"residual", g.layout.Residual,
			"max_penetration", g.layout.MaxPenetration,
			"iterations", g.layout.Iterations,
		)
	}
	summary := calibrate.Summary(g.entries, g.percentiles)
	for t := components.OrganismType(0); t < components.NumOrganismTypes; t++ {
		if s, ok := summary[t]; ok {
			g.logger.Debug("calibration", "type", t.String(), "scales", s)
		}
	}
}

// Config returns the configuration the garden was built with.
func (g *Garden) Config() *config.Config { return g.cfg }

// Entries returns the entries in input order. The slice must not be modified.
func (g *Garden) Entries() []components.Entry { return g.entries }

// Placements returns the layout in input order.
func (g *Garden) Placements() []components.Placement { return g.layout.Placements }

// Layout returns the full layout result including relaxation diagnostics.
func (g *Garden) Layout() layout.Result { return g.layout }

// Percentiles returns the calibration records in input order.
func (g *Garden) Percentiles() []components.PercentileRecord { return g.percentiles }

// Span returns the earliest and latest entry timestamps.
func (g *Garden) Span() (start, end time.Time) { return g.start, g.end }

// Scene returns the live organism scene updated by Frame.
func (g *Garden) Scene() *Scene { return g.scene }

// Lookup returns the input index of an entry.
func (g *Garden) Lookup(id string) (int, bool) {
	i, ok := g.byID[id]
	return i, ok
}

// Genome returns the cached genome of an entry.
func (g *Garden) Genome(id string) (traits.Genome, bool) {
	return g.genomes.Lookup(id)
}

// Model returns the shared, read-only geometry of an entry. Entries whose
// genomes are equal share one model.
func (g *Garden) Model(id string) (*shape.Model, bool) {
	gen, ok := g.genomes.Lookup(id)
	if !ok {
		return nil, false
	}
	return g.models.Get(gen), true
}

// ModelCache exposes model cache counters.
func (g *Garden) ModelCache() *shape.Cache { return g.models }

// Level returns the garden level at t.
func (g *Garden) Level(t time.Time) float64 {
	return g.env.Level(t)
}

// Visibility returns the presence of one entry at t, with growth progress
// filled in.
func (g *Garden) Visibility(id string, t time.Time, scrubRate float64) (components.Visibility, bool) {
	i, ok := g.byID[id]
	if !ok {
		return components.Visibility{}, false
	}
	e := g.entries[i]
	v := lifecycle.Visibility(e, t, g.env.Level(t), g.life)
	if v.Visible {
		v.GrowthProgress = g.anim.Evaluate(e.Timestamp, t, scrubRate).Progress
	}
	return v, true
}
