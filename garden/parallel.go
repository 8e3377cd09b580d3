package garden

import (
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/pthm-cable/garden/lifecycle"
)

// parallelThreshold is the minimum entry count to evaluate in parallel.
// Below this, single-threaded is faster due to goroutine overhead.
const parallelThreshold = 64

// slot is the per-entry result of one evaluation, written by exactly one
// worker.
type slot struct {
	item    RenderItem
	visible bool
}

// Evaluate returns the visible organisms at t in input order. It is a pure
// function of t and scrubRate (simulated seconds per real second) and is safe
// to call concurrently.
func (g *Garden) Evaluate(t time.Time, scrubRate float64) []RenderItem {
	return g.evaluate(t, g.env.Level(t), scrubRate)
}

// evaluate computes every entry against one shared garden level.
func (g *Garden) evaluate(t time.Time, level, scrubRate float64) []RenderItem {
	n := len(g.entries)
	slots := make([]slot, n)

	if n < parallelThreshold {
		g.evaluateChunk(slots, 0, n, t, level, scrubRate)
	} else {
		workers := runtime.GOMAXPROCS(0)
		chunk := (n + workers - 1) / workers
		var eg errgroup.Group
		for start := 0; start < n; start += chunk {
			end := min(start+chunk, n)
			eg.Go(func() error {
				g.evaluateChunk(slots, start, end, t, level, scrubRate)
				return nil
			})
		}
		// Workers never fail; Wait only joins them.
		_ = eg.Wait()
	}

	items := make([]RenderItem, 0, n)
	for i := range slots {
		if slots[i].visible {
			items = append(items, slots[i].item)
		}
	}
	return items
}

func (g *Garden) evaluateChunk(slots []slot, start, end int, t time.Time, level, scrubRate float64) {
	for i := start; i < end; i++ {
		e := &g.entries[i]
		v := lifecycle.Visibility(*e, t, level, g.life)
		if !v.Visible {
			continue
		}
		gen, _ := g.genomes.Lookup(e.ID)
		slots[i] = slot{
			visible: true,
			item: RenderItem{
				EntryID:   e.ID,
				Index:     i,
				Type:      e.Type,
				Placement: g.layout.Placements[i],
				Genome:    gen,
				Scale:     g.percentiles[i].Scale,
				Opacity:   v.Opacity,
				Growth:    g.anim.Evaluate(e.Timestamp, t, scrubRate),
			},
		}
	}
}
