package garden

import (
	"time"

	"github.com/pthm-cable/garden/telemetry"
)

// FrameResult is the outcome of one frame of the clock.
type FrameResult struct {
	Frame     int
	Time      time.Time
	Level     float64
	ScrubRate float64
	Items     []RenderItem
	Changes   SyncResult

	// Stats is set on frames due for logging.
	Stats     *telemetry.FrameStats
	Bookmarks []telemetry.Bookmark
}

// Frame advances the clock to t after realDelta of wall time, evaluates the
// garden, syncs the scene and records telemetry.
func (g *Garden) Frame(t time.Time, realDelta time.Duration) FrameResult {
	res := FrameResult{Frame: g.frame, Time: t}
	g.frame++

	g.perf.StartFrame()

	g.perf.StartPhase(telemetry.PhaseEnvironment)
	res.ScrubRate = g.clock.Advance(t, realDelta)
	res.Level = g.env.Level(t)

	g.perf.StartPhase(telemetry.PhaseVisibility)
	res.Items = g.evaluate(t, res.Level, res.ScrubRate)

	g.perf.StartPhase(telemetry.PhaseSceneSync)
	res.Changes = g.scene.Sync(res.Items, g.entries, t)

	g.perf.StartPhase(telemetry.PhaseTelemetry)
	for i := 0; i < res.Changes.Appeared; i++ {
		g.collector.RecordAppear()
	}
	for i := 0; i < res.Changes.Faded; i++ {
		g.collector.RecordFade()
	}
	for i := 0; i < res.Changes.Unborn; i++ {
		g.collector.RecordUnborn()
	}
	if g.collector.ShouldFlush(res.Frame) {
		samples := make([]telemetry.Sample, len(res.Items))
		for i, it := range res.Items {
			samples[i] = telemetry.Sample{
				Type:     it.Type,
				Opacity:  it.Opacity,
				Scale:    it.Scale,
				Progress: it.Growth.Progress,
				Snapped:  it.Growth.Snapped,
			}
		}
		stats := g.collector.Flush(res.Frame, t, res.Level, res.ScrubRate, samples)
		res.Stats = &stats
		res.Bookmarks = g.bookmarks.Check(stats)
		g.logger.Debug("frame", "stats", stats)
		for _, b := range res.Bookmarks {
			b.LogBookmark(g.logger)
		}
	}

	g.perf.EndFrame()
	return res
}

// PerfStats returns frame timing over the rolling window.
func (g *Garden) PerfStats() telemetry.PerfStats {
	return g.perf.Stats()
}

// ResetClock forgets the previous frame so the next Frame is not treated as
// a scrub, and clears the scene.
func (g *Garden) ResetClock() {
	g.clock.Reset()
	g.scene.Reset()
}

// PlacementRecords returns the layout and calibration as CSV rows.
func (g *Garden) PlacementRecords() []telemetry.PlacementRecord {
	out := make([]telemetry.PlacementRecord, len(g.entries))
	for i, e := range g.entries {
		p := g.layout.Placements[i].Position
		out[i] = telemetry.PlacementRecord{
			EntryID:    e.ID,
			Type:       e.Type.String(),
			X:          p.X,
			Z:          p.Z,
			Percentile: g.percentiles[i].Percentile,
			Scale:      g.percentiles[i].Scale,
		}
	}
	return out
}
