package main

import (
	"log/slog"
	"time"

	"github.com/pthm-cable/garden/garden"
	"github.com/pthm-cable/garden/telemetry"
)

// sweep drives the garden clock across a time range at a fixed step, the way
// a viewer would play the timeline.
type sweep struct {
	start, end    time.Time
	step          time.Duration
	frameInterval time.Duration
	maxFrames     int
}

// run plays the sweep and returns the number of frames evaluated. A negative
// step plays the timeline backwards from end to start.
func (s sweep) run(g *garden.Garden, out *telemetry.OutputManager, logger *slog.Logger) int {
	if s.step == 0 {
		s.step = time.Hour
	}
	t, stop := s.start, s.end
	if s.step < 0 {
		t, stop = s.end, s.start
	}
	done := func(t time.Time) bool {
		if s.step > 0 {
			return t.After(stop)
		}
		return t.Before(stop)
	}

	var frames int
	for ; !done(t); t = t.Add(s.step) {
		res := g.Frame(t, s.frameInterval)
		frames++
		if res.Stats != nil {
			flush(g, out, logger, res)
		}
		if s.maxFrames > 0 && frames >= s.maxFrames {
			logger.Info("max frames reached", "frame", res.Frame)
			break
		}
	}
	return frames
}

// flush writes one logged frame and its bookmarks.
func flush(g *garden.Garden, out *telemetry.OutputManager, logger *slog.Logger, res garden.FrameResult) {
	stats := *res.Stats
	perf := g.PerfStats()
	stats.LogStats(logger)

	if err := out.WriteFrame(stats); err != nil {
		logger.Error("failed to write frame stats", "error", err)
	}
	if err := out.WritePerf(perf, res.Frame); err != nil {
		logger.Error("failed to write perf", "error", err)
	}
	for _, bm := range res.Bookmarks {
		if err := out.WriteBookmark(bm); err != nil {
			logger.Error("failed to write bookmark", "error", err)
		}
	}
}

// playbackInterval returns the real time one frame of step takes when the
// clock runs at rate simulated time per real second. Sweeping at this pace
// keeps the scrub rate at normal playback, below the growth snap threshold.
func playbackInterval(step, rate time.Duration) time.Duration {
	if rate <= 0 {
		return time.Second
	}
	if step < 0 {
		step = -step
	}
	return time.Duration(float64(time.Second) * step.Seconds() / rate.Seconds())
}
