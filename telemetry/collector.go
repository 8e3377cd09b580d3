package telemetry

import (
	"time"

	"github.com/pthm-cable/garden/components"
)

// Sample is the per-organism data a frame contributes to its statistics.
type Sample struct {
	Type     components.OrganismType
	Opacity  float64
	Scale    float64
	Progress float64 // growth progress
	Snapped  bool
}

// Collector accumulates scene events between logged frames and produces
// FrameStats. It is not safe for concurrent use.
type Collector struct {
	every     int
	lastFlush int
	flushed   bool

	appeared int
	faded    int
	unborn   int
}

// NewCollector creates a collector that flushes every n frames.
func NewCollector(every int) *Collector {
	if every < 1 {
		every = 1
	}
	return &Collector{every: every}
}

// RecordAppear records an organism entering the scene.
func (c *Collector) RecordAppear() {
	c.appeared++
}

// RecordFade records an organism leaving the scene at the end of its life.
func (c *Collector) RecordFade() {
	c.faded++
}

// RecordUnborn records an organism removed because the clock moved before
// its birth.
func (c *Collector) RecordUnborn() {
	c.unborn++
}

// ShouldFlush reports whether frame is due to be logged. The first frame
// always is.
func (c *Collector) ShouldFlush(frame int) bool {
	return !c.flushed || frame-c.lastFlush >= c.every
}

// Flush produces the stats for a frame and resets the event counters.
func (c *Collector) Flush(frame int, t time.Time, level, scrubRate float64, samples []Sample) FrameStats {
	s := FrameStats{
		Frame:     frame,
		Time:      t.UTC().Format(time.RFC3339),
		ScrubRate: scrubRate,
		Level:     level,
		Visible:   len(samples),
		Appeared:  c.appeared,
		Faded:     c.faded,
		Unborn:    c.unborn,
	}

	opacities := make([]float64, len(samples))
	scales := make([]float64, len(samples))
	for i, smp := range samples {
		opacities[i] = smp.Opacity
		scales[i] = smp.Scale
		switch smp.Type {
		case components.Bloom:
			s.Blooms++
		case components.Sprout:
			s.Sprouts++
		case components.Remnant:
			s.Remnants++
		}
		if smp.Snapped {
			s.Snapped++
		} else if smp.Progress < 1 {
			s.Growing++
		}
	}
	s.OpacityMean, s.OpacityP10, s.OpacityP50, s.OpacityP90 = ComputeDistribution(opacities)
	s.ScaleMean, _, _, _ = ComputeDistribution(scales)

	c.lastFlush = frame
	c.flushed = true
	c.appeared, c.faded, c.unborn = 0, 0, 0
	return s
}
