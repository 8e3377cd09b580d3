package telemetry

import (
	"log/slog"
	"time"
)

// Phase names for one evaluated frame.
const (
	PhaseEnvironment = "environment"
	PhaseVisibility  = "visibility"
	PhaseSceneSync   = "scene_sync"
	PhaseTelemetry   = "telemetry"
)

// phases is the frame order; these occupy the first slots of every collector.
var phases = []string{PhaseEnvironment, PhaseVisibility, PhaseSceneSync, PhaseTelemetry}

// frameRecord is one timed frame. spent is indexed by phase slot.
type frameRecord struct {
	total time.Duration
	spent []time.Duration
}

// PerfCollector keeps running sums of frame and phase time over the last
// windowSize frames. The frame loop owns it; it is not safe for concurrent use.
type PerfCollector struct {
	now func() time.Time

	slots map[string]int
	names []string

	ring  []frameRecord
	next  int
	count int

	sumTotal time.Duration
	sumSpent []time.Duration

	open    frameRecord
	opened  time.Time
	mark    time.Time
	current int // slot of the running phase, -1 when none
}

// NewPerfCollector creates a collector averaging over windowSize frames.
func NewPerfCollector(windowSize int) *PerfCollector {
	if windowSize < 1 {
		windowSize = 60
	}
	p := &PerfCollector{
		now:     time.Now,
		slots:   make(map[string]int, len(phases)),
		ring:    make([]frameRecord, windowSize),
		current: -1,
	}
	for _, name := range phases {
		p.slot(name)
	}
	return p
}

// slot returns the index for name, registering it on first use.
func (p *PerfCollector) slot(name string) int {
	if i, ok := p.slots[name]; ok {
		return i
	}
	i := len(p.names)
	p.slots[name] = i
	p.names = append(p.names, name)
	p.sumSpent = append(p.sumSpent, 0)
	return i
}

// StartFrame begins timing a new frame.
func (p *PerfCollector) StartFrame() {
	p.opened = p.now()
	p.mark = p.opened
	p.current = -1
	p.open = frameRecord{spent: make([]time.Duration, len(p.names))}
}

// StartPhase closes the running phase, if any, and starts timing phase.
func (p *PerfCollector) StartPhase(phase string) {
	p.lap()
	i := p.slot(phase)
	for len(p.open.spent) <= i {
		p.open.spent = append(p.open.spent, 0)
	}
	p.current = i
}

// lap charges the time since the last mark to the running phase.
func (p *PerfCollector) lap() {
	t := p.now()
	if p.current >= 0 {
		p.open.spent[p.current] += t.Sub(p.mark)
	}
	p.mark = t
}

// EndFrame closes the frame and folds it into the window, evicting the oldest
// frame once the window is full.
func (p *PerfCollector) EndFrame() {
	p.lap()
	p.current = -1
	p.open.total = p.mark.Sub(p.opened)

	if p.count == len(p.ring) {
		old := p.ring[p.next]
		p.sumTotal -= old.total
		for i, d := range old.spent {
			p.sumSpent[i] -= d
		}
	} else {
		p.count++
	}
	p.ring[p.next] = p.open
	p.sumTotal += p.open.total
	for i, d := range p.open.spent {
		p.sumSpent[i] += d
	}
	p.next = (p.next + 1) % len(p.ring)
	p.open = frameRecord{}
}

// PerfStats summarizes frame timing over a window.
type PerfStats struct {
	AvgFrameDuration time.Duration
	MinFrameDuration time.Duration
	MaxFrameDuration time.Duration

	PhaseAvg map[string]time.Duration
	PhasePct map[string]float64 // share of the average frame, 0..100

	FramesPerSecond float64
}

// Stats reports the window. Phases seen by the collector but idle in every
// windowed frame report zero.
func (p *PerfCollector) Stats() PerfStats {
	s := PerfStats{
		PhaseAvg: make(map[string]time.Duration, len(p.names)),
		PhasePct: make(map[string]float64, len(p.names)),
	}
	if p.count == 0 {
		return s
	}

	n := time.Duration(p.count)
	s.AvgFrameDuration = p.sumTotal / n
	s.MinFrameDuration = p.ring[0].total
	for _, r := range p.ring[:p.count] {
		s.MinFrameDuration = min(s.MinFrameDuration, r.total)
		s.MaxFrameDuration = max(s.MaxFrameDuration, r.total)
	}

	for i, name := range p.names {
		avg := p.sumSpent[i] / n
		s.PhaseAvg[name] = avg
		if s.AvgFrameDuration > 0 {
			s.PhasePct[name] = 100 * float64(avg) / float64(s.AvgFrameDuration)
		}
	}
	if s.AvgFrameDuration > 0 {
		s.FramesPerSecond = time.Second.Seconds() / s.AvgFrameDuration.Seconds()
	}
	return s
}

// LogValue implements slog.LogValuer. Phases under 0.1% are left out.
func (s PerfStats) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, 4+len(phases))
	attrs = append(attrs,
		slog.Int64("avg_frame_us", s.AvgFrameDuration.Microseconds()),
		slog.Int64("min_frame_us", s.MinFrameDuration.Microseconds()),
		slog.Int64("max_frame_us", s.MaxFrameDuration.Microseconds()),
		slog.Float64("frames_per_sec", s.FramesPerSecond),
	)
	for _, name := range phases {
		if pct := s.PhasePct[name]; pct > 0.1 {
			attrs = append(attrs, slog.Float64(name+"_pct", pct))
		}
	}
	return slog.GroupValue(attrs...)
}

// PerfStatsCSV is one row of perf.csv.
type PerfStatsCSV struct {
	Frame          int     `csv:"frame"`
	AvgFrameUS     int64   `csv:"avg_frame_us"`
	MinFrameUS     int64   `csv:"min_frame_us"`
	MaxFrameUS     int64   `csv:"max_frame_us"`
	FramesPerSec   float64 `csv:"frames_per_sec"`
	EnvironmentPct float64 `csv:"environment_pct"`
	VisibilityPct  float64 `csv:"visibility_pct"`
	SceneSyncPct   float64 `csv:"scene_sync_pct"`
	TelemetryPct   float64 `csv:"telemetry_pct"`
}

// ToCSV flattens s into a perf.csv row for frame.
func (s PerfStats) ToCSV(frame int) PerfStatsCSV {
	return PerfStatsCSV{
		Frame:          frame,
		AvgFrameUS:     s.AvgFrameDuration.Microseconds(),
		MinFrameUS:     s.MinFrameDuration.Microseconds(),
		MaxFrameUS:     s.MaxFrameDuration.Microseconds(),
		FramesPerSec:   s.FramesPerSecond,
		EnvironmentPct: s.PhasePct[PhaseEnvironment],
		VisibilityPct:  s.PhasePct[PhaseVisibility],
		SceneSyncPct:   s.PhasePct[PhaseSceneSync],
		TelemetryPct:   s.PhasePct[PhaseTelemetry],
	}
}
