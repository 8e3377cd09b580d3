// Package growth computes the entrance animation of an organism as a pure
// function of its birth and the clock, so scrubbing needs no animation state.
package growth

import (
	"math"
	"time"

	"github.com/tanema/gween/ease"

	"github.com/pthm-cable/garden/config"
)

// Phase indices. They match the part phases of generated models.
const (
	Structure = iota // stem
	Secondary        // leaves, cotyledons
	Terminal         // bloom, bud, cracks
	NumPhases
)

// Window is a phase span as fractions of total progress.
type Window struct {
	Start, End float64
}

// Progress maps total progress into the window, clamped to [0,1]. A window of
// zero length jumps from 0 to 1 when progress reaches its end.
func (w Window) Progress(p float64) float64 {
	span := w.End - w.Start
	if span <= 0 {
		if p >= w.End {
			return 1
		}
		return 0
	}
	return clamp01((p - w.Start) / span)
}

// Config holds animation parameters. Durations are real time; PlaybackRate
// converts them into the simulated time the clock runs on.
type Config struct {
	BaseDuration      time.Duration
	SpeedMultiplier   float64
	PlaybackRate      time.Duration // simulated time per real second
	FastScrubRate     time.Duration // simulated time per real second that snaps growth
	Windows           [NumPhases]Window
	TerminalAmplitude float64
	TerminalPeriod    float64
}

// FromConfig extracts growth parameters from a loaded config.
func FromConfig(cfg *config.Config) Config {
	g := cfg.Growth
	win := func(w config.PhaseWindow) Window { return Window{Start: w.Start, End: w.End} }
	return Config{
		BaseDuration:      g.BaseDuration,
		SpeedMultiplier:   g.SpeedMultiplier,
		PlaybackRate:      g.PlaybackRate,
		FastScrubRate:     g.FastScrubRate,
		Windows:           [NumPhases]Window{win(g.Structure), win(g.Secondary), win(g.Terminal)},
		TerminalAmplitude: g.TerminalAmplitude,
		TerminalPeriod:    g.TerminalPeriod,
	}
}

// Duration returns the animation length in simulated time:
// BaseDuration / SpeedMultiplier real seconds at PlaybackRate.
func (c Config) Duration() time.Duration {
	speed := c.SpeedMultiplier
	if speed <= 0 {
		speed = 1
	}
	return time.Duration(c.BaseDuration.Seconds() / speed * float64(c.PlaybackRate))
}

// FastScrub returns the snap threshold in simulated seconds per real second.
// Zero disables snapping.
func (c Config) FastScrub() float64 {
	return c.FastScrubRate.Seconds()
}

// Easings returns the easing of each phase: a plain ease-out for the stem, a
// mild overshoot for leaves and a damped ripple for the terminal part.
func (c Config) Easings() [NumPhases]ease.TweenFunc {
	return [NumPhases]ease.TweenFunc{
		ease.OutCubic,
		ease.OutBack,
		SubtleElastic(c.TerminalAmplitude, c.TerminalPeriod),
	}
}

// SubtleElastic is an ease-out with a small damped oscillation on top. It
// starts at b and ends exactly at b+c; the ripple never exceeds amplitude*c.
func SubtleElastic(amplitude, period float64) ease.TweenFunc {
	if period <= 0 {
		period = 0.45
	}
	return func(t, b, c, d float32) float32 {
		if d <= 0 || t >= d {
			return b + c
		}
		if t <= 0 {
			return b
		}
		x := float64(t / d)
		base := 1 - math.Pow(1-x, 3)
		ripple := amplitude * math.Exp2(-10*x) * math.Sin(2*math.Pi*x/period) * (1 - x)
		return b + c*float32(base+ripple)
	}
}

// State is the animation state of one organism at one clock time.
type State struct {
	Progress float64
	Raw      [NumPhases]float64 // window progress before easing
	Eased    [NumPhases]float64
	Born     bool
	Complete bool
	Snapped  bool // fast scrub skipped the animation
}

// Evaluate returns the animation state of an organism born at birth, at clock
// time t, while the clock moves at scrubRate simulated seconds per real second.
func Evaluate(birth, t time.Time, scrubRate float64, cfg Config) State {
	return evaluate(birth, t, scrubRate, cfg, cfg.Easings())
}

// Animator evaluates many organisms with one set of easing functions.
type Animator struct {
	cfg     Config
	easings [NumPhases]ease.TweenFunc
}

// NewAnimator creates an animator for cfg.
func NewAnimator(cfg Config) *Animator {
	return &Animator{cfg: cfg, easings: cfg.Easings()}
}

// Evaluate is the package-level Evaluate with the animator's config.
func (a *Animator) Evaluate(birth, t time.Time, scrubRate float64) State {
	return evaluate(birth, t, scrubRate, a.cfg, a.easings)
}

func evaluate(birth, t time.Time, scrubRate float64, cfg Config, easings [NumPhases]ease.TweenFunc) State {
	if t.Before(birth) {
		return State{}
	}
	s := State{Born: true}

	if limit := cfg.FastScrub(); limit > 0 && math.Abs(scrubRate) > limit {
		s.Snapped = true
		s.Progress = 1
	} else if d := cfg.Duration(); d <= 0 {
		s.Progress = 1
	} else {
		s.Progress = clamp01(float64(t.Sub(birth)) / float64(d))
	}

	s.Complete = s.Progress >= 1
	for i, w := range cfg.Windows {
		raw := w.Progress(s.Progress)
		if s.Complete {
			raw = 1
		}
		s.Raw[i] = raw
		s.Eased[i] = float64(easings[i](float32(raw), 0, 1, 1))
	}
	return s
}

// ScrubRate returns how fast the clock moved, in simulated seconds per real
// second. A jump with no real time elapsed is infinitely fast.
func ScrubRate(prev, cur time.Time, realDelta time.Duration) float64 {
	sim := cur.Sub(prev).Seconds()
	if realDelta <= 0 {
		if sim == 0 {
			return 0
		}
		return math.Inf(int(math.Copysign(1, sim)))
	}
	return sim / realDelta.Seconds()
}

// Clock remembers the previous frame time for scrub-rate detection. It is not
// safe for concurrent use.
type Clock struct {
	prev    time.Time
	started bool
}

// Advance records t and returns the scrub rate since the previous call. The
// first call returns 0.
func (c *Clock) Advance(t time.Time, realDelta time.Duration) float64 {
	if !c.started {
		c.prev, c.started = t, true
		return 0
	}
	rate := ScrubRate(c.prev, t, realDelta)
	c.prev = t
	return rate
}

// Reset forgets the previous frame.
func (c *Clock) Reset() {
	c.started = false
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
