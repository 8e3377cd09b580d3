// Package lifecycle decides, for any clock time, how visible each organism is.
//
// Everything here is a pure function of the entry set and the clock. The
// garden level decays exponentially, and an organism whose favored polarity
// matches the current level lives longer than one that does not.
package lifecycle

import (
	"math"
	"slices"
	"sort"
	"time"

	"github.com/pthm-cable/garden/components"
	"github.com/pthm-cable/garden/config"
)

// Config holds life-cycle parameters.
type Config struct {
	HalfLife      time.Duration
	Lifespan      time.Duration
	FadeExponent  float64
	IntensityGain float64
	MatchGain     float64
	Saturation    float64
}

// FromConfig extracts life-cycle parameters from a loaded config.
func FromConfig(cfg *config.Config) Config {
	l := cfg.Lifecycle
	return Config{
		HalfLife:      l.HalfLife,
		Lifespan:      l.Lifespan,
		FadeExponent:  l.FadeExponent,
		IntensityGain: l.IntensityGain,
		MatchGain:     l.MatchGain,
		Saturation:    l.Saturation,
	}
}

// Sign returns the contribution sign of an entry: negative intensity pushes
// the garden level negative (lush), positive pushes it positive (barren).
func Sign(intensity float64) float64 {
	switch {
	case intensity < 0:
		return -1
	case intensity > 0:
		return 1
	}
	return 0
}

// decay is the weight of a contribution of the given age.
func decay(age, halfLife time.Duration) float64 {
	return math.Exp2(-float64(age) / float64(halfLife))
}

// Environment returns the garden level at t: the sum over every entry born at
// or before t of Sign(intensity) halved once per half-life of age.
func Environment(entries []components.Entry, t time.Time, halfLife time.Duration) float64 {
	var level float64
	for _, e := range entries {
		if e.Timestamp.After(t) {
			continue
		}
		level += Sign(e.Intensity) * decay(t.Sub(e.Timestamp), halfLife)
	}
	return level
}

// Index precomputes entry births in time order so that Level only visits
// entries already born at t. It is safe for concurrent readers.
type Index struct {
	halfLife time.Duration
	times    []time.Time
	signs    []float64
}

// NewIndex builds an index over entries.
func NewIndex(entries []components.Entry, halfLife time.Duration) *Index {
	order := make([]int, len(entries))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		return entries[a].Timestamp.Compare(entries[b].Timestamp)
	})

	x := &Index{
		halfLife: halfLife,
		times:    make([]time.Time, 0, len(entries)),
		signs:    make([]float64, 0, len(entries)),
	}
	for _, i := range order {
		s := Sign(entries[i].Intensity)
		if s == 0 {
			continue
		}
		x.times = append(x.times, entries[i].Timestamp)
		x.signs = append(x.signs, s)
	}
	return x
}

// Born returns how many contributing entries are born at or before t.
func (x *Index) Born(t time.Time) int {
	return sort.Search(len(x.times), func(i int) bool { return x.times[i].After(t) })
}

// Level returns the garden level at t. It equals Environment for the same
// entries up to floating-point summation order.
func (x *Index) Level(t time.Time) float64 {
	var level float64
	for i, n := 0, x.Born(t); i < n; i++ {
		level += x.signs[i] * decay(t.Sub(x.times[i]), x.halfLife)
	}
	return level
}

// Favored returns the level polarity a type thrives in: Blooms favor a lush
// (negative) garden, Remnants a barren (positive) one. Sprouts are neutral.
func Favored(t components.OrganismType) float64 {
	switch t {
	case components.Bloom:
		return -1
	case components.Remnant:
		return 1
	}
	return 0
}

// MatchFactor reports how strongly level agrees with the favored polarity of
// t, in [-1, 1]. The magnitude saturates at |level| == saturation; the sign is
// negative when the level opposes the favored polarity.
func MatchFactor(t components.OrganismType, level, saturation float64) float64 {
	f := Favored(t)
	if f == 0 || level == 0 {
		return 0
	}
	mag := 1.0
	if saturation > 0 {
		mag = math.Min(math.Abs(level)/saturation, 1)
	}
	if Sign(level) == f {
		return mag
	}
	return -mag
}

// Lifespan returns the modified lifespan of e under the given level:
// base * (1 + IntensityGain*|i|) * (1 + MatchGain*m). A mismatch (m < 0)
// shortens life; a neutral level leaves only the intensity term.
func Lifespan(e components.Entry, level float64, cfg Config) time.Duration {
	m := MatchFactor(e.Type, level, cfg.Saturation)
	factor := (1 + cfg.IntensityGain*math.Abs(e.Intensity)) * (1 + cfg.MatchGain*m)
	return time.Duration(float64(cfg.Lifespan) * factor)
}

// Opacity returns the fade curve value for an organism of the given age and
// lifespan: 1 - (age/lifespan)^p, clamped to [0,1].
func Opacity(age, lifespan time.Duration, exponent float64) float64 {
	if age < 0 {
		return 0
	}
	if lifespan <= 0 {
		return 0
	}
	if exponent <= 0 {
		exponent = 1
	}
	o := 1 - math.Pow(float64(age)/float64(lifespan), exponent)
	return math.Max(0, math.Min(1, o))
}

// Visibility evaluates the presence of e at t given the garden level at t.
// GrowthProgress is left zero; the growth animation fills it in.
//
// Opacity never rises for a fixed level, but the lifespan tracks the level at
// t, so later entries that match e's favored polarity can lift it again.
func Visibility(e components.Entry, t time.Time, level float64, cfg Config) components.Visibility {
	v := components.Visibility{EntryID: e.ID}
	if t.Before(e.Timestamp) {
		return v
	}
	v.Opacity = Opacity(t.Sub(e.Timestamp), Lifespan(e, level, cfg), cfg.FadeExponent)
	v.Visible = v.Opacity > 0
	return v
}
