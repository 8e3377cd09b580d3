// Package layout assigns every entry a fixed position in the garden.
//
// Entries are laid out along a spiral from the oldest (center) to the newest
// (edge), scattered per calendar day and per entry, then relaxed until no two
// stems are closer than the configured clearance. The result depends only on
// the entry set and the configuration, so it is computed once per load.
package layout

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/garden/components"
	"github.com/pthm-cable/garden/config"
	"github.com/pthm-cable/garden/random"
)

// ErrInvalidConfig is returned for configurations that cannot produce a layout.
var ErrInvalidConfig = errors.New("layout: invalid config")

// Spiral selects how radius grows with normalized time.
type Spiral uint8

const (
	SpiralLinear Spiral = iota // radius proportional to t
	SpiralLog                  // log(1+9t)/log(10), more room for recent entries
)

// ParseSpiral parses "linear" or "log". Empty means linear.
func ParseSpiral(s string) (Spiral, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "linear":
		return SpiralLinear, nil
	case "log", "logarithmic":
		return SpiralLog, nil
	}
	return 0, fmt.Errorf("%w: unknown spiral %q", ErrInvalidConfig, s)
}

func (s Spiral) String() string {
	if s == SpiralLog {
		return "log"
	}
	return "linear"
}

// Config holds layout parameters.
type Config struct {
	Rotations     float64
	InnerRadius   float64
	OuterRadius   float64
	Spiral        Spiral
	DayScatter    float64
	EntryScatter  float64
	MinClearance  float64
	MaxIterations int
	HalfWidth     float64 // footprint half extent along X
	HalfDepth     float64 // footprint half extent along Z
	Location      *time.Location
}

// FromConfig extracts layout parameters from a loaded config.
func FromConfig(cfg *config.Config) (Config, error) {
	spiral, err := ParseSpiral(cfg.Layout.Spiral)
	if err != nil {
		return Config{}, err
	}
	l := cfg.Layout
	return Config{
		Rotations:     l.Rotations,
		InnerRadius:   l.InnerRadius,
		OuterRadius:   l.OuterRadius,
		Spiral:        spiral,
		DayScatter:    l.DayScatter,
		EntryScatter:  l.EntryScatter,
		MinClearance:  l.MinClearance,
		MaxIterations: l.MaxIterations,
		HalfWidth:     l.HalfWidth,
		HalfDepth:     l.HalfDepth,
		Location:      cfg.Derived.Location,
	}, nil
}

// Validate reports whether c can produce a layout.
func (c Config) Validate() error {
	if c.MinClearance <= 0 {
		return fmt.Errorf("%w: clearance %v must be positive", ErrInvalidConfig, c.MinClearance)
	}
	if c.HalfWidth <= 0 || c.HalfDepth <= 0 {
		return fmt.Errorf("%w: bounds %vx%v must be positive", ErrInvalidConfig, c.HalfWidth, c.HalfDepth)
	}
	if c.MaxIterations < 0 {
		return fmt.Errorf("%w: negative iteration cap %d", ErrInvalidConfig, c.MaxIterations)
	}
	if c.DayScatter < 0 || c.EntryScatter < 0 {
		return fmt.Errorf("%w: negative scatter", ErrInvalidConfig)
	}
	return nil
}

// Result is a computed layout.
type Result struct {
	Placements     []components.Placement // input order
	Iterations     int                    // relaxation passes run
	Residual       int                    // pairs still closer than the clearance
	MaxPenetration float64                // worst remaining clearance deficit
}

// LogValue implements slog.LogValuer.
func (r Result) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("placements", len(r.Placements)),
		slog.Int("iterations", r.Iterations),
		slog.Int("residual", r.Residual),
		slog.Float64("max_penetration", r.MaxPenetration),
	)
}

// overlapTol absorbs rounding so a pair pushed to exactly the clearance is
// not reported again on the next pass.
const overlapTol = 1e-9

// Compute lays out entries. Output is bit-identical for identical input.
func Compute(entries []components.Entry, cfg Config) (Result, error) {
	if err := cfg.Validate(); err != nil {
		return Result{}, err
	}
	if len(entries) == 0 {
		return Result{}, nil
	}
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}

	lo, hi := entries[0].Timestamp, entries[0].Timestamp
	for _, e := range entries[1:] {
		if e.Timestamp.Before(lo) {
			lo = e.Timestamp
		}
		if e.Timestamp.After(hi) {
			hi = e.Timestamp
		}
	}
	span := hi.Sub(lo)

	days := make([]string, len(entries))
	perDay := make(map[string]int)
	for i, e := range entries {
		days[i] = DayKey(e.Timestamp, loc)
		perDay[days[i]]++
	}

	xs := make([]float64, len(entries))
	zs := make([]float64, len(entries))
	for i, e := range entries {
		var tn float64
		if span > 0 {
			tn = float64(e.Timestamp.Sub(lo)) / float64(span)
		}
		x, z := cfg.spiralPoint(tn)

		dx, dz := random.New(random.HashString(days[i])).Disc(cfg.DayScatter)
		x += dx
		z += dz

		if perDay[days[i]] > 1 {
			seed := random.SeedFromTime(e.Timestamp) ^ random.HashString(e.ID)
			ex, ez := random.New(seed).Disc(cfg.EntryScatter)
			x += ex
			z += ez
		}
		xs[i], zs[i] = cfg.clamp(x, z)
	}

	res := Result{}
	res.Iterations = relax(xs, zs, cfg)
	res.Residual, res.MaxPenetration = overlaps(xs, zs, cfg)

	res.Placements = make([]components.Placement, len(entries))
	for i, e := range entries {
		res.Placements[i] = components.Placement{
			EntryID:  e.ID,
			Position: r3.Vec{X: xs[i], Z: zs[i]},
		}
	}
	return res, nil
}

// DayKey returns the calendar day of t in loc, the key for day scatter.
func DayKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(time.DateOnly)
}

// spiralPoint maps normalized time to the undisturbed spiral position.
func (c Config) spiralPoint(tn float64) (x, z float64) {
	angle := tn * c.Rotations * 2 * math.Pi
	r := c.radius(tn)
	return r * math.Cos(angle), r * math.Sin(angle)
}

func (c Config) radius(tn float64) float64 {
	f := tn
	if c.Spiral == SpiralLog {
		f = math.Log1p(9*tn) / math.Log(10)
	}
	return c.InnerRadius + (c.OuterRadius-c.InnerRadius)*f
}

// clamp keeps a point inside the footprint rectangle.
func (c Config) clamp(x, z float64) (float64, float64) {
	return math.Max(-c.HalfWidth, math.Min(c.HalfWidth, x)),
		math.Max(-c.HalfDepth, math.Min(c.HalfDepth, z))
}

// relax pushes overlapping pairs apart until a full pass finds none or the
// iteration cap is reached. It returns the number of passes that moved points.
func relax(xs, zs []float64, cfg Config) int {
	clearance := cfg.MinClearance
	g := newGrid(cfg.HalfWidth, cfg.HalfDepth, clearance)
	var near []int

	for iter := 0; iter < cfg.MaxIterations; iter++ {
		g.clear()
		for i := range xs {
			g.insert(i, xs[i], zs[i])
		}

		moved := false
		for i := range xs {
			near = g.neighborsInto(near[:0], xs[i], zs[i])
			for _, j := range near {
				if j <= i {
					continue
				}
				dx := xs[j] - xs[i]
				dz := zs[j] - zs[i]
				d := math.Hypot(dx, dz)
				if d >= clearance-overlapTol {
					continue
				}
				var ux, uz float64
				if d == 0 {
					// Coincident points: pick a stable direction from the pair.
					a := 2 * math.Pi * random.Hash01(i*7919+j)
					ux, uz = math.Cos(a), math.Sin(a)
				} else {
					ux, uz = dx/d, dz/d
				}
				half := (clearance - d) / 2
				xs[i] -= ux * half
				zs[i] -= uz * half
				xs[j] += ux * half
				zs[j] += uz * half
				moved = true
			}
		}

		for i := range xs {
			xs[i], zs[i] = cfg.clamp(xs[i], zs[i])
		}
		if !moved {
			return iter
		}
	}
	return cfg.MaxIterations
}

// overlaps counts pairs closer than the clearance and the largest deficit.
func overlaps(xs, zs []float64, cfg Config) (count int, worst float64) {
	g := newGrid(cfg.HalfWidth, cfg.HalfDepth, cfg.MinClearance)
	for i := range xs {
		g.insert(i, xs[i], zs[i])
	}
	var near []int
	for i := range xs {
		near = g.neighborsInto(near[:0], xs[i], zs[i])
		for _, j := range near {
			if j <= i {
				continue
			}
			d := math.Hypot(xs[j]-xs[i], zs[j]-zs[i])
			if deficit := cfg.MinClearance - d; deficit > overlapTol {
				count++
				worst = math.Max(worst, deficit)
			}
		}
	}
	return count, worst
}
