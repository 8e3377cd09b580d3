// Package calibrate converts raw entry intensities into per-type size
// percentiles, so clustered data still produces visibly distinct sizes.
package calibrate

import (
	"cmp"
	"log/slog"
	"math"
	"slices"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/garden/components"
	"github.com/pthm-cable/garden/config"
)

// FixedPercentile is assigned to single-entry groups and fixed types.
const FixedPercentile = 50.0

// Range is the scale interval of one organism type.
type Range struct {
	Min, Max float64
}

// Lerp maps a fraction in [0,1] into the range. The endpoints are exact.
func (r Range) Lerp(f float64) float64 {
	return r.Min*(1-f) + r.Max*f
}

// Config holds calibration parameters.
type Config struct {
	Ranges   [components.NumOrganismTypes]Range
	Exponent float64                           // percentile curve exponent; 1 is linear
	Fixed    [components.NumOrganismTypes]bool // types pinned to FixedPercentile
}

// FromConfig extracts calibration parameters from a loaded config.
func FromConfig(cfg *config.Config) Config {
	var c Config
	for t := components.OrganismType(0); t < components.NumOrganismTypes; t++ {
		r := cfg.Calibration.Range(t)
		c.Ranges[t] = Range{Min: r.Min, Max: r.Max}
	}
	c.Exponent = cfg.Calibration.Exponent
	c.Fixed = cfg.Derived.FixedTypes
	return c
}

// curve applies the optional power curve to a percentile.
func (c Config) curve(p float64) float64 {
	if c.Exponent <= 0 || c.Exponent == 1 {
		return p
	}
	return 100 * math.Pow(p/100, c.Exponent)
}

// Calibrate ranks entries by |intensity| within their type and maps the rank
// to a scale. Records are returned in input order. Ties keep input order.
func Calibrate(entries []components.Entry, cfg Config) []components.PercentileRecord {
	var groups [components.NumOrganismTypes][]int
	for i, e := range entries {
		if int(e.Type) < len(groups) {
			groups[e.Type] = append(groups[e.Type], i)
		}
	}

	out := make([]components.PercentileRecord, len(entries))
	for i, e := range entries {
		out[i] = components.PercentileRecord{EntryID: e.ID, Percentile: FixedPercentile}
	}

	for t, idx := range groups {
		if cfg.Fixed[t] || len(idx) < 2 {
			continue
		}
		slices.SortStableFunc(idx, func(a, b int) int {
			return cmp.Compare(math.Abs(entries[a].Intensity), math.Abs(entries[b].Intensity))
		})
		last := float64(len(idx) - 1)
		for rank, i := range idx {
			out[i].Percentile = 100 * float64(rank) / last
		}
	}

	for i, e := range entries {
		if int(e.Type) >= len(cfg.Ranges) {
			continue
		}
		p := out[i].Percentile
		if !cfg.Fixed[e.Type] {
			p = cfg.curve(p)
		}
		out[i].Scale = cfg.Ranges[e.Type].Lerp(p / 100)
	}
	return out
}

// Stats summarizes the calibrated scales of one organism type.
type Stats struct {
	Count       int
	MeanScale   float64
	MedianScale float64
	MinScale    float64
	MaxScale    float64
}

// LogValue implements slog.LogValuer.
func (s Stats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("count", s.Count),
		slog.Float64("mean", s.MeanScale),
		slog.Float64("median", s.MedianScale),
		slog.Float64("min", s.MinScale),
		slog.Float64("max", s.MaxScale),
	)
}

// Summary groups records by the type of the matching entry. records and
// entries must be parallel slices as returned by Calibrate.
func Summary(entries []components.Entry, records []components.PercentileRecord) map[components.OrganismType]Stats {
	scales := make(map[components.OrganismType][]float64)
	for i, r := range records {
		if i >= len(entries) {
			break
		}
		scales[entries[i].Type] = append(scales[entries[i].Type], r.Scale)
	}

	out := make(map[components.OrganismType]Stats, len(scales))
	for t, xs := range scales {
		slices.Sort(xs)
		out[t] = Stats{
			Count:       len(xs),
			MeanScale:   stat.Mean(xs, nil),
			MedianScale: stat.Quantile(0.5, stat.Empirical, xs, nil),
			MinScale:    xs[0],
			MaxScale:    xs[len(xs)-1],
		}
	}
	return out
}
