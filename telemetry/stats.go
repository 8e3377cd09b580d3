// Package telemetry records per-frame garden statistics, frame timing and
// notable moments, and writes them as CSV.
package telemetry

import (
	"log/slog"
	"slices"

	"gonum.org/v1/gonum/stat"
)

// FrameStats holds aggregated statistics for one logged frame.
type FrameStats struct {
	Frame     int     `csv:"frame"`
	Time      string  `csv:"time"` // RFC 3339 clock time
	ScrubRate float64 `csv:"scrub_rate"`
	Level     float64 `csv:"level"`

	// Visible organisms at the frame
	Visible  int `csv:"visible"`
	Blooms   int `csv:"blooms"`
	Sprouts  int `csv:"sprouts"`
	Remnants int `csv:"remnants"`
	Growing  int `csv:"growing"`
	Snapped  int `csv:"snapped"`

	// Scene events since the previous logged frame
	Appeared int `csv:"appeared"`
	Faded    int `csv:"faded"`
	Unborn   int `csv:"unborn"` // removed by scrubbing before birth

	// Opacity distribution of visible organisms
	OpacityMean float64 `csv:"opacity_mean"`
	OpacityP10  float64 `csv:"opacity_p10"`
	OpacityP50  float64 `csv:"opacity_p50"`
	OpacityP90  float64 `csv:"opacity_p90"`

	ScaleMean float64 `csv:"scale_mean"`
}

// Percentile calculates the p-th percentile of a sorted slice.
// p should be in [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	// Linear interpolation
	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}
	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// ComputeDistribution returns the mean and the 10th, 50th and 90th
// percentiles of values. values is not modified.
func ComputeDistribution(values []float64) (mean, p10, p50, p90 float64) {
	if len(values) == 0 {
		return 0, 0, 0, 0
	}
	mean = stat.Mean(values, nil)

	sorted := slices.Clone(values)
	slices.Sort(sorted)
	return mean, Percentile(sorted, 0.10), Percentile(sorted, 0.50), Percentile(sorted, 0.90)
}

// LogValue implements slog.LogValuer for structured logging.
func (s FrameStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("frame", s.Frame),
		slog.String("time", s.Time),
		slog.Float64("scrub_rate", s.ScrubRate),
		slog.Float64("level", s.Level),
		slog.Int("visible", s.Visible),
		slog.Int("blooms", s.Blooms),
		slog.Int("sprouts", s.Sprouts),
		slog.Int("remnants", s.Remnants),
		slog.Int("growing", s.Growing),
		slog.Int("snapped", s.Snapped),
		slog.Int("appeared", s.Appeared),
		slog.Int("faded", s.Faded),
		slog.Int("unborn", s.Unborn),
		slog.Float64("opacity_mean", s.OpacityMean),
		slog.Float64("opacity_p50", s.OpacityP50),
		slog.Float64("scale_mean", s.ScaleMean),
	)
}

// LogStats logs the headline numbers of the frame.
func (s FrameStats) LogStats(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("frame",
		"frame", s.Frame,
		"time", s.Time,
		"level", s.Level,
		"visible", s.Visible,
		"appeared", s.Appeared,
		"faded", s.Faded,
		"opacity_mean", s.OpacityMean,
	)
}
