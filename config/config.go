// Package config provides configuration loading and access for the garden.
package config

import (
	_ "embed"
	"fmt"
	"math"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/garden/components"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all garden configuration parameters.
type Config struct {
	Layout      LayoutConfig      `yaml:"layout"`
	Calibration CalibrationConfig `yaml:"calibration"`
	Lifecycle   LifecycleConfig   `yaml:"lifecycle"`
	Growth      GrowthConfig      `yaml:"growth"`
	Shape       ShapeConfig       `yaml:"shape"`
	Telemetry   TelemetryConfig   `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// LayoutConfig holds spiral placement and collision parameters.
type LayoutConfig struct {
	Rotations     float64 `yaml:"rotations"`      // Spiral turns from center to edge
	Spiral        string  `yaml:"spiral"`         // "linear" or "log"
	InnerRadius   float64 `yaml:"inner_radius"`   // Radius of the oldest entry
	OuterRadius   float64 `yaml:"outer_radius"`   // Radius of the newest entry
	DayScatter    float64 `yaml:"day_scatter"`    // Per-day offset radius
	EntryScatter  float64 `yaml:"entry_scatter"`  // Per-entry offset radius within a day
	MinClearance  float64 `yaml:"min_clearance"`  // Minimum plan-view stem distance
	MaxIterations int     `yaml:"max_iterations"` // Relaxation pass cap
	HalfWidth     float64 `yaml:"half_width"`     // Footprint half extent along X
	HalfDepth     float64 `yaml:"half_depth"`     // Footprint half extent along Z
	DayTimezone   string  `yaml:"day_timezone"`   // Location used to bucket calendar days
}

// ScaleRange is the size range for one organism type.
type ScaleRange struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

// CalibrationConfig holds percentile-to-scale parameters.
type CalibrationConfig struct {
	Bloom      ScaleRange `yaml:"bloom"`
	Sprout     ScaleRange `yaml:"sprout"`
	Remnant    ScaleRange `yaml:"remnant"`
	Exponent   float64    `yaml:"exponent"`    // Percentile curve exponent (1 = linear)
	FixedTypes []string   `yaml:"fixed_types"` // Types pinned to percentile 50
}

// Range returns the scale range for an organism type.
func (c CalibrationConfig) Range(t components.OrganismType) ScaleRange {
	switch t {
	case components.Bloom:
		return c.Bloom
	case components.Remnant:
		return c.Remnant
	default:
		return c.Sprout
	}
}

// LifecycleConfig holds fade and environment parameters.
type LifecycleConfig struct {
	HalfLife      time.Duration `yaml:"half_life"`      // Environment decay half-life
	Lifespan      time.Duration `yaml:"lifespan"`       // Base organism lifespan
	FadeExponent  float64       `yaml:"fade_exponent"`  // Opacity curve acceleration
	IntensityGain float64       `yaml:"intensity_gain"` // Lifespan gain per |intensity|
	MatchGain     float64       `yaml:"match_gain"`     // Lifespan gain per unit match factor
	Saturation    float64       `yaml:"saturation"`     // |level| at which match saturates
}

// PhaseWindow is a growth phase span as fractions of total progress.
type PhaseWindow struct {
	Start float64 `yaml:"start"`
	End   float64 `yaml:"end"`
}

// GrowthConfig holds entrance animation parameters.
type GrowthConfig struct {
	BaseDuration      time.Duration `yaml:"base_duration"`      // Real-time animation length before speed-up
	SpeedMultiplier   float64       `yaml:"speed_multiplier"`   // Divides BaseDuration
	PlaybackRate      time.Duration `yaml:"playback_rate"`      // Simulated time per real second
	FastScrubRate     time.Duration `yaml:"fast_scrub_rate"`    // Simulated time per real second that snaps growth
	Structure         PhaseWindow   `yaml:"structure"`          // Stem
	Secondary         PhaseWindow   `yaml:"secondary"`          // Leaves, cotyledons
	Terminal          PhaseWindow   `yaml:"terminal"`           // Bloom, bud
	TerminalAmplitude float64       `yaml:"terminal_amplitude"` // Overshoot of the terminal ease
	TerminalPeriod    float64       `yaml:"terminal_period"`    // Oscillation period of the terminal ease
}

// ShapeConfig holds geometry resolution parameters.
type ShapeConfig struct {
	OutlineSamples int     `yaml:"outline_samples"`
	PetalSegments  int     `yaml:"petal_segments"`
	StemSegments   int     `yaml:"stem_segments"`
	ExtrudeDepth   float64 `yaml:"extrude_depth"`
	Bevel          float64 `yaml:"bevel"`
	LeafTiltDeg    float64 `yaml:"leaf_tilt_deg"`
	LeafOffsetDeg  float64 `yaml:"leaf_offset_deg"`
	CrackBaseWidth float64 `yaml:"crack_base_width"`
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	PerfWindow    int `yaml:"perf_window"`
	FrameLogEvery int `yaml:"frame_log_every"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	Location   *time.Location                    // Parsed Layout.DayTimezone
	FixedTypes [components.NumOrganismTypes]bool // Parsed Calibration.FixedTypes
	GrowthSim  time.Duration                     // Animation length in simulated time
	LeafTilt   float64                           // radians
	LeafOffset float64                           // radians
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Default returns a fresh copy of the embedded defaults.
func Default() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults are invalid: %v", err))
	}
	return cfg
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.computeDerived(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse loads configuration from YAML bytes overlaid on the embedded defaults.
func Parse(data []byte) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.computeDerived(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// computeDerived validates the loaded values and calculates derived ones.
func (c *Config) computeDerived() error {
	if c.Layout.MinClearance <= 0 {
		return fmt.Errorf("layout.min_clearance must be positive, got %v", c.Layout.MinClearance)
	}
	if c.Layout.HalfWidth <= 0 || c.Layout.HalfDepth <= 0 {
		return fmt.Errorf("layout bounds must be positive, got %vx%v", c.Layout.HalfWidth, c.Layout.HalfDepth)
	}
	if c.Lifecycle.HalfLife <= 0 {
		return fmt.Errorf("lifecycle.half_life must be positive, got %v", c.Lifecycle.HalfLife)
	}
	if c.Lifecycle.Lifespan <= 0 {
		return fmt.Errorf("lifecycle.lifespan must be positive, got %v", c.Lifecycle.Lifespan)
	}
	if c.Growth.SpeedMultiplier <= 0 {
		c.Growth.SpeedMultiplier = 1
	}
	if c.Calibration.Exponent <= 0 {
		c.Calibration.Exponent = 1
	}

	tz := c.Layout.DayTimezone
	if tz == "" {
		tz = "UTC"
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return fmt.Errorf("layout.day_timezone: %w", err)
	}
	c.Derived.Location = loc

	c.Derived.FixedTypes = [components.NumOrganismTypes]bool{}
	for _, name := range c.Calibration.FixedTypes {
		t, err := components.ParseOrganismType(name)
		if err != nil {
			return fmt.Errorf("calibration.fixed_types: %w", err)
		}
		c.Derived.FixedTypes[t] = true
	}

	realSec := c.Growth.BaseDuration.Seconds() / c.Growth.SpeedMultiplier
	c.Derived.GrowthSim = time.Duration(realSec * float64(c.Growth.PlaybackRate))
	c.Derived.LeafTilt = c.Shape.LeafTiltDeg * math.Pi / 180
	c.Derived.LeafOffset = c.Shape.LeafOffsetDeg * math.Pi / 180
	return nil
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
