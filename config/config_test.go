package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pthm-cable/garden/components"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Layout.Rotations != 3.5 {
		t.Errorf("rotations = %v, want 3.5", cfg.Layout.Rotations)
	}
	if cfg.Lifecycle.HalfLife != 7*24*time.Hour {
		t.Errorf("half_life = %v, want 168h", cfg.Lifecycle.HalfLife)
	}
	if cfg.Lifecycle.Lifespan != 14*24*time.Hour {
		t.Errorf("lifespan = %v, want 336h", cfg.Lifecycle.Lifespan)
	}
	if cfg.Growth.FastScrubRate != 48*time.Hour {
		t.Errorf("fast_scrub_rate = %v, want 48h", cfg.Growth.FastScrubRate)
	}
	if !cfg.Derived.FixedTypes[components.Sprout] {
		t.Error("sprout should be a fixed type by default")
	}
	if cfg.Derived.FixedTypes[components.Bloom] {
		t.Error("bloom should not be a fixed type by default")
	}
	if cfg.Derived.Location != time.UTC {
		t.Errorf("location = %v, want UTC", cfg.Derived.Location)
	}
}

func TestDerivedGrowthDuration(t *testing.T) {
	cfg := Default()
	// 2s / 2.7 of real time at 24h simulated per real second.
	want := time.Duration(2.0 / 2.7 * float64(24*time.Hour))
	diff := cfg.Derived.GrowthSim - want
	if diff < -time.Millisecond || diff > time.Millisecond {
		t.Errorf("GrowthSim = %v, want ~%v", cfg.Derived.GrowthSim, want)
	}
}

func TestLoadOverlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "garden.yaml")
	data := []byte("layout:\n  rotations: 5\nlifecycle:\n  half_life: 72h\n")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Layout.Rotations != 5 {
		t.Errorf("rotations = %v, want 5", cfg.Layout.Rotations)
	}
	if cfg.Lifecycle.HalfLife != 72*time.Hour {
		t.Errorf("half_life = %v, want 72h", cfg.Lifecycle.HalfLife)
	}
	// Untouched keys keep their defaults.
	if cfg.Layout.MinClearance != 0.9 {
		t.Errorf("min_clearance = %v, want default 0.9", cfg.Layout.MinClearance)
	}
}

func TestParseRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"zero clearance", "layout:\n  min_clearance: 0\n"},
		{"negative half life", "lifecycle:\n  half_life: -1h\n"},
		{"unknown fixed type", "calibration:\n  fixed_types: [weed]\n"},
		{"bad timezone", "layout:\n  day_timezone: Mars/Olympus\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.yaml)); err == nil {
				t.Errorf("Parse(%q) succeeded, want error", tt.yaml)
			}
		})
	}
}

func TestWriteYAMLRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Layout.Rotations = 4.25

	path := filepath.Join(t.TempDir(), "out.yaml")
	if err := cfg.WriteYAML(path); err != nil {
		t.Fatalf("WriteYAML: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Layout.Rotations != 4.25 {
		t.Errorf("rotations = %v, want 4.25", loaded.Layout.Rotations)
	}
	if loaded.Lifecycle.Lifespan != cfg.Lifecycle.Lifespan {
		t.Errorf("lifespan = %v, want %v", loaded.Lifecycle.Lifespan, cfg.Lifecycle.Lifespan)
	}
}
