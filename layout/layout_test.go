package layout

import (
	"errors"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/pthm-cable/garden/components"
	"github.com/pthm-cable/garden/config"
	"github.com/pthm-cable/garden/random"
)

func testConfig(t *testing.T) Config {
	t.Helper()
	cfg, err := FromConfig(config.Default())
	if err != nil {
		t.Fatalf("FromConfig: %v", err)
	}
	return cfg
}

var start = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

// dailyEntries returns perDay entries on each of days consecutive days.
func dailyEntries(days, perDay int) []components.Entry {
	var out []components.Entry
	for d := 0; d < days; d++ {
		for k := 0; k < perDay; k++ {
			out = append(out, components.Entry{
				ID:        fmt.Sprintf("d%02d-%d", d, k),
				Timestamp: start.AddDate(0, 0, d).Add(time.Duration(8+4*k) * time.Hour),
				Intensity: 0.5,
				Type:      components.Sprout,
			})
		}
	}
	return out
}

func TestFromConfigDefaults(t *testing.T) {
	cfg := testConfig(t)
	if cfg.Spiral != SpiralLinear {
		t.Errorf("Spiral = %v, want linear", cfg.Spiral)
	}
	if cfg.Location == nil || cfg.Location.String() != "UTC" {
		t.Errorf("Location = %v, want UTC", cfg.Location)
	}
	if cfg.MaxIterations != 200 {
		t.Errorf("MaxIterations = %d, want 200", cfg.MaxIterations)
	}
}

func TestComputeDeterministic(t *testing.T) {
	cfg := testConfig(t)
	entries := dailyEntries(20, 3)

	a, err := Compute(entries, cfg)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	b, err := Compute(entries, cfg)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if diff := cmp.Diff(a, b); diff != "" {
		t.Errorf("layout not deterministic (-first +second):\n%s", diff)
	}
	for i, p := range a.Placements {
		if p.EntryID != entries[i].ID {
			t.Fatalf("placement %d is %q, want input order %q", i, p.EntryID, entries[i].ID)
		}
		if p.Position.Y != 0 {
			t.Errorf("placement %d off the ground: y=%v", i, p.Position.Y)
		}
	}
}

func TestComputeClearanceAndBounds(t *testing.T) {
	cfg := testConfig(t)
	entries := dailyEntries(30, 3)

	res, err := Compute(entries, cfg)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if res.Residual != 0 {
		t.Fatalf("Residual = %d (max %v), want 0", res.Residual, res.MaxPenetration)
	}

	ps := res.Placements
	for i := range ps {
		p := ps[i].Position
		if math.Abs(p.X) > cfg.HalfWidth || math.Abs(p.Z) > cfg.HalfDepth {
			t.Errorf("%s out of bounds: %+v", ps[i].EntryID, p)
		}
		for j := i + 1; j < len(ps); j++ {
			q := ps[j].Position
			if d := math.Hypot(p.X-q.X, p.Z-q.Z); d < cfg.MinClearance-1e-6 {
				t.Errorf("%s and %s only %.4f apart", ps[i].EntryID, ps[j].EntryID, d)
			}
		}
	}
}

func TestComputeClampsToRectangle(t *testing.T) {
	cfg := testConfig(t)
	cfg.HalfWidth, cfg.HalfDepth = 6, 3
	cfg.MinClearance = 0.5

	res, err := Compute(dailyEntries(10, 1), cfg)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	hitEdge := false
	for _, p := range res.Placements {
		x, z := p.Position.X, p.Position.Z
		if math.Abs(x) > 6 || math.Abs(z) > 3 {
			t.Errorf("%s outside rectangle: (%v, %v)", p.EntryID, x, z)
		}
		if math.Abs(x) == 6 || math.Abs(z) == 3 {
			hitEdge = true
		}
	}
	if !hitEdge {
		t.Error("expected the outer spiral to be clamped onto the rectangle edge")
	}
}

func TestSingleInstantDataset(t *testing.T) {
	cfg := testConfig(t)
	entries := []components.Entry{
		{ID: "a", Timestamp: start},
		{ID: "b", Timestamp: start},
		{ID: "c", Timestamp: start},
	}
	res, err := Compute(entries, cfg)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	for _, p := range res.Placements {
		if math.IsNaN(p.Position.X) || math.IsNaN(p.Position.Z) {
			t.Fatalf("%s has NaN position", p.EntryID)
		}
	}
	if res.Residual != 0 {
		t.Errorf("Residual = %d, want 0", res.Residual)
	}
}

func TestLoneEntryHasOnlyDayScatter(t *testing.T) {
	cfg := testConfig(t)
	entries := []components.Entry{
		{ID: "old", Timestamp: start.Add(9 * time.Hour)},
		{ID: "new", Timestamp: start.AddDate(0, 0, 10)},
	}
	res, err := Compute(entries, cfg)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}

	x, z := cfg.spiralPoint(0)
	dx, dz := random.New(random.HashString(DayKey(entries[0].Timestamp, time.UTC))).Disc(cfg.DayScatter)
	x, z = cfg.clamp(x+dx, z+dz)

	got := res.Placements[0].Position
	if got.X != x || got.Z != z {
		t.Errorf("lone entry at (%v, %v), want (%v, %v)", got.X, got.Z, x, z)
	}
}

func TestSameDayEntriesCluster(t *testing.T) {
	cfg := testConfig(t)
	entries := []components.Entry{
		{ID: "a", Timestamp: start.Add(10 * time.Hour)},
		{ID: "b", Timestamp: start.Add(10 * time.Hour)},
		{ID: "later", Timestamp: start.AddDate(0, 0, 10)},
	}
	res, err := Compute(entries, cfg)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	a, b := res.Placements[0].Position, res.Placements[1].Position
	d := math.Hypot(a.X-b.X, a.Z-b.Z)
	limit := math.Max(2*cfg.EntryScatter, cfg.MinClearance) + 1e-6
	if d > limit {
		t.Errorf("same-instant entries %.3f apart, want <= %.3f", d, limit)
	}
	if d < cfg.MinClearance-1e-6 {
		t.Errorf("same-instant entries %.3f apart, closer than clearance", d)
	}
}

func TestRelaxSeparatesCoincidentPoints(t *testing.T) {
	cfg := testConfig(t)
	cfg.DayScatter, cfg.EntryScatter = 0, 0
	entries := []components.Entry{
		{ID: "a", Timestamp: start},
		{ID: "b", Timestamp: start},
	}
	res, err := Compute(entries, cfg)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	a, b := res.Placements[0].Position, res.Placements[1].Position
	if d := math.Hypot(a.X-b.X, a.Z-b.Z); math.Abs(d-cfg.MinClearance) > 1e-9 {
		t.Errorf("coincident points separated to %v, want %v", d, cfg.MinClearance)
	}
	if res.Iterations != 1 {
		t.Errorf("Iterations = %d, want 1", res.Iterations)
	}
}

func TestResidualReportedWhenCapped(t *testing.T) {
	cfg := testConfig(t)
	cfg.HalfWidth, cfg.HalfDepth = 1, 1
	cfg.MaxIterations = 10

	res, err := Compute(dailyEntries(25, 2), cfg)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if res.Iterations != 10 {
		t.Errorf("Iterations = %d, want cap 10", res.Iterations)
	}
	if res.Residual == 0 || res.MaxPenetration <= 0 {
		t.Errorf("crowded layout should report residual overlap, got %d / %v", res.Residual, res.MaxPenetration)
	}
}

func TestComputeEmpty(t *testing.T) {
	res, err := Compute(nil, testConfig(t))
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if len(res.Placements) != 0 {
		t.Errorf("got %d placements for no entries", len(res.Placements))
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name string
		edit func(*Config)
	}{
		{"zero clearance", func(c *Config) { c.MinClearance = 0 }},
		{"negative width", func(c *Config) { c.HalfWidth = -1 }},
		{"zero depth", func(c *Config) { c.HalfDepth = 0 }},
		{"negative cap", func(c *Config) { c.MaxIterations = -1 }},
		{"negative scatter", func(c *Config) { c.DayScatter = -0.1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(t)
			tt.edit(&cfg)
			_, err := Compute(dailyEntries(2, 1), cfg)
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("err = %v, want ErrInvalidConfig", err)
			}
		})
	}
}

func TestSpiralRadius(t *testing.T) {
	cfg := testConfig(t)
	lin := cfg
	lin.Spiral = SpiralLinear
	lg := cfg
	lg.Spiral = SpiralLog

	for _, tn := range []float64{0, 1} {
		if math.Abs(lin.radius(tn)-lg.radius(tn)) > 1e-9 {
			t.Errorf("radius(%v) differs: linear %v log %v", tn, lin.radius(tn), lg.radius(tn))
		}
	}
	if lg.radius(0.5) <= lin.radius(0.5) {
		t.Errorf("log spiral should open faster: %v <= %v", lg.radius(0.5), lin.radius(0.5))
	}
	if _, err := ParseSpiral("helix"); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("ParseSpiral(helix) err = %v", err)
	}
}
