package traits

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/pthm-cable/garden/components"
)

var (
	red   = components.Color{R: 200, G: 40, B: 40}
	blue  = components.Color{R: 40, G: 40, B: 200}
	green = components.Color{R: 40, G: 180, B: 60}
	gold  = components.Color{R: 220, G: 180, B: 40}
)

func entry(id string, typ components.OrganismType, intensity float64) components.Entry {
	return components.Entry{
		ID:        id,
		Timestamp: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		Intensity: intensity,
		Type:      typ,
		Primary:   red,
		Secondary: []components.Color{blue},
		Accents:   []components.Color{green, gold},
	}
}

func TestDeriveDeterministic(t *testing.T) {
	for _, typ := range []components.OrganismType{components.Bloom, components.Sprout, components.Remnant} {
		e := entry("a", typ, -0.6)
		if diff := cmp.Diff(Derive(e), Derive(e)); diff != "" {
			t.Errorf("%v genome not deterministic (-first +second):\n%s", typ, diff)
		}
	}
}

func TestLockedTraitsFollowData(t *testing.T) {
	g := Derive(entry("a", components.Bloom, -0.9))
	if g.Bloom.PetalColor != red {
		t.Errorf("petal color = %v, want primary", g.Bloom.PetalColor)
	}
	if g.Bloom.CenterColor != blue {
		t.Errorf("center color = %v, want secondary", g.Bloom.CenterColor)
	}
	if g.Bloom.Rows[0].Count != 8 {
		t.Errorf("outer row count = %d, want 8", g.Bloom.Rows[0].Count)
	}
	if g.Bloom.Rows[2].Count == 0 {
		t.Error("strong bloom should carry an inner row")
	}

	weak := Derive(entry("b", components.Bloom, 0.1))
	if weak.Bloom.Rows[1].Count != 0 || weak.Bloom.Rows[2].Count != 0 {
		t.Errorf("weak bloom rows = %+v, want only the outer row", weak.Bloom.Rows)
	}
}

func TestConstrainedTraitsInRange(t *testing.T) {
	for i := 0; i < 50; i++ {
		e := entry("r", components.Remnant, 0.5)
		e.Timestamp = e.Timestamp.Add(time.Duration(i) * time.Hour)
		r := Derive(e).Remnant

		checks := []struct {
			spec Spec
			v    float64
		}{
			{SpecAspect, r.AspectRatio},
			{SpecWobble, r.Wobble},
			{SpecSquareness, r.Squareness},
			{SpecCrackWidth, r.CrackWidth},
		}
		for _, c := range checks {
			if c.v < c.spec.Min || c.v > c.spec.Max {
				t.Errorf("%s = %v outside [%v,%v]", c.spec.Name, c.v, c.spec.Min, c.spec.Max)
			}
		}
		if r.CrackCount < MinCracks || r.CrackCount > MaxCracks {
			t.Errorf("crack count %d outside [%d,%d]", r.CrackCount, MinCracks, MaxCracks)
		}
	}
}

func TestRemnantCrackColors(t *testing.T) {
	r := Derive(entry("r", components.Remnant, 1)).Remnant
	if r.CrackCount != MaxCracks {
		t.Errorf("crack count = %d, want %d", r.CrackCount, MaxCracks)
	}
	if r.CrackColorCount != 2 || r.CrackColors[0] != green || r.CrackColors[1] != gold {
		t.Errorf("crack colors = %v (n=%d)", r.CrackColors, r.CrackColorCount)
	}

	e := entry("bare", components.Remnant, 0)
	e.Accents = nil
	bare := Derive(e).Remnant
	if bare.CrackColorCount != 1 || bare.CrackColors[0] != blue {
		t.Errorf("fallback crack colors = %v (n=%d)", bare.CrackColors, bare.CrackColorCount)
	}
}

func TestClampCracks(t *testing.T) {
	tests := []struct{ in, want int }{{0, 4}, {-3, 4}, {4, 4}, {9, 9}, {12, 12}, {40, 12}}
	for _, tt := range tests {
		if got := ClampCracks(tt.in); got != tt.want {
			t.Errorf("ClampCracks(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestTraitsListsClasses(t *testing.T) {
	values := Traits(Derive(entry("s", components.Sprout, 0.4)))
	byName := make(map[string]Value)
	for _, v := range values {
		byName[v.Name] = v
	}
	if v := byName["leaf_color"]; v.Class != Locked || v.Color != red.Hex() {
		t.Errorf("leaf_color = %+v", v)
	}
	if v := byName["cotyledon_size"]; v.Class != Constrained {
		t.Errorf("cotyledon_size class = %v, want constrained", v.Class)
	}
	if v := byName["stem_bend"]; v.Class != Free {
		t.Errorf("stem_bend class = %v, want free", v.Class)
	}
}

func TestCacheDerivesOnce(t *testing.T) {
	c := NewCache()
	e := entry("x", components.Bloom, -0.3)
	first := c.Get(e)

	// A mutated record with the same ID must not change the cached genome.
	e.Primary = gold
	if second := c.Get(e); second != first {
		t.Error("cached genome was recomputed")
	}
	if c.Len() != 1 {
		t.Errorf("Len = %d, want 1", c.Len())
	}
	if _, ok := c.Lookup("missing"); ok {
		t.Error("Lookup of unknown id succeeded")
	}
}
