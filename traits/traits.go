// Package traits defines organism genomes and how they are derived from entries.
package traits

import "fmt"

// Class says how freely a trait may vary.
type Class uint8

const (
	// Locked traits encode entry data directly and are never randomized.
	Locked Class = iota
	// Free traits vary per organism for visual diversity.
	Free
	// Constrained traits vary only inside a narrow range; outside it the
	// geometry degenerates.
	Constrained
)

func (c Class) String() string {
	switch c {
	case Locked:
		return "locked"
	case Free:
		return "free"
	case Constrained:
		return "constrained"
	}
	return fmt.Sprintf("class(%d)", uint8(c))
}

// Spec describes one named trait.
type Spec struct {
	Name  string
	Class Class
	Min   float64 // bounds for Free and Constrained traits
	Max   float64
}

// Clamp bounds v to the spec's range. Locked traits are returned unchanged.
func (s Spec) Clamp(v float64) float64 {
	if s.Class == Locked {
		return v
	}
	if v < s.Min {
		return s.Min
	}
	if v > s.Max {
		return s.Max
	}
	return v
}

// Draw picks a value in the spec's range from next, a [0,1) source.
func (s Spec) Draw(next func() float64) float64 {
	return s.Clamp(s.Min + (s.Max-s.Min)*next())
}

// Value is a trait as it appears on a derived genome.
type Value struct {
	Name   string
	Class  Class
	Number float64
	Color  string // "#rrggbb" for color traits, empty otherwise
}

// Bloom trait table.
var (
	SpecPetalCount  = Spec{Name: "petal_count", Class: Locked}
	SpecPetalLength = Spec{Name: "petal_length", Class: Free, Min: 0.9, Max: 1.1}
	SpecPetalRatio  = Spec{Name: "petal_width_ratio", Class: Constrained, Min: 0.38, Max: 0.55}
	SpecPetalCurl   = Spec{Name: "petal_curl", Class: Constrained, Min: 0.08, Max: 0.3}
	SpecPetalTilt   = Spec{Name: "petal_tilt", Class: Free, Min: 0, Max: 0.1}
	SpecBloomStem   = Spec{Name: "stem_height", Class: Free, Min: 1.4, Max: 2.2}
	SpecBloomBend   = Spec{Name: "stem_bend", Class: Free, Min: -0.3, Max: 0.3}
	SpecBloomLeaves = Spec{Name: "leaf_count", Class: Locked}
	SpecPetalColor  = Spec{Name: "petal_color", Class: Locked}
	SpecCenterColor = Spec{Name: "center_color", Class: Locked}
	SpecAccentColor = Spec{Name: "accent_color", Class: Locked}
)

// Sprout trait table.
var (
	SpecSproutStem     = Spec{Name: "stem_height", Class: Free, Min: 0.8, Max: 1.3}
	SpecSproutBend     = Spec{Name: "stem_bend", Class: Free, Min: -0.2, Max: 0.2}
	SpecCotyledonCount = Spec{Name: "cotyledon_count", Class: Locked}
	SpecCotyledonSize  = Spec{Name: "cotyledon_size", Class: Constrained, Min: 0.25, Max: 0.4}
	SpecBudSize        = Spec{Name: "bud_size", Class: Constrained, Min: 0.12, Max: 0.2}
	SpecSproutLeaves   = Spec{Name: "leaf_count", Class: Locked}
	SpecLeafColor      = Spec{Name: "leaf_color", Class: Locked}
	SpecBudColor       = Spec{Name: "bud_color", Class: Locked}
)

// Remnant trait table.
var (
	SpecBaseSize    = Spec{Name: "base_size", Class: Locked}
	SpecAspect      = Spec{Name: "aspect_ratio", Class: Constrained, Min: 0.8, Max: 1.4}
	SpecWobble      = Spec{Name: "wobble", Class: Constrained, Min: 0.04, Max: 0.16}
	SpecSquareness  = Spec{Name: "squareness", Class: Constrained, Min: 0, Max: 0.6}
	SpecLayerSeed   = Spec{Name: "layer_seed", Class: Free, Min: 0, Max: 100}
	SpecLayerColor  = Spec{Name: "layer_color", Class: Locked}
	SpecCrackCount  = Spec{Name: "crack_count", Class: Locked, Min: MinCracks, Max: MaxCracks}
	SpecCrackWobble = Spec{Name: "crack_wobble", Class: Free, Min: 0.2, Max: 1.0}
	SpecCrackWidth  = Spec{Name: "crack_width", Class: Constrained, Min: 0.6, Max: 1.2}
	SpecCrackColor  = Spec{Name: "crack_color", Class: Locked}
)

// Crack count bounds. Counts outside are clamped, never rejected.
const (
	MinCracks = 4
	MaxCracks = 12
)
