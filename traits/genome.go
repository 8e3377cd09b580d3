package traits

import (
	"math"
	"sync"

	"github.com/pthm-cable/garden/components"
	"github.com/pthm-cable/garden/random"
)

// MaxPetalRows is the number of concentric petal rows a bloom can carry.
const MaxPetalRows = 3

// PetalRow is one ring of identical petals. A row with Count 0 is skipped.
type PetalRow struct {
	Count  int
	Length float64
	Width  float64
	Curl   float64
	Tilt   float64 // radians away from the stem axis
}

// BloomGenome drives a flowering organism.
type BloomGenome struct {
	Rows        [MaxPetalRows]PetalRow
	StemHeight  float64
	StemBend    float64
	LeafCount   int
	PetalColor  components.Color
	CenterColor components.Color
	AccentColor components.Color
}

// SproutGenome drives a seedling.
type SproutGenome struct {
	StemHeight     float64
	StemBend       float64
	CotyledonCount int
	CotyledonSize  float64
	BudSize        float64
	LeafCount      int
	LeafColor      components.Color
	BudColor       components.Color
}

// RemnantGenome drives decayed layers and radiating cracks.
type RemnantGenome struct {
	BaseSize        float64
	AspectRatio     float64
	Wobble          float64
	Squareness      float64
	LayerSeed       float64
	LayerColors     [3]components.Color
	CrackCount      int
	CrackWobble     float64
	CrackWidth      float64 // multiplier on the configured base crack width
	CrackColors     [3]components.Color
	CrackColorCount int
}

// Genome is the full trait set of one organism. Only the sub-genome matching
// Type is populated. Genomes are comparable values so they can key caches.
type Genome struct {
	Type    components.OrganismType
	Bloom   BloomGenome
	Sprout  SproutGenome
	Remnant RemnantGenome
}

// Derive builds the genome for an entry. Locked traits come straight from
// entry data; free and constrained traits draw from a stream seeded by the
// entry's timestamp, so the result is the same in every session.
func Derive(e components.Entry) Genome {
	s := random.New(random.SeedFromTime(e.Timestamp))
	a := math.Min(math.Abs(e.Intensity), 1)

	g := Genome{Type: e.Type}
	switch e.Type {
	case components.Bloom:
		g.Bloom = deriveBloom(e, a, s)
	case components.Sprout:
		g.Sprout = deriveSprout(e, a, s)
	case components.Remnant:
		g.Remnant = deriveRemnant(e, a, s)
	}
	return g
}

func deriveBloom(e components.Entry, a float64, s *random.Stream) BloomGenome {
	b := BloomGenome{
		StemHeight:  SpecBloomStem.Draw(s.Next),
		StemBend:    SpecBloomBend.Draw(s.Next),
		LeafCount:   2 + int(math.Round(a*2)),
		PetalColor:  e.Primary,
		CenterColor: colorAt(e.Secondary, 0, e.Primary),
	}
	b.AccentColor = colorAt(e.Accents, 0, b.CenterColor)

	// Stronger entries grow fuller flowers: inner rows appear as |intensity| rises.
	counts := [MaxPetalRows]int{5 + int(math.Round(a*3)), 0, 0}
	if a > 0.4 {
		counts[1] = 4 + int(math.Round(a*4))
	}
	if a > 0.75 {
		counts[2] = 3
	}

	for i := range b.Rows {
		length := SpecPetalLength.Draw(s.Next) * math.Pow(0.78, float64(i))
		b.Rows[i] = PetalRow{
			Count:  counts[i],
			Length: length,
			Width:  length * SpecPetalRatio.Draw(s.Next),
			Curl:   SpecPetalCurl.Draw(s.Next),
			Tilt:   0.35 + 0.3*float64(i) + SpecPetalTilt.Draw(s.Next),
		}
	}
	return b
}

func deriveSprout(e components.Entry, a float64, s *random.Stream) SproutGenome {
	return SproutGenome{
		StemHeight:     SpecSproutStem.Draw(s.Next),
		StemBend:       SpecSproutBend.Draw(s.Next),
		CotyledonCount: 2,
		CotyledonSize:  SpecCotyledonSize.Draw(s.Next),
		BudSize:        SpecBudSize.Draw(s.Next),
		LeafCount:      int(math.Round(a * 3)),
		LeafColor:      e.Primary,
		BudColor:       colorAt(e.Secondary, 0, e.Primary),
	}
}

func deriveRemnant(e components.Entry, a float64, s *random.Stream) RemnantGenome {
	r := RemnantGenome{
		BaseSize:    0.8 + 0.4*a,
		AspectRatio: SpecAspect.Draw(s.Next),
		Wobble:      SpecWobble.Draw(s.Next),
		Squareness:  SpecSquareness.Draw(s.Next),
		LayerSeed:   SpecLayerSeed.Draw(s.Next),
		CrackCount:  ClampCracks(MinCracks + int(math.Round(a*float64(MaxCracks-MinCracks)))),
		CrackWobble: SpecCrackWobble.Draw(s.Next),
		CrackWidth:  SpecCrackWidth.Draw(s.Next),
	}

	second := colorAt(e.Secondary, 0, e.Primary)
	r.LayerColors = [3]components.Color{e.Primary, second, colorAt(e.Secondary, 1, second)}

	r.CrackColorCount = len(e.Accents)
	if r.CrackColorCount > len(r.CrackColors) {
		r.CrackColorCount = len(r.CrackColors)
	}
	for i := 0; i < r.CrackColorCount; i++ {
		r.CrackColors[i] = e.Accents[i]
	}
	if r.CrackColorCount == 0 {
		r.CrackColors[0] = second
		r.CrackColorCount = 1
	}
	return r
}

// ClampCracks bounds a crack count to [MinCracks, MaxCracks].
func ClampCracks(n int) int {
	if n < MinCracks {
		return MinCracks
	}
	if n > MaxCracks {
		return MaxCracks
	}
	return n
}

func colorAt(colors []components.Color, i int, fallback components.Color) components.Color {
	if i < len(colors) {
		return colors[i]
	}
	return fallback
}

// Traits lists every trait of g with its class, for inspection panels and logs.
func Traits(g Genome) []Value {
	num := func(s Spec, v float64) Value { return Value{Name: s.Name, Class: s.Class, Number: v} }
	col := func(s Spec, c components.Color) Value { return Value{Name: s.Name, Class: s.Class, Color: c.Hex()} }

	var out []Value
	switch g.Type {
	case components.Bloom:
		b := g.Bloom
		for _, row := range b.Rows {
			if row.Count == 0 {
				continue
			}
			out = append(out,
				num(SpecPetalCount, float64(row.Count)),
				num(SpecPetalLength, row.Length),
				num(SpecPetalRatio, row.Width/row.Length),
				num(SpecPetalCurl, row.Curl),
				num(SpecPetalTilt, row.Tilt),
			)
		}
		out = append(out,
			num(SpecBloomStem, b.StemHeight),
			num(SpecBloomBend, b.StemBend),
			num(SpecBloomLeaves, float64(b.LeafCount)),
			col(SpecPetalColor, b.PetalColor),
			col(SpecCenterColor, b.CenterColor),
			col(SpecAccentColor, b.AccentColor),
		)
	case components.Sprout:
		sp := g.Sprout
		out = append(out,
			num(SpecSproutStem, sp.StemHeight),
			num(SpecSproutBend, sp.StemBend),
			num(SpecCotyledonCount, float64(sp.CotyledonCount)),
			num(SpecCotyledonSize, sp.CotyledonSize),
			num(SpecBudSize, sp.BudSize),
			num(SpecSproutLeaves, float64(sp.LeafCount)),
			col(SpecLeafColor, sp.LeafColor),
			col(SpecBudColor, sp.BudColor),
		)
	case components.Remnant:
		r := g.Remnant
		out = append(out,
			num(SpecBaseSize, r.BaseSize),
			num(SpecAspect, r.AspectRatio),
			num(SpecWobble, r.Wobble),
			num(SpecSquareness, r.Squareness),
			num(SpecLayerSeed, r.LayerSeed),
		)
		for _, c := range r.LayerColors {
			out = append(out, col(SpecLayerColor, c))
		}
		out = append(out,
			num(SpecCrackCount, float64(r.CrackCount)),
			num(SpecCrackWobble, r.CrackWobble),
			num(SpecCrackWidth, r.CrackWidth),
		)
		for i := 0; i < r.CrackColorCount; i++ {
			out = append(out, col(SpecCrackColor, r.CrackColors[i]))
		}
	}
	return out
}

// Cache memoizes genomes per entry ID. A genome is derived at most once.
type Cache struct {
	mu      sync.Mutex
	genomes map[string]Genome
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{genomes: make(map[string]Genome)}
}

// Get returns the cached genome for e, deriving it on first use.
func (c *Cache) Get(e components.Entry) Genome {
	c.mu.Lock()
	defer c.mu.Unlock()
	if g, ok := c.genomes[e.ID]; ok {
		return g
	}
	g := Derive(e)
	c.genomes[e.ID] = g
	return g
}

// Lookup returns the cached genome for id without deriving.
func (c *Cache) Lookup(id string) (Genome, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	g, ok := c.genomes[id]
	return g, ok
}

// Len returns the number of cached genomes.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.genomes)
}
