package shape

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/garden/components"
	"github.com/pthm-cable/garden/config"
	"github.com/pthm-cable/garden/traits"
)

// Phase names the growth phase whose progress scales a part.
type Phase uint8

const (
	PhaseStructure Phase = iota // stem, base layer
	PhaseSecondary              // leaves, cotyledons, middle layer
	PhaseTerminal               // petals, bud, cracks
)

func (p Phase) String() string {
	switch p {
	case PhaseStructure:
		return "structure"
	case PhaseSecondary:
		return "secondary"
	case PhaseTerminal:
		return "terminal"
	}
	return fmt.Sprintf("phase(%d)", uint8(p))
}

// StemColor is the shared stem tint; stems carry no entry data.
var StemColor = components.Color{R: 74, G: 110, B: 58}

// Part is one colored piece of an organism model.
type Part struct {
	Name  string
	Phase Phase
	Color components.Color
	Mesh  Mesh
}

// Model is the full geometry of one organism in its local frame, base at the
// origin, Y up.
type Model struct {
	Type  components.OrganismType
	Parts []Part
}

// Triangles returns the total triangle count.
func (m *Model) Triangles() int {
	var n int
	for i := range m.Parts {
		n += m.Parts[i].Mesh.Triangles()
	}
	return n
}

// Part returns the named part.
func (m *Model) Part(name string) (*Part, bool) {
	for i := range m.Parts {
		if m.Parts[i].Name == name {
			return &m.Parts[i], true
		}
	}
	return nil, false
}

// Options holds geometry resolution settings.
type Options struct {
	OutlineSamples int
	PetalSegments  int
	StemSegments   int
	Depth          float64
	Bevel          float64
	CrackBaseWidth float64
	Leaf           FrameOptions
}

// DefaultOptions returns the options of the embedded default config.
func DefaultOptions() Options {
	return OptionsFromConfig(config.Default())
}

// OptionsFromConfig extracts shape options from a loaded config.
func OptionsFromConfig(cfg *config.Config) Options {
	leaf := DefaultFrameOptions()
	leaf.Tilt = cfg.Derived.LeafTilt
	leaf.Offset = cfg.Derived.LeafOffset
	return Options{
		OutlineSamples: cfg.Shape.OutlineSamples,
		PetalSegments:  cfg.Shape.PetalSegments,
		StemSegments:   cfg.Shape.StemSegments,
		Depth:          cfg.Shape.ExtrudeDepth,
		Bevel:          cfg.Shape.Bevel,
		CrackBaseWidth: cfg.Shape.CrackBaseWidth,
		Leaf:           leaf,
	}
}

// BuildModel generates the geometry for a genome. Rows, leaves or cracks with
// a zero count are skipped.
func BuildModel(g traits.Genome, o Options) Model {
	m := Model{Type: g.Type}
	switch g.Type {
	case components.Bloom:
		buildBloom(&m, g.Bloom, o)
	case components.Sprout:
		buildSprout(&m, g.Sprout, o)
	case components.Remnant:
		buildRemnant(&m, g.Remnant, o)
	}
	return m
}

func buildBloom(m *Model, b traits.BloomGenome, o Options) {
	stem := Stem{Height: b.StemHeight, Bend: b.StemBend}
	m.Parts = append(m.Parts, stemPart(stem, o))

	if leaves, ok := leafPart(stem, b.LeafCount, 0.35*b.StemHeight, o); ok {
		leaves.Color = b.PetalColor
		m.Parts = append(m.Parts, leaves)
	}

	head := stem.Point(1)
	for i, row := range b.Rows {
		if row.Count <= 0 {
			continue
		}
		petal := Extrude(Petal(row.Length, row.Width, o.PetalSegments),
			ExtrudeOptions{Depth: o.Depth, Bevel: o.Bevel, Curl: row.Curl})

		var mesh Mesh
		rowOffset := float64(i) * math.Pi / float64(row.Count)
		for j := 0; j < row.Count; j++ {
			yaw := rowOffset + 2*math.Pi*float64(j)/float64(row.Count)
			rot := quat.Mul(axisAngle(r3.Vec{Y: 1}, yaw), axisAngle(r3.Vec{X: 1}, row.Tilt))
			mesh.Append(petal, Transform{Scale: 1, Rotation: rot, Translation: head})
		}

		color := b.PetalColor
		if i == traits.MaxPetalRows-1 {
			color = b.AccentColor
		}
		m.Parts = append(m.Parts, Part{
			Name:  fmt.Sprintf("petals%d", i),
			Phase: PhaseTerminal,
			Color: color,
			Mesh:  mesh,
		})
	}

	center := Extrude(OrganicLayer(LayerParams{
		Samples:     o.OutlineSamples,
		BaseRadius:  0.12 * b.Rows[0].Length,
		AspectRatio: 1,
		Wobble:      0.05,
	}), ExtrudeOptions{Depth: 2 * o.Depth, Bevel: o.Bevel})
	var cm Mesh
	cm.Append(center, Transform{Scale: 1, Rotation: flat, Translation: head})
	m.Parts = append(m.Parts, Part{Name: "center", Phase: PhaseTerminal, Color: b.CenterColor, Mesh: cm})
}

func buildSprout(m *Model, s traits.SproutGenome, o Options) {
	stem := Stem{Height: s.StemHeight, Bend: s.StemBend}
	m.Parts = append(m.Parts, stemPart(stem, o))

	top := stem.Point(1)
	if s.CotyledonCount > 0 {
		blade := Extrude(Petal(s.CotyledonSize, 0.55*s.CotyledonSize, o.PetalSegments),
			ExtrudeOptions{Depth: o.Depth, Bevel: o.Bevel, Curl: 0.15})
		var mesh Mesh
		for j := 0; j < s.CotyledonCount; j++ {
			yaw := 2 * math.Pi * float64(j) / float64(s.CotyledonCount)
			rot := quat.Mul(axisAngle(r3.Vec{Y: 1}, yaw), axisAngle(r3.Vec{X: 1}, 1.1))
			mesh.Append(blade, Transform{Scale: 1, Rotation: rot, Translation: top})
		}
		m.Parts = append(m.Parts, Part{Name: "cotyledons", Phase: PhaseSecondary, Color: s.LeafColor, Mesh: mesh})
	}

	if leaves, ok := leafPart(stem, s.LeafCount, 0.3*s.StemHeight, o); ok {
		leaves.Color = s.LeafColor
		m.Parts = append(m.Parts, leaves)
	}

	bud := Extrude(OrganicLayer(LayerParams{
		Samples:     o.OutlineSamples,
		BaseRadius:  s.BudSize / 2,
		AspectRatio: 0.8,
		Wobble:      0.04,
	}), ExtrudeOptions{Depth: s.BudSize / 2, Bevel: s.BudSize / 8})
	var bm Mesh
	bm.Append(bud, Transform{Scale: 1, Rotation: quat.Number{Real: 1}, Translation: top})
	m.Parts = append(m.Parts, Part{Name: "bud", Phase: PhaseTerminal, Color: s.BudColor, Mesh: bm})
}

func buildRemnant(m *Model, r traits.RemnantGenome, o Options) {
	layers := RemnantLayers(LayerParams{
		Samples:     o.OutlineSamples,
		BaseRadius:  r.BaseSize,
		AspectRatio: r.AspectRatio,
		Wobble:      r.Wobble,
		Squareness:  r.Squareness,
		Seed:        r.LayerSeed,
	})
	phases := [3]Phase{PhaseStructure, PhaseSecondary, PhaseTerminal}
	for i, layer := range layers {
		var mesh Mesh
		mesh.Append(Extrude(layer, ExtrudeOptions{Depth: o.Depth, Bevel: o.Bevel}), Transform{
			Scale:       1,
			Rotation:    flat,
			Translation: r3.Vec{Y: float64(i) * 1.5 * o.Depth},
		})
		m.Parts = append(m.Parts, Part{
			Name:  fmt.Sprintf("layer%d", i),
			Phase: phases[i],
			Color: r.LayerColors[i],
			Mesh:  mesh,
		})
	}

	cracks := Cracks(CrackParams{
		Count:     r.CrackCount,
		Size:      r.BaseSize,
		Wobble:    r.CrackWobble,
		BaseWidth: o.CrackBaseWidth * r.CrackWidth * r.BaseSize,
		Colors:    r.CrackColors[:r.CrackColorCount],
	})
	raise := r3.Vec{Y: 3.5 * o.Depth}
	for i, c := range cracks {
		var mesh Mesh
		mesh.Append(ExtrudeStrip(c.Points, ExtrudeOptions{Depth: o.Depth / 2}), Transform{Scale: 1, Rotation: flat, Translation: raise})
		m.Parts = append(m.Parts, Part{
			Name:  fmt.Sprintf("crack%d", i),
			Phase: PhaseTerminal,
			Color: c.Color,
			Mesh:  mesh,
		})
	}
}

func stemPart(s Stem, o Options) Part {
	tube := Tube(s.Samples(o.StemSegments), 0.035, 0.02, 6)
	return Part{Name: "stem", Phase: PhaseStructure, Color: StemColor, Mesh: tube}
}

// leafPart places count leaves along the stem. Leaves are petal outlines
// rotated so their local +Y follows the leaf frame direction.
func leafPart(s Stem, count int, length float64, o Options) (Part, bool) {
	frames := s.LeafFrames(count, o.Leaf)
	if len(frames) == 0 {
		return Part{}, false
	}
	blade := Extrude(Petal(length, 0.4*length, o.PetalSegments),
		ExtrudeOptions{Depth: o.Depth, Bevel: o.Bevel, Curl: 0.1})
	var mesh Mesh
	for _, f := range frames {
		mesh.Append(blade, Transform{Scale: 1, Rotation: f.Orientation, Translation: f.Position})
	}
	return Part{Name: "leaves", Phase: PhaseSecondary, Mesh: mesh}, true
}

// flat turns an outline in the local X/Y plane so it lies on the ground with
// its front face up.
var flat = axisAngle(r3.Vec{X: 1}, -math.Pi/2)

func axisAngle(axis r3.Vec, angle float64) quat.Number {
	a := r3.Unit(axis)
	s := math.Sin(angle / 2)
	return quat.Number{Real: math.Cos(angle / 2), Imag: a.X * s, Jmag: a.Y * s, Kmag: a.Z * s}
}
