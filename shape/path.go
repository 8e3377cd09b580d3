// Package shape generates organism outlines and the surfaces built from them.
// Every generator is a pure function of its parameters; the returned geometry
// belongs to the caller.
package shape

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/garden/components"
)

// Path is a closed 2D outline. The last point connects back to the first.
type Path []r2.Vec

// Polygon is a filled outline with a color.
type Polygon struct {
	Points Path
	Color  components.Color
}

// Area returns the signed area (positive for counter-clockwise winding).
func (p Path) Area() float64 {
	var a float64
	for i := range p {
		j := (i + 1) % len(p)
		a += p[i].X*p[j].Y - p[j].X*p[i].Y
	}
	return a / 2
}

// Centroid returns the vertex average.
func (p Path) Centroid() r2.Vec {
	var c r2.Vec
	if len(p) == 0 {
		return c
	}
	for _, v := range p {
		c = r2.Add(c, v)
	}
	return r2.Scale(1/float64(len(p)), c)
}

// MaxRadius returns the largest distance of any vertex from the origin.
func (p Path) MaxRadius() float64 {
	var m float64
	for _, v := range p {
		m = math.Max(m, r2.Norm(v))
	}
	return m
}

// Bounds returns the axis-aligned bounding box.
func (p Path) Bounds() (lo, hi r2.Vec) {
	if len(p) == 0 {
		return
	}
	lo, hi = p[0], p[0]
	for _, v := range p[1:] {
		lo.X, lo.Y = math.Min(lo.X, v.X), math.Min(lo.Y, v.Y)
		hi.X, hi.Y = math.Max(hi.X, v.X), math.Max(hi.Y, v.Y)
	}
	return lo, hi
}

// CubicBezier evaluates a cubic Bézier curve at t.
func CubicBezier(p0, p1, p2, p3 r2.Vec, t float64) r2.Vec {
	u := 1 - t
	a := u * u * u
	b := 3 * u * u * t
	c := 3 * u * t * t
	d := t * t * t
	return r2.Vec{
		X: a*p0.X + b*p1.X + c*p2.X + d*p3.X,
		Y: a*p0.Y + b*p1.Y + c*p2.Y + d*p3.Y,
	}
}

// Petal returns a symmetric teardrop from the base (0,0) to the tip
// (0,length). Each side is a cubic arc with control points at ±width/2,
// heights 0.3 and 0.8 of the length. segments is per side.
func Petal(length, width float64, segments int) Path {
	if segments < 2 {
		segments = 2
	}
	hw := width / 2
	base := r2.Vec{}
	tip := r2.Vec{Y: length}

	path := make(Path, 0, 2*segments)
	// Right side, base to tip.
	r1, r2c := r2.Vec{X: hw, Y: 0.3 * length}, r2.Vec{X: hw, Y: 0.8 * length}
	for i := 0; i < segments; i++ {
		path = append(path, CubicBezier(base, r1, r2c, tip, float64(i)/float64(segments)))
	}
	// Left side, tip back to base.
	l1, l2 := r2.Vec{X: -hw, Y: 0.8 * length}, r2.Vec{X: -hw, Y: 0.3 * length}
	for i := 0; i < segments; i++ {
		path = append(path, CubicBezier(tip, l1, l2, base, float64(i)/float64(segments)))
	}
	return path
}

// MinLayerSamples is the minimum angular resolution of an organic layer.
const MinLayerSamples = 32

// LayerParams shapes one organic layer.
type LayerParams struct {
	Samples     int
	BaseRadius  float64
	AspectRatio float64 // x radius relative to y radius
	Wobble      float64 // amplitude of the sinusoid sum, relative to radius
	Squareness  float64 // 0 = elliptical; grows the superellipse term as aspect rises
	Seed        float64
}

// OrganicLayer returns a wobbly closed outline around the origin. The radius
// is modulated by sinusoids at frequencies 2, 3 and 5 phase-shifted by Seed.
func OrganicLayer(p LayerParams) Path {
	n := p.Samples
	if n < MinLayerSamples {
		n = MinLayerSamples
	}
	aspect := p.AspectRatio
	if aspect <= 0 {
		aspect = 1
	}
	// Elongated layers square off their ends; round ones stay elliptical.
	sq := p.Squareness * clamp01((aspect-1)/0.4)

	path := make(Path, n)
	for i := range path {
		theta := 2 * math.Pi * float64(i) / float64(n)
		w := 1 + p.Wobble*(0.5*math.Sin(2*theta+p.Seed)+
			0.3*math.Sin(3*theta+p.Seed*1.7)+
			0.2*math.Sin(5*theta+p.Seed*2.3))

		c, s := math.Cos(theta), math.Sin(theta)
		se := math.Pow(math.Pow(math.Abs(c), 4)+math.Pow(math.Abs(s), 4), -0.25)
		k := w * (1 + sq*(se-1))

		path[i] = r2.Vec{X: p.BaseRadius * aspect * k * c, Y: p.BaseRadius * k * s}
	}
	return path
}

// Layer scales and seed offsets for the three concentric remnant layers.
var (
	LayerScales      = [3]float64{1, 0.7, 0.45}
	layerSeedOffsets = [3]float64{0, 11.3, 23.7}
)

// RemnantLayers returns three concentric layers at 100%, 70% and 45% of the
// base radius. Each gets its own seed so they are related but not identical.
func RemnantLayers(base LayerParams) [3]Path {
	var layers [3]Path
	for i := range layers {
		p := base
		p.BaseRadius = base.BaseRadius * LayerScales[i]
		p.Seed = base.Seed + layerSeedOffsets[i]
		layers[i] = OrganicLayer(p)
	}
	return layers
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
