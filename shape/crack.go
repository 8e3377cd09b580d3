package shape

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/garden/components"
	"github.com/pthm-cable/garden/random"
	"github.com/pthm-cable/garden/traits"
)

const (
	crackSegments = 8
	crackReach    = 0.95 // fraction of size reached by a crack tip
	crackRoot     = 0.08 // fraction of size where cracks start
	crackTipWidth = 0.3  // tip half-width relative to the root
	crackJitter   = 0.35 // max angular jitter as a fraction of the even spacing
	crackZig      = 0.8  // zig-zag amplitude per unit Wobble, in segment lengths
	crackNeck     = 0.5  // half-width cap as a fraction of the shorter adjacent segment
)

// CrackParams shapes a set of radiating cracks.
type CrackParams struct {
	Count     int // clamped to [4,12]
	Size      float64
	Wobble    float64 // zig-zag amplitude in [0,1], relative to the segment length
	BaseWidth float64 // full width at the root
	Colors    []components.Color
}

// Cracks returns one closed polygon per crack, radiating from the origin.
// Angular jitter is a pure function of the crack index, so cracks never
// consume stream state. Every vertex stays within 0.95*Size of the origin.
func Cracks(p CrackParams) []Polygon {
	count := traits.ClampCracks(p.Count)
	reach := crackReach * p.Size
	root := crackRoot * p.Size
	spacing := 2 * math.Pi / float64(count)

	polys := make([]Polygon, 0, count)
	for i := 0; i < count; i++ {
		angle := float64(i)*spacing + (random.Hash01(i)-0.5)*crackJitter*spacing
		axis := crackAxis(i, angle, root, reach, p.Wobble)
		outline := thicken(axis, p.BaseWidth/2)
		for k, v := range outline {
			if n := r2.Norm(v); n > reach {
				outline[k] = r2.Scale(reach/n, v)
			}
		}

		var color components.Color
		if n := min(len(p.Colors), 3); n > 0 {
			color = p.Colors[i%n]
		}
		polys = append(polys, Polygon{Points: outline, Color: color})
	}
	return polys
}

// crackAxis builds the centerline of crack i: crackSegments segments from
// root to reach with a bounded zig-zag that vanishes at both ends. The
// amplitude scales with the segment length, so the line never doubles back.
func crackAxis(i int, angle, root, reach, wobble float64) []r2.Vec {
	dir := r2.Vec{X: math.Cos(angle), Y: math.Sin(angle)}
	perp := r2.Vec{X: -dir.Y, Y: dir.X}
	amplitude := crackZig * wobble * (reach - root) / crackSegments

	pts := make([]r2.Vec, crackSegments+1)
	for k := range pts {
		f := float64(k) / crackSegments
		along := root + (reach-root)*f
		envelope := math.Sin(math.Pi * f)
		zig := math.Sin(float64(k)*2.1+float64(i)*1.3) * amplitude * envelope
		pts[k] = r2.Add(r2.Scale(along, dir), r2.Scale(zig, perp))
	}
	return pts
}

// thicken turns a polyline into a closed polygon whose half-width tapers
// linearly from halfWidth at the first point to crackTipWidth*halfWidth at the
// last. Offsets follow the perpendicular of each vertex's local tangent and
// are capped by the adjacent segment lengths so the two rails never fold over
// each other at a bend.
//
// The result is the right rail followed by the left rail reversed: vertex k
// faces vertex len-1-k, which is what ExtrudeStrip triangulates.
func thicken(line []r2.Vec, halfWidth float64) Path {
	n := len(line)
	if n < 2 {
		return nil
	}
	seg := make([]float64, n-1)
	for k := range seg {
		seg[k] = r2.Norm(r2.Sub(line[k+1], line[k]))
	}
	left := make(Path, n)
	right := make(Path, n)
	for k := range line {
		var tangent r2.Vec
		switch k {
		case 0:
			tangent = r2.Sub(line[1], line[0])
		case n - 1:
			tangent = r2.Sub(line[n-1], line[n-2])
		default:
			tangent = r2.Sub(line[k+1], line[k-1])
		}
		if r2.Norm(tangent) == 0 {
			tangent = r2.Vec{X: 1}
		}
		tangent = r2.Unit(tangent)
		normal := r2.Vec{X: -tangent.Y, Y: tangent.X}

		f := float64(k) / float64(n-1)
		w := halfWidth * (1 - (1-crackTipWidth)*f)
		near := seg[min(k, n-2)]
		if k > 0 {
			near = math.Min(near, seg[k-1])
		}
		w = math.Min(w, crackNeck*near)
		left[k] = r2.Add(line[k], r2.Scale(w, normal))
		right[k] = r2.Sub(line[k], r2.Scale(w, normal))
	}

	out := make(Path, 0, 2*n)
	out = append(out, right...)
	for k := n - 1; k >= 0; k-- {
		out = append(out, left[k])
	}
	return out
}
