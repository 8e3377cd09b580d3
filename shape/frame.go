package shape

import (
	"math"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

// parallelEps is the sine of the smallest angle between a stem tangent and
// the reference axis before the fallback axis is used.
const parallelEps = 1e-3

// FrameOptions controls leaf placement along a stem.
type FrameOptions struct {
	Up        r3.Vec  // primary reference axis
	Fallback  r3.Vec  // used when the tangent is near-parallel to Up
	Alternate float64 // rotation between consecutive leaves, radians
	Offset    float64 // extra rotation per leaf pair, radians
	Tilt      float64 // lean of the leaf toward the tangent, radians
}

// DefaultFrameOptions returns alternating leaves with a golden-angle pair offset.
func DefaultFrameOptions() FrameOptions {
	return FrameOptions{
		Up:        r3.Vec{Y: 1},
		Fallback:  r3.Vec{X: 1},
		Alternate: math.Pi,
		Offset:    137.5 * math.Pi / 180,
		Tilt:      25 * math.Pi / 180,
	}
}

// Frame is the placement of one leaf. Axis, Direction and Normal form a
// right-handed orthonormal basis; Orientation rotates local +X/+Y/+Z onto them.
type Frame struct {
	Position    r3.Vec
	Direction   r3.Vec // where the leaf points
	Axis        r3.Vec // rotation axis used for the tilt
	Normal      r3.Vec // leaf surface normal
	Orientation quat.Number
}

// LeafFrame orients leaf index at a point on a stem with the given tangent.
// The leaf starts from a stable outward direction (tangent × Up), is turned
// around the tangent by its alternating angle and then tilted toward the
// tangent, so leaves point outward and slightly along the stem.
func LeafFrame(point, tangent r3.Vec, index int, o FrameOptions) Frame {
	t := o.Up
	if r3.Norm(tangent) > 0 {
		t = r3.Unit(tangent)
	}

	out := r3.Cross(t, o.Up)
	if r3.Norm(out) < parallelEps*r3.Norm(o.Up) {
		out = r3.Cross(t, o.Fallback)
	}
	out = r3.Unit(out)

	angle := float64(index)*o.Alternate + float64(index/2)*o.Offset
	out = r3.Rotate(out, angle, t)

	axis := r3.Unit(r3.Cross(out, t))
	dir := r3.Add(r3.Scale(math.Cos(o.Tilt), out), r3.Scale(math.Sin(o.Tilt), t))
	dir = r3.Unit(dir)
	normal := r3.Cross(axis, dir)

	return Frame{
		Position:    point,
		Direction:   dir,
		Axis:        axis,
		Normal:      normal,
		Orientation: basisQuat(axis, dir, normal),
	}
}

// basisQuat converts the rotation with columns x, y, z to a unit quaternion.
func basisQuat(x, y, z r3.Vec) quat.Number {
	m00, m01, m02 := x.X, y.X, z.X
	m10, m11, m12 := x.Y, y.Y, z.Y
	m20, m21, m22 := x.Z, y.Z, z.Z

	var q quat.Number
	switch trace := m00 + m11 + m22; {
	case trace > 0:
		s := 0.5 / math.Sqrt(trace+1)
		q = quat.Number{Real: 0.25 / s, Imag: (m21 - m12) * s, Jmag: (m02 - m20) * s, Kmag: (m10 - m01) * s}
	case m00 > m11 && m00 > m22:
		s := 2 * math.Sqrt(1+m00-m11-m22)
		q = quat.Number{Real: (m21 - m12) / s, Imag: 0.25 * s, Jmag: (m01 + m10) / s, Kmag: (m02 + m20) / s}
	case m11 > m22:
		s := 2 * math.Sqrt(1+m11-m00-m22)
		q = quat.Number{Real: (m02 - m20) / s, Imag: (m01 + m10) / s, Jmag: 0.25 * s, Kmag: (m12 + m21) / s}
	default:
		s := 2 * math.Sqrt(1+m22-m00-m11)
		q = quat.Number{Real: (m10 - m01) / s, Imag: (m02 + m20) / s, Jmag: (m12 + m21) / s, Kmag: 0.25 * s}
	}
	return q
}

// Rotate applies the unit quaternion q to v.
func Rotate(q quat.Number, v r3.Vec) r3.Vec {
	p := quat.Number{Imag: v.X, Jmag: v.Y, Kmag: v.Z}
	r := quat.Mul(quat.Mul(q, p), quat.Conj(q))
	return r3.Vec{X: r.Imag, Y: r.Jmag, Z: r.Kmag}
}

// Stem is a bending stem: a quadratic Bézier in the X/Y plane rising from
// the origin to Height, leaning Bend*Height sideways at the top.
type Stem struct {
	Height float64
	Bend   float64
}

func (s Stem) controls() (p0, p1, p2 r3.Vec) {
	return r3.Vec{}, r3.Vec{X: 0.5 * s.Bend * s.Height, Y: 0.55 * s.Height}, r3.Vec{X: s.Bend * s.Height, Y: s.Height}
}

// Point returns the stem position at t in [0,1].
func (s Stem) Point(t float64) r3.Vec {
	p0, p1, p2 := s.controls()
	u := 1 - t
	return r3.Add(r3.Add(r3.Scale(u*u, p0), r3.Scale(2*u*t, p1)), r3.Scale(t*t, p2))
}

// Tangent returns the unnormalized derivative at t.
func (s Stem) Tangent(t float64) r3.Vec {
	p0, p1, p2 := s.controls()
	return r3.Add(r3.Scale(2*(1-t), r3.Sub(p1, p0)), r3.Scale(2*t, r3.Sub(p2, p1)))
}

// Samples returns n+1 evenly parameterized points from base to tip.
func (s Stem) Samples(n int) []r3.Vec {
	if n < 1 {
		n = 1
	}
	pts := make([]r3.Vec, n+1)
	for i := range pts {
		pts[i] = s.Point(float64(i) / float64(n))
	}
	return pts
}

// LeafFrames spreads count leaves over the middle of the stem. A zero count
// yields no frames.
func (s Stem) LeafFrames(count int, o FrameOptions) []Frame {
	if count <= 0 {
		return nil
	}
	frames := make([]Frame, count)
	for i := range frames {
		t := 0.25 + 0.6*(float64(i)+0.5)/float64(count)
		frames[i] = LeafFrame(s.Point(t), s.Tangent(t), i, o)
	}
	return frames
}
