package shape

import (
	"math"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// Mesh is indexed triangle geometry ready for upload by a renderer.
type Mesh struct {
	Positions []r3.Vec
	Normals   []r3.Vec
	Indices   []uint32
}

// Triangles returns the triangle count.
func (m *Mesh) Triangles() int {
	return len(m.Indices) / 3
}

// Bounds returns the axis-aligned bounding box of the mesh.
func (m *Mesh) Bounds() (lo, hi r3.Vec) {
	if len(m.Positions) == 0 {
		return
	}
	lo, hi = m.Positions[0], m.Positions[0]
	for _, p := range m.Positions[1:] {
		lo = r3.Vec{X: math.Min(lo.X, p.X), Y: math.Min(lo.Y, p.Y), Z: math.Min(lo.Z, p.Z)}
		hi = r3.Vec{X: math.Max(hi.X, p.X), Y: math.Max(hi.Y, p.Y), Z: math.Max(hi.Z, p.Z)}
	}
	return lo, hi
}

// Transform places a mesh: scale, then rotate, then translate.
type Transform struct {
	Scale       float64
	Rotation    quat.Number
	Translation r3.Vec
}

// Identity is the transform that leaves geometry unchanged.
var Identity = Transform{Scale: 1, Rotation: quat.Number{Real: 1}}

// Apply transforms a point.
func (t Transform) Apply(p r3.Vec) r3.Vec {
	return r3.Add(Rotate(t.Rotation, r3.Scale(t.Scale, p)), t.Translation)
}

// Append adds other to m with the transform applied.
func (m *Mesh) Append(other Mesh, t Transform) {
	base := uint32(len(m.Positions))
	for i, p := range other.Positions {
		m.Positions = append(m.Positions, t.Apply(p))
		if i < len(other.Normals) {
			m.Normals = append(m.Normals, Rotate(t.Rotation, other.Normals[i]))
		}
	}
	for _, idx := range other.Indices {
		m.Indices = append(m.Indices, base+idx)
	}
}

// ExtrudeOptions controls how an outline becomes a solid.
type ExtrudeOptions struct {
	Depth float64 // thickness along Z
	Bevel float64 // inset and extra height of the bevel ring on each cap
	Curl  float64 // height-map bend toward +Z, growing with the square of Y
}

// Extrude turns a closed outline into a thin solid: two fan-triangulated caps,
// side walls and an optional beveled ring on each cap. Caps are fanned around
// the centroid, so outlines must be star-shaped about it (petals and organic
// layers are). Thickened polylines such as cracks go through ExtrudeStrip.
func Extrude(path Path, o ExtrudeOptions) Mesh {
	return extrude(path, o, false)
}

// ExtrudeStrip is Extrude for outlines made of two facing rails: the first
// half of path runs along one side and the second half returns along the
// other, so vertex k faces vertex len-1-k. Caps are triangulated as a strip of
// quads between facing vertices, which stays valid for bent outlines that are
// not star-shaped. Outlines with an odd vertex count fall back to the fan.
func ExtrudeStrip(path Path, o ExtrudeOptions) Mesh {
	return extrude(path, o, len(path)%2 == 0)
}

func extrude(path Path, o ExtrudeOptions, strip bool) Mesh {
	n := len(path)
	if n < 3 {
		return Mesh{}
	}
	if path.Area() < 0 {
		// Reversal keeps facing rail vertices paired.
		rev := make(Path, n)
		for i := range path {
			rev[i] = path[n-1-i]
		}
		path = rev
	}
	c := path.Centroid()
	half := o.Depth / 2

	var rings [][]r3.Vec
	if o.Bevel > 0 {
		inset := insetPath(path, c, o.Bevel)
		rings = append(rings, lift(inset, half+o.Bevel))
	}
	rings = append(rings, lift(path, half), lift(path, -half))
	if o.Bevel > 0 {
		rings = append(rings, lift(insetPath(path, c, o.Bevel), -half-o.Bevel))
	}

	front := rings[0]
	back := rings[len(rings)-1]
	var m Mesh

	for _, ring := range rings {
		m.Positions = append(m.Positions, ring...)
	}

	ringIdx := func(r, i int) uint32 { return uint32(r*n + i%n) }
	last := len(rings) - 1
	if strip {
		for k := 0; k < n/2-1; k++ {
			a, b, cc, d := k, k+1, n-2-k, n-1-k
			m.Indices = append(m.Indices,
				ringIdx(0, a), ringIdx(0, b), ringIdx(0, cc),
				ringIdx(0, a), ringIdx(0, cc), ringIdx(0, d),
				ringIdx(last, a), ringIdx(last, cc), ringIdx(last, b),
				ringIdx(last, a), ringIdx(last, d), ringIdx(last, cc),
			)
		}
	} else {
		cf := uint32(len(m.Positions))
		m.Positions = append(m.Positions, r3.Vec{X: c.X, Y: c.Y, Z: front[0].Z})
		cb := uint32(len(m.Positions))
		m.Positions = append(m.Positions, r3.Vec{X: c.X, Y: c.Y, Z: back[0].Z})
		for i := 0; i < n; i++ {
			m.Indices = append(m.Indices, cf, ringIdx(0, i), ringIdx(0, i+1))
			m.Indices = append(m.Indices, cb, ringIdx(last, i+1), ringIdx(last, i))
		}
	}
	for r := 0; r < last; r++ {
		for i := 0; i < n; i++ {
			a, b := ringIdx(r, i), ringIdx(r, i+1)
			cc, d := ringIdx(r+1, i+1), ringIdx(r+1, i)
			m.Indices = append(m.Indices, a, d, cc, a, cc, b)
		}
	}

	if o.Curl != 0 {
		applyCurl(m.Positions, path, o.Curl)
	}
	m.Normals = computeNormals(m.Positions, m.Indices)
	return m
}

// insetPath moves every vertex toward c by d, never past halfway.
func insetPath(p Path, c r2.Vec, d float64) Path {
	out := make(Path, len(p))
	for i, v := range p {
		toC := r2.Sub(c, v)
		dist := r2.Norm(toC)
		if dist == 0 {
			out[i] = v
			continue
		}
		out[i] = r2.Add(v, r2.Scale(math.Min(d, dist/2)/dist, toC))
	}
	return out
}

func lift(p Path, z float64) []r3.Vec {
	out := make([]r3.Vec, len(p))
	for i, v := range p {
		out[i] = r3.Vec{X: v.X, Y: v.Y, Z: z}
	}
	return out
}

// applyCurl bends the surface toward +Z by curl*len*(y/len)^2, measured from
// the outline's lowest point, so petals cup upward toward their tips.
func applyCurl(pos []r3.Vec, outline Path, curl float64) {
	lo, hi := outline.Bounds()
	length := hi.Y - lo.Y
	if length <= 0 {
		return
	}
	for i, p := range pos {
		f := (p.Y - lo.Y) / length
		pos[i].Z += curl * length * f * f
	}
}

func computeNormals(pos []r3.Vec, idx []uint32) []r3.Vec {
	normals := make([]r3.Vec, len(pos))
	for i := 0; i+2 < len(idx); i += 3 {
		a, b, c := idx[i], idx[i+1], idx[i+2]
		// Area-weighted face normal.
		fn := r3.Cross(r3.Sub(pos[b], pos[a]), r3.Sub(pos[c], pos[a]))
		normals[a] = r3.Add(normals[a], fn)
		normals[b] = r3.Add(normals[b], fn)
		normals[c] = r3.Add(normals[c], fn)
	}
	for i, nv := range normals {
		if r3.Norm(nv) > 0 {
			normals[i] = r3.Unit(nv)
		}
	}
	return normals
}

// Tube sweeps a circle of tapering radius along points, for stems.
func Tube(points []r3.Vec, baseRadius, tipRadius float64, sides int) Mesh {
	if len(points) < 2 {
		return Mesh{}
	}
	if sides < 3 {
		sides = 3
	}
	var m Mesh
	last := len(points) - 1
	for k, p := range points {
		var t r3.Vec
		switch k {
		case 0:
			t = r3.Sub(points[1], points[0])
		case last:
			t = r3.Sub(points[last], points[last-1])
		default:
			t = r3.Sub(points[k+1], points[k-1])
		}
		t = r3.Unit(t)
		n := r3.Cross(t, r3.Vec{Z: 1})
		if r3.Norm(n) < parallelEps {
			n = r3.Cross(t, r3.Vec{X: 1})
		}
		n = r3.Unit(n)
		b := r3.Cross(t, n)

		radius := baseRadius + (tipRadius-baseRadius)*float64(k)/float64(last)
		for s := 0; s < sides; s++ {
			a := 2 * math.Pi * float64(s) / float64(sides)
			off := r3.Add(r3.Scale(math.Cos(a), n), r3.Scale(math.Sin(a), b))
			m.Positions = append(m.Positions, r3.Add(p, r3.Scale(radius, off)))
			m.Normals = append(m.Normals, off)
		}
	}
	for k := 0; k < last; k++ {
		for s := 0; s < sides; s++ {
			a := uint32(k*sides + s)
			b := uint32(k*sides + (s+1)%sides)
			c := uint32((k+1)*sides + (s+1)%sides)
			d := uint32((k+1)*sides + s)
			m.Indices = append(m.Indices, a, b, c, a, c, d)
		}
	}
	return m
}
