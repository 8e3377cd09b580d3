package shape

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/garden/components"
)

const eps = 1e-9

func TestPetalEndpointsAndSymmetry(t *testing.T) {
	p := Petal(2, 0.8, 10)
	if len(p) != 20 {
		t.Fatalf("len = %d, want 20", len(p))
	}
	if p[0] != (r2.Vec{}) {
		t.Errorf("base = %v, want origin", p[0])
	}
	if math.Abs(p[10].X) > eps || math.Abs(p[10].Y-2) > eps {
		t.Errorf("tip = %v, want (0,2)", p[10])
	}
	// Right point k mirrors left point 20-k.
	for k := 1; k < 10; k++ {
		l := p[20-k]
		if math.Abs(p[k].X+l.X) > eps || math.Abs(p[k].Y-l.Y) > eps {
			t.Errorf("point %d %v not mirrored by %v", k, p[k], l)
		}
	}
	if p.Area() <= 0 {
		t.Error("petal should wind counter-clockwise")
	}
	lo, hi := p.Bounds()
	if hi.X > 0.4 || lo.X < -0.4 {
		t.Errorf("half-width exceeds width/2: %v..%v", lo, hi)
	}
}

func TestOrganicLayerSamplesAndAspect(t *testing.T) {
	p := OrganicLayer(LayerParams{Samples: 8, BaseRadius: 1, AspectRatio: 1.3, Wobble: 0})
	if len(p) != MinLayerSamples {
		t.Errorf("samples = %d, want clamp to %d", len(p), MinLayerSamples)
	}
	lo, hi := p.Bounds()
	if w, h := hi.X-lo.X, hi.Y-lo.Y; w <= h {
		t.Errorf("aspect 1.3 should be wider than tall: %vx%v", w, h)
	}
}

func TestOrganicLayerWobbleBounded(t *testing.T) {
	p := OrganicLayer(LayerParams{Samples: 64, BaseRadius: 2, AspectRatio: 1, Wobble: 0.1, Seed: 3})
	for i, v := range p {
		r := r2.Norm(v)
		if r < 2*0.9-eps || r > 2*1.1+eps {
			t.Errorf("sample %d radius %v outside wobble band", i, r)
		}
	}
}

func TestRemnantLayersConcentric(t *testing.T) {
	layers := RemnantLayers(LayerParams{Samples: 48, BaseRadius: 1, AspectRatio: 1.1, Wobble: 0.08, Seed: 5})
	prev := math.Inf(1)
	for i, l := range layers {
		r := l.MaxRadius()
		if r >= prev {
			t.Errorf("layer %d radius %v not smaller than previous %v", i, r, prev)
		}
		prev = r
	}
	// Distinct seeds: the scaled inner layer is not a copy of the outer one.
	same := true
	for k := range layers[0] {
		if math.Abs(layers[0][k].X*0.7-layers[1][k].X) > 1e-6 {
			same = false
			break
		}
	}
	if same {
		t.Error("inner layer is an exact scaled copy of the outer layer")
	}
}

func TestCracksCountAndExtent(t *testing.T) {
	cracks := Cracks(CrackParams{Count: 4, Size: 10, Wobble: 0.8, BaseWidth: 1})
	if len(cracks) != 4 {
		t.Fatalf("got %d cracks, want 4", len(cracks))
	}
	for i, c := range cracks {
		if r := c.Points.MaxRadius(); r > 9.5+1e-9 {
			t.Errorf("crack %d extends to %v, want <= 9.5", i, r)
		}
		if len(c.Points) != 18 {
			t.Errorf("crack %d has %d vertices, want 18", i, len(c.Points))
		}
	}
}

func TestCracksClampCount(t *testing.T) {
	tests := []struct{ in, want int }{{0, 4}, {2, 4}, {7, 7}, {30, 12}}
	for _, tt := range tests {
		if got := len(Cracks(CrackParams{Count: tt.in, Size: 1, BaseWidth: 0.1})); got != tt.want {
			t.Errorf("Cracks(count=%d) returned %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestCracksTaperAndColors(t *testing.T) {
	colors := []components.Color{{R: 1}, {R: 2}, {R: 3}, {R: 4}}
	cracks := Cracks(CrackParams{Count: 6, Size: 10, Wobble: 0, BaseWidth: 1, Colors: colors})
	for i, c := range cracks {
		if want := colors[i%3]; c.Color != want {
			t.Errorf("crack %d color = %v, want %v", i, c.Color, want)
		}
	}

	pts := cracks[0].Points
	n := len(pts) / 2
	rootWidth := r2.Norm(r2.Sub(pts[0], pts[len(pts)-1]))
	tipWidth := r2.Norm(r2.Sub(pts[n-1], pts[n]))
	if math.Abs(rootWidth-1) > 1e-6 {
		t.Errorf("root width = %v, want 1", rootWidth)
	}
	// Tip vertices are pulled back onto the reach circle, narrowing them slightly.
	if math.Abs(tipWidth-0.3) > 1e-3 {
		t.Errorf("tip width = %v, want 0.3", tipWidth)
	}
}

func TestCracksReproducible(t *testing.T) {
	p := CrackParams{Count: 9, Size: 3, Wobble: 0.5, BaseWidth: 0.2}
	a, b := Cracks(p), Cracks(p)
	for i := range a {
		for k := range a[i].Points {
			if a[i].Points[k] != b[i].Points[k] {
				t.Fatalf("crack %d vertex %d differs between runs", i, k)
			}
		}
	}
}

func checkFrame(t *testing.T, f Frame, tangent r3.Vec, tilt float64) {
	t.Helper()
	for name, v := range map[string]r3.Vec{"direction": f.Direction, "axis": f.Axis, "normal": f.Normal} {
		if math.Abs(r3.Norm(v)-1) > 1e-9 {
			t.Errorf("%s not unit: %v", name, v)
		}
	}
	if d := r3.Dot(f.Direction, f.Axis); math.Abs(d) > 1e-9 {
		t.Errorf("direction·axis = %v", d)
	}
	if d := r3.Dot(f.Direction, f.Normal); math.Abs(d) > 1e-9 {
		t.Errorf("direction·normal = %v", d)
	}
	if got, want := r3.Dot(f.Direction, r3.Unit(tangent)), math.Sin(tilt); math.Abs(got-want) > 1e-9 {
		t.Errorf("direction·tangent = %v, want sin(tilt) = %v", got, want)
	}
	// Orientation maps local +Y onto the leaf direction.
	if got := Rotate(f.Orientation, r3.Vec{Y: 1}); r3.Norm(r3.Sub(got, f.Direction)) > 1e-9 {
		t.Errorf("orientation·Y = %v, want %v", got, f.Direction)
	}
	if got := Rotate(f.Orientation, r3.Vec{X: 1}); r3.Norm(r3.Sub(got, f.Axis)) > 1e-9 {
		t.Errorf("orientation·X = %v, want %v", got, f.Axis)
	}
}

func TestLeafFrameOrthonormal(t *testing.T) {
	o := DefaultFrameOptions()
	tangent := r3.Vec{X: 0.3, Y: 1, Z: 0.1}
	for i := 0; i < 6; i++ {
		checkFrame(t, LeafFrame(r3.Vec{Y: 1}, tangent, i, o), tangent, o.Tilt)
	}
}

func TestLeafFrameAlternates(t *testing.T) {
	o := DefaultFrameOptions()
	o.Offset = 0
	o.Tilt = 0
	tangent := r3.Vec{Y: 1, X: 0.2}
	a := LeafFrame(r3.Vec{}, tangent, 0, o)
	b := LeafFrame(r3.Vec{}, tangent, 1, o)
	if d := r3.Dot(a.Direction, b.Direction); math.Abs(d+1) > 1e-9 {
		t.Errorf("consecutive leaves should point opposite ways, dot = %v", d)
	}
}

func TestLeafFrameParallelTangentFallback(t *testing.T) {
	o := DefaultFrameOptions()
	tangent := r3.Vec{Y: 1} // parallel to Up
	f := LeafFrame(r3.Vec{}, tangent, 0, o)
	if math.IsNaN(f.Direction.X) || math.IsNaN(f.Direction.Y) || math.IsNaN(f.Direction.Z) {
		t.Fatalf("direction is NaN: %v", f.Direction)
	}
	checkFrame(t, f, tangent, o.Tilt)
}

func TestStemLeafFrames(t *testing.T) {
	s := Stem{Height: 2, Bend: 0.2}
	if s.Point(0) != (r3.Vec{}) {
		t.Errorf("stem base = %v", s.Point(0))
	}
	if top := s.Point(1); math.Abs(top.Y-2) > eps || math.Abs(top.X-0.4) > eps {
		t.Errorf("stem top = %v, want (0.4,2,0)", top)
	}
	if frames := s.LeafFrames(0, DefaultFrameOptions()); frames != nil {
		t.Errorf("zero leaves produced %d frames", len(frames))
	}
	frames := s.LeafFrames(3, DefaultFrameOptions())
	if len(frames) != 3 {
		t.Fatalf("got %d frames, want 3", len(frames))
	}
	for i := 1; i < len(frames); i++ {
		if frames[i].Position.Y <= frames[i-1].Position.Y {
			t.Errorf("leaf %d not above leaf %d", i, i-1)
		}
	}
}

func TestExtrudeClosedSolid(t *testing.T) {
	m := Extrude(Petal(1, 0.5, 8), ExtrudeOptions{Depth: 0.1, Bevel: 0.02})
	if len(m.Normals) != len(m.Positions) {
		t.Fatalf("normals %d != positions %d", len(m.Normals), len(m.Positions))
	}
	for _, idx := range m.Indices {
		if int(idx) >= len(m.Positions) {
			t.Fatalf("index %d out of range", idx)
		}
	}
	lo, hi := m.Bounds()
	if got := hi.Z - lo.Z; math.Abs(got-0.14) > 1e-9 {
		t.Errorf("thickness = %v, want depth+2*bevel = 0.14", got)
	}
	// Every edge of a closed mesh is shared by exactly two triangles.
	edges := make(map[[2]uint32]int)
	for i := 0; i < len(m.Indices); i += 3 {
		tri := m.Indices[i : i+3]
		for k := 0; k < 3; k++ {
			a, b := tri[k], tri[(k+1)%3]
			if a > b {
				a, b = b, a
			}
			edges[[2]uint32{a, b}]++
		}
	}
	for e, n := range edges {
		if n != 2 {
			t.Fatalf("edge %v used by %d triangles", e, n)
		}
	}
}

func TestExtrudeCurlLiftsTip(t *testing.T) {
	flatMesh := Extrude(Petal(1, 0.4, 8), ExtrudeOptions{Depth: 0.02})
	curled := Extrude(Petal(1, 0.4, 8), ExtrudeOptions{Depth: 0.02, Curl: 0.3})
	_, hiFlat := flatMesh.Bounds()
	_, hiCurl := curled.Bounds()
	if math.Abs(hiCurl.Z-hiFlat.Z-0.3) > 1e-9 {
		t.Errorf("curl lift = %v, want 0.3", hiCurl.Z-hiFlat.Z)
	}
}

func TestExtrudeDegenerate(t *testing.T) {
	m := Extrude(Path{{X: 0}, {X: 1}}, ExtrudeOptions{Depth: 1})
	if len(m.Positions) != 0 || len(m.Indices) != 0 {
		t.Error("two-point outline should produce an empty mesh")
	}
}

func TestExtrudeStripCrackCaps(t *testing.T) {
	const depth = 0.02
	for _, wobble := range []float64{0, 0.2, 0.4, 0.6, 0.8, 1} {
		for count := 4; count <= 12; count++ {
			for _, width := range []float64{0.02, 0.1, 0.4, 2} {
				cracks := Cracks(CrackParams{Count: count, Size: 1, Wobble: wobble, BaseWidth: width})
				for i, c := range cracks {
					m := ExtrudeStrip(c.Points, ExtrudeOptions{Depth: depth})
					front, back := capWinding(t, m, depth/2)
					if want := len(c.Points) - 2; front != want || back != want {
						t.Errorf("wobble %v count %d width %v crack %d: caps %d/%d triangles, want %d",
							wobble, count, width, i, front, back, want)
					}
				}
			}
		}
	}
}

func TestExtrudeStripClosed(t *testing.T) {
	cracks := Cracks(CrackParams{Count: 5, Size: 1, Wobble: 1, BaseWidth: 0.2})
	m := ExtrudeStrip(cracks[0].Points, ExtrudeOptions{Depth: 0.05})
	edges := make(map[[2]uint32]int)
	for i := 0; i < len(m.Indices); i += 3 {
		tri := m.Indices[i : i+3]
		for k := 0; k < 3; k++ {
			a, b := tri[k], tri[(k+1)%3]
			if a > b {
				a, b = b, a
			}
			edges[[2]uint32{a, b}]++
		}
	}
	for e, n := range edges {
		if n != 2 {
			t.Fatalf("edge %v used by %d triangles", e, n)
		}
	}
}

// capWinding counts the triangles lying in the front (z = half) and back
// (z = -half) caps, failing on any that face the wrong way.
func capWinding(t *testing.T, m Mesh, half float64) (front, back int) {
	t.Helper()
	for i := 0; i < len(m.Indices); i += 3 {
		a, b, c := m.Positions[m.Indices[i]], m.Positions[m.Indices[i+1]], m.Positions[m.Indices[i+2]]
		nz := r3.Cross(r3.Sub(b, a), r3.Sub(c, a)).Z
		switch {
		case a.Z == half && b.Z == half && c.Z == half:
			front++
			if nz <= 0 {
				t.Errorf("front cap triangle %d faces away (normal z %v)", i/3, nz)
			}
		case a.Z == -half && b.Z == -half && c.Z == -half:
			back++
			if nz >= 0 {
				t.Errorf("back cap triangle %d faces away (normal z %v)", i/3, nz)
			}
		}
	}
	return front, back
}

func TestTube(t *testing.T) {
	s := Stem{Height: 1}
	m := Tube(s.Samples(4), 0.1, 0.05, 6)
	if len(m.Positions) != 5*6 {
		t.Errorf("positions = %d, want 30", len(m.Positions))
	}
	if m.Triangles() != 4*6*2 {
		t.Errorf("triangles = %d, want 48", m.Triangles())
	}
}
