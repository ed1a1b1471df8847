package march

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/marchfield/pkg/mesh"
)

const (
	hi = 1.0 // on: empty sample, above cutoff
	lo = 0.0 // off: filled sample
)

func TestSideBounds(t *testing.T) {
	if got := Side(0, 0); got != 0 {
		t.Errorf("Side(0,0) = %v, want 0", got)
	}
	if got := Side(1, 1); got != 1 {
		t.Errorf("Side(1,1) = %v, want 1", got)
	}
	if got := Side(1, 0); got < 0.4999 || got > 0.5001 {
		t.Errorf("Side(1,0) = %v, want 0.5", got)
	}

	prev := float32(-1)
	for i := 0; i <= 100; i++ {
		for j := 0; j <= 100; j++ {
			p1, p2 := float32(i)/100, float32(j)/100
			s := Side(p1, p2)
			if s < 0 || s > 1 {
				t.Fatalf("Side(%v,%v) = %v outside [0,1]", p1, p2, s)
			}
			if s != Side(p2, p1) {
				t.Fatalf("Side not symmetric at (%v,%v)", p1, p2)
			}
		}
		// Monotonic in p1+p2 along the diagonal.
		s := Side(float32(i)/100, float32(i)/100)
		if s < prev {
			t.Fatalf("Side not monotonic at %d: %v < %v", i, s, prev)
		}
		prev = s
	}
}

func TestRotateRelabels(t *testing.T) {
	c := Cell{A: 1, B: 2, C: 3, D: 4}
	got := c.Rotate()
	want := Cell{A: 4, B: 1, C: 2, D: 3}
	if got != want {
		t.Errorf("Rotate() = %+v, want %+v", got, want)
	}
	if c.Rotate().Rotate().Rotate().Rotate() != c {
		t.Error("four rotations should restore the cell")
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		cell Cell
		want Classification
	}{
		{"none", Cell{lo, lo, lo, lo}, Classification{PatternNone, 0}},
		{"a only", Cell{hi, lo, lo, lo}, Classification{PatternCorner, 0}},
		{"b only", Cell{lo, hi, lo, lo}, Classification{PatternCorner, 3}},
		{"c only", Cell{lo, lo, hi, lo}, Classification{PatternCorner, 2}},
		{"d only", Cell{lo, lo, lo, hi}, Classification{PatternCorner, 1}},
		{"top edge", Cell{hi, hi, lo, lo}, Classification{PatternEdge, 0}},
		{"right edge", Cell{lo, hi, hi, lo}, Classification{PatternEdge, 3}},
		{"left edge", Cell{hi, lo, lo, hi}, Classification{PatternEdge, 1}},
		{"a-c diagonal", Cell{hi, lo, hi, lo}, Classification{PatternSaddle, 0}},
		{"b-d diagonal", Cell{lo, hi, lo, hi}, Classification{PatternSaddle, 1}},
		{"missing d", Cell{hi, hi, hi, lo}, Classification{PatternNotch, 0}},
		{"missing a", Cell{lo, hi, hi, hi}, Classification{PatternNotch, 3}},
		{"full", Cell{hi, hi, hi, hi}, Classification{PatternFull, 0}},
		{"all at cutoff", Cell{0.2, 0.2, 0.2, 0.2}, Classification{PatternFull, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.cell, DefaultCutoff)
			if got != tt.want {
				t.Errorf("Classify(%+v) = %v/%d, want %v/%d",
					tt.cell, got.Pattern, got.Rotation, tt.want.Pattern, tt.want.Rotation)
			}
		})
	}
}

func TestClassificationTotality(t *testing.T) {
	// Every non-empty occupancy mask matches some pattern and produces triangles;
	// only the all-off mask contributes nothing.
	for mask := 0; mask < 16; mask++ {
		cell := Cell{}
		vals := []*float32{&cell.A, &cell.B, &cell.C, &cell.D}
		for i, v := range vals {
			*v = lo
			if mask&(1<<i) != 0 {
				*v = hi
			}
		}

		m := Triangulate(cell, DefaultCutoff)
		if mask == 0 {
			if !m.Empty() {
				t.Errorf("mask 0: expected empty mesh, got %d triangles", m.TriangleCount())
			}
			continue
		}
		if m.Empty() {
			t.Errorf("mask %04b: expected triangles, got none", mask)
		}
		if err := m.Validate(); err != nil {
			t.Errorf("mask %04b: invalid mesh: %v", mask, err)
		}
	}
}

func signedArea(m mesh.Mesh, tri int) float32 {
	p0 := m.Vertices[m.Indices[tri*3]].Position
	p1 := m.Vertices[m.Indices[tri*3+1]].Position
	p2 := m.Vertices[m.Indices[tri*3+2]].Position
	e1, e2 := p1.Sub(p0), p2.Sub(p0)
	return e1.X()*e2.Y() - e1.Y()*e2.X()
}

func TestTriangulateWindingIsConsistent(t *testing.T) {
	for mask := 1; mask < 16; mask++ {
		cell := Cell{lo, lo, lo, lo}
		if mask&1 != 0 {
			cell.A = hi
		}
		if mask&2 != 0 {
			cell.B = hi
		}
		if mask&4 != 0 {
			cell.C = hi
		}
		if mask&8 != 0 {
			cell.D = hi
		}

		m := Triangulate(cell, DefaultCutoff)
		for tri := 0; tri < m.TriangleCount(); tri++ {
			if a := signedArea(m, tri); a <= 0 {
				t.Errorf("mask %04b triangle %d: signed area %v, want > 0", mask, tri, a)
			}
		}
	}
}

func hasPosition(m mesh.Mesh, p mgl32.Vec3) bool {
	for _, v := range m.Vertices {
		if v.Position.ApproxEqualThreshold(p, 1e-6) {
			return true
		}
	}
	return false
}

func TestTriangulateCornerIsRotatedBack(t *testing.T) {
	tests := []struct {
		name   string
		cell   Cell
		corner mgl32.Vec3
	}{
		{"a", Cell{hi, lo, lo, lo}, posA},
		{"b", Cell{lo, hi, lo, lo}, posB},
		{"c", Cell{lo, lo, hi, lo}, posC},
		{"d", Cell{lo, lo, lo, hi}, posD},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := Triangulate(tt.cell, DefaultCutoff)
			if len(m.Vertices) != 3 {
				t.Fatalf("expected 3 vertices, got %d", len(m.Vertices))
			}
			if !hasPosition(m, tt.corner) {
				t.Errorf("corner triangle does not touch %v: %+v", tt.corner, m.Vertices)
			}
			for _, v := range m.Vertices {
				if v.Colour != (mgl32.Vec3{}) {
					t.Errorf("expected zero colour, got %v", v.Colour)
				}
			}
		})
	}
}

func TestSaddleConnectsAC(t *testing.T) {
	m := Triangulate(Cell{hi, lo, hi, lo}, DefaultCutoff)

	if m.TriangleCount() != 4 {
		t.Fatalf("expected 4 triangles, got %d", m.TriangleCount())
	}
	if !hasPosition(m, posA) || !hasPosition(m, posC) {
		t.Error("saddle should include corners a and c")
	}
	if hasPosition(m, posB) || hasPosition(m, posD) {
		t.Error("saddle should not include corners b and d")
	}
	// The cell centre lies on the a–c diagonal and must be covered.
	if !covers(m, mgl32.Vec3{0, 0, 0}) {
		t.Error("saddle band does not cover the cell centre")
	}
}

// covers reports whether p lies inside any triangle of m.
func covers(m mesh.Mesh, p mgl32.Vec3) bool {
	for tri := 0; tri < m.TriangleCount(); tri++ {
		a := m.Vertices[m.Indices[tri*3]].Position
		b := m.Vertices[m.Indices[tri*3+1]].Position
		c := m.Vertices[m.Indices[tri*3+2]].Position
		d1 := edgeSign(p, a, b)
		d2 := edgeSign(p, b, c)
		d3 := edgeSign(p, c, a)
		if d1 >= 0 && d2 >= 0 && d3 >= 0 {
			return true
		}
	}
	return false
}

func edgeSign(p, a, b mgl32.Vec3) float32 {
	return (b.X()-a.X())*(p.Y()-a.Y()) - (b.Y()-a.Y())*(p.X()-a.X())
}

func TestCutPointsFollowSide(t *testing.T) {
	// a on at 1.0, b off at 0.0: Side = 0.5, so the a–b cut sits mid-edge.
	m := Triangulate(Cell{hi, lo, lo, lo}, DefaultCutoff)
	if !hasPosition(m, mgl32.Vec3{0, -0.5, 0}) {
		t.Errorf("expected a–b cut at the edge midpoint, got %+v", m.Vertices)
	}

	// A partly filled off corner pushes the cut further from a.
	m = Triangulate(Cell{hi, 0.15, lo, lo}, DefaultCutoff)
	want := -0.5 + Side(hi, 0.15)
	if !hasPosition(m, mgl32.Vec3{want, -0.5, 0}) {
		t.Errorf("expected a–b cut at x=%v, got %+v", want, m.Vertices)
	}
	if want <= 0 {
		t.Errorf("expected cut past the midpoint, got x=%v", want)
	}
}
