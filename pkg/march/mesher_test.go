package march

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/marchfield/pkg/field"
	"github.com/Faultbox/marchfield/pkg/mesh"
)

func assertWelded(t *testing.T, m mesh.Mesh) {
	t.Helper()
	if err := m.Validate(); err != nil {
		t.Fatalf("invalid mesh: %v", err)
	}
	seen := make(map[mgl32.Vec3]int, len(m.Vertices))
	for i, v := range m.Vertices {
		if j, ok := seen[v.Position]; ok {
			t.Fatalf("vertices %d and %d share position %v", j, i, v.Position)
		}
		seen[v.Position] = i
	}
}

func meshesEqual(a, b mesh.Mesh) bool {
	if len(a.Vertices) != len(b.Vertices) || len(a.Indices) != len(b.Indices) {
		return false
	}
	for i := range a.Vertices {
		if a.Vertices[i] != b.Vertices[i] {
			return false
		}
	}
	for i := range a.Indices {
		if a.Indices[i] != b.Indices[i] {
			return false
		}
	}
	return true
}

func TestCellsRowMajor(t *testing.T) {
	c, err := field.FromRows([][]float32{
		{0.0, 0.1, 0.2},
		{0.3, 0.4, 0.5},
		{0.6, 0.7, 0.8},
	})
	if err != nil {
		t.Fatalf("FromRows failed: %v", err)
	}

	cells, err := Cells(c)
	if err != nil {
		t.Fatalf("Cells failed: %v", err)
	}
	if len(cells) != 4 {
		t.Fatalf("expected 4 cells, got %d", len(cells))
	}

	// i = y*(M-1) + x, so cell 1 is (x=1, y=0).
	want := Cell{A: 0.1, B: 0.2, C: 0.5, D: 0.4}
	if cells[1] != want {
		t.Errorf("cell 1 = %+v, want %+v", cells[1], want)
	}
	want = Cell{A: 0.3, B: 0.4, C: 0.7, D: 0.6}
	if cells[2] != want {
		t.Errorf("cell 2 = %+v, want %+v", cells[2], want)
	}
}

func TestMeshChunkUniformGrid(t *testing.T) {
	c := field.New(field.DefaultSize)

	m, err := NewMesher().MeshChunk(c)
	if err != nil {
		t.Fatalf("MeshChunk failed: %v", err)
	}

	if got, want := m.TriangleCount(), 31*31*2; got != want {
		t.Errorf("expected %d triangles, got %d", want, got)
	}
	if got, want := len(m.Vertices), 32*32; got != want {
		t.Errorf("expected %d vertices, got %d", want, got)
	}
	assertWelded(t, m)

	b := m.Bounds()
	if !b.Min.ApproxEqual(mgl32.Vec3{0, 0, 0}) || !b.Max.ApproxEqual(mgl32.Vec3{1, 1, 0}) {
		t.Errorf("expected unit square bounds, got %v..%v", b.Min, b.Max)
	}
}

func TestMeshChunkPaintedCircle(t *testing.T) {
	c := field.New(field.DefaultSize)
	c.PaintCircle(5, 5, 2)

	m, err := NewMesher().MeshChunk(c)
	if err != nil {
		t.Fatalf("MeshChunk failed: %v", err)
	}
	assertWelded(t, m)

	if v, _ := c.At(5, 5); v > DefaultCutoff {
		t.Fatalf("circle centre should be below the cutoff, got %v", v)
	}
	uniform, err := NewMesher().MeshChunk(field.New(field.DefaultSize))
	if err != nil {
		t.Fatalf("MeshChunk failed: %v", err)
	}
	if meshesEqual(m, uniform) {
		t.Error("painted chunk should not mesh like an untouched one")
	}

	// Cut points are interpolated along cell edges, off the sample grid.
	interpolated := 0
	for _, v := range m.Vertices {
		x, y := v.Position.X()*31, v.Position.Y()*31
		if math.Abs(float64(x)-math.Round(float64(x))) > 1e-3 ||
			math.Abs(float64(y)-math.Round(float64(y))) > 1e-3 {
			interpolated++
		}
	}
	if interpolated == 0 {
		t.Error("expected interpolated cut points around the circle")
	}

	// The centre sample is filled, so no vertex may sit on it.
	centre := mgl32.Vec3{5, 5, 0}.Mul(1.0 / 31)
	for _, v := range m.Vertices {
		if v.Position.ApproxEqualThreshold(centre, 1e-6) {
			t.Errorf("filled centre should not be a mesh vertex")
		}
	}

	// A cell far from the circle still renders as a full quad.
	far := mgl32.Vec3{20, 20, 0}.Mul(1.0 / 31)
	found := false
	for _, v := range m.Vertices {
		if v.Position.ApproxEqualThreshold(far, 1e-6) {
			found = true
		}
	}
	if !found {
		t.Error("untouched region lost its grid vertex")
	}
}

func TestMeshChunkIsDeterministic(t *testing.T) {
	c := field.New(16)
	c.PaintCircle(4, 7, 3.5)
	c.PaintCircle(11, 9, 2.25)

	mesher := NewMesher()
	a, err := mesher.MeshChunk(c)
	if err != nil {
		t.Fatalf("MeshChunk failed: %v", err)
	}
	b, err := mesher.MeshChunk(c)
	if err != nil {
		t.Fatalf("MeshChunk failed: %v", err)
	}

	if len(a.Vertices) != len(b.Vertices) || len(a.Indices) != len(b.Indices) {
		t.Fatalf("mesh sizes differ between runs")
	}
	for i := range a.Vertices {
		if a.Vertices[i] != b.Vertices[i] {
			t.Fatalf("vertex %d differs: %v vs %v", i, a.Vertices[i], b.Vertices[i])
		}
	}
	for i := range a.Indices {
		if a.Indices[i] != b.Indices[i] {
			t.Fatalf("index %d differs", i)
		}
	}
	assertWelded(t, a)
}

func TestMeshChunkTooSmall(t *testing.T) {
	for _, size := range []int{0, 1} {
		m, err := NewMesher().MeshChunk(field.New(size))
		if err != nil {
			t.Fatalf("size %d: unexpected error %v", size, err)
		}
		if !m.Empty() {
			t.Errorf("size %d: expected empty mesh", size)
		}
	}
}

func TestMeshChunkFullyFilled(t *testing.T) {
	c := field.New(8)
	c.PaintCircle(3.5, 3.5, 20)

	m, err := NewMesher().MeshChunk(c)
	if err != nil {
		t.Fatalf("MeshChunk failed: %v", err)
	}
	if !m.Empty() {
		t.Errorf("fully filled chunk should produce no triangles, got %d", m.TriangleCount())
	}
}
