// Package mesh provides the vertex/index mesh type shared by the mesher, the
// plane and the renderer, plus the transforms used to place sub-meshes.
package mesh

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// MaxVertices is the largest vertex count addressable with 16-bit indices.
const MaxVertices = math.MaxUint16

var (
	// ErrIndexOverflow is returned when a mesh would need more vertices than
	// a 16-bit index buffer can address.
	ErrIndexOverflow = errors.New("mesh: vertex count exceeds 16-bit index range")

	// ErrMalformed is returned when an index refers to a vertex that does not exist.
	ErrMalformed = errors.New("mesh: malformed index buffer")
)

// Vertex is a mesh vertex. Layout is two tightly packed vec3 (24 bytes) and
// is uploaded to the GPU as-is.
type Vertex struct {
	Position mgl32.Vec3
	Colour   mgl32.Vec3
}

// Mesh holds triangle geometry ready for an index buffer.
// Every three indices form one triangle.
type Mesh struct {
	Vertices []Vertex
	Indices  []uint16
}

// Bounds is an axis-aligned bounding box.
type Bounds struct {
	Min mgl32.Vec3
	Max mgl32.Vec3
}

// Clone returns a deep copy of the mesh.
func (m Mesh) Clone() Mesh {
	out := Mesh{
		Vertices: make([]Vertex, len(m.Vertices)),
		Indices:  make([]uint16, len(m.Indices)),
	}
	copy(out.Vertices, m.Vertices)
	copy(out.Indices, m.Indices)
	return out
}

// Empty reports whether the mesh has no triangles.
func (m Mesh) Empty() bool {
	return len(m.Indices) == 0
}

// TriangleCount returns the number of triangles in the index buffer.
func (m Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// Scale multiplies every position by factor.
func (m *Mesh) Scale(factor float32) *Mesh {
	for i := range m.Vertices {
		m.Vertices[i].Position = m.Vertices[i].Position.Mul(factor)
	}
	return m
}

// Transform scales every position per axis.
func (m *Mesh) Transform(factors mgl32.Vec3) *Mesh {
	for i := range m.Vertices {
		p := m.Vertices[i].Position
		m.Vertices[i].Position = mgl32.Vec3{p[0] * factors[0], p[1] * factors[1], p[2] * factors[2]}
	}
	return m
}

// Translate offsets every position.
func (m *Mesh) Translate(offset mgl32.Vec3) *Mesh {
	for i := range m.Vertices {
		m.Vertices[i].Position = m.Vertices[i].Position.Add(offset)
	}
	return m
}

// Rotate90 rotates every position a quarter turn about Z: (x, y) -> (y, -x).
func (m *Mesh) Rotate90() *Mesh {
	for i := range m.Vertices {
		p := m.Vertices[i].Position
		m.Vertices[i].Position = mgl32.Vec3{p[1], -p[0], p[2]}
	}
	return m
}

// Union appends other to m, rebasing its indices past m's vertices.
// Coincident vertices are kept as separate entries.
func (m *Mesh) Union(other Mesh) error {
	offset := len(m.Vertices)
	if offset+len(other.Vertices) > MaxVertices {
		return fmt.Errorf("union of %d and %d vertices: %w", offset, len(other.Vertices), ErrIndexOverflow)
	}

	m.Vertices = append(m.Vertices, other.Vertices...)
	for _, idx := range other.Indices {
		m.Indices = append(m.Indices, idx+uint16(offset))
	}
	return nil
}

// Validate checks that the index buffer holds whole triangles and that every
// index refers to an existing vertex.
func (m Mesh) Validate() error {
	if len(m.Vertices) > MaxVertices {
		return fmt.Errorf("%d vertices: %w", len(m.Vertices), ErrIndexOverflow)
	}
	if len(m.Indices)%3 != 0 {
		return fmt.Errorf("%d indices is not a whole number of triangles: %w", len(m.Indices), ErrMalformed)
	}
	for i, idx := range m.Indices {
		if int(idx) >= len(m.Vertices) {
			return fmt.Errorf("index %d at %d, only %d vertices: %w", idx, i, len(m.Vertices), ErrMalformed)
		}
	}
	return nil
}

// Bounds returns the bounding box of all vertex positions.
// An empty mesh has zero bounds.
func (m Mesh) Bounds() Bounds {
	if len(m.Vertices) == 0 {
		return Bounds{}
	}
	b := Bounds{Min: m.Vertices[0].Position, Max: m.Vertices[0].Position}
	for _, v := range m.Vertices[1:] {
		for axis := 0; axis < 3; axis++ {
			if v.Position[axis] < b.Min[axis] {
				b.Min[axis] = v.Position[axis]
			}
			if v.Position[axis] > b.Max[axis] {
				b.Max[axis] = v.Position[axis]
			}
		}
	}
	return b
}
