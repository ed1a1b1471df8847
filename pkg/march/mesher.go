package march

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/marchfield/pkg/field"
	"github.com/Faultbox/marchfield/pkg/mesh"
)

// Mesher converts whole chunks into welded meshes.
type Mesher struct {
	Cutoff float32
}

// NewMesher creates a mesher with the default cutoff.
func NewMesher() Mesher {
	return Mesher{Cutoff: DefaultCutoff}
}

// Cells slides a 2×2 window across the chunk in row-major order. Cell i sits
// at x = i % (size-1), y = i / (size-1).
func Cells(c *field.Chunk) ([]Cell, error) {
	n := c.Size() - 1
	if n < 1 {
		return nil, nil
	}

	cells := make([]Cell, 0, n*n)
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			a, b, cc, d, err := c.Window(x, y)
			if err != nil {
				return nil, err
			}
			cells = append(cells, Cell{A: a, B: b, C: cc, D: d})
		}
	}
	return cells, nil
}

// MeshChunk triangulates every cell of c, welds the result, and normalizes it
// so the chunk spans the unit square: sample (x, y) lands at
// (x, y) / (size-1).
func (m Mesher) MeshChunk(c *field.Chunk) (mesh.Mesh, error) {
	cells, err := Cells(c)
	if err != nil {
		return mesh.Mesh{}, err
	}
	if len(cells) == 0 {
		return mesh.Mesh{}, nil
	}

	n := c.Size() - 1
	welder := mesh.NewWelder()
	for i, cell := range cells {
		part := Triangulate(cell, m.Cutoff)
		if part.Empty() {
			continue
		}
		part.Translate(mgl32.Vec3{float32(i % n), float32(i / n), 0})
		if err := welder.Add(part); err != nil {
			return mesh.Mesh{}, fmt.Errorf("cell %d: %w", i, err)
		}
	}

	out := welder.Mesh()
	out.Translate(mgl32.Vec3{0.5, 0.5, 0}).Scale(1 / float32(n))
	return out, nil
}
