package march

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/marchfield/pkg/mesh"
)

// Canonical corner positions in cell-local space.
var (
	posA = mgl32.Vec3{-0.5, -0.5, 0}
	posB = mgl32.Vec3{0.5, -0.5, 0}
	posC = mgl32.Vec3{0.5, 0.5, 0}
	posD = mgl32.Vec3{-0.5, 0.5, 0}
)

// cut places the crossing between an on corner and an off corner, Side(on, off)
// of the way from the on corner.
func cut(from, to mgl32.Vec3, on, off float32) mgl32.Vec3 {
	t := Side(on, off)
	return from.Add(to.Sub(from).Mul(t))
}

// fan builds a mesh from positions and triangle indices. Colours stay zero.
func fan(positions []mgl32.Vec3, indices ...uint16) mesh.Mesh {
	m := mesh.Mesh{
		Vertices: make([]mesh.Vertex, len(positions)),
		Indices:  indices,
	}
	for i, p := range positions {
		m.Vertices[i].Position = p
	}
	return m
}

// build emits the local mesh for a pattern on a cell already rotated into
// canonical orientation. All triangles share the same winding.
func build(p Pattern, c Cell) mesh.Mesh {
	switch p {
	case PatternCorner:
		ab := cut(posA, posB, c.A, c.B)
		ad := cut(posA, posD, c.A, c.D)
		return fan([]mgl32.Vec3{posA, ab, ad}, 0, 1, 2)

	case PatternEdge:
		bc := cut(posB, posC, c.B, c.C)
		ad := cut(posA, posD, c.A, c.D)
		return fan([]mgl32.Vec3{posA, posB, bc, ad},
			0, 1, 2,
			0, 2, 3,
		)

	case PatternSaddle:
		ab := cut(posA, posB, c.A, c.B)
		ad := cut(posA, posD, c.A, c.D)
		cb := cut(posC, posB, c.C, c.B)
		cd := cut(posC, posD, c.C, c.D)
		return fan([]mgl32.Vec3{posA, ab, cb, posC, cd, ad},
			0, 1, 5, // corner a
			3, 4, 2, // corner c
			1, 2, 4, // band joining a–c
			1, 4, 5,
		)

	case PatternNotch:
		cd := cut(posC, posD, c.C, c.D)
		ad := cut(posA, posD, c.A, c.D)
		return fan([]mgl32.Vec3{posA, posB, posC, cd, ad},
			0, 1, 2,
			0, 2, 3,
			0, 3, 4,
		)

	case PatternFull:
		return fan([]mgl32.Vec3{posA, posB, posC, posD},
			0, 1, 2,
			0, 2, 3,
		)
	}
	return mesh.Mesh{}
}
