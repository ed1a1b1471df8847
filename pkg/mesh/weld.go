package mesh

import "fmt"

// Welder accumulates sub-meshes into one mesh, sharing a single vertex for
// every exactly-equal position.
type Welder struct {
	out    Mesh
	lookup map[[3]float32]uint16
}

// NewWelder creates an empty welder.
func NewWelder() *Welder {
	return &Welder{lookup: make(map[[3]float32]uint16)}
}

// Add merges part into the welded mesh. Positions are compared with ==, so
// only bit-identical coordinates (and ±0) collapse.
func (w *Welder) Add(part Mesh) error {
	remap := make([]uint16, len(part.Vertices))
	for i, v := range part.Vertices {
		key := [3]float32(v.Position)
		if idx, ok := w.lookup[key]; ok {
			remap[i] = idx
			continue
		}
		if len(w.out.Vertices) >= MaxVertices {
			return fmt.Errorf("welding vertex %d: %w", i, ErrIndexOverflow)
		}
		idx := uint16(len(w.out.Vertices))
		w.out.Vertices = append(w.out.Vertices, v)
		w.lookup[key] = idx
		remap[i] = idx
	}

	for i, idx := range part.Indices {
		if int(idx) >= len(remap) {
			return fmt.Errorf("sub-mesh index %d at %d: %w", idx, i, ErrMalformed)
		}
		w.out.Indices = append(w.out.Indices, remap[idx])
	}
	return nil
}

// Mesh returns the welded mesh. The welder must not be used afterwards.
func (w *Welder) Mesh() Mesh {
	return w.out
}

// Weld merges parts into a single mesh with duplicate positions shared.
func Weld(parts ...Mesh) (Mesh, error) {
	w := NewWelder()
	for i, part := range parts {
		if err := w.Add(part); err != nil {
			return Mesh{}, fmt.Errorf("part %d: %w", i, err)
		}
	}
	return w.Mesh(), nil
}
