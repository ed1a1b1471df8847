package export

import (
	"bufio"
	"fmt"
	"io"

	"github.com/Faultbox/marchfield/pkg/mesh"
)

// WriteOBJ writes m as a Wavefront OBJ with one-based face indices.
func WriteOBJ(w io.Writer, m mesh.Mesh) error {
	if err := m.Validate(); err != nil {
		return err
	}

	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "# %d vertices, %d triangles\n", len(m.Vertices), m.TriangleCount())
	for _, v := range m.Vertices {
		fmt.Fprintf(bw, "v %g %g %g\n", v.Position.X(), v.Position.Y(), v.Position.Z())
	}
	for i := 0; i+2 < len(m.Indices); i += 3 {
		fmt.Fprintf(bw, "f %d %d %d\n", int(m.Indices[i])+1, int(m.Indices[i+1])+1, int(m.Indices[i+2])+1)
	}
	return bw.Flush()
}
