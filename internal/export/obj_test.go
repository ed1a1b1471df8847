package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/marchfield/pkg/mesh"
)

func TestWriteOBJ(t *testing.T) {
	m := mesh.Mesh{
		Vertices: []mesh.Vertex{
			{Position: mgl32.Vec3{0, 0, 0}},
			{Position: mgl32.Vec3{1, 0, 0}},
			{Position: mgl32.Vec3{0.5, 1.25, 0}},
		},
		Indices: []uint16{0, 1, 2},
	}

	var buf bytes.Buffer
	if err := WriteOBJ(&buf, m); err != nil {
		t.Fatalf("WriteOBJ failed: %v", err)
	}

	want := strings.Join([]string{
		"# 3 vertices, 1 triangles",
		"v 0 0 0",
		"v 1 0 0",
		"v 0.5 1.25 0",
		"f 1 2 3",
		"",
	}, "\n")
	if got := buf.String(); got != want {
		t.Errorf("unexpected output:\n%s\nwant:\n%s", got, want)
	}
}

func TestWriteOBJRejectsInvalidMesh(t *testing.T) {
	m := mesh.Mesh{
		Vertices: []mesh.Vertex{{}},
		Indices:  []uint16{0, 1, 2},
	}
	var buf bytes.Buffer
	if err := WriteOBJ(&buf, m); err == nil {
		t.Error("expected error for out-of-range indices")
	}
	if buf.Len() != 0 {
		t.Error("nothing should be written for an invalid mesh")
	}
}
