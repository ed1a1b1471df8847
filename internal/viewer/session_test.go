package viewer

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/marchfield/internal/config"
	"github.com/Faultbox/marchfield/pkg/field"
	"github.com/Faultbox/marchfield/pkg/mesh"
	"github.com/Faultbox/marchfield/pkg/plane"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Export.OutputDir = t.TempDir()
	return cfg
}

func TestNewSessionPaintsStrokes(t *testing.T) {
	cfg := testConfig(t)
	cfg.Field.Strokes = []config.Stroke{{X: 0, Y: 0, Radius: 3}}

	s := NewSession(cfg)
	if got := s.Plane().Len(); got != 4 {
		t.Errorf("expected stroke at origin to touch 4 chunks, got %d", got)
	}
	if !s.Dirty() {
		t.Error("new session should need a mesh")
	}
}

func TestStepMovesAndPaints(t *testing.T) {
	cfg := testConfig(t)
	cfg.View.StartX, cfg.View.StartY = 16, 16
	s := NewSession(cfg)

	s.Step(1, -2)
	want := mgl32.Vec2{17, 14}
	if got := s.Reference().Position; got != want {
		t.Fatalf("position %v, want %v", got, want)
	}

	ch, ok := s.Plane().Chunk(plane.Coord{})
	if !ok {
		t.Fatal("stepping should paint the chunk under the reference point")
	}
	if v, _ := ch.At(17, 14); v != 0 {
		t.Errorf("brush centre should be filled, got %v", v)
	}
}

func TestStepZeroDoesNothing(t *testing.T) {
	s := NewSession(testConfig(t))
	if _, err := s.Rebuild(); err != nil {
		t.Fatalf("Rebuild failed: %v", err)
	}

	s.Step(0, 0)
	if s.Dirty() || s.Plane().Len() != 0 {
		t.Error("zero step should neither paint nor dirty the session")
	}
}

func TestRebuildOnlyWhenDirty(t *testing.T) {
	s := NewSession(testConfig(t))
	s.Paint()

	rebuilt, err := s.Rebuild()
	if err != nil {
		t.Fatalf("Rebuild failed: %v", err)
	}
	if !rebuilt {
		t.Fatal("expected first rebuild")
	}
	if s.Mesh().TriangleCount() == 0 {
		t.Error("painted plane should produce triangles")
	}

	rebuilt, err = s.Rebuild()
	if err != nil {
		t.Fatalf("Rebuild failed: %v", err)
	}
	if rebuilt {
		t.Error("clean session should not rebuild")
	}
}

func TestZoomClamps(t *testing.T) {
	s := NewSession(testConfig(t))

	s.Zoom(2)
	if got := s.Reference().RenderDist; got != 64 {
		t.Errorf("render distance %v, want 64", got)
	}
	for i := 0; i < 20; i++ {
		s.Zoom(2)
	}
	if got := s.Reference().RenderDist; got != maxRenderDist {
		t.Errorf("render distance %v, want %v", got, maxRenderDist)
	}
	for i := 0; i < 20; i++ {
		s.Zoom(0.5)
	}
	if got := s.Reference().RenderDist; got != minRenderDist {
		t.Errorf("render distance %v, want %v", got, minRenderDist)
	}
	if s.Zoom(0.5) {
		t.Error("zooming in past the minimum should report no change")
	}
	if !s.Zoom(2) {
		t.Error("zooming out from the minimum should report a change")
	}
}

func TestRebuildZoomsInOnOverflow(t *testing.T) {
	cfg := testConfig(t)
	cfg.Field.ChunkSize = 64
	cfg.View.RenderDist = 256
	s := NewSession(cfg)
	// 9x9 chunks of 65x65 vertices each cannot share 16-bit indices.
	if err := s.Plane().CloneArea(field.New(64), -4, -4, 4, 4); err != nil {
		t.Fatalf("CloneArea failed: %v", err)
	}

	rebuilt, err := s.Rebuild()
	if err != nil {
		t.Fatalf("Rebuild failed: %v", err)
	}
	if !rebuilt {
		t.Fatal("expected a rebuild")
	}
	if got := s.Reference().RenderDist; got != 64 {
		t.Errorf("render distance %v, want 64", got)
	}
	if s.Mesh().Empty() {
		t.Error("expected a mesh after zooming in")
	}
}

func TestRebuildOverflowAtMinimumZoom(t *testing.T) {
	cfg := testConfig(t)
	cfg.Field.ChunkSize = 200
	cfg.View.RenderDist = minRenderDist
	// Four chunks of 201x201 vertices around the origin.
	cfg.Field.Strokes = []config.Stroke{{X: 0, Y: 0, Radius: 3}}
	s := NewSession(cfg)

	rebuilt, err := s.Rebuild()
	if !errors.Is(err, mesh.ErrIndexOverflow) {
		t.Fatalf("expected ErrIndexOverflow, got %v", err)
	}
	if rebuilt {
		t.Error("failed rebuild should not report a new mesh")
	}
	if got := s.Reference().RenderDist; got != minRenderDist {
		t.Errorf("render distance %v, want %v", got, minRenderDist)
	}
}

func TestScreenToWorld(t *testing.T) {
	cfg := testConfig(t)
	cfg.View.StartX, cfg.View.StartY = 100, 50
	cfg.View.RenderDist = 32
	s := NewSession(cfg)

	tests := []struct {
		name   string
		px, py int
		want   mgl32.Vec2
	}{
		// A 64 pixel window shows 64 world units, one pixel per unit.
		{"centre", 32, 32, mgl32.Vec2{100.5, 50.5}},
		{"top left", 0, 0, mgl32.Vec2{68.5, 18.5}},
		{"bottom right", 63, 63, mgl32.Vec2{131.5, 81.5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.ScreenToWorld(tt.px, tt.py, 64, 64)
			if !got.ApproxEqualThreshold(tt.want, 1e-3) {
				t.Errorf("ScreenToWorld(%d,%d) = %v, want %v", tt.px, tt.py, got, tt.want)
			}
		})
	}

	if got := s.ScreenToWorld(5, 5, 0, 0); got != s.Reference().Position {
		t.Errorf("degenerate window should map to the reference point, got %v", got)
	}
}

func TestCurrentChunk(t *testing.T) {
	cfg := testConfig(t)
	cfg.View.StartX, cfg.View.StartY = -1, 40
	s := NewSession(cfg)

	if got, want := s.CurrentChunk(), (plane.Coord{X: -1, Y: 1}); got != want {
		t.Errorf("CurrentChunk = %v, want %v", got, want)
	}
}

func TestExportCurrent(t *testing.T) {
	cfg := testConfig(t)
	s := NewSession(cfg)

	if _, err := s.ExportCurrent(); err == nil {
		t.Error("expected error exporting a chunk that does not exist")
	}

	s.Paint()
	path, err := s.ExportCurrent()
	if err != nil {
		t.Fatalf("ExportCurrent failed: %v", err)
	}
	if filepath.Base(path) != "chunk_0_0.png" {
		t.Errorf("unexpected path %s", path)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("exported file missing: %v", err)
	}
}

func TestTitle(t *testing.T) {
	s := NewSession(testConfig(t))
	s.Paint()
	if _, err := s.Rebuild(); err != nil {
		t.Fatalf("Rebuild failed: %v", err)
	}

	title := s.Title()
	for _, part := range []string{"pos (0, 0)", "chunk (0,0)", "4 chunks"} {
		if !strings.Contains(title, part) {
			t.Errorf("title %q missing %q", title, part)
		}
	}
}

func TestTouchForcesRebuild(t *testing.T) {
	s := NewSession(testConfig(t))
	if _, err := s.Rebuild(); err != nil {
		t.Fatalf("Rebuild failed: %v", err)
	}

	s.Touch()
	rebuilt, err := s.Rebuild()
	if err != nil {
		t.Fatalf("Rebuild failed: %v", err)
	}
	if !rebuilt {
		t.Error("Touch should force a rebuild")
	}
}
