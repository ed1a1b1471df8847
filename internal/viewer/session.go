package viewer

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/marchfield/internal/config"
	"github.com/Faultbox/marchfield/internal/engine/renderer"
	"github.com/Faultbox/marchfield/internal/export"
	"github.com/Faultbox/marchfield/internal/logger"
	"github.com/Faultbox/marchfield/pkg/mesh"
	"github.com/Faultbox/marchfield/pkg/plane"
)

// Zoom limits for the render distance, in world units.
const (
	minRenderDist = 4
	maxRenderDist = 1024
)

// Session is the editable state behind the viewer window: the plane, the
// reference point and the last built mesh. It does not touch SDL or OpenGL.
type Session struct {
	plane    *plane.Plane
	ref      plane.ReferencePoint
	step     float32
	brush    float32
	exporter *export.Exporter

	mesh  mesh.Mesh
	dirty bool
}

// NewSession creates a plane from cfg and paints its startup strokes.
func NewSession(cfg *config.Config) *Session {
	s := &Session{
		plane: plane.New(
			plane.WithSeed(cfg.Field.Seed),
			plane.WithChunkSize(cfg.Field.ChunkSize),
			plane.WithCutoff(cfg.Field.Cutoff),
		),
		ref: plane.ReferencePoint{
			Position:   mgl32.Vec2{cfg.View.StartX, cfg.View.StartY},
			RenderDist: cfg.View.RenderDist,
		},
		step:     cfg.View.Step,
		brush:    cfg.View.BrushRadius,
		exporter: export.NewExporter(cfg.Export.OutputDir, cfg.Export.Prefix, export.Format(cfg.Export.Format)),
		dirty:    true,
	}
	for _, st := range cfg.Field.Strokes {
		s.plane.PaintCircle(st.X, st.Y, st.Radius)
	}
	return s
}

// Plane returns the edited plane.
func (s *Session) Plane() *plane.Plane {
	return s.plane
}

// Reference returns the current reference point.
func (s *Session) Reference() plane.ReferencePoint {
	return s.ref
}

// Dirty reports whether the mesh needs rebuilding.
func (s *Session) Dirty() bool {
	return s.dirty
}

// Mesh returns the last built mesh.
func (s *Session) Mesh() mesh.Mesh {
	return s.mesh
}

// Touch forces the next Rebuild.
func (s *Session) Touch() {
	s.dirty = true
}

// Step moves the reference point by (dx, dy) steps and paints the brush at
// its new position.
func (s *Session) Step(dx, dy int) {
	if dx == 0 && dy == 0 {
		return
	}
	s.ref.Position = s.ref.Position.Add(mgl32.Vec2{float32(dx), float32(dy)}.Mul(s.step))
	s.Paint()
}

// Paint paints the brush at the reference point.
func (s *Session) Paint() {
	s.PaintAt(s.ref.Position)
}

// PaintAt paints the brush at a world position.
func (s *Session) PaintAt(pos mgl32.Vec2) {
	s.plane.PaintCircle(pos.X(), pos.Y(), s.brush)
	s.dirty = true
}

// Zoom scales the render distance, clamped to a usable range. It reports
// whether the render distance changed.
func (s *Session) Zoom(factor float32) bool {
	d := s.ref.RenderDist * factor
	d = float32(math.Max(minRenderDist, math.Min(maxRenderDist, float64(d))))
	if d == s.ref.RenderDist {
		return false
	}
	s.ref.RenderDist = d
	s.dirty = true
	return true
}

// HalfExtent is the render distance in chunk units, the view radius the
// renderer shows around the origin.
func (s *Session) HalfExtent() float32 {
	return s.ref.RenderDist / float32(s.plane.ChunkSize())
}

// ScreenToWorld converts a window pixel to a world position, inverting the
// renderer's projection for a window of width × height pixels.
func (s *Session) ScreenToWorld(px, py, width, height int) mgl32.Vec2 {
	if width <= 0 || height <= 0 {
		return s.ref.Position
	}
	ndc := mgl32.Vec4{
		2*(float32(px)+0.5)/float32(width) - 1,
		1 - 2*(float32(py)+0.5)/float32(height),
		0,
		1,
	}
	local := renderer.Projection(s.HalfExtent(), width, height).Inv().Mul4x1(ndc)
	size := float32(s.plane.ChunkSize())
	return s.ref.Position.Add(mgl32.Vec2{local.X(), local.Y()}.Mul(size))
}

// Rebuild rebuilds the viewport mesh if anything changed since the last
// build. It returns true when a new mesh was built. A viewport too large for
// one mesh is zoomed in until it fits; the overflow is returned once the
// render distance can shrink no further.
func (s *Session) Rebuild() (bool, error) {
	if !s.dirty {
		return false, nil
	}
	for {
		m, err := s.plane.BuildMesh(s.ref)
		if errors.Is(err, mesh.ErrIndexOverflow) {
			if !s.Zoom(0.5) {
				return false, fmt.Errorf("building mesh at %v, render distance %v: %w", s.ref.Position, s.ref.RenderDist, err)
			}
			logger.Warn("viewport exceeds one mesh, zooming in",
				zap.Float32("render_dist", s.ref.RenderDist), zap.Error(err))
			continue
		}
		if err != nil {
			return false, fmt.Errorf("building mesh at %v: %w", s.ref.Position, err)
		}
		s.mesh = m
		s.dirty = false
		return true, nil
	}
}

// CurrentChunk returns the coordinate of the chunk under the reference point.
func (s *Session) CurrentChunk() plane.Coord {
	size := float64(s.plane.ChunkSize())
	return plane.Coord{
		X: int32(math.Floor(float64(s.ref.Position.X()) / size)),
		Y: int32(math.Floor(float64(s.ref.Position.Y()) / size)),
	}
}

// ExportCurrent writes the chunk under the reference point to an image.
func (s *Session) ExportCurrent() (string, error) {
	c := s.CurrentChunk()
	ch, ok := s.plane.Chunk(c)
	if !ok {
		return "", fmt.Errorf("no chunk at %s", c)
	}
	path, err := s.exporter.ExportChunk(c.X, c.Y, ch)
	if err != nil {
		return "", err
	}
	logger.Info("chunk exported", zap.Stringer("chunk", c), zap.String("path", path))
	return path, nil
}

// Title summarises the session for the window title bar.
func (s *Session) Title() string {
	return fmt.Sprintf("marchfield - pos (%.0f, %.0f) - chunk %s - %d chunks - %d triangles",
		s.ref.Position.X(), s.ref.Position.Y(), s.CurrentChunk(), s.plane.Len(), s.mesh.TriangleCount())
}
