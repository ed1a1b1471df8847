// Package plane provides the sparse, effectively infinite grid of density
// chunks and composes their meshes for a viewport.
//
// World coordinates are one unit per sample. Chunk (X, Y) covers world
// [X*size, (X+1)*size) × [Y*size, (Y+1)*size); its east neighbour is
// (X+1, Y) and its south neighbour is (X, Y+1).
//
// A Plane is not safe for concurrent use.
package plane

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/marchfield/internal/logger"
	"github.com/Faultbox/marchfield/pkg/field"
	"github.com/Faultbox/marchfield/pkg/march"
	"github.com/Faultbox/marchfield/pkg/mesh"
)

// ErrChunkSize is returned when a chunk does not match the plane's chunk size.
var ErrChunkSize = errors.New("plane: chunk size mismatch")

// Coord identifies a chunk on the plane.
type Coord struct {
	X, Y int32
}

func (c Coord) String() string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Y)
}

// ReferencePoint is the viewport: a world position and a render radius.
type ReferencePoint struct {
	Position   mgl32.Vec2
	RenderDist float32
}

// Plane owns every chunk that has been generated or painted.
type Plane struct {
	seed      int64
	chunkSize int
	mesher    march.Mesher
	chunks    map[Coord]*field.Chunk
}

// Option configures a Plane.
type Option func(*Plane)

// WithSeed sets the generation seed.
func WithSeed(seed int64) Option {
	return func(p *Plane) { p.seed = seed }
}

// WithChunkSize sets the chunk edge length in samples.
func WithChunkSize(size int) Option {
	return func(p *Plane) {
		if size > 0 {
			p.chunkSize = size
		}
	}
}

// WithCutoff sets the classification threshold used when meshing.
func WithCutoff(cutoff float32) Option {
	return func(p *Plane) { p.mesher.Cutoff = cutoff }
}

// New creates an empty plane.
func New(opts ...Option) *Plane {
	p := &Plane{
		chunkSize: field.DefaultSize,
		mesher:    march.NewMesher(),
		chunks:    make(map[Coord]*field.Chunk),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Seed returns the generation seed.
func (p *Plane) Seed() int64 {
	return p.seed
}

// ChunkSize returns the chunk edge length in samples.
func (p *Plane) ChunkSize() int {
	return p.chunkSize
}

// Len returns the number of stored chunks.
func (p *Plane) Len() int {
	return len(p.chunks)
}

// Coords returns every stored chunk coordinate, sorted by Y then X.
func (p *Plane) Coords() []Coord {
	coords := make([]Coord, 0, len(p.chunks))
	for c := range p.chunks {
		coords = append(coords, c)
	}
	sort.Slice(coords, func(i, j int) bool {
		if coords[i].Y != coords[j].Y {
			return coords[i].Y < coords[j].Y
		}
		return coords[i].X < coords[j].X
	})
	return coords
}

// Chunk returns a copy of the chunk at c. It never creates one.
func (p *Plane) Chunk(c Coord) (*field.Chunk, bool) {
	ch, ok := p.chunks[c]
	if !ok {
		return nil, false
	}
	return ch.Clone(), true
}

// ChunkOrCreate returns a copy of the chunk at c, generating and storing it
// first if it does not exist yet.
func (p *Plane) ChunkOrCreate(c Coord) *field.Chunk {
	if ch, ok := p.chunks[c]; ok {
		return ch.Clone()
	}
	ch := p.generate(c)
	p.chunks[c] = ch
	return ch.Clone()
}

func (p *Plane) checkSize(ch *field.Chunk) error {
	if ch == nil {
		return fmt.Errorf("nil chunk: %w", ErrChunkSize)
	}
	if ch.Size() != p.chunkSize {
		return fmt.Errorf("got %dx%d, want %dx%d: %w", ch.Size(), ch.Size(), p.chunkSize, p.chunkSize, ErrChunkSize)
	}
	return nil
}

// SetChunk stores a copy of ch at c and returns the chunk it replaced, or
// nil if the slot was empty.
func (p *Plane) SetChunk(c Coord, ch *field.Chunk) (*field.Chunk, error) {
	if err := p.checkSize(ch); err != nil {
		return nil, fmt.Errorf("chunk %s: %w", c, err)
	}
	prev := p.chunks[c]
	p.chunks[c] = ch.Clone()
	return prev, nil
}

// generate produces the initial contents of a never-seen coordinate.
// Generation is a stub: every chunk starts empty regardless of the seed.
func (p *Plane) generate(Coord) *field.Chunk {
	return field.New(p.chunkSize)
}

// CloneArea stamps a copy of ch over every coordinate in the inclusive
// rectangle [x0, x1] × [y0, y1].
func (p *Plane) CloneArea(ch *field.Chunk, x0, y0, x1, y1 int32) error {
	if err := p.checkSize(ch); err != nil {
		return err
	}
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			p.chunks[Coord{x, y}] = ch.Clone()
		}
	}
	return nil
}

// floorDiv divides rounding toward negative infinity.
func floorDiv(v, size int) int32 {
	q := v / size
	if v%size != 0 && (v < 0) != (size < 0) {
		q--
	}
	return int32(q)
}

// PaintCircle paints a filled antialiased circle in world coordinates,
// creating any chunk its bounding box touches.
func (p *Plane) PaintCircle(x, y, radius float32) {
	size := p.chunkSize
	minX := floorDiv(int(math.Floor(float64(x-radius))), size)
	maxX := floorDiv(int(math.Ceil(float64(x+radius))), size)
	minY := floorDiv(int(math.Floor(float64(y-radius))), size)
	maxY := floorDiv(int(math.Ceil(float64(y+radius))), size)

	for cy := minY; cy <= maxY; cy++ {
		for cx := minX; cx <= maxX; cx++ {
			c := Coord{cx, cy}
			ch := p.ChunkOrCreate(c)
			localX := x - float32(cx)*float32(size)
			localY := y - float32(cy)*float32(size)
			ch.PaintCircle(localX, localY, radius)
			p.chunks[c] = ch
		}
	}

	logger.Debug("painted circle",
		zap.Float32("x", x),
		zap.Float32("y", y),
		zap.Float32("radius", radius),
		zap.Int32("min_chunk_x", minX),
		zap.Int32("max_chunk_x", maxX),
		zap.Int32("min_chunk_y", minY),
		zap.Int32("max_chunk_y", maxY),
	)
}

// PaddedChunk returns a (size+1)² copy of the chunk at c whose extra column,
// row and corner are borrowed from the east, south and south-east
// neighbours. Missing neighbours leave the padding empty.
func (p *Plane) PaddedChunk(c Coord) (*field.Chunk, error) {
	own, ok := p.chunks[c]
	if !ok {
		return nil, fmt.Errorf("chunk %s: not found", c)
	}

	n := p.chunkSize
	padded := field.New(n + 1)
	if err := padded.Blit(own.Rows(), 0, 0); err != nil {
		return nil, fmt.Errorf("chunk %s body: %w", c, err)
	}

	stitches := []struct {
		neighbour  Coord
		dir        field.EdgeDir
		xOff, yOff int
	}{
		{Coord{c.X + 1, c.Y}, field.EdgeColumn, n, 0},
		{Coord{c.X, c.Y + 1}, field.EdgeRow, 0, n},
		{Coord{c.X + 1, c.Y + 1}, field.EdgeCorner, n, n},
	}
	for _, s := range stitches {
		nb, ok := p.chunks[s.neighbour]
		if !ok {
			continue
		}
		if err := padded.Blit(nb.Edge(s.dir), s.xOff, s.yOff); err != nil {
			return nil, fmt.Errorf("chunk %s stitching %s: %w", c, s.neighbour, err)
		}
	}
	return padded, nil
}

// chunkMesh meshes the padded chunk at c and places it at its coordinate in
// chunk units.
func (p *Plane) chunkMesh(c Coord) (mesh.Mesh, error) {
	padded, err := p.PaddedChunk(c)
	if err != nil {
		return mesh.Mesh{}, err
	}
	m, err := p.mesher.MeshChunk(padded)
	if err != nil {
		return mesh.Mesh{}, fmt.Errorf("meshing chunk %s: %w", c, err)
	}
	m.Translate(mgl32.Vec3{float32(c.X), float32(c.Y), 0})
	return m, nil
}

// ChunkRange returns the inclusive chunk coordinate range covering the
// reference point's viewport.
func (p *Plane) ChunkRange(ref ReferencePoint) (from, to Coord) {
	size := float64(p.chunkSize)
	lo := func(v float32) int32 { return int32(math.Floor(float64(v-ref.RenderDist) / size)) }
	hi := func(v float32) int32 { return int32(math.Ceil(float64(v+ref.RenderDist) / size)) }
	return Coord{lo(ref.Position.X()), lo(ref.Position.Y())},
		Coord{hi(ref.Position.X()), hi(ref.Position.Y())}
}

// BuildMesh meshes every stored chunk in the reference point's viewport and
// returns them as one mesh in chunk units, shifted so the reference point
// sits at the origin. Chunks that were never created are skipped.
func (p *Plane) BuildMesh(ref ReferencePoint) (mesh.Mesh, error) {
	from, to := p.ChunkRange(ref)

	var out mesh.Mesh
	meshed := 0
	for y := from.Y; y <= to.Y; y++ {
		for x := from.X; x <= to.X; x++ {
			c := Coord{x, y}
			if _, ok := p.chunks[c]; !ok {
				continue
			}
			m, err := p.chunkMesh(c)
			if err != nil {
				return mesh.Mesh{}, err
			}
			if err := out.Union(m); err != nil {
				return mesh.Mesh{}, fmt.Errorf("adding chunk %s: %w", c, err)
			}
			meshed++
		}
	}

	size := float32(p.chunkSize)
	out.Translate(mgl32.Vec3{-ref.Position.X() / size, -ref.Position.Y() / size, 0})

	logger.Debug("built viewport mesh",
		zap.Stringer("min_chunk", from),
		zap.Stringer("max_chunk", to),
		zap.Int("chunks", meshed),
		zap.Int("vertices", len(out.Vertices)),
		zap.Int("triangles", out.TriangleCount()),
	)
	return out, nil
}

// MeshAll meshes every stored chunk in coordinate order, without any
// reference point shift.
func (p *Plane) MeshAll() (mesh.Mesh, error) {
	var out mesh.Mesh
	for _, c := range p.Coords() {
		m, err := p.chunkMesh(c)
		if err != nil {
			return mesh.Mesh{}, err
		}
		if err := out.Union(m); err != nil {
			return mesh.Mesh{}, fmt.Errorf("adding chunk %s: %w", c, err)
		}
	}
	return out, nil
}
