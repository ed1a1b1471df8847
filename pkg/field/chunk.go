// Package field provides the square density chunks that make up the plane.
//
// A sample is a float32 where 1.0 is fully empty and lower values are
// increasingly filled. Samples are stored row-major: index = y*size + x.
package field

import (
	"errors"
	"fmt"
	"math"
)

// DefaultSize is the edge length of a plane chunk in samples.
const DefaultSize = 32

// Empty is the value of an untouched sample.
const Empty float32 = 1.0

// ErrOutOfBounds is returned when a read or write falls outside the grid.
var ErrOutOfBounds = errors.New("field: out of bounds")

// EdgeDir selects a boundary strip for stitching against a neighbour.
type EdgeDir int

// Edge directions. Values match the neighbour slot they are stitched into.
const (
	// EdgeColumn is the x=0 strip; a west neighbour pads its east side with it.
	EdgeColumn EdgeDir = iota
	// EdgeRow is the y=0 strip; a north neighbour pads its south side with it.
	EdgeRow
	// EdgeCorner is sample (0,0); a north-west neighbour pads its corner with it.
	EdgeCorner
)

// Chunk is a size×size grid of samples.
type Chunk struct {
	size    int
	samples []float32
}

// New allocates a chunk with every sample set to Empty.
func New(size int) *Chunk {
	if size < 0 {
		size = 0
	}
	c := &Chunk{
		size:    size,
		samples: make([]float32, size*size),
	}
	for i := range c.samples {
		c.samples[i] = Empty
	}
	return c
}

// FromRows builds a chunk from square row data (rows[y][x]).
func FromRows(rows [][]float32) (*Chunk, error) {
	size := len(rows)
	c := &Chunk{size: size, samples: make([]float32, 0, size*size)}
	for y, row := range rows {
		if len(row) != size {
			return nil, fmt.Errorf("row %d has %d samples, want %d", y, len(row), size)
		}
		c.samples = append(c.samples, row...)
	}
	return c, nil
}

// Size returns the edge length in samples.
func (c *Chunk) Size() int {
	return c.size
}

// Clone returns an independent copy of the chunk.
func (c *Chunk) Clone() *Chunk {
	out := &Chunk{size: c.size, samples: make([]float32, len(c.samples))}
	copy(out.samples, c.samples)
	return out
}

// Samples returns a row-major copy of the grid.
func (c *Chunk) Samples() []float32 {
	out := make([]float32, len(c.samples))
	copy(out, c.samples)
	return out
}

// Rows returns the grid as rows[y][x].
func (c *Chunk) Rows() [][]float32 {
	rows := make([][]float32, c.size)
	for y := range rows {
		rows[y] = make([]float32, c.size)
		copy(rows[y], c.samples[y*c.size:(y+1)*c.size])
	}
	return rows
}

func (c *Chunk) inside(x, y int) bool {
	return x >= 0 && y >= 0 && x < c.size && y < c.size
}

// At returns the sample at (x, y).
func (c *Chunk) At(x, y int) (float32, error) {
	if !c.inside(x, y) {
		return 0, fmt.Errorf("read (%d,%d) in %dx%d chunk: %w", x, y, c.size, c.size, ErrOutOfBounds)
	}
	return c.samples[y*c.size+x], nil
}

// Set overwrites the sample at (x, y).
func (c *Chunk) Set(x, y int, v float32) error {
	if !c.inside(x, y) {
		return fmt.Errorf("write (%d,%d) in %dx%d chunk: %w", x, y, c.size, c.size, ErrOutOfBounds)
	}
	c.samples[y*c.size+x] = v
	return nil
}

// at is the unchecked accessor used by the mesher hot loop.
func (c *Chunk) at(x, y int) float32 {
	return c.samples[y*c.size+x]
}

// Window returns the four samples of the 2×2 window whose top-left sample is
// (x, y), clockwise from top-left.
func (c *Chunk) Window(x, y int) (tl, tr, br, bl float32, err error) {
	if !c.inside(x, y) || !c.inside(x+1, y+1) {
		return 0, 0, 0, 0, fmt.Errorf("window at (%d,%d) in %dx%d chunk: %w", x, y, c.size, c.size, ErrOutOfBounds)
	}
	return c.at(x, y), c.at(x+1, y), c.at(x+1, y+1), c.at(x, y+1), nil
}

// PaintCircle fills a circle with a one-unit antialiased rim. Samples only
// ever decrease, so overlapping paints accumulate and never erase.
func (c *Chunk) PaintCircle(cx, cy, radius float32) {
	r2 := float64(radius) * float64(radius)
	for y := 0; y < c.size; y++ {
		dy := float64(y) - float64(cy)
		for x := 0; x < c.size; x++ {
			dx := float64(x) - float64(cx)
			d2 := dx*dx + dy*dy
			if d2 > r2 {
				continue
			}
			dist := math.Sqrt(d2)
			alpha := float32(clamp(1-math.Abs(dist-float64(radius)), 0, 1))
			idx := y*c.size + x
			if alpha < c.samples[idx] {
				c.samples[idx] = alpha
			}
		}
	}
}

// Edge returns the boundary strip for dir, shaped for Blit: EdgeColumn is
// size rows of one sample, EdgeRow is one row of size samples, EdgeCorner is
// a single sample. Unknown directions yield an empty strip.
func (c *Chunk) Edge(dir EdgeDir) [][]float32 {
	if c.size == 0 {
		return nil
	}
	switch dir {
	case EdgeColumn:
		strip := make([][]float32, c.size)
		for y := range strip {
			strip[y] = []float32{c.at(0, y)}
		}
		return strip
	case EdgeRow:
		row := make([]float32, c.size)
		copy(row, c.samples[:c.size])
		return [][]float32{row}
	case EdgeCorner:
		return [][]float32{{c.at(0, 0)}}
	default:
		return nil
	}
}

// Blit copies data (data[row][col]) into the grid with its top-left at
// (xOff, yOff). Nothing is written unless the whole block fits.
func (c *Chunk) Blit(data [][]float32, xOff, yOff int) error {
	if len(data) == 0 {
		return nil
	}
	width := len(data[0])
	for r, row := range data {
		if len(row) != width {
			return fmt.Errorf("blit row %d has %d samples, want %d: %w", r, len(row), width, ErrOutOfBounds)
		}
	}
	if width == 0 {
		return nil
	}
	if xOff < 0 || yOff < 0 || xOff+width > c.size || yOff+len(data) > c.size {
		return fmt.Errorf("blit %dx%d at (%d,%d) into %dx%d chunk: %w",
			width, len(data), xOff, yOff, c.size, c.size, ErrOutOfBounds)
	}

	for r, row := range data {
		start := (yOff+r)*c.size + xOff
		copy(c.samples[start:start+width], row)
	}
	return nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
