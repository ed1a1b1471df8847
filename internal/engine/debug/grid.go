// Package debug provides debug visualization utilities for the viewer.
package debug

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/marchfield/pkg/plane"
)

// LineVertex is one line endpoint, laid out like the renderer's vertices.
type LineVertex struct {
	X, Y, Z float32 // Position
	R, G, B float32 // Color
}

var (
	gridColor   = mgl32.Vec3{0.3, 0.3, 0.35}
	storedColor = mgl32.Vec3{0.2, 0.6, 0.9}
	viewColor   = mgl32.Vec3{0.9, 0.6, 0.2}
)

func line(a, b mgl32.Vec2, c mgl32.Vec3) [2]LineVertex {
	return [2]LineVertex{
		{a.X(), a.Y(), 0, c.X(), c.Y(), c.Z()},
		{b.X(), b.Y(), 0, c.X(), c.Y(), c.Z()},
	}
}

// Rect returns the four edges of an axis-aligned rectangle.
func Rect(lo, hi mgl32.Vec2, c mgl32.Vec3) []LineVertex {
	corners := [4]mgl32.Vec2{lo, {hi.X(), lo.Y()}, hi, {lo.X(), hi.Y()}}
	out := make([]LineVertex, 0, 8)
	for i := range corners {
		l := line(corners[i], corners[(i+1)%4], c)
		out = append(out, l[:]...)
	}
	return out
}

// ChunkGrid generates the overlay for a viewport in chunk units, shifted so
// the reference point sits at the origin like the field mesh: grid lines on
// every chunk boundary in [from, to], an outline around each stored chunk,
// and the render distance square.
func ChunkGrid(p *plane.Plane, ref plane.ReferencePoint) []LineVertex {
	from, to := p.ChunkRange(ref)
	size := float32(p.ChunkSize())
	origin := ref.Position.Mul(1 / size)

	at := func(x, y int32) mgl32.Vec2 {
		return mgl32.Vec2{float32(x), float32(y)}.Sub(origin)
	}

	var out []LineVertex
	for x := from.X; x <= to.X+1; x++ {
		l := line(at(x, from.Y), at(x, to.Y+1), gridColor)
		out = append(out, l[:]...)
	}
	for y := from.Y; y <= to.Y+1; y++ {
		l := line(at(from.X, y), at(to.X+1, y), gridColor)
		out = append(out, l[:]...)
	}

	for _, c := range p.Coords() {
		if c.X < from.X || c.X > to.X || c.Y < from.Y || c.Y > to.Y {
			continue
		}
		out = append(out, Rect(at(c.X, c.Y), at(c.X+1, c.Y+1), storedColor)...)
	}

	half := ref.RenderDist / size
	out = append(out, Rect(mgl32.Vec2{-half, -half}, mgl32.Vec2{half, half}, viewColor)...)
	return out
}

// Flatten converts line vertices to the renderer's interleaved float layout.
func Flatten(vertices []LineVertex) []float32 {
	out := make([]float32, 0, len(vertices)*6)
	for _, v := range vertices {
		out = append(out, v.X, v.Y, v.Z, v.R, v.G, v.B)
	}
	return out
}
