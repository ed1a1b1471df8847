package plane

// Circle is a brush stroke in world coordinates.
type Circle struct {
	X, Y, Radius float32
}

// PaintCircles paints every circle in order.
func (p *Plane) PaintCircles(circles []Circle) {
	for _, c := range circles {
		p.PaintCircle(c.X, c.Y, c.Radius)
	}
}

// patternWidth returns 2 + 4 + ... + 2^n.
func patternWidth(n int) int {
	w := 0
	for i := 1; i <= n; i++ {
		w += 1 << i
	}
	return w
}

// NestedCircles lays out a diagonal of circles with radii 2, 4, ..., 2^levels,
// each centred past the previous one so that neighbours just touch.
func NestedCircles(levels int) []Circle {
	out := make([]Circle, 0, max(levels, 0))
	for i := 1; i <= levels; i++ {
		c := float32(patternWidth(i + 1))
		out = append(out, Circle{X: c, Y: c, Radius: float32(int(1) << i)})
	}
	return out
}
