package march

import "math"

// smooth is e^(-1/t), continued as 0 for t <= 0.
func smooth(t float64) float64 {
	if t <= 0 {
		return 0
	}
	return math.Exp(-1 / t)
}

// Side returns how far along an edge the surface crosses, given the samples
// at both ends. It is a normalized sigmoid of the edge midpoint with flat
// tangents at 0 and 1: Side(0,0) = 0, Side(1,1) = 1, monotonic in p1+p2.
func Side(p1, p2 float32) float32 {
	m := (float64(p1) + float64(p2)) / 2
	lo, hi := smooth(m), smooth(1-m)
	return float32(lo / (lo + hi))
}
