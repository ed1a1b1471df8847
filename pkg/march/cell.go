// Package march turns density chunks into triangle meshes with marching
// squares.
//
// Corner naming is fixed for the whole package: A is top-left (x, y), B is
// top-right (x+1, y), C is bottom-right (x+1, y+1) and D is bottom-left
// (x, y+1). Rows grow downward, so in cell-local space A sits at (-½, -½) and
// C at (½, ½).
//
// A corner is "on" when its sample is above the cutoff. Since samples are
// high where the field is empty, the generated surface covers the empty
// region and leaves holes where the field has been painted.
package march

import "github.com/Faultbox/marchfield/pkg/mesh"

// DefaultCutoff is the classification threshold used by the plane.
const DefaultCutoff float32 = 0.2

// Cell is the 2×2 sample window classified for polygonization.
type Cell struct {
	A, B, C, D float32
}

// Rotate relabels the corners one quarter turn: a←d←c←b←a.
func (c Cell) Rotate() Cell {
	return Cell{A: c.D, B: c.A, C: c.B, D: c.C}
}

// Pattern identifies one of the canonical corner configurations.
type Pattern uint8

// Canonical patterns, tested in this order at each rotation.
const (
	PatternNone   Pattern = iota
	PatternCorner         // a on
	PatternEdge           // a, b on
	PatternSaddle         // a, c on; joined across the a–c diagonal
	PatternNotch          // a, b, c on
	PatternFull           // all four at or above the cutoff
)

func (p Pattern) String() string {
	switch p {
	case PatternCorner:
		return "corner"
	case PatternEdge:
		return "edge"
	case PatternSaddle:
		return "saddle"
	case PatternNotch:
		return "notch"
	case PatternFull:
		return "full"
	default:
		return "none"
	}
}

// level is a corner's position relative to the cutoff.
type level uint8

const (
	below level = iota
	at
	above
)

func (l level) on() bool        { return l == above }
func (l level) inclusive() bool { return l != below }

func levelOf(v, cutoff float32) level {
	switch {
	case v > cutoff:
		return above
	case v == cutoff:
		return at
	default:
		return below
	}
}

// corners is a cell reduced to corner levels, in A, B, C, D order.
type corners [4]level

func (c corners) rotate() corners {
	return corners{c[3], c[0], c[1], c[2]}
}

// key packs the corner levels into a base-3 number.
func (c corners) key() int {
	return ((int(c[0])*3+int(c[1]))*3+int(c[2]))*3 + int(c[3])
}

// match tests the five pattern predicates in order.
func (c corners) match() Pattern {
	a, b, cc, d := c[0], c[1], c[2], c[3]
	switch {
	case a.on() && !b.on() && !cc.on() && !d.on():
		return PatternCorner
	case a.on() && b.on() && !cc.on() && !d.on():
		return PatternEdge
	case a.on() && !b.on() && cc.on() && !d.on():
		return PatternSaddle
	case a.on() && b.on() && cc.on() && !d.on():
		return PatternNotch
	case a.inclusive() && b.inclusive() && cc.inclusive() && d.inclusive():
		return PatternFull
	}
	return PatternNone
}

// Classification is the outcome of matching a cell: which pattern applies
// and after how many quarter-turn relabelings.
type Classification struct {
	Pattern  Pattern
	Rotation int
}

const tableSize = 3 * 3 * 3 * 3

// table maps every corner-level combination to its classification. It is
// filled by the ordered rotation search so the lookup behaves exactly like
// trying predicates 1→5 at rotations 0..3.
var table [tableSize]Classification

func init() {
	for k := 0; k < tableSize; k++ {
		c := corners{level(k / 27), level(k / 9 % 3), level(k / 3 % 3), level(k % 3)}
		for rot := 0; rot < 4; rot++ {
			if p := c.match(); p != PatternNone {
				table[k] = Classification{Pattern: p, Rotation: rot}
				break
			}
			c = c.rotate()
		}
	}
}

// Classify returns the pattern and rotation for cell at the given cutoff.
// Cells that match nothing (every corner below the cutoff) get PatternNone.
func Classify(cell Cell, cutoff float32) Classification {
	c := corners{
		levelOf(cell.A, cutoff),
		levelOf(cell.B, cutoff),
		levelOf(cell.C, cutoff),
		levelOf(cell.D, cutoff),
	}
	return table[c.key()]
}

// Triangulate emits the cell's local mesh, centred on the origin with
// corners at (±½, ±½). PatternNone yields an empty mesh.
func Triangulate(cell Cell, cutoff float32) mesh.Mesh {
	cls := Classify(cell, cutoff)
	if cls.Pattern == PatternNone {
		return mesh.Mesh{}
	}

	canonical := cell
	for i := 0; i < cls.Rotation; i++ {
		canonical = canonical.Rotate()
	}

	m := build(cls.Pattern, canonical)
	for i := 0; i < cls.Rotation; i++ {
		m.Rotate90()
	}
	return m
}
