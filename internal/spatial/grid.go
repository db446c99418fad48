// Package spatial buckets particles into a uniform grid so radius-limited
// passes only visit nearby candidates.
package spatial

import (
	"math"

	"github.com/san-kum/glowfield/internal/particle"
)

const DefaultCellSize = 50.0

// Grid is a uniform bucket grid over the viewport plus a margin. Points
// outside the covered area are clamped into the border cells, so queries
// return a superset of the true neighbours and callers filter by distance.
type Grid struct {
	cell   float64
	margin float64
	cols   int
	rows   int
	heads  []int
	next   []int

	synced  bool
	version uint64
}

func New(width, height, cellSize, margin float64) *Grid {
	if cellSize <= 0 {
		cellSize = DefaultCellSize
	}
	g := &Grid{cell: cellSize, margin: margin}
	g.Resize(width, height)
	return g
}

// Resize reallocates the cell table for a new viewport. The grid is empty
// until the next Rebuild.
func (g *Grid) Resize(width, height float64) {
	g.cols = max(1, int(math.Ceil((width+2*g.margin)/g.cell)))
	g.rows = max(1, int(math.Ceil((height+2*g.margin)/g.cell)))
	g.heads = make([]int, g.cols*g.rows)
	for i := range g.heads {
		g.heads[i] = -1
	}
	g.next = g.next[:0]
	g.synced = false
}

// Sync rebuilds the grid when the store changed since the last rebuild.
func (g *Grid) Sync(s *particle.Store) {
	if g.synced && g.version == s.Version() {
		return
	}
	g.Rebuild(s.Particles())
	g.version = s.Version()
	g.synced = true
}

// Rebuild buckets every particle by position.
func (g *Grid) Rebuild(ps []particle.Particle) {
	for i := range g.heads {
		g.heads[i] = -1
	}
	if cap(g.next) < len(ps) {
		g.next = make([]int, len(ps))
	}
	g.next = g.next[:len(ps)]
	for i := range ps {
		c := g.index(g.cellOf(ps[i].X, ps[i].Y))
		g.next[i] = g.heads[c]
		g.heads[c] = i
	}
}

// Query calls fn with the index of every particle bucketed in a cell that
// overlaps the square of half-size r around (x, y).
func (g *Grid) Query(x, y, r float64, fn func(i int)) {
	if r < 0 {
		return
	}
	c0, r0 := g.cellOf(x-r, y-r)
	c1, r1 := g.cellOf(x+r, y+r)
	for row := r0; row <= r1; row++ {
		for col := c0; col <= c1; col++ {
			for i := g.heads[g.index(col, row)]; i >= 0; i = g.next[i] {
				fn(i)
			}
		}
	}
}

func (g *Grid) Dims() (int, int) { return g.cols, g.rows }

func (g *Grid) cellOf(x, y float64) (int, int) {
	col := int(math.Floor((x + g.margin) / g.cell))
	row := int(math.Floor((y + g.margin) / g.cell))
	return clamp(col, 0, g.cols-1), clamp(row, 0, g.rows-1)
}

func (g *Grid) index(col, row int) int {
	return row*g.cols + col
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
