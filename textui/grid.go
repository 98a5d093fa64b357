package textui

import "fmt"

// Region is a painted span of one row, inclusive on both ends
type Region struct {
	Y      int
	Lo, Hi int
}

// Contains reports whether cell (x, y) is inside the region
func (r Region) Contains(x, y int) bool {
	return r.Y == y && r.Lo <= x && x <= r.Hi
}

type span struct {
	lo, hi int
}

var clean = span{lo: -1, hi: -1}

func (s span) dirty() bool {
	return s.lo >= 0
}

// widen grows s to cover lo..hi, or starts a span if s is clean
func (s span) widen(lo, hi int) span {
	if !s.dirty() {
		return span{lo: lo, hi: hi}
	}
	if lo < s.lo {
		s.lo = lo
	}
	if hi > s.hi {
		s.hi = hi
	}
	return s
}

// Grid is the character shadow of the display. Each row keeps at most one
// contiguous dirty span; later writes widen it.
type Grid struct {
	cols, rows int
	cells      []byte
	dirty      []span
}

// NewGrid creates a blank grid
func NewGrid(cols, rows int) *Grid {
	g := &Grid{
		cols:  cols,
		rows:  rows,
		cells: make([]byte, cols*rows),
		dirty: make([]span, rows),
	}
	g.Clear()
	return g
}

// Size returns the grid dimensions in cells
func (g *Grid) Size() (cols, rows int) {
	return g.cols, g.rows
}

// Clear blanks every cell and forgets all dirty spans. The caller clears
// the physical display to match.
func (g *Grid) Clear() {
	for i := range g.cells {
		g.cells[i] = ' '
	}
	for i := range g.dirty {
		g.dirty[i] = clean
	}
}

// Write stores text at (x, y), clipped to the row, and marks the cells that
// actually changed.
func (g *Grid) Write(x, y int, text string) {
	if y < 0 || y >= g.rows || x < 0 || x >= g.cols {
		return
	}
	if n := g.cols - x; len(text) > n {
		text = text[:n]
	}

	row := g.cells[y*g.cols : (y+1)*g.cols]
	lo, hi := -1, -1
	for i := 0; i < len(text); i++ {
		if row[x+i] == text[i] {
			continue
		}
		row[x+i] = text[i]
		if lo == -1 {
			lo = i
		}
		hi = i
	}

	if lo != -1 {
		g.Mark(y, x+lo, x+hi)
	}
}

// Printf formats into the grid at (x, y)
func (g *Grid) Printf(x, y int, format string, args ...interface{}) {
	g.Write(x, y, fmt.Sprintf(format, args...))
}

// Mark forces cells lo..hi of row y to be repainted
func (g *Grid) Mark(y, lo, hi int) {
	if y < 0 || y >= g.rows {
		return
	}
	if lo < 0 {
		lo = 0
	}
	if hi >= g.cols {
		hi = g.cols - 1
	}
	if lo > hi {
		return
	}
	g.dirty[y] = g.dirty[y].widen(lo, hi)
}

// Row returns the content of row y
func (g *Grid) Row(y int) string {
	return string(g.cells[y*g.cols : (y+1)*g.cols])
}

// DirtySpan returns the pending span of row y
func (g *Grid) DirtySpan(y int) (lo, hi int, ok bool) {
	s := g.dirty[y]
	return s.lo, s.hi, s.dirty()
}

// Dirty reports whether any row needs repainting
func (g *Grid) Dirty() bool {
	for _, s := range g.dirty {
		if s.dirty() {
			return true
		}
	}
	return false
}

// Flush hands every dirty span to write, top row first, and returns the
// regions painted. A span is only cleaned once write succeeds; on error the
// remaining spans stay dirty for the next flush.
func (g *Grid) Flush(write func(x, y int, text string) error) ([]Region, error) {
	var painted []Region
	for y, s := range g.dirty {
		if !s.dirty() {
			continue
		}
		text := string(g.cells[y*g.cols+s.lo : y*g.cols+s.hi+1])
		if err := write(s.lo, y, text); err != nil {
			return painted, fmt.Errorf("row %d: %w", y, err)
		}
		g.dirty[y] = clean
		painted = append(painted, Region{Y: y, Lo: s.lo, Hi: s.hi})
	}
	return painted, nil
}
