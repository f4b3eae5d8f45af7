package model

// Point is an integer grid coordinate.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Grid is a sparse, unbounded color grid. Only cells that have been
// written are stored; everything else reads as DefaultCellColor.
// Grid is not safe for concurrent use; the tick driver owns it.
type Grid struct {
	cells map[Point]Color
}

func NewGrid() *Grid {
	return &Grid{cells: make(map[Point]Color)}
}

// Read returns the color at (x, y), or DefaultCellColor if unset.
func (g *Grid) Read(x, y int) Color {
	if c, ok := g.cells[Point{x, y}]; ok {
		return c
	}
	return DefaultCellColor
}

// Write merges the patch into the cell at (x, y). Unset channels keep the
// cell's current value.
func (g *Grid) Write(x, y int, p ColorPatch) {
	if p.Empty() {
		return
	}
	g.cells[Point{x, y}] = p.Apply(g.Read(x, y))
}

// ReadNeighbors returns the 8 cells around (x, y).
func (g *Grid) ReadNeighbors(x, y int) map[Compass]Color {
	out := make(map[Compass]Color, len(CompassPoints))
	for _, c := range CompassPoints {
		dx, dy := c.Offset()
		out[c] = g.Read(x+dx, y+dy)
	}
	return out
}

// Len is the number of stored cells.
func (g *Grid) Len() int { return len(g.cells) }

// Painted counts stored cells whose color differs from the default.
func (g *Grid) Painted() int {
	n := 0
	for _, c := range g.cells {
		if c != DefaultCellColor {
			n++
		}
	}
	return n
}

// Cells returns a copy of the stored cells.
func (g *Grid) Cells() map[Point]Color {
	out := make(map[Point]Color, len(g.cells))
	for p, c := range g.cells {
		out[p] = c
	}
	return out
}

// Clear resets every cell to the default.
func (g *Grid) Clear() {
	clear(g.cells)
}
