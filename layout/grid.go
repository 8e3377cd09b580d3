package layout

// grid buckets point indices into square cells covering the footprint
// rectangle, so each overlap check only visits neighboring cells.
type grid struct {
	cellSize   float64
	minX, minZ float64
	cols       int
	rows       int
	cells      [][]int // flat grid of point indices
}

func newGrid(halfWidth, halfDepth, cellSize float64) *grid {
	cols := int(2*halfWidth/cellSize) + 1
	rows := int(2*halfDepth/cellSize) + 1

	cells := make([][]int, cols*rows)
	for i := range cells {
		cells[i] = make([]int, 0, 4)
	}
	return &grid{
		cellSize: cellSize,
		minX:     -halfWidth,
		minZ:     -halfDepth,
		cols:     cols,
		rows:     rows,
		cells:    cells,
	}
}

// clear empties every cell while keeping its capacity.
func (g *grid) clear() {
	for i := range g.cells {
		g.cells[i] = g.cells[i][:0]
	}
}

func (g *grid) insert(i int, x, z float64) {
	col, row := g.cell(x, z)
	idx := row*g.cols + col
	g.cells[idx] = append(g.cells[idx], i)
}

// neighborsInto appends the indices stored in the 3x3 block of cells around
// (x, z) to dst. With cellSize equal to the clearance this covers every point
// that can be closer than one cell.
func (g *grid) neighborsInto(dst []int, x, z float64) []int {
	col, row := g.cell(x, z)
	for dr := -1; dr <= 1; dr++ {
		r := row + dr
		if r < 0 || r >= g.rows {
			continue
		}
		for dc := -1; dc <= 1; dc++ {
			c := col + dc
			if c < 0 || c >= g.cols {
				continue
			}
			dst = append(dst, g.cells[r*g.cols+c]...)
		}
	}
	return dst
}

// cell returns the clamped column and row for a plan-view position.
func (g *grid) cell(x, z float64) (col, row int) {
	col = int((x - g.minX) / g.cellSize)
	row = int((z - g.minZ) / g.cellSize)

	if col < 0 {
		col = 0
	} else if col >= g.cols {
		col = g.cols - 1
	}
	if row < 0 {
		row = 0
	} else if row >= g.rows {
		row = g.rows - 1
	}
	return col, row
}
