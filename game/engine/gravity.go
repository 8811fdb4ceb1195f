package engine

// compact lets balls fall toward row 0 within every column, then slides
// non-empty columns toward column 0. Relative order is preserved in both
// passes and the freed space ends up at the far edge.
func (b *Board) compact() {
	grid := b.state.Grid

	for x := range grid {
		col := grid[x]
		out := 0
		for y := range col {
			if col[y].IsEmpty() {
				continue
			}
			col[out] = col[y]
			out++
		}
		for y := out; y < len(col); y++ {
			col[y] = EmptyCell()
		}
	}

	// after gravity a column is empty iff its bottom cell is empty;
	// grid[out:x] only ever holds empty columns
	out := 0
	for x := range grid {
		if grid[x][0].IsEmpty() {
			continue
		}
		grid[out], grid[x] = grid[x], grid[out]
		out++
	}
}
