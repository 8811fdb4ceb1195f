package engine

// JoiningSquares returns one Square for every unordered pair of orthogonally
// adjacent balls sharing a colour, placed at the pair's midpoint. Each pair is
// visited once, from its lower-left member.
func (b *Board) JoiningSquares() []Square {
	grid := b.state.Grid
	squares := []Square{}

	for x := 0; x < b.state.Width; x++ {
		for y := 0; y < b.state.Height; y++ {
			cell := grid[x][y]
			if cell.IsEmpty() {
				continue
			}
			if x+1 < b.state.Width && cell.Matches(grid[x+1][y]) {
				squares = append(squares, Square{Colour: cell.Colour, X: float64(x) + 0.5, Y: float64(y)})
			}
			if y+1 < b.state.Height && cell.Matches(grid[x][y+1]) {
				squares = append(squares, Square{Colour: cell.Colour, X: float64(x), Y: float64(y) + 0.5})
			}
		}
	}
	return squares
}

// ConnectorGrid lays balls and connectors out on a (2W-1) x (2H-1) grid,
// indexed [x][y]. Even/even slots are left empty for the balls themselves;
// slot (2x+1, 2y) holds the colour joining (x,y) and (x+1,y) and slot
// (2x, 2y+1) the colour joining (x,y) and (x,y+1). Odd/odd slots stay empty.
func (b *Board) ConnectorGrid() [][]Cell {
	w, h := 2*b.state.Width-1, 2*b.state.Height-1
	out := make([][]Cell, w)
	for i := range out {
		out[i] = make([]Cell, h)
	}

	for _, sq := range b.JoiningSquares() {
		cx := int(sq.X * 2)
		cy := int(sq.Y * 2)
		out[cx][cy] = BallCell(sq.Colour)
	}
	return out
}
