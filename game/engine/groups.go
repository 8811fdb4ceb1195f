package engine

import "sort"

// neighbourOffsets are the four orthogonal directions
var neighbourOffsets = [4][2]int{{0, 1}, {0, -1}, {1, 0}, {-1, 0}}

// AdjacentSameColour returns the orthogonal neighbours of p holding a ball of
// the same colour as p. An empty cell at p has no matches.
func (b *Board) AdjacentSameColour(p Position) ([]Position, error) {
	if err := b.checkBounds(p); err != nil {
		return nil, err
	}
	return b.adjacent(p), nil
}

func (b *Board) adjacent(p Position) []Position {
	cell := b.state.Grid[p.X][p.Y]
	if cell.IsEmpty() {
		return nil
	}

	var same []Position
	for _, d := range neighbourOffsets {
		n := Position{X: p.X + d[0], Y: p.Y + d[1]}
		if b.InBounds(n) && cell.Matches(b.state.Grid[n.X][n.Y]) {
			same = append(same, n)
		}
	}
	return same
}

// ConnectedGroup returns every position reachable from p through orthogonal
// same-colour neighbours, p included, sorted by column then row
func (b *Board) ConnectedGroup(p Position) ([]Position, error) {
	if err := b.checkBounds(p); err != nil {
		return nil, err
	}
	return b.connectedGroup(p), nil
}

func (b *Board) connectedGroup(p Position) []Position {
	visited := b.newVisited()
	return b.collectGroup(p, visited)
}

// collectGroup runs a stack-based flood fill from p, marking visited cells
func (b *Board) collectGroup(p Position, visited [][]bool) []Position {
	visited[p.X][p.Y] = true
	group := []Position{p}
	stack := []Position{p}

	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		for _, n := range b.adjacent(cur) {
			if visited[n.X][n.Y] {
				continue
			}
			visited[n.X][n.Y] = true
			stack = append(stack, n)
			group = append(group, n)
		}
	}

	sortPositions(group)
	return group
}

func (b *Board) newVisited() [][]bool {
	visited := make([][]bool, b.state.Width)
	for x := range visited {
		visited[x] = make([]bool, b.state.Height)
	}
	return visited
}

// HasMoves reports whether any two orthogonally adjacent balls share a colour
func (b *Board) HasMoves() bool {
	grid := b.state.Grid
	for x := 0; x < b.state.Width; x++ {
		for y := 0; y < b.state.Height; y++ {
			cell := grid[x][y]
			if cell.IsEmpty() {
				continue
			}
			if x+1 < b.state.Width && cell.Matches(grid[x+1][y]) {
				return true
			}
			if y+1 < b.state.Height && cell.Matches(grid[x][y+1]) {
				return true
			}
		}
	}
	return false
}

// Groups returns every removable group (two or more balls), largest first.
// Groups of equal size are ordered by their first position.
func (b *Board) Groups() [][]Position {
	visited := b.newVisited()
	var groups [][]Position

	for x := 0; x < b.state.Width; x++ {
		for y := 0; y < b.state.Height; y++ {
			if visited[x][y] || b.state.Grid[x][y].IsEmpty() {
				continue
			}
			group := b.collectGroup(Position{X: x, Y: y}, visited)
			if len(group) > 1 {
				groups = append(groups, group)
			}
		}
	}

	sort.SliceStable(groups, func(i, j int) bool {
		if len(groups[i]) != len(groups[j]) {
			return len(groups[i]) > len(groups[j])
		}
		return lessPosition(groups[i][0], groups[j][0])
	})
	return groups
}

// BestMove returns a position in the highest-scoring group and its score.
// ok is false when no group can be removed.
func (b *Board) BestMove() (pos Position, score int, ok bool) {
	groups := b.Groups()
	if len(groups) == 0 {
		return Position{}, 0, false
	}
	n := len(groups[0])
	return groups[0][0], n * n, true
}

func sortPositions(ps []Position) {
	sort.Slice(ps, func(i, j int) bool {
		return lessPosition(ps[i], ps[j])
	})
}

func lessPosition(a, b Position) bool {
	if a.X != b.X {
		return a.X < b.X
	}
	return a.Y < b.Y
}
