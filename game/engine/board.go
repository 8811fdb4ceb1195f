package engine

import (
	"fmt"
	"math/rand/v2"
	"time"
)

// Board is the engine for a single game: the grid of balls, the score and
// the high score. It is not safe for concurrent use.
type Board struct {
	state   *GameState
	config  *GameConfig
	store   HighScoreStore
	loadErr error
}

// NewRand returns a deterministic random source for the given seed
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// NewSeed returns a seed derived from the current time
func NewSeed() uint64 {
	return uint64(time.Now().UnixNano())
}

// NewBoard creates a width x height board filled with balls drawn uniformly
// from palette using rng. The high score is read from store; a nil store
// disables persistence. A nil rng uses a time-seeded source.
func NewBoard(width, height int, palette Palette, store HighScoreStore, rng RandSource) (*Board, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: got %dx%d", ErrInvalidDimensions, width, height)
	}
	if err := palette.Validate(); err != nil {
		return nil, err
	}
	if rng == nil {
		rng = NewRand(NewSeed())
	}

	p := make(Palette, len(palette))
	copy(p, palette)

	b := &Board{
		store: store,
		state: &GameState{
			Width:       width,
			Height:      height,
			Palette:     p,
			MoveHistory: []MoveHistoryEntry{},
		},
	}
	b.fill(rng)
	b.loadHighScore()
	b.state.Message = b.messages().Welcome

	return b, nil
}

// NewBoardFromConfig creates a board sized and coloured by config, filled
// from a source seeded with seed so the layout can be reproduced
func NewBoardFromConfig(config *GameConfig, store HighScoreStore, seed uint64) (*Board, error) {
	if err := ValidateGameConfig(config); err != nil {
		return nil, err
	}
	palette, err := config.ResolvePalette()
	if err != nil {
		return nil, err
	}

	b, err := NewBoard(config.Width, config.Height, palette, store, NewRand(seed))
	if err != nil {
		return nil, err
	}
	b.config = config
	b.state.ConfigName = config.Name
	b.state.Seed = seed
	b.state.Message = b.messages().Welcome
	return b, nil
}

// RestoreBoard rebuilds a board from a previously saved state. The grid is
// checked against the recorded dimensions and palette and must be compacted;
// BallsLeft is recomputed from the grid.
func RestoreBoard(state *GameState, config *GameConfig, store HighScoreStore) (*Board, error) {
	if state == nil {
		return nil, fmt.Errorf("%w: state cannot be nil", ErrInvalidState)
	}
	if state.Width <= 0 || state.Height <= 0 {
		return nil, fmt.Errorf("%w: got %dx%d", ErrInvalidDimensions, state.Width, state.Height)
	}
	if err := state.Palette.Validate(); err != nil {
		return nil, err
	}
	if len(state.Grid) != state.Width {
		return nil, fmt.Errorf("%w: grid has %d columns, expected %d", ErrInvalidState, len(state.Grid), state.Width)
	}

	if state.Score < 0 || state.HighScore < 0 || state.PendingHighScore < 0 || state.Moves < 0 {
		return nil, fmt.Errorf("%w: negative score or move count", ErrInvalidState)
	}

	// the grid must already be compacted: no gap inside a column and no
	// empty column left of a filled one
	balls := 0
	emptyColumn := -1
	for x, col := range state.Grid {
		if len(col) != state.Height {
			return nil, fmt.Errorf("%w: column %d has %d cells, expected %d", ErrInvalidState, x, len(col), state.Height)
		}
		gap := false
		for y, cell := range col {
			if cell.IsEmpty() {
				gap = true
				continue
			}
			if gap {
				return nil, fmt.Errorf("%w: column %d has a gap below (%d,%d)", ErrInvalidState, x, x, y)
			}
			if !state.Palette.Contains(cell.Colour) {
				return nil, fmt.Errorf("%w: colour %q at (%d,%d) is not in the palette", ErrInvalidState, cell.Colour, x, y)
			}
			balls++
		}
		if col[0].IsEmpty() {
			if emptyColumn < 0 {
				emptyColumn = x
			}
		} else if emptyColumn >= 0 {
			return nil, fmt.Errorf("%w: column %d is empty but column %d is not", ErrInvalidState, emptyColumn, x)
		}
	}
	state.BallsLeft = balls
	if state.MoveHistory == nil {
		state.MoveHistory = []MoveHistoryEntry{}
	}

	b := &Board{state: state, config: config, store: store}
	recorded := state.HighScore
	b.loadHighScore()
	if recorded > b.state.HighScore {
		b.state.HighScore = recorded
	}
	return b, nil
}

// fill gives every cell a random colour from the palette
func (b *Board) fill(rng RandSource) {
	w, h := b.state.Width, b.state.Height
	palette := b.state.Palette

	grid := make([][]Cell, w)
	for x := 0; x < w; x++ {
		grid[x] = make([]Cell, h)
		for y := 0; y < h; y++ {
			grid[x][y] = BallCell(palette[rng.IntN(len(palette))])
		}
	}
	b.state.Grid = grid
	b.state.BallsLeft = w * h
}

// loadHighScore reads the store; failures count as no recorded score
func (b *Board) loadHighScore() {
	b.state.HighScore = 0
	b.loadErr = nil
	if b.store == nil {
		return
	}
	score, err := b.store.Load()
	if err != nil {
		b.loadErr = err
		return
	}
	if score > 0 {
		b.state.HighScore = score
	}
}

// HighScoreLoadErr returns the error hit while reading the high score store, if any
func (b *Board) HighScoreLoadErr() error {
	return b.loadErr
}

// GetState returns the current game state
func (b *Board) GetState() *GameState {
	return b.state
}

// Snapshot returns a deep copy of the current state, safe to hand to other
// goroutines or encode after the board moves on
func (b *Board) Snapshot() *GameState {
	s := *b.state
	s.Grid = b.Grid()
	s.Palette = b.Palette()
	s.MoveHistory = make([]MoveHistoryEntry, len(b.state.MoveHistory))
	copy(s.MoveHistory, b.state.MoveHistory)
	return &s
}

// GetConfig returns the configuration the board was built from, or nil
func (b *Board) GetConfig() *GameConfig {
	return b.config
}

// Width returns the number of columns
func (b *Board) Width() int { return b.state.Width }

// Height returns the number of rows
func (b *Board) Height() int { return b.state.Height }

// Score returns the cumulative score of the current game
func (b *Board) Score() int { return b.state.Score }

// HighScore returns the best score known to this board
func (b *Board) HighScore() int { return b.state.HighScore }

// Moves returns the number of accepted moves in the current game
func (b *Board) Moves() int { return b.state.Moves }

// BallsLeft returns the number of non-empty cells
func (b *Board) BallsLeft() int { return b.state.BallsLeft }

// Palette returns a copy of the active palette
func (b *Board) Palette() Palette {
	p := make(Palette, len(b.state.Palette))
	copy(p, b.state.Palette)
	return p
}

// Grid returns a copy of the grid, indexed [x][y]
func (b *Board) Grid() [][]Cell {
	grid := make([][]Cell, len(b.state.Grid))
	for x, col := range b.state.Grid {
		grid[x] = make([]Cell, len(col))
		copy(grid[x], col)
	}
	return grid
}

// Cell returns the cell at p
func (b *Board) Cell(p Position) (Cell, error) {
	if err := b.checkBounds(p); err != nil {
		return Cell{}, err
	}
	return b.state.Grid[p.X][p.Y], nil
}

// InBounds reports whether p lies on the board
func (b *Board) InBounds(p Position) bool {
	return p.X >= 0 && p.X < b.state.Width && p.Y >= 0 && p.Y < b.state.Height
}

func (b *Board) checkBounds(p Position) error {
	if !b.InBounds(p) {
		return fmt.Errorf("%w: (%d,%d) on a %dx%d board", ErrOutOfBounds, p.X, p.Y, b.state.Width, b.state.Height)
	}
	return nil
}

// ScoreFor returns the points removing the group at p would earn
func (b *Board) ScoreFor(p Position) (int, error) {
	if err := b.checkBounds(p); err != nil {
		return 0, err
	}
	n := len(b.connectedGroup(p))
	return n * n, nil
}

// RemoveGroup removes the group containing p, scores it and compacts the
// board. Selecting a ball with no same-coloured neighbour, or an empty cell,
// changes nothing and reports Removed == 0.
func (b *Board) RemoveGroup(p Position) (*MoveResult, error) {
	if err := b.checkBounds(p); err != nil {
		return nil, err
	}
	if b.state.GameOver {
		return nil, ErrGameOver
	}

	cell := b.state.Grid[p.X][p.Y]
	group := b.connectedGroup(p)
	result := &MoveResult{
		Position: p,
		Colour:   cell.Colour,
	}

	if len(group) == 1 {
		b.state.Message = b.messages().NoGroup
		b.addMoveToHistory(p, cell.Colour, 0, 0, false)
		result.Score = b.state.Score
		result.BallsLeft = b.state.BallsLeft
		result.GameOver = !b.HasMoves()
		return result, nil
	}

	points := len(group) * len(group)
	b.state.Score += points
	b.state.Moves++
	for _, pos := range group {
		b.state.Grid[pos.X][pos.Y] = EmptyCell()
	}
	b.state.BallsLeft -= len(group)
	b.compact()

	if b.state.Score > b.state.HighScore {
		b.state.HighScore = b.state.Score
	}

	b.state.Message = fmt.Sprintf(b.messages().Removed, len(group), points)
	b.addMoveToHistory(p, cell.Colour, len(group), points, true)

	result.Group = group
	result.Removed = len(group)
	result.Points = points
	result.Score = b.state.Score
	result.BallsLeft = b.state.BallsLeft
	result.GameOver = !b.HasMoves()
	return result, nil
}

// IsGameOver reports whether no two adjacent balls share a colour. The first
// time it returns true the final score is written to the high score store if
// it matches or beats the score the store holds at that moment. A failed
// write is returned and retried on the next call, including calls made in a
// later game after Reset; the game result stands either way.
func (b *Board) IsGameOver() (bool, error) {
	if b.HasMoves() {
		return false, b.flushPendingHighScore()
	}

	if !b.state.GameOver {
		b.state.GameOver = true
		b.state.Message = fmt.Sprintf(b.messages().GameOver, b.state.Score)
	}
	if b.state.HighScoreSaved {
		return true, nil
	}
	return true, b.saveHighScore()
}

func (b *Board) saveHighScore() error {
	if pending := b.state.PendingHighScore; pending > b.state.Score {
		if _, err := b.writeIfRecord(pending); err != nil {
			return err
		}
	}

	written, err := b.writeIfRecord(b.state.Score)
	if err != nil {
		return err
	}
	b.state.PendingHighScore = 0
	b.state.HighScoreSaved = true
	if written {
		b.state.NewRecord = true
		b.state.Message = fmt.Sprintf(b.messages().NewRecord, b.state.Score)
	}
	return nil
}

func (b *Board) flushPendingHighScore() error {
	if b.state.PendingHighScore == 0 {
		return nil
	}
	if _, err := b.writeIfRecord(b.state.PendingHighScore); err != nil {
		return err
	}
	b.state.PendingHighScore = 0
	return nil
}

// writeIfRecord saves score unless the store already holds a higher one.
// The store is read again first because boards of other sessions may have
// written to it since this board loaded it.
func (b *Board) writeIfRecord(score int) (bool, error) {
	recorded := b.state.HighScore
	if b.store != nil {
		stored, err := b.store.Load()
		if err != nil {
			return false, fmt.Errorf("failed to read high score: %w", err)
		}
		recorded = stored
	}

	if score < recorded {
		b.state.HighScore = max(b.state.HighScore, recorded)
		return false, nil
	}
	if b.store != nil {
		if err := b.store.Save(score); err != nil {
			return false, fmt.Errorf("failed to save high score: %w", err)
		}
	}
	b.state.HighScore = score
	return true, nil
}

// Reset refills the board from seed, keeping the high score and the
// cumulative move history. A finished game whose high score could not be
// written is tried once more; if that fails too the score stays pending and
// IsGameOver retries it.
func (b *Board) Reset(seed uint64) *GameState {
	if b.state.GameOver && !b.state.HighScoreSaved {
		if err := b.saveHighScore(); err != nil {
			b.state.PendingHighScore = max(b.state.PendingHighScore, b.state.Score)
		}
	}

	b.fill(NewRand(seed))
	b.state.Seed = seed
	b.state.Moves = 0
	b.state.Score = 0
	b.state.GameOver = false
	b.state.HighScoreSaved = false
	b.state.NewRecord = false
	b.state.Message = b.messages().Welcome
	return b.state
}

// GetMoveHistory returns the complete move history
func (b *Board) GetMoveHistory() []MoveHistoryEntry {
	return b.state.MoveHistory
}

// GetLastMove returns the last move made, or nil if no moves
func (b *Board) GetLastMove() *MoveHistoryEntry {
	if len(b.state.MoveHistory) == 0 {
		return nil
	}
	return &b.state.MoveHistory[len(b.state.MoveHistory)-1]
}

func (b *Board) addMoveToHistory(p Position, colour Colour, removed, points int, success bool) {
	entry := MoveHistoryEntry{
		MoveNumber: b.state.TotalMoves + 1,
		Position:   p,
		Colour:     colour,
		Removed:    removed,
		Points:     points,
		ScoreAfter: b.state.Score,
		Timestamp:  time.Now().Unix(),
		Success:    success,
	}
	b.state.MoveHistory = append(b.state.MoveHistory, entry)
	b.state.TotalMoves++
}

func (b *Board) messages() Messages {
	if b.config != nil {
		return b.config.Messages.withDefaults()
	}
	return DefaultMessages()
}
