package engine

import "errors"

// Colour identifies a ball colour. The empty string is reserved for empty cells.
type Colour string

const (
	// Validation constants
	MinBoardSize   = 1
	MaxBoardSize   = 64
	MaxPaletteSize = 16

	DefaultWidth  = 20
	DefaultHeight = 16
)

var (
	ErrInvalidDimensions = errors.New("board width and height must be positive")
	ErrEmptyPalette      = errors.New("palette must contain at least one colour")
	ErrInvalidPalette    = errors.New("invalid palette")
	ErrOutOfBounds       = errors.New("position out of bounds")
	ErrGameOver          = errors.New("game is over")
	ErrInvalidState      = errors.New("invalid game state")
)

// Ball is a coloured unit occupying one grid cell
type Ball struct {
	Colour Colour `json:"colour"`
}

// Cell is either empty or holds a ball. The zero value is an empty cell.
type Cell struct {
	Colour Colour `json:"colour,omitempty"`
}

// EmptyCell returns a cell holding no ball
func EmptyCell() Cell {
	return Cell{}
}

// BallCell returns a cell holding a ball of the given colour
func BallCell(colour Colour) Cell {
	return Cell{Colour: colour}
}

// IsEmpty reports whether the cell holds no ball
func (c Cell) IsEmpty() bool {
	return c.Colour == ""
}

// Ball returns the ball in the cell, if any
func (c Cell) Ball() (Ball, bool) {
	if c.IsEmpty() {
		return Ball{}, false
	}
	return Ball{Colour: c.Colour}, true
}

// Matches reports whether both cells hold balls of the same colour.
// Empty cells never match anything, including other empty cells.
func (c Cell) Matches(other Cell) bool {
	return !c.IsEmpty() && !other.IsEmpty() && c.Colour == other.Colour
}

// Position represents x,y coordinates. X is the column, Y the row; row 0 is
// the edge balls fall toward and column 0 the edge columns slide toward.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Square marks the midpoint between two adjacent balls of the same colour
type Square struct {
	Colour Colour  `json:"colour"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
}

// GameState represents the complete game state
type GameState struct {
	Width     int      `json:"width"`
	Height    int      `json:"height"`
	Grid      [][]Cell `json:"grid"` // column-major: Grid[x][y]
	Palette   Palette  `json:"palette"`
	BallsLeft int      `json:"balls_left"`
	Moves     int      `json:"moves"`
	Score     int      `json:"score"`
	HighScore int      `json:"high_score"`
	GameOver  bool     `json:"game_over"`
	NewRecord bool     `json:"new_record,omitempty"`

	// HighScoreSaved is set once the final score has been handed to the store
	HighScoreSaved   bool `json:"high_score_saved,omitempty"`
	// PendingHighScore is a finished game's score whose write failed before
	// a reset; IsGameOver keeps retrying it
	PendingHighScore int  `json:"pending_high_score,omitempty"`

	Message     string             `json:"message"`
	ConfigName  string             `json:"config_name"`
	Seed        uint64             `json:"seed"`
	MoveHistory []MoveHistoryEntry `json:"move_history"`
	TotalMoves  int                `json:"total_moves"`
}

// MoveHistoryEntry represents a single selection in the game history
type MoveHistoryEntry struct {
	MoveNumber int      `json:"move_number"`
	Position   Position `json:"position"`
	Colour     Colour   `json:"colour,omitempty"`
	Removed    int      `json:"removed"`
	Points     int      `json:"points"`
	ScoreAfter int      `json:"score_after"`
	Timestamp  int64    `json:"timestamp"`
	Success    bool     `json:"success"`
}

// MoveResult describes the outcome of a single RemoveGroup call
type MoveResult struct {
	Position  Position   `json:"position"`
	Colour    Colour     `json:"colour,omitempty"`
	Group     []Position `json:"group,omitempty"`
	Removed   int        `json:"removed"`
	Points    int        `json:"points"`
	Score     int        `json:"score"`
	BallsLeft int        `json:"balls_left"`
	GameOver  bool       `json:"game_over"`
}

// HighScoreStore persists the single best score across games
type HighScoreStore interface {
	// Load returns the recorded high score; a missing or empty store yields 0
	Load() (int, error)

	// Save overwrites the recorded high score
	Save(score int) error
}

// RandSource draws uniform integers in [0, n). *math/rand/v2.Rand satisfies it.
type RandSource interface {
	IntN(n int) int
}
