package service

import (
	"time"

	"github.com/wricardo/same-game/game/engine"
)

// Event types carried in SelectResult.Events and WebSocket broadcasts
const (
	EventRemoved   = "removed"
	EventNoGroup   = "no_group"
	EventGameOver  = "game_over"
	EventNewRecord = "new_record"
	EventReset     = "reset"
)

// SessionInfo provides information about a game session
type SessionInfo struct {
	ID             string             `json:"id"`
	ConfigName     string             `json:"config_name"`
	CreatedAt      time.Time          `json:"created_at"`
	LastAccessedAt time.Time          `json:"last_accessed_at"`
	GameState      *engine.GameState  `json:"game_state"`
	GameConfig     *engine.GameConfig `json:"game_config"`
}

// SelectResult contains the result of selecting a ball
type SelectResult struct {
	Success   bool              `json:"success"`
	Position  engine.Position   `json:"position"`
	Colour    engine.Colour     `json:"colour,omitempty"`
	Removed   int               `json:"removed"`
	Points    int               `json:"points"`
	Group     []engine.Position `json:"group,omitempty"`
	GameOver  bool              `json:"game_over"`
	NewRecord bool              `json:"new_record,omitempty"`
	Message   string            `json:"message"`
	GameState *engine.GameState `json:"game_state"`
	Events    []GameEvent       `json:"events,omitempty"`
}

// PreviewResult describes what selecting a position would score
type PreviewResult struct {
	Position  engine.Position   `json:"position"`
	Colour    engine.Colour     `json:"colour,omitempty"`
	GroupSize int               `json:"group_size"`
	Score     int               `json:"score"`
	Group     []engine.Position `json:"group"`
	Removable bool              `json:"removable"`
}

// SquaresResult lists the joining squares between equal neighbours
type SquaresResult struct {
	Squares    []engine.Square `json:"squares"`
	Count      int             `json:"count"`
	Connectors [][]engine.Cell `json:"connectors"`
}

// HintResult suggests the highest scoring selection
type HintResult struct {
	Available bool            `json:"available"`
	Position  engine.Position `json:"position"`
	Score     int             `json:"score"`
	GroupSize int             `json:"group_size"`
	Groups    int             `json:"groups"`
	Message   string          `json:"message"`
}

// GameEvent represents an event that occurred during gameplay
type GameEvent struct {
	Type      string          `json:"type"` // "removed", "no_group", "game_over", "new_record", "reset"
	Message   string          `json:"message"`
	Timestamp time.Time       `json:"timestamp"`
	Position  engine.Position `json:"position,omitempty"`
}

// HistoryOptions configures move history retrieval
type HistoryOptions struct {
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Order string `json:"order"` // "asc" or "desc"
}

// HistoryResponse contains paginated move history
type HistoryResponse struct {
	Moves       []engine.MoveHistoryEntry `json:"moves"`
	TotalMoves  int                       `json:"total_moves"`
	Page        int                       `json:"page"`
	PageSize    int                       `json:"page_size"`
	TotalPages  int                       `json:"total_pages"`
	HasNext     bool                      `json:"has_next"`
	HasPrevious bool                      `json:"has_previous"`
}

// ConfigInfo provides information about a game configuration
type ConfigInfo struct {
	Filename    string         `json:"filename"`
	ConfigID    string         `json:"config_id"` // The identifier to use for session creation
	Name        string         `json:"name"`      // Display name
	Description string         `json:"description"`
	Width       int            `json:"width"`
	Height      int            `json:"height"`
	Palette     engine.Palette `json:"palette"`
}

// HighScoreInfo is the recorded best score of one configuration
type HighScoreInfo struct {
	ConfigID  string `json:"config_id"`
	HighScore int    `json:"high_score"`
}
