package service

import (
	"context"
	"time"

	"github.com/wricardo/same-game/game/engine"
)

// GameService defines all game-related operations
type GameService interface {
	// Session Management
	CreateSession(ctx context.Context, configName string) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Game Operations
	Select(ctx context.Context, sessionID string, x, y int) (*SelectResult, error)
	Preview(ctx context.Context, sessionID string, x, y int) (*PreviewResult, error)
	JoiningSquares(ctx context.Context, sessionID string) (*SquaresResult, error)
	Hint(ctx context.Context, sessionID string) (*HintResult, error)
	Reset(ctx context.Context, sessionID string) (*engine.GameState, error)

	// Game State
	GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error)
	GetMoveHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error)

	// Configuration
	ListConfigs(ctx context.Context) ([]*ConfigInfo, error)
	LoadConfig(ctx context.Context, configName string) (*engine.GameConfig, error)
	SaveConfig(ctx context.Context, configName string, config *engine.GameConfig) error

	// High scores
	HighScore(ctx context.Context, configName string) (*HighScoreInfo, error)
	HighScores(ctx context.Context) ([]*HighScoreInfo, error)
}

// SessionManager defines session storage operations
type SessionManager interface {
	Create(id, configID string, config *engine.GameConfig) (*Session, error)
	Get(id string) (*Session, error)
	GetOrCreate(id, configID string, config *engine.GameConfig) (*Session, error)
	List() []*Session
	Delete(id string) error
	UpdateLastAccessed(id string) error
	Save(id string) error
}

// ConfigManager handles game configuration loading
type ConfigManager interface {
	LoadConfig(name string) (*engine.GameConfig, error)
	ListConfigs() ([]*ConfigInfo, error)
	GetDefault() *engine.GameConfig
	SaveConfig(name string, config *engine.GameConfig) error
	ConfigID(displayName string) string
}

// HighScores hands out the per-config high score stores
type HighScores interface {
	Store(configID string) (engine.HighScoreStore, error)
	Scores() (map[string]int, error)
}

// Session represents an active game session
type Session struct {
	ID             string
	ConfigID       string
	Board          *engine.Board
	Config         *engine.GameConfig
	CreatedAt      time.Time
	LastAccessedAt time.Time
}
