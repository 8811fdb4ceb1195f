package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/wricardo/same-game/game/engine"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrConfigNotFound  = errors.New("configuration not found")
)

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	sessions SessionManager
	configs  ConfigManager
	scores   HighScores
	newSeed  func() uint64
	mu       sync.RWMutex
}

// NewGameService creates a new game service instance. scores may be nil, in
// which case high score queries report zero.
func NewGameService(sessions SessionManager, configs ConfigManager, scores HighScores) GameService {
	return &gameServiceImpl{
		sessions: sessions,
		configs:  configs,
		scores:   scores,
		newSeed:  engine.NewSeed,
	}
}

// CreateSession creates a new game session
func (s *gameServiceImpl) CreateSession(ctx context.Context, configName string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var config *engine.GameConfig
	var err error
	configID := configName
	if configName != "" {
		config, err = s.configs.LoadConfig(configName)
		if err != nil {
			if errors.Is(err, ErrConfigNotFound) {
				availableConfigs, listErr := s.configs.ListConfigs()
				if listErr == nil && len(availableConfigs) > 0 {
					var configIDs []string
					for _, cfg := range availableConfigs {
						configIDs = append(configIDs, cfg.ConfigID)
					}
					return nil, fmt.Errorf("config '%s' not found, available configs: %v: %w", configName, configIDs, err)
				}
				return nil, fmt.Errorf("config '%s' not found, use /api/configs to list available configurations: %w", configName, err)
			}
			return nil, fmt.Errorf("failed to load config %s: %w", configName, err)
		}
	} else {
		config = s.configs.GetDefault()
		configID = s.configs.ConfigID(config.Name)
	}

	session, err := s.sessions.Create("", configID, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	log.WithFields(log.Fields{
		"session": session.ID,
		"config":  configID,
		"seed":    session.Board.GetState().Seed,
	}).Info("Session created")

	return newSessionInfo(session), nil
}

// GetSession retrieves session information
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", sessionID, err)
	}

	s.sessions.UpdateLastAccessed(sessionID)
	return newSessionInfo(session), nil
}

// ListSessions returns all active sessions
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		result = append(result, newSessionInfo(sess))
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})
	return result, nil
}

// DeleteSession removes a session
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.sessions.Delete(sessionID); err != nil {
		return fmt.Errorf("session %s: %w", sessionID, err)
	}
	log.WithField("session", sessionID).Info("Session deleted")
	return nil
}

// Select removes the group containing (x, y), then checks for game over so
// the high score is flushed as soon as the last move is played
func (s *gameServiceImpl) Select(ctx context.Context, sessionID string, x, y int) (*SelectResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", sessionID, err)
	}
	s.sessions.UpdateLastAccessed(sessionID)

	pos := engine.Position{X: x, Y: y}
	move, err := sess.Board.RemoveGroup(pos)
	if err != nil {
		if errors.Is(err, engine.ErrGameOver) {
			// retries a high score write that failed when the game ended
			if _, saveErr := sess.Board.IsGameOver(); saveErr != nil {
				log.WithError(saveErr).WithField("session", sessionID).Warn("Failed to persist high score")
			}
		}
		return nil, fmt.Errorf("select (%d,%d): %w", x, y, err)
	}

	over, saveErr := sess.Board.IsGameOver()
	if saveErr != nil {
		log.WithError(saveErr).WithField("session", sessionID).Warn("Failed to persist high score, will retry")
	}

	state := sess.Board.Snapshot()
	now := time.Now()
	result := &SelectResult{
		Success:   move.Removed > 0,
		Position:  pos,
		Colour:    move.Colour,
		Removed:   move.Removed,
		Points:    move.Points,
		Group:     move.Group,
		GameOver:  over,
		NewRecord: state.NewRecord,
		Message:   state.Message,
		GameState: state,
	}

	if move.Removed > 0 {
		result.Events = append(result.Events, GameEvent{
			Type:      EventRemoved,
			Message:   fmt.Sprintf("Removed %d %s balls for %d points", move.Removed, move.Colour, move.Points),
			Timestamp: now,
			Position:  pos,
		})
	} else {
		result.Events = append(result.Events, GameEvent{
			Type:      EventNoGroup,
			Message:   state.Message,
			Timestamp: now,
			Position:  pos,
		})
	}
	if over {
		result.Events = append(result.Events, GameEvent{
			Type:      EventGameOver,
			Message:   fmt.Sprintf("Game over with %d balls left, score %d", state.BallsLeft, state.Score),
			Timestamp: now,
		})
		if state.NewRecord {
			result.Events = append(result.Events, GameEvent{
				Type:      EventNewRecord,
				Message:   state.Message,
				Timestamp: now,
			})
		}
	}

	if err := s.sessions.Save(sessionID); err != nil {
		log.WithError(err).WithField("session", sessionID).Warn("Failed to persist session after select")
	}

	log.WithFields(log.Fields{
		"session": sessionID,
		"x":       x,
		"y":       y,
		"removed": move.Removed,
		"score":   state.Score,
	}).Debug("Ball selected")

	return result, nil
}

// Preview reports the group and score a selection would yield without
// changing the board
func (s *gameServiceImpl) Preview(ctx context.Context, sessionID string, x, y int) (*PreviewResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", sessionID, err)
	}

	pos := engine.Position{X: x, Y: y}
	group, err := sess.Board.ConnectedGroup(pos)
	if err != nil {
		return nil, fmt.Errorf("preview (%d,%d): %w", x, y, err)
	}
	score, err := sess.Board.ScoreFor(pos)
	if err != nil {
		return nil, fmt.Errorf("preview (%d,%d): %w", x, y, err)
	}
	cell, _ := sess.Board.Cell(pos)

	return &PreviewResult{
		Position:  pos,
		Colour:    cell.Colour,
		GroupSize: len(group),
		Score:     score,
		Group:     group,
		Removable: !cell.IsEmpty() && len(group) > 1,
	}, nil
}

// JoiningSquares returns the renderer hints for the current board
func (s *gameServiceImpl) JoiningSquares(ctx context.Context, sessionID string) (*SquaresResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", sessionID, err)
	}

	squares := sess.Board.JoiningSquares()
	return &SquaresResult{
		Squares:    squares,
		Count:      len(squares),
		Connectors: sess.Board.ConnectorGrid(),
	}, nil
}

// Hint suggests the highest scoring group on the board
func (s *gameServiceImpl) Hint(ctx context.Context, sessionID string) (*HintResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", sessionID, err)
	}

	pos, score, ok := sess.Board.BestMove()
	if !ok {
		return &HintResult{Message: "No removable groups left"}, nil
	}

	groups := sess.Board.Groups()
	size := len(groups[0])
	return &HintResult{
		Available: true,
		Position:  pos,
		Score:     score,
		GroupSize: size,
		Groups:    len(groups),
		Message:   fmt.Sprintf("Select (%d,%d) to remove %d balls for %d points", pos.X, pos.Y, size, score),
	}, nil
}

// Reset deals a fresh board for the session, keeping its high score
func (s *gameServiceImpl) Reset(ctx context.Context, sessionID string) (*engine.GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", sessionID, err)
	}

	s.sessions.UpdateLastAccessed(sessionID)
	sess.Board.Reset(s.newSeed())

	if err := s.sessions.Save(sessionID); err != nil {
		log.WithError(err).WithField("session", sessionID).Warn("Failed to persist session after reset")
	}
	log.WithField("session", sessionID).Info("Game reset")

	return sess.Board.Snapshot(), nil
}

// GetGameState retrieves the current game state
func (s *gameServiceImpl) GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", sessionID, err)
	}

	s.sessions.UpdateLastAccessed(sessionID)
	return sess.Board.Snapshot(), nil
}

// GetMoveHistory returns paginated move history
func (s *gameServiceImpl) GetMoveHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", sessionID, err)
	}

	history := sess.Board.GetMoveHistory()
	total := len(history)

	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit <= 0 {
		opts.Limit = 20
	}
	if opts.Limit > 100 {
		opts.Limit = 100
	}
	if opts.Order == "" {
		opts.Order = "desc"
	}

	totalPages := (total + opts.Limit - 1) / opts.Limit
	if totalPages == 0 {
		totalPages = 1
	}

	start := (opts.Page - 1) * opts.Limit
	end := start + opts.Limit
	if end > total {
		end = total
	}

	moves := []engine.MoveHistoryEntry{}
	if start < total {
		if opts.Order == "desc" {
			// most recent first
			for i := total - 1 - start; i >= total-end; i-- {
				moves = append(moves, history[i])
			}
		} else {
			moves = append(moves, history[start:end]...)
		}
	}

	return &HistoryResponse{
		Moves:       moves,
		TotalMoves:  total,
		Page:        opts.Page,
		PageSize:    opts.Limit,
		TotalPages:  totalPages,
		HasNext:     opts.Page < totalPages,
		HasPrevious: opts.Page > 1,
	}, nil
}

// ListConfigs returns available game configurations
func (s *gameServiceImpl) ListConfigs(ctx context.Context) ([]*ConfigInfo, error) {
	return s.configs.ListConfigs()
}

// LoadConfig loads a specific game configuration
func (s *gameServiceImpl) LoadConfig(ctx context.Context, configName string) (*engine.GameConfig, error) {
	return s.configs.LoadConfig(configName)
}

// SaveConfig saves a game configuration to disk
func (s *gameServiceImpl) SaveConfig(ctx context.Context, configName string, config *engine.GameConfig) error {
	return s.configs.SaveConfig(configName, config)
}

// HighScore returns the recorded high score for a configuration
func (s *gameServiceImpl) HighScore(ctx context.Context, configName string) (*HighScoreInfo, error) {
	info := &HighScoreInfo{ConfigID: configName}
	if s.scores == nil {
		return info, nil
	}

	store, err := s.scores.Store(configName)
	if err != nil {
		return nil, fmt.Errorf("high score store for %s: %w", configName, err)
	}
	score, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load high score for %s: %w", configName, err)
	}
	info.HighScore = score
	return info, nil
}

// HighScores returns every recorded high score ordered by config ID
func (s *gameServiceImpl) HighScores(ctx context.Context) ([]*HighScoreInfo, error) {
	result := []*HighScoreInfo{}
	if s.scores == nil {
		return result, nil
	}

	scores, err := s.scores.Scores()
	if err != nil {
		return nil, err
	}
	for id, score := range scores {
		result = append(result, &HighScoreInfo{ConfigID: id, HighScore: score})
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].ConfigID < result[j].ConfigID
	})
	return result, nil
}

func newSessionInfo(sess *Session) *SessionInfo {
	return &SessionInfo{
		ID:             sess.ID,
		ConfigName:     sess.ConfigID,
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt,
		GameState:      sess.Board.Snapshot(),
		GameConfig:     sess.Config,
	}
}
