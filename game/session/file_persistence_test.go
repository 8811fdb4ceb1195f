package session

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/wricardo/same-game/game/config"
	"github.com/wricardo/same-game/game/engine"
	"github.com/wricardo/same-game/game/highscore"
	"github.com/wricardo/same-game/game/service"
)

func newTestPersistence(t *testing.T) (*FilePersistence, *config.Manager, *highscore.Registry) {
	t.Helper()

	configManager, err := config.NewManager("../../configs")
	if err != nil {
		t.Fatalf("Failed to create config manager: %v", err)
	}
	scores, err := highscore.NewRegistry(filepath.Join(t.TempDir(), "highscores"))
	if err != nil {
		t.Fatalf("Failed to create registry: %v", err)
	}
	persistence, err := NewFilePersistence(t.TempDir(), configManager, scores)
	if err != nil {
		t.Fatalf("Failed to create file persistence: %v", err)
	}
	return persistence, configManager, scores
}

func TestFilePersistence(t *testing.T) {
	persistence, configManager, _ := newTestPersistence(t)

	gameConfig := configManager.GetDefault()
	board, err := engine.NewBoardFromConfig(gameConfig, nil, 42)
	if err != nil {
		t.Fatalf("Failed to create board: %v", err)
	}

	session := &service.Session{
		ID:             "test1",
		ConfigID:       "classic",
		Board:          board,
		Config:         gameConfig,
		CreatedAt:      time.Now(),
		LastAccessedAt: time.Now(),
	}

	t.Run("Save and Load Session", func(t *testing.T) {
		if err := persistence.Save(session); err != nil {
			t.Fatalf("Failed to save session: %v", err)
		}

		if !persistence.Exists("test1") {
			t.Error("Session file should exist after save")
		}

		loaded, err := persistence.Load("test1")
		if err != nil {
			t.Fatalf("Failed to load session: %v", err)
		}

		if loaded.ID != session.ID {
			t.Errorf("Expected ID %s, got %s", session.ID, loaded.ID)
		}
		if loaded.ConfigID != "classic" {
			t.Errorf("Expected config id classic, got %s", loaded.ConfigID)
		}
		if loaded.Config.Name != session.Config.Name {
			t.Errorf("Expected config name %s, got %s", session.Config.Name, loaded.Config.Name)
		}
		if loaded.Board.GetState().Seed != 42 {
			t.Errorf("Expected seed 42, got %d", loaded.Board.GetState().Seed)
		}
	})

	t.Run("Save State Changes", func(t *testing.T) {
		pos, _, ok := session.Board.BestMove()
		if !ok {
			t.Skip("Seeded board has no removable group")
		}
		if _, err := session.Board.RemoveGroup(pos); err != nil {
			t.Fatalf("Failed to remove group: %v", err)
		}

		if err := persistence.Save(session); err != nil {
			t.Fatalf("Failed to save updated session: %v", err)
		}

		loaded, err := persistence.Load("test1")
		if err != nil {
			t.Fatalf("Failed to load updated session: %v", err)
		}

		if loaded.Board.Score() != session.Board.Score() {
			t.Errorf("Score not persisted: expected %d, got %d", session.Board.Score(), loaded.Board.Score())
		}
		if loaded.Board.BallsLeft() != session.Board.BallsLeft() {
			t.Errorf("Balls left not persisted: expected %d, got %d", session.Board.BallsLeft(), loaded.Board.BallsLeft())
		}
		want, got := session.Board.Grid(), loaded.Board.Grid()
		for x := range want {
			for y := range want[x] {
				if want[x][y] != got[x][y] {
					t.Fatalf("Grid differs at (%d,%d): %v vs %v", x, y, want[x][y], got[x][y])
				}
			}
		}
		if len(loaded.Board.GetMoveHistory()) != len(session.Board.GetMoveHistory()) {
			t.Errorf("Move history not persisted correctly")
		}
	})

	t.Run("List All Sessions", func(t *testing.T) {
		session2 := &service.Session{
			ID:             "test2",
			ConfigID:       "classic",
			Board:          board,
			Config:         gameConfig,
			CreatedAt:      time.Now(),
			LastAccessedAt: time.Now(),
		}
		if err := persistence.Save(session2); err != nil {
			t.Fatalf("Failed to save second session: %v", err)
		}

		sessionIDs, err := persistence.ListAll()
		if err != nil {
			t.Fatalf("Failed to list sessions: %v", err)
		}

		found := make(map[string]bool)
		for _, id := range sessionIDs {
			found[id] = true
		}
		if len(sessionIDs) != 2 || !found["test1"] || !found["test2"] {
			t.Errorf("Expected test1 and test2, got %v", sessionIDs)
		}
	})

	t.Run("Delete Session", func(t *testing.T) {
		if err := persistence.Delete("test2"); err != nil {
			t.Fatalf("Failed to delete session: %v", err)
		}

		if persistence.Exists("test2") {
			t.Error("Session should not exist after delete")
		}

		if _, err := persistence.Load("test2"); !errors.Is(err, ErrSessionNotFound) {
			t.Errorf("Expected ErrSessionNotFound, got %v", err)
		}
	})

	t.Run("Error Cases", func(t *testing.T) {
		if _, err := persistence.Load("nonexistent"); err == nil {
			t.Error("Should get error when loading non-existent session")
		}

		if err := persistence.Delete("nonexistent"); err == nil {
			t.Error("Should get error when deleting non-existent session")
		}

		if err := persistence.Save(nil); err == nil {
			t.Error("Should get error when saving nil session")
		}
	})
}

func TestFilePersistence_RejectsTamperedState(t *testing.T) {
	persistence, _, _ := newTestPersistence(t)

	tampered := `{
  "id": "bad",
  "config_name": "classic",
  "game_state": {
    "width": 2,
    "height": 1,
    "grid": [[{"colour": "red"}], [{"colour": "gold"}]],
    "palette": ["red", "blue"]
  }
}`
	if err := os.WriteFile(filepath.Join(persistence.sessionsDir, "bad.json"), []byte(tampered), 0644); err != nil {
		t.Fatalf("Failed to write session file: %v", err)
	}

	_, err := persistence.Load("bad")
	if !errors.Is(err, engine.ErrInvalidState) {
		t.Errorf("Expected ErrInvalidState, got %v", err)
	}
}

func TestFilePersistence_RestoredBoardUsesHighScoreStore(t *testing.T) {
	persistence, configManager, scores := newTestPersistence(t)

	gameConfig, err := configManager.LoadConfig("classic")
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	board, _ := engine.NewBoardFromConfig(gameConfig, nil, 7)
	session := &service.Session{ID: "hs", ConfigID: "classic", Board: board, Config: gameConfig}
	if err := persistence.Save(session); err != nil {
		t.Fatalf("Failed to save session: %v", err)
	}

	store, _ := scores.Store("classic")
	if err := store.Save(500); err != nil {
		t.Fatalf("Failed to seed high score: %v", err)
	}

	loaded, err := persistence.Load("hs")
	if err != nil {
		t.Fatalf("Failed to load session: %v", err)
	}
	if loaded.Board.HighScore() != 500 {
		t.Errorf("Expected high score 500, got %d", loaded.Board.HighScore())
	}
}

func TestFilePersistenceFileStructure(t *testing.T) {
	persistence, configManager, _ := newTestPersistence(t)

	gameConfig := configManager.GetDefault()
	board, err := engine.NewBoardFromConfig(gameConfig, nil, 1)
	if err != nil {
		t.Fatalf("Failed to create board: %v", err)
	}

	session := &service.Session{
		ID:             "file_test",
		Config:         gameConfig,
		Board:          board,
		CreatedAt:      time.Now(),
		LastAccessedAt: time.Now(),
	}

	if err := persistence.Save(session); err != nil {
		t.Fatalf("Failed to save session: %v", err)
	}

	expectedFile := filepath.Join(persistence.sessionsDir, "file_test.json")
	data, err := os.ReadFile(expectedFile)
	if err != nil {
		t.Fatalf("Failed to read session file: %v", err)
	}

	content := string(data)
	expectedFields := []string{`"id"`, `"config_name": "classic"`, `"created_at"`, `"game_state"`, `"grid"`, `"seed"`}
	for _, field := range expectedFields {
		if !strings.Contains(content, field) {
			t.Errorf("Session file should contain %s", field)
		}
	}
}
