package session

import (
	"testing"
	"time"
)

func TestManagerWithPersistence(t *testing.T) {
	persistence, configManager, scores := newTestPersistence(t)
	manager := NewManagerWithPersistence(scores, persistence)
	gameConfig := configManager.GetDefault()

	t.Run("Create Session Auto-Saves", func(t *testing.T) {
		session, err := manager.Create("auto1", "classic", gameConfig)
		if err != nil {
			t.Fatalf("Failed to create session: %v", err)
		}

		if !persistence.Exists(session.ID) {
			t.Error("Session should be auto-saved on creation")
		}

		loaded, err := persistence.Load(session.ID)
		if err != nil {
			t.Fatalf("Failed to load auto-saved session: %v", err)
		}
		if loaded.ID != session.ID {
			t.Errorf("Expected ID %s, got %s", session.ID, loaded.ID)
		}
	})

	t.Run("Get Session Loads from Persistence", func(t *testing.T) {
		manager2 := NewManagerWithPersistence(scores, persistence)

		session, err := manager2.Get("auto1")
		if err != nil {
			t.Fatalf("Failed to get session from persistence: %v", err)
		}
		if session.ID != "auto1" {
			t.Errorf("Expected ID auto1, got %s", session.ID)
		}

		session2, err := manager2.Get("auto1")
		if err != nil {
			t.Fatalf("Failed to get session from memory: %v", err)
		}
		if session2 != session {
			t.Error("Session should be cached in memory after loading from persistence")
		}
	})

	t.Run("Save Method Persists Changes", func(t *testing.T) {
		session, err := manager.Get("auto1")
		if err != nil {
			t.Fatalf("Failed to get session: %v", err)
		}

		pos, _, ok := session.Board.BestMove()
		if !ok {
			t.Skip("Cannot test persistence without a removable group")
		}
		if _, err := session.Board.RemoveGroup(pos); err != nil {
			t.Fatalf("Failed to remove group: %v", err)
		}

		if err := manager.Save("auto1"); err != nil {
			t.Fatalf("Failed to save session: %v", err)
		}

		manager3 := NewManagerWithPersistence(scores, persistence)
		loaded, err := manager3.Get("auto1")
		if err != nil {
			t.Fatalf("Failed to load session after manual save: %v", err)
		}

		if loaded.Board.Score() == 0 || loaded.Board.Score() != session.Board.Score() {
			t.Errorf("Score should be persisted: expected %d, got %d", session.Board.Score(), loaded.Board.Score())
		}
		if len(loaded.Board.GetMoveHistory()) != 1 {
			t.Error("Move history should be persisted")
		}
	})

	t.Run("Delete Removes from Persistence", func(t *testing.T) {
		session, err := manager.Create("delete_test", "classic", gameConfig)
		if err != nil {
			t.Fatalf("Failed to create session: %v", err)
		}

		if !persistence.Exists(session.ID) {
			t.Error("Session should exist in persistence")
		}

		if err := manager.Delete(session.ID); err != nil {
			t.Fatalf("Failed to delete session: %v", err)
		}

		if persistence.Exists(session.ID) {
			t.Error("Session should be removed from persistence on delete")
		}

		if _, err := manager.Get(session.ID); err == nil {
			t.Error("Should not be able to get deleted session")
		}
	})

	t.Run("Load Persisted Sessions on Startup", func(t *testing.T) {
		sessions := []string{"startup1", "startup2", "startup3"}
		for _, id := range sessions {
			if _, err := manager.Create(id, "classic", gameConfig); err != nil {
				t.Fatalf("Failed to create session %s: %v", id, err)
			}
		}

		manager4 := NewManagerWithPersistence(scores, persistence)
		if err := manager4.LoadPersistedSessions(); err != nil {
			t.Fatalf("Failed to load persisted sessions: %v", err)
		}

		for _, id := range sessions {
			session, err := manager4.Get(id)
			if err != nil {
				t.Fatalf("Failed to get session %s after loading persisted sessions: %v", id, err)
			}
			if session.ID != id {
				t.Errorf("Expected ID %s, got %s", id, session.ID)
			}
		}

		// auto1 plus the three startup sessions
		if manager4.Count() != 4 {
			t.Errorf("Expected 4 sessions, got %d", manager4.Count())
		}
	})

	t.Run("Last Accessed Persists On Save", func(t *testing.T) {
		session, err := manager.Get("startup1")
		if err != nil {
			t.Fatalf("Failed to get session: %v", err)
		}

		originalTime := session.LastAccessedAt
		time.Sleep(10 * time.Millisecond)

		if err := manager.UpdateLastAccessed("startup1"); err != nil {
			t.Fatalf("Failed to update last accessed: %v", err)
		}
		if err := manager.Save("startup1"); err != nil {
			t.Fatalf("Failed to save session: %v", err)
		}

		manager5 := NewManagerWithPersistence(scores, persistence)
		loaded, err := manager5.Get("startup1")
		if err != nil {
			t.Fatalf("Failed to load session: %v", err)
		}

		if !loaded.LastAccessedAt.After(originalTime) {
			t.Error("Last accessed time should be updated and persisted")
		}
	})

	t.Run("Cleanup Keeps Persisted Copy", func(t *testing.T) {
		session, err := manager.Get("startup2")
		if err != nil {
			t.Fatalf("Failed to get session: %v", err)
		}
		session.LastAccessedAt = time.Now().Add(-time.Hour)

		if removed := manager.CleanupExpiredSessions(time.Minute); removed != 1 {
			t.Fatalf("Expected 1 session removed, got %d", removed)
		}

		// evicted from memory, reloaded from disk
		if _, err := manager.Get("startup2"); err != nil {
			t.Errorf("Expected evicted session to reload from persistence: %v", err)
		}
	})

	t.Run("Save All Sessions", func(t *testing.T) {
		if err := manager.SaveAllSessions(); err != nil {
			t.Fatalf("Failed to save all sessions: %v", err)
		}
		ids, err := persistence.ListAll()
		if err != nil {
			t.Fatalf("Failed to list sessions: %v", err)
		}
		if len(ids) != manager.Count() {
			t.Errorf("Expected %d persisted sessions, got %d", manager.Count(), len(ids))
		}
	})
}
