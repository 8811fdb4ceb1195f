// Package session provides session management for Same Game boards.
//
// The session package implements:
//   - Thread-safe session storage and retrieval
//   - Unique session ID generation
//   - JSON file persistence of board state
//   - Session cleanup and expiration
//
// Core Types:
//
// Manager is the main session manager that handles all session operations.
// Each service.Session owns one engine.Board, dealt from a fresh seed when
// the session is created. FilePersistence writes the board state of every
// session to <dir>/<id>.json and rebuilds the board with engine.RestoreBoard
// when the session is loaded again.
//
// Session Identifiers:
//
// Sessions use 4-character hex IDs for easy reference. IDs are compared
// case-insensitively and never contain path separators.
//
// High Scores:
//
// Boards read and write their high score through the store the manager gets
// from its service.HighScores for the session's config ID, so all sessions
// playing the same configuration share one record.
//
// Usage:
//
//	scores, _ := highscore.NewRegistry("data/highscores")
//	persistence, _ := session.NewFilePersistence("data/sessions", configMgr, scores)
//	manager := session.NewManagerWithPersistence(scores, persistence)
//
//	sess, err := manager.Create("", "classic", config)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	sess, err = manager.Get(sess.ID)
package session
