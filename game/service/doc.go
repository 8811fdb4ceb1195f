// Package service provides the business logic layer for Same Game sessions.
//
// The service package implements:
//   - Multi-session game management
//   - Ball selection, score previews and hints
//   - High score lookups per configuration
//   - Move history with pagination
//
// Core Interfaces:
//
// GameService is the main service interface providing high-level game operations.
// SessionManager handles session creation, retrieval, and lifecycle.
// ConfigManager manages game configuration loading and validation.
// HighScores hands out one high score store per configuration.
//
// Architecture:
//
// The service layer sits between the transport layer (HTTP/WebSocket/MCP) and
// the engine. Each session owns one engine.Board; the service serialises all
// access to boards behind a single lock, because a board is not safe for
// concurrent use. Results carry deep copies of the game state so callers can
// encode them after the lock is released.
//
// Usage:
//
//	scores, _ := highscore.NewRegistry("data/highscores")
//	configMgr, _ := config.NewManager("configs")
//	sessionMgr := session.NewManager(scores)
//	gameService := service.NewGameService(sessionMgr, configMgr, scores)
//
//	info, err := gameService.CreateSession(ctx, "small")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	result, err := gameService.Select(ctx, info.ID, 0, 0)
//
// Game over is checked after every selection, so the final score reaches the
// high score store as soon as the last group is removed.
package service
