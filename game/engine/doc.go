// Package engine provides the core game logic for Same Game.
//
// The engine package implements the game mechanics including:
//   - A rectangular grid of coloured balls, each cell empty or holding a ball
//   - Group discovery by 4-connected flood fill
//   - Group removal, scoring (group size squared) and compaction
//   - Game-over detection and high score hand-off
//   - Connector hints for renderers
//
// Core Types:
//
// Board owns a GameState and implements every rule. GameConfig describes a
// board size, palette and message set loaded from JSON. HighScoreStore and
// RandSource are injected so boards can be built without real I/O and with
// reproducible layouts.
//
// Usage:
//
//	config := engine.DefaultGameConfig()
//	board, err := engine.NewBoardFromConfig(config, store, engine.NewSeed())
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	result, err := board.RemoveGroup(engine.Position{X: 3, Y: 0})
//	over, err := board.IsGameOver()
//
// Game Rules:
//
// Selecting a ball removes every ball of the same colour connected to it
// through orthogonal neighbours and scores the group size squared. Lone
// balls cannot be removed. Remaining balls fall toward row 0, and columns
// that empty out are closed up toward column 0. The game ends when no two
// adjacent balls share a colour; a final score that matches or beats the
// recorded high score replaces it.
package engine
