// Package mcp exposes Same Game to AI agents over the Model Context Protocol.
//
// Client is a thin proxy: every tool call is translated into a request to the
// REST API, and the JSON response is rendered as text the agent can read.
//
// MCP Tools:
//   - create_session, list_sessions: session management
//   - game_state: board rendering with a colour legend, score and high score
//   - select_ball: remove the group at (x, y)
//   - preview_score: group and points for (x, y) without changing the board
//   - hint: the highest scoring selection
//   - reset_game: deal a fresh board
//   - move_history: paginated selection history
//   - list_configs, game_instructions
//
// Boards are printed top row first, so row 0 (the edge balls fall toward) is
// the last line. Each palette colour is a letter and empty cells are dots.
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	server.ServeStdio(client.GetMCPServer())
package mcp
