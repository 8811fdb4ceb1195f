// Package api provides the HTTP REST API for Same Game.
//
// Endpoints:
//
// Session Management:
//   - POST /api/sessions - Create session ({"config_name": "small"}, optional)
//   - GET /api/sessions - List sessions (?sort=accessed|created|score&order=asc|desc&limit=N)
//   - GET /api/sessions/{id} - Get session
//   - DELETE /api/sessions/{id} - Delete session
//
// Game Operations:
//   - GET /api/sessions/{id}/state - Current board and score
//   - POST /api/sessions/{id}/select - Remove the group at {"x": 3, "y": 0}
//   - GET /api/sessions/{id}/preview?x=3&y=0 - Group and points without removing
//   - GET /api/sessions/{id}/squares - Joining squares between equal neighbours
//   - GET /api/sessions/{id}/hint - Highest scoring selection
//   - POST /api/sessions/{id}/reset - Deal a fresh board
//   - GET /api/sessions/{id}/history - Paginated history (?page=1&limit=20&order=desc)
//
// Configuration:
//   - GET /api/configs - List configurations
//   - POST /api/configs - Save a configuration (GameConfig plus optional config_id)
//   - GET /api/configs/{name} - Get a configuration
//   - GET /api/palettes - Built-in palettes
//
// High Scores:
//   - GET /api/highscores - Every recorded high score
//   - GET /api/highscores/{config} - High score of one configuration
//
// Other:
//   - GET /api/health
//   - GET /ws?session={id} - WebSocket upgrade for live updates
//
// Errors are returned as JSON with an HTTP status derived from the error:
//
//	{"error": "session ab12: session not found"}
//
// Unknown sessions and configs map to 404, out of bounds positions and
// invalid configs to 400, selections after game over to 409.
package api
