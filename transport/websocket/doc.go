// Package websocket pushes Same Game state changes to browser clients.
//
// A central Hub owns every connection. Clients join a session by opening
// /ws?session=<id>; from then on they receive a JSON Message whenever that
// session's board changes:
//
//	{"session_id": "ab12", "event": "state_update", "game_state": {...}}
//
// Events other than state_update (game_over, new_record, reset) carry their
// payload in the data field. Incoming client messages are ignored and only
// keep the connection alive.
//
// Usage:
//
//	hub := websocket.NewHub()
//	go hub.Run(ctx)
//
//	hub.BroadcastToSession(sessionID, state)
//
// Concurrency:
//
// Only the Run goroutine touches the client maps. Broadcasts are queued on a
// buffered channel and never block the caller; when the queue is full the
// message is dropped and a warning is logged.
package websocket
