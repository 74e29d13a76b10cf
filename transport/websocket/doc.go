// Package websocket pushes world-mutation events to connected observers.
//
// The websocket package implements:
//   - Real-time mutation event streaming
//   - Connection lifecycle management with ping/pong keepalive
//   - Non-blocking event delivery (slow observers are dropped)
//
// Architecture:
//
// The package uses a hub-and-spoke model where a central Hub manages all
// WebSocket connections. Each observer connection is handled by a dedicated
// goroutine that manages reading, writing, and cleanup. The Hub plugs into
// the dispatcher as its event sink: every applied mutation is fanned out to
// all observers.
//
// Message Protocol:
//
// Messages are JSON-encoded with the following structure:
//
//	{"event": "mutation", "op": "place_block", "data": {...}}
//
// where data carries the operation's result payload. Observers do not send
// messages; the read side only services keepalive traffic.
//
// Usage:
//
//	hub := websocket.NewHub()
//	go hub.Run()
//	dispatcher.SetEventSink(hub)
//
//	http.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
//		hub.ServeWS(w, r)
//	})
//
// Concurrency:
//
// The hub and client handlers are designed for concurrent operation. Event
// delivery never blocks the dispatch path: a full hub queue drops the event,
// and a stuck observer is disconnected rather than waited on.
package websocket
