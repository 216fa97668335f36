// Package ws streams desktop events to browser clients over WebSocket.
//
// The Hub subscribes to nothing itself: the server wires window manager and
// status monitor observers to Hub.Publish. Every event is sent as
//
//	{"type":"event","event":{"type":"window.opened","window_id":"win_...","app_id":"terminal"},"timestamp":1700000000}
//
// Clients may send {"type":"ping"} and receive {"type":"pong"}. Protocol
// level pings keep idle connections alive.
package ws
