// Package server assembles the desktop backend: it opens the preference
// store, loads the catalog, builds the domain engines, wires their events
// to the WebSocket hub, and serves the REST API with gin.
package server
