// Package types provides shared data structures for the portal desktop backend.
//
// Core Types:
//   - AppDescriptor: Catalog entry for a launchable app
//   - Window: Open window state (geometry, stacking, focus)
//   - Frame: Window geometry
//   - Stats: Window manager statistics
//   - ServiceSummary: Catalog reachability counts
//
// Event Types:
//   - Event: Desktop state change pushed to stream subscribers
//
// Example Usage:
//
//	win := &types.Window{
//	    ID:    id.NewWindowID().String(),
//	    AppID: "terminal",
//	    Title: "Terminal",
//	}
package types
