// Package main is the entry point for the GML Portal desktop backend.
//
// The server owns the desktop state the browser renders: the app catalog
// and its reachability, the window manager, the launcher preferences, and
// the simulated terminal with its in-memory filesystem.
//
// Configuration:
//   - Environment variables (see internal/infrastructure/config)
//   - An optional .env file; variables already set win
//   - CLI flags, which override both
//
// Usage:
//
//	# Production mode
//	./server --port 8000 --catalog apps.yaml --store sqlite
//
//	# Development mode (colored logs, debug level)
//	./server --dev
//
// Signals:
//   - SIGINT, SIGTERM: Graceful shutdown
package main
