// Package preferences keeps the per-user desktop state that survives a
// restart: pinned and recent apps, the trash, the desktop icon order and
// the desktop settings.
//
// Every list is stored as a JSON array under a "desktop.*" key in a
// storage.Store. Reads degrade to empty lists (and default settings)
// when a value is missing or corrupt, so a damaged store never prevents
// the desktop from starting.
//
// Preferences implements window.LaunchRecorder and window.Exclusions.
package preferences
