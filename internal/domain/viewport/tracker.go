// Package viewport remembers the display area the desktop host last
// reported, for window placement.
package viewport

import (
	"sync"

	"github.com/gmlportal/desktop/backend/internal/shared/types"
)

// Tracker stores the last reported viewport. It is unknown until the first
// report, and the window manager falls back to cascading placement until
// then.
type Tracker struct {
	mu          sync.RWMutex
	width       int
	height      int
	known       bool
	dockVisible bool
}

// NewTracker creates a tracker with no viewport reported
func NewTracker(dockVisible bool) *Tracker {
	return &Tracker{dockVisible: dockVisible}
}

// Report records the host viewport size. Non-positive sizes are ignored
// and reported as false.
func (t *Tracker) Report(width, height int) bool {
	if width <= 0 || height <= 0 {
		return false
	}

	t.mu.Lock()
	t.width, t.height, t.known = width, height, true
	t.mu.Unlock()
	return true
}

// SetDockVisible follows the showDock setting
func (t *Tracker) SetDockVisible(visible bool) {
	t.mu.Lock()
	t.dockVisible = visible
	t.mu.Unlock()
}

// Current implements window.ViewportSource
func (t *Tracker) Current() (types.Viewport, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return types.Viewport{
		Width:       t.width,
		Height:      t.height,
		DockVisible: t.dockVisible,
	}, t.known
}
