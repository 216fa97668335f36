/*
Package window implements the desktop window manager.

The Manager owns an insertion-ordered collection of windows, a monotonic
stacking counter and the active (focused) window. Insertion order only
decides fallback focus after a close or minimize; stacking is driven by
ZIndex alone.

Operations given an unknown window or app id are no-ops that report false
(or OpenIgnored), since stale references from the UI are expected.

	m := window.NewManager(catalog, window.DefaultGeometry()).
		WithLaunchRecorder(prefs).
		WithViewport(tracker)

	res := m.Open("terminal")
	m.Maximize(res.Window.ID)

Changes are published to observers registered with Subscribe once the
manager's lock has been released, so observers may call back into it.
*/
package window
