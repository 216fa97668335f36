package window

import (
	"slices"
	"sync"

	"go.uber.org/zap"

	"github.com/gmlportal/desktop/backend/internal/infrastructure/monitoring"
	"github.com/gmlportal/desktop/backend/internal/shared/id"
	"github.com/gmlportal/desktop/backend/internal/shared/types"
)

// BaseZIndex is the stacking counter's starting value
const BaseZIndex = 100

// Catalog resolves app descriptors by id
type Catalog interface {
	Get(id string) (types.AppDescriptor, bool)
}

// LaunchRecorder is told about every window open or navigation
type LaunchRecorder interface {
	RecordLaunch(appID string)
}

// Exclusions reports apps that may not be opened (trashed or removed)
type Exclusions interface {
	IsExcluded(appID string) bool
}

// Navigator asks the host to open an external URL
type Navigator interface {
	Navigate(url string)
}

// ViewportSource reports the host viewport, or false when none is known
type ViewportSource interface {
	Current() (types.Viewport, bool)
}

// Observer receives state changes after they are applied
type Observer func(types.Event)

// OpenKind describes what Open did
type OpenKind string

const (
	OpenIgnored   OpenKind = "ignored"
	OpenNavigated OpenKind = "navigated"
	OpenFocused   OpenKind = "focused"
	OpenCreated   OpenKind = "created"
)

// OpenResult is the outcome of Open
type OpenResult struct {
	Kind   OpenKind      `json:"kind"`
	URL    string        `json:"url,omitempty"`
	Window *types.Window `json:"window,omitempty"`
}

// Manager owns the window collection, the stacking counter and focus.
// All operations are serialized by mu; observers run after it is released.
type Manager struct {
	mu       sync.Mutex
	windows  []*types.Window // Protected by mu, insertion order
	activeID string          // Protected by mu
	zCounter int             // Protected by mu

	geometry   GeometryConfig
	catalog    Catalog
	launches   LaunchRecorder
	exclusions Exclusions
	navigator  Navigator
	viewport   ViewportSource
	metrics    *monitoring.Metrics
	logger     *zap.Logger

	obsMu     sync.RWMutex
	observers map[uint64]Observer // Protected by obsMu
	nextObs   uint64              // Protected by obsMu
}

// NewManager creates a window manager over a catalog
func NewManager(catalog Catalog, geometry GeometryConfig) *Manager {
	return &Manager{
		windows:   make([]*types.Window, 0),
		zCounter:  BaseZIndex,
		geometry:  geometry,
		catalog:   catalog,
		logger:    zap.NewNop(),
		observers: make(map[uint64]Observer),
	}
}

// WithLaunchRecorder sets the launch history hook
func (m *Manager) WithLaunchRecorder(r LaunchRecorder) *Manager {
	m.launches = r
	return m
}

// WithExclusions sets the exclusion set consulted by Open
func (m *Manager) WithExclusions(e Exclusions) *Manager {
	m.exclusions = e
	return m
}

// WithNavigator sets the host navigation hook
func (m *Manager) WithNavigator(n Navigator) *Manager {
	m.navigator = n
	return m
}

// WithViewport sets the viewport query
func (m *Manager) WithViewport(v ViewportSource) *Manager {
	m.viewport = v
	return m
}

// WithMetrics adds metrics tracking to the manager
func (m *Manager) WithMetrics(metrics *monitoring.Metrics) *Manager {
	m.metrics = metrics
	return m
}

// WithLogger sets the logger
func (m *Manager) WithLogger(logger *zap.Logger) *Manager {
	if logger != nil {
		m.logger = logger.Named("window")
	}
	return m
}

// Subscribe registers an observer and returns a function removing it
func (m *Manager) Subscribe(o Observer) func() {
	m.obsMu.Lock()
	key := m.nextObs
	m.nextObs++
	m.observers[key] = o
	m.obsMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			m.obsMu.Lock()
			delete(m.observers, key)
			m.obsMu.Unlock()
		})
	}
}

// Open launches an app: navigates for external apps, focuses an existing
// visible window, or creates a new one.
func (m *Manager) Open(appID string) OpenResult {
	app, ok := m.catalog.Get(appID)
	if !ok {
		m.logger.Debug("open ignored, unknown app", zap.String("app_id", appID))
		return OpenResult{Kind: OpenIgnored}
	}
	if m.exclusions != nil && m.exclusions.IsExcluded(appID) {
		m.logger.Debug("open ignored, app excluded", zap.String("app_id", appID))
		return OpenResult{Kind: OpenIgnored}
	}

	if app.HasURL() && !types.IsLocalApp(app.ID) {
		if m.navigator != nil {
			m.navigator.Navigate(app.URL)
		}
		m.recordLaunch(appID)
		if m.metrics != nil {
			m.metrics.IncNavigations()
		}
		m.emit([]types.Event{{Type: types.EventNavigate, AppID: appID, URL: app.URL}})
		return OpenResult{Kind: OpenNavigated, URL: app.URL}
	}

	vp, known := types.Viewport{}, false
	if m.viewport != nil {
		vp, known = m.viewport.Current()
	}

	m.mu.Lock()
	if existing := m.findVisibleByApp(appID); existing != nil {
		events := m.bringToFront(existing)
		result := OpenResult{Kind: OpenFocused, Window: existing.Clone()}
		m.mu.Unlock()

		m.recordLaunch(appID)
		m.emit(events)
		return result
	}

	win := &types.Window{
		ID:          id.NewWindowID().String(),
		AppID:       app.ID,
		Title:       app.Name,
		Icon:        app.Icon,
		URL:         app.URL,
		Description: app.Description,
		Details:     app.Clone().Details,
		Focused:     true,
	}
	win.SetFrame(m.geometry.InitialFrame(app.ID, vp, known, len(m.windows)))
	m.zCounter++
	win.ZIndex = m.zCounter

	for _, w := range m.windows {
		w.Focused = false
	}
	m.windows = append(m.windows, win)
	m.activeID = win.ID
	open := len(m.windows)
	result := OpenResult{Kind: OpenCreated, Window: win.Clone()}
	m.mu.Unlock()

	m.recordLaunch(appID)
	if m.metrics != nil {
		m.metrics.IncWindowsCreated()
		m.metrics.SetWindowsOpen(open)
	}
	m.logger.Info("window opened",
		zap.String("window_id", win.ID),
		zap.String("app_id", appID),
		zap.Int("z_index", result.Window.ZIndex))
	m.emit([]types.Event{{Type: types.EventWindowOpened, WindowID: win.ID, AppID: appID}})
	return result
}

// Close removes a window. When it was active, focus falls to the last
// non-minimized window in insertion order.
func (m *Manager) Close(windowID string) bool {
	m.mu.Lock()
	index := m.indexOf(windowID)
	if index < 0 {
		m.mu.Unlock()
		return false
	}

	win := m.windows[index]
	m.windows = slices.Delete(m.windows, index, index+1)
	events := []types.Event{{Type: types.EventWindowClosed, WindowID: win.ID, AppID: win.AppID}}
	if m.activeID == windowID {
		events = append(events, m.refocusFallback()...)
	}
	open := len(m.windows)
	m.mu.Unlock()

	if m.metrics != nil {
		m.metrics.SetWindowsOpen(open)
	}
	m.emit(events)
	return true
}

// Minimize hides a window and applies the fallback focus rule
func (m *Manager) Minimize(windowID string) bool {
	m.mu.Lock()
	win := m.find(windowID)
	if win == nil {
		m.mu.Unlock()
		return false
	}

	win.Minimized = true
	win.Focused = false
	events := []types.Event{{Type: types.EventWindowMinimized, WindowID: win.ID, AppID: win.AppID}}
	events = append(events, m.refocusFallback()...)
	m.mu.Unlock()

	m.emit(events)
	return true
}

// Maximize toggles between the full viewport and the saved geometry
func (m *Manager) Maximize(windowID string) bool {
	vp, known := types.Viewport{}, false
	if m.viewport != nil {
		vp, known = m.viewport.Current()
	}

	m.mu.Lock()
	win := m.find(windowID)
	if win == nil {
		m.mu.Unlock()
		return false
	}

	var event types.Event
	if win.Maximized {
		restore := m.geometry.RestoreFrame()
		if win.HasPrev {
			restore = types.Frame{X: win.PrevX, Y: win.PrevY, Width: win.PrevWidth, Height: win.PrevHeight}
		}
		win.Maximized = false
		win.SetFrame(restore)
		event = types.Event{Type: types.EventWindowRestored, WindowID: win.ID, AppID: win.AppID}
	} else {
		win.PrevX, win.PrevY, win.PrevWidth, win.PrevHeight = win.X, win.Y, win.Width, win.Height
		win.HasPrev = true
		win.Maximized = true
		win.X, win.Y = 0, 0
		if known && vp.Width > 0 && vp.Height > 0 {
			win.Width, win.Height = vp.Width, vp.Height
		}
		event = types.Event{Type: types.EventWindowMaximized, WindowID: win.ID, AppID: win.AppID}
	}
	m.mu.Unlock()

	m.emit([]types.Event{event})
	return true
}

// BringToFront focuses a window, restoring it when minimized
func (m *Manager) BringToFront(windowID string) bool {
	m.mu.Lock()
	win := m.find(windowID)
	if win == nil {
		m.mu.Unlock()
		return false
	}
	events := m.bringToFront(win)
	m.mu.Unlock()

	m.emit(events)
	return true
}

// UpdatePosition moves a window. Maximized windows do not move.
func (m *Manager) UpdatePosition(windowID string, x, y int) bool {
	m.mu.Lock()
	win := m.find(windowID)
	if win == nil || win.Maximized {
		m.mu.Unlock()
		return false
	}
	win.X, win.Y = x, y
	appID := win.AppID
	m.mu.Unlock()

	m.emit([]types.Event{{
		Type:     types.EventWindowMoved,
		WindowID: windowID,
		AppID:    appID,
		Data:     map[string]interface{}{"x": x, "y": y},
	}})
	return true
}

// UpdateSize resizes a window. Maximized windows do not resize.
func (m *Manager) UpdateSize(windowID string, width, height int) bool {
	m.mu.Lock()
	win := m.find(windowID)
	if win == nil || win.Maximized {
		m.mu.Unlock()
		return false
	}
	win.Width, win.Height = width, height
	appID := win.AppID
	m.mu.Unlock()

	m.emit([]types.Event{{
		Type:     types.EventWindowResized,
		WindowID: windowID,
		AppID:    appID,
		Data:     map[string]interface{}{"width": width, "height": height},
	}})
	return true
}

// Get retrieves a copy of a window by ID
func (m *Manager) Get(windowID string) (*types.Window, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	win := m.find(windowID)
	if win == nil {
		return nil, false
	}
	return win.Clone(), true
}

// List returns copies of all windows in insertion order
func (m *Manager) List() []*types.Window {
	return m.filter(func(*types.Window) bool { return true })
}

// OpenWindows returns the non-minimized windows
func (m *Manager) OpenWindows() []*types.Window {
	return m.filter(func(w *types.Window) bool { return !w.Minimized })
}

// MinimizedWindows returns the minimized windows
func (m *Manager) MinimizedWindows() []*types.Window {
	return m.filter(func(w *types.Window) bool { return w.Minimized })
}

// Active returns the active window, if any
func (m *Manager) Active() (*types.Window, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.activeID == "" {
		return nil, false
	}
	win := m.find(m.activeID)
	if win == nil {
		return nil, false
	}
	return win.Clone(), true
}

// Stats returns manager statistics
func (m *Manager) Stats() types.Stats {
	m.mu.Lock()
	defer m.mu.Unlock()

	stats := types.Stats{
		TotalWindows: len(m.windows),
		TopZIndex:    m.zCounter,
	}
	for _, w := range m.windows {
		if w.Minimized {
			stats.MinimizedWindows++
		} else {
			stats.OpenWindows++
		}
		if w.Maximized {
			stats.MaximizedWindows++
		}
	}
	if m.activeID != "" {
		active := m.activeID
		stats.ActiveWindowID = &active
	}
	return stats
}

// bringToFront must be called with mu held
func (m *Manager) bringToFront(win *types.Window) []types.Event {
	for _, w := range m.windows {
		w.Focused = false
	}
	m.zCounter++
	win.ZIndex = m.zCounter
	win.Focused = true
	win.Minimized = false
	m.activeID = win.ID

	return []types.Event{{
		Type:     types.EventWindowFocused,
		WindowID: win.ID,
		AppID:    win.AppID,
		Data:     map[string]interface{}{"z_index": win.ZIndex},
	}}
}

// refocusFallback focuses the last non-minimized window in insertion
// order, or clears focus. Must be called with mu held.
func (m *Manager) refocusFallback() []types.Event {
	for _, w := range m.windows {
		w.Focused = false
	}
	for i := len(m.windows) - 1; i >= 0; i-- {
		w := m.windows[i]
		if w.Minimized {
			continue
		}
		w.Focused = true
		m.activeID = w.ID
		return []types.Event{{Type: types.EventWindowFocused, WindowID: w.ID, AppID: w.AppID}}
	}
	m.activeID = ""
	return nil
}

func (m *Manager) find(windowID string) *types.Window {
	if i := m.indexOf(windowID); i >= 0 {
		return m.windows[i]
	}
	return nil
}

func (m *Manager) indexOf(windowID string) int {
	return slices.IndexFunc(m.windows, func(w *types.Window) bool { return w.ID == windowID })
}

func (m *Manager) findVisibleByApp(appID string) *types.Window {
	for _, w := range m.windows {
		if w.AppID == appID && !w.Minimized {
			return w
		}
	}
	return nil
}

func (m *Manager) filter(keep func(*types.Window) bool) []*types.Window {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*types.Window, 0, len(m.windows))
	for _, w := range m.windows {
		if keep(w) {
			out = append(out, w.Clone())
		}
	}
	return out
}

func (m *Manager) recordLaunch(appID string) {
	if m.launches != nil {
		m.launches.RecordLaunch(appID)
	}
}

// emit delivers events to observers. Called without mu held.
func (m *Manager) emit(events []types.Event) {
	if len(events) == 0 {
		return
	}

	m.obsMu.RLock()
	observers := make([]Observer, 0, len(m.observers))
	for _, o := range m.observers {
		observers = append(observers, o)
	}
	m.obsMu.RUnlock()

	for _, e := range events {
		if m.metrics != nil {
			m.metrics.RecordWindowEvent(string(e.Type))
		}
		for _, o := range observers {
			o(e)
		}
	}
}
