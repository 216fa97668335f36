package types

// AppStatus represents the reachability status of a catalog app
type AppStatus string

const (
	StatusOnline  AppStatus = "online"
	StatusOffline AppStatus = "offline"
	StatusLocal   AppStatus = "local"
)

// Valid reports whether s is a known status
func (s AppStatus) Valid() bool {
	switch s {
	case StatusOnline, StatusOffline, StatusLocal:
		return true
	}
	return false
}

// IsLocalApp reports whether id names an app built into the desktop. Local
// apps always open as windows and are never probed.
func IsLocalApp(id string) bool {
	return id == "terminal" || id == "settings"
}

// AppDescriptor describes a launchable app in the catalog.
// Details is an opaque payload passed through to windows unmodified.
type AppDescriptor struct {
	ID          string                 `json:"id" yaml:"id" toml:"id"`
	Name        string                 `json:"name" yaml:"name" toml:"name"`
	Icon        string                 `json:"icon" yaml:"icon" toml:"icon"`
	Color       string                 `json:"color,omitempty" yaml:"color" toml:"color"`
	URL         string                 `json:"url,omitempty" yaml:"url" toml:"url"`
	Domain      string                 `json:"domain,omitempty" yaml:"domain" toml:"domain"`
	Status      AppStatus              `json:"status" yaml:"status" toml:"status"`
	UpdatedAt   string                 `json:"updated_at,omitempty" yaml:"updated_at" toml:"updated_at"`
	Description string                 `json:"description,omitempty" yaml:"description" toml:"description"`
	Details     map[string]interface{} `json:"details,omitempty" yaml:"details" toml:"details"`
}

// HasURL reports whether the app is an external navigation target
func (a AppDescriptor) HasURL() bool {
	return a.URL != ""
}

// Clone returns a deep-enough copy: the details map is copied one level.
func (a AppDescriptor) Clone() AppDescriptor {
	a.Details = cloneDetails(a.Details)
	return a
}

// Frame is a window's geometry
type Frame struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Viewport is the host display area windows are placed in
type Viewport struct {
	Width       int  `json:"width"`
	Height      int  `json:"height"`
	DockVisible bool `json:"dock_visible"`
}

// Window represents an open window of a catalog app
type Window struct {
	ID          string                 `json:"id"`
	AppID       string                 `json:"app_id"`
	Title       string                 `json:"title"`
	Icon        string                 `json:"icon"`
	URL         string                 `json:"url,omitempty"`
	Description string                 `json:"description,omitempty"`
	Details     map[string]interface{} `json:"details,omitempty"`

	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`

	// Geometry saved when maximizing, restored on un-maximize
	PrevX      int  `json:"prev_x"`
	PrevY      int  `json:"prev_y"`
	PrevWidth  int  `json:"prev_width"`
	PrevHeight int  `json:"prev_height"`
	HasPrev    bool `json:"has_prev"`

	ZIndex    int  `json:"z_index"`
	Minimized bool `json:"minimized"`
	Maximized bool `json:"maximized"`
	Focused   bool `json:"focused"`
}

// Frame returns the current geometry
func (w *Window) Frame() Frame {
	return Frame{X: w.X, Y: w.Y, Width: w.Width, Height: w.Height}
}

// SetFrame replaces the current geometry
func (w *Window) SetFrame(f Frame) {
	w.X, w.Y, w.Width, w.Height = f.X, f.Y, f.Width, f.Height
}

// Clone returns a copy safe to hand out of the window manager
func (w *Window) Clone() *Window {
	c := *w
	c.Details = cloneDetails(w.Details)
	return &c
}

// Stats contains window manager statistics
type Stats struct {
	TotalWindows     int     `json:"total_windows"`
	OpenWindows      int     `json:"open_windows"`
	MinimizedWindows int     `json:"minimized_windows"`
	MaximizedWindows int     `json:"maximized_windows"`
	ActiveWindowID   *string `json:"active_window_id,omitempty"`
	TopZIndex        int     `json:"top_z_index"`
}

// ServiceSummary counts catalog apps by reachability
type ServiceSummary struct {
	Online  int `json:"online"`
	Offline int `json:"offline"`
	Total   int `json:"total"`
}

func cloneDetails(src map[string]interface{}) map[string]interface{} {
	if src == nil {
		return nil
	}
	dst := make(map[string]interface{}, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
