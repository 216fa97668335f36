package types

// EventType identifies a desktop state change
type EventType string

const (
	EventWindowOpened    EventType = "window.opened"
	EventWindowClosed    EventType = "window.closed"
	EventWindowFocused   EventType = "window.focused"
	EventWindowMinimized EventType = "window.minimized"
	EventWindowMaximized EventType = "window.maximized"
	EventWindowRestored  EventType = "window.restored"
	EventWindowMoved     EventType = "window.moved"
	EventWindowResized   EventType = "window.resized"
	EventNavigate        EventType = "navigate"
	EventStatusChecked   EventType = "status.checked"
)

// Event is a desktop state change pushed to subscribers
type Event struct {
	Type     EventType              `json:"type"`
	WindowID string                 `json:"window_id,omitempty"`
	AppID    string                 `json:"app_id,omitempty"`
	URL      string                 `json:"url,omitempty"`
	Data     map[string]interface{} `json:"data,omitempty"`
}

// PositionRequest moves a window
type PositionRequest struct {
	X *int `json:"x" binding:"required"`
	Y *int `json:"y" binding:"required"`
}

// SizeRequest resizes a window
type SizeRequest struct {
	Width  *int `json:"width" binding:"required"`
	Height *int `json:"height" binding:"required"`
}

// ViewportRequest reports the host viewport
type ViewportRequest struct {
	Width  int `json:"width" binding:"required"`
	Height int `json:"height" binding:"required"`
}

// FileRequest writes a file in the virtual filesystem
type FileRequest struct {
	Path    string `json:"path" binding:"required"`
	Content string `json:"content"`
	Cwd     string `json:"cwd,omitempty"`
}

// PathRequest targets a virtual filesystem path
type PathRequest struct {
	Path string `json:"path" binding:"required"`
	Cwd  string `json:"cwd,omitempty"`
}

// ExecRequest runs one terminal command line
type ExecRequest struct {
	Line string `json:"line"`
}

// OrderRequest sets the desktop app order
type OrderRequest struct {
	Order []string `json:"order" binding:"required"`
}
