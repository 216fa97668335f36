package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gmlportal/desktop/backend/internal/shared/types"
	"github.com/gmlportal/desktop/backend/internal/shared/utils"
)

// ListWindows lists windows in insertion order with manager stats
func (h *Handlers) ListWindows(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"windows": h.windows.List(),
		"stats":   h.windows.Stats(),
	})
}

// GetWindow returns one window
func (h *Handlers) GetWindow(c *gin.Context) {
	windowID, ok := windowParam(c)
	if !ok {
		return
	}
	win, found := h.windows.Get(windowID)
	if !found {
		notFound(c, "window")
		return
	}
	c.JSON(http.StatusOK, win)
}

// CloseWindow closes a window
func (h *Handlers) CloseWindow(c *gin.Context) {
	h.windowOp(c, h.windows.Close)
}

// MinimizeWindow minimizes a window
func (h *Handlers) MinimizeWindow(c *gin.Context) {
	h.windowOp(c, h.windows.Minimize)
}

// MaximizeWindow toggles a window's maximized state
func (h *Handlers) MaximizeWindow(c *gin.Context) {
	h.windowOp(c, h.windows.Maximize)
}

// FocusWindow brings a window to the front
func (h *Handlers) FocusWindow(c *gin.Context) {
	h.windowOp(c, h.windows.BringToFront)
}

// MoveWindow updates a window's position
func (h *Handlers) MoveWindow(c *gin.Context) {
	windowID, ok := windowParam(c)
	if !ok {
		return
	}
	var req types.PositionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	h.respondWindow(c, windowID, h.windows.UpdatePosition(windowID, *req.X, *req.Y))
}

// ResizeWindow updates a window's size
func (h *Handlers) ResizeWindow(c *gin.Context) {
	windowID, ok := windowParam(c)
	if !ok {
		return
	}
	var req types.SizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	h.respondWindow(c, windowID, h.windows.UpdateSize(windowID, *req.Width, *req.Height))
}

// ReportViewport records the host viewport used for window placement
func (h *Handlers) ReportViewport(c *gin.Context) {
	var req types.ViewportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if !h.viewport.Report(req.Width, req.Height) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "viewport dimensions must be positive"})
		return
	}
	vp, _ := h.viewport.Current()
	c.JSON(http.StatusOK, vp)
}

func (h *Handlers) windowOp(c *gin.Context, op func(string) bool) {
	windowID, ok := windowParam(c)
	if !ok {
		return
	}
	h.respondWindow(c, windowID, op(windowID))
}

// respondWindow reports an operation outcome. Unknown windows are not an
// error: success is false and the window is omitted.
func (h *Handlers) respondWindow(c *gin.Context, windowID string, success bool) {
	resp := gin.H{
		"success":   success,
		"window_id": windowID,
	}
	if win, found := h.windows.Get(windowID); found {
		resp["window"] = win
	}
	c.JSON(http.StatusOK, resp)
}

func windowParam(c *gin.Context) (string, bool) {
	windowID := c.Param("id")
	if err := utils.ValidateID(windowID, "window_id", true); err != nil {
		badRequest(c, err)
		return "", false
	}
	return windowID, true
}
