package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gmlportal/desktop/backend/internal/shared/types"
	"github.com/gmlportal/desktop/backend/internal/shared/utils"
)

type createSessionRequest struct {
	WindowID string `json:"window_id"`
}

// CreateSession starts a terminal session, optionally bound to a window
func (h *Handlers) CreateSession(c *gin.Context) {
	var req createSessionRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
	}
	if err := utils.ValidateID(req.WindowID, "window_id", false); err != nil {
		badRequest(c, err)
		return
	}
	c.JSON(http.StatusCreated, h.terminals.Create(req.WindowID))
}

// ListSessions lists live terminal sessions
func (h *Handlers) ListSessions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"sessions": h.terminals.List(),
	})
}

// GetSession returns a session with its command history
func (h *Handlers) GetSession(c *gin.Context) {
	sessionID, ok := sessionParam(c)
	if !ok {
		return
	}
	s, found := h.terminals.Get(sessionID)
	if !found {
		notFound(c, "session")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"session": s.Info(),
		"history": s.History(),
	})
}

// ExecCommand runs one command line in a session
func (h *Handlers) ExecCommand(c *gin.Context) {
	sessionID, ok := sessionParam(c)
	if !ok {
		return
	}
	var req types.ExecRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := utils.ValidateCommand(req.Line); err != nil {
		badRequest(c, err)
		return
	}

	out, found := h.terminals.Exec(sessionID, req.Line)
	if !found {
		notFound(c, "session")
		return
	}
	c.JSON(http.StatusOK, out)
}

// CloseSession ends a terminal session
func (h *Handlers) CloseSession(c *gin.Context) {
	sessionID, ok := sessionParam(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":    h.terminals.Close(sessionID),
		"session_id": sessionID,
	})
}

func sessionParam(c *gin.Context) (string, bool) {
	sessionID := c.Param("id")
	if err := utils.ValidateID(sessionID, "session_id", true); err != nil {
		badRequest(c, err)
		return "", false
	}
	return sessionID, true
}
