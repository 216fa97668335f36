package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gmlportal/desktop/backend/internal/domain/preferences"
	"github.com/gmlportal/desktop/backend/internal/shared/types"
	"github.com/gmlportal/desktop/backend/internal/shared/utils"
)

// GetPreferences returns the persisted desktop lists
func (h *Handlers) GetPreferences(c *gin.Context) {
	c.JSON(http.StatusOK, h.prefs.Snapshot())
}

// TogglePinned pins or unpins an app
func (h *Handlers) TogglePinned(c *gin.Context) {
	appID, ok := h.appParam(c)
	if !ok {
		return
	}
	pinned, err := h.prefs.TogglePinned(c.Request.Context(), appID)
	if err != nil {
		h.internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"app_id": appID,
		"pinned": pinned,
	})
}

// MoveToTrash hides an app from the desktop
func (h *Handlers) MoveToTrash(c *gin.Context) {
	h.listOp(c, h.prefs.MoveToTrash)
}

// RestoreFromTrash puts a trashed app back on the desktop
func (h *Handlers) RestoreFromTrash(c *gin.Context) {
	h.listOp(c, h.prefs.RestoreFromTrash)
}

// RemoveFromTrash moves a trashed app to the removed list
func (h *Handlers) RemoveFromTrash(c *gin.Context) {
	h.listOp(c, h.prefs.RemoveFromTrash)
}

// RestoreRemoved puts a removed app back on the desktop
func (h *Handlers) RestoreRemoved(c *gin.Context) {
	h.listOp(c, h.prefs.RestoreRemoved)
}

// SetOrder stores the desktop icon order
func (h *Handlers) SetOrder(c *gin.Context) {
	var req types.OrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := utils.ValidateIDs(req.Order, "order"); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.prefs.SetOrder(c.Request.Context(), req.Order); err != nil {
		h.internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.prefs.Snapshot())
}

// GetSettings returns the desktop settings
func (h *Handlers) GetSettings(c *gin.Context) {
	c.JSON(http.StatusOK, h.prefs.Settings())
}

// UpdateSettings applies a partial settings update
func (h *Handlers) UpdateSettings(c *gin.Context) {
	var patch preferences.SettingsPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, err)
		return
	}
	settings, err := h.prefs.UpdateSettings(c.Request.Context(), patch)
	switch {
	case errors.Is(err, preferences.ErrInvalidSetting):
		badRequest(c, err)
	case err != nil:
		h.internalError(c, err)
	default:
		c.JSON(http.StatusOK, settings)
	}
}

// ResetSettings restores the factory settings
func (h *Handlers) ResetSettings(c *gin.Context) {
	settings, err := h.prefs.ResetSettings(c.Request.Context())
	if err != nil {
		h.internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, settings)
}

func (h *Handlers) listOp(c *gin.Context, op func(context.Context, string) error) {
	appID, ok := h.appParam(c)
	if !ok {
		return
	}
	if err := op(c.Request.Context(), appID); err != nil {
		h.internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.prefs.Snapshot())
}

// appParam reads and checks the :id parameter against the catalog
func (h *Handlers) appParam(c *gin.Context) (string, bool) {
	appID := c.Param("id")
	if err := utils.ValidateID(appID, "app_id", true); err != nil {
		badRequest(c, err)
		return "", false
	}
	if !h.catalog.Has(appID) {
		notFound(c, "app")
		return "", false
	}
	return appID, true
}
