package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gmlportal/desktop/backend/internal/domain/preferences"
	"github.com/gmlportal/desktop/backend/internal/domain/window"
	"github.com/gmlportal/desktop/backend/internal/shared/utils"
)

// ListApps lists the catalog with its reachability summary
func (h *Handlers) ListApps(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"apps":    h.catalog.List(),
		"summary": h.catalog.Summary(),
	})
}

// DesktopApps lists the apps shown on the desktop plus the pinned and
// recent shelves
func (h *Handlers) DesktopApps(c *gin.Context) {
	apps := h.catalog.List()
	c.JSON(http.StatusOK, gin.H{
		"apps":    h.prefs.DesktopApps(apps),
		"pinned":  preferences.Resolve(h.prefs.Pinned(), apps),
		"recent":  preferences.Resolve(h.prefs.Recent(), apps),
		"trashed": preferences.Resolve(h.prefs.Trashed(), apps),
	})
}

// OpenApp launches an app: navigation, focus or a new window
func (h *Handlers) OpenApp(c *gin.Context) {
	appID := c.Param("id")
	if err := utils.ValidateID(appID, "app_id", true); err != nil {
		badRequest(c, err)
		return
	}

	result := h.windows.Open(appID)
	c.JSON(http.StatusOK, gin.H{
		"success": result.Kind != window.OpenIgnored,
		"app_id":  appID,
		"result":  result,
	})
}
