package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetStatus reports catalog reachability and the monitor state
func (h *Handlers) GetStatus(c *gin.Context) {
	apps := h.catalog.List()
	statuses := make([]gin.H, 0, len(apps))
	for _, app := range apps {
		statuses = append(statuses, gin.H{
			"id":         app.ID,
			"status":     app.Status,
			"updated_at": app.UpdatedAt,
		})
	}

	monitor := gin.H{
		"running":     h.monitor.Running(),
		"in_flight":   h.monitor.InFlight(),
		"interval_ms": h.monitor.Interval().Milliseconds(),
	}
	if last, ok := h.monitor.LastCheckAt(); ok {
		monitor["last_check_at"] = last
	}

	resp := gin.H{
		"summary": h.catalog.Summary(),
		"apps":    statuses,
		"monitor": monitor,
	}
	if h.prober != nil {
		resp["breakers"] = h.prober.Breakers().States()
	}
	c.JSON(http.StatusOK, resp)
}

// CheckStatus runs a check round now. A round already in progress is
// reported with 409.
func (h *Handlers) CheckStatus(c *gin.Context) {
	result, ran := h.monitor.CheckNow(c.Request.Context())
	if !ran {
		c.JSON(http.StatusConflict, gin.H{"error": "status check already in progress"})
		return
	}
	c.JSON(http.StatusOK, result)
}
