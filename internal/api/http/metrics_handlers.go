package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// MetricsSummary provides high-level metrics for the settings panel
type MetricsSummary struct {
	Timestamp         time.Time `json:"timestamp"`
	TotalRequests     int64     `json:"total_requests"`
	AverageLatencyMs  float64   `json:"average_latency_ms"`
	ErrorRate         float64   `json:"error_rate"`
	OpenWindows       int64     `json:"open_windows"`
	ActiveConnections int64     `json:"active_connections"`
	UptimeSeconds     float64   `json:"uptime_seconds"`
}

// GetMetricsSummary returns derived request statistics as JSON
func (h *Handlers) GetMetricsSummary(c *gin.Context) {
	if h.metrics == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "metrics disabled"})
		return
	}

	s := h.metrics.Snapshot()
	summary := MetricsSummary{
		Timestamp:         time.Now(),
		TotalRequests:     s.TotalRequests,
		OpenWindows:       s.OpenWindows,
		ActiveConnections: s.ActiveConnections,
		UptimeSeconds:     s.UptimeSeconds,
	}
	if s.RequestCount > 0 {
		summary.AverageLatencyMs = s.TotalDuration / float64(s.RequestCount) * 1000
	}
	if s.TotalRequests > 0 {
		summary.ErrorRate = float64(s.TotalErrors) / float64(s.TotalRequests)
	}
	c.JSON(http.StatusOK, summary)
}
