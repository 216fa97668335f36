package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/gmlportal/desktop/backend/internal/domain/catalog"
	"github.com/gmlportal/desktop/backend/internal/domain/preferences"
	"github.com/gmlportal/desktop/backend/internal/domain/status"
	"github.com/gmlportal/desktop/backend/internal/domain/terminal"
	"github.com/gmlportal/desktop/backend/internal/domain/vfs"
	"github.com/gmlportal/desktop/backend/internal/domain/viewport"
	"github.com/gmlportal/desktop/backend/internal/domain/window"
	"github.com/gmlportal/desktop/backend/internal/infrastructure/monitoring"
)

// Version is reported by the root endpoint
const Version = "1.0.0"

// Dependencies are the engines the handlers drive
type Dependencies struct {
	Catalog     *catalog.Catalog
	Windows     *window.Manager
	Preferences *preferences.Preferences
	Viewport    *viewport.Tracker
	FS          *vfs.FS
	Terminals   *terminal.Manager
	Monitor     *status.Monitor
	Prober      *status.HTTPProber // optional, exposes breaker state
	Metrics     *monitoring.Metrics
	Logger      *zap.Logger
}

// Handlers contains all HTTP handlers
type Handlers struct {
	catalog   *catalog.Catalog
	windows   *window.Manager
	prefs     *preferences.Preferences
	viewport  *viewport.Tracker
	fs        *vfs.FS
	terminals *terminal.Manager
	monitor   *status.Monitor
	prober    *status.HTTPProber
	metrics   *monitoring.Metrics
	logger    *zap.Logger
	started   time.Time
}

// NewHandlers creates a new handler set
func NewHandlers(deps Dependencies) *Handlers {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handlers{
		catalog:   deps.Catalog,
		windows:   deps.Windows,
		prefs:     deps.Preferences,
		viewport:  deps.Viewport,
		fs:        deps.FS,
		terminals: deps.Terminals,
		monitor:   deps.Monitor,
		prober:    deps.Prober,
		metrics:   deps.Metrics,
		logger:    logger.Named("api"),
		started:   time.Now(),
	}
}

// Root handles the liveness check
func (h *Handlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "online",
		"service": "GML Portal desktop",
		"version": Version,
	})
}

// Health handles the detailed health check
func (h *Handlers) Health(c *gin.Context) {
	dirs, files := h.fs.Counts()
	c.JSON(http.StatusOK, gin.H{
		"status":         "healthy",
		"uptime_seconds": time.Since(h.started).Seconds(),
		"windows":        h.windows.Stats(),
		"catalog":        h.catalog.Summary(),
		"monitor": gin.H{
			"running":   h.monitor.Running(),
			"in_flight": h.monitor.InFlight(),
		},
		"terminal_sessions": h.terminals.Count(),
		"filesystem": gin.H{
			"directories": dirs,
			"files":       files,
		},
	})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

func notFound(c *gin.Context, what string) {
	c.JSON(http.StatusNotFound, gin.H{"error": what + " not found"})
}

// internalError reports an infrastructure failure and attaches it to the
// context so the request logger and tracer see it
func (h *Handlers) internalError(c *gin.Context, err error) {
	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}
