package monitoring

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	registry *prometheus.Registry

	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	RequestSize     *prometheus.HistogramVec
	ResponseSize    *prometheus.HistogramVec

	// Window metrics
	WindowsOpen    prometheus.Gauge
	WindowsCreated prometheus.Counter
	WindowEvents   *prometheus.CounterVec
	Navigations    prometheus.Counter

	// Catalog and status metrics
	CatalogApps   prometheus.Gauge
	AppsOnline    prometheus.Gauge
	Probes        *prometheus.CounterVec
	ProbeDuration prometheus.Histogram
	StatusChecks  *prometheus.CounterVec

	// Filesystem and terminal metrics
	FSOperations     *prometheus.CounterVec
	TerminalSessions prometheus.Gauge
	TerminalCommands *prometheus.CounterVec

	// Store metrics
	StoreOps *prometheus.CounterVec

	// WebSocket metrics
	WSConnections prometheus.Gauge
	WSMessages    *prometheus.CounterVec

	startTime time.Time

	// Snapshot for JSON API - track current values
	snapshot MetricsSnapshot

	mu sync.RWMutex
}

// MetricsSnapshot holds current metric values for JSON API
type MetricsSnapshot struct {
	TotalRequests     int64   `json:"total_requests"`
	TotalErrors       int64   `json:"total_errors"`
	OpenWindows       int64   `json:"open_windows"`
	ActiveConnections int64   `json:"active_connections"`
	TotalDuration     float64 `json:"total_duration"`
	RequestCount      int64   `json:"request_count"`
	UptimeSeconds     float64 `json:"uptime_seconds"`
}

// NewMetrics creates a metrics collector with its own registry
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	m := &Metrics{
		registry:  reg,
		startTime: time.Now(),

		// HTTP metrics
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "portal_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "portal_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		RequestSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "portal_http_request_size_bytes",
				Help:    "HTTP request size in bytes",
				Buckets: []float64{100, 1000, 10000, 100000, 1000000},
			},
			[]string{"method", "path"},
		),
		ResponseSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "portal_http_response_size_bytes",
				Help:    "HTTP response size in bytes",
				Buckets: []float64{100, 1000, 10000, 100000, 1000000},
			},
			[]string{"method", "path"},
		),

		// Window metrics
		WindowsOpen: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "portal_windows_open",
				Help: "Number of open windows",
			},
		),
		WindowsCreated: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "portal_windows_created_total",
				Help: "Total number of windows created",
			},
		),
		WindowEvents: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "portal_window_events_total",
				Help: "Total number of window state changes",
			},
			[]string{"type"},
		),
		Navigations: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "portal_navigations_total",
				Help: "Total number of external navigations requested",
			},
		),

		// Catalog and status metrics
		CatalogApps: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "portal_catalog_apps",
				Help: "Number of apps in the catalog",
			},
		),
		AppsOnline: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "portal_apps_online",
				Help: "Number of catalog apps currently reachable",
			},
		),
		Probes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "portal_probes_total",
				Help: "Total number of reachability probes",
			},
			[]string{"result"},
		),
		ProbeDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "portal_probe_duration_seconds",
				Help:    "Reachability probe duration in seconds",
				Buckets: []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
		),
		StatusChecks: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "portal_status_checks_total",
				Help: "Total number of status check rounds",
			},
			[]string{"outcome"},
		),

		// Filesystem and terminal metrics
		FSOperations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "portal_fs_operations_total",
				Help: "Total number of virtual filesystem operations",
			},
			[]string{"op", "result"},
		),
		TerminalSessions: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "portal_terminal_sessions",
				Help: "Number of live terminal sessions",
			},
		),
		TerminalCommands: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "portal_terminal_commands_total",
				Help: "Total number of terminal commands executed",
			},
			[]string{"command", "status"},
		),

		// Store metrics
		StoreOps: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "portal_store_operations_total",
				Help: "Total number of preference store operations",
			},
			[]string{"op", "status"},
		),

		// WebSocket metrics
		WSConnections: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "portal_ws_connections",
				Help: "Number of active WebSocket connections",
			},
		),
		WSMessages: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "portal_ws_messages_total",
				Help: "Total number of WebSocket messages",
			},
			[]string{"direction", "type"},
		),
	}

	factory.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "portal_uptime_seconds",
			Help: "Backend uptime in seconds",
		},
		func() float64 { return time.Since(m.startTime).Seconds() },
	)

	return m
}

// Registry returns the registry the metrics are registered with
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration, reqSize, respSize int64) {
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
	m.RequestSize.WithLabelValues(method, path).Observe(float64(reqSize))
	m.ResponseSize.WithLabelValues(method, path).Observe(float64(respSize))

	// Update snapshot
	m.mu.Lock()
	m.snapshot.TotalRequests++
	m.snapshot.TotalDuration += duration.Seconds()
	m.snapshot.RequestCount++
	if status[0] == '4' || status[0] == '5' {
		m.snapshot.TotalErrors++
	}
	m.mu.Unlock()
}

// SetWindowsOpen sets the number of open windows
func (m *Metrics) SetWindowsOpen(count int) {
	m.WindowsOpen.Set(float64(count))
	m.mu.Lock()
	m.snapshot.OpenWindows = int64(count)
	m.mu.Unlock()
}

// IncWindowsCreated increments the windows created counter
func (m *Metrics) IncWindowsCreated() {
	m.WindowsCreated.Inc()
}

// RecordWindowEvent counts a window state change
func (m *Metrics) RecordWindowEvent(eventType string) {
	m.WindowEvents.WithLabelValues(eventType).Inc()
}

// IncNavigations increments the navigation counter
func (m *Metrics) IncNavigations() {
	m.Navigations.Inc()
}

// SetCatalogApps sets the number of apps in the catalog
func (m *Metrics) SetCatalogApps(count int) {
	m.CatalogApps.Set(float64(count))
}

// SetAppsOnline sets the number of reachable apps
func (m *Metrics) SetAppsOnline(count int) {
	m.AppsOnline.Set(float64(count))
}

// RecordProbe records one reachability probe
func (m *Metrics) RecordProbe(reachable bool, duration time.Duration) {
	result := "unreachable"
	if reachable {
		result = "reachable"
	}
	m.Probes.WithLabelValues(result).Inc()
	m.ProbeDuration.Observe(duration.Seconds())
}

// RecordStatusCheck records a check round outcome (completed or skipped)
func (m *Metrics) RecordStatusCheck(outcome string) {
	m.StatusChecks.WithLabelValues(outcome).Inc()
}

// RecordFSOperation records a virtual filesystem operation
func (m *Metrics) RecordFSOperation(op string, ok bool) {
	m.FSOperations.WithLabelValues(op, resultLabel(ok)).Inc()
}

// SetTerminalSessions sets the number of live terminal sessions
func (m *Metrics) SetTerminalSessions(count int) {
	m.TerminalSessions.Set(float64(count))
}

// RecordTerminalCommand records an executed terminal command
func (m *Metrics) RecordTerminalCommand(command string, exitCode int) {
	status := "ok"
	if exitCode != 0 {
		status = "error"
	}
	m.TerminalCommands.WithLabelValues(command, status).Inc()
}

// RecordStoreOp records a preference store operation
func (m *Metrics) RecordStoreOp(op string, err error) {
	m.StoreOps.WithLabelValues(op, resultLabel(err == nil)).Inc()
}

// RecordWSMessage records a WebSocket message
func (m *Metrics) RecordWSMessage(direction, msgType string) {
	m.WSMessages.WithLabelValues(direction, msgType).Inc()
}

// IncWSConnections increments WebSocket connections
func (m *Metrics) IncWSConnections() {
	m.WSConnections.Inc()
	m.mu.Lock()
	m.snapshot.ActiveConnections++
	m.mu.Unlock()
}

// DecWSConnections decrements WebSocket connections
func (m *Metrics) DecWSConnections() {
	m.WSConnections.Dec()
	m.mu.Lock()
	m.snapshot.ActiveConnections--
	m.mu.Unlock()
}

// Snapshot returns the current values for the JSON API
func (m *Metrics) Snapshot() MetricsSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s := m.snapshot
	s.UptimeSeconds = time.Since(m.startTime).Seconds()
	return s
}

func resultLabel(ok bool) string {
	if ok {
		return "ok"
	}
	return "error"
}
