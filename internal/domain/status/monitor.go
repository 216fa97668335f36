package status

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/gmlportal/desktop/backend/internal/infrastructure/monitoring"
	"github.com/gmlportal/desktop/backend/internal/shared/types"
)

// DefaultInterval is the check interval when none is configured
const DefaultInterval = 45 * time.Second

// maxConcurrentProbes bounds the probes of one check round
const maxConcurrentProbes = 8

// Target is the catalog whose statuses the monitor maintains
type Target interface {
	List() []types.AppDescriptor
	SetStatus(id string, status types.AppStatus, updatedAt string) bool
	Summary() types.ServiceSummary
}

// Observer receives a status.checked event after every completed round
type Observer func(types.Event)

// Result describes one completed check round
type Result struct {
	Probed    int                  `json:"probed"`
	Online    int                  `json:"online"`
	Offline   int                  `json:"offline"`
	Summary   types.ServiceSummary `json:"summary"`
	CheckedAt time.Time            `json:"checked_at"`
}

// Monitor periodically probes every catalog app that has a URL and
// records it online or offline. Built-in apps are always local.
type Monitor struct {
	target Target
	prober Prober

	mu       sync.Mutex
	interval time.Duration // Protected by mu
	cancel   context.CancelFunc
	done     chan struct{}

	inFlight  atomic.Bool
	lastCheck atomic.Int64 // unix millis, 0 = never

	observers []Observer
	now       func() time.Time
	metrics   *monitoring.Metrics
	logger    *zap.Logger
}

// NewMonitor creates a stopped monitor
func NewMonitor(target Target, prober Prober) *Monitor {
	return &Monitor{
		target:   target,
		prober:   prober,
		interval: DefaultInterval,
		now:      time.Now,
		logger:   zap.NewNop(),
	}
}

// WithMetrics records check rounds
func (m *Monitor) WithMetrics(metrics *monitoring.Metrics) *Monitor {
	m.metrics = metrics
	return m
}

// WithLogger sets the logger
func (m *Monitor) WithLogger(logger *zap.Logger) *Monitor {
	if logger != nil {
		m.logger = logger.Named("status")
	}
	return m
}

// WithClock overrides the clock used for timestamps
func (m *Monitor) WithClock(now func() time.Time) *Monitor {
	m.now = now
	return m
}

// Subscribe registers an observer. Observers must be registered before
// the monitor is started.
func (m *Monitor) Subscribe(o Observer) {
	m.observers = append(m.observers, o)
}

// Running reports whether the periodic loop is active
func (m *Monitor) Running() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cancel != nil
}

// Interval returns the configured check interval
func (m *Monitor) Interval() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.interval
}

// InFlight reports whether a check round is running
func (m *Monitor) InFlight() bool {
	return m.inFlight.Load()
}

// LastCheckAt returns when the last round completed
func (m *Monitor) LastCheckAt() (time.Time, bool) {
	ms := m.lastCheck.Load()
	if ms == 0 {
		return time.Time{}, false
	}
	return time.UnixMilli(ms), true
}

// Start runs a check immediately and then every interval until Stop.
// A non-positive interval keeps the current one. Starting a running
// monitor does nothing and returns false.
func (m *Monitor) Start(interval time.Duration) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cancel != nil {
		return false
	}
	if interval > 0 {
		m.interval = interval
	}

	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.done = make(chan struct{})
	go m.loop(ctx, m.interval, m.done)

	m.logger.Info("status monitor started", zap.Duration("interval", m.interval))
	return true
}

// Stop halts the loop and waits for it to exit, cancelling any round in
// progress. Stopping a stopped monitor does nothing and returns false.
func (m *Monitor) Stop() bool {
	m.mu.Lock()
	cancel, done := m.cancel, m.done
	m.cancel, m.done = nil, nil
	m.mu.Unlock()

	if cancel == nil {
		return false
	}
	cancel()
	<-done

	m.logger.Info("status monitor stopped")
	return true
}

// Restart stops the loop if running and starts it with interval
func (m *Monitor) Restart(interval time.Duration) {
	m.Stop()
	m.Start(interval)
}

// Configure applies the desktop settings: the loop runs only when enabled,
// and a running loop is restarted when its interval changes.
func (m *Monitor) Configure(enabled bool, interval time.Duration) {
	if !enabled {
		m.Stop()
		return
	}
	if m.Running() && m.Interval() == interval {
		return
	}
	m.Restart(interval)
}

func (m *Monitor) loop(ctx context.Context, interval time.Duration, done chan struct{}) {
	defer close(done)

	m.CheckNow(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.CheckNow(ctx)
		}
	}
}

// CheckNow runs one check round. It returns false without probing when a
// round is already in progress.
func (m *Monitor) CheckNow(ctx context.Context) (Result, bool) {
	if !m.inFlight.CompareAndSwap(false, true) {
		m.recordCheck("skipped")
		return Result{}, false
	}
	defer m.inFlight.Store(false)

	today := m.now().UTC().Format("2006-01-02")
	var online, offline atomic.Int32
	probed := 0

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentProbes)

	for _, app := range m.target.List() {
		if !app.HasURL() {
			continue
		}
		if types.IsLocalApp(app.ID) {
			m.target.SetStatus(app.ID, types.StatusLocal, "")
			continue
		}

		probed++
		app := app
		g.Go(func() error {
			status := types.StatusOffline
			if m.prober.Probe(gctx, app.URL) {
				status = types.StatusOnline
				online.Add(1)
			} else {
				offline.Add(1)
			}
			// A round cut short by Stop leaves the previous status
			if ctx.Err() != nil {
				return nil
			}
			m.target.SetStatus(app.ID, status, today)
			return nil
		})
	}
	_ = g.Wait()

	checkedAt := m.now()
	m.lastCheck.Store(checkedAt.UnixMilli())

	result := Result{
		Probed:    probed,
		Online:    int(online.Load()),
		Offline:   int(offline.Load()),
		Summary:   m.target.Summary(),
		CheckedAt: checkedAt,
	}
	m.recordCheck("completed")
	m.logger.Debug("status check completed",
		zap.Int("probed", result.Probed),
		zap.Int("online", result.Online),
		zap.Int("offline", result.Offline))

	event := types.Event{
		Type: types.EventStatusChecked,
		Data: map[string]interface{}{
			"online":  result.Summary.Online,
			"offline": result.Summary.Offline,
			"total":   result.Summary.Total,
		},
	}
	for _, o := range m.observers {
		o(event)
	}
	return result, true
}

func (m *Monitor) recordCheck(outcome string) {
	if m.metrics != nil {
		m.metrics.RecordStatusCheck(outcome)
	}
}
