package status

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gmlportal/desktop/backend/internal/domain/catalog"
	"github.com/gmlportal/desktop/backend/internal/infrastructure/monitoring"
	"github.com/gmlportal/desktop/backend/internal/infrastructure/resilience"
	"github.com/gmlportal/desktop/backend/internal/shared/types"
)

// fakeProber answers from a fixed table and counts calls
type fakeProber struct {
	mu        sync.Mutex
	reachable map[string]bool
	calls     []string
	block     chan struct{}
}

func (f *fakeProber) Probe(ctx context.Context, rawURL string) bool {
	f.mu.Lock()
	f.calls = append(f.calls, rawURL)
	ok := f.reachable[rawURL]
	block := f.block
	f.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return false
		}
	}
	return ok
}

func (f *fakeProber) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	c, err := catalog.New([]types.AppDescriptor{
		{ID: "wiki", Name: "Wiki", URL: "https://wiki.example", Status: types.StatusOffline},
		{ID: "blog", Name: "Blog", URL: "https://blog.example", Status: types.StatusOnline},
		{ID: "notes", Name: "Notes", Status: types.StatusLocal},
		{ID: "terminal", Name: "Terminal", URL: "https://term.example", Status: types.StatusOnline},
	})
	require.NoError(t, err)
	return c
}

func fixedClock() time.Time {
	return time.Date(2026, 3, 14, 23, 30, 0, 0, time.UTC)
}

func TestCheckNow(t *testing.T) {
	c := testCatalog(t)
	prober := &fakeProber{reachable: map[string]bool{"https://wiki.example": true}}
	m := NewMonitor(c, prober).WithClock(fixedClock).WithMetrics(monitoring.NewMetrics())

	var events []types.Event
	m.Subscribe(func(e types.Event) { events = append(events, e) })

	_, ok := m.LastCheckAt()
	assert.False(t, ok)

	result, ran := m.CheckNow(context.Background())
	require.True(t, ran)

	assert.Equal(t, 2, result.Probed)
	assert.Equal(t, 1, result.Online)
	assert.Equal(t, 1, result.Offline)
	assert.ElementsMatch(t, []string{"https://wiki.example", "https://blog.example"}, prober.Calls())

	wiki, _ := c.Get("wiki")
	assert.Equal(t, types.StatusOnline, wiki.Status)
	assert.Equal(t, "2026-03-14", wiki.UpdatedAt)

	blog, _ := c.Get("blog")
	assert.Equal(t, types.StatusOffline, blog.Status)

	terminal, _ := c.Get("terminal")
	assert.Equal(t, types.StatusLocal, terminal.Status, "built-in apps are never probed")

	notes, _ := c.Get("notes")
	assert.Equal(t, types.StatusLocal, notes.Status)
	assert.Empty(t, notes.UpdatedAt)

	last, ok := m.LastCheckAt()
	require.True(t, ok)
	assert.Equal(t, fixedClock().UnixMilli(), last.UnixMilli())

	require.Len(t, events, 1)
	assert.Equal(t, types.EventStatusChecked, events[0].Type)
	assert.Equal(t, 1, events[0].Data["online"])
}

func TestCheckNowSkipsWhileInFlight(t *testing.T) {
	c := testCatalog(t)
	prober := &fakeProber{reachable: map[string]bool{}, block: make(chan struct{})}
	m := NewMonitor(c, prober)

	done := make(chan bool, 1)
	go func() {
		_, ran := m.CheckNow(context.Background())
		done <- ran
	}()

	require.Eventually(t, m.InFlight, time.Second, 5*time.Millisecond)
	_, ran := m.CheckNow(context.Background())
	assert.False(t, ran)

	close(prober.block)
	assert.True(t, <-done)
	assert.False(t, m.InFlight())
}

func TestStartStop(t *testing.T) {
	c := testCatalog(t)
	prober := &fakeProber{reachable: map[string]bool{}}
	m := NewMonitor(c, prober)

	require.True(t, m.Start(20*time.Millisecond))
	assert.False(t, m.Start(time.Second), "already running")
	assert.True(t, m.Running())

	require.Eventually(t, func() bool { return len(prober.Calls()) >= 4 }, 2*time.Second, 5*time.Millisecond,
		"immediate check plus at least one tick")

	assert.True(t, m.Stop())
	assert.False(t, m.Stop())
	assert.False(t, m.Running())

	calls := len(prober.Calls())
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, calls, len(prober.Calls()), "no probes after stop")
}

func TestStopCancelsRound(t *testing.T) {
	c := testCatalog(t)
	prober := &fakeProber{reachable: map[string]bool{"https://wiki.example": true}, block: make(chan struct{})}
	m := NewMonitor(c, prober)

	m.Start(time.Hour)
	require.Eventually(t, m.InFlight, time.Second, 5*time.Millisecond)
	m.Stop()

	blog, _ := c.Get("blog")
	assert.Equal(t, types.StatusOnline, blog.Status, "cancelled round leaves statuses alone")
}

func TestConfigure(t *testing.T) {
	m := NewMonitor(testCatalog(t), &fakeProber{reachable: map[string]bool{}})
	defer m.Stop()

	m.Configure(true, 30*time.Second)
	assert.True(t, m.Running())
	assert.Equal(t, 30*time.Second, m.Interval())

	m.Configure(true, 15*time.Second)
	assert.True(t, m.Running())
	assert.Equal(t, 15*time.Second, m.Interval())

	m.Configure(false, 15*time.Second)
	assert.False(t, m.Running())
}

func TestHTTPProber(t *testing.T) {
	var hits atomic.Int32
	ok := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		assert.Equal(t, "no-store", r.Header.Get("Cache-Control"))
		w.WriteHeader(http.StatusOK)
	}))
	defer ok.Close()

	notFound := httptest.NewServer(http.NotFoundHandler())
	defer notFound.Close()

	closed := httptest.NewServer(http.NotFoundHandler())
	closedURL := closed.URL
	closed.Close()

	cfg := DefaultProberConfig()
	cfg.Retries = 0
	cfg.Timeout = 2 * time.Second
	p := NewHTTPProber(cfg).WithMetrics(monitoring.NewMetrics())

	tests := []struct {
		name string
		url  string
		want bool
	}{
		{"ok", ok.URL, true},
		{"any status counts", notFound.URL, true},
		{"connection refused", closedURL, false},
		{"not http", "ftp://files.example", false},
		{"garbage", "://", false},
		{"no host", "http://", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, p.Probe(context.Background(), tt.url))
		})
	}
	assert.Equal(t, int32(1), hits.Load())
}

func TestHTTPProberTimeout(t *testing.T) {
	release := make(chan struct{})
	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer slow.Close()
	defer close(release)

	cfg := DefaultProberConfig()
	cfg.Retries = 0
	cfg.Timeout = 50 * time.Millisecond
	p := NewHTTPProber(cfg)

	start := time.Now()
	assert.False(t, p.Probe(context.Background(), slow.URL))
	assert.Less(t, time.Since(start), time.Second)
}

func TestHTTPProberBreakerOpens(t *testing.T) {
	closed := httptest.NewServer(http.NotFoundHandler())
	closedURL := closed.URL
	closed.Close()

	cfg := DefaultProberConfig()
	cfg.Retries = 0
	cfg.RPS = 0
	p := NewHTTPProber(cfg)

	for i := 0; i < 3; i++ {
		assert.False(t, p.Probe(context.Background(), closedURL))
	}

	states := p.Breakers().States()
	require.Len(t, states, 1)
	for _, state := range states {
		assert.Equal(t, resilience.StateOpen, state)
	}
	assert.False(t, p.Probe(context.Background(), closedURL))
}
