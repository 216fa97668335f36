package server

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gmlportal/desktop/backend/internal/infrastructure/config"
	"github.com/gmlportal/desktop/backend/internal/infrastructure/logging"
)

type stubProber struct{}

func (stubProber) Probe(context.Context, string) bool { return true }

func newTestServer(t *testing.T) *Server {
	t.Helper()
	cfg := config.Default()
	cfg.Storage.Driver = config.StoreMemory
	cfg.RateLimit.Enabled = false

	s, err := NewServer(cfg, WithLogger(logging.NewNop()), WithProber(stubProber{}))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func do(t *testing.T, h http.Handler, method, path, body string) (int, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader([]byte(body)))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	var out map[string]interface{}
	if w.Body.Len() > 0 {
		require.NoError(t, sonic.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	}
	return w.Code, out
}

func TestNewServerRejectsInvalidGeometry(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.WindowConfig)
	}{
		{"negative top margin", func(w *config.WindowConfig) { w.TopMargin = -1 }},
		{"negative dock margin", func(w *config.WindowConfig) { w.DockMargin = -96 }},
		{"negative breakpoint", func(w *config.WindowConfig) { w.CompactBreakpoint = -768 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.Storage.Driver = config.StoreMemory
			tt.mutate(&cfg.Window)

			s, err := NewServer(cfg, WithLogger(logging.NewNop()), WithProber(stubProber{}))
			require.Error(t, err)
			assert.Nil(t, s)
			assert.Contains(t, err.Error(), "invalid window geometry")
		})
	}
}

func TestServerHealth(t *testing.T) {
	s := newTestServer(t)

	code, body := do(t, s.Handler(), http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "healthy", body["status"])

	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "portal_http_requests_total")
}

func TestResponsesAreCompressed(t *testing.T) {
	s := newTestServer(t)
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/apps", nil)
	require.NoError(t, err)
	req.Header.Set("Accept-Encoding", "gzip")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "gzip", resp.Header.Get("Content-Encoding"))
}

func TestClosingWindowEndsItsTerminals(t *testing.T) {
	s := newTestServer(t)
	h := s.Handler()

	code, body := do(t, h, http.MethodPost, "/apps/terminal/open", "")
	require.Equal(t, http.StatusOK, code)
	result := body["result"].(map[string]interface{})
	require.Equal(t, "created", result["kind"])
	windowID := result["window"].(map[string]interface{})["id"].(string)

	code, _ = do(t, h, http.MethodPost, "/terminal/sessions", `{"window_id":"`+windowID+`"}`)
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, 1, s.terminals.Count())

	code, body = do(t, h, http.MethodPost, "/windows/"+windowID+"/close", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, 0, s.terminals.Count())
}

func TestSettingsChangesReachComponents(t *testing.T) {
	s := newTestServer(t)
	h := s.Handler()

	code, _ := do(t, h, http.MethodPatch, "/settings", `{"terminalHistoryLimit":30,"showDock":false}`)
	require.Equal(t, http.StatusOK, code)

	code, vp := do(t, h, http.MethodPut, "/viewport", `{"width":1280,"height":800}`)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, false, vp["dock_visible"])

	_, session := do(t, h, http.MethodPost, "/terminal/sessions", "")
	assert.Equal(t, float64(30), session["history_limit"])

	code, _ = do(t, h, http.MethodPatch, "/settings", `{"iconSize":"huge"}`)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestStreamReceivesWindowEvents(t *testing.T) {
	s := newTestServer(t)
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/stream"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	var hello map[string]interface{}
	require.NoError(t, conn.ReadJSON(&hello))
	assert.Equal(t, "system", hello["type"])

	resp, err := http.Post(ts.URL+"/apps/settings/open", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()

	for {
		var msg map[string]interface{}
		require.NoError(t, conn.ReadJSON(&msg))
		event, ok := msg["event"].(map[string]interface{})
		if !ok {
			continue
		}
		if event["type"] == "window.opened" {
			assert.Equal(t, "settings", event["app_id"])
			return
		}
	}
}

func TestRunShutsDownOnCancel(t *testing.T) {
	cfg := config.Default()
	cfg.Storage.Driver = config.StoreMemory
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.Port = "0"
	cfg.Server.ShutdownTimeout = time.Second

	s, err := NewServer(cfg, WithLogger(logging.NewNop()), WithProber(stubProber{}))
	require.NoError(t, err)
	defer s.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
