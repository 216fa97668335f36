package http

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gmlportal/desktop/backend/internal/domain/catalog"
	"github.com/gmlportal/desktop/backend/internal/domain/preferences"
	"github.com/gmlportal/desktop/backend/internal/domain/status"
	"github.com/gmlportal/desktop/backend/internal/domain/terminal"
	"github.com/gmlportal/desktop/backend/internal/domain/vfs"
	"github.com/gmlportal/desktop/backend/internal/domain/viewport"
	"github.com/gmlportal/desktop/backend/internal/domain/window"
	"github.com/gmlportal/desktop/backend/internal/infrastructure/monitoring"
	"github.com/gmlportal/desktop/backend/internal/infrastructure/storage"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type reachable bool

func (r reachable) Probe(context.Context, string) bool { return bool(r) }

type fixture struct {
	router  *gin.Engine
	catalog *catalog.Catalog
	prefs   *preferences.Preferences
	windows *window.Manager
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	apps := catalog.NewDefault()
	prefs := preferences.New(storage.NewMemory())
	require.NoError(t, prefs.Load(context.Background(), apps.Has))

	tracker := viewport.NewTracker(true)
	windows := window.NewManager(apps, window.DefaultGeometry()).
		WithLaunchRecorder(prefs).
		WithExclusions(prefs).
		WithViewport(tracker)
	fs := vfs.New()

	h := NewHandlers(Dependencies{
		Catalog:     apps,
		Windows:     windows,
		Preferences: prefs,
		Viewport:    tracker,
		FS:          fs,
		Terminals:   terminal.NewManager(fs),
		Monitor:     status.NewMonitor(apps, reachable(true)),
		Metrics:     monitoring.NewMetrics(),
	})

	router := gin.New()
	RegisterRoutes(router, h)
	return &fixture{router: router, catalog: apps, prefs: prefs, windows: windows}
}

func (f *fixture) do(t *testing.T, method, path, body string) (int, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader([]byte(body)))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	var out map[string]interface{}
	if w.Body.Len() > 0 {
		require.NoError(t, sonic.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	}
	return w.Code, out
}

func openWindow(t *testing.T, f *fixture, appID string) string {
	t.Helper()
	code, body := f.do(t, http.MethodPost, "/apps/"+appID+"/open", "")
	require.Equal(t, http.StatusOK, code)
	result := body["result"].(map[string]interface{})
	require.Equal(t, "created", result["kind"])
	return result["window"].(map[string]interface{})["id"].(string)
}

func TestRootAndHealth(t *testing.T) {
	f := newFixture(t)

	code, body := f.do(t, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "online", body["status"])
	assert.Equal(t, Version, body["version"])

	code, body = f.do(t, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, float64(0), body["terminal_sessions"])
	assert.Contains(t, body, "catalog")
}

func TestOpenApp(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name    string
		appID   string
		code    int
		kind    string
		success bool
	}{
		{"external app navigates", "tools", http.StatusOK, "navigated", true},
		{"local app opens a window", "terminal", http.StatusOK, "created", true},
		{"second open focuses", "terminal", http.StatusOK, "focused", true},
		{"unknown app is ignored", "nope", http.StatusOK, "ignored", false},
		{"invalid id", "bad.id", http.StatusBadRequest, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, body := f.do(t, http.MethodPost, "/apps/"+tt.appID+"/open", "")
			require.Equal(t, tt.code, code)
			if tt.code != http.StatusOK {
				assert.Contains(t, body, "error")
				return
			}
			assert.Equal(t, tt.success, body["success"])
			assert.Equal(t, tt.kind, body["result"].(map[string]interface{})["kind"])
		})
	}

	assert.Equal(t, []string{"terminal", "tools"}, f.prefs.Recent())
}

func TestWindowLifecycle(t *testing.T) {
	f := newFixture(t)
	id := openWindow(t, f, "settings")

	code, body := f.do(t, http.MethodGet, "/windows/"+id, "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "settings", body["app_id"])

	code, body = f.do(t, http.MethodPut, "/windows/"+id+"/position", `{"x":40,"y":50}`)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, body["success"])
	win := body["window"].(map[string]interface{})
	assert.Equal(t, float64(40), win["x"])
	assert.Equal(t, float64(50), win["y"])

	code, _ = f.do(t, http.MethodPut, "/windows/"+id+"/size", `{"width":500}`)
	assert.Equal(t, http.StatusBadRequest, code)

	_, body = f.do(t, http.MethodPost, "/windows/"+id+"/minimize", "")
	assert.Equal(t, true, body["window"].(map[string]interface{})["minimized"])

	_, body = f.do(t, http.MethodPost, "/windows/"+id+"/focus", "")
	assert.Equal(t, false, body["window"].(map[string]interface{})["minimized"])

	_, body = f.do(t, http.MethodPost, "/windows/"+id+"/close", "")
	assert.Equal(t, true, body["success"])
	assert.NotContains(t, body, "window")

	code, body = f.do(t, http.MethodGet, "/windows/"+id, "")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "window not found", body["error"])

	_, body = f.do(t, http.MethodPost, "/windows/"+id+"/close", "")
	assert.Equal(t, false, body["success"])
}

func TestMaximizeUsesViewport(t *testing.T) {
	f := newFixture(t)

	code, _ := f.do(t, http.MethodPut, "/viewport", `{"width":0,"height":800}`)
	assert.Equal(t, http.StatusBadRequest, code)

	code, vp := f.do(t, http.MethodPut, "/viewport", `{"width":1440,"height":900}`)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(1440), vp["width"])

	id := openWindow(t, f, "terminal")
	_, body := f.do(t, http.MethodPost, "/windows/"+id+"/maximize", "")
	win := body["window"].(map[string]interface{})
	assert.Equal(t, true, win["maximized"])
	assert.Equal(t, float64(1440), win["width"])

	_, body = f.do(t, http.MethodPost, "/windows/"+id+"/maximize", "")
	assert.Equal(t, false, body["window"].(map[string]interface{})["maximized"])

	code, body = f.do(t, http.MethodGet, "/windows", "")
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, body["windows"], 1)
}

func TestPreferences(t *testing.T) {
	f := newFixture(t)

	code, body := f.do(t, http.MethodPost, "/preferences/pinned/wiki", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, body["pinned"])

	code, _ = f.do(t, http.MethodPost, "/preferences/pinned/nope", "")
	assert.Equal(t, http.StatusNotFound, code)

	code, body = f.do(t, http.MethodPost, "/preferences/trash/blog", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, []interface{}{"blog"}, body["trashed"])

	// Trashed apps cannot be opened
	_, body = f.do(t, http.MethodPost, "/apps/blog/open", "")
	assert.Equal(t, false, body["success"])

	_, body = f.do(t, http.MethodPost, "/preferences/removed/blog", "")
	assert.Empty(t, body["trashed"])
	assert.Equal(t, []interface{}{"blog"}, body["removed"])

	_, body = f.do(t, http.MethodGet, "/apps/desktop", "")
	for _, app := range body["apps"].([]interface{}) {
		assert.NotEqual(t, "blog", app.(map[string]interface{})["id"])
	}
	assert.Len(t, body["pinned"], 1)

	_, body = f.do(t, http.MethodDelete, "/preferences/removed/blog", "")
	assert.Empty(t, body["removed"])

	code, body = f.do(t, http.MethodPut, "/preferences/order", `{"order":["wiki","tools"]}`)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, []interface{}{"wiki", "tools"}, body["order"])

	code, _ = f.do(t, http.MethodPut, "/preferences/order", `{"order":["../etc"]}`)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestSettings(t *testing.T) {
	f := newFixture(t)

	code, body := f.do(t, http.MethodGet, "/settings", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "medium", body["iconSize"])

	code, body = f.do(t, http.MethodPatch, "/settings", `{"iconSize":"large","darkMode":true}`)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "large", body["iconSize"])
	assert.Equal(t, true, body["darkMode"])

	// One bad field rejects the whole patch
	code, _ = f.do(t, http.MethodPatch, "/settings", `{"darkMode":false,"statusMonitorIntervalMs":1}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.True(t, f.prefs.Settings().DarkMode)

	code, _ = f.do(t, http.MethodPatch, "/settings", `{"wallpaperColor":"blue"}`)
	assert.Equal(t, http.StatusBadRequest, code)

	code, body = f.do(t, http.MethodPost, "/settings/reset", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "medium", body["iconSize"])
	assert.Equal(t, false, body["darkMode"])
}

func TestStatus(t *testing.T) {
	f := newFixture(t)

	code, body := f.do(t, http.MethodPost, "/status/check", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(6), body["probed"])
	assert.Equal(t, float64(6), body["online"])

	code, body = f.do(t, http.MethodGet, "/status", "")
	require.Equal(t, http.StatusOK, code)
	monitor := body["monitor"].(map[string]interface{})
	assert.Equal(t, false, monitor["running"])
	assert.Contains(t, monitor, "last_check_at")
	assert.NotContains(t, body, "breakers")

	for _, app := range body["apps"].([]interface{}) {
		a := app.(map[string]interface{})
		switch a["id"] {
		case "terminal", "settings":
			assert.Equal(t, "local", a["status"])
		default:
			assert.Equal(t, "online", a["status"])
			assert.NotEmpty(t, a["updated_at"])
		}
	}
}

func TestFilesystem(t *testing.T) {
	f := newFixture(t)

	code, body := f.do(t, http.MethodGet, "/fs/list", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "/home/gml", body["path"])
	assert.NotEmpty(t, body["entries"])

	code, body = f.do(t, http.MethodGet, "/fs/file?path=notes.txt&cwd=/home/gml", "")
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, body["content"], "Portal MVP")

	code, body = f.do(t, http.MethodPut, "/fs/file", `{"path":"~/hello.txt","content":"hi"}`)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "/home/gml/hello.txt", body["path"])

	_, body = f.do(t, http.MethodPut, "/fs/file", `{"path":"/missing/dir/a.txt","content":"x"}`)
	assert.Equal(t, false, body["success"])

	_, body = f.do(t, http.MethodPost, "/fs/dir", `{"path":"/tmp/a/b","parents":true}`)
	assert.Equal(t, true, body["success"])

	code, body = f.do(t, http.MethodGet, "/fs/glob?pattern=/home/gml/*.txt", "")
	require.Equal(t, http.StatusOK, code)
	assert.ElementsMatch(t, []interface{}{"/home/gml/hello.txt", "/home/gml/notes.txt"}, body["matches"])

	_, body = f.do(t, http.MethodDelete, "/fs/file?path=/home/gml/hello.txt", "")
	assert.Equal(t, true, body["success"])

	_, body = f.do(t, http.MethodDelete, "/fs/dir?path=/tmp/a", "")
	assert.Equal(t, true, body["success"])

	code, _ = f.do(t, http.MethodGet, "/fs/file?path=/tmp/a/b", "")
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = f.do(t, http.MethodGet, "/fs/list?path=/home/gml/notes.txt", "")
	assert.Equal(t, http.StatusNotFound, code)

	_, body = f.do(t, http.MethodPost, "/fs/reset", "")
	assert.Equal(t, true, body["success"])
}

func TestListDirectoryReportsLiteralNames(t *testing.T) {
	f := newFixture(t)

	for _, name := range []string{"~", "~tilde.txt", "x"} {
		_, body := f.do(t, http.MethodPut, "/fs/file", `{"path":"/tmp/`+name+`","content":"abc"}`)
		require.Equal(t, true, body["success"], name)
	}

	code, body := f.do(t, http.MethodGet, "/fs/list?path=/tmp", "")
	require.Equal(t, http.StatusOK, code)

	entries := body["entries"].([]interface{})
	got := make(map[string]string, len(entries))
	for _, e := range entries {
		entry := e.(map[string]interface{})
		assert.Equal(t, false, entry["is_dir"])
		assert.Equal(t, float64(3), entry["size"])
		got[entry["name"].(string)] = entry["path"].(string)
	}
	assert.Equal(t, map[string]string{
		"~":          "/tmp/~",
		"~tilde.txt": "/tmp/~tilde.txt",
		"x":          "/tmp/x",
	}, got)
}

func TestTerminalSessions(t *testing.T) {
	f := newFixture(t)

	code, session := f.do(t, http.MethodPost, "/terminal/sessions", "")
	require.Equal(t, http.StatusCreated, code)
	id := session["id"].(string)
	assert.Equal(t, "/home/gml", session["cwd"])

	code, out := f.do(t, http.MethodPost, "/terminal/sessions/"+id+"/exec", `{"line":"pwd"}`)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, []interface{}{"/home/gml"}, out["lines"])
	assert.Equal(t, float64(0), out["exit_code"])

	_, out = f.do(t, http.MethodPost, "/terminal/sessions/"+id+"/exec", `{"line":"frobnicate"}`)
	assert.Equal(t, float64(terminal.ExitNotFound), out["exit_code"])

	code, body := f.do(t, http.MethodGet, "/terminal/sessions/"+id, "")
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, body["history"], 2)

	_, body = f.do(t, http.MethodGet, "/terminal/sessions", "")
	assert.Len(t, body["sessions"], 1)

	_, body = f.do(t, http.MethodDelete, "/terminal/sessions/"+id, "")
	assert.Equal(t, true, body["success"])

	code, _ = f.do(t, http.MethodPost, "/terminal/sessions/"+id+"/exec", `{"line":"pwd"}`)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestStreamLogs(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name string
		body string
		code int
	}{
		{"valid batch", `{"source":"ui","entries":[{"id":"1","level":"warn","message":"slow render","context":{"ms":120}}]}`, http.StatusOK},
		{"wrong source", `{"source":"kernel","entries":[{"message":"x"}]}`, http.StatusBadRequest},
		{"empty batch", `{"source":"ui","entries":[]}`, http.StatusBadRequest},
		{"malformed", `{"source":`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _ := f.do(t, http.MethodPost, "/logs", tt.body)
			assert.Equal(t, tt.code, code)
		})
	}

	_, body := f.do(t, http.MethodPost, "/logs", `{"source":"ui","entries":[{"id":"1","message":"ok"},{"id":"2","message":""}]}`)
	assert.Equal(t, float64(2), body["entries_received"])
	assert.Equal(t, float64(1), body["entries_processed"])
}

func TestMetricsSummary(t *testing.T) {
	f := newFixture(t)

	code, body := f.do(t, http.MethodGet, "/metrics/summary", "")
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "error_rate")

	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
