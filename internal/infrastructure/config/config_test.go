package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// unsetEnv removes key for the duration of the test
func unsetEnv(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	require.NoError(t, os.Unsetenv(key))
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "HOST", "SHUTDOWN_TIMEOUT",
		"LOG_LEVEL", "LOG_DEV",
		"RATE_LIMIT_RPS", "RATE_LIMIT_BURST", "RATE_LIMIT_ENABLED",
		"CORS_ORIGINS",
		"STORE_DRIVER", "STORE_DIR", "STORE_SQLITE_PATH",
		"CATALOG_FILE", "CATALOG_WATCH",
		"STATUS_PROBE_TIMEOUT", "STATUS_PROBE_RPS", "STATUS_PROBE_RETRIES",
		"WM_TOP_MARGIN", "WM_DOCK_MARGIN", "WM_COMPACT_BREAKPOINT",
	} {
		unsetEnv(t, key)
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "8000", cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, "0.0.0.0:8000", cfg.Server.Address())
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.False(t, cfg.Logging.Development)

	assert.Equal(t, 100, cfg.RateLimit.RequestsPerSecond)
	assert.Equal(t, 200, cfg.RateLimit.Burst)
	assert.True(t, cfg.RateLimit.Enabled)

	assert.Equal(t, []string{"*"}, cfg.CORS.AllowOrigins)
	assert.Equal(t, StoreDisk, cfg.Storage.Driver)
	assert.True(t, cfg.Catalog.Watch)
	assert.Equal(t, 6*time.Second, cfg.Status.ProbeTimeout)
	assert.Equal(t, 32, cfg.Window.TopMargin)
	assert.Equal(t, 96, cfg.Window.DockMargin)
	assert.Equal(t, 768, cfg.Window.CompactBreakpoint)

	require.NoError(t, cfg.Validate())
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	home, err := homedir.Dir()
	require.NoError(t, err)

	assert.Equal(t, "8000", cfg.Server.Port)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, filepath.Join(home, ".gmlportal", "preferences"), cfg.Storage.Dir)
	assert.Equal(t, filepath.Join(home, ".gmlportal", "portal.db"), cfg.Storage.SQLitePath)
	assert.Empty(t, cfg.Catalog.File)
}

func TestLoadWithEnvironmentVariables(t *testing.T) {
	clearEnv(t)

	envVars := map[string]string{
		"PORT":                 "9000",
		"HOST":                 "127.0.0.1",
		"SHUTDOWN_TIMEOUT":     "3s",
		"LOG_LEVEL":            "debug",
		"LOG_DEV":              "true",
		"RATE_LIMIT_RPS":       "500",
		"RATE_LIMIT_BURST":     "1000",
		"RATE_LIMIT_ENABLED":   "false",
		"CORS_ORIGINS":         "http://localhost:5173,https://portal.example.com",
		"STORE_DRIVER":         "sqlite",
		"STORE_SQLITE_PATH":    "/var/lib/portal/portal.db",
		"CATALOG_FILE":         "/etc/portal/apps.yaml",
		"CATALOG_WATCH":        "false",
		"STATUS_PROBE_TIMEOUT": "2s",
		"STATUS_PROBE_RPS":     "2.5",
		"STATUS_PROBE_RETRIES": "3",
		"WM_TOP_MARGIN":        "40",
	}
	for key, value := range envVars {
		t.Setenv(key, value)
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, 3*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Logging.Development)
	assert.Equal(t, 500, cfg.RateLimit.RequestsPerSecond)
	assert.Equal(t, 1000, cfg.RateLimit.Burst)
	assert.False(t, cfg.RateLimit.Enabled)
	assert.Equal(t, []string{"http://localhost:5173", "https://portal.example.com"}, cfg.CORS.AllowOrigins)
	assert.Equal(t, StoreSQLite, cfg.Storage.Driver)
	assert.Equal(t, "/var/lib/portal/portal.db", cfg.Storage.SQLitePath)
	assert.Equal(t, "/etc/portal/apps.yaml", cfg.Catalog.File)
	assert.False(t, cfg.Catalog.Watch)
	assert.Equal(t, 2*time.Second, cfg.Status.ProbeTimeout)
	assert.InDelta(t, 2.5, cfg.Status.ProbeRPS, 0.0001)
	assert.Equal(t, 3, cfg.Status.ProbeRetries)
	assert.Equal(t, 40, cfg.Window.TopMargin)
	assert.Equal(t, 96, cfg.Window.DockMargin)
}

func TestLoadEnvFile(t *testing.T) {
	clearEnv(t)

	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("PORT=9100\nLOG_LEVEL=warn\n"), 0o600))

	// Variables already in the environment win over the file.
	t.Setenv("LOG_LEVEL", "error")

	cfg, err := Load(filepath.Join(dir, "missing.env"), envFile)
	require.NoError(t, err)

	assert.Equal(t, "9100", cfg.Server.Port)
	assert.Equal(t, "error", cfg.Logging.Level)
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "unknown log level", env: map[string]string{"LOG_LEVEL": "verbose"}},
		{name: "port out of range", env: map[string]string{"PORT": "70000"}},
		{name: "unknown store driver", env: map[string]string{"STORE_DRIVER": "redis"}},
		{name: "zero rps while enabled", env: map[string]string{"RATE_LIMIT_RPS": "0"}},
		{name: "probe timeout too short", env: map[string]string{"STATUS_PROBE_TIMEOUT": "10ms"}},
		{name: "negative margin", env: map[string]string{"WM_DOCK_MARGIN": "-1"}},
		{name: "unparseable duration", env: map[string]string{"SHUTDOWN_TIMEOUT": "soon"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for key, value := range tt.env {
				t.Setenv(key, value)
			}

			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestFinalizeExpandsOverrides(t *testing.T) {
	clearEnv(t)
	cfg, err := Load()
	require.NoError(t, err)

	home, err := homedir.Dir()
	require.NoError(t, err)

	cfg.Catalog.File = "~/apps.yaml"
	cfg.Storage.Dir = "~/prefs"
	require.NoError(t, cfg.Finalize())
	assert.Equal(t, filepath.Join(home, "apps.yaml"), cfg.Catalog.File)
	assert.Equal(t, filepath.Join(home, "prefs"), cfg.Storage.Dir)

	cfg.Logging.Level = "verbose"
	assert.Error(t, cfg.Finalize())
}

func TestRateLimitDisabledSkipsValidation(t *testing.T) {
	cfg := Default()
	cfg.RateLimit = RateLimitConfig{Enabled: false}
	assert.NoError(t, cfg.Validate())
}
