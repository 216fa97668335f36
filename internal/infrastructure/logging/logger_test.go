package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"default", DefaultConfig(), false},
		{"development", Config{Level: "debug", Development: true}, false},
		{"bad level", Config{Level: "chatty"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := New(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, logger.Component("window"))
		})
	}
}

func TestJSONOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "portal.log")
	logger, err := New(Config{Level: "info", OutputPaths: []string{path}})
	require.NoError(t, err)

	logger.Component("status").Info("status check completed", zap.Int("online", 5))
	logger.Debug("dropped")
	require.NoError(t, logger.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"logger":"status"`)
	assert.Contains(t, string(data), `"message":"status check completed"`)
	assert.Contains(t, string(data), `"online":5`)
	assert.NotContains(t, string(data), "dropped")
}

func TestSetLevel(t *testing.T) {
	logger, err := New(Config{Level: "warn", OutputPaths: []string{filepath.Join(t.TempDir(), "l.log")}})
	require.NoError(t, err)
	assert.Equal(t, zapcore.WarnLevel, logger.Level())

	require.NoError(t, logger.SetLevel("debug"))
	assert.Equal(t, zapcore.DebugLevel, logger.Level())
	assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))

	assert.Error(t, logger.SetLevel("loud"))
}

func TestWrap(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	logger := Wrap(zap.New(core))

	logger.Component("catalog").Info("catalog loaded")
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "catalog", logs.All()[0].LoggerName)

	assert.NotNil(t, NewNop().Component("x"))
}
