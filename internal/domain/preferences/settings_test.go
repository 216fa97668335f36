package preferences

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestDefaultSettings(t *testing.T) {
	s := DefaultSettings()
	assert.Equal(t, "bottom", s.DockPosition)
	assert.Equal(t, 100, s.TerminalHistoryLimit)
	assert.Equal(t, 45*time.Second, s.StatusInterval())
	assert.True(t, s.AutoStartMonitoring)
}

func TestSettingsPatchValidate(t *testing.T) {
	tests := []struct {
		name    string
		patch   SettingsPatch
		wantErr bool
	}{
		{"empty patch", SettingsPatch{}, false},
		{"dark mode", SettingsPatch{DarkMode: ptr(true)}, false},
		{"icon size", SettingsPatch{IconSize: ptr("large")}, false},
		{"bad icon size", SettingsPatch{IconSize: ptr("huge")}, true},
		{"bad motion level", SettingsPatch{MotionLevel: ptr("extreme")}, true},
		{"dock only at bottom", SettingsPatch{DockPosition: ptr("left")}, true},
		{"history limit", SettingsPatch{TerminalHistoryLimit: ptr(300)}, false},
		{"bad history limit", SettingsPatch{TerminalHistoryLimit: ptr(50)}, true},
		{"interval", SettingsPatch{StatusMonitorIntervalMs: ptr(15000)}, false},
		{"bad interval", SettingsPatch{StatusMonitorIntervalMs: ptr(1000)}, true},
		{"color", SettingsPatch{WallpaperColor: ptr("#0f0")}, false},
		{"bad color", SettingsPatch{WallpaperColor: ptr("green")}, true},
		{"empty wallpaper", SettingsPatch{Wallpaper: ptr("")}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.patch.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidSetting)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSettingsPatchApply(t *testing.T) {
	base := DefaultSettings()
	got := SettingsPatch{
		DarkMode:                ptr(true),
		IconSize:                ptr("small"),
		StatusMonitorIntervalMs: ptr(60000),
	}.Apply(base)

	assert.True(t, got.DarkMode)
	assert.Equal(t, "small", got.IconSize)
	assert.Equal(t, 60000, got.StatusMonitorIntervalMs)
	assert.Equal(t, base.Wallpaper, got.Wallpaper)
	assert.False(t, base.DarkMode, "base is not modified")
}

func TestDecodeSettingsFallsBackPerField(t *testing.T) {
	raw := `{
		"darkMode": true,
		"iconSize": "huge",
		"motionLevel": "low",
		"terminalHistoryLimit": 300,
		"statusMonitorIntervalMs": 12345,
		"wallpaper": 7,
		"showDock": "yes"
	}`

	s, err := DecodeSettings([]byte(raw))
	require.NoError(t, err)

	def := DefaultSettings()
	assert.True(t, s.DarkMode)
	assert.Equal(t, def.IconSize, s.IconSize)
	assert.Equal(t, "low", s.MotionLevel)
	assert.Equal(t, 300, s.TerminalHistoryLimit)
	assert.Equal(t, def.StatusMonitorIntervalMs, s.StatusMonitorIntervalMs)
	assert.Equal(t, def.Wallpaper, s.Wallpaper)
	assert.Equal(t, def.ShowDock, s.ShowDock)
}

func TestDecodeSettingsErrors(t *testing.T) {
	for _, raw := range []string{"{broken", "null", `["a"]`} {
		s, err := DecodeSettings([]byte(raw))
		assert.Error(t, err, raw)
		assert.Equal(t, DefaultSettings(), s, raw)
	}

	s, err := DecodeSettings([]byte(`{"terminalHistoryLimit": 100.5}`))
	require.NoError(t, err)
	assert.Equal(t, 100, s.TerminalHistoryLimit)
}
