package preferences

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"time"

	"github.com/bytedance/sonic"
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// ErrInvalidSetting is returned when a settings update carries a value
// outside its allowed set
var ErrInvalidSetting = errors.New("invalid setting")

var (
	sizes           = []interface{}{"small", "medium", "large"}
	levels          = []interface{}{"low", "medium", "high"}
	dockPositions   = []interface{}{"bottom"}
	historyLimits   = []interface{}{30, 100, 300}
	monitorInterval = []interface{}{15000, 30000, 45000, 60000}
	hexColor        = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6}|[0-9a-fA-F]{8})$`)
)

// Settings are the desktop settings
type Settings struct {
	DarkMode                  bool   `json:"darkMode"`
	Wallpaper                 string `json:"wallpaper"`
	WallpaperColor            string `json:"wallpaperColor"`
	ShowDock                  bool   `json:"showDock"`
	DockPosition              string `json:"dockPosition"`
	IconSize                  string `json:"iconSize"`
	MotionLevel               string `json:"motionLevel"`
	CodeRainEnabled           bool   `json:"codeRainEnabled"`
	DockAnimationLevel        string `json:"dockAnimationLevel"`
	TerminalFontSize          string `json:"terminalFontSize"`
	TerminalHistoryLimit      int    `json:"terminalHistoryLimit"`
	TerminalEasterEggsEnabled bool   `json:"terminalEasterEggsEnabled"`
	AutoStartMonitoring       bool   `json:"autoStartMonitoring"`
	StatusMonitorIntervalMs   int    `json:"statusMonitorIntervalMs"`
}

// DefaultSettings returns the factory settings
func DefaultSettings() Settings {
	return Settings{
		DarkMode:                  false,
		Wallpaper:                 "deep-net",
		WallpaperColor:            "#1a1a2e",
		ShowDock:                  true,
		DockPosition:              "bottom",
		IconSize:                  "medium",
		MotionLevel:               "medium",
		CodeRainEnabled:           true,
		DockAnimationLevel:        "medium",
		TerminalFontSize:          "medium",
		TerminalHistoryLimit:      100,
		TerminalEasterEggsEnabled: true,
		AutoStartMonitoring:       true,
		StatusMonitorIntervalMs:   45000,
	}
}

// StatusInterval returns the monitor interval as a duration
func (s Settings) StatusInterval() time.Duration {
	return time.Duration(s.StatusMonitorIntervalMs) * time.Millisecond
}

// SettingsPatch is a partial update; nil fields are left unchanged
type SettingsPatch struct {
	DarkMode                  *bool   `json:"darkMode,omitempty"`
	Wallpaper                 *string `json:"wallpaper,omitempty"`
	WallpaperColor            *string `json:"wallpaperColor,omitempty"`
	ShowDock                  *bool   `json:"showDock,omitempty"`
	DockPosition              *string `json:"dockPosition,omitempty"`
	IconSize                  *string `json:"iconSize,omitempty"`
	MotionLevel               *string `json:"motionLevel,omitempty"`
	CodeRainEnabled           *bool   `json:"codeRainEnabled,omitempty"`
	DockAnimationLevel        *string `json:"dockAnimationLevel,omitempty"`
	TerminalFontSize          *string `json:"terminalFontSize,omitempty"`
	TerminalHistoryLimit      *int    `json:"terminalHistoryLimit,omitempty"`
	TerminalEasterEggsEnabled *bool   `json:"terminalEasterEggsEnabled,omitempty"`
	AutoStartMonitoring       *bool   `json:"autoStartMonitoring,omitempty"`
	StatusMonitorIntervalMs   *int    `json:"statusMonitorIntervalMs,omitempty"`
}

// Validate rejects values outside each field's allowed set
func (p SettingsPatch) Validate() error {
	err := validation.ValidateStruct(&p,
		validation.Field(&p.Wallpaper, validation.NilOrNotEmpty),
		validation.Field(&p.WallpaperColor, validation.NilOrNotEmpty, validation.Match(hexColor)),
		validation.Field(&p.DockPosition, validation.NilOrNotEmpty, validation.In(dockPositions...)),
		validation.Field(&p.IconSize, validation.NilOrNotEmpty, validation.In(sizes...)),
		validation.Field(&p.MotionLevel, validation.NilOrNotEmpty, validation.In(levels...)),
		validation.Field(&p.DockAnimationLevel, validation.NilOrNotEmpty, validation.In(levels...)),
		validation.Field(&p.TerminalFontSize, validation.NilOrNotEmpty, validation.In(sizes...)),
		validation.Field(&p.TerminalHistoryLimit, validation.NilOrNotEmpty, validation.In(historyLimits...)),
		validation.Field(&p.StatusMonitorIntervalMs, validation.NilOrNotEmpty, validation.In(monitorInterval...)),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSetting, err)
	}
	return nil
}

// Apply returns s with every non-nil patch field set. The patch must
// already be valid.
func (p SettingsPatch) Apply(s Settings) Settings {
	setBool(&s.DarkMode, p.DarkMode)
	setString(&s.Wallpaper, p.Wallpaper)
	setString(&s.WallpaperColor, p.WallpaperColor)
	setBool(&s.ShowDock, p.ShowDock)
	setString(&s.DockPosition, p.DockPosition)
	setString(&s.IconSize, p.IconSize)
	setString(&s.MotionLevel, p.MotionLevel)
	setBool(&s.CodeRainEnabled, p.CodeRainEnabled)
	setString(&s.DockAnimationLevel, p.DockAnimationLevel)
	setString(&s.TerminalFontSize, p.TerminalFontSize)
	setInt(&s.TerminalHistoryLimit, p.TerminalHistoryLimit)
	setBool(&s.TerminalEasterEggsEnabled, p.TerminalEasterEggsEnabled)
	setBool(&s.AutoStartMonitoring, p.AutoStartMonitoring)
	setInt(&s.StatusMonitorIntervalMs, p.StatusMonitorIntervalMs)
	return s
}

// DecodeSettings parses persisted settings. Each field that is missing or
// holds a value outside its allowed set falls back to its default; an
// unreadable document yields the defaults and an error.
func DecodeSettings(raw []byte) (Settings, error) {
	s := DefaultSettings()

	var m map[string]interface{}
	if err := sonic.Unmarshal(raw, &m); err != nil {
		return s, fmt.Errorf("failed to parse settings: %w", err)
	}
	if m == nil {
		return s, fmt.Errorf("settings are not an object")
	}

	readBool(m, "darkMode", &s.DarkMode)
	readString(m, "wallpaper", &s.Wallpaper, nil)
	readString(m, "wallpaperColor", &s.WallpaperColor, nil)
	readBool(m, "showDock", &s.ShowDock)
	readString(m, "dockPosition", &s.DockPosition, dockPositions)
	readString(m, "iconSize", &s.IconSize, sizes)
	readString(m, "motionLevel", &s.MotionLevel, levels)
	readBool(m, "codeRainEnabled", &s.CodeRainEnabled)
	readString(m, "dockAnimationLevel", &s.DockAnimationLevel, levels)
	readString(m, "terminalFontSize", &s.TerminalFontSize, sizes)
	readInt(m, "terminalHistoryLimit", &s.TerminalHistoryLimit, historyLimits)
	readBool(m, "terminalEasterEggsEnabled", &s.TerminalEasterEggsEnabled)
	readBool(m, "autoStartMonitoring", &s.AutoStartMonitoring)
	readInt(m, "statusMonitorIntervalMs", &s.StatusMonitorIntervalMs, monitorInterval)
	return s, nil
}

func readBool(m map[string]interface{}, key string, dst *bool) {
	if v, ok := m[key].(bool); ok {
		*dst = v
	}
}

func readString(m map[string]interface{}, key string, dst *string, allowed []interface{}) {
	v, ok := m[key].(string)
	if !ok {
		return
	}
	if allowed != nil && !contains(allowed, v) {
		return
	}
	*dst = v
}

func readInt(m map[string]interface{}, key string, dst *int, allowed []interface{}) {
	f, ok := m[key].(float64)
	if !ok || f != math.Trunc(f) {
		return
	}
	if v := int(f); contains(allowed, v) {
		*dst = v
	}
}

func contains(allowed []interface{}, v interface{}) bool {
	for _, a := range allowed {
		if a == v {
			return true
		}
	}
	return false
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}
