package window

import (
	"slices"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/gmlportal/desktop/backend/internal/shared/types"
)

// GeometryConfig controls where new windows are placed
type GeometryConfig struct {
	DefaultWidth  int
	DefaultHeight int

	// Regular layout margins
	TopMargin        int
	DockMargin       int
	HiddenDockMargin int
	SideMargin       int

	// Compact layout, used below CompactBreakpoint for CompactApps
	CompactBreakpoint       int
	CompactTop              int
	CompactBottom           int
	CompactHiddenDockBottom int
	CompactInset            int
	CompactApps             []string

	// Fallback when no viewport is known
	CascadeOrigin int
	CascadeStep   int
}

// DefaultGeometry returns the stock placement policy
func DefaultGeometry() GeometryConfig {
	return GeometryConfig{
		DefaultWidth:            900,
		DefaultHeight:           600,
		TopMargin:               32,
		DockMargin:              96,
		HiddenDockMargin:        16,
		SideMargin:              16,
		CompactBreakpoint:       768,
		CompactTop:              40,
		CompactBottom:           88,
		CompactHiddenDockBottom: 12,
		CompactInset:            8,
		CompactApps:             []string{"terminal", "settings"},
		CascadeOrigin:           100,
		CascadeStep:             30,
	}
}

// Validate checks the config for usable values
func (g GeometryConfig) Validate() error {
	return validation.ValidateStruct(&g,
		validation.Field(&g.DefaultWidth, validation.Required, validation.Min(1)),
		validation.Field(&g.DefaultHeight, validation.Required, validation.Min(1)),
		validation.Field(&g.TopMargin, validation.Min(0)),
		validation.Field(&g.DockMargin, validation.Min(0)),
		validation.Field(&g.HiddenDockMargin, validation.Min(0)),
		validation.Field(&g.SideMargin, validation.Min(0)),
		validation.Field(&g.CompactBreakpoint, validation.Min(0)),
		validation.Field(&g.CompactTop, validation.Min(0)),
		validation.Field(&g.CompactBottom, validation.Min(0)),
		validation.Field(&g.CompactHiddenDockBottom, validation.Min(0)),
		validation.Field(&g.CompactInset, validation.Min(0)),
		validation.Field(&g.CascadeStep, validation.Min(0)),
	)
}

// IsCompact reports whether the viewport uses the compact layout
func (g GeometryConfig) IsCompact(vp types.Viewport) bool {
	return vp.Width < g.CompactBreakpoint
}

// InitialFrame computes the frame of a new window for appID. index is the
// number of windows already open and only matters for the cascade fallback.
func (g GeometryConfig) InitialFrame(appID string, vp types.Viewport, known bool, index int) types.Frame {
	if !known || vp.Width <= 0 || vp.Height <= 0 {
		offset := g.CascadeOrigin + g.CascadeStep*index
		return types.Frame{X: offset, Y: offset, Width: g.DefaultWidth, Height: g.DefaultHeight}
	}

	if g.IsCompact(vp) && slices.Contains(g.CompactApps, appID) {
		return g.compactFrame(vp)
	}
	return g.centeredFrame(vp)
}

// RestoreFrame is used when un-maximizing a window that never saved geometry
func (g GeometryConfig) RestoreFrame() types.Frame {
	return types.Frame{X: g.CascadeOrigin, Y: g.CascadeOrigin, Width: g.DefaultWidth, Height: g.DefaultHeight}
}

func (g GeometryConfig) compactFrame(vp types.Viewport) types.Frame {
	bottom := g.CompactBottom
	if !vp.DockVisible {
		bottom = g.CompactHiddenDockBottom
	}

	return types.Frame{
		X:      g.CompactInset,
		Y:      g.CompactTop,
		Width:  max(vp.Width-2*g.CompactInset, 1),
		Height: max(vp.Height-g.CompactTop-bottom, 1),
	}
}

func (g GeometryConfig) centeredFrame(vp types.Viewport) types.Frame {
	bottom := g.DockMargin
	if !vp.DockVisible {
		bottom = g.HiddenDockMargin
	}

	availW := max(vp.Width-2*g.SideMargin, 1)
	availH := max(vp.Height-g.TopMargin-bottom, 1)
	width := min(g.DefaultWidth, availW)
	height := min(g.DefaultHeight, availH)

	x := g.SideMargin + (availW-width)/2
	y := g.TopMargin + (availH-height)/2

	// Keep the frame inside the margins
	x = clamp(x, g.SideMargin, g.SideMargin+availW-width)
	y = clamp(y, g.TopMargin, g.TopMargin+availH-height)

	return types.Frame{X: x, Y: y, Width: width, Height: height}
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		hi = lo
	}
	return min(max(v, lo), hi)
}
