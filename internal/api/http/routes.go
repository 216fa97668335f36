package http

import "github.com/gin-gonic/gin"

// RegisterRoutes mounts every REST endpoint on router. The event stream
// is mounted by the server, which owns the hub.
func RegisterRoutes(router gin.IRouter, h *Handlers) {
	router.GET("/", h.Root)
	router.GET("/health", h.Health)

	// Catalog and launching
	router.GET("/apps", h.ListApps)
	router.GET("/apps/desktop", h.DesktopApps)
	router.POST("/apps/:id/open", h.OpenApp)

	// Window management
	windows := router.Group("/windows")
	windows.GET("", h.ListWindows)
	windows.GET("/:id", h.GetWindow)
	windows.POST("/:id/close", h.CloseWindow)
	windows.POST("/:id/minimize", h.MinimizeWindow)
	windows.POST("/:id/maximize", h.MaximizeWindow)
	windows.POST("/:id/focus", h.FocusWindow)
	windows.PUT("/:id/position", h.MoveWindow)
	windows.PUT("/:id/size", h.ResizeWindow)
	router.PUT("/viewport", h.ReportViewport)

	// Preferences
	prefs := router.Group("/preferences")
	prefs.GET("", h.GetPreferences)
	prefs.POST("/pinned/:id", h.TogglePinned)
	prefs.POST("/trash/:id", h.MoveToTrash)
	prefs.DELETE("/trash/:id", h.RestoreFromTrash)
	prefs.POST("/removed/:id", h.RemoveFromTrash)
	prefs.DELETE("/removed/:id", h.RestoreRemoved)
	prefs.PUT("/order", h.SetOrder)

	router.GET("/settings", h.GetSettings)
	router.PATCH("/settings", h.UpdateSettings)
	router.POST("/settings/reset", h.ResetSettings)

	// Status monitoring
	router.GET("/status", h.GetStatus)
	router.POST("/status/check", h.CheckStatus)

	// Virtual filesystem
	fs := router.Group("/fs")
	fs.GET("/list", h.ListDirectory)
	fs.GET("/file", h.ReadFile)
	fs.PUT("/file", h.WriteFile)
	fs.DELETE("/file", h.DeleteFile)
	fs.POST("/dir", h.CreateDirectory)
	fs.DELETE("/dir", h.RemoveDirectory)
	fs.GET("/glob", h.Glob)
	fs.POST("/reset", h.ResetFS)

	// Terminal sessions
	term := router.Group("/terminal/sessions")
	term.POST("", h.CreateSession)
	term.GET("", h.ListSessions)
	term.GET("/:id", h.GetSession)
	term.DELETE("/:id", h.CloseSession)
	term.POST("/:id/exec", h.ExecCommand)

	// Frontend logs
	router.POST("/logs", h.StreamLogs)

	// Metrics
	if h.metrics != nil {
		router.GET("/metrics", gin.WrapH(h.metrics.Handler()))
	}
	router.GET("/metrics/summary", h.GetMetricsSummary)
}
