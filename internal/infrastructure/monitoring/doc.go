/*
Package monitoring provides Prometheus metrics for the desktop backend.

# Overview

Every Metrics value owns its own registry, so several instances can live in
one process (tests build one per case). HTTP traffic, window lifecycle,
reachability probes, filesystem and terminal activity, preference store
operations and WebSocket connections are tracked.

# Usage

	metrics := monitoring.NewMetrics()
	router.Use(monitoring.Middleware(metrics))
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	metrics.SetWindowsOpen(3)

	timer := monitoring.NewTimer(metrics)
	// ... perform operation ...
	timer.Stop(true)
*/
package monitoring
