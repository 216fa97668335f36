// Package middleware provides the HTTP middleware stack for the portal API.
//
// Middleware stack includes:
//   - CORS: cross-origin access for the browser desktop
//   - RateLimit: per-IP token buckets with idle client eviction
//   - Logger: one zap line per request, tagged with the trace id
//   - Recovery: panic recovery with a JSON 500 response
//
// Example Usage:
//
//	router.Use(middleware.Recovery(logger))
//	router.Use(middleware.CORS(middleware.CORSConfigForOrigins(cfg.CORS.AllowOrigins)))
//	router.Use(middleware.RateLimit(middleware.DefaultRateLimitConfig()))
package middleware
