// Package http exposes the desktop engines as a JSON REST API on gin.
//
// Mutations answer 200 with {"success": bool, ...}; an operation on an
// unknown window or session is not an error and reports success false.
// Reads of missing resources answer 404 and malformed input 400, both as
// {"error": "..."}. Storage failures answer 500 and are attached to the
// gin context so the request logger and tracer record them.
package http
