package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gmlportal/desktop/backend/internal/infrastructure/tracing"
	"go.uber.org/zap"
)

// Logger logs one line per request. Successful requests log at debug so
// the UI's polling does not flood production logs.
func Logger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		fields := append([]zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}, tracing.Fields(c.Request.Context())...)

		switch {
		case len(c.Errors) > 0:
			logger.Error("request failed", append(fields, zap.String("errors", c.Errors.String()))...)
		case status >= http.StatusInternalServerError:
			logger.Error("request failed", fields...)
		case status >= http.StatusBadRequest:
			logger.Info("request rejected", fields...)
		default:
			logger.Debug("request completed", fields...)
		}
	}
}

// Recovery turns a handler panic into a 500 response and an error log
func Recovery(logger *zap.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logger.Error("panic recovered",
			append([]zap.Field{
				zap.Any("panic", recovered),
				zap.String("path", c.Request.URL.Path),
				zap.Stack("stack"),
			}, tracing.Fields(c.Request.Context())...)...,
		)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error": "internal server error",
		})
	})
}
