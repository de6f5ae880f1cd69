package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RequestLogger logs one line per completed request. Authorization and
// Cookie headers are never logged; everything passing through here may
// carry bearer tokens.
func RequestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if log.Core().Enabled(zap.DebugLevel) {
			log.Debug("incoming request",
				zap.String("method", c.Request.Method),
				zap.String("path", c.Request.URL.Path),
				zap.Any("headers", ScrubHeaders(c.Request.Header)),
			)
		}

		start := time.Now()
		c.Next()
		latency := time.Since(start)
		status := c.Writer.Status()

		fields := []zap.Field{
			zap.Int("status", status),
			zap.Duration("latency", latency),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.String("ip", c.ClientIP()),
		}

		for _, e := range c.Errors {
			log.Error("handler error", append(fields, zap.Error(e))...)
		}

		switch {
		case status >= http.StatusInternalServerError:
			log.Error("request failed", fields...)
		default:
			log.Info("request completed", fields...)
		}
	}
}

// ScrubHeaders redacts sensitive header values before they reach a log line.
func ScrubHeaders(h http.Header) http.Header {
	clone := h.Clone()
	for k := range clone {
		lower := strings.ToLower(k)
		if strings.Contains(lower, "authorization") || strings.Contains(lower, "cookie") {
			clone[k] = []string{"[redacted]"}
		}
	}
	return clone
}
