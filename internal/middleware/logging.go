package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"yamdb/internal/logger"
)

const (
	RequestIDKey = "request_id"
	LoggerKey    = "logger"
)

// RequestLogger tags each request with an id and logs its outcome.
func RequestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set(RequestIDKey, requestID)
		c.Header("X-Request-ID", requestID)

		requestLogger := logger.WithRequestID(log, requestID)
		c.Set(LoggerKey, requestLogger)

		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}
		caller := CallerFrom(c)
		if caller.Authenticated {
			fields = append(fields, zap.String("username", caller.Username))
		}
		if c.Writer.Status() >= 500 {
			requestLogger.Error("Request completed", fields...)
		} else {
			requestLogger.Info("Request completed", fields...)
		}
	}
}

// LoggerFrom returns the request-scoped logger, or fallback.
func LoggerFrom(c *gin.Context, fallback *zap.Logger) *zap.Logger {
	if v, ok := c.Get(LoggerKey); ok {
		if l, ok := v.(*zap.Logger); ok {
			return l
		}
	}
	return fallback
}
