package middleware

import (
	"time"

	"github.com/consensuslabs/pavilion-mint/internal/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestLoggerMiddleware creates a middleware for logging HTTP requests
func RequestLoggerMiddleware(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		start := time.Now()

		contextLogger := log.WithRequestID(requestID)
		c.Set(loggerKey, contextLogger)
		c.Set(requestIDKey, requestID)
		c.Header("X-Request-ID", requestID)

		c.Next()

		statusCode := c.Writer.Status()
		fields := map[string]interface{}{
			"method":    c.Request.Method,
			"path":      c.Request.URL.Path,
			"status":    statusCode,
			"latency":   time.Since(start),
			"requestID": requestID,
			"clientIP":  c.ClientIP(),
			"userAgent": c.Request.UserAgent(),
		}

		if wallet, exists := c.Get("walletAddress"); exists {
			fields["wallet"] = wallet
		}

		switch {
		case statusCode >= 500:
			contextLogger.WithFields(fields).LogError(nil, "Server error processing request")
		case statusCode >= 400:
			contextLogger.LogWarn("Client error processing request", fields)
		default:
			contextLogger.LogInfo("Request completed", fields)
		}
	}
}
