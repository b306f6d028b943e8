// Package middleware holds the gin middleware chain: recovery, request
// logging, metrics, CORS, and the per-client rate limit.
package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"rafiq-chat/internal/logging"
	"rafiq-chat/internal/metrics"
	"rafiq-chat/internal/ratelimit"
)

const rateLimitMessage = "لقد تجاوزت الحد المسموح من الطلبات. يرجى المحاولة لاحقاً."

// Recovery turns panics into a 500 response and logs the stack.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logging.L().Error("panic recovered",
			zap.Any("panic", recovered),
			zap.String("path", c.Request.URL.Path),
			zap.ByteString("stack", debug.Stack()))

		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "حدث خطأ غير متوقع",
			"error":   "UNKNOWN_ERROR",
		})
		c.Abort()
	})
}

// Logger emits one structured log line per request.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		if c.Request.URL.Path == "/health" {
			return
		}
		logging.L().Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.String("client_ip", c.ClientIP()),
			zap.Duration("latency", time.Since(start)))
	}
}

// Metrics records request counts and latencies per route.
func Metrics() gin.HandlerFunc {
	m := metrics.Get()
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		m.HTTPRequestsTotal.WithLabelValues(c.Request.Method, path, status).Inc()
		m.HTTPRequestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}

// CORS allows the browser client to call the API from another origin.
func CORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// ClientID identifies the caller for rate limiting: the forwarded client
// address when behind a proxy, the socket address otherwise.
func ClientID(c *gin.Context) string {
	if ip := c.GetHeader("X-Forwarded-For"); ip != "" {
		return ip
	}
	if ip := c.GetHeader("X-Real-IP"); ip != "" {
		return ip
	}
	if ip := c.ClientIP(); ip != "" {
		return ip
	}
	return "unknown"
}

// RateLimit rejects clients exceeding their window with 429 and an Arabic
// message. A store error fails open.
func RateLimit(store ratelimit.Store) gin.HandlerFunc {
	m := metrics.Get()
	return func(c *gin.Context) {
		clientID := ClientID(c)

		allowed, status, err := store.Allow(c.Request.Context(), clientID)
		if err != nil {
			logging.L().Warn("rate limit store error", zap.Error(err))
			c.Next()
			return
		}

		if status != nil {
			c.Header("X-RateLimit-Limit", strconv.Itoa(status.Limit))
			c.Header("X-RateLimit-Remaining", strconv.Itoa(status.Remaining))
			c.Header("X-RateLimit-Reset", fmt.Sprint(status.ResetAt.Unix()))
		}

		if !allowed {
			m.RateLimitedTotal.Inc()
			c.JSON(http.StatusTooManyRequests, gin.H{"message": rateLimitMessage})
			c.Abort()
			return
		}
		c.Next()
	}
}
