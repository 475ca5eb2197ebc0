package router

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/colabsdev/colabs-be/internal/ratelimit"
	"github.com/colabsdev/colabs-be/internal/telemetry"
)

// LoggerMiddleware logs HTTP requests with slog
func LoggerMiddleware(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		// Process request
		c.Next()

		// Calculate latency
		latency := time.Since(start)

		// Log request details
		logger.Info("HTTP Request",
			slog.Int("status", c.Writer.Status()),
			slog.String("method", c.Request.Method),
			slog.String("path", path),
			slog.String("query", query),
			slog.String("ip", c.ClientIP()),
			slog.String("user_agent", c.Request.UserAgent()),
			slog.Duration("latency", latency),
			slog.Int("body_size", c.Writer.Size()),
		)

		// Log errors if any
		if len(c.Errors) > 0 {
			for _, e := range c.Errors {
				logger.Error("Request error",
					slog.String("error", e.Error()),
					slog.Uint64("type", uint64(e.Type)),
				)
			}
		}
	}
}

// CORSMiddleware handles Cross-Origin Resource Sharing
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With, X-User-Id, x-chapa-signature")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

// ActorMiddleware resolves the calling user's id. Session mechanics live in
// the edge proxy; this trusts the forwarded identity header and is the seam
// where a real token check would go.
func ActorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		actorID := c.GetHeader("X-User-Id")
		if actorID == "" {
			c.AbortWithStatusJSON(401, gin.H{
				"error": "missing user identity",
			})
			return
		}

		c.Set("actorID", actorID)
		c.Next()
	}
}

// RateLimitMiddleware throttles payment initialization per actor with the
// Redis token bucket. A limiter that cannot be reached fails open.
func RateLimitMiddleware(limiter *ratelimit.TokenBucket, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil {
			c.Next()
			return
		}

		actorID := c.GetString("actorID")
		if actorID == "" {
			actorID = c.ClientIP()
		}

		allowed, err := limiter.Allow(c.Request.Context(), actorID)
		if err != nil {
			logger.Warn("Rate limiter unavailable, failing open",
				slog.Any("error", err),
			)
			c.Next()
			return
		}

		if !allowed {
			telemetry.RateLimitRejects.Inc()
			c.AbortWithStatusJSON(429, gin.H{
				"error": "too many payment requests",
			})
			return
		}

		c.Next()
	}
}
