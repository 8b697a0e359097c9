package config

import (
	"log"
	"time"

	"washcenter-backend/utils"

	"github.com/gin-gonic/gin"
)

// PerformanceLogger logs every request with its latency and the caller role
// resolved by the auth middleware, and flags requests slower than slow.
func PerformanceLogger(slow time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		latency := time.Since(start)
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		log.Printf("[PERF] %s %s | Status: %d | Role: %s | Time: %v",
			c.Request.Method,
			path,
			c.Writer.Status(),
			utils.CallerFrom(c).Role,
			latency)

		if slow > 0 && latency > slow {
			log.Printf("[PERF] SLOW REQUEST: %s %s took %v (threshold %v)",
				c.Request.Method, c.Request.URL.Path, latency, slow)
		}
	}
}
