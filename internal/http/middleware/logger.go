package middleware

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"
)

// Logger prints one line per request. Query strings are left out; scanned
// references travel in bodies, never in the logged path.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)

		log.Printf("[CONSOLE] request_id=%s operator=%s method=%s path=%s status=%d latency_ms=%.3f ip=%s",
			GetRequestID(c),
			GetOperatorRole(c),
			c.Request.Method,
			c.Request.URL.Path,
			c.Writer.Status(),
			float64(latency.Microseconds())/1000.0,
			c.ClientIP(),
		)
	}
}
