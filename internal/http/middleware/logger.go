package middleware

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/KennyKvn001/BusB/internal/utils"
)

// Logger emits one structured line per request once the handler chain returns.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		utils.LogEvent(GetRequestID(c), "http", c.Request.Method,
			fmt.Sprintf("path=%s status=%d latency_ms=%.3f ip=%s",
				c.Request.URL.Path,
				c.Writer.Status(),
				float64(time.Since(start).Microseconds())/1000.0,
				c.ClientIP(),
			))
	}
}
