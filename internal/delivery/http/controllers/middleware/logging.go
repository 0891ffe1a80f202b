package middleware

import (
	"fmt"
	"time"

	"LearnForge/pkg/logger"

	"github.com/gin-gonic/gin"
)

func LoggingMiddleware(log logger.Log) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		path := c.Request.URL.Path
		if rawQuery := c.Request.URL.RawQuery; rawQuery != "" {
			path = fmt.Sprintf("%s?%s", path, rawQuery)
		}
		status := c.Writer.Status()
		fields := []interface{}{
			"status", status,
			"latency", time.Since(start),
			"client_ip", c.ClientIP(),
		}
		if p, ok := Principal(c); ok {
			fields = append(fields, "user_id", p.UserID)
		}

		msg := fmt.Sprintf("%s %s", c.Request.Method, path)
		if status >= 500 {
			log.Warn(msg, fields...)
		} else {
			log.Info(msg, fields...)
		}

		for _, ginErr := range c.Errors {
			log.ErrorErr("HTTP request error", ginErr.Err,
				"status", status,
				"method", c.Request.Method,
				"path", path,
			)
		}
	}
}
