package accesslog

import (
	"time"

	"github.com/gin-gonic/gin"

	"garaadka-laundry/internal/audit"
)

func Middleware(s *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		s.Log(AccessLog{
			RequestID:   c.GetString(audit.RequestIDKey),
			Username:    c.GetString(audit.AuditUserKey),
			Method:      c.Request.Method,
			Path:        c.Request.URL.Path,
			Route:       c.FullPath(),
			Host:        c.Request.Host,
			StatusCode:  c.Writer.Status(),
			IP:          c.ClientIP(),
			UserAgent:   c.Request.UserAgent(),
			Referer:     c.Request.Referer(),
			ContentType: c.ContentType(),
			RequestTime: start.UTC(),
			LatencyMs:   float64(time.Since(start).Microseconds()) / 1000,
		})
	}
}
