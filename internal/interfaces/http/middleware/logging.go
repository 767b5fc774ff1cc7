package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"curriculum/internal/shared/constants"
	"curriculum/internal/shared/logger"
	"curriculum/internal/shared/utils/logutil"
)

const maxLoggedQueryLen = 256

// Logger writes one line per request. Import uploads are logged with their
// size so a slow import can be told apart from a large one.
func Logger(log logger.Interface) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		args := []any{
			"method", c.Request.Method,
			"route", routeOf(c),
			"status", status,
			"latency_ms", time.Since(start).Milliseconds(),
			"request_id", c.GetString(constants.ContextKeyRequestID),
		}
		if orgID := c.GetString(constants.ContextKeyOrganizationID); orgID != "" {
			args = append(args, "organization_id", orgID)
		}
		if c.Request.ContentLength > 0 {
			args = append(args, "upload_bytes", c.Request.ContentLength)
		}
		if q := c.Request.URL.RawQuery; q != "" {
			args = append(args, "query", logutil.TruncateForLog(q, maxLoggedQueryLen))
		}
		if len(c.Errors) > 0 {
			args = append(args, "error", c.Errors.String())
		}

		switch {
		case status >= 500:
			log.Errorw("request failed", args...)
		case status >= 400:
			log.Warnw("request rejected", args...)
		default:
			log.Debugw("request served", args...)
		}
	}
}

// routeOf prefers the matched route template so course ids do not explode
// log cardinality.
func routeOf(c *gin.Context) string {
	if route := c.FullPath(); route != "" {
		return route
	}
	return c.Request.URL.Path
}
