package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"curriculum/internal/shared/constants"
)

var (
	corsAllowHeaders = strings.Join([]string{
		constants.HeaderContentType, "Accept", "Origin",
		constants.HeaderXRequestID, constants.HeaderOrganizationID, HeaderAPIVersion,
	}, ", ")
	corsExposeHeaders = strings.Join([]string{
		constants.HeaderXRequestID, HeaderAPIVersion, "X-RateLimit-Remaining",
	}, ", ")
)

// CORS admits browser calls from the configured admin origins. "*" admits
// every origin. Only the import, audit and delete verbs are offered.
func CORS(allowedOrigins []string) gin.HandlerFunc {
	anyOrigin := false
	origins := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		if o == "*" {
			anyOrigin = true
		}
		origins[o] = struct{}{}
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if _, ok := origins[origin]; origin != "" && (ok || anyOrigin) {
			h := c.Writer.Header()
			h.Set("Access-Control-Allow-Origin", origin)
			h.Add("Vary", "Origin")
			h.Set("Access-Control-Allow-Headers", corsAllowHeaders)
			h.Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
			h.Set("Access-Control-Expose-Headers", corsExposeHeaders)
			h.Set("Access-Control-Max-Age", "600")
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// SecurityHeaders sets the response headers for JSON and rendered audit
// report responses.
func SecurityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "no-referrer")
		// Audit reports rendered as HTML carry inline table styles only.
		h.Set("Content-Security-Policy", "default-src 'none'; style-src 'unsafe-inline'")
		c.Next()
	}
}
