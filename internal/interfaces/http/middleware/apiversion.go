package middleware

import (
	"regexp"
	"strconv"

	"github.com/gin-gonic/gin"

	"curriculum/internal/shared/errors"
	"curriculum/internal/shared/utils"
)

const (
	// HeaderAPIVersion is the custom header for API version negotiation.
	HeaderAPIVersion = "X-API-Version"

	// ContextKeyAPIVersion is the Gin context key for the resolved API version.
	ContextKeyAPIVersion = "api_version"

	CurrentAPIVersion = 1
	MinAPIVersion     = 1
)

// acceptVersionRegex matches an Accept header like "application/vnd.curriculum.v1+json".
var acceptVersionRegex = regexp.MustCompile(`application/vnd\.curriculum\.v(\d+)\+json`)

// APIVersion resolves the requested API version from X-API-Version, then the
// Accept header, defaulting to the current version. A version the server does
// not speak is rejected with 400.
func APIVersion() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader(HeaderAPIVersion)
		if raw == "" {
			if m := acceptVersionRegex.FindStringSubmatch(c.GetHeader("Accept")); len(m) == 2 {
				raw = m[1]
			}
		}

		version := CurrentAPIVersion
		if raw != "" {
			v, err := strconv.Atoi(raw)
			if err != nil || v < MinAPIVersion || v > CurrentAPIVersion {
				utils.ErrorResponseWithError(c, errors.NewBadRequestError("unsupported API version", raw))
				c.Abort()
				return
			}
			version = v
		}

		c.Set(ContextKeyAPIVersion, version)
		c.Header(HeaderAPIVersion, strconv.Itoa(version))
		c.Next()
	}
}

// GetAPIVersion returns the API version from the Gin context.
func GetAPIVersion(c *gin.Context) int {
	if v, ok := c.Get(ContextKeyAPIVersion); ok {
		if ver, ok := v.(int); ok {
			return ver
		}
	}
	return CurrentAPIVersion
}
