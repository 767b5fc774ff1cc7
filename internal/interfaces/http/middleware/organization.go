package middleware

import (
	"regexp"

	"github.com/gin-gonic/gin"

	"curriculum/internal/shared/constants"
	"curriculum/internal/shared/errors"
	"curriculum/internal/shared/utils"
)

var organizationIDPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.:-]{0,63}$`)

// RequireOrganization scopes the request to the organization named in
// X-Organization-ID. It is a tenancy boundary, not authentication.
func RequireOrganization() gin.HandlerFunc {
	return func(c *gin.Context) {
		orgID := c.GetHeader(constants.HeaderOrganizationID)
		if orgID == "" {
			utils.ErrorResponseWithError(c, errors.NewUnauthorizedError(constants.ErrMsgOrganizationMissing))
			c.Abort()
			return
		}
		if !organizationIDPattern.MatchString(orgID) {
			utils.ErrorResponseWithError(c, errors.NewValidationError("invalid organization id", orgID))
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyOrganizationID, orgID)
		c.Next()
	}
}

// OrganizationID returns the organization bound by RequireOrganization.
func OrganizationID(c *gin.Context) string {
	return c.GetString(constants.ContextKeyOrganizationID)
}
