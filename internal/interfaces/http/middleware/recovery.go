package middleware

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"runtime/debug"
	"syscall"

	"github.com/gin-gonic/gin"

	"curriculum/internal/shared/constants"
	"curriculum/internal/shared/errors"
	"curriculum/internal/shared/logger"
	"curriculum/internal/shared/utils"
)

// Recovery turns a handler panic into the import error envelope. The store
// transaction of an in-flight import rolls back as the panic unwinds through
// it, so the response reports a retryable rolled_back outcome.
func Recovery(log logger.Interface) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		if clientGone(recovered) {
			log.Warnw("client disconnected during request",
				"route", c.FullPath(),
				"request_id", c.GetString(constants.ContextKeyRequestID),
				"error", recovered)
			c.Abort()
			return
		}

		log.Errorw("request panicked",
			"method", c.Request.Method,
			"route", c.FullPath(),
			"request_id", c.GetString(constants.ContextKeyRequestID),
			"organization_id", c.GetString(constants.ContextKeyOrganizationID),
			"upload_bytes", c.Request.ContentLength,
			"panic", fmt.Sprint(recovered),
			"stack", string(debug.Stack()))

		if c.Writer.Written() {
			c.Abort()
			return
		}
		utils.ErrorResponseWithError(c, errors.NewInternalError(constants.ErrMsgInternalServerError))
		c.Abort()
	})
}

// clientGone reports a panic raised by writing to a closed connection.
func clientGone(recovered any) bool {
	err, ok := recovered.(error)
	if !ok {
		return false
	}
	return stderrors.Is(err, syscall.EPIPE) || stderrors.Is(err, syscall.ECONNRESET) || stderrors.Is(err, http.ErrAbortHandler)
}
