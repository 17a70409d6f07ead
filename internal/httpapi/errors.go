package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"tgrelay/internal/common"
)

// statusFor maps pipeline errors onto HTTP statuses. Anything unclassified
// is a 500.
func statusFor(err error) int {
	switch {
	case errors.Is(err, common.ErrValidation),
		errors.Is(err, common.ErrNoSession),
		errors.Is(err, common.ErrNoPendingLogin):
		return http.StatusBadRequest
	case errors.Is(err, common.ErrUnauthorized),
		errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrAuth),
		errors.Is(err, common.ErrPasswordRequired):
		return http.StatusUnauthorized
	case errors.Is(err, common.ErrInvalidUploadToken):
		return http.StatusForbidden
	case errors.Is(err, common.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, common.ErrTokenNotConfigured),
		errors.Is(err, common.ErrAPICredsNotConfigured),
		errors.Is(err, common.ErrConfig):
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// publicMessage keeps response bodies terse; full error detail goes to the
// server log only.
func publicMessage(err error) string {
	for _, sentinel := range []error{
		common.ErrValidation,
		common.ErrNoSession,
		common.ErrNoPendingLogin,
		common.ErrPasswordRequired,
		common.ErrInvalidUploadToken,
		common.ErrTokenNotConfigured,
		common.ErrAPICredsNotConfigured,
		common.ErrUnauthorized,
		common.ErrInvalidToken,
		common.ErrAuth,
		common.ErrNotFound,
	} {
		if errors.Is(err, sentinel) {
			if errors.Is(err, common.ErrValidation) {
				// validation messages are written for the client
				return err.Error()
			}
			return sentinel.Error()
		}
	}
	return "internal server error"
}

func (s *Server) writeError(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error(c.Request.Context(), "request failed",
			"method", c.Request.Method, "path", c.FullPath(), "error", err)
	} else {
		s.logger.Warn(c.Request.Context(), "request rejected",
			"method", c.Request.Method, "path", c.FullPath(), "status", status, "error", err)
	}
	c.AbortWithStatusJSON(status, gin.H{"error": publicMessage(err)})
}
