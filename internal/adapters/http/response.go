package httpadapter

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/PabloGalante/paceful/internal/domain"
	"github.com/PabloGalante/paceful/internal/observability"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func respondError(c *gin.Context, status int, code string, msg string) {
	c.AbortWithStatusJSON(status, ErrorEnvelope{
		Error: APIError{Message: msg, Code: code},
	})
}

// respondDomainError maps sentinel errors to HTTP statuses. Internal details
// of storage failures are logged, not returned.
func respondDomainError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		respondError(c, http.StatusBadRequest, "invalid_input", err.Error())
	case errors.Is(err, domain.ErrNotFound):
		respondError(c, http.StatusNotFound, "not_found", "resource not found")
	case errors.Is(err, domain.ErrStorageUnavailable):
		observability.LoggerFromContext(c.Request.Context()).Errorw("storage unavailable", "error", err)
		respondError(c, http.StatusServiceUnavailable, "storage_unavailable", "storage temporarily unavailable")
	default:
		observability.LoggerFromContext(c.Request.Context()).Errorw("internal error", "error", err)
		respondError(c, http.StatusInternalServerError, "internal", "internal server error")
	}
}

func badRequest(c *gin.Context, msg string) {
	respondError(c, http.StatusBadRequest, "invalid_input", msg)
}
