package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GEO-SCOPE/geoscope-backend/internal/apperr"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

// RespondAppError maps the error taxonomy onto HTTP statuses. Upstream
// timeouts come back as 504 so clients know a retry is reasonable.
func RespondAppError(c *gin.Context, err error) {
	switch {
	case apperr.IsNotFound(err):
		RespondError(c, http.StatusNotFound, "not_found", err)
	case apperr.IsValidation(err):
		RespondError(c, http.StatusBadRequest, "validation_error", err)
	case apperr.IsInvalidState(err):
		RespondError(c, http.StatusConflict, "invalid_state", err)
	case apperr.IsUpstreamTimeout(err):
		RespondError(c, http.StatusGatewayTimeout, "upstream_timeout", err)
	default:
		RespondError(c, http.StatusInternalServerError, "internal_error", err)
	}
}
