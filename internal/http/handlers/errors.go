package handlers

import (
	"net/http"

	"washops/internal/domain"
	"washops/internal/http/middleware"

	"github.com/gin-gonic/gin"
)

func respondError(c *gin.Context, status int, code, message string) {
	if code == "" {
		code = http.StatusText(status)
	}
	c.JSON(status, gin.H{
		"error":      message,
		"code":       code,
		"request_id": middleware.GetRequestID(c),
	})
}

// RespondDomainError maps the engine's error taxonomy to HTTP responses.
// Upstream failures carry a retry affordance; transition and reference
// errors are terminal for the attempted action.
func RespondDomainError(c *gin.Context, err error) {
	switch {
	case domain.IsValidation(err):
		respondError(c, http.StatusBadRequest, "validation_error", err.Error())
	case domain.IsNotFound(err):
		respondError(c, http.StatusNotFound, "not_found", err.Error())
	case domain.IsInvalidReference(err):
		respondError(c, http.StatusUnprocessableEntity, "invalid_reference", err.Error())
	case domain.IsAlreadyRedeemed(err):
		respondError(c, http.StatusConflict, "already_redeemed", err.Error())
	case domain.IsInvalidTransition(err):
		respondError(c, http.StatusConflict, "invalid_transition", err.Error())
	case domain.IsResourceUnavailable(err):
		respondError(c, http.StatusServiceUnavailable, "resource_unavailable", err.Error())
	case domain.IsStaleData(err):
		respondError(c, http.StatusConflict, "stale_data", err.Error())
	case domain.IsUpstream(err):
		c.JSON(http.StatusBadGateway, gin.H{
			"error":      err.Error(),
			"code":       "upstream_error",
			"retriable":  true,
			"request_id": middleware.GetRequestID(c),
		})
	default:
		respondError(c, http.StatusInternalServerError, "internal_error", "something went wrong")
	}
}
