package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/KennyKvn001/BusB/internal/domain"
	"github.com/KennyKvn001/BusB/internal/http/middleware"
)

// ErrorResponse standardizes error payloads.
type ErrorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code,omitempty"`
	Details   any    `json:"details,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

func respondError(c *gin.Context, status int, code, message string, details any) {
	if code == "" {
		code = http.StatusText(status)
	}
	c.JSON(status, ErrorResponse{
		Error:     message,
		Code:      code,
		Details:   details,
		RequestID: middleware.GetRequestID(c),
	})
}

// RespondDomainError maps the domain error taxonomy to HTTP responses. The
// wrapped cause of an internal error is logged, never sent to the client.
func RespondDomainError(c *gin.Context, err error) {
	switch {
	case domain.IsValidation(err):
		respondError(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	case domain.IsBusiness(err):
		respondError(c, http.StatusBadRequest, "business_logic_error", err.Error(), nil)
	case domain.IsAuthentication(err):
		respondError(c, http.StatusUnauthorized, "authentication_error", err.Error(), nil)
	case domain.IsAuthorization(err):
		respondError(c, http.StatusForbidden, "authorization_error", err.Error(), nil)
	case domain.IsNotFound(err):
		respondError(c, http.StatusNotFound, "resource_not_found", err.Error(), nil)
	case domain.IsConflict(err):
		respondError(c, http.StatusConflict, "conflict", err.Error(), nil)
	case domain.IsInternal(err):
		log.Printf("[ERROR] request_id=%s %v", middleware.GetRequestID(c), err)
		respondError(c, http.StatusInternalServerError, "server_error", "an internal error occurred", nil)
	default:
		log.Printf("[ERROR] request_id=%s unclassified error: %v", middleware.GetRequestID(c), err)
		respondError(c, http.StatusInternalServerError, "server_error", "an internal error occurred", nil)
	}
}
