package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"easyrent/internal/domain"
	"easyrent/internal/http/middleware"
	"easyrent/internal/utils"
	"easyrent/internal/workflow"
)

func respondError(c *gin.Context, status int, code, message string, extra gin.H) {
	if code == "" {
		code = http.StatusText(status)
	}
	payload := gin.H{
		"message":    message,
		"code":       code,
		"error":      message,
		"request_id": middleware.GetRequestID(c),
	}
	for k, v := range extra {
		payload[k] = v
	}
	c.JSON(status, payload)
}

// classify maps a domain error to status, code and a client-safe message.
func classify(err error) (int, string, string) {
	var verr domain.ValidationError
	switch {
	case domain.IsCaptchaMismatch(err):
		return http.StatusBadRequest, "captcha_mismatch", "Captcha does not match. Please try again."
	case errors.As(err, &verr):
		return http.StatusBadRequest, "validation_error", err.Error()
	case domain.IsLookup(err):
		return http.StatusUnprocessableEntity, "lookup_failed", err.Error()
	case domain.IsUnauthenticated(err):
		return http.StatusUnauthorized, "unauthorized", err.Error()
	case domain.IsAuthorization(err):
		return http.StatusForbidden, "forbidden", err.Error()
	case domain.IsNotFound(err):
		return http.StatusNotFound, "not_found", err.Error()
	case domain.IsConflict(err):
		return http.StatusConflict, "conflict", err.Error()
	case domain.IsPersistence(err):
		return http.StatusInternalServerError, "persistence_error", err.Error()
	default:
		return http.StatusInternalServerError, "internal_error", "internal error"
	}
}

// RespondDomainError maps domain errors to HTTP responses.
func RespondDomainError(c *gin.Context, err error) {
	respondWithError(c, err, nil)
}

// respondSessionError answers a failed workflow step with the session the
// client should keep rendering.
func respondSessionError(c *gin.Context, s *workflow.Session, err error) {
	if s == nil {
		respondWithError(c, err, nil)
		return
	}
	respondWithError(c, err, gin.H{"session": s})
}

func respondWithError(c *gin.Context, err error, extra gin.H) {
	status, code, msg := classify(err)
	if status >= http.StatusInternalServerError {
		utils.LogEvent(middleware.GetRequestID(c), "http", "error", "path", c.FullPath(), "error", err)
	}
	var verr domain.ValidationError
	if errors.As(err, &verr) && verr.Field != "" {
		if extra == nil {
			extra = gin.H{}
		}
		extra["field"] = verr.Field
	}
	respondError(c, status, code, msg, extra)
}
