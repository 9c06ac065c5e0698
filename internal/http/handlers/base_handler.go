// Package handlers implements the gin handler functions for the chat,
// wishlist, rating, purchase, user, admin, and health surfaces.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/KHY90/cartpilot-backend/internal/apperr"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(c *gin.Context, status int, v any) {
	c.JSON(status, v)
}

func writeError(c *gin.Context, status int, msg string) {
	writeJSON(c, status, errorResponse{Error: msg})
}

// writeAppError maps the apperr taxonomy onto HTTP status, the
// generalized form of the teacher's writeOrderError switch.
func writeAppError(c *gin.Context, err error) {
	appErr, ok := apperr.As(err)
	if !ok {
		writeError(c, http.StatusInternalServerError, "internal error")
		return
	}

	status := http.StatusInternalServerError
	switch appErr.Kind {
	case apperr.KindValidation:
		status = http.StatusUnprocessableEntity
	case apperr.KindNotFound:
		status = http.StatusNotFound
	case apperr.KindConflict:
		status = http.StatusConflict
	case apperr.KindForbidden:
		status = http.StatusForbidden
	case apperr.KindUnauthorized:
		status = http.StatusUnauthorized
	case apperr.KindUpstreamAuth:
		status = http.StatusBadGateway
	case apperr.KindUpstreamRateLimited, apperr.KindUpstreamUnavailable:
		status = http.StatusServiceUnavailable
	case apperr.KindDeadlineExceeded:
		status = http.StatusGatewayTimeout
	case apperr.KindModelResponseInvalid, apperr.KindAnalyzerFailure:
		status = http.StatusBadGateway
	}
	writeError(c, status, appErr.Message)
}

// writeStoreError maps a module store's sentinel errors to a status code
// when the caller has no apperr.Error to hand off (the stores return plain
// sentinels, not taxonomized errors).
func writeStoreError(c *gin.Context, err error, notFound, conflict error) {
	switch {
	case errors.Is(err, notFound):
		writeError(c, http.StatusNotFound, err.Error())
	case conflict != nil && errors.Is(err, conflict):
		writeError(c, http.StatusConflict, err.Error())
	default:
		writeError(c, http.StatusInternalServerError, "internal error")
	}
}
