// Package http is the REST surface of the grievance server, built on gin.
// Handlers translate between the wire format and the services; all business
// rules live below this package.
package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/citizendesk/grievance-server/internal/common"
)

// statusFor maps the service sentinels onto HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, common.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, common.ErrInvalidFileType),
		errors.Is(err, common.ErrEmptyPayload):
		return http.StatusBadRequest
	case errors.Is(err, common.ErrPayloadTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, common.ErrStorageUnavailable):
		return http.StatusBadGateway
	case errors.Is(err, common.ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, common.ErrUnauthorized):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

func writeError(c *gin.Context, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		// do not leak internals
		msg = "internal error"
	}
	c.JSON(status, gin.H{"error": msg})
}
