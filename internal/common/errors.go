// Package common defines shared constants and sentinel errors used across
// the grievance server layers. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrInternal = errors.New("internal error")

	// Upload validation errors.
	ErrInvalidFileType = errors.New("file type not allowed")
	ErrPayloadTooLarge = errors.New("payload too large")
	ErrEmptyPayload    = errors.New("file is empty")

	// Object storage errors. Store failures wrap this value so the
	// transport layer can map the whole family to a 5xx response.
	ErrStorageUnavailable = errors.New("object storage unavailable")

	// Auth errors (invalid or malformed token, missing role).
	ErrUnauthorized = errors.New("unauthorized")
	ErrInvalidToken = errors.New("invalid token")
)
