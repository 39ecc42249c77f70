package services

import "errors"

// Error kinds surfaced to callers. Handlers map these to HTTP statuses with
// errors.Is; messages are wrapped around them with fmt.Errorf("...: %w", ...).
var (
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrInvalidState = errors.New("invalid state")
	ErrValidation   = errors.New("validation failed")

	// ErrExternalService marks a mapping-collaborator failure. It never
	// reaches callers: route optimization recovers by falling back to the
	// local nearest-neighbor heuristic.
	ErrExternalService = errors.New("external service failure")
)
