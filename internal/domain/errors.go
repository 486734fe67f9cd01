package domain

import "errors"

// ErrNotFound is returned by repo and service functions when the requested
// resource does not exist — a subscriber token with no match, or a location
// the geocoder cannot resolve.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned by service functions when input fails business
// rule validation (e.g. missing required field, malformed email address).
// Handlers should map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")

// ErrDuplicate is returned when an insert violates a uniqueness constraint,
// in practice a second signup with an already-subscribed email address.
// Handlers should map this to HTTP 409 Conflict.
var ErrDuplicate = errors.New("already exists")
