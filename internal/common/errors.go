// Package common defines shared constants and sentinel errors used across
// the layers of chatrelay. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal      = errors.New("internal error")
	ErrorAlreadyExists = errors.New("already exists")
	ErrorValidation    = errors.New("validation error")

	// Registry errors. ErrUsernameTaken is the connect-time conflict:
	// another live session already holds the username. Recoverable by the
	// client (retry with a different username).
	ErrUsernameTaken = errors.New("username already in use")

	// Session errors. ErrMalformedFrame marks an inbound payload that does
	// not match the expected frame shape; it terminates the offending
	// session only.
	ErrMalformedFrame = errors.New("malformed frame")
)
