package domain

import (
	"errors"
	"fmt"
)

// ErrUnauthorized covers every token problem: missing, malformed, expired or
// rejected by the provider. Callers must not branch on finer causes.
var ErrUnauthorized = errors.New("invalid or expired token")

var (
	ErrMissingAuthorization   = fmt.Errorf("%w: missing authorization header", ErrUnauthorized)
	ErrMalformedAuthorization = fmt.Errorf("%w: malformed authorization header", ErrUnauthorized)
)

var ErrInvalidPayload = errors.New("invalid payload")
var ErrProfileNotFound = errors.New("profile not found")

// ErrStorage marks a directory store failure that is not a plain absence.
var ErrStorage = errors.New("directory store failure")
