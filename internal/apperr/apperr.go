package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound marks a referenced entity that does not exist or does not
	// belong to the caller's project.
	ErrNotFound = errors.New("not found")
	// ErrInvalidState marks an operation that violates a lifecycle invariant.
	ErrInvalidState = errors.New("invalid state")
	// ErrValidation marks malformed input rejected before any persistence.
	ErrValidation = errors.New("validation failed")
	// ErrUpstreamTimeout marks an external backend call that exceeded its
	// time budget. Retryable at the caller's discretion.
	ErrUpstreamTimeout = errors.New("upstream timeout")
	// ErrUnauthorized marks a missing or invalid caller identity.
	ErrUnauthorized = errors.New("unauthorized")
)

func NotFound(entity string, id interface{}) error {
	return fmt.Errorf("%s %v: %w", entity, id, ErrNotFound)
}

func InvalidState(format string, args ...interface{}) error {
	return fmt.Errorf(format+": %w", append(args, ErrInvalidState)...)
}

func Validation(format string, args ...interface{}) error {
	return fmt.Errorf(format+": %w", append(args, ErrValidation)...)
}

func UpstreamTimeout(op string, err error) error {
	if err != nil {
		return fmt.Errorf("%s: %v: %w", op, err, ErrUpstreamTimeout)
	}
	return fmt.Errorf("%s: %w", op, ErrUpstreamTimeout)
}

func IsNotFound(err error) bool        { return errors.Is(err, ErrNotFound) }
func IsInvalidState(err error) bool    { return errors.Is(err, ErrInvalidState) }
func IsValidation(err error) bool      { return errors.Is(err, ErrValidation) }
func IsUpstreamTimeout(err error) bool { return errors.Is(err, ErrUpstreamTimeout) }
