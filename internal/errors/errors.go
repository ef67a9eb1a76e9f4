package errors

import (
	"errors"
	"fmt"
)

// Common error types for the library web front end
var (
	// Authentication errors
	ErrSubmissionInFlight = errors.New("a submission is already in progress")
	ErrResendThrottled    = errors.New("verification code was sent recently")

	// Token errors
	ErrMalformedToken     = errors.New("malformed token")
	ErrIdentityUnusable   = errors.New("identity unusable")
	ErrTokenNotReceived   = errors.New("authentication token not received")
	ErrUnsupportedPayload = errors.New("unsupported response payload")

	// Session errors
	ErrInvalidSession = errors.New("invalid session")

	// General errors
	ErrInvalidInput = errors.New("invalid input")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
