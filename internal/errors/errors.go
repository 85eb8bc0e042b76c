package errors

import (
	"errors"
	"fmt"
)

// Common error types for the trakt facade
var (
	// Device authentication errors
	ErrAlreadyAuthenticating  = errors.New("authentication has already been started")
	ErrAuthenticationAborted  = errors.New("device authentication aborted")
	ErrAuthenticationExpired  = errors.New("device authentication expired")
	ErrAuthenticationRequired = errors.New("authentication required")

	// Token errors
	ErrTokenNotFound = errors.New("token not found")

	// Credential errors
	ErrMissingCredential = errors.New("missing credential")

	// General errors
	ErrNotFound = errors.New("not found")
	ErrInternal = errors.New("internal error")
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
