package errors

import (
	"errors"
	"fmt"
)

// Common error types for the authentication server
var (
	// Token errors
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")

	// Provider errors
	ErrTokenExchange = errors.New("token exchange failed")
	ErrIDToken       = errors.New("invalid id token")

	// Flow errors
	ErrProviderError    = errors.New("identity provider returned an error")
	ErrMissingParameter = errors.New("missing parameter")
	ErrInvalidState     = errors.New("invalid or expired state")
)

// AuthenticationError is returned for every failure of the login flow and of
// internal token verification. Message is shown to the end user, Err keeps the
// cause for errors.Is / errors.As.
type AuthenticationError struct {
	Message string
	Err     error
}

// NewAuthenticationError builds an AuthenticationError wrapping err. The
// formatted message is used verbatim as the error text.
func NewAuthenticationError(err error, format string, args ...interface{}) *AuthenticationError {
	return &AuthenticationError{
		Message: fmt.Sprintf(format, args...),
		Err:     err,
	}
}

func (e *AuthenticationError) Error() string {
	return e.Message
}

func (e *AuthenticationError) Unwrap() error {
	return e.Err
}

// IsAuthenticationError reports whether err carries an AuthenticationError
func IsAuthenticationError(err error) bool {
	var authErr *AuthenticationError
	return errors.As(err, &authErr)
}

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
