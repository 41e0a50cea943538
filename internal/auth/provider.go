package auth

import (
	"context"
	"errors"
)

// ErrUnauthenticated matches every rejection returned by an AuthProvider.
var ErrUnauthenticated = errors.New("unauthenticated")

// AuthProvider turns a bearer token into an Identity.
type AuthProvider interface {
	// Authenticate returns an error wrapping ErrUnauthenticated when the
	// token is not accepted.
	Authenticate(ctx context.Context, token string) (*Identity, error)

	// Type is the value clients send in the X-Auth-Type header.
	Type() string
}

// AuthError records which provider rejected a token and why.
type AuthError struct {
	Provider string
	Reason   string
	Err      error
}

func (e *AuthError) Error() string {
	msg := e.Provider + ": " + e.Reason
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *AuthError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrUnauthenticated}
	}
	return []error{ErrUnauthenticated, e.Err}
}

func reject(provider, reason string, err error) error {
	return &AuthError{Provider: provider, Reason: reason, Err: err}
}
