// Package auth is the thin adapter in front of the hosted identity provider.
// It issues login/register/logout calls, validates session tokens, and maps
// provider failures onto a fixed taxonomy of reasons. No credential material
// is stored or verified locally.
package auth

import (
	"context"

	"casedocs/internal/model"
)

// Authenticator is the Credential Service Adapter port. A single failed call
// is surfaced immediately to the caller; there is no retry policy.
type Authenticator interface {
	// Login exchanges email+password for a Session and an opaque provider
	// token. Failures carry one of the sentinel errors from this package.
	Login(ctx context.Context, email, password string) (*model.Session, string, error)

	// Register creates the account at the provider and signs it in.
	Register(ctx context.Context, email, password string) (*model.Session, string, error)

	// Logout revokes the provider token. A missing or already-expired token
	// is not an error.
	Logout(ctx context.Context, token string) error

	// Validate resolves a provider token into the Session it represents, or
	// ErrSessionInvalid when the token is absent, expired or revoked.
	Validate(ctx context.Context, token string) (*model.Session, error)
}
