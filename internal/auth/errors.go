package auth

import (
	"errors"
	"fmt"
	"strings"
)

// The enumerated authentication failure reasons. Handlers map these onto
// stable machine codes and human-readable text; none of them is retried
// automatically.
var (
	ErrInvalidCredential = errors.New("invalid email or password")
	ErrMalformedEmail    = errors.New("malformed email address")
	ErrEmailInUse        = errors.New("email already in use")
	ErrWeakPassword      = errors.New("password does not meet provider requirements")
	ErrRateLimited       = errors.New("too many attempts, try again later")
	ErrSessionInvalid    = errors.New("session is not valid")
)

// classify maps a raw provider error onto the taxonomy. The Authorizer API
// reports failures as GraphQL error messages, so matching is on message
// substrings; anything unrecognized is wrapped and passed through as the
// "unknown" reason.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	msg := strings.ToLower(err.Error())

	switch {
	case strings.Contains(msg, "bad user credentials"),
		strings.Contains(msg, "invalid password"),
		strings.Contains(msg, "user not found"):
		return ErrInvalidCredential
	case strings.Contains(msg, "invalid email"):
		return ErrMalformedEmail
	case strings.Contains(msg, "already signed up"),
		strings.Contains(msg, "already registered"),
		strings.Contains(msg, "already exists"):
		return ErrEmailInUse
	case strings.Contains(msg, "password") && (strings.Contains(msg, "weak") ||
		strings.Contains(msg, "not valid") ||
		strings.Contains(msg, "at least")):
		return ErrWeakPassword
	case strings.Contains(msg, "too many"),
		strings.Contains(msg, "rate limit"):
		return ErrRateLimited
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
