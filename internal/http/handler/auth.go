package handler

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"casedocs/internal/auth"
	"casedocs/internal/config"
)

// credentialsRequest is the body of login and register calls.
type credentialsRequest struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password,omitempty"`
}

// minPasswordLength mirrors the provider's minimum so obviously short
// passwords are rejected before a network call.
const minPasswordLength = 6

func setSessionCookie(c *fiber.Ctx, cfg config.SessionConfig, token string) {
	c.Cookie(&fiber.Cookie{
		Name:     cfg.CookieName,
		Value:    token,
		Path:     "/",
		HTTPOnly: true,
		Secure:   cfg.CookieSecure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

func clearSessionCookie(c *fiber.Ctx, cfg config.SessionConfig) {
	c.Cookie(&fiber.Cookie{
		Name:     cfg.CookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		HTTPOnly: true,
		Secure:   cfg.CookieSecure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// writeAuthError maps the credential adapter's failure taxonomy onto stable
// machine codes. Every reason returns control to the caller for a manual
// retry; nothing here is fatal.
func writeAuthError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, auth.ErrInvalidCredential):
		return writeError(c, fiber.StatusUnauthorized, "INVALID_CREDENTIAL", "invalid email or password")
	case errors.Is(err, auth.ErrMalformedEmail):
		return writeError(c, fiber.StatusBadRequest, "MALFORMED_EMAIL", "email address is malformed")
	case errors.Is(err, auth.ErrEmailInUse):
		return writeError(c, fiber.StatusConflict, "EMAIL_IN_USE", "email is already registered")
	case errors.Is(err, auth.ErrWeakPassword):
		return writeError(c, fiber.StatusUnprocessableEntity, "WEAK_PASSWORD", "password does not meet requirements")
	case errors.Is(err, auth.ErrRateLimited):
		return writeError(c, fiber.StatusTooManyRequests, "RATE_LIMITED", "too many attempts, try again later")
	default:
		return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
}

// Login signs an existing user in and sets the session cookie.
func Login(a auth.Authenticator, cfg config.SessionConfig) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req credentialsRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "cannot parse request body")
		}
		req.Email = strings.TrimSpace(req.Email)
		if req.Email == "" || req.Password == "" {
			return writeError(c, fiber.StatusBadRequest, "VALIDATION_ERROR", "email and password are required")
		}

		sess, token, err := a.Login(c.UserContext(), req.Email, req.Password)
		if err != nil {
			return writeAuthError(c, err)
		}

		setSessionCookie(c, cfg, token)
		return c.JSON(sess)
	}
}

// Register creates a new account at the identity provider and signs it in.
// Local validation (empty fields, mismatch, obviously short password) is
// rejected before any provider call.
func Register(a auth.Authenticator, cfg config.SessionConfig) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req credentialsRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "cannot parse request body")
		}
		req.Email = strings.TrimSpace(req.Email)
		if req.Email == "" || req.Password == "" {
			return writeError(c, fiber.StatusBadRequest, "VALIDATION_ERROR", "email and password are required")
		}
		if len(req.Password) < minPasswordLength {
			return writeError(c, fiber.StatusBadRequest, "PASSWORD_TOO_SHORT", "password must be at least 6 characters")
		}
		if req.ConfirmPassword != req.Password {
			return writeError(c, fiber.StatusBadRequest, "PASSWORD_MISMATCH", "passwords do not match")
		}

		sess, token, err := a.Register(c.UserContext(), req.Email, req.Password)
		if err != nil {
			return writeAuthError(c, err)
		}

		setSessionCookie(c, cfg, token)
		return c.Status(fiber.StatusCreated).JSON(sess)
	}
}

// Logout revokes the provider session and clears the cookie. Logging out
// without a session is a no-op, not an error.
func Logout(a auth.Authenticator, cfg config.SessionConfig) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Cookies(cfg.CookieName)
		if token != "" {
			_ = a.Logout(c.UserContext(), token)
		}
		clearSessionCookie(c, cfg)
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// CurrentSession reports the caller's session, or 401 when it is absent or
// expired. Browser clients poll this once on mount to resolve their gate.
func CurrentSession(a auth.Authenticator, cfg config.SessionConfig) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Cookies(cfg.CookieName)
		if token == "" {
			return writeError(c, fiber.StatusUnauthorized, "UNAUTHENTICATED", "no active session")
		}
		sess, err := a.Validate(c.UserContext(), token)
		if err != nil {
			return writeError(c, fiber.StatusUnauthorized, "UNAUTHENTICATED", "session is not valid")
		}
		return c.JSON(sess)
	}
}
