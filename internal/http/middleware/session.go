package middleware

import (
	"github.com/gofiber/fiber/v2"

	"casedocs/internal/auth"
	"casedocs/internal/model"
)

// SessionLocalKey is the key under which the validated Session is stored in
// Fiber's context locals.
const SessionLocalKey = "session"

// SessionRequired gates protected routes. It reads the session cookie,
// validates it against the identity provider, and stores the resulting
// Session in locals for downstream handlers. Unauthenticated callers get 401
// before any handler runs; the gate never mutates the session itself.
func SessionRequired(a auth.Authenticator, cookieName string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Cookies(cookieName)
		if token == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "authentication required")
		}

		sess, err := a.Validate(c.UserContext(), token)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "session is not valid")
		}

		c.Locals(SessionLocalKey, sess)
		return c.Next()
	}
}

// SessionFromCtx returns the Session stored by SessionRequired, or nil when
// the route was not gated.
func SessionFromCtx(c *fiber.Ctx) *model.Session {
	if s, ok := c.Locals(SessionLocalKey).(*model.Session); ok {
		return s
	}
	return nil
}
