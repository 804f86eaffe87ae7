package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/classroom-api/internal/session"
	"github.com/noah-isme/classroom-api/internal/utils"
)

// SessionCookieName is the cookie carrying the session identifier.
const SessionCookieName = "classroom_session"

const principalLocalKey = "principal"

// LoadSession resolves the session cookie into a Principal and stores it in
// request locals. Requests without a valid session pass through anonymously;
// RequireRole decides whether that is acceptable.
func LoadSession(manager *session.Manager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sessionID := c.Cookies(SessionCookieName)
		if sessionID == "" {
			return c.Next()
		}

		principal, err := manager.Get(c.Context(), sessionID)
		if err != nil {
			if errors.Is(err, session.ErrNotFound) {
				return c.Next()
			}
			return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
		}

		c.Locals(principalLocalKey, principal)
		return c.Next()
	}
}

// RequireRole guards a route group behind one session role. Roles are
// mutually exclusive: a student session never satisfies an instructor
// guard, and vice versa.
func RequireRole(role string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
		}

		if principal.Role != role {
			return utils.SendError(c, fiber.StatusForbidden, "insufficient permissions")
		}

		return c.Next()
	}
}

// PrincipalFromContext extracts the authenticated principal, if any.
func PrincipalFromContext(c *fiber.Ctx) (session.Principal, bool) {
	if v := c.Locals(principalLocalKey); v != nil {
		if principal, ok := v.(session.Principal); ok {
			return principal, true
		}
	}
	return session.Principal{}, false
}
