package middleware

import (
	"errors"
	"log"
	"strings"

	"gopress/internal/services"

	"github.com/gofiber/fiber/v2"
)

// SessionCookie is the cookie carrying the session token.
const SessionCookie = "session_token"

// CurrentUserKey is the locals key under which SessionRequired stores the
// resolved *models.User.
const CurrentUserKey = "current_user"

// TokenFromRequest extracts the session token from the session cookie or,
// failing that, from a Bearer Authorization header. Returns "" when the
// request carries no token.
func TokenFromRequest(c *fiber.Ctx) string {
	if token := c.Cookies(SessionCookie); token != "" {
		return token
	}
	authHeader := c.Get("Authorization")
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) == 2 && parts[0] == "Bearer" {
		return parts[1]
	}
	return ""
}

// SessionRequired is a Fiber middleware that resolves the session token to
// the current user once per request. Unauthenticated requests get a 401
// with a log-in prompt; the originally requested action is discarded.
func SessionRequired(authService *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := TokenFromRequest(c)
		if token == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Please log in first!",
			})
		}

		user, err := authService.ResolveSession(c.UserContext(), token)
		if err != nil {
			if errors.Is(err, services.ErrUnauthenticated) {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
					"message": "Please log in first!",
				})
			}
			log.Printf("Session resolution failed: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"message": "Could not resolve session",
			})
		}

		// Store the resolved identity for subsequent handlers
		c.Locals(CurrentUserKey, user)

		return c.Next()
	}
}
