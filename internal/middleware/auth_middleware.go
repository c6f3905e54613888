package middleware

import (
	"context"
	"strings"

	"go-inventory-api/internal/model"

	"github.com/gofiber/fiber/v2"
)

const actorKey = "actor"

// Authenticator resolves a bearer token to the acting user.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*model.Actor, error)
}

// RequireAuth is middleware that validates the JWT and stores the actor in context
func RequireAuth(auth Authenticator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Authorization header missing"})
		}

		// Extract token from "Bearer <token>"
		parts := strings.Fields(authHeader)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid authorization format. Use: Bearer <token>"})
		}

		actor, err := auth.Authenticate(c.UserContext(), parts[1])
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid or expired token"})
		}

		c.Locals(actorKey, actor)
		return c.Next()
	}
}

// Actor returns the authenticated user, or nil on public routes.
func Actor(c *fiber.Ctx) *model.Actor {
	actor, _ := c.Locals(actorKey).(*model.Actor)
	return actor
}
