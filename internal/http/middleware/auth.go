package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"docrag/internal/auth"
	"docrag/internal/model"
)

// ActorLocalKey is the key under which Authenticate stores the model.Actor.
const ActorLocalKey = "actor"

// Authenticate requires an "Authorization: Bearer <token>" header and stores
// the resolved actor in the context locals. Any failure is a 401.
func Authenticate(a auth.Authenticator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		scheme, token, ok := strings.Cut(c.Get(fiber.HeaderAuthorization), " ")
		token = strings.TrimSpace(token)
		if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
			return fiber.ErrUnauthorized
		}
		actor, err := a.Authenticate(c.UserContext(), token)
		if err != nil {
			return fiber.ErrUnauthorized
		}
		c.Locals(ActorLocalKey, actor)
		return c.Next()
	}
}

// ActorFrom returns the actor stored by Authenticate.
func ActorFrom(c *fiber.Ctx) (model.Actor, bool) {
	actor, ok := c.Locals(ActorLocalKey).(model.Actor)
	return actor, ok
}
