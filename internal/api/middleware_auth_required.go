package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/periodical/internal/security"
)

const contextSubjectKey = "token_subject"

// AuthRequired accepts a bearer token signed with the configured secret.
func (handler *Handler) AuthRequired(c *fiber.Ctx) error {
	claims, err := security.ParseToken(handler.secretKey, security.BearerToken(c.Get(fiber.HeaderAuthorization)))
	if err != nil {
		c.Set(fiber.HeaderWWWAuthenticate, `Bearer realm="periodical"`)
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	c.Locals(contextSubjectKey, claims.Subject)
	return c.Next()
}
