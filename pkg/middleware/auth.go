package middleware

import (
	"strings"

	"tech-advisor/pkg/auth"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const LocalsSubject = "subject"

// TokenValidator is satisfied by *auth.JWTManager.
type TokenValidator interface {
	ValidateToken(token string) (*auth.Claims, error)
}

// AdminOnly rejects requests without a valid bearer token carrying the admin role.
func AdminOnly(validator TokenValidator, logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Get(fiber.HeaderAuthorization)
		if token == "" {
			logger.Warn("Missing authorization token", zap.String("path", c.Path()))
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Authorization token required",
			})
		}

		if len(token) > 7 && strings.EqualFold(token[:7], "Bearer ") {
			token = token[7:]
		}

		claims, err := validator.ValidateToken(token)
		if err != nil {
			logger.Warn("Invalid token", zap.Error(err))
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid or expired token",
			})
		}

		if !claims.IsAdmin() {
			logger.Warn("Non-admin token on admin endpoint",
				zap.String("subject", claims.Subject),
				zap.String("role", claims.Role),
			)
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Admin role required",
			})
		}

		c.Locals(LocalsSubject, claims.Subject)
		return c.Next()
	}
}
