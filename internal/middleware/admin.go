package middleware

import (
	"github.com/damilareoj/student-portal-backend/internal/dto"
	"github.com/damilareoj/student-portal-backend/internal/models"
	"github.com/gofiber/fiber/v2"
)

// AdminRequired gates a route on the role claim of the bearer token. It
// must run after JWTProtected.
func AdminRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, err := TokenClaims(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: "Unauthorized",
			})
		}

		if claims.Role != models.RoleAdmin {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Error: true, Message: "Admin access required",
			})
		}

		return c.Next()
	}
}
