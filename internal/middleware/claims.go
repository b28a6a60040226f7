package middleware

import (
	"errors"

	"github.com/damilareoj/student-portal-backend/internal/auth"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// TokenClaims extracts the verified bearer-token claims set by JWTProtected.
func TokenClaims(c *fiber.Ctx) (*auth.Claims, error) {
	token, ok := c.Locals("user").(*jwt.Token)
	if !ok || token == nil {
		return nil, errors.New("invalid token in context")
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("invalid claims")
	}

	return auth.ClaimsFrom(mapClaims)
}
