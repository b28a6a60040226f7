package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrTokenInvalid = errors.New("invalid or expired token")

// Claims is the identity carried by a signed bearer token.
type Claims struct {
	UserID uuid.UUID
	Role   string
}

// IssueToken signs an HS256 JWT embedding the user id and role, valid for
// ttl. The token is the sole proof of authentication; there is no
// server-side session or revocation list.
func IssueToken(secret string, userID uuid.UUID, role string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"id":   userID.String(),
		"role": role,
		"iat":  now.Unix(),
		"exp":  now.Add(ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseToken validates signature and expiry and returns the embedded claims.
func ParseToken(secret, tokenString string) (*Claims, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return nil, ErrTokenInvalid
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrTokenInvalid
	}

	return ClaimsFrom(mapClaims)
}

// ClaimsFrom extracts typed claims from already-verified JWT map claims.
func ClaimsFrom(mapClaims jwt.MapClaims) (*Claims, error) {
	idStr, _ := mapClaims["id"].(string)
	userID, err := uuid.Parse(idStr)
	if err != nil {
		return nil, ErrTokenInvalid
	}

	role, _ := mapClaims["role"].(string)
	if role == "" {
		return nil, ErrTokenInvalid
	}

	return &Claims{UserID: userID, Role: role}, nil
}
