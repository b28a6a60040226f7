package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

const hashCost = 10

// HashSecret hashes a password or OTP code with bcrypt. Both kinds of
// secret go through the same mechanism so nothing is ever stored plaintext.
func HashSecret(plain string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(plain), hashCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash secret: %w", err)
	}
	return string(digest), nil
}

// CheckSecret reports whether plain matches the stored bcrypt digest.
func CheckSecret(plain, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plain)) == nil
}
