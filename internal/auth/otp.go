package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math/big"
)

var otpRange = big.NewInt(900000)

// GenerateOTP returns a 6-digit code in [100000, 999999]. The entropy space
// is small, so codes are bcrypt-hashed before storage and expire quickly;
// the source itself is crypto/rand to keep them unpredictable.
func GenerateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, otpRange)
	if err != nil {
		return "", fmt.Errorf("failed to generate otp: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}

// GenerateResetToken returns a 64-char hex string from 32 random bytes,
// unguessable within the reset window.
func GenerateResetToken() (string, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("failed to generate reset token: %w", err)
	}
	return hex.EncodeToString(raw), nil
}
