package utils

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math/big"
)

const otpLength = 6

// GenerateOtp returns a random numeric code of exactly 6 digits, drawn
// from a cryptographic random source. Leading zeros are allowed.
func GenerateOtp() (string, error) {
	code := make([]byte, otpLength)
	for i := range code {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", fmt.Errorf("failed to generate otp digit: %w", err)
		}
		code[i] = byte('0' + n.Int64())
	}
	return string(code), nil
}

// HashOtp returns the hex-encoded SHA-256 digest of an OTP code. This is
// what gets persisted; the plaintext code only ever travels by mail.
func HashOtp(code string) string {
	sum := sha256.Sum256([]byte(code))
	return hex.EncodeToString(sum[:])
}
