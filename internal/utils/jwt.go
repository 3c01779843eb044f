package utils

import (
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// JWTClaims custom claims for session tokens
type JWTClaims struct {
	UserID int `json:"id"`
	jwt.RegisteredClaims
}

// JWTUtil provides session token generation and validation
type JWTUtil struct {
	secretKey      string
	expirationDays int64
}

// NewJWTUtil creates a new JWTUtil
func NewJWTUtil(secretKey string, expirationDays int64) *JWTUtil {
	return &JWTUtil{secretKey: secretKey, expirationDays: expirationDays}
}

// ExpirationDuration is the validity window applied to issued tokens
func (ju *JWTUtil) ExpirationDuration() time.Duration {
	return time.Duration(ju.expirationDays) * 24 * time.Hour
}

// GenerateToken mints a signed token bound to a user ID
func (ju *JWTUtil) GenerateToken(userID int) (string, error) {
	claims := &JWTClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ju.ExpirationDuration())),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Subject:   strconv.Itoa(userID),
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(ju.secretKey))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

// ValidateToken validates a session token and returns its claims.
// Expiry and signature failures surface as distinct wrapped errors
// (jwt.ErrTokenExpired, jwt.ErrTokenSignatureInvalid) so callers can
// tell them apart while still showing a single generic message.
func (ju *JWTUtil) ValidateToken(tokenString string) (*JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(ju.secretKey), nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	if claims, ok := token.Claims.(*JWTClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, fmt.Errorf("invalid token")
}
