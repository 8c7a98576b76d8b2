// Package auth issues and verifies operator tokens for the admin API.
package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// TokenTTL is the lifetime of an issued operator token.
const TokenTTL = 24 * time.Hour

// JWTManager signs and verifies operator tokens with an HMAC secret.
type JWTManager struct {
	secret []byte
}

// NewJWTManager creates a manager from the configured admin secret.
func NewJWTManager(secret string) (*JWTManager, error) {
	if len(secret) < 16 {
		return nil, fmt.Errorf("admin secret must be at least 16 bytes")
	}
	return &JWTManager{secret: []byte(secret)}, nil
}

// IssueToken creates a signed token for the given operator.
func (m *JWTManager) IssueToken(operator string) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   operator,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(TokenTTL)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// VerifyToken parses and validates a token, returning its claims.
func (m *JWTManager) VerifyToken(tokenStr string) (*jwt.RegisteredClaims, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}

// CheckPassword compares a plaintext password against the stored bcrypt hash.
func CheckPassword(hash, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return fmt.Errorf("password mismatch: %w", err)
	}
	return nil
}

// HashPassword produces a bcrypt hash for operator provisioning tooling.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}
