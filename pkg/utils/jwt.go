package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const tokenIssuer = "receipt-print-api"

// TerminalClaims represents the claims in a terminal access token
type TerminalClaims struct {
	TerminalID string `json:"terminal_id"`
	Name       string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// JWTManager handles JWT token generation and validation
type JWTManager struct {
	secretKey   []byte
	tokenExpiry time.Duration
}

// NewJWTManager creates a new JWT manager
func NewJWTManager(secret string, expiry time.Duration) *JWTManager {
	return &JWTManager{
		secretKey:   []byte(secret),
		tokenExpiry: expiry,
	}
}

// Expiry returns the lifetime of issued tokens
func (m *JWTManager) Expiry() time.Duration {
	return m.tokenExpiry
}

// GenerateTerminalToken issues an access token for a paired POS terminal
func (m *JWTManager) GenerateTerminalToken(terminalID, name string) (string, error) {
	now := time.Now()
	claims := &TerminalClaims{
		TerminalID: terminalID,
		Name:       name,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(m.tokenExpiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    tokenIssuer,
			Subject:   terminalID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secretKey)
}

// ValidateTerminalToken validates an access token and returns the claims
func (m *JWTManager) ValidateTerminalToken(tokenString string) (*TerminalClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &TerminalClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.secretKey, nil
	}, jwt.WithIssuer(tokenIssuer))

	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*TerminalClaims)
	if !ok || !token.Valid || claims.TerminalID == "" {
		return nil, errors.New("invalid token")
	}

	return claims, nil
}
