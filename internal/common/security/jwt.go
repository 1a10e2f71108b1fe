package security

import (
	"errors"
	"fmt"
	"time"

	"tasktrack/internal/common"

	"github.com/go-chi/jwtauth/v5"
	"github.com/golang-jwt/jwt/v5"
)

// TokenManager issues and verifies the signed bearer credentials that scope
// every protected request to a user. Tokens are HS256 with a fixed lifetime.
type TokenManager struct {
	auth *jwtauth.JWTAuth
	ttl  time.Duration
}

func NewTokenManager(secret []byte, ttl time.Duration) *TokenManager {
	return &TokenManager{
		auth: jwtauth.New("HS256", secret, nil),
		ttl:  ttl,
	}
}

// Auth exposes the underlying verifier for the jwtauth middleware.
func (m *TokenManager) Auth() *jwtauth.JWTAuth {
	return m.auth
}

func (m *TokenManager) IssueToken(userID string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"user_id": userID,
		"exp":     now.Add(m.ttl).Unix(),
		"iat":     now.Unix(),
	}
	_, tokenString, err := m.auth.Encode(claims)
	return tokenString, err
}

// VerifyToken checks signature and expiration and returns the bound user id.
// Malformed, tampered and expired tokens all come back as ErrUnauthorized;
// the caller never learns which check failed.
func (m *TokenManager) VerifyToken(tokenString string) (string, error) {
	token, err := jwtauth.VerifyToken(m.auth, tokenString)
	if err != nil {
		return "", fmt.Errorf("invalid credential: %w", common.ErrUnauthorized)
	}
	raw, ok := token.Get("user_id")
	if !ok {
		return "", fmt.Errorf("user_id claim missing: %w", common.ErrUnauthorized)
	}
	userID, ok := raw.(string)
	if !ok || userID == "" {
		return "", fmt.Errorf("user_id claim malformed: %w", common.ErrUnauthorized)
	}
	return userID, nil
}

// GetUserIDFromClaims extracts the user id from claims already decoded by the
// jwtauth middleware.
func GetUserIDFromClaims(claims jwt.MapClaims) (string, error) {
	id, ok := claims["user_id"].(string)
	if !ok || id == "" {
		return "", errors.New("user_id claim is missing or not a string")
	}
	return id, nil
}
