// Package authjwt signs and validates the HS256 access tokens presented to the HTTP API.
package authjwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims is the subset of token claims the API relies on.
type Claims struct {
	UserID    string
	CityID    string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Provider issues and validates tokens.
type Provider interface {
	GenerateToken(claims Claims, ttl time.Duration) (string, error)
	ValidateToken(tokenString string) (*Claims, error)
}

type accessClaims struct {
	jwt.RegisteredClaims
	CityID string `json:"city_id,omitempty"`
}

type provider struct {
	secret []byte
}

// NewProvider creates a provider signing with secret.
func NewProvider(secret string) Provider {
	return &provider{secret: []byte(secret)}
}

func (p *provider) GenerateToken(claims Claims, ttl time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &accessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   claims.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		CityID: claims.CityID,
	})

	signed, err := token.SignedString(p.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

func (p *provider) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &accessClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidSignature
		}
		return p.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		if errors.Is(err, jwt.ErrTokenSignatureInvalid) {
			return nil, ErrInvalidSignature
		}
		return nil, ErrInvalidToken
	}

	parsed, ok := token.Claims.(*accessClaims)
	if !ok || !token.Valid || parsed.Subject == "" {
		return nil, ErrInvalidToken
	}

	claims := &Claims{
		UserID: parsed.Subject,
		CityID: parsed.CityID,
	}
	if parsed.IssuedAt != nil {
		claims.IssuedAt = parsed.IssuedAt.Time
	}
	if parsed.ExpiresAt != nil {
		claims.ExpiresAt = parsed.ExpiresAt.Time
	}
	return claims, nil
}
