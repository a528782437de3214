// Package jwt issues and validates the bearer tokens used by
// authenticated routes. Tokens are HMAC-SHA256 signed.
package jwt

import (
	"errors"
	"fmt"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
)

var (
	// ErrNoSecret is returned when the signing secret is too short.
	ErrNoSecret = errors.New("jwt: secret must be at least 32 bytes")

	// ErrExpiredToken is returned when a token's expiry has passed.
	ErrExpiredToken = errors.New("jwt: token expired")

	// ErrInvalidToken is returned for malformed or badly signed tokens.
	ErrInvalidToken = errors.New("jwt: invalid token")
)

// Claims are the token claims carried by LifeForge bearer tokens.
type Claims struct {
	UserID    string `json:"user_id"`
	SessionID string `json:"session_id,omitempty"`
	gojwt.RegisteredClaims
}

// Service signs and parses bearer tokens.
type Service struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

// Option configures the Service.
type Option func(*Service)

// WithIssuer sets the iss claim on generated tokens.
func WithIssuer(issuer string) Option {
	return func(s *Service) { s.issuer = issuer }
}

// WithTTL sets the token lifetime. Defaults to 24 hours.
func WithTTL(ttl time.Duration) Option {
	return func(s *Service) { s.ttl = ttl }
}

// New creates a token service from a signing secret.
func New(secret string, opts ...Option) (*Service, error) {
	if len(secret) < 32 {
		return nil, ErrNoSecret
	}
	s := &Service{
		secret: []byte(secret),
		issuer: "lifeforge",
		ttl:    24 * time.Hour,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// WithSessionID sets the session_id claim on one generated token,
// tying it to a QR-login session.
func WithSessionID(id string) func(*Claims) {
	return func(c *Claims) { c.SessionID = id }
}

// Generate signs a token for the given user.
func (s *Service) Generate(userID string, opts ...func(*Claims)) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: userID,
		RegisteredClaims: gojwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   userID,
			IssuedAt:  gojwt.NewNumericDate(now),
			ExpiresAt: gojwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	for _, opt := range opts {
		opt(&claims)
	}

	token, err := gojwt.NewWithClaims(gojwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return token, nil
}

// Parse validates a token and returns its claims.
func (s *Service) Parse(token string) (*Claims, error) {
	var claims Claims
	parsed, err := gojwt.ParseWithClaims(token, &claims, func(t *gojwt.Token) (any, error) {
		if _, ok := t.Method.(*gojwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	switch {
	case errors.Is(err, gojwt.ErrTokenExpired):
		return nil, ErrExpiredToken
	case err != nil:
		return nil, ErrInvalidToken
	case !parsed.Valid:
		return nil, ErrInvalidToken
	}
	return &claims, nil
}
