// Package otp issues and verifies single-use email codes.
//
// Codes are numeric, hashed before storage, and expire after a
// configurable TTL. Verification is single-use: a successful check
// deletes the stored code.
package otp

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/lifeforge/forge/pkg/cache"
	"github.com/lifeforge/forge/pkg/mailer"
)

// ErrNotConfigured is returned when OTP functionality is used but the
// app was built without an OTP service.
var ErrNotConfigured = errors.New("otp: not configured")

const (
	defaultLength = 6
	defaultTTL    = 10 * time.Minute
	keyPrefix     = "otp:"
)

// Service issues and verifies one-time codes.
type Service struct {
	cache  cache.Cache[string]
	mailer *mailer.Mailer
	length int
	ttl    time.Duration
}

// Option configures the Service.
type Option func(*Service)

// WithLength sets the number of digits (default 6).
func WithLength(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.length = n
		}
	}
}

// WithTTL sets code lifetime (default 10 minutes).
func WithTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// New creates an OTP service. The mailer may be nil when codes are
// delivered out of band (Generate + Verify only).
func New(c cache.Cache[string], m *mailer.Mailer, opts ...Option) *Service {
	s := &Service{
		cache:  c,
		mailer: m,
		length: defaultLength,
		ttl:    defaultTTL,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Generate creates a code for the given email and stores its hash.
// Any previously issued code for the same email is replaced.
func (s *Service) Generate(ctx context.Context, email string) (string, error) {
	code, err := randomDigits(s.length)
	if err != nil {
		return "", fmt.Errorf("otp: generate code: %w", err)
	}
	if err := s.cache.Set(ctx, keyPrefix+email, hashCode(code), s.ttl); err != nil {
		return "", fmt.Errorf("otp: store code: %w", err)
	}
	return code, nil
}

// Send generates a code and emails it to the recipient.
func (s *Service) Send(ctx context.Context, email string) error {
	if s.mailer == nil {
		return ErrNotConfigured
	}
	code, err := s.Generate(ctx, email)
	if err != nil {
		return err
	}
	return s.mailer.SendRaw(ctx, &mailer.Email{
		To:      []string{email},
		Subject: "Your verification code",
		HTML:    fmt.Sprintf("<p>Your verification code is <strong>%s</strong>. It expires in %d minutes.</p>", code, int(s.ttl.Minutes())),
		Text:    fmt.Sprintf("Your verification code is %s. It expires in %d minutes.", code, int(s.ttl.Minutes())),
	})
}

// Verify checks a code against the stored hash. A match deletes the
// code so it cannot be replayed. Expired or unknown codes report false.
func (s *Service) Verify(ctx context.Context, email, code string) (bool, error) {
	stored, err := s.cache.Get(ctx, keyPrefix+email)
	if errors.Is(err, cache.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("otp: load code: %w", err)
	}
	if subtle.ConstantTimeCompare([]byte(stored), []byte(hashCode(code))) != 1 {
		return false, nil
	}
	if err := s.cache.Delete(ctx, keyPrefix+email); err != nil {
		return false, fmt.Errorf("otp: consume code: %w", err)
	}
	return true, nil
}

func randomDigits(n int) (string, error) {
	digits := make([]byte, n)
	for i := range digits {
		v, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		digits[i] = byte('0' + v.Int64())
	}
	return string(digits), nil
}

func hashCode(code string) string {
	sum := sha256.Sum256([]byte(code))
	return hex.EncodeToString(sum[:])
}
