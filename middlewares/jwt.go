package middlewares

import (
	"errors"

	"github.com/lifeforge/forge/internal"
	"github.com/lifeforge/forge/pkg/jwt"
)

// jwtClaimsKey is the context key under which parsed claims are stored.
type jwtClaimsKey struct{}

// JWTConfig configures the JWT middleware.
type JWTConfig struct {
	Extractor    internal.Extractor
	extractorSet bool
}

// JWTOption configures JWTConfig.
type JWTOption func(*JWTConfig)

// WithJWTExtractor sets a custom token extractor chain.
func WithJWTExtractor(ext internal.Extractor) JWTOption {
	return func(cfg *JWTConfig) {
		cfg.Extractor = ext
		cfg.extractorSet = true
	}
}

// JWT returns middleware that extracts a bearer token from the request,
// validates it, and stores the parsed claims in the context. Module
// routes authenticate through the controller pipeline; this middleware
// is for plain handlers that need the same tokens.
func JWT(svc *jwt.Service, opts ...JWTOption) internal.Middleware {
	cfg := JWTConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	if !cfg.extractorSet {
		// Authorization: Bearer <token> unless overridden.
		cfg.Extractor = internal.NewExtractor(internal.FromBearerToken())
	}

	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			token, ok := cfg.Extractor.Extract(c)
			if !ok || token == "" {
				return internal.ErrUnauthorized("missing authentication token")
			}

			claims, err := svc.Parse(token)
			if err != nil {
				if errors.Is(err, jwt.ErrExpiredToken) {
					return internal.ErrUnauthorized("token expired")
				}
				return internal.ErrUnauthorized("invalid token")
			}

			c.Set(jwtClaimsKey{}, claims)

			return next(c)
		}
	}
}

// GetJWTClaims returns the claims stored by the JWT middleware, or nil
// when it is not installed on the route.
func GetJWTClaims(c internal.Context) *jwt.Claims {
	v, _ := c.Get(jwtClaimsKey{}).(*jwt.Claims)
	return v
}
