package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"coursehub/internal/domain"
	"coursehub/internal/domain/models"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"
)

// NewVerifier picks the verifier for the configured key material.
// A JWKS URL takes precedence over a shared secret.
func NewVerifier(jwksURL, secret string, logger *slog.Logger) (JWTVerifier, error) {
	switch {
	case jwksURL != "":
		return NewJWKSVerifier(jwksURL, logger)
	case secret != "":
		return NewHMACVerifier([]byte(secret), logger)
	default:
		return nil, errors.New("either JWKS_URL or JWT_SECRET must be set")
	}
}

// JWKSVerifier verifies asymmetric tokens against keys published at a JWKS endpoint.
type JWKSVerifier struct {
	jwks   keyfunc.Keyfunc
	cancel context.CancelFunc
	logger *slog.Logger
}

// NewJWKSVerifier creates a verifier that fetches public keys from jwksURL.
// Keys are cached and refreshed in the background until Close.
func NewJWKSVerifier(jwksURL string, logger *slog.Logger) (*JWKSVerifier, error) {
	if jwksURL == "" {
		return nil, errors.New("JWKS URL cannot be empty")
	}

	ctx, cancel := context.WithCancel(context.Background())
	jwks, err := keyfunc.NewDefaultCtx(ctx, []string{jwksURL})
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to create JWKS client: %w", err)
	}

	logger.Info("JWT verifier initialized", "mode", "jwks", "jwks_url", jwksURL)

	return &JWKSVerifier{
		jwks:   jwks,
		cancel: cancel,
		logger: logger,
	}, nil
}

// VerifyToken validates an RS256/ES256 token and extracts claims
func (v *JWKSVerifier) VerifyToken(tokenString string) (*models.Claims, error) {
	return parseClaims(tokenString, v.jwks.Keyfunc, []string{"RS256", "ES256"}, v.logger)
}

// Close stops the background key refresh
func (v *JWKSVerifier) Close() error {
	v.cancel()
	v.logger.Info("JWT verifier closed")
	return nil
}

// HMACVerifier verifies HS256 tokens signed with a shared secret.
type HMACVerifier struct {
	secret []byte
	logger *slog.Logger
}

// NewHMACVerifier creates a shared-secret verifier
func NewHMACVerifier(secret []byte, logger *slog.Logger) (*HMACVerifier, error) {
	if len(secret) < 32 {
		return nil, errors.New("JWT secret must be at least 32 bytes")
	}
	logger.Info("JWT verifier initialized", "mode", "hmac")
	return &HMACVerifier{secret: secret, logger: logger}, nil
}

// VerifyToken validates an HS256 token and extracts claims
func (v *HMACVerifier) VerifyToken(tokenString string) (*models.Claims, error) {
	keyFunc := func(*jwt.Token) (interface{}, error) { return v.secret, nil }
	return parseClaims(tokenString, keyFunc, []string{"HS256"}, v.logger)
}

// Close is a no-op
func (v *HMACVerifier) Close() error { return nil }

func parseClaims(tokenString string, keyFunc jwt.Keyfunc, algs []string, logger *slog.Logger) (*models.Claims, error) {
	// WithValidMethods prevents algorithm confusion (e.g. "none" or HS256 signed with a public key)
	token, err := jwt.ParseWithClaims(tokenString, &models.Claims{}, keyFunc, jwt.WithValidMethods(algs))
	if err != nil {
		logger.Debug("token parse failed", "error", err.Error())
		return nil, &domain.UnauthorizedError{Message: "invalid token"}
	}

	claims, ok := token.Claims.(*models.Claims)
	if !ok || !token.Valid {
		return nil, &domain.UnauthorizedError{Message: "invalid token"}
	}

	if claims.Subject == "" {
		logger.Debug("token missing subject claim")
		return nil, &domain.UnauthorizedError{Message: "token missing subject"}
	}

	return claims, nil
}
