// Package auth verifies identity-provider tokens presented by the portal.
package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/tallysync/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// Common errors
var (
	ErrInvalidToken = errors.New("invalid token")
	ErrMissingUID   = errors.New("token has no subject")
	ErrUnknownKey   = errors.New("token signed with unknown key")
)

// Identity is the verified caller
type Identity struct {
	UID   string `json:"uid"`
	Email string `json:"email,omitempty"`
}

// TokenVerifier checks a bearer token and returns the caller's identity
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*Identity, error)
}

// Claims are the ID token claims we read
type Claims struct {
	jwt.RegisteredClaims
	Email    string `json:"email,omitempty"`
	AuthTime int64  `json:"auth_time,omitempty"`
}

func (c *Claims) identity() (*Identity, error) {
	if c.Subject == "" {
		return nil, ErrMissingUID
	}
	return &Identity{UID: c.Subject, Email: c.Email}, nil
}

// NewVerifier builds the verifier selected by the identity provider setting
func NewVerifier(cfg *config.IdentityConfig, logger *zap.Logger) (TokenVerifier, error) {
	switch cfg.Provider {
	case config.IdentityHMAC:
		return NewHMACVerifier(cfg.HMACSecret, cfg.ProjectID)
	case config.IdentityFirebase, "":
		return NewFirebaseVerifier(cfg.ProjectID,
			WithCertsURL(cfg.CertsURL),
			WithVerifierLogger(logger),
		), nil
	}
	return nil, fmt.Errorf("unknown identity provider %q", cfg.Provider)
}
