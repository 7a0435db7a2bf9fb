package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// HMACVerifier checks HS256 tokens signed with a shared secret. It stands
// in for the identity provider in local and test environments.
type HMACVerifier struct {
	secret   []byte
	audience string
}

// NewHMACVerifier creates a verifier; audience may be empty to skip the check
func NewHMACVerifier(secret, audience string) (*HMACVerifier, error) {
	if secret == "" {
		return nil, errors.New("hmac secret is required")
	}
	return &HMACVerifier{secret: []byte(secret), audience: audience}, nil
}

// Verify implements TokenVerifier
func (v *HMACVerifier) Verify(_ context.Context, token string) (*Identity, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if v.audience != "" {
		opts = append(opts, jwt.WithAudience(v.audience))
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return claims.identity()
}

// Sign issues a token for uid valid for ttl
func (v *HMACVerifier) Sign(uid, email string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   uid,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Email: email,
	}
	if v.audience != "" {
		claims.Audience = jwt.ClaimStrings{v.audience}
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
}
