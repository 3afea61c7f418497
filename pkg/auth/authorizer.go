package auth

import (
	"context"
	"crypto/subtle"

	pkgerrors "recipebook/pkg/errors"
)

// SharedSecretAuthorizer grants admin access to callers presenting the one
// configured secret.
type SharedSecretAuthorizer struct {
	secret []byte
}

// NewSharedSecretAuthorizer creates an authorizer for secret. An empty secret
// authorizes nobody.
func NewSharedSecretAuthorizer(secret string) *SharedSecretAuthorizer {
	return &SharedSecretAuthorizer{secret: []byte(secret)}
}

// Authorize returns an unauthorized error unless secret matches exactly.
func (a *SharedSecretAuthorizer) Authorize(ctx context.Context, secret string) error {
	if len(a.secret) == 0 || secret == "" {
		return pkgerrors.NewUnauthorizedError("")
	}
	if subtle.ConstantTimeCompare(a.secret, []byte(secret)) != 1 {
		return pkgerrors.NewUnauthorizedError("")
	}
	return nil
}
