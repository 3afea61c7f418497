package common

import (
	"context"
)

// ContextKey represents a context key type
type ContextKey string

// Context keys
const (
	ContextKeyAdminSecret ContextKey = "admin_secret"
)

// WithAdminSecret adds the caller's admin secret to context
func WithAdminSecret(ctx context.Context, secret string) context.Context {
	return context.WithValue(ctx, ContextKeyAdminSecret, secret)
}

// GetAdminSecret extracts the admin secret from context
func GetAdminSecret(ctx context.Context) string {
	secret, _ := ctx.Value(ContextKeyAdminSecret).(string)
	return secret
}
