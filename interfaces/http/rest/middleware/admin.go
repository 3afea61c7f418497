package middleware

import (
	"net"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"recipebook/application/ports"
	"recipebook/pkg/auth"
	"recipebook/pkg/common"
	pkgerrors "recipebook/pkg/errors"
)

// AdminSecretHeader carries the shared admin secret.
const AdminSecretHeader = "X-Admin-Secret"

// AdminGuard checks the admin secret on every request it wraps. Failed
// attempts spend a token from the caller's bucket; once the bucket is empty
// the caller is locked out for lockout, even with the right secret.
type AdminGuard struct {
	authorizer ports.Authorizer
	limiter    auth.RateLimiter
	errors     *pkgerrors.ErrorHandler
	logger     *zap.Logger
	lockout    time.Duration
	now        func() time.Time

	mu     sync.Mutex
	locked map[string]time.Time
}

// NewAdminGuard creates a new admin guard
func NewAdminGuard(authorizer ports.Authorizer, limiter auth.RateLimiter, errors *pkgerrors.ErrorHandler, logger *zap.Logger) *AdminGuard {
	return &AdminGuard{
		authorizer: authorizer,
		limiter:    limiter,
		errors:     errors,
		logger:     logger,
		lockout:    time.Minute,
		now:        time.Now,
		locked:     make(map[string]time.Time),
	}
}

// Verify authorizes secret for the caller at key. It is shared by the
// middleware and the session endpoint.
func (g *AdminGuard) Verify(r *http.Request, secret string) error {
	key := ClientKey(r)
	if g.isLocked(key) {
		return errTooManyAttempts()
	}

	err := g.authorizer.Authorize(r.Context(), secret)
	if err == nil {
		return nil
	}

	allowed, limitErr := g.limiter.Allow(r.Context(), key)
	if limitErr != nil {
		// The limiter store being down must not open the door wider.
		g.logger.Warn("Admin rate limiter unavailable", zap.Error(limitErr))
		return err
	}
	if !allowed {
		g.lock(key)
		g.logger.Warn("Admin attempts rate limited", zap.String("client", key))
		return errTooManyAttempts()
	}
	return err
}

// Middleware rejects requests without a valid admin secret and stores the
// secret in the request context for the commands built downstream.
func (g *AdminGuard) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		secret := r.Header.Get(AdminSecretHeader)
		if err := g.Verify(r, secret); err != nil {
			g.errors.Handle(w, r, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(common.WithAdminSecret(r.Context(), secret)))
	})
}

func (g *AdminGuard) isLocked(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	until, ok := g.locked[key]
	if !ok {
		return false
	}
	if g.now().After(until) {
		delete(g.locked, key)
		return false
	}
	return true
}

func (g *AdminGuard) lock(key string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.locked[key] = g.now().Add(g.lockout)
}

func errTooManyAttempts() error {
	err := pkgerrors.NewRateLimitError(0, "minute")
	err.Message = "too many failed attempts"
	return err
}

// ClientKey identifies the caller by address. RealIP has already replaced
// RemoteAddr with the forwarded address when one was sent.
func ClientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
