package auth

import (
	"context"
	"strconv"
	"strings"
	"time"

	"medtrack/internal/cache"
)

const loginAttemptsKeyPrefix = "login_attempts:"

// Login scopes keep user and admin counters apart.
const (
	ScopeUser  = "user"
	ScopeAdmin = "admin"
)

// LoginGuardInterface defines the interface for failed-login throttling.
type LoginGuardInterface interface {
	Allowed(ctx context.Context, scope, identifier string) (bool, error)
	RecordFailure(ctx context.Context, scope, identifier string) error
	Reset(ctx context.Context, scope, identifier string) error
}

// LoginGuard counts failed logins per identifier in Redis. An unreachable
// or unconfigured Redis counts as zero attempts.
type LoginGuard struct {
	cache       *cache.Client
	maxAttempts int
	window      time.Duration
}

// Ensure LoginGuard implements LoginGuardInterface
var _ LoginGuardInterface = (*LoginGuard)(nil)

// NewLoginGuard creates a new login guard. maxAttempts <= 0 disables it.
func NewLoginGuard(cache *cache.Client, maxAttempts int, window time.Duration) *LoginGuard {
	return &LoginGuard{cache: cache, maxAttempts: maxAttempts, window: window}
}

func attemptsKey(scope, identifier string) string {
	return loginAttemptsKeyPrefix + scope + ":" + strings.ToLower(strings.TrimSpace(identifier))
}

// Allowed reports whether another login attempt may be made.
func (g *LoginGuard) Allowed(ctx context.Context, scope, identifier string) (bool, error) {
	if g.maxAttempts <= 0 {
		return true, nil
	}
	data, err := g.cache.Get(ctx, attemptsKey(scope, identifier))
	if err != nil || data == nil {
		return true, nil
	}
	n, err := strconv.Atoi(string(data))
	if err != nil {
		return true, nil
	}
	return n < g.maxAttempts, nil
}

// RecordFailure counts one failed attempt. The window starts at the first
// failure.
func (g *LoginGuard) RecordFailure(ctx context.Context, scope, identifier string) error {
	if g.maxAttempts <= 0 {
		return nil
	}
	_, err := g.cache.Incr(ctx, attemptsKey(scope, identifier), g.window)
	return err
}

// Reset clears the counter after a successful login.
func (g *LoginGuard) Reset(ctx context.Context, scope, identifier string) error {
	return g.cache.Delete(ctx, attemptsKey(scope, identifier))
}
