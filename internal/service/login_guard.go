package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	apperrors "github.com/spec-kit/inventory-service/pkg/util"
)

// AttemptCounter is the windowed counter surface of persistence.Redis.
type AttemptCounter interface {
	Increment(ctx context.Context, key string, window time.Duration) (int64, error)
	Count(ctx context.Context, key string) (int64, error)
	Reset(ctx context.Context, key string) error
}

// LoginGuard throttles repeated failed logins per email. Counter errors are
// logged and the login proceeds.
type LoginGuard struct {
	counter     AttemptCounter
	maxAttempts int
	window      time.Duration
	logger      *zap.Logger
}

// NewLoginGuard builds a guard. maxAttempts <= 0 disables throttling.
func NewLoginGuard(counter AttemptCounter, maxAttempts int, window time.Duration, logger *zap.Logger) *LoginGuard {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LoginGuard{counter: counter, maxAttempts: maxAttempts, window: window, logger: logger}
}

func (g *LoginGuard) enabled() bool {
	return g != nil && g.counter != nil && g.maxAttempts > 0
}

func loginKey(email string) string {
	return "login:failed:" + strings.ToLower(strings.TrimSpace(email))
}

// Check returns TOO_MANY_REQUESTS once the failure budget for email is spent.
func (g *LoginGuard) Check(ctx context.Context, email string) error {
	if !g.enabled() {
		return nil
	}
	n, err := g.counter.Count(ctx, loginKey(email))
	if err != nil {
		g.logger.Warn("login guard unavailable", zap.Error(err))
		return nil
	}
	if n >= int64(g.maxAttempts) {
		return apperrors.NewTooManyRequests("too many failed login attempts, try again later")
	}
	return nil
}

// Failed records a failed attempt for email.
func (g *LoginGuard) Failed(ctx context.Context, email string) {
	if !g.enabled() {
		return
	}
	if _, err := g.counter.Increment(ctx, loginKey(email), g.window); err != nil {
		g.logger.Warn("login guard unavailable", zap.Error(err))
	}
}

// Succeeded clears the failure counter for email.
func (g *LoginGuard) Succeeded(ctx context.Context, email string) {
	if !g.enabled() {
		return
	}
	if err := g.counter.Reset(ctx, loginKey(email)); err != nil {
		g.logger.Warn("login guard unavailable", zap.Error(err))
	}
}
