package processor

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	"github.com/ytlens/sponsorlens/internal/logger"
)

// defaultCallSpacing is the minimum gap between consecutive provider calls.
const defaultCallSpacing = time.Second

// RateLimiter spaces out calls to the classifier provider so a batch never
// exceeds the external quota. Burst is 1: the first call passes
// immediately, every later call waits out the spacing.
type RateLimiter struct {
	limiter *rate.Limiter
	logger  logger.Logger
}

// NewRateLimiter creates a rate limiter with the given minimum spacing
// between calls.
func NewRateLimiter(spacing time.Duration, log logger.Logger) *RateLimiter {
	if spacing <= 0 {
		spacing = defaultCallSpacing
	}
	return &RateLimiter{
		limiter: rate.NewLimiter(rate.Every(spacing), 1),
		logger:  log,
	}
}

// Wait blocks until the spacing allows another call, or until ctx is done.
func (r *RateLimiter) Wait(ctx context.Context) error {
	if err := r.limiter.Wait(ctx); err != nil {
		r.logger.Warn("rate limiter wait failed", logger.Error(err))
		return err
	}
	return nil
}

// Allow reports whether a call may proceed right now without waiting.
func (r *RateLimiter) Allow() bool {
	return r.limiter.Allow()
}

// SetSpacing updates the minimum gap between calls.
func (r *RateLimiter) SetSpacing(spacing time.Duration) {
	r.limiter.SetLimit(rate.Every(spacing))
	r.logger.Info("call spacing updated", logger.Duration("spacing", spacing))
}
