package ratelimit

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
)

// DEFAULT_REQUESTS_PER_SECOND is the fair-access ceiling of the filing archive
const DEFAULT_REQUESTS_PER_SECOND = 10

// Limiter paces outbound requests
type Limiter interface {
	// Wait blocks until a request may be sent or ctx is done
	Wait(ctx context.Context) error
}

type localLimiter struct {
	limiter *rate.Limiter
}

// NewLimiter creates a token bucket limiter shared by every caller in the process.
// A non-positive rate disables limiting.
func NewLimiter(requestsPerSecond float64, burst int) Limiter {
	if requestsPerSecond <= 0 {
		return Unlimited{}
	}
	if burst < 1 {
		burst = 1
	}
	return &localLimiter{limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), burst)}
}

func (l *localLimiter) Wait(ctx context.Context) error {
	if err := l.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait aborted: %w", err)
	}
	return nil
}

// Unlimited never waits
type Unlimited struct{}

func (Unlimited) Wait(ctx context.Context) error { return ctx.Err() }
