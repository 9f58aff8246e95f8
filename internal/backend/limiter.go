package backend

import (
	"context"

	"golang.org/x/time/rate"
)

// limiter throttles outbound backend calls so a busy dashboard session
// cannot flood the backend.
type limiter struct {
	lim *rate.Limiter
}

func newLimiter(rps float64, burst int) *limiter {
	if rps <= 0 {
		rps = 10
	}
	if burst <= 0 {
		burst = 5
	}
	return &limiter{lim: rate.NewLimiter(rate.Limit(rps), burst)}
}

func (l *limiter) wait(ctx context.Context) error {
	if l == nil || l.lim == nil {
		return nil
	}
	return l.lim.Wait(ctx)
}
