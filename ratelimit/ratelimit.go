package ratelimit

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
)

// Limiter throttles requests to the content API. A nil *Limiter never
// blocks.
type Limiter struct {
	l *rate.Limiter
}

// New returns a limiter admitting perSecond requests on average with bursts
// of up to burst requests. A non-positive perSecond disables limiting.
func New(perSecond float64, burst int) *Limiter {
	if perSecond <= 0 {
		return nil
	}

	return &Limiter{l: rate.NewLimiter(rate.Limit(perSecond), max(burst, 1))}
}

func (l *Limiter) Wait(ctx context.Context) error {
	if l == nil {
		return nil
	}

	if err := l.l.Wait(ctx); nil != err {
		return fmt.Errorf("wait for rate limiter: %w", err)
	}

	return nil
}
