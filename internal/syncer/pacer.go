package syncer

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Pacer spaces out sequential external calls. It is a politeness mechanism
// for the storefront API, not a correctness one.
type Pacer interface {
	Wait(ctx context.Context) error
}

// intervalPacer allows one call per interval with a burst of one, so the
// first call of a run never waits.
type intervalPacer struct {
	limiter *rate.Limiter
}

// NewPacer builds a token-bucket pacer. A non-positive interval disables
// pacing entirely.
func NewPacer(interval time.Duration) Pacer {
	if interval <= 0 {
		return noopPacer{}
	}
	return &intervalPacer{limiter: rate.NewLimiter(rate.Every(interval), 1)}
}

func (p *intervalPacer) Wait(ctx context.Context) error {
	return p.limiter.Wait(ctx)
}

type noopPacer struct{}

func (noopPacer) Wait(ctx context.Context) error {
	return ctx.Err()
}
