// Package pacer spaces out calls to rate-limited upstream APIs.
package pacer

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Pacer blocks until the next call is allowed.
type Pacer interface {
	Wait(ctx context.Context) error
}

// Interval lets one call through per interval. The first call is never delayed.
type Interval struct {
	limiter *rate.Limiter
}

var _ Pacer = (*Interval)(nil)

// NewInterval creates a pacer enforcing a minimum gap between calls.
// A non-positive interval disables pacing.
func NewInterval(interval time.Duration) *Interval {
	if interval <= 0 {
		return &Interval{limiter: rate.NewLimiter(rate.Inf, 1)}
	}
	return &Interval{limiter: rate.NewLimiter(rate.Every(interval), 1)}
}

// Wait blocks until the next call may proceed or ctx is done.
func (p *Interval) Wait(ctx context.Context) error {
	return p.limiter.Wait(ctx)
}

// None never blocks.
type None struct{}

func (None) Wait(ctx context.Context) error {
	return ctx.Err()
}
