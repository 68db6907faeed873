// Package latency simulates the I/O delay of pipeline steps.
package latency

import (
	"context"
	"time"
)

// Simulate blocks for d or until ctx is done, whichever comes first, and
// returns ctx.Err() in the latter case. A non-positive d returns immediately.
func Simulate(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
