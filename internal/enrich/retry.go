package enrich

import (
	"context"
	"time"
)

// RetryPolicy decides whether another generation attempt should run and how
// long to wait before it. attempt is zero-based and counts completed failures.
type RetryPolicy interface {
	Next(attempt int) (delay time.Duration, retry bool)
}

// FixedDelay retries up to MaxAttempts with a constant delay between tries.
type FixedDelay struct {
	Delay       time.Duration
	MaxAttempts int
}

func (p FixedDelay) Next(attempt int) (time.Duration, bool) {
	if attempt+1 >= p.MaxAttempts {
		return 0, false
	}
	return p.Delay, true
}

// sleep waits for d or until ctx is done, whichever comes first.
func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
