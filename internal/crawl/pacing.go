package crawl

import (
	"context"
	"math/rand/v2"
	"time"
)

// sleepCtx blocks for d or until the context finishes. Every backoff in the
// crawl loop goes through here, so cancellation is honored between retries
// even though discovery-page retries are otherwise unbounded.
func sleepCtx(ctx context.Context, d time.Duration) error {
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

// jitter returns base plus a random duration in [0, spread). This is a
// politeness mechanism against the remote rate limit, not a correctness one.
func jitter(base, spread time.Duration) time.Duration {
	if spread <= 0 {
		return base
	}
	return base + rand.N(spread)
}
