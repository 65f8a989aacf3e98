package marketdata

import (
	"context"
	"time"
)

// retryPolicy retries rate-limit-class errors with exponential backoff.
// Any other error propagates immediately; after maxAttempts the last error
// propagates as-is.
type retryPolicy struct {
	maxAttempts int
	baseDelay   time.Duration
	sleep       func(context.Context, time.Duration) error
}

func newRetryPolicy(maxAttempts int, baseDelay time.Duration) retryPolicy {
	return retryPolicy{maxAttempts: maxAttempts, baseDelay: baseDelay, sleep: sleepCtx}
}

func (p retryPolicy) do(ctx context.Context, fn func() error) error {
	delay := p.baseDelay
	var err error
	for attempt := 0; attempt < p.maxAttempts; attempt++ {
		if err = fn(); err == nil || !IsRateLimited(err) {
			return err
		}
		if attempt == p.maxAttempts-1 {
			break
		}
		if serr := p.sleep(ctx, delay); serr != nil {
			return serr
		}
		delay *= 2
	}
	return err
}
