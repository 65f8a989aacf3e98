package marketdata

import (
	"context"
	"sync"
	"time"
)

// slidingWindowLimiter admits at most `limit` requests per rolling window.
// The timestamp bookkeeping is mutex-guarded so one limiter instance can be
// shared by concurrent callers without breaking the rate-limit contract.
type slidingWindowLimiter struct {
	mu     sync.Mutex
	limit  int
	window time.Duration
	stamps []time.Time
	now    func() time.Time
	sleep  func(context.Context, time.Duration) error
	onWait func() // optional, for instrumentation
}

func newSlidingWindowLimiter(limit int, window time.Duration) *slidingWindowLimiter {
	return &slidingWindowLimiter{
		limit:  limit,
		window: window,
		now:    time.Now,
		sleep:  sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// reserve blocks until a request slot is free inside the rolling window,
// then records the request. It returns early only when ctx is cancelled.
func (l *slidingWindowLimiter) reserve(ctx context.Context) error {
	for {
		l.mu.Lock()
		now := l.now()
		l.trim(now)
		if len(l.stamps) < l.limit {
			l.stamps = append(l.stamps, now)
			l.mu.Unlock()
			return nil
		}
		wait := l.stamps[0].Add(l.window).Sub(now)
		l.mu.Unlock()

		if l.onWait != nil {
			l.onWait()
		}
		if err := l.sleep(ctx, wait); err != nil {
			return err
		}
	}
}

// trim drops timestamps that have aged out of the window. Caller holds mu.
func (l *slidingWindowLimiter) trim(now time.Time) {
	cut := 0
	for cut < len(l.stamps) && now.Sub(l.stamps[cut]) >= l.window {
		cut++
	}
	if cut > 0 {
		l.stamps = append(l.stamps[:0], l.stamps[cut:]...)
	}
}
