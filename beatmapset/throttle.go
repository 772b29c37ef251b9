package beatmapset

import (
	"context"
	"sync"
	"time"
)

// Throttle bounds requests twice: at most maxConcurrent in flight and at most
// rate started per window.
type Throttle struct {
	rate   int
	window time.Duration
	ticker *time.Ticker

	mu       sync.Mutex
	attempts []time.Time

	tokens chan struct{}
}

func NewThrottle(rate int, window time.Duration, maxConcurrent int) *Throttle {
	t := &Throttle{
		rate:   rate,
		window: window,
		ticker: time.NewTicker(window / time.Duration(rate)),
		tokens: make(chan struct{}, maxConcurrent),
	}
	for i := 0; i < maxConcurrent; i++ {
		t.tokens <- struct{}{}
	}
	return t
}

// DefaultThrottle is 30 requests a minute with two in flight.
func DefaultThrottle() *Throttle { return NewThrottle(30, time.Minute, 2) }

// Acquire waits for a concurrency slot and then for the rate window. The returned
// func releases the slot.
func (t *Throttle) Acquire(ctx context.Context) (func(), error) {
	select {
	case <-t.tokens:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	release := func() { t.tokens <- struct{}{} }
	if err := t.wait(ctx); err != nil {
		release()
		return nil, err
	}
	return release, nil
}

func (t *Throttle) wait(ctx context.Context) error {
	for {
		select {
		case <-t.ticker.C:
		case <-ctx.Done():
			return ctx.Err()
		}
		if t.admit(time.Now()) {
			return nil
		}
	}
}

// admit records an attempt at now when the window has room.
func (t *Throttle) admit(now time.Time) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	att := t.attempts
	if len(att) < t.rate || now.Sub(att[0]) > t.window {
		att = append(att, now)
		if len(att) > t.rate {
			att = att[1:]
		}
		t.attempts = att
		return true
	}
	return false
}

func (t *Throttle) Stop() { t.ticker.Stop() }
