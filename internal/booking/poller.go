package booking

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrCeiling is returned by Poller.Run when the ceiling elapses before a tick reports done.
var ErrCeiling = errors.New("booking: poll ceiling reached")

// Poller runs a bounded background task: wait Delay, tick immediately, then every
// Interval until a tick reports done, Ceiling has elapsed since the first tick, or
// the context is cancelled.
type Poller struct {
	Delay    time.Duration
	Interval time.Duration
	Ceiling  time.Duration
}

// DefaultPoller matches the timings used by the search page script.
var DefaultPoller = Poller{Delay: 2 * time.Second, Interval: 500 * time.Millisecond, Ceiling: 60 * time.Second}

// Run blocks until the task stops. It returns nil when tick reported done.
func (p Poller) Run(ctx context.Context, tick func(context.Context) bool) error {
	if p.Interval <= 0 {
		return errors.New("booking: poll interval must be positive")
	}
	if p.Delay > 0 {
		delay := time.NewTimer(p.Delay)
		select {
		case <-ctx.Done():
			delay.Stop()
			return ctx.Err()
		case <-delay.C:
		}
	}

	ceiling := time.NewTimer(p.Ceiling)
	defer ceiling.Stop()
	ticker := time.NewTicker(p.Interval)
	defer ticker.Stop()

	for {
		if tick(ctx) {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ceiling.C:
			return ErrCeiling
		case <-ticker.C:
		}
	}
}

// Start runs the poller in a goroutine. The returned stop cancels it and waits
// for it to exit; calling stop more than once is safe.
func (p Poller) Start(ctx context.Context, tick func(context.Context) bool, done func(error)) (stop func()) {
	ctx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		err := p.Run(ctx, tick)
		if done != nil {
			done(err)
		}
	}()
	var once sync.Once
	return func() {
		once.Do(func() {
			cancel()
			wg.Wait()
		})
	}
}
