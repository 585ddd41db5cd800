// Package idle turns user activity into throttled refresh ticks.
package idle

import (
	"context"
	"sync"
	"time"

	"studydash/internal/platform/clock"
)

// Scheduler is the capability the session controller is driven by. It does
// not own the controller; it only calls back into it.
type Scheduler interface {
	OnIdleTick(callback func(), minInterval time.Duration)
	Activity()
}

// Detector fires its callback on activity, at most once per interval. The
// first activity always fires.
type Detector struct {
	clock clock.Clock

	mu       sync.Mutex
	callback func()
	interval time.Duration
	last     time.Time
	fired    bool
}

func NewDetector(clk clock.Clock) *Detector {
	if clk == nil {
		clk = clock.SystemClock{}
	}
	return &Detector{clock: clk}
}

func (d *Detector) OnIdleTick(callback func(), minInterval time.Duration) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.callback = callback
	d.interval = minInterval
}

// Activity records one user action. The callback runs on the caller's
// goroutine, outside the lock.
func (d *Detector) Activity() {
	d.mu.Lock()
	now := d.clock.Now()
	if d.fired && now.Sub(d.last) < d.interval {
		d.mu.Unlock()
		return
	}
	d.fired = true
	d.last = now
	cb := d.callback
	d.mu.Unlock()

	if cb != nil {
		cb()
	}
}

// Run reports activity on every tick of a ticker with the given period until
// ctx is done. It is the headless stand-in for keyboard and mouse events.
func (d *Detector) Run(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.Activity()
		}
	}
}
