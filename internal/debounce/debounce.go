// Package debounce delays propagation of a rapidly changing value until it
// has been stable for a quiet period.
package debounce

import (
	"sync"
	"time"
)

// Debouncer holds the latest value handed to Set and publishes it once the
// quiet period elapses without another Set.
type Debouncer[T any] struct {
	mu      sync.Mutex
	quiet   time.Duration
	fn      func(T)
	timer   *time.Timer
	gen     uint64
	settled T
	hasVal  bool
	stopped bool
}

// New returns a Debouncer that calls fn with the settled value. fn may be nil
// when callers only poll Value.
func New[T any](quiet time.Duration, fn func(T)) *Debouncer[T] {
	return &Debouncer[T]{quiet: quiet, fn: fn}
}

// Set records v and restarts the quiet period, cancelling the pending update.
func (d *Debouncer[T]) Set(v T) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	gen := d.gen
	d.timer = time.AfterFunc(d.quiet, func() { d.fire(gen, v) })
}

func (d *Debouncer[T]) fire(gen uint64, v T) {
	d.mu.Lock()
	// A timer that lost the race against Stop or a newer Set must not publish.
	if d.stopped || gen != d.gen {
		d.mu.Unlock()
		return
	}
	d.settled = v
	d.hasVal = true
	d.timer = nil
	fn := d.fn
	d.mu.Unlock()
	if fn != nil {
		fn(v)
	}
}

// Value returns the last settled value and whether one has settled yet.
func (d *Debouncer[T]) Value() (T, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.settled, d.hasVal
}

// Pending reports whether an update is waiting for its quiet period.
func (d *Debouncer[T]) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timer != nil
}

// Stop cancels any pending update. Nothing fires after Stop returns.
func (d *Debouncer[T]) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	d.gen++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
