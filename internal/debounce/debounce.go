// Package debounce delays a rapidly changing value until it has been stable
// for a quiet period.
package debounce

import (
	"sync"
	"time"
)

// Debouncer emits the last value pushed once no further push has arrived for
// the configured delay. Every Push restarts the wait.
//
// The output channel holds at most one value; if the reader falls behind, an
// unread value is replaced by the newer one, so a reader never sees a value
// that was already superseded when it was settled.
type Debouncer[T any] struct {
	delay time.Duration

	mu      sync.Mutex
	timer   *time.Timer
	gen     uint64 // bumped on every Push; a timer only fires for its own generation
	stopped bool
	out     chan T
}

// New returns a Debouncer with the given quiet period.
func New[T any](delay time.Duration) *Debouncer[T] {
	if delay < 0 {
		delay = 0
	}
	return &Debouncer[T]{
		delay: delay,
		out:   make(chan T, 1),
	}
}

// Delay returns the quiet period.
func (d *Debouncer[T]) Delay() time.Duration {
	return d.delay
}

// C returns the channel on which settled values are delivered. It is closed
// by Stop.
func (d *Debouncer[T]) C() <-chan T {
	return d.out
}

// Push records v as the latest value and restarts the quiet period.
// Pushes after Stop are ignored.
func (d *Debouncer[T]) Push(v T) {
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
	d.timer = time.AfterFunc(d.delay, func() { d.fire(gen, v) })
}

func (d *Debouncer[T]) fire(gen uint64, v T) {
	d.mu.Lock()
	defer d.mu.Unlock()

	// Stop() on a timer whose func already started cannot prevent this call,
	// so the generation check is what discards superseded values.
	if d.stopped || gen != d.gen {
		return
	}
	d.timer = nil

	select {
	case <-d.out:
	default:
	}
	d.out <- v
}

// Pending reports whether a value is waiting for its quiet period to end.
func (d *Debouncer[T]) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timer != nil
}

// Stop cancels any pending value and closes C. It is safe to call more than
// once.
func (d *Debouncer[T]) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	close(d.out)
}
