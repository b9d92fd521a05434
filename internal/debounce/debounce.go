package debounce

import (
	"sync"
	"time"
)

var afterFunc = time.AfterFunc

// Debouncer runs fn once, delay after the last Trigger. A timer callback that
// fires after it was superseded or stopped is ignored.
type Debouncer struct {
	mu         sync.Mutex
	delay      time.Duration
	timer      *time.Timer
	generation uint64
	fn         func()
}

func New(delay time.Duration, fn func()) *Debouncer {
	return &Debouncer{delay: delay, fn: fn}
}

// Ensure returns *d, creating it first when nil.
func Ensure(d **Debouncer, delay time.Duration, fn func()) *Debouncer {
	if *d == nil {
		*d = New(delay, fn)
	}
	return *d
}

func (d *Debouncer) Trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.generation++
	gen := d.generation
	d.timer = afterFunc(d.delay, func() { d.fire(gen) })
}

// Pending reports whether a trigger is waiting to fire.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timer != nil
}

func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.generation++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

func (d *Debouncer) fire(gen uint64) {
	d.mu.Lock()
	if gen != d.generation {
		d.mu.Unlock()
		return
	}
	d.timer = nil
	fn := d.fn
	d.mu.Unlock()
	if fn != nil {
		fn()
	}
}
