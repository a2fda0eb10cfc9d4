package adapter

import (
	"sync"
	"time"
)

// debounce executes only the trailing call after a quiet period. Each
// trigger resets the timer; the version counter invalidates a timer that
// fires after a newer trigger or a stop, matching the stale-callback
// guard used for diagnostics change notification debouncing.
type debounce struct {
	mu       sync.Mutex
	interval time.Duration
	timer    *time.Timer
	version  uint64
}

func newDebounce(interval time.Duration) *debounce {
	return &debounce{interval: interval}
}

// trigger schedules fn after the quiet period, replacing any pending
// call. An interval <= 0 runs fn synchronously.
func (d *debounce) trigger(fn func()) {
	d.mu.Lock()
	if d.interval <= 0 {
		d.version++
		d.mu.Unlock()
		fn()
		return
	}

	if d.timer != nil {
		d.timer.Stop()
	}
	d.version++
	v := d.version
	d.timer = time.AfterFunc(d.interval, func() {
		d.mu.Lock()
		if d.version != v {
			d.mu.Unlock()
			return
		}
		d.timer = nil
		d.mu.Unlock()
		fn()
	})
	d.mu.Unlock()
}

// stop cancels any pending call.
func (d *debounce) stop() {
	d.mu.Lock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.version++
	d.mu.Unlock()
}

// setInterval changes the quiet period for future triggers.
func (d *debounce) setInterval(interval time.Duration) {
	d.mu.Lock()
	d.interval = interval
	d.mu.Unlock()
}
