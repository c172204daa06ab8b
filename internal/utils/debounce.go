package utils

import (
	"sync"
	"time"
)

// Debouncer delays a function call and cancels it when a newer call arrives,
// so bursts of triggers collapse into the last one. Used to coalesce registry
// change notifications into single gauge updates.
type Debouncer struct {
	Delay time.Duration

	mu    sync.Mutex
	timer *time.Timer
	seq   int
}

// Do schedules fn after the configured delay, replacing any pending call.
func (d *Debouncer) Do(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.seq++
	seq := d.seq
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.Delay, func() {
		d.mu.Lock()
		stale := seq != d.seq
		d.mu.Unlock()
		if stale {
			return
		}
		fn()
	})
}

// Cancel drops any pending call without running it.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.seq++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
