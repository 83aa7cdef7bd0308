package service

import (
	"sync"
	"time"
)

// Debouncer holds at most one pending task. Scheduling replaces the pending task and
// restarts the quiet period, so only the last task of a burst runs.
type Debouncer struct {
	mu      sync.Mutex
	delay   time.Duration
	timer   *time.Timer
	task    func()
	gen     uint64
	stopped bool
}

// NewDebouncer returns a debouncer with the given quiet period.
func NewDebouncer(delay time.Duration) *Debouncer {
	return &Debouncer{delay: delay}
}

// Schedule cancels any pending task and arms task to run after the quiet period.
func (d *Debouncer) Schedule(task func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	d.cancelLocked()
	d.gen++
	gen := d.gen
	d.task = task
	d.timer = time.AfterFunc(d.delay, func() { d.fire(gen) })
}

func (d *Debouncer) fire(gen uint64) {
	d.mu.Lock()
	if d.stopped || gen != d.gen || d.task == nil {
		d.mu.Unlock()
		return
	}
	task := d.task
	d.task = nil
	d.timer = nil
	d.mu.Unlock()

	task()
}

// Cancel drops the pending task, reporting whether one was pending.
func (d *Debouncer) Cancel() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.cancelLocked()
}

func (d *Debouncer) cancelLocked() bool {
	pending := d.task != nil
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.task = nil
	d.gen++
	return pending
}

// Flush runs the pending task immediately on the calling goroutine.
func (d *Debouncer) Flush() bool {
	d.mu.Lock()
	task := d.task
	d.cancelLocked()
	d.mu.Unlock()

	if task == nil {
		return false
	}
	task()
	return true
}

// Pending reports whether a task is waiting for its quiet period.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.task != nil
}

// Stop cancels the pending task and refuses further scheduling. A task already running
// is not interrupted.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cancelLocked()
	d.stopped = true
}
