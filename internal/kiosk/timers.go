package kiosk

import "time"

// TimerKey names a dialog auto-dismiss timeout.
type TimerKey string

const (
	TimerPinDialog      TimerKey = "pin-dialog"
	TimerPauseDialog    TimerKey = "pause-dialog"
	TimerPresencePrompt TimerKey = "presence-prompt"
)

// AfterFunc schedules f after d and returns a stop function, like
// time.AfterFunc.
type AfterFunc func(d time.Duration, f func()) (stop func() bool)

// Timers is a registry of named, cancelable timeouts. Arming a key replaces
// its previous timer. Expiry callbacks are handed to post so they run on the
// core's goroutine; a callback whose timer was cancelled or re-armed before
// it ran is dropped.
type Timers struct {
	after  AfterFunc
	post   func(func())
	gen    uint64
	active map[TimerKey]timerEntry
}

type timerEntry struct {
	gen  uint64
	stop func() bool
}

// NewTimers builds a registry. nil after uses time.AfterFunc; nil post runs
// callbacks inline.
func NewTimers(after AfterFunc, post func(func())) *Timers {
	if after == nil {
		after = func(d time.Duration, f func()) func() bool {
			return time.AfterFunc(d, f).Stop
		}
	}
	if post == nil {
		post = func(f func()) { f() }
	}
	return &Timers{
		after:  after,
		post:   post,
		active: make(map[TimerKey]timerEntry),
	}
}

// Arm (re)starts the timer for key.
func (t *Timers) Arm(key TimerKey, d time.Duration, fn func()) {
	t.Cancel(key)
	t.gen++
	gen := t.gen
	stop := t.after(d, func() {
		t.post(func() {
			e, ok := t.active[key]
			if !ok || e.gen != gen {
				return
			}
			delete(t.active, key)
			fn()
		})
	})
	t.active[key] = timerEntry{gen: gen, stop: stop}
}

// Cancel stops the timer for key. It reports whether one was armed.
func (t *Timers) Cancel(key TimerKey) bool {
	e, ok := t.active[key]
	if !ok {
		return false
	}
	delete(t.active, key)
	if e.stop != nil {
		e.stop()
	}
	return true
}

// Armed reports whether key has a pending timer.
func (t *Timers) Armed(key TimerKey) bool {
	_, ok := t.active[key]
	return ok
}

// CancelAll stops every timer.
func (t *Timers) CancelAll() {
	for key := range t.active {
		t.Cancel(key)
	}
}
