package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// ErrStopped is returned by Do once the loop has exited.
var ErrStopped = errors.New("daemon loop stopped")

// LoopConfig holds configuration for the loop.
type LoopConfig struct {
	Interval time.Duration
	Logger   *slog.Logger
}

// Loop owns the kiosk core: the tick and every posted closure run on the
// goroutine executing Run, so the core needs no locks.
type Loop struct {
	interval time.Duration
	tick     func()
	events   chan func()
	done     chan struct{}
	logger   *slog.Logger
}

// NewLoop creates a loop that calls tick every interval.
func NewLoop(cfg LoopConfig, tick func()) *Loop {
	interval := cfg.Interval
	if interval <= 0 {
		interval = time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Loop{
		interval: interval,
		tick:     tick,
		events:   make(chan func(), 64),
		done:     make(chan struct{}),
		logger:   logger,
	}
}

// Run executes ticks and posted closures. Blocks until ctx is cancelled.
func (l *Loop) Run(ctx context.Context) {
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()
	defer close(l.done)

	l.logger.Info("loop started", "interval", l.interval)

	for {
		select {
		case <-ctx.Done():
			l.logger.Info("loop stopped")
			return
		case <-ticker.C:
			l.safely("tick", l.tick)
		case fn := <-l.events:
			l.safely("handler", fn)
		}
	}
}

// safely runs fn, recovering panics so one bad handler cannot stop the
// loop.
func (l *Loop) safely(what string, fn func()) {
	defer func() {
		if err := recover(); err != nil {
			l.logger.Error("loop panic recovered", "in", what, "error", err)
		}
	}()
	fn()
}

// Post queues fn to run on the loop. It never blocks the caller for long:
// after the loop exits, fn is dropped.
func (l *Loop) Post(fn func()) {
	select {
	case l.events <- fn:
	case <-l.done:
	}
}

// Do runs fn on the loop and waits for it to finish.
func (l *Loop) Do(ctx context.Context, fn func() error) error {
	result := make(chan error, 1)
	wrapped := func() {
		defer func() {
			if err := recover(); err != nil {
				result <- fmt.Errorf("handler panic: %v", err)
				panic(err)
			}
		}()
		result <- fn()
	}

	select {
	case l.events <- wrapped:
	case <-l.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-result:
		return err
	case <-l.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}
