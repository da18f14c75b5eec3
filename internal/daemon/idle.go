package daemon

import (
	"context"
	"log/slog"
	"time"
)

// IdleSource reports how long the OS has seen no keyboard or pointer input.
type IdleSource interface {
	IdleTime() (time.Duration, error)
}

// IdleWatcherConfig holds configuration for the idle watcher.
type IdleWatcherConfig struct {
	Interval time.Duration
	Logger   *slog.Logger
}

// IdleWatcher turns OS input into activity pings: whenever the idle time
// drops below what it was at the previous sample, the user touched
// something.
type IdleWatcher struct {
	interval time.Duration
	source   IdleSource
	onInput  func()
	logger   *slog.Logger
	last     time.Duration
	failing  bool
}

// NewIdleWatcher creates a watcher calling onInput on fresh input.
func NewIdleWatcher(cfg IdleWatcherConfig, source IdleSource, onInput func()) *IdleWatcher {
	interval := cfg.Interval
	if interval <= 0 {
		interval = time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &IdleWatcher{
		interval: interval,
		source:   source,
		onInput:  onInput,
		logger:   logger,
	}
}

// Run samples the idle time until ctx is cancelled.
func (w *IdleWatcher) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.Info("idle watcher started", "interval", w.interval)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("idle watcher stopped")
			return
		case <-ticker.C:
			w.sample()
		}
	}
}

func (w *IdleWatcher) sample() {
	idle, err := w.source.IdleTime()
	if err != nil {
		if !w.failing {
			w.logger.Warn("idle watcher: failed to read idle time", "error", err)
			w.failing = true
		}
		return
	}
	w.failing = false
	if idle < w.last {
		w.onInput()
	}
	w.last = idle
}
