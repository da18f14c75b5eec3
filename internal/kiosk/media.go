package kiosk

import (
	"context"
	"sync"
	"time"
)

// MediaState is the tri-state outcome of a detector run.
type MediaState int

const (
	MediaUnknown MediaState = iota
	MediaNotPlaying
	MediaPlaying
)

func (s MediaState) String() string {
	switch s {
	case MediaPlaying:
		return "playing"
	case MediaNotPlaying:
		return "not-playing"
	default:
		return "unknown"
	}
}

// MediaReport is what a detector saw on the visible surface.
type MediaReport struct {
	State MediaState
	Label string
}

// MediaDetector inspects a surface's document for playing media.
type MediaDetector interface {
	Detect(ctx context.Context, s Surface) (MediaReport, error)
}

// MediaDetectorFunc adapts a function to MediaDetector.
type MediaDetectorFunc func(ctx context.Context, s Surface) (MediaReport, error)

func (f MediaDetectorFunc) Detect(ctx context.Context, s Surface) (MediaReport, error) {
	return f(ctx, s)
}

// mediaResult is a finished poll tagged with the surface it ran against.
type mediaResult struct {
	index  int
	report MediaReport
	err    error
}

// MediaPoller runs at most one detection at a time off the core goroutine
// and caches the latest result for the next tick.
type MediaPoller struct {
	detector MediaDetector
	spawn    func(func())
	interval time.Duration
	timeout  time.Duration

	lastStart time.Time

	mu       sync.Mutex
	gen      uint64
	inFlight bool
	cancel   context.CancelFunc
	result   *mediaResult
}

// NewMediaPoller builds a poller. nil spawn starts a goroutine per poll.
func NewMediaPoller(detector MediaDetector, spawn func(func())) *MediaPoller {
	if spawn == nil {
		spawn = func(f func()) { go f() }
	}
	return &MediaPoller{
		detector: detector,
		spawn:    spawn,
		interval: MediaPollInterval,
		timeout:  MediaPollTimeout,
	}
}

// MaybeStart begins a poll of surface index when the interval elapsed and
// nothing is in flight.
func (p *MediaPoller) MaybeStart(now time.Time, index int, s Surface) {
	if p.detector == nil || s == nil {
		return
	}
	if !p.lastStart.IsZero() && now.Sub(p.lastStart) < p.interval {
		return
	}

	p.mu.Lock()
	if p.inFlight {
		p.mu.Unlock()
		return
	}
	p.inFlight = true
	p.gen++
	gen := p.gen
	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	p.cancel = cancel
	p.mu.Unlock()

	p.lastStart = now
	p.spawn(func() {
		defer cancel()
		report, err := p.detector.Detect(ctx, s)
		if err == nil && ctx.Err() != nil {
			err = ctx.Err()
		}

		p.mu.Lock()
		defer p.mu.Unlock()
		if gen != p.gen {
			return
		}
		p.inFlight = false
		p.cancel = nil
		p.result = &mediaResult{index: index, report: report, err: err}
	})
}

// Take returns and clears the cached result.
func (p *MediaPoller) Take() (mediaResult, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.result == nil {
		return mediaResult{}, false
	}
	r := *p.result
	p.result = nil
	return r, true
}

// Cancel abandons any poll in flight and drops the cached result.
func (p *MediaPoller) Cancel() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
	p.gen++
	p.inFlight = false
	p.result = nil
}
