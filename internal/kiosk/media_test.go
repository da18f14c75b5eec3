package kiosk

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMedia_DetectorErrorFailsOpen(t *testing.T) {
	h := newHarness(t, sitesOf(10, 10), defaultPolicy())
	h.core.Start()
	h.detector.report = MediaReport{State: MediaPlaying}
	h.advance(5 * time.Second)
	if !h.core.Session().MediaPlaying {
		t.Fatal("expected media playing")
	}

	h.detector.err = errors.New("execution context was destroyed")
	h.advance(5 * time.Second)
	if h.core.Session().MediaPlaying {
		t.Fatal("detector error should count as not playing")
	}
}

func TestMedia_HoldOnDetectorError(t *testing.T) {
	p := defaultPolicy()
	p.HoldMediaOnDetectorError = true
	h := newHarness(t, sitesOf(10, 10), p)
	h.core.Start()
	h.detector.report = MediaReport{State: MediaPlaying}
	h.advance(5 * time.Second)

	h.detector.err = errors.New("timeout")
	h.advance(10 * time.Second)
	if !h.core.Session().MediaPlaying {
		t.Fatal("holdMediaOnDetectorError should keep the previous state")
	}

	h.detector.err = nil
	h.detector.report = MediaReport{State: MediaUnknown}
	h.advance(10 * time.Second)
	if !h.core.Session().MediaPlaying {
		t.Fatal("unknown report should keep the previous state")
	}
}

func TestMedia_PlayingSuppressesRotation(t *testing.T) {
	h := newHarness(t, sitesOf(10, 10), defaultPolicy())
	h.core.Start()
	h.detector.report = MediaReport{State: MediaPlaying}

	h.advance(10 * time.Minute)
	if h.visible() != 0 {
		t.Fatalf("rotated to %d while media played", h.visible())
	}
	if got := h.core.Tick(); got != StepMediaPlaying {
		t.Fatalf("Tick() = %q, want %q", got, StepMediaPlaying)
	}

	h.detector.report = MediaReport{State: MediaNotPlaying}
	h.advance(5 * time.Second)
	if got := h.core.Tick(); got != StepMediaGrace {
		t.Fatalf("Tick() = %q, want %q", got, StepMediaGrace)
	}
	h.advance(MediaGracePeriod)
	if h.visible() != 1 {
		t.Fatalf("visible = %d, want rotation after the grace period", h.visible())
	}
}

func TestMediaPoller_OneInFlight(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{}, 4)
	det := MediaDetectorFunc(func(ctx context.Context, s Surface) (MediaReport, error) {
		started <- struct{}{}
		<-release
		return MediaReport{State: MediaPlaying}, nil
	})
	p := NewMediaPoller(det, nil)
	s := &fakeSurface{}
	now := time.Now()

	p.MaybeStart(now, 0, s)
	<-started
	p.MaybeStart(now.Add(10*time.Second), 0, s)
	p.MaybeStart(now.Add(20*time.Second), 0, s)
	if len(started) != 0 {
		t.Fatal("started a second poll while one was in flight")
	}

	close(release)
	deadline := time.After(2 * time.Second)
	for {
		if r, ok := p.Take(); ok {
			if r.report.State != MediaPlaying || r.index != 0 {
				t.Fatalf("result = %+v", r)
			}
			return
		}
		select {
		case <-deadline:
			t.Fatal("poll result never arrived")
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestMediaPoller_CancelDropsResult(t *testing.T) {
	release := make(chan struct{})
	done := make(chan struct{})
	det := MediaDetectorFunc(func(ctx context.Context, s Surface) (MediaReport, error) {
		<-release
		return MediaReport{State: MediaPlaying}, nil
	})
	p := NewMediaPoller(det, func(f func()) {
		go func() {
			f()
			close(done)
		}()
	})

	p.MaybeStart(time.Now(), 0, &fakeSurface{})
	p.Cancel()
	close(release)
	<-done

	if _, ok := p.Take(); ok {
		t.Fatal("cancelled poll produced a result")
	}
}

func TestMediaPoller_Interval(t *testing.T) {
	det := &fakeDetector{report: MediaReport{State: MediaNotPlaying}}
	p := NewMediaPoller(det, func(f func()) { f() })
	now := time.Now()

	for i := 0; i < 9; i++ {
		p.MaybeStart(now.Add(time.Duration(i)*time.Second), 0, &fakeSurface{})
	}
	if det.calls != 3 {
		t.Fatalf("detector calls = %d over 9s, want 3", det.calls)
	}
}

func TestMedia_ResultFromOldSurfaceDiscarded(t *testing.T) {
	h := newHarness(t, sitesOf(10, 10), defaultPolicy())
	h.core.Start()
	// a result tagged with surface 1 while surface 0 is visible
	h.core.poller.result = &mediaResult{index: 1, report: MediaReport{State: MediaPlaying}}
	h.core.poller.lastStart = h.now.Add(time.Hour)

	h.advance(time.Second)
	if h.core.Session().MediaPlaying {
		t.Fatal("applied a media result from a surface that is not visible")
	}
}
