package kiosk

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"testing"
	"time"
)

const testPassword = "letmein"

func testHash() string {
	sum := sha256.Sum256([]byte(testPassword))
	return hex.EncodeToString(sum[:])
}

type fakeSurface struct {
	url      string
	attached bool
	attaches int
	detaches int
	loads    int
	size     Rect
}

func (f *fakeSurface) Attach() error {
	f.attached = true
	f.attaches++
	return nil
}

func (f *fakeSurface) Detach() error {
	f.attached = false
	f.detaches++
	return nil
}

func (f *fakeSurface) Resize(r Rect) error {
	f.size = r
	return nil
}

func (f *fakeSurface) URL() string { return f.url }

func (f *fakeSurface) Load(url string) error {
	f.url = url
	f.loads++
	return nil
}

type fakeFlag struct{ raised bool }

func (f *fakeFlag) Consume() (bool, error) {
	was := f.raised
	f.raised = false
	return was, nil
}

type pendingTimer struct {
	at      time.Time
	fn      func()
	stopped bool
	fired   bool
}

type fakeDetector struct {
	report MediaReport
	err    error
	calls  int
}

func (d *fakeDetector) Detect(ctx context.Context, s Surface) (MediaReport, error) {
	d.calls++
	return d.report, d.err
}

type harness struct {
	t        *testing.T
	now      time.Time
	core     *Core
	surfaces []*fakeSurface
	events   []Event
	pending  []*pendingTimer
	detector *fakeDetector
	wake     *fakeFlag
	boot     *fakeFlag
}

// sitesOf builds sites from durations in seconds.
func sitesOf(durations ...int) []Site {
	sites := make([]Site, len(durations))
	for i, d := range durations {
		sites[i] = Site{
			URL:      fmt.Sprintf("https://site%d.example/", i),
			Duration: time.Duration(d) * time.Second,
			Name:     fmt.Sprintf("site%d", i),
		}
	}
	return sites
}

func defaultPolicy() Policy {
	return Policy{
		HomeIndex:         -1,
		InactivityTimeout: 120 * time.Second,
		EnablePauseButton: true,
	}
}

func lockPolicy(timeout time.Duration) LockoutPolicy {
	return LockoutPolicy{
		Protection:    true,
		PasswordHash:  testHash(),
		Timeout:       timeout,
		RequireOnWake: true,
	}
}

func newHarness(t *testing.T, sites []Site, policy Policy) *harness {
	t.Helper()
	return newHarnessAt(t, time.Date(2026, 5, 4, 9, 0, 0, 0, time.Local), sites, policy)
}

func newHarnessAt(t *testing.T, start time.Time, sites []Site, policy Policy) *harness {
	t.Helper()
	h := &harness{
		t:        t,
		now:      start,
		detector: &fakeDetector{report: MediaReport{State: MediaNotPlaying}},
		wake:     &fakeFlag{},
		boot:     &fakeFlag{},
	}
	surfaces := make([]Surface, len(sites))
	for i, s := range sites {
		fs := &fakeSurface{url: s.URL}
		h.surfaces = append(h.surfaces, fs)
		surfaces[i] = fs
	}
	after := func(d time.Duration, fn func()) func() bool {
		p := &pendingTimer{at: h.now.Add(d), fn: fn}
		h.pending = append(h.pending, p)
		return func() bool {
			live := !p.stopped && !p.fired
			p.stopped = true
			return live
		}
	}
	core, err := New(sites, policy, Deps{
		Surfaces: surfaces,
		Viewport: func() (Rect, error) { return Rect{Width: 1920, Height: 1080}, nil },
		Notifier: NotifierFunc(func(e Event) { h.events = append(h.events, e) }),
		Timers:   NewTimers(after, nil),
		Poller:   NewMediaPoller(h.detector, func(f func()) { f() }),
		WakeFlag: h.wake,
		BootFlag: h.boot,
		PowerInfo: func() PowerMenuData {
			return PowerMenuData{Version: "test", Hostname: "kiosk-01"}
		},
		Now: func() time.Time { return h.now },
	})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	h.core = core
	return h
}

func (h *harness) fireDue() {
	for _, p := range h.pending {
		if p.stopped || p.fired || p.at.After(h.now) {
			continue
		}
		p.fired = true
		p.fn()
	}
}

// advance moves the clock one second at a time, firing due timers and
// ticking, and checks exclusivity after every tick.
func (h *harness) advance(d time.Duration) {
	h.t.Helper()
	for i := 0; i < int(d/time.Second); i++ {
		h.now = h.now.Add(time.Second)
		h.fireDue()
		h.core.Tick()
		h.checkExclusive()
	}
}

func (h *harness) checkExclusive() {
	h.t.Helper()
	attached := 0
	for _, s := range h.surfaces {
		if s.attached {
			attached++
		}
	}
	if attached > 1 {
		h.t.Fatalf("%d surfaces attached at %v, want at most 1", attached, h.now)
	}
	if h.core.Session().LockedOut && attached != 0 {
		h.t.Fatalf("%d surfaces attached while locked", attached)
	}
}

func (h *harness) visible() int {
	return h.core.Status().VisibleIndex
}

func (h *harness) count(kind EventKind) int {
	n := 0
	for _, e := range h.events {
		if e.Kind == kind {
			n++
		}
	}
	return n
}

func (h *harness) last(kind EventKind) (Event, bool) {
	for i := len(h.events) - 1; i >= 0; i-- {
		if h.events[i].Kind == kind {
			return h.events[i], true
		}
	}
	return Event{}, false
}

func (h *harness) dialogVisible(kind EventKind) bool {
	e, ok := h.last(kind)
	if !ok {
		return false
	}
	switch d := e.Data.(type) {
	case DialogData:
		return d.Visible
	case VisibleData:
		return d.Visible
	}
	return false
}
