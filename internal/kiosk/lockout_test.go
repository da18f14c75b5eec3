package kiosk

import (
	"errors"
	"testing"
	"time"

	"github.com/1broseidon/kiosk/internal/config"
)

func lockedHarness(t *testing.T, sites []Site, timeout time.Duration) *harness {
	t.Helper()
	p := defaultPolicy()
	p.Lockout = lockPolicy(timeout)
	return newHarness(t, sites, p)
}

func TestLockout_InteractionRestartsClock(t *testing.T) {
	h := lockedHarness(t, sitesOf(0), 30*time.Minute)
	h.core.Start()

	h.advance(29 * time.Minute)
	h.core.Activity()
	h.advance(30*time.Minute - time.Second)
	if h.core.Session().LockedOut {
		t.Fatal("locked before 30 minutes of inactivity after the interaction")
	}
	h.advance(time.Second)
	if !h.core.Session().LockedOut {
		t.Fatal("expected lock 30 minutes after the interaction")
	}
	if !h.dialogVisible(EventLockScreen) {
		t.Fatal("expected lock_screen{visible:true}")
	}
	if h.surfaces[0].attached {
		t.Fatal("surface still attached under the lock screen")
	}
}

func TestLockout_PrecedenceOverEverything(t *testing.T) {
	h := lockedHarness(t, sitesOf(10, 20, 0), 0)
	h.core.Start()
	if err := h.core.LockNow(); err != nil {
		t.Fatalf("LockNow() error: %v", err)
	}
	h.detector.report = MediaReport{State: MediaPlaying}
	calls := h.detector.calls
	events := len(h.events)

	for i := 0; i < 600; i++ {
		h.now = h.now.Add(time.Second)
		if got := h.core.Tick(); got != StepLockout {
			t.Fatalf("Tick() = %q while locked, want %q", got, StepLockout)
		}
	}
	if h.detector.calls != calls {
		t.Fatal("media detector ran while locked")
	}
	if len(h.events) != events {
		t.Fatalf("events while locked: %v", h.events[events:])
	}
	for _, fn := range []func() error{h.core.Next, h.core.ToggleHidden, h.core.RequestPause, h.core.PowerMenu} {
		if err := fn(); !errors.Is(err, ErrLocked) {
			t.Fatalf("inbound signal while locked = %v, want ErrLocked", err)
		}
	}
}

func TestUnlock(t *testing.T) {
	h := lockedHarness(t, sitesOf(10, 0), 0)
	h.core.Start()
	if err := h.core.Next(); err != nil {
		t.Fatalf("Next() error: %v", err)
	}
	if err := h.core.LockNow(); err != nil {
		t.Fatalf("LockNow() error: %v", err)
	}

	if h.core.Unlock("wrong") {
		t.Fatal("Unlock(wrong) = true")
	}
	if e, _ := h.last(EventPasswordResult); e.Data.(ResultData).Correct {
		t.Fatal("expected password_result{correct:false}")
	}
	if !h.core.Session().LockedOut {
		t.Fatal("wrong password unlocked the screen")
	}
	// unlimited retries
	for i := 0; i < 20; i++ {
		h.core.Unlock("wrong")
	}

	h.advance(5 * time.Second)
	if !h.core.Unlock(testPassword) {
		t.Fatal("Unlock(correct) = false")
	}
	if h.visible() != 1 || !h.surfaces[1].attached {
		t.Fatalf("visible = %d, want previous site 1", h.visible())
	}
	if got := h.core.Session().LockoutActivityAt; !got.Equal(h.now) {
		t.Fatalf("LockoutActivityAt = %v, want %v", got, h.now)
	}
	if h.dialogVisible(EventLockScreen) {
		t.Fatal("expected lock_screen{visible:false}")
	}

	events := len(h.events)
	if !h.core.Unlock("anything") {
		t.Fatal("Unlock while unlocked should report unlocked")
	}
	if len(h.events) != events {
		t.Fatal("Unlock while unlocked emitted events")
	}
}

func TestLock_Idempotent(t *testing.T) {
	h := lockedHarness(t, sitesOf(10, 0), 0)
	h.core.Start()
	h.core.LockNow()
	detaches := h.surfaces[0].detaches
	locks := h.count(EventLockScreen)

	h.core.LockNow()
	h.core.LockNow()
	if h.surfaces[0].detaches != detaches {
		t.Fatalf("detached %d more times", h.surfaces[0].detaches-detaches)
	}
	if h.surfaces[1].detaches != 0 {
		t.Fatal("detached a surface that was never attached")
	}
	if h.count(EventLockScreen) != locks {
		t.Fatal("lock while locked emitted lock_screen again")
	}
}

func TestLock_PreservesHiddenSet(t *testing.T) {
	p := defaultPolicy()
	p.Lockout = lockPolicy(0)
	p.HiddenPIN = "disabled"
	h := newHarness(t, sitesOf(10, -1, -1), p)
	h.core.Start()
	h.core.ToggleHidden()
	h.core.ToggleHidden()
	h.core.LockNow()

	if !h.core.Unlock(testPassword) {
		t.Fatal("Unlock() = false")
	}
	if h.visible() != 2 || !h.core.Session().ShowingHidden {
		t.Fatalf("visible = %d hidden=%v, want hidden site 2", h.visible(), h.core.Session().ShowingHidden)
	}
}

func TestScheduledLock_OncePerMinute(t *testing.T) {
	p := defaultPolicy()
	p.Lockout = lockPolicy(0)
	p.Lockout.AtTime = "22:00"
	h := newHarnessAt(t, time.Date(2026, 5, 4, 21, 58, 0, 0, time.Local), sitesOf(0), p)
	h.core.Start()

	h.advance(119 * time.Second)
	if h.core.Session().LockedOut {
		t.Fatal("locked before 22:00")
	}
	h.advance(time.Second)
	if !h.core.Session().LockedOut {
		t.Fatal("expected lock at 22:00")
	}

	h.advance(10 * time.Second)
	h.core.Unlock(testPassword)
	h.advance(30 * time.Second)
	if h.core.Session().LockedOut {
		t.Fatal("scheduled lock fired twice in the same minute")
	}
}

func TestScheduledLock_IgnoresExtension(t *testing.T) {
	p := defaultPolicy()
	p.Lockout = lockPolicy(0)
	p.Lockout.AtTime = "22:00"
	h := newHarnessAt(t, time.Date(2026, 5, 4, 21, 59, 0, 0, time.Local), sitesOf(0), p)
	h.core.Start()
	h.core.Extend(2 * time.Hour)

	h.advance(time.Minute)
	if !h.core.Session().LockedOut {
		t.Fatal("extension suppressed the time-of-day lock")
	}
}

func TestWakeFlag(t *testing.T) {
	h := lockedHarness(t, sitesOf(0), 0)
	h.core.Start()

	h.wake.raised = true
	h.advance(time.Second)
	if !h.core.Session().LockedOut {
		t.Fatal("expected wake flag to lock")
	}

	// a flag raised while locked is consumed and cannot re-lock after unlock
	h.wake.raised = true
	h.advance(time.Second)
	h.core.Unlock(testPassword)
	h.advance(time.Second)
	if h.core.Session().LockedOut {
		t.Fatal("stale wake flag re-locked after unlock")
	}
}

func TestWakeFlag_PolicyOff(t *testing.T) {
	p := defaultPolicy()
	p.Lockout = lockPolicy(0)
	p.Lockout.RequireOnWake = false
	h := newHarness(t, sitesOf(0), p)
	h.core.Start()

	h.wake.raised = true
	h.advance(time.Second)
	if h.core.Session().LockedOut {
		t.Fatal("wake locked with requirePasswordOnWake off")
	}
	if h.wake.raised {
		t.Fatal("expected the flag to be consumed anyway")
	}
}

func TestBootLock(t *testing.T) {
	p := defaultPolicy()
	p.Lockout = lockPolicy(time.Minute)
	p.Lockout.RequireOnBoot = true
	h := newHarness(t, sitesOf(10, 0), p)
	h.boot.raised = true
	h.core.Start()

	if !h.core.Session().LockedOut {
		t.Fatal("expected boot lock")
	}
	for _, s := range h.surfaces {
		if s.attaches != 0 {
			t.Fatal("content was shown before the boot unlock")
		}
	}
	if got := h.core.Tick(); got != StepNone {
		t.Fatalf("Tick() = %q during boot lock, want none", got)
	}

	if !h.core.Unlock(testPassword) {
		t.Fatal("Unlock() = false")
	}
	if h.visible() != 0 {
		t.Fatalf("visible = %d, want 0", h.visible())
	}
	if got := h.core.Tick(); got == StepNone {
		t.Fatal("expected scheduler running after boot unlock")
	}
}

func TestBootLock_WakeDuringLockDoesNotRelock(t *testing.T) {
	p := defaultPolicy()
	p.Lockout = lockPolicy(time.Minute)
	p.Lockout.RequireOnBoot = true
	p.Lockout.RequireOnWake = true
	h := newHarness(t, sitesOf(10, 0), p)
	h.boot.raised = true
	h.core.Start()

	h.wake.raised = true
	h.core.Tick()
	if h.wake.raised {
		t.Fatal("wake flag not consumed during the boot lock")
	}
	if !h.core.Unlock(testPassword) {
		t.Fatal("Unlock() = false")
	}
	h.core.Tick()
	if h.core.Session().LockedOut {
		t.Fatal("stale wake flag re-locked after the boot unlock")
	}
}

func TestBootFlag_WithoutPolicy(t *testing.T) {
	h := lockedHarness(t, sitesOf(10), 0)
	h.boot.raised = true
	h.core.Start()
	if h.core.Session().LockedOut {
		t.Fatal("boot locked without requirePasswordOnBoot")
	}
}

func TestLockout_DisabledWithoutHash(t *testing.T) {
	p := defaultPolicy()
	p.Lockout = LockoutPolicy{Protection: true, Timeout: time.Minute, RequireOnWake: true}
	h := newHarness(t, sitesOf(0), p)
	h.core.Start()
	h.wake.raised = true
	h.advance(5 * time.Minute)
	if h.core.Session().LockedOut {
		t.Fatal("locked with an empty password hash")
	}
}

func TestLockoutPolicyFromConfig_Armed(t *testing.T) {
	tests := []struct {
		name       string
		protection bool
		password   string
		want       bool
	}{
		{"hash set", true, "$2a$10$abcdefghijklmnopqrstuv", true},
		{"protection off", false, "$2a$10$abcdefghijklmnopqrstuv", false},
		{"empty hash", true, "", false},
		{"whitespace hash", true, "  \t", false},
	}
	for _, tt := range tests {
		cfg := config.DefaultConfig()
		cfg.EnablePasswordProtection = tt.protection
		cfg.LockoutPassword = tt.password
		if got := LockoutPolicyFromConfig(cfg).Enabled(); got != tt.want {
			t.Fatalf("%s: Enabled() = %v, want %v", tt.name, got, tt.want)
		}
		if got := cfg.ProtectionEnabled(); got != tt.want {
			t.Fatalf("%s: ProtectionEnabled() = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestActiveHours(t *testing.T) {
	tests := []struct {
		name       string
		start, end string
		at         time.Time
		wantLocked bool
	}{
		{"inside day window", "08:00", "18:00", time.Date(2026, 5, 4, 9, 0, 0, 0, time.Local), true},
		{"outside day window", "08:00", "18:00", time.Date(2026, 5, 4, 19, 0, 0, 0, time.Local), false},
		{"inside wrapped window", "22:00", "06:00", time.Date(2026, 5, 4, 23, 0, 0, 0, time.Local), true},
		{"outside wrapped window", "22:00", "06:00", time.Date(2026, 5, 4, 12, 0, 0, 0, time.Local), false},
		{"invalid window always active", "bogus", "06:00", time.Date(2026, 5, 4, 12, 0, 0, 0, time.Local), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := defaultPolicy()
			p.Lockout = lockPolicy(time.Minute)
			p.Lockout.ActiveStart = tt.start
			p.Lockout.ActiveEnd = tt.end
			h := newHarnessAt(t, tt.at, sitesOf(0), p)
			h.core.Start()
			h.advance(2 * time.Minute)
			if got := h.core.Session().LockedOut; got != tt.wantLocked {
				t.Fatalf("LockedOut = %v, want %v", got, tt.wantLocked)
			}
		})
	}
}
