package kiosk

import (
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/1broseidon/kiosk/internal/audit"
	"github.com/1broseidon/kiosk/internal/config"
	"github.com/1broseidon/kiosk/internal/passwd"
)

// LockoutPolicy configures the authentication gate.
type LockoutPolicy struct {
	Protection    bool
	PasswordHash  string
	Timeout       time.Duration // 0 disables the inactivity trigger
	AtTime        string        // "HH:MM", empty disables the daily lock
	ActiveStart   string        // "HH:MM" window for the inactivity trigger
	ActiveEnd     string
	RequireOnBoot bool
	RequireOnWake bool
}

// LockoutPolicyFromConfig extracts the lockout settings.
func LockoutPolicyFromConfig(cfg *config.Config) LockoutPolicy {
	return LockoutPolicy{
		Protection:    cfg.ProtectionEnabled(),
		PasswordHash:  strings.TrimSpace(cfg.LockoutPassword),
		Timeout:       cfg.LockoutTimeoutDuration(),
		AtTime:        cfg.LockoutAtTime,
		ActiveStart:   cfg.LockoutActiveHours.Start,
		ActiveEnd:     cfg.LockoutActiveHours.End,
		RequireOnBoot: cfg.RequirePasswordOnBoot,
		RequireOnWake: cfg.RequirePasswordOnWake,
	}
}

// Enabled reports whether the gate is armed. Protection without a stored
// hash is inert.
func (p LockoutPolicy) Enabled() bool {
	return p.Protection && p.PasswordHash != ""
}

// lockoutSchedule is the parsed form of the time-of-day settings. Invalid
// values disable their trigger.
type lockoutSchedule struct {
	atMinute    int
	hasAt       bool
	activeStart int
	activeEnd   int
	hasWindow   bool
}

func newLockoutSchedule(p LockoutPolicy, logger *slog.Logger) lockoutSchedule {
	var s lockoutSchedule
	if p.AtTime != "" {
		if m, ok := config.ParseClock(p.AtTime); ok {
			s.atMinute, s.hasAt = m, true
		} else {
			logger.Warn("ignoring invalid lockoutAtTime", "value", p.AtTime)
		}
	}
	if p.ActiveStart != "" || p.ActiveEnd != "" {
		start, ok1 := config.ParseClock(p.ActiveStart)
		end, ok2 := config.ParseClock(p.ActiveEnd)
		if ok1 && ok2 {
			s.activeStart, s.activeEnd, s.hasWindow = start, end, true
		} else {
			logger.Warn("ignoring invalid lockoutActiveHours", "start", p.ActiveStart, "end", p.ActiveEnd)
		}
	}
	return s
}

func minuteOfDay(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}

// active reports whether the inactivity trigger applies at t. Start after
// end wraps midnight; start == end means all day.
func (s lockoutSchedule) active(t time.Time) bool {
	if !s.hasWindow || s.activeStart == s.activeEnd {
		return true
	}
	m := minuteOfDay(t)
	if s.activeStart < s.activeEnd {
		return m >= s.activeStart && m < s.activeEnd
	}
	return m >= s.activeStart || m < s.activeEnd
}

// checkLockout is the lockout tick step. It reports whether the rest of
// the tick must be skipped.
func (c *Core) checkLockout(now time.Time) bool {
	// Consumed even while locked so a stale flag cannot re-lock right after
	// an unlock.
	woke := consumeFlag(c.wake, "wake", c.logger)

	if c.sess.LockedOut {
		return true
	}
	p := c.policy.Lockout
	if !p.Enabled() {
		return false
	}

	if c.lockout.hasAt && minuteOfDay(now) == c.lockout.atMinute {
		key := now.Format("2006-01-02 15:04")
		if key != c.sess.LastScheduledLockMinute {
			c.sess.LastScheduledLockMinute = key
			c.lock(now, "scheduled")
			return true
		}
	}

	if woke && p.RequireOnWake {
		c.lock(now, "wake")
		return true
	}

	if p.Timeout > 0 && !c.sess.ExtensionLive(now) && c.lockout.active(now) &&
		now.Sub(c.sess.LockoutActivityAt) >= p.Timeout {
		c.lock(now, "inactivity")
		return true
	}
	return false
}

// lock enters the locked state. Locking while locked is a no-op.
func (c *Core) lock(now time.Time, reason string) {
	if c.sess.LockedOut {
		return
	}
	c.sess.LockedOut = true
	c.lockID = uuid.NewString()

	c.pool.DetachAll()
	c.poller.Cancel()
	c.closePinDialog()
	c.closePauseDialog()
	c.closePrompt()
	c.closeKeyboard()

	c.notify.Notify(Event{Kind: EventLockScreen, Data: VisibleData{Visible: true}})
	c.audit.Record(audit.ActionLock, map[string]any{"reason": reason, "lock_id": c.lockID})
	c.logger.Info("screen locked", "reason", reason, "lock_id", c.lockID)
}

// LockNow locks immediately if protection is armed.
func (c *Core) LockNow() error {
	if !c.started {
		return ErrNoSites
	}
	if !c.policy.Lockout.Enabled() {
		c.logger.Info("lock requested but password protection is off")
		return nil
	}
	c.lock(c.now(), "manual")
	return nil
}

// Unlock verifies password. It reports whether the screen is unlocked
// afterwards; calling it while unlocked is a no-op that returns true.
func (c *Core) Unlock(password string) bool {
	if !c.sess.LockedOut {
		return true
	}
	now := c.now()
	c.sess.RecordInteraction(now)

	if !passwd.Verify(c.policy.Lockout.PasswordHash, password) {
		c.notify.Notify(Event{Kind: EventPasswordResult, Data: ResultData{Correct: false}})
		c.audit.Record(audit.ActionUnlockFailed, map[string]any{"lock_id": c.lockID})
		c.logger.Info("unlock attempt rejected", "lock_id", c.lockID)
		return false
	}

	c.sess.LockedOut = false
	c.sess.LockoutActivityAt = now
	c.ticking = true

	hidden := c.pool.Hidden()
	if c.sess.ShowingHidden && c.sess.CurrentHiddenIndex < len(hidden) {
		c.showHidden(c.sess.CurrentHiddenIndex, now)
	} else {
		c.show(c.sess.CurrentIndex, now)
	}

	c.notify.Notify(Event{Kind: EventPasswordResult, Data: ResultData{Correct: true}})
	c.notify.Notify(Event{Kind: EventLockScreen, Data: VisibleData{Visible: false}})
	c.audit.Record(audit.ActionUnlock, map[string]any{"lock_id": c.lockID})
	c.logger.Info("screen unlocked", "lock_id", c.lockID)
	c.lockID = ""
	return true
}
