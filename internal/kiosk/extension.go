package kiosk

import (
	"time"

	"github.com/1broseidon/kiosk/internal/audit"
)

// Extend sets the extension token to now+d, suspending rotation and the
// inactivity lockout. d <= 0 clears the token. Opening the pause dialog
// never clears a token; only rotation, manual navigation and return home do.
func (c *Core) Extend(d time.Duration) error {
	if err := c.ready(); err != nil {
		return err
	}
	if d > MaxExtension {
		return ErrExtensionTooLong
	}
	now := c.now()
	c.sess.RecordInteraction(now)
	c.closePauseDialog()
	c.closePrompt()

	if d <= 0 {
		c.clearExtension()
		c.sess.RotationStartedAt = now
		c.logger.Info("extension cleared")
		return nil
	}
	c.sess.ExtensionUntil = now.Add(d)
	c.audit.Record(audit.ActionPause, map[string]any{"minutes": int(d / time.Minute)})
	c.logger.Info("extension set", "until", c.sess.ExtensionUntil)
	return nil
}

func (c *Core) clearExtension() {
	c.sess.ExtensionUntil = time.Time{}
}

// checkExtensionExpiry lazily expires the token and restarts both clocks so
// pre-extension timestamps cannot trigger rotation or lockout at once.
func (c *Core) checkExtensionExpiry(now time.Time) bool {
	if c.sess.LockedOut || c.sess.ExtensionUntil.IsZero() || now.Before(c.sess.ExtensionUntil) {
		return false
	}
	c.clearExtension()
	c.sess.RotationStartedAt = now
	c.sess.LockoutActivityAt = now
	c.logger.Info("extension expired")
	return false
}

// RequestPause opens the pause dialog.
func (c *Core) RequestPause() error {
	if err := c.ready(); err != nil {
		return err
	}
	c.sess.RecordInteraction(c.now())
	if c.sess.PauseDialogOpen {
		c.timers.Arm(TimerPauseDialog, PauseDialogTimeout, c.closePauseDialog)
		return nil
	}
	c.sess.PauseDialogOpen = true
	c.timers.Arm(TimerPauseDialog, PauseDialogTimeout, c.closePauseDialog)
	c.notify.Notify(Event{Kind: EventPauseDialog, Data: DialogData{Visible: true, Options: optionLabels()}})
	return nil
}

func (c *Core) closePauseDialog() {
	c.timers.Cancel(TimerPauseDialog)
	if !c.sess.PauseDialogOpen {
		return
	}
	c.sess.PauseDialogOpen = false
	c.notify.Notify(Event{Kind: EventPauseDialog, Data: DialogData{Visible: false}})
}
