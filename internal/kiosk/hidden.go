package kiosk

import (
	"github.com/1broseidon/kiosk/internal/audit"
	"github.com/1broseidon/kiosk/internal/config"
	"github.com/1broseidon/kiosk/internal/passwd"
)

// ToggleHidden enters the hidden set (through the PIN dialog unless the
// PIN is disabled), advances within it, or wraps back to the normal site
// after the last hidden one.
func (c *Core) ToggleHidden() error {
	if err := c.ready(); err != nil {
		return err
	}
	now := c.now()
	c.sess.RecordInteraction(now)

	hidden := c.pool.Hidden()
	if len(hidden) == 0 {
		c.logger.Debug("hidden toggle ignored: no hidden sites")
		return nil
	}

	if c.sess.ShowingHidden {
		next := c.sess.CurrentHiddenIndex + 1
		if next >= len(hidden) {
			c.sess.CurrentHiddenIndex = 0
			c.show(c.sess.CurrentIndex, now)
			c.audit.Record(audit.ActionHiddenExit, nil)
			return nil
		}
		c.showHidden(next, now)
		return nil
	}

	switch c.policy.HiddenPIN {
	case config.HiddenPinDisabled:
		c.enterHidden()
	case "":
		c.logger.Info("hidden toggle ignored: no hiddenTabPin configured")
	default:
		c.openPinDialog()
	}
	return nil
}

func (c *Core) enterHidden() {
	c.closePrompt()
	c.showHidden(0, c.now())
	c.audit.Record(audit.ActionHiddenEnter, nil)
}

func (c *Core) openPinDialog() {
	if c.sess.PinDialogOpen {
		return
	}
	c.sess.PinDialogOpen = true
	c.timers.Arm(TimerPinDialog, PinDialogTimeout, c.closePinDialog)
	c.notify.Notify(Event{Kind: EventPinEntry, Data: VisibleData{Visible: true}})
}

func (c *Core) closePinDialog() {
	c.timers.Cancel(TimerPinDialog)
	if !c.sess.PinDialogOpen {
		return
	}
	c.sess.PinDialogOpen = false
	c.notify.Notify(Event{Kind: EventPinEntry, Data: VisibleData{Visible: false}})
}

// PinActivity keeps the PIN dialog open while the user is typing.
func (c *Core) PinActivity() error {
	if err := c.ready(); err != nil {
		return err
	}
	c.sess.RecordInteraction(c.now())
	if c.sess.PinDialogOpen {
		c.timers.Arm(TimerPinDialog, PinDialogTimeout, c.closePinDialog)
	}
	return nil
}

// SubmitPIN checks pin against the configured hidden PIN. A submission
// without an open dialog is ignored.
func (c *Core) SubmitPIN(pin string) (bool, error) {
	if err := c.ready(); err != nil {
		return false, err
	}
	c.sess.RecordInteraction(c.now())
	if !c.sess.PinDialogOpen {
		return false, nil
	}
	if !passwd.VerifyPIN(c.policy.HiddenPIN, pin) {
		c.timers.Arm(TimerPinDialog, PinDialogTimeout, c.closePinDialog)
		c.notify.Notify(Event{Kind: EventPinResult, Data: ResultData{Correct: false}})
		c.audit.Record(audit.ActionPinFailed, nil)
		return false, nil
	}
	c.closePinDialog()
	c.notify.Notify(Event{Kind: EventPinResult, Data: ResultData{Correct: true}})
	c.enterHidden()
	return true, nil
}
