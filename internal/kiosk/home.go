package kiosk

import (
	"fmt"
	"time"

	"github.com/1broseidon/kiosk/internal/audit"
)

// PromptChoice is the answer to the presence prompt.
type PromptChoice string

const (
	PromptStillHere PromptChoice = "still_here"
	PromptGoHome    PromptChoice = "go_home"
	PromptExtend    PromptChoice = "extend"
)

// checkHome is the home tick step. It applies only to manual sites and the
// hidden set, and only with a valid home site.
func (c *Core) checkHome(now time.Time) bool {
	home := c.policy.HomeIndex
	if home < 0 || c.sess.PromptOpen || c.sess.ExtensionLive(now) {
		return false
	}
	if !c.sess.ShowingHidden {
		if c.sess.CurrentIndex == home || c.sess.CurrentIndex < 0 {
			return false
		}
		if !c.sites[c.sess.CurrentIndex].Manual() {
			return false
		}
	}
	if c.sess.IdleFor(now) < c.policy.InactivityTimeout {
		return false
	}
	c.openPrompt()
	return true
}

func (c *Core) openPrompt() {
	if c.sess.PromptOpen {
		return
	}
	c.sess.PromptOpen = true
	c.timers.Arm(TimerPresencePrompt, PresencePromptTimeout, func() {
		now := c.now()
		c.sess.PromptOpen = false
		c.notify.Notify(Event{Kind: EventPresencePrompt, Data: DialogData{Visible: false}})
		// Playback that started while the prompt was up counts as presence.
		if c.sess.MediaPlaying {
			c.logger.Info("presence prompt timed out during playback; staying")
			c.sess.RecordInteraction(now)
			return
		}
		c.logger.Info("presence prompt timed out; returning home")
		c.returnHome(now)
	})
	c.notify.Notify(Event{Kind: EventPresencePrompt, Data: DialogData{Visible: true, Options: optionLabels()}})
}

func (c *Core) closePrompt() {
	c.timers.Cancel(TimerPresencePrompt)
	if !c.sess.PromptOpen {
		return
	}
	c.sess.PromptOpen = false
	c.notify.Notify(Event{Kind: EventPresencePrompt, Data: DialogData{Visible: false}})
}

// RespondPrompt handles the presence prompt answer. minutes is only read
// for PromptExtend.
func (c *Core) RespondPrompt(choice PromptChoice, minutes int) error {
	if err := c.ready(); err != nil {
		return err
	}
	now := c.now()
	switch choice {
	case PromptStillHere:
		c.sess.RecordInteraction(now)
		c.closePrompt()
	case PromptGoHome:
		c.sess.RecordInteraction(now)
		c.closePrompt()
		c.returnHome(now)
	case PromptExtend:
		return c.Extend(time.Duration(minutes) * time.Minute)
	default:
		return fmt.Errorf("unknown prompt choice %q", choice)
	}
	return nil
}

// GoHome returns to the home site on request.
func (c *Core) GoHome() error {
	if err := c.ready(); err != nil {
		return err
	}
	if c.policy.HomeIndex < 0 {
		return ErrUnknownSite
	}
	now := c.now()
	c.sess.RecordInteraction(now)
	c.returnHome(now)
	return nil
}

// returnHome leaves hidden mode, clears manual navigation and the
// extension token, shows home and restarts the rotation and lockout clocks.
func (c *Core) returnHome(now time.Time) {
	home := c.policy.HomeIndex
	if home < 0 || c.sess.LockedOut {
		return
	}
	c.closePrompt()
	c.closePinDialog()
	c.sess.ManualNavigation = false
	c.clearExtension()
	c.show(home, now)
	c.sess.LockoutActivityAt = now
	c.audit.Record(audit.ActionHome, map[string]any{"index": home})
	c.logger.Info("returned home", "index", home)
}
