package kiosk

import (
	"time"

	"github.com/1broseidon/kiosk/internal/audit"
)

// nextRotating scans circularly from the site after from and returns the
// first rotation-eligible site, or -1 if none other than from exists.
func (c *Core) nextRotating(from int) int {
	n := len(c.sites)
	for step := 1; step < n; step++ {
		i := (from + step) % n
		if c.sites[i].Rotating() {
			return i
		}
	}
	return -1
}

// checkRotation is the rotation tick step. It never stops the tick.
func (c *Core) checkRotation(now time.Time) bool {
	if c.sess.ShowingHidden || c.sess.CurrentIndex < 0 {
		return false
	}
	cur := c.sites[c.sess.CurrentIndex]
	if !cur.Rotating() || c.sess.ExtensionLive(now) {
		return false
	}
	if now.Sub(c.sess.RotationStartedAt) < cur.Duration {
		return false
	}

	next := c.nextRotating(c.sess.CurrentIndex)
	if next < 0 {
		c.sess.RotationStartedAt = now
		return false
	}
	c.clearExtension()
	c.show(next, now)
	c.audit.Record(audit.ActionRotate, map[string]any{"index": next, "url": c.sites[next].URL})
	c.logger.Debug("rotated", "index", next)
	return false
}

// visibleSites lists non-hidden sites in config order.
func (c *Core) visibleSites() []int {
	var out []int
	for i, s := range c.sites {
		if !s.Hidden() {
			out = append(out, i)
		}
	}
	return out
}

// Next shows the next non-hidden site (rotating or manual).
func (c *Core) Next() error {
	return c.step(1)
}

// Previous shows the previous non-hidden site.
func (c *Core) Previous() error {
	return c.step(-1)
}

func (c *Core) step(dir int) error {
	if err := c.ready(); err != nil {
		return err
	}
	list := c.visibleSites()
	if len(list) == 0 {
		return ErrNoSites
	}
	pos := 0
	for i, idx := range list {
		if idx == c.sess.CurrentIndex {
			pos = i
			break
		}
	}
	// Leaving the hidden set lands on the current normal site.
	if !c.sess.ShowingHidden {
		pos = (pos + dir + len(list)) % len(list)
	}
	return c.navigate(list[pos], audit.ActionNavigate)
}

// Navigate shows site index directly.
func (c *Core) Navigate(index int) error {
	if err := c.ready(); err != nil {
		return err
	}
	if index < 0 || index >= len(c.sites) {
		return ErrUnknownSite
	}
	if c.sites[index].Hidden() {
		return ErrHiddenSite
	}
	return c.navigate(index, audit.ActionNavigate)
}

func (c *Core) navigate(index int, action audit.Action) error {
	now := c.now()
	c.sess.RecordInteraction(now)
	c.sess.ManualNavigation = true
	c.clearExtension()
	c.closePrompt()
	if c.sess.ShowingHidden {
		c.audit.Record(audit.ActionHiddenExit, nil)
	}
	c.show(index, now)
	c.audit.Record(action, map[string]any{"index": index, "url": c.sites[index].URL})
	return nil
}

// ready rejects inbound navigation before start or while locked.
func (c *Core) ready() error {
	if !c.started {
		return ErrNoSites
	}
	if c.sess.LockedOut {
		return ErrLocked
	}
	return nil
}

// show attaches normal site index and restarts its rotation clock.
func (c *Core) show(index int, now time.Time) {
	c.sess.ShowingHidden = false
	c.sess.RotationStartedAt = now
	if index < 0 {
		c.pool.DetachAll()
		return
	}
	c.sess.CurrentIndex = index
	c.attach(index, false, now)
}

// showHidden attaches the hidden site at position pos in the hidden set.
func (c *Core) showHidden(pos int, now time.Time) {
	hidden := c.pool.Hidden()
	if pos < 0 || pos >= len(hidden) {
		return
	}
	c.sess.ShowingHidden = true
	c.sess.CurrentHiddenIndex = pos
	c.attach(hidden[pos], true, now)
}

func (c *Core) attach(index int, hidden bool, now time.Time) {
	c.pool.Attach(index)
	c.poller.Cancel()
	if c.sess.setMedia(now, false, "") {
		c.logger.Debug("media state reset on surface change")
	}

	site := c.sites[index]
	c.notify.Notify(Event{Kind: EventPauseControl, Data: PauseControlData{
		Index:   index,
		Visible: c.policy.EnablePauseButton && site.Rotating(),
	}})
	c.notify.Notify(Event{Kind: EventVisibleSite, Data: VisibleSiteData{
		Index:  index,
		Hidden: hidden,
		Name:   site.Title(),
		URL:    site.URL,
	}})
}

// visibleIndex is the config index on screen, or -1.
func (c *Core) visibleIndex() int {
	if c.sess.LockedOut {
		return -1
	}
	if c.sess.ShowingHidden {
		hidden := c.pool.Hidden()
		if c.sess.CurrentHiddenIndex < len(hidden) {
			return hidden[c.sess.CurrentHiddenIndex]
		}
		return -1
	}
	return c.sess.CurrentIndex
}
