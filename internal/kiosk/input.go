package kiosk

import "time"

// Activity records a user input ping. It is accepted while locked.
func (c *Core) Activity() {
	c.sess.RecordInteraction(c.now())
}

// ShowKeyboard opens the on-screen input helper.
func (c *Core) ShowKeyboard() error {
	if err := c.ready(); err != nil {
		return err
	}
	now := c.now()
	c.sess.RecordInteraction(now)
	c.sess.LastKeyboardActivityAt = now
	if c.sess.KeyboardOpen {
		return nil
	}
	c.sess.KeyboardOpen = true
	c.notify.Notify(Event{Kind: EventKeyboard, Data: OpenData{Open: true}})
	return nil
}

// CloseKeyboard closes the input helper.
func (c *Core) CloseKeyboard() error {
	if err := c.ready(); err != nil {
		return err
	}
	c.sess.RecordInteraction(c.now())
	c.closeKeyboard()
	return nil
}

// KeyboardActivity keeps the input helper open.
func (c *Core) KeyboardActivity() error {
	if err := c.ready(); err != nil {
		return err
	}
	now := c.now()
	c.sess.RecordInteraction(now)
	c.sess.LastKeyboardActivityAt = now
	return nil
}

func (c *Core) closeKeyboard() {
	if !c.sess.KeyboardOpen {
		return
	}
	c.sess.KeyboardOpen = false
	c.notify.Notify(Event{Kind: EventKeyboard, Data: OpenData{Open: false}})
}

// checkInputHelper closes the input helper once idle past its timeout.
func (c *Core) checkInputHelper(now time.Time) bool {
	if c.sess.KeyboardOpen && now.Sub(c.sess.LastKeyboardActivityAt) >= InputHelperIdleTimeout {
		c.logger.Debug("closing idle input helper")
		c.closeKeyboard()
	}
	return false
}

// PowerMenu asks the presentation layer to show the power menu.
func (c *Core) PowerMenu() error {
	if err := c.ready(); err != nil {
		return err
	}
	c.sess.RecordInteraction(c.now())
	var data PowerMenuData
	if c.power != nil {
		data = c.power()
	}
	c.notify.Notify(Event{Kind: EventPowerMenu, Data: data})
	return nil
}
