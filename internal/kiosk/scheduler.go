package kiosk

import "time"

// Step names one guard of the per-tick schedule.
type Step string

const (
	StepNone            Step = ""
	StepInputHelper     Step = "input-helper"
	StepExtensionExpiry Step = "extension-expiry"
	StepLockout         Step = "lockout"
	StepMediaPoll       Step = "media-poll"
	StepMediaPlaying    Step = "media-playing"
	StepMediaGrace      Step = "media-grace"
	StepUserActivity    Step = "user-activity"
	StepRotation        Step = "rotation"
	StepHome            Step = "home"
)

type guard struct {
	step Step
	run  func(now time.Time) bool // true stops the tick
}

// schedule is evaluated in order; the first guard returning true ends the
// tick. Lockout precedes everything that acts on content.
func (c *Core) schedule() []guard {
	return []guard{
		{StepInputHelper, c.checkInputHelper},
		{StepExtensionExpiry, c.checkExtensionExpiry},
		{StepLockout, c.checkLockout},
		{StepMediaPoll, c.pollMedia},
		{StepMediaPlaying, func(time.Time) bool { return c.sess.MediaPlaying }},
		{StepMediaGrace, c.sess.InMediaGrace},
		{StepUserActivity, func(now time.Time) bool { return c.sess.IdleFor(now) < UserActivityWindow }},
		{StepRotation, c.checkRotation},
		{StepHome, c.checkHome},
	}
}

// Tick runs one scheduler pass and returns the step that stopped it, or
// StepNone when every guard let it through. Before Start, or while a boot
// lock is pending, it does nothing.
func (c *Core) Tick() Step {
	if !c.started {
		return StepNone
	}
	if !c.ticking {
		consumeFlag(c.wake, "wake", c.logger)
		return StepNone
	}
	now := c.now()
	c.lastStep = StepNone
	for _, g := range c.schedule() {
		if g.run(now) {
			c.lastStep = g.step
			return g.step
		}
	}
	return StepNone
}

// pollMedia starts a poll of the visible surface every MediaPollInterval
// and folds the last finished result into the session.
func (c *Core) pollMedia(now time.Time) bool {
	visible := c.visibleIndex()
	if r, ok := c.poller.Take(); ok && r.index == visible {
		c.applyMedia(now, r)
	}
	if visible >= 0 {
		c.poller.MaybeStart(now, visible, c.pool.Surface(visible))
	}
	return false
}

func (c *Core) applyMedia(now time.Time, r mediaResult) {
	state := r.report.State
	if r.err != nil {
		c.logger.Debug("media detection failed", "index", r.index, "error", r.err)
		state = MediaUnknown
	}
	if state == MediaUnknown {
		if c.policy.HoldMediaOnDetectorError {
			return
		}
		state = MediaNotPlaying
	}
	playing := state == MediaPlaying
	if c.sess.setMedia(now, playing, r.report.Label) {
		c.logger.Info("media state changed", "playing", playing, "label", r.report.Label, "index", r.index)
	}
}

// Status is a snapshot for status queries.
type Status struct {
	Started          bool      `json:"started"`
	Locked           bool      `json:"locked"`
	VisibleIndex     int       `json:"visible_index"`
	CurrentIndex     int       `json:"current_index"`
	ShowingHidden    bool      `json:"showing_hidden"`
	HiddenPosition   int       `json:"hidden_position"`
	SiteName         string    `json:"site_name,omitempty"`
	SiteURL          string    `json:"site_url,omitempty"`
	ManualNavigation bool      `json:"manual_navigation"`
	MediaPlaying     bool      `json:"media_playing"`
	MediaLabel       string    `json:"media_label,omitempty"`
	IdleSeconds      int64     `json:"idle_seconds"`
	RotationElapsed  int64     `json:"rotation_elapsed_seconds"`
	ExtensionUntil   time.Time `json:"extension_until,omitzero"`
	KeyboardOpen     bool      `json:"keyboard_open"`
	PromptOpen       bool      `json:"prompt_open"`
	LastStep         Step      `json:"last_step,omitempty"`
	SiteCount        int       `json:"site_count"`
}

// Status returns the current snapshot.
func (c *Core) Status() Status {
	now := c.now()
	st := Status{
		Started:          c.started,
		Locked:           c.sess.LockedOut,
		VisibleIndex:     c.visibleIndex(),
		CurrentIndex:     c.sess.CurrentIndex,
		ShowingHidden:    c.sess.ShowingHidden,
		HiddenPosition:   c.sess.CurrentHiddenIndex,
		ManualNavigation: c.sess.ManualNavigation,
		MediaPlaying:     c.sess.MediaPlaying,
		MediaLabel:       c.sess.MediaLabel,
		KeyboardOpen:     c.sess.KeyboardOpen,
		PromptOpen:       c.sess.PromptOpen,
		LastStep:         c.lastStep,
		SiteCount:        len(c.sites),
	}
	if c.started {
		st.IdleSeconds = int64(c.sess.IdleFor(now) / time.Second)
		st.RotationElapsed = int64(now.Sub(c.sess.RotationStartedAt) / time.Second)
	}
	if c.sess.ExtensionLive(now) {
		st.ExtensionUntil = c.sess.ExtensionUntil
	}
	// Never describe content while the lock screen is up.
	if st.VisibleIndex >= 0 {
		st.SiteName = c.sites[st.VisibleIndex].Title()
		st.SiteURL = c.sites[st.VisibleIndex].URL
	}
	return st
}
