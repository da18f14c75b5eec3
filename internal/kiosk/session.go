package kiosk

import "time"

// Session is the single mutable record the core works on. It is never
// persisted.
type Session struct {
	CurrentIndex       int  // config index of the visible non-hidden site, -1 when none
	ShowingHidden      bool // the hidden set is on screen
	CurrentHiddenIndex int  // position within the hidden set
	LockedOut          bool
	ManualNavigation   bool // set by manual switches, cleared on return home

	MediaPlaying      bool
	MediaLabel        string
	LastMediaChangeAt time.Time

	LastInteractionAt time.Time
	RotationStartedAt time.Time
	ExtensionUntil    time.Time
	LockoutActivityAt time.Time

	// "2006-01-02 15:04" of the last scheduled lock.
	LastScheduledLockMinute string

	KeyboardOpen           bool
	LastKeyboardActivityAt time.Time

	PinDialogOpen   bool
	PauseDialogOpen bool
	PromptOpen      bool
}

// RecordInteraction marks user input at now. It feeds both the presence
// check and the inactivity lockout.
func (s *Session) RecordInteraction(now time.Time) {
	s.LastInteractionAt = now
	s.LockoutActivityAt = now
}

// IdleFor is the time since the last user input.
func (s *Session) IdleFor(now time.Time) time.Duration {
	return now.Sub(s.LastInteractionAt)
}

// ExtensionLive reports whether the extension token suppresses rotation
// and the inactivity lockout.
func (s *Session) ExtensionLive(now time.Time) bool {
	return !s.ExtensionUntil.IsZero() && now.Before(s.ExtensionUntil)
}

// InMediaGrace reports whether media stopped less than MediaGracePeriod ago.
func (s *Session) InMediaGrace(now time.Time) bool {
	return !s.MediaPlaying && !s.LastMediaChangeAt.IsZero() && now.Sub(s.LastMediaChangeAt) < MediaGracePeriod
}

func (s *Session) setMedia(now time.Time, playing bool, label string) bool {
	s.MediaLabel = label
	if s.MediaPlaying == playing {
		return false
	}
	s.MediaPlaying = playing
	s.LastMediaChangeAt = now
	return true
}
