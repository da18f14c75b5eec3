package kiosk

import "testing"

func TestEventKind_State(t *testing.T) {
	oneShot := map[EventKind]bool{EventPowerMenu: true, EventPasswordResult: true, EventPinResult: true}
	for _, k := range []EventKind{
		EventPauseControl, EventInputHelperEnabled, EventNavMenuEnabled, EventPasswordResult,
		EventPowerMenu, EventKeyboard, EventLockScreen, EventPinEntry, EventPinResult,
		EventPresencePrompt, EventPauseDialog, EventVisibleSite,
	} {
		if got := k.State(); got == oneShot[k] {
			t.Fatalf("%s.State() = %v, want %v", k, got, !oneShot[k])
		}
	}
}
