package ipc

import (
	"testing"

	"github.com/1broseidon/kiosk/internal/kiosk"
)

func TestHub_ReplaysLatestPerKind(t *testing.T) {
	h := NewHub()
	h.Notify(kiosk.Event{Kind: kiosk.EventLockScreen, Data: kiosk.VisibleData{Visible: true}})
	h.Notify(kiosk.Event{Kind: kiosk.EventVisibleSite, Data: kiosk.VisibleSiteData{Index: 0}})
	h.Notify(kiosk.Event{Kind: kiosk.EventLockScreen, Data: kiosk.VisibleData{Visible: false}})

	ch, cancel := h.Subscribe(1)
	defer cancel()

	first := <-ch
	if first.Kind != kiosk.EventLockScreen || first.Data.(kiosk.VisibleData).Visible {
		t.Fatalf("first replayed event = %+v, want latest lock_screen", first)
	}
	if second := <-ch; second.Kind != kiosk.EventVisibleSite {
		t.Fatalf("second replayed event = %+v, want visible_site", second)
	}
}

func TestHub_SlowSubscriberDoesNotBlock(t *testing.T) {
	h := NewHub()
	_, cancel := h.Subscribe(1)
	defer cancel()

	for i := 0; i < 5; i++ {
		h.Notify(kiosk.Event{Kind: kiosk.EventVisibleSite, Data: kiosk.VisibleSiteData{Index: i}})
	}
	if h.Dropped() != 4 {
		t.Fatalf("Dropped() = %d, want 4", h.Dropped())
	}
}

func TestHub_CancelAndClose(t *testing.T) {
	h := NewHub()
	ch, cancel := h.Subscribe(4)
	cancel()
	cancel()
	if _, open := <-ch; open {
		t.Fatal("channel open after cancel")
	}

	ch2, _ := h.Subscribe(4)
	h.Close()
	if _, open := <-ch2; open {
		t.Fatal("channel open after Close")
	}
	h.Notify(kiosk.Event{Kind: kiosk.EventKeyboard})

	ch3, _ := h.Subscribe(4)
	if _, open := <-ch3; open {
		t.Fatal("subscription after Close is open")
	}
}

func TestHub_OneShotEventsAreNotReplayed(t *testing.T) {
	h := NewHub()
	h.Notify(kiosk.Event{Kind: kiosk.EventVisibleSite, Data: kiosk.VisibleSiteData{Index: 2}})
	h.Notify(kiosk.Event{Kind: kiosk.EventPowerMenu, Data: kiosk.PowerMenuData{Version: "v"}})
	h.Notify(kiosk.Event{Kind: kiosk.EventPasswordResult, Data: kiosk.ResultData{Correct: false}})
	h.Notify(kiosk.Event{Kind: kiosk.EventPinResult, Data: kiosk.ResultData{Correct: false}})
	h.Notify(kiosk.Event{Kind: kiosk.EventLockScreen, Data: kiosk.VisibleData{Visible: false}})

	ch, cancel := h.Subscribe(8)
	defer cancel()

	var got []kiosk.EventKind
	for len(ch) > 0 {
		got = append(got, (<-ch).Kind)
	}
	want := []kiosk.EventKind{kiosk.EventVisibleSite, kiosk.EventLockScreen}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("replayed kinds = %v, want %v", got, want)
	}

	// live delivery still includes one-shot kinds
	h.Notify(kiosk.Event{Kind: kiosk.EventPowerMenu, Data: kiosk.PowerMenuData{Version: "v"}})
	if e := <-ch; e.Kind != kiosk.EventPowerMenu {
		t.Fatalf("live event = %v, want power_menu", e.Kind)
	}
}
