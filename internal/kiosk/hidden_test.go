package kiosk

import (
	"testing"
	"time"
)

func hiddenHarness(t *testing.T, pin string) *harness {
	t.Helper()
	p := defaultPolicy()
	p.HiddenPIN = pin
	return newHarness(t, sitesOf(10, -1, 0, -1), p)
}

func TestToggleHidden_DisabledPinShowsImmediately(t *testing.T) {
	h := hiddenHarness(t, "disabled")
	h.core.Start()

	if err := h.core.ToggleHidden(); err != nil {
		t.Fatalf("ToggleHidden() error: %v", err)
	}
	if h.count(EventPinEntry) != 0 {
		t.Fatal("PIN entry shown with the PIN disabled")
	}
	if h.visible() != 1 || !h.core.Session().ShowingHidden {
		t.Fatalf("visible = %d, want hidden site 1", h.visible())
	}
	if e, _ := h.last(EventVisibleSite); !e.Data.(VisibleSiteData).Hidden {
		t.Fatal("visible_site event not flagged hidden")
	}
}

func TestToggleHidden_CyclesThenWraps(t *testing.T) {
	h := hiddenHarness(t, "disabled")
	h.core.Start()

	want := []int{1, 3, 0}
	for i, w := range want {
		h.core.ToggleHidden()
		if h.visible() != w {
			t.Fatalf("toggle %d: visible = %d, want %d", i, h.visible(), w)
		}
	}
	if h.core.Session().ShowingHidden {
		t.Fatal("still showing hidden after wrapping")
	}
}

func TestHiddenSites_NeverRotated(t *testing.T) {
	h := hiddenHarness(t, "disabled")
	h.core.Start()
	h.core.ToggleHidden()

	h.advance(10 * time.Minute)
	if h.visible() != 1 {
		t.Fatalf("visible = %d, want hidden site to stay put", h.visible())
	}
}

func TestPinDialog(t *testing.T) {
	h := hiddenHarness(t, "4321")
	h.core.Start()

	h.core.ToggleHidden()
	if !h.dialogVisible(EventPinEntry) {
		t.Fatal("expected pin_entry{visible:true}")
	}
	h.core.ToggleHidden()
	if h.count(EventPinEntry) != 1 {
		t.Fatal("second toggle reopened the PIN dialog")
	}

	ok, err := h.core.SubmitPIN("0000")
	if err != nil || ok {
		t.Fatalf("SubmitPIN(wrong) = %v, %v", ok, err)
	}
	if e, _ := h.last(EventPinResult); e.Data.(ResultData).Correct {
		t.Fatal("expected pin_result{correct:false}")
	}
	if h.core.Session().ShowingHidden {
		t.Fatal("wrong PIN showed hidden content")
	}

	ok, err = h.core.SubmitPIN("4321")
	if err != nil || !ok {
		t.Fatalf("SubmitPIN(right) = %v, %v", ok, err)
	}
	if h.dialogVisible(EventPinEntry) || h.visible() != 1 {
		t.Fatalf("visible = %d, want hidden site 1 with the dialog closed", h.visible())
	}
}

func TestPinDialog_AutoDismiss(t *testing.T) {
	h := hiddenHarness(t, "4321")
	h.core.Start()
	h.core.ToggleHidden()

	h.advance(29 * time.Second)
	h.core.PinActivity()
	h.advance(29 * time.Second)
	if !h.core.Session().PinDialogOpen {
		t.Fatal("PIN activity did not keep the dialog open")
	}
	h.advance(time.Second)
	if h.core.Session().PinDialogOpen || h.dialogVisible(EventPinEntry) {
		t.Fatal("PIN dialog did not dismiss after 30s of inactivity")
	}

	if ok, _ := h.core.SubmitPIN("4321"); ok {
		t.Fatal("PIN accepted without an open dialog")
	}
}

func TestToggleHidden_EmptyPinUnreachable(t *testing.T) {
	h := hiddenHarness(t, "")
	h.core.Start()
	h.core.ToggleHidden()
	if h.core.Session().ShowingHidden || h.count(EventPinEntry) != 0 {
		t.Fatal("hidden set reachable without a configured PIN")
	}
}
