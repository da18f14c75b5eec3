package kiosk

import (
	"fmt"
	"time"
)

// EventKind names an outbound signal for the presentation layer.
type EventKind string

const (
	EventPauseControl       EventKind = "pause_control"
	EventInputHelperEnabled EventKind = "input_helper_enabled"
	EventNavMenuEnabled     EventKind = "nav_menu_enabled"
	EventPasswordResult     EventKind = "password_result"
	EventPowerMenu          EventKind = "power_menu"
	EventKeyboard           EventKind = "keyboard"
	EventLockScreen         EventKind = "lock_screen"
	EventPinEntry           EventKind = "pin_entry"
	EventPinResult          EventKind = "pin_result"
	EventPresencePrompt     EventKind = "presence_prompt"
	EventPauseDialog        EventKind = "pause_dialog"
	EventVisibleSite        EventKind = "visible_site"
)

// State reports whether the kind describes standing state, as opposed to a
// one-shot response (a menu request or an auth result) that must not be
// shown again to a presentation layer that connects later.
func (k EventKind) State() bool {
	switch k {
	case EventPowerMenu, EventPasswordResult, EventPinResult:
		return false
	}
	return true
}

// Event is one outbound signal. Data is one of the *Data types below.
type Event struct {
	Kind EventKind `json:"kind"`
	Data any       `json:"data,omitempty"`
}

// Notifier receives outbound signals. Implementations must not block.
type Notifier interface {
	Notify(Event)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Event)

func (f NotifierFunc) Notify(e Event) { f(e) }

// NopNotifier drops every event.
type NopNotifier struct{}

func (NopNotifier) Notify(Event) {}

type PauseControlData struct {
	Index   int  `json:"index"`
	Visible bool `json:"visible"`
}

type EnabledData struct {
	Enabled bool `json:"enabled"`
}

type ResultData struct {
	Correct bool `json:"correct"`
}

type OpenData struct {
	Open bool `json:"open"`
}

type VisibleData struct {
	Visible bool `json:"visible"`
}

// DialogData describes the presence prompt or pause dialog.
type DialogData struct {
	Visible bool     `json:"visible"`
	Options []string `json:"options,omitempty"`
}

type VisibleSiteData struct {
	Index  int    `json:"index"`
	Hidden bool   `json:"hidden"`
	Name   string `json:"name"`
	URL    string `json:"url"`
}

// PowerMenuData is shown alongside the power actions.
type PowerMenuData struct {
	Version    string          `json:"version"`
	Hostname   string          `json:"hostname"`
	Interfaces []InterfaceInfo `json:"interfaces"`
}

type InterfaceInfo struct {
	Name      string   `json:"name"`
	MAC       string   `json:"mac,omitempty"`
	Up        bool     `json:"up"`
	Addresses []string `json:"addresses,omitempty"`
}

func optionLabels() []string {
	out := make([]string, len(ExtensionOptions))
	for i, d := range ExtensionOptions {
		out[i] = formatMinutes(d)
	}
	return out
}

func formatMinutes(d time.Duration) string {
	if d >= time.Hour && d%time.Hour == 0 {
		return fmt.Sprintf("%dh", d/time.Hour)
	}
	return fmt.Sprintf("%dm", d/time.Minute)
}
