package mcp

import "github.com/1broseidon/kiosk/internal/ipc"

// StatusInput is the input for the kiosk_status tool.
type StatusInput struct{}

// StatusOutput is the output for the kiosk_status tool.
type StatusOutput struct {
	Locked           bool   `json:"locked"`
	VisibleIndex     int    `json:"visible_index"`
	SiteName         string `json:"site_name,omitempty"`
	SiteURL          string `json:"site_url,omitempty"`
	ShowingHidden    bool   `json:"showing_hidden"`
	ManualNavigation bool   `json:"manual_navigation"`
	MediaPlaying     bool   `json:"media_playing"`
	MediaLabel       string `json:"media_label,omitempty"`
	PausedUntil      string `json:"paused_until,omitempty"`
	IdleSeconds      int64  `json:"idle_seconds"`
	UptimeSeconds    int64  `json:"uptime_seconds"`
}

// ListSitesInput is the input for the list_sites tool.
type ListSitesInput struct{}

// ListSitesOutput is the output for the list_sites tool.
type ListSitesOutput struct {
	Sites []ipc.SiteInfo `json:"sites"`
}

// NavigateSiteInput is the input for the navigate_site tool.
type NavigateSiteInput struct {
	Index int `json:"index" jsonschema:"Config index of the site to show, as reported by list_sites"`
}

// RotateInput is the input for the rotate tool.
type RotateInput struct {
	Direction string `json:"direction,omitempty" jsonschema:"next (default) or previous"`
}

// PauseRotationInput is the input for the pause_rotation tool.
type PauseRotationInput struct {
	Minutes int `json:"minutes" jsonschema:"How long to pause rotation and inactivity lockout, 1 to 240 minutes. 0 resumes immediately."`
}

// LockScreenInput is the input for the lock_screen tool.
type LockScreenInput struct{}

// ActionOutput is the output of tools that change what is shown.
type ActionOutput struct {
	VisibleIndex int    `json:"visible_index"`
	SiteName     string `json:"site_name,omitempty"`
	Locked       bool   `json:"locked"`
	PausedUntil  string `json:"paused_until,omitempty"`
}
