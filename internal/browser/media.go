package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/1broseidon/kiosk/internal/kiosk"
)

// mediaScript collects what the page exposes about playback. Cross-origin
// frames are opaque, so embedded players are judged by their src alone.
const mediaScript = `() => {
	const visible = (el) => {
		const r = el.getBoundingClientRect();
		const st = getComputedStyle(el);
		return r.width > 0 && r.height > 0 && st.visibility !== 'hidden' && st.display !== 'none';
	};
	const media = Array.from(document.querySelectorAll('video, audio')).map((m) => ({
		tag: m.tagName.toLowerCase(),
		paused: m.paused,
		ended: m.ended,
		currentTime: m.currentTime || 0,
	}));
	const frames = Array.from(document.querySelectorAll('iframe'))
		.filter(visible)
		.map((f) => f.src || '');
	const markers = MARKERS.filter((sel) => document.querySelector(sel) !== null);
	return JSON.stringify({media, frames, markers});
}`

// provider matches embedded player frames by src.
type provider struct {
	name    string
	pattern *regexp.Regexp
}

var providers = []provider{
	{"YouTube", regexp.MustCompile(`(?i)//(www\.)?(youtube\.com|youtube-nocookie\.com)/embed/`)},
	{"Vimeo", regexp.MustCompile(`(?i)//player\.vimeo\.com/video/`)},
	{"Twitch", regexp.MustCompile(`(?i)//(player|clips)\.twitch\.tv/`)},
	{"Dailymotion", regexp.MustCompile(`(?i)//(www\.)?dailymotion\.com/embed/`)},
	{"Spotify", regexp.MustCompile(`(?i)//open\.spotify\.com/embed/`)},
	{"SoundCloud", regexp.MustCompile(`(?i)//w\.soundcloud\.com/player`)},
	{"Wistia", regexp.MustCompile(`(?i)//fast\.wistia\.(net|com)/embed/`)},
	{"JW Player", regexp.MustCompile(`(?i)//(cdn\.jwplayer\.com|content\.jwplatform\.com)/players/`)},
}

// playerMarkers are DOM selectors of web player apps. Alone they only say a
// player is on screen; paired with a started video they mean playback.
var playerMarkers = []struct {
	selector string
	app      string
}{
	{".ytp-progress-bar", "YouTube"},
	{".now-playing-bar", "Spotify"},
	{"[data-testid=now-playing-widget]", "Spotify"},
	{".vjs-progress-control", "Video.js"},
	{".jw-progress", "JW Player"},
	{".plyr__progress", "Plyr"},
	{".videoOsdBottom", "Jellyfin"},
	{"[data-testid=playerControlsContainer]", "Plex"},
}

type scriptMedia struct {
	Tag         string  `json:"tag"`
	Paused      bool    `json:"paused"`
	Ended       bool    `json:"ended"`
	CurrentTime float64 `json:"currentTime"`
}

type scriptResult struct {
	Media   []scriptMedia `json:"media"`
	Frames  []string      `json:"frames"`
	Markers []string      `json:"markers"`
}

// Detector evaluates mediaScript in the visible page.
type Detector struct{}

// NewDetector returns the page-script media detector.
func NewDetector() *Detector {
	return &Detector{}
}

// Detect implements kiosk.MediaDetector.
func (d *Detector) Detect(ctx context.Context, s kiosk.Surface) (kiosk.MediaReport, error) {
	rs, ok := s.(*Surface)
	if !ok {
		return kiosk.MediaReport{State: kiosk.MediaUnknown}, nil
	}
	res, err := rs.page.Context(ctx).Eval(script())
	if err != nil {
		return kiosk.MediaReport{}, fmt.Errorf("failed to evaluate media script: %w", err)
	}
	return classify(res.Value.Str())
}

// script splices the marker selectors into mediaScript.
func script() string {
	sels := make([]string, 0, len(playerMarkers))
	for _, m := range playerMarkers {
		sels = append(sels, m.selector)
	}
	data, _ := json.Marshal(sels)
	return strings.Replace(mediaScript, "MARKERS", string(data), 1)
}

// classify turns the script's JSON into a report. Checks run in order:
// native media, embedded players, player-app markers.
func classify(raw string) (kiosk.MediaReport, error) {
	var r scriptResult
	if err := json.Unmarshal([]byte(raw), &r); err != nil {
		return kiosk.MediaReport{}, fmt.Errorf("failed to decode media script result: %w", err)
	}

	for _, m := range r.Media {
		if !m.Paused && !m.Ended && m.CurrentTime > 0 {
			return kiosk.MediaReport{State: kiosk.MediaPlaying, Label: m.Tag}, nil
		}
	}
	for _, src := range r.Frames {
		for _, p := range providers {
			if p.pattern.MatchString(src) {
				return kiosk.MediaReport{State: kiosk.MediaPlaying, Label: p.name}, nil
			}
		}
	}
	if startedVideo(r.Media) {
		for _, m := range playerMarkers {
			if slices.Contains(r.Markers, m.selector) {
				return kiosk.MediaReport{State: kiosk.MediaPlaying, Label: m.app}, nil
			}
		}
	}
	return kiosk.MediaReport{State: kiosk.MediaNotPlaying}, nil
}

// startedVideo reports a video that has advanced and not finished. Some
// player apps drive playback in ways that leave paused set.
func startedVideo(media []scriptMedia) bool {
	for _, m := range media {
		if m.Tag == "video" && !m.Ended && m.CurrentTime > 0 {
			return true
		}
	}
	return false
}
