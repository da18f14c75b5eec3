// Package kiosk is the display orchestration core: it decides, once per
// tick, which site is visible, whether the screen is locked, whether
// rotation advances and whether the user is still present.
//
// Core is not safe for concurrent use. Every method must be called from the
// goroutine that owns it (see daemon.Loop).
package kiosk

import (
	"errors"
	"log/slog"
	"time"

	"github.com/1broseidon/kiosk/internal/audit"
	"github.com/1broseidon/kiosk/internal/config"
)

var (
	ErrLocked           = errors.New("screen is locked")
	ErrUnknownSite      = errors.New("unknown site")
	ErrHiddenSite       = errors.New("site is only reachable through the hidden toggle")
	ErrExtensionTooLong = errors.New("extension exceeds 4 hours")
	ErrNoSites          = errors.New("no sites configured")
)

// Timing constants.
const (
	TickInterval           = time.Second
	InputHelperIdleTimeout = 60 * time.Second
	MediaPollInterval      = 3 * time.Second
	MediaPollTimeout       = 2500 * time.Millisecond
	MediaGracePeriod       = 30 * time.Second
	UserActivityWindow     = 60 * time.Second
	PinDialogTimeout       = 30 * time.Second
	PauseDialogTimeout     = 30 * time.Second
	PresencePromptTimeout  = 15 * time.Second
	MaxExtension           = 4 * time.Hour
)

// ExtensionOptions are offered by the pause dialog and the presence prompt.
var ExtensionOptions = []time.Duration{15 * time.Minute, 30 * time.Minute, time.Hour, 2 * time.Hour}

// Site is one configured destination. Duration > 0 rotates after that
// long, 0 is manual only, negative is hidden.
type Site struct {
	URL      string
	Duration time.Duration
	Username string
	Password string
	Name     string
	IsHome   bool
}

func (s Site) Rotating() bool { return s.Duration > 0 }
func (s Site) Manual() bool   { return s.Duration == 0 }
func (s Site) Hidden() bool   { return s.Duration < 0 }

// Title returns the name, falling back to the URL.
func (s Site) Title() string {
	if s.Name != "" {
		return s.Name
	}
	return s.URL
}

// SitesFromConfig converts configured tabs into sites.
func SitesFromConfig(cfg *config.Config) []Site {
	home := cfg.HomeIndex()
	sites := make([]Site, len(cfg.Tabs))
	for i, tab := range cfg.Tabs {
		sites[i] = Site{
			URL:      tab.URL,
			Duration: time.Duration(tab.Duration) * time.Second,
			Username: tab.Username,
			Password: tab.Password,
			Name:     tab.Name,
			IsHome:   i == home,
		}
	}
	return sites
}

// Policy is the behavior the core reads from configuration.
type Policy struct {
	HomeIndex                int
	InactivityTimeout        time.Duration
	EnablePauseButton        bool
	EnableKeyboardButton     bool
	EnableNavButton          bool
	HiddenPIN                string
	HoldMediaOnDetectorError bool
	Lockout                  LockoutPolicy
}

// PolicyFromConfig extracts the core policy from the document.
func PolicyFromConfig(cfg *config.Config) Policy {
	return Policy{
		HomeIndex:                cfg.HomeIndex(),
		InactivityTimeout:        cfg.InactivityTimeoutDuration(),
		EnablePauseButton:        cfg.EnablePauseButton,
		EnableKeyboardButton:     cfg.EnableKeyboardButton,
		EnableNavButton:          cfg.EnableNavButton,
		HiddenPIN:                cfg.HiddenTabPin,
		HoldMediaOnDetectorError: cfg.HoldMediaOnDetectorError,
		Lockout:                  LockoutPolicyFromConfig(cfg),
	}
}

// Flag is a consume-once trigger.
type Flag interface {
	Consume() (bool, error)
}

// Auditor records security-relevant events.
type Auditor interface {
	Record(action audit.Action, details map[string]any)
}

// PowerInfoFunc gathers the power menu details.
type PowerInfoFunc func() PowerMenuData

// Deps are the collaborators handed to New. Only Surfaces is required.
type Deps struct {
	Surfaces  []Surface
	Viewport  ViewportFunc
	Notifier  Notifier
	Detector  MediaDetector
	Timers    *Timers
	Poller    *MediaPoller
	WakeFlag  Flag
	BootFlag  Flag
	Audit     Auditor
	PowerInfo PowerInfoFunc
	Logger    *slog.Logger
	Now       func() time.Time
}

// Core owns the session and every subsystem.
type Core struct {
	sites   []Site
	policy  Policy
	pool    *Pool
	sess    Session
	timers  *Timers
	poller  *MediaPoller
	notify  Notifier
	audit   Auditor
	wake    Flag
	boot    Flag
	power   PowerInfoFunc
	logger  *slog.Logger
	now     func() time.Time
	lockout lockoutSchedule

	started  bool
	ticking  bool
	lockID   string
	lastStep Step
}

// New builds a core for sites. Surfaces must be parallel to sites.
func New(sites []Site, policy Policy, deps Deps) (*Core, error) {
	if len(deps.Surfaces) != len(sites) {
		return nil, errors.New("kiosk: surfaces and sites differ in length")
	}
	sites = append([]Site(nil), sites...)
	if policy.HomeIndex >= len(sites) || (policy.HomeIndex >= 0 && sites[policy.HomeIndex].Hidden()) {
		policy.HomeIndex = -1
	}
	for i := range sites {
		sites[i].IsHome = i == policy.HomeIndex
	}

	c := &Core{
		sites:  sites,
		policy: policy,
		notify: deps.Notifier,
		audit:  deps.Audit,
		wake:   deps.WakeFlag,
		boot:   deps.BootFlag,
		power:  deps.PowerInfo,
		logger: deps.Logger,
		now:    deps.Now,
		timers: deps.Timers,
		poller: deps.Poller,
	}
	if c.logger == nil {
		c.logger = slog.New(slog.DiscardHandler)
	}
	if c.now == nil {
		c.now = time.Now
	}
	if c.notify == nil {
		c.notify = NopNotifier{}
	}
	if c.audit == nil {
		c.audit = nopAuditor{}
	}
	if c.timers == nil {
		c.timers = NewTimers(nil, nil)
	}
	if c.poller == nil {
		c.poller = NewMediaPoller(deps.Detector, nil)
	}
	c.pool = NewPool(sites, deps.Surfaces, deps.Viewport, c.logger)
	c.lockout = newLockoutSchedule(policy.Lockout, c.logger)
	c.sess.CurrentIndex = -1
	return c, nil
}

// Sites returns the configured sites.
func (c *Core) Sites() []Site {
	out := make([]Site, len(c.sites))
	copy(out, c.sites)
	return out
}

// Session returns a copy of the session state.
func (c *Core) Session() Session {
	return c.sess
}

// Attached reports which surfaces are currently attached.
func (c *Core) Attached() []int {
	return c.pool.AttachedIndexes()
}

// Start consumes the boot flag, shows the initial site, or boot-locks.
// With zero sites it does nothing and ticks stay no-ops.
func (c *Core) Start() {
	now := c.now()
	if c.started {
		return
	}
	if len(c.sites) == 0 {
		c.logger.Warn("no sites configured; nothing to display")
		return
	}
	c.started = true

	c.notify.Notify(Event{Kind: EventInputHelperEnabled, Data: EnabledData{Enabled: c.policy.EnableKeyboardButton}})
	c.notify.Notify(Event{Kind: EventNavMenuEnabled, Data: EnabledData{Enabled: c.policy.EnableNavButton}})

	c.sess.CurrentIndex = c.initialIndex()
	c.sess.LastInteractionAt = now
	c.sess.LockoutActivityAt = now
	c.sess.RotationStartedAt = now

	booted := consumeFlag(c.boot, "boot", c.logger)
	if booted && c.policy.Lockout.RequireOnBoot && c.policy.Lockout.Enabled() {
		c.logger.Info("boot lock engaged")
		c.lock(now, "boot")
		return
	}

	c.ticking = true
	c.show(c.sess.CurrentIndex, now)
	c.logger.Info("kiosk started", "sites", len(c.sites), "index", c.sess.CurrentIndex, "home", c.policy.HomeIndex)
}

func (c *Core) initialIndex() int {
	if c.policy.HomeIndex >= 0 {
		return c.policy.HomeIndex
	}
	for i, s := range c.sites {
		if !s.Hidden() {
			return i
		}
	}
	return -1
}

// Shutdown cancels timers and any poll in flight.
func (c *Core) Shutdown() {
	c.timers.CancelAll()
	c.poller.Cancel()
}

func consumeFlag(f Flag, name string, logger *slog.Logger) bool {
	if f == nil {
		return false
	}
	ok, err := f.Consume()
	if err != nil {
		logger.Warn("failed to consume flag", "flag", name, "error", err)
	}
	return ok
}

type nopAuditor struct{}

func (nopAuditor) Record(audit.Action, map[string]any) {}
