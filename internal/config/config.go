package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Navigation policies accepted by allowNavigation.
const (
	NavigationRestricted = "restricted"
	NavigationSameOrigin = "same-origin"
	NavigationOpen       = "open"
)

// HiddenPinDisabled is the hiddenTabPin sentinel that opens the hidden set
// without asking for a PIN.
const HiddenPinDisabled = "disabled"

// Default values applied before the document is decoded.
const (
	DefaultInactivityTimeoutSeconds = 300
	DefaultHomeTabIndex             = -1
	DefaultAuditMaxSizeMB           = 10
	DefaultAuditMaxFiles            = 3
)

// Config is the kiosk configuration document. Keys match what the installer
// writes, so the document may be JSON or YAML.
type Config struct {
	Autoswitch        bool   `yaml:"autoswitch" json:"autoswitch"`
	SwipeMode         string `yaml:"swipeMode" json:"swipeMode"`
	AllowNavigation   string `yaml:"allowNavigation" json:"allowNavigation"`
	HomeTabIndex      int    `yaml:"homeTabIndex" json:"homeTabIndex"`
	InactivityTimeout int    `yaml:"inactivityTimeout" json:"inactivityTimeout"`

	EnablePauseButton    bool `yaml:"enablePauseButton" json:"enablePauseButton"`
	EnableKeyboardButton bool `yaml:"enableKeyboardButton" json:"enableKeyboardButton"`
	EnableNavButton      bool `yaml:"enableNavButton" json:"enableNavButton"`

	EnablePasswordProtection bool          `yaml:"enablePasswordProtection" json:"enablePasswordProtection"`
	LockoutPassword          string        `yaml:"lockoutPassword" json:"lockoutPassword"`
	LockoutTimeout           int           `yaml:"lockoutTimeout" json:"lockoutTimeout"`
	LockoutAtTime            string        `yaml:"lockoutAtTime" json:"lockoutAtTime"`
	LockoutActiveHours       ActiveHours   `yaml:"lockoutActiveHours" json:"lockoutActiveHours"`
	RequirePasswordOnBoot    bool          `yaml:"requirePasswordOnBoot" json:"requirePasswordOnBoot"`
	RequirePasswordOnWake    bool          `yaml:"requirePasswordOnWake" json:"requirePasswordOnWake"`
	HiddenTabPin             string        `yaml:"hiddenTabPin" json:"hiddenTabPin"`
	HoldMediaOnDetectorError bool          `yaml:"holdMediaOnDetectorError" json:"holdMediaOnDetectorError"`
	Tabs                     []Tab         `yaml:"tabs" json:"tabs"`
	Browser                  BrowserConfig `yaml:"browser" json:"browser"`
	Hotkeys                  HotkeysConfig `yaml:"hotkeys" json:"hotkeys"`
	Logging                  LoggingConfig `yaml:"logging" json:"logging"`

	// Trigger flag locations. Empty means the runtime directory default.
	WakeFlagPath string `yaml:"wakeFlagPath" json:"wakeFlagPath"`
	BootFlagPath string `yaml:"bootFlagPath" json:"bootFlagPath"`
}

// Tab is one configured site.
type Tab struct {
	URL      string `yaml:"url" json:"url"`
	Duration int    `yaml:"duration" json:"duration"`
	Username string `yaml:"username,omitempty" json:"username,omitempty"`
	Password string `yaml:"password,omitempty" json:"password,omitempty"`
	Name     string `yaml:"name,omitempty" json:"name,omitempty"`
}

// ActiveHours restricts the inactivity lockout to a daily window. Start after
// End wraps midnight.
type ActiveHours struct {
	Start string `yaml:"start" json:"start"`
	End   string `yaml:"end" json:"end"`
}

// BrowserConfig controls how the rendering browser is launched.
type BrowserConfig struct {
	Path        string   `yaml:"path" json:"path"`
	UserDataDir string   `yaml:"userDataDir" json:"userDataDir"`
	RemoteURL   string   `yaml:"remoteURL" json:"remoteURL"`
	Flags       []string `yaml:"flags" json:"flags"`
}

// HotkeysConfig maps X11 key sequences to inbound signals.
type HotkeysConfig struct {
	Next         string `yaml:"next" json:"next"`
	Previous     string `yaml:"previous" json:"previous"`
	ToggleHidden string `yaml:"toggleHidden" json:"toggleHidden"`
	PowerMenu    string `yaml:"powerMenu" json:"powerMenu"`
	Keyboard     string `yaml:"keyboard" json:"keyboard"`
}

// LoggingConfig controls the daemon log level and the audit log.
type LoggingConfig struct {
	Level     string `yaml:"level" json:"level"`
	AuditFile string `yaml:"auditFile" json:"auditFile"`
	MaxSizeMB int    `yaml:"maxSizeMB" json:"maxSizeMB"`
	MaxFiles  int    `yaml:"maxFiles" json:"maxFiles"`
}

// ValidationError reports a problem with a single config key.
type ValidationError struct {
	Path string
	Err  error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// DefaultConfig returns the values used for keys the document omits.
func DefaultConfig() *Config {
	return &Config{
		AllowNavigation:       NavigationRestricted,
		HomeTabIndex:          DefaultHomeTabIndex,
		InactivityTimeout:     DefaultInactivityTimeoutSeconds,
		RequirePasswordOnWake: true,
		Hotkeys: HotkeysConfig{
			Next:         "Mod4-Right",
			Previous:     "Mod4-Left",
			ToggleHidden: "Mod4-Shift-h",
			PowerMenu:    "Mod4-Escape",
			Keyboard:     "Mod4-k",
		},
		Logging: LoggingConfig{
			Level:     "info",
			MaxSizeMB: DefaultAuditMaxSizeMB,
			MaxFiles:  DefaultAuditMaxFiles,
		},
	}
}

// HomeIndex returns the configured home tab, or -1 when the index is out of
// range or points at a hidden tab.
func (c *Config) HomeIndex() int {
	if c == nil || c.HomeTabIndex < 0 || c.HomeTabIndex >= len(c.Tabs) {
		return -1
	}
	if c.Tabs[c.HomeTabIndex].Duration < 0 {
		return -1
	}
	return c.HomeTabIndex
}

// InactivityTimeoutDuration returns inactivityTimeout as a duration.
func (c *Config) InactivityTimeoutDuration() time.Duration {
	if c.InactivityTimeout <= 0 {
		return DefaultInactivityTimeoutSeconds * time.Second
	}
	return time.Duration(c.InactivityTimeout) * time.Second
}

// LockoutTimeoutDuration returns lockoutTimeout as a duration; zero disables
// the inactivity trigger.
func (c *Config) LockoutTimeoutDuration() time.Duration {
	if c.LockoutTimeout <= 0 {
		return 0
	}
	return time.Duration(c.LockoutTimeout) * time.Minute
}

// ProtectionEnabled reports whether the lockout gate is armed.
func (c *Config) ProtectionEnabled() bool {
	return c.EnablePasswordProtection && strings.TrimSpace(c.LockoutPassword) != ""
}

// ParseClock parses an HH:MM time of day into minutes after midnight.
func ParseClock(s string) (int, bool) {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return 0, false
	}
	return t.Hour()*60 + t.Minute(), true
}

// Validate reports every problem in the document. The daemon tolerates an
// invalid document; this is used by `kiosk config validate`.
func (c *Config) Validate() error {
	var errs []error
	add := func(path string, format string, args ...any) {
		errs = append(errs, &ValidationError{Path: path, Err: fmt.Errorf(format, args...)})
	}

	switch c.AllowNavigation {
	case NavigationRestricted, NavigationSameOrigin, NavigationOpen:
	default:
		add("allowNavigation", "must be one of: restricted, same-origin, open")
	}
	if c.HomeTabIndex < -1 || c.HomeTabIndex >= len(c.Tabs) {
		add("homeTabIndex", "index %d out of range for %d tabs", c.HomeTabIndex, len(c.Tabs))
	} else if c.HomeTabIndex >= 0 && c.Tabs[c.HomeTabIndex].Duration < 0 {
		add("homeTabIndex", "tab %d is hidden and cannot be home", c.HomeTabIndex)
	}
	if c.InactivityTimeout < 0 {
		add("inactivityTimeout", "must be >= 0")
	}
	if c.LockoutTimeout < 0 {
		add("lockoutTimeout", "must be >= 0")
	}
	if c.LockoutAtTime != "" {
		if _, ok := ParseClock(c.LockoutAtTime); !ok {
			add("lockoutAtTime", "%q is not HH:MM", c.LockoutAtTime)
		}
	}
	if c.LockoutActiveHours.Start != "" || c.LockoutActiveHours.End != "" {
		if _, ok := ParseClock(c.LockoutActiveHours.Start); !ok {
			add("lockoutActiveHours.start", "%q is not HH:MM", c.LockoutActiveHours.Start)
		}
		if _, ok := ParseClock(c.LockoutActiveHours.End); !ok {
			add("lockoutActiveHours.end", "%q is not HH:MM", c.LockoutActiveHours.End)
		}
	}
	if c.EnablePasswordProtection && strings.TrimSpace(c.LockoutPassword) == "" {
		add("lockoutPassword", "required when enablePasswordProtection is true")
	}
	for i, tab := range c.Tabs {
		if strings.TrimSpace(tab.URL) == "" {
			add(fmt.Sprintf("tabs[%d].url", i), "url is required")
		}
		if tab.Password != "" && tab.Username == "" {
			add(fmt.Sprintf("tabs[%d].username", i), "username is required when password is set")
		}
	}
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		add("logging.level", "must be one of: debug, info, warn, error")
	}
	if c.Logging.MaxSizeMB < 0 {
		add("logging.maxSizeMB", "must be >= 0")
	}
	if c.Logging.MaxFiles < 0 {
		add("logging.maxFiles", "must be >= 0")
	}

	return errors.Join(errs...)
}
