package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Env holds process environment knobs read by the daemon.
type Env struct {
	ConfigPath string `env:"KIOSK_CONFIG"`
	LogLevel   string `env:"KIOSK_LOG_LEVEL"`
	BrowserURL string `env:"KIOSK_BROWSER_URL"`
	NoX11      bool   `env:"KIOSK_NO_X11"`
}

// ParseEnv loads Env from the process environment.
func ParseEnv() (Env, error) {
	var e Env
	if err := env.Parse(&e); err != nil {
		return Env{}, fmt.Errorf("parse env: %w", err)
	}
	return e, nil
}

// ApplyEnv overlays environment overrides onto the document.
func (c *Config) ApplyEnv(e Env) {
	if e.LogLevel != "" {
		c.Logging.Level = e.LogLevel
	}
	if e.BrowserURL != "" {
		c.Browser.RemoteURL = e.BrowserURL
	}
}
