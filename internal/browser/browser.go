// Package browser renders kiosk sites as pages of one Chromium instance
// driven over the DevTools protocol.
package browser

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"

	"github.com/1broseidon/kiosk/internal/kiosk"
	"github.com/1broseidon/kiosk/internal/navpolicy"
)

// Config holds how the browser is started or reached.
type Config struct {
	// Path is the browser binary. Empty means look one up on PATH.
	Path        string
	UserDataDir string
	// RemoteURL connects to an already running browser instead of
	// launching one.
	RemoteURL string
	// Flags are extra command line switches, with or without the leading
	// dashes ("kiosk", "--window-size=1920,1080").
	Flags  []string
	Logger *slog.Logger
}

// Browser owns the DevTools connection and, when it launched the process,
// the launcher.
type Browser struct {
	rod      *rod.Browser
	launcher *launcher.Launcher
	logger   *slog.Logger
}

// Launch starts (or connects to) the browser.
func Launch(ctx context.Context, cfg Config) (*Browser, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	b := &Browser{logger: logger}
	controlURL := cfg.RemoteURL
	if controlURL == "" {
		l := newLauncher(cfg)
		u, err := l.Context(ctx).Launch()
		if err != nil {
			return nil, fmt.Errorf("failed to launch browser: %w", err)
		}
		b.launcher = l
		controlURL = u
	}

	b.rod = rod.New().ControlURL(controlURL)
	if err := b.rod.Connect(); err != nil {
		b.kill()
		return nil, fmt.Errorf("failed to connect to browser at %s: %w", controlURL, err)
	}
	logger.Info("browser connected", "url", controlURL, "launched", b.launcher != nil)
	return b, nil
}

func newLauncher(cfg Config) *launcher.Launcher {
	l := launcher.New().Headless(false)
	bin := cfg.Path
	if bin == "" {
		if p, ok := launcher.LookPath(); ok {
			bin = p
		}
	}
	if bin != "" {
		l = l.Bin(bin)
	}
	if cfg.UserDataDir != "" {
		l = l.UserDataDir(cfg.UserDataDir)
	}
	for _, f := range cfg.Flags {
		name, value := splitFlag(f)
		if name == "" {
			continue
		}
		if value == "" {
			l = l.Set(flags.Flag(name))
		} else {
			l = l.Set(flags.Flag(name), value)
		}
	}
	return l
}

// splitFlag turns "--name=value" into its name and value.
func splitFlag(f string) (string, string) {
	f = strings.TrimLeft(strings.TrimSpace(f), "-")
	name, value, _ := strings.Cut(f, "=")
	return name, value
}

// NewSurfaces opens one page per site. Pages are created blank, prepared
// (credentials, navigation veto) and only then pointed at their site.
func (b *Browser) NewSurfaces(sites []kiosk.Site, policy navpolicy.Policy) ([]kiosk.Surface, error) {
	surfaces := make([]kiosk.Surface, 0, len(sites))
	for i, site := range sites {
		page, err := b.rod.Page(proto.TargetCreateTarget{URL: "about:blank"})
		if err != nil {
			return nil, fmt.Errorf("failed to open page for site %d: %w", i, err)
		}
		s, err := newSurface(page, site, policy, b.logger.With("site", i))
		if err != nil {
			return nil, fmt.Errorf("failed to prepare page for site %d: %w", i, err)
		}
		if err := s.Load(site.URL); err != nil {
			// Unreachable sites are retried on the next attach.
			b.logger.Warn("initial load failed", "site", i, "url", site.URL, "error", err)
		}
		if err := s.Detach(); err != nil {
			b.logger.Debug("initial detach failed", "site", i, "error", err)
		}
		surfaces = append(surfaces, s)
	}
	return surfaces, nil
}

// Close tears down every surface and the browser itself.
func (b *Browser) Close(surfaces []kiosk.Surface) {
	for _, s := range surfaces {
		if rs, ok := s.(*Surface); ok {
			rs.close()
		}
	}
	if err := b.rod.Close(); err != nil {
		b.logger.Debug("browser close failed", "error", err)
	}
	b.kill()
}

func (b *Browser) kill() {
	if b.launcher != nil {
		b.launcher.Kill()
		b.launcher.Cleanup()
	}
}
