package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/1broseidon/kiosk/internal/audit"
	"github.com/1broseidon/kiosk/internal/browser"
	"github.com/1broseidon/kiosk/internal/config"
	"github.com/1broseidon/kiosk/internal/daemon"
	"github.com/1broseidon/kiosk/internal/flags"
	"github.com/1broseidon/kiosk/internal/hotkeys"
	"github.com/1broseidon/kiosk/internal/ipc"
	"github.com/1broseidon/kiosk/internal/kiosk"
	"github.com/1broseidon/kiosk/internal/navpolicy"
	"github.com/1broseidon/kiosk/internal/netinfo"
	"github.com/1broseidon/kiosk/internal/platform"
	"github.com/1broseidon/kiosk/internal/runtimepath"
)

// shutdownTimeout bounds how long the final core shutdown may take.
const shutdownTimeout = 5 * time.Second

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// loadDaemonConfig never fails: a missing or broken document yields the
// defaults, which means zero sites and a blank screen.
func loadDaemonConfig(path string, env config.Env) *config.Config {
	if path == "" {
		path = env.ConfigPath
	}

	var (
		res *config.LoadResult
		err error
	)
	if path != "" {
		res, err = config.LoadFromPath(path)
	} else {
		res, err = config.Load()
	}
	cfg := config.DefaultConfig()
	switch {
	case err != nil:
		log.Printf("Warning: failed to load config, using defaults: %v", err)
	case !res.Found:
		log.Printf("No config at %s, using defaults", res.Path)
		cfg = res.Config
	default:
		log.Printf("Loaded config from %s", res.Path)
		cfg = res.Config
		for _, w := range res.Warnings {
			log.Printf("Warning: %s", w)
		}
	}

	cfg.ApplyEnv(env)
	if err := cfg.Validate(); err != nil {
		for _, line := range strings.Split(err.Error(), "\n") {
			log.Printf("Warning: config: %s", line)
		}
	}
	return cfg
}

func flagFile(configured string, fallback func() (string, error)) flags.File {
	if configured != "" {
		return flags.File{Path: configured}
	}
	path, err := fallback()
	if err != nil {
		log.Printf("Warning: %v", err)
	}
	return flags.File{Path: path}
}

func viewportFunc(backend platform.Backend) kiosk.ViewportFunc {
	if backend == nil {
		return nil
	}
	return func() (kiosk.Rect, error) {
		r, err := backend.Viewport()
		if err != nil {
			return kiosk.Rect{}, err
		}
		return kiosk.Rect{X: r.X, Y: r.Y, Width: r.Width, Height: r.Height}, nil
	}
}

// onLoop posts an inbound signal to the loop and logs a refusal.
func onLoop(loop *daemon.Loop, logger *slog.Logger, name string, op func() error) func() {
	return func() {
		loop.Post(func() {
			if err := op(); err != nil {
				logger.Debug("hotkey refused", "action", name, "error", err)
			}
		})
	}
}

func runDaemon(args []string) int {
	fs := flag.NewFlagSet("daemon", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	configPath := fs.String("config", "", "Path to the config document")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: kiosk daemon [--config PATH]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Start the kiosk daemon in the foreground.")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Environment:")
		fmt.Fprintln(os.Stderr, "  KIOSK_CONFIG       config document path")
		fmt.Fprintln(os.Stderr, "  KIOSK_LOG_LEVEL    debug, info, warn or error")
		fmt.Fprintln(os.Stderr, "  KIOSK_BROWSER_URL  DevTools URL of an already running browser")
		fmt.Fprintln(os.Stderr, "  KIOSK_NO_X11       run without hotkeys and idle detection")
	}
	if code := parseNoArgs(fs, args); code >= 0 {
		return code
	}

	log.Printf("Starting kiosk daemon %s...", version)

	env, err := config.ParseEnv()
	if err != nil {
		log.Printf("Warning: %v", err)
	}
	cfg := loadDaemonConfig(*configPath, env)

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseLevel(cfg.Logging.Level),
	}))

	var auditor kiosk.Auditor
	auditLog, err := audit.Open(audit.Config{
		FilePath:  cfg.Logging.AuditFile,
		MaxSizeMB: cfg.Logging.MaxSizeMB,
		MaxFiles:  cfg.Logging.MaxFiles,
	})
	if err != nil {
		logger.Warn("audit log disabled", "error", err)
	} else {
		defer auditLog.Close()
		auditor = auditLog
	}

	ctx, stop := signalContext()
	defer stop()

	var backend *platform.LinuxBackend
	if !env.NoX11 {
		backend, err = platform.NewLinuxBackendFromDisplay()
		if err != nil {
			logger.Warn("X11 unavailable; hotkeys and idle detection disabled", "error", err)
			backend = nil
		} else {
			defer backend.Disconnect()
		}
	}

	sites := kiosk.SitesFromConfig(cfg)
	br, err := browser.Launch(ctx, browser.Config{
		Path:        cfg.Browser.Path,
		UserDataDir: cfg.Browser.UserDataDir,
		RemoteURL:   cfg.Browser.RemoteURL,
		Flags:       cfg.Browser.Flags,
		Logger:      logger,
	})
	if err != nil {
		log.Printf("Error: %v", err)
		return 1
	}
	surfaces, err := br.NewSurfaces(sites, navpolicy.Parse(cfg.AllowNavigation))
	if err != nil {
		br.Close(surfaces)
		log.Printf("Error: %v", err)
		return 1
	}
	defer br.Close(surfaces)

	var core *kiosk.Core
	loop := daemon.NewLoop(daemon.LoopConfig{Interval: kiosk.TickInterval, Logger: logger}, func() {
		core.Tick()
	})
	hub := ipc.NewHub()

	deps := kiosk.Deps{
		Surfaces:  surfaces,
		Notifier:  hub,
		Detector:  browser.NewDetector(),
		Timers:    kiosk.NewTimers(nil, loop.Post),
		WakeFlag:  flagFile(cfg.WakeFlagPath, runtimepath.WakeFlagPath),
		BootFlag:  flagFile(cfg.BootFlagPath, runtimepath.BootFlagPath),
		Audit:     auditor,
		PowerInfo: netinfo.NewCollector(version, logger).PowerMenu,
		Logger:    logger,
	}
	if backend != nil {
		deps.Viewport = viewportFunc(backend)
	}
	core, err = kiosk.New(sites, kiosk.PolicyFromConfig(cfg), deps)
	if err != nil {
		log.Printf("Error: %v", err)
		return 1
	}

	// The loop outlives ctx so that the core can be shut down on it.
	loopCtx, stopLoop := context.WithCancel(context.Background())
	defer stopLoop()
	loop.Post(core.Start)
	go loop.Run(loopCtx)

	server, err := ipc.NewServer("", core, loop, hub)
	if err != nil {
		log.Printf("Error: %v", err)
		return 1
	}
	if err := server.Start(); err != nil {
		log.Printf("Error: %v", err)
		return 1
	}
	defer server.Stop()
	log.Printf("IPC server listening on %s", server.SocketPath())

	if backend != nil {
		startInput(ctx, backend, cfg, core, loop, logger)
	}

	log.Printf("Kiosk running with %d sites", len(sites))
	<-ctx.Done()
	log.Printf("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := loop.Do(shutdownCtx, func() error {
		core.Shutdown()
		return nil
	}); err != nil {
		logger.Warn("core shutdown did not complete", "error", err)
	}
	return 0
}

// startInput grabs hotkeys and watches OS idle time on the X11 backend.
func startInput(ctx context.Context, backend *platform.LinuxBackend, cfg *config.Config, core *kiosk.Core, loop *daemon.Loop, logger *slog.Logger) {
	handler, err := hotkeys.NewHandler(backend, logger)
	if err != nil {
		logger.Warn("hotkeys disabled", "error", err)
	} else {
		toggleKeyboard := func() error {
			if core.Session().KeyboardOpen {
				return core.CloseKeyboard()
			}
			return core.ShowKeyboard()
		}
		n := handler.Register(hotkeys.Bindings(cfg.Hotkeys, hotkeys.Actions{
			Next:         onLoop(loop, logger, "next", core.Next),
			Previous:     onLoop(loop, logger, "previous", core.Previous),
			ToggleHidden: onLoop(loop, logger, "toggleHidden", core.ToggleHidden),
			PowerMenu:    onLoop(loop, logger, "powerMenu", core.PowerMenu),
			Keyboard:     onLoop(loop, logger, "keyboard", toggleKeyboard),
		}))
		logger.Info("hotkeys registered", "count", n)
	}

	watcher := daemon.NewIdleWatcher(daemon.IdleWatcherConfig{Logger: logger}, backend, func() {
		loop.Post(core.Activity)
	})
	go watcher.Run(ctx)
	go backend.EventLoop()
}
