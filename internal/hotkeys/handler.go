package hotkeys

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/1broseidon/kiosk/internal/config"
	"github.com/1broseidon/kiosk/internal/platform"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/xevent"
)

// x11Accessor is an optional interface for backends that expose X11 internals.
type x11Accessor interface {
	XUtil() *xgbutil.XUtil
	RootWindow() xproto.Window
}

// Actions are the kiosk operations reachable from the keyboard.
type Actions struct {
	Next         func()
	Previous     func()
	ToggleHidden func()
	PowerMenu    func()
	Keyboard     func()
}

// Binding ties one key sequence to an action.
type Binding struct {
	Name   string
	Keys   string
	Action func()
}

// Bindings pairs configured key sequences with actions. Empty sequences
// and missing actions are skipped.
func Bindings(cfg config.HotkeysConfig, a Actions) []Binding {
	all := []Binding{
		{"next", cfg.Next, a.Next},
		{"previous", cfg.Previous, a.Previous},
		{"toggleHidden", cfg.ToggleHidden, a.ToggleHidden},
		{"powerMenu", cfg.PowerMenu, a.PowerMenu},
		{"keyboard", cfg.Keyboard, a.Keyboard},
	}
	out := all[:0]
	for _, b := range all {
		if b.Keys != "" && b.Action != nil {
			out = append(out, b)
		}
	}
	return out
}

// Handler manages global keyboard shortcuts
type Handler struct {
	xu     *xgbutil.XUtil
	root   xproto.Window
	logger *slog.Logger
}

var ignoreModsOnce sync.Once

// NewHandler creates a new hotkey handler.
func NewHandler(backend platform.Backend, logger *slog.Logger) (*Handler, error) {
	accessor, ok := backend.(x11Accessor)
	if !ok || accessor.XUtil() == nil {
		return nil, fmt.Errorf("hotkeys need an X11 backend")
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	xu := accessor.XUtil()

	ignoreModsOnce.Do(func() {
		configureIgnoreMods(xu)
	})

	return &Handler{
		xu:     xu,
		root:   accessor.RootWindow(),
		logger: logger,
	}, nil
}

// Register grabs every binding. A sequence that cannot be grabbed (taken
// by another client, unknown key name) is logged and skipped.
func (h *Handler) Register(bindings []Binding) int {
	registered := 0
	for _, b := range bindings {
		if err := h.RegisterFunc(b.Keys, b.Action); err != nil {
			h.logger.Warn("hotkey registration failed", "name", b.Name, "keys", b.Keys, "error", err)
			continue
		}
		h.logger.Info("hotkey registered", "name", b.Name, "keys", b.Keys)
		registered++
	}
	return registered
}

// RegisterFunc registers an arbitrary hotkey callback.
func (h *Handler) RegisterFunc(keySequence string, callback func()) error {
	return keybind.KeyPressFun(func(xu *xgbutil.XUtil, ev xevent.KeyPressEvent) {
		callback()
	}).Connect(h.xu, h.root, keySequence, true)
}

func configureIgnoreMods(xu *xgbutil.XUtil) {
	// Always ignore CapsLock.
	caps := uint16(xproto.ModMaskLock)

	numLock := modMaskForKeysym(xu, "Num_Lock")
	scrollLock := modMaskForKeysym(xu, "Scroll_Lock")

	base := []uint16{caps}
	if numLock != 0 && numLock != caps {
		base = append(base, numLock)
	}
	if scrollLock != 0 && scrollLock != caps && scrollLock != numLock {
		base = append(base, scrollLock)
	}

	xevent.IgnoreMods = ignoreMasks(base)
}

// ignoreMasks returns every combination of the lock modifiers, including
// none, so a hotkey fires whatever lock state the keyboard is in.
func ignoreMasks(base []uint16) []uint16 {
	masks := make([]uint16, 0, 1<<len(base))
	for subset := 0; subset < (1 << len(base)); subset++ {
		var mask uint16
		for bit := range base {
			if subset&(1<<bit) != 0 {
				mask |= base[bit]
			}
		}
		masks = append(masks, mask)
	}
	return masks
}

func modMaskForKeysym(xu *xgbutil.XUtil, keysym string) uint16 {
	for _, keycode := range keybind.StrToKeycodes(xu, keysym) {
		if mask := keybind.ModGet(xu, keycode); mask != 0 {
			return mask
		}
	}
	return 0
}
