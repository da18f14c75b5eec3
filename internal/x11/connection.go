// Package x11 talks to the X server the kiosk runs on. Surfaces are sized
// to its primary output and its idle counter feeds the activity watcher.
package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/screensaver"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/xevent"
)

// Connection is the daemon's single X server connection. Hotkeys are
// grabbed on Root; viewport and idle queries go through the same socket.
type Connection struct {
	XUtil *xgbutil.XUtil
	Root  xproto.Window

	// idleErr is set when MIT-SCREEN-SAVER is missing; IdleTime then
	// fails and the daemon runs on IPC activity alone.
	idleErr error
}

// NewConnection connects to $DISPLAY and prepares the keyboard mapping and
// the screensaver extension.
func NewConnection() (*Connection, error) {
	xu, err := xgbutil.NewConn()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X server: %w", err)
	}

	keybind.Initialize(xu)

	c := &Connection{
		XUtil: xu,
		Root:  xu.RootWin(),
	}
	if err := screensaver.Init(xu.Conn()); err != nil {
		c.idleErr = fmt.Errorf("screensaver extension unavailable: %w", err)
	}
	return c, nil
}

// EventLoop dispatches key press events to the grabbed hotkeys. It blocks
// until Close.
func (c *Connection) EventLoop() {
	xevent.Main(c.XUtil)
}

// Close stops EventLoop and drops the connection, releasing every grab.
func (c *Connection) Close() {
	xevent.Quit(c.XUtil)
	c.XUtil.Conn().Close()
}
