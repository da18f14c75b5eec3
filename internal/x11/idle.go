package x11

import (
	"fmt"
	"time"

	"github.com/BurntSushi/xgb/screensaver"
	"github.com/BurntSushi/xgb/xproto"
)

// IdleTime returns how long the server has seen no keyboard or pointer
// input, using the MIT-SCREEN-SAVER extension.
func (c *Connection) IdleTime() (time.Duration, error) {
	if c.idleErr != nil {
		return 0, c.idleErr
	}
	info, err := screensaver.QueryInfo(c.XUtil.Conn(), xproto.Drawable(c.Root)).Reply()
	if err != nil {
		return 0, fmt.Errorf("failed to query idle time: %w", err)
	}
	return time.Duration(info.MsSinceUserInput) * time.Millisecond, nil
}
