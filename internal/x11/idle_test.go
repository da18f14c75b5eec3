package x11

import (
	"errors"
	"testing"
)

func TestIdleTime_WithoutScreensaverExtension(t *testing.T) {
	want := errors.New("screensaver extension unavailable")
	c := &Connection{idleErr: want}

	got, err := c.IdleTime()
	if !errors.Is(err, want) || got != 0 {
		t.Fatalf("IdleTime() = %v, %v, want 0, %v", got, err, want)
	}
}
