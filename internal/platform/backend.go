package platform

import "time"

// Rect describes a rectangular region in screen coordinates.
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Display describes a physical display.
type Display struct {
	ID      int
	Name    string
	Bounds  Rect
	Primary bool
}

// Backend abstracts the display-system facts the kiosk needs.
type Backend interface {
	Displays() ([]Display, error)
	// Viewport is the area content surfaces are sized to.
	Viewport() (Rect, error)
	// IdleTime is how long the OS has seen no user input.
	IdleTime() (time.Duration, error)
}

// PickViewport chooses the display content is shown on: the primary one,
// else the first by ID.
func PickViewport(displays []Display) (Rect, bool) {
	if len(displays) == 0 {
		return Rect{}, false
	}
	best := displays[0]
	for _, d := range displays[1:] {
		if d.Primary && !best.Primary {
			best = d
			continue
		}
		if d.Primary == best.Primary && d.ID < best.ID {
			best = d
		}
	}
	return best.Bounds, true
}
