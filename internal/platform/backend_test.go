package platform

import "testing"

func TestPickViewport(t *testing.T) {
	left := Display{ID: 0, Bounds: Rect{Width: 1280, Height: 1024}}
	right := Display{ID: 1, Bounds: Rect{X: 1280, Width: 1920, Height: 1080}}
	primary := right
	primary.Primary = true

	tests := []struct {
		name     string
		displays []Display
		want     Rect
		wantOK   bool
	}{
		{name: "none", wantOK: false},
		{name: "single", displays: []Display{left}, want: left.Bounds, wantOK: true},
		{name: "lowest id", displays: []Display{right, left}, want: left.Bounds, wantOK: true},
		{name: "primary wins", displays: []Display{left, primary}, want: primary.Bounds, wantOK: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := PickViewport(tt.displays)
			if ok != tt.wantOK || got != tt.want {
				t.Fatalf("PickViewport() = %+v, %v, want %+v, %v", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}
