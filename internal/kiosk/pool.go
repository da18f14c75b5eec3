package kiosk

import (
	"log/slog"

	"github.com/1broseidon/kiosk/internal/navpolicy"
)

// Rect is the viewport geometry in pixels.
type Rect struct {
	X, Y, Width, Height int
}

// ViewportFunc returns the current display geometry.
type ViewportFunc func() (Rect, error)

// Surface is one renderable content view bound to a site.
type Surface interface {
	Attach() error
	Detach() error
	Resize(Rect) error
	URL() string
	Load(url string) error
}

// Pool owns one surface per site and enforces that at most one is attached.
type Pool struct {
	sites    []Site
	surfaces []Surface
	attached []bool
	hidden   []int
	viewport ViewportFunc
	logger   *slog.Logger
}

// NewPool pairs sites with their surfaces.
func NewPool(sites []Site, surfaces []Surface, viewport ViewportFunc, logger *slog.Logger) *Pool {
	p := &Pool{
		sites:    sites,
		surfaces: surfaces,
		attached: make([]bool, len(surfaces)),
		viewport: viewport,
		logger:   logger,
	}
	for i, s := range sites {
		if s.Hidden() {
			p.hidden = append(p.hidden, i)
		}
	}
	return p
}

// Hidden returns the config indexes of hidden sites in order.
func (p *Pool) Hidden() []int {
	return p.hidden
}

// Attach detaches every other surface, attaches index, resizes it to the
// viewport and reloads it if it drifted from its site URL.
func (p *Pool) Attach(index int) {
	if index < 0 || index >= len(p.surfaces) {
		return
	}
	for i, s := range p.surfaces {
		if i == index || !p.attached[i] {
			continue
		}
		if err := s.Detach(); err != nil {
			p.logger.Warn("surface detach failed", "index", i, "error", err)
		}
		p.attached[i] = false
	}

	s := p.surfaces[index]
	if !p.attached[index] {
		if err := s.Attach(); err != nil {
			p.logger.Warn("surface attach failed", "index", index, "error", err)
		}
		p.attached[index] = true
	}
	if p.viewport != nil {
		if r, err := p.viewport(); err != nil {
			p.logger.Debug("viewport unavailable", "error", err)
		} else if err := s.Resize(r); err != nil {
			p.logger.Warn("surface resize failed", "index", index, "error", err)
		}
	}
	want := p.sites[index].URL
	if got := s.URL(); !navpolicy.SameDocument(got, want) {
		p.logger.Info("surface drifted, reloading", "index", index, "from", got, "to", want)
		if err := s.Load(want); err != nil {
			p.logger.Warn("surface reload failed", "index", index, "error", err)
		}
	}
}

// DetachAll detaches every attached surface. Surfaces already detached are
// left alone.
func (p *Pool) DetachAll() {
	for i, s := range p.surfaces {
		if !p.attached[i] {
			continue
		}
		if err := s.Detach(); err != nil {
			p.logger.Warn("surface detach failed", "index", i, "error", err)
		}
		p.attached[i] = false
	}
}

// Surface returns the surface for index.
func (p *Pool) Surface(index int) Surface {
	if index < 0 || index >= len(p.surfaces) {
		return nil
	}
	return p.surfaces[index]
}

// AttachedIndexes lists attached surfaces.
func (p *Pool) AttachedIndexes() []int {
	var out []int
	for i, ok := range p.attached {
		if ok {
			out = append(out, i)
		}
	}
	return out
}
