package browser

import (
	"encoding/base64"
	"fmt"
	"log/slog"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"

	"github.com/1broseidon/kiosk/internal/kiosk"
	"github.com/1broseidon/kiosk/internal/navpolicy"
)

// Surface is a browser page bound to one site.
type Surface struct {
	page          *rod.Page
	site          kiosk.Site
	policy        navpolicy.Policy
	router        *rod.HijackRouter
	removeHeaders func()
	logger        *slog.Logger
}

func newSurface(page *rod.Page, site kiosk.Site, policy navpolicy.Policy, logger *slog.Logger) (*Surface, error) {
	s := &Surface{page: page, site: site, policy: policy, logger: logger}

	if site.Username != "" {
		remove, err := page.SetExtraHeaders([]string{"Authorization", basicAuth(site.Username, site.Password)})
		if err != nil {
			return nil, fmt.Errorf("failed to set credentials: %w", err)
		}
		s.removeHeaders = remove
	}

	if policy != navpolicy.Open {
		router := page.HijackRequests()
		if err := router.Add("*", proto.NetworkResourceTypeDocument, s.vetNavigation); err != nil {
			return nil, fmt.Errorf("failed to install navigation filter: %w", err)
		}
		go router.Run()
		s.router = router
	}
	return s, nil
}

// vetNavigation blocks top-level document loads the policy forbids. Frames
// inside the page load freely.
func (s *Surface) vetNavigation(h *rod.Hijack) {
	target := h.Request.URL().String()
	if !mainFrame(h.Request.Event().FrameID, s.page.FrameID) || s.policy.Allowed(s.site.URL, target) {
		h.ContinueRequest(&proto.FetchContinueRequest{})
		return
	}
	s.logger.Info("navigation blocked", "from", s.site.URL, "to", target, "policy", s.policy)
	h.Response.Fail(proto.NetworkErrorReasonBlockedByClient)
}

func mainFrame(request, page proto.PageFrameID) bool {
	return request == "" || page == "" || request == page
}

func basicAuth(username, password string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(username+":"+password))
}

// Attach brings the page to the front and thaws it.
func (s *Surface) Attach() error {
	if err := s.lifecycle(proto.PageSetWebLifecycleStateStateActive); err != nil {
		return err
	}
	if _, err := s.page.Activate(); err != nil {
		return fmt.Errorf("failed to activate page: %w", err)
	}
	return nil
}

// Detach freezes the page so it stops running scripts and playing media
// while another site is shown.
func (s *Surface) Detach() error {
	return s.lifecycle(proto.PageSetWebLifecycleStateStateFrozen)
}

func (s *Surface) lifecycle(state proto.PageSetWebLifecycleStateState) error {
	if err := (proto.PageSetWebLifecycleState{State: state}).Call(s.page); err != nil {
		return fmt.Errorf("failed to set page lifecycle %s: %w", state, err)
	}
	return nil
}

// Resize fits the page to the viewport.
func (s *Surface) Resize(r kiosk.Rect) error {
	if r.Width <= 0 || r.Height <= 0 {
		return nil
	}
	err := s.page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             r.Width,
		Height:            r.Height,
		DeviceScaleFactor: 1,
	})
	if err != nil {
		return fmt.Errorf("failed to resize page: %w", err)
	}
	return nil
}

// URL reports the page's current address, or "" when it cannot be read.
func (s *Surface) URL() string {
	info, err := s.page.Info()
	if err != nil {
		return ""
	}
	return info.URL
}

// Load navigates the page.
func (s *Surface) Load(url string) error {
	if err := s.page.Navigate(url); err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", url, err)
	}
	return nil
}

func (s *Surface) close() {
	if s.router != nil {
		if err := s.router.Stop(); err != nil {
			s.logger.Debug("navigation filter stop failed", "error", err)
		}
	}
	if s.removeHeaders != nil {
		s.removeHeaders()
	}
	if err := s.page.Close(); err != nil {
		s.logger.Debug("page close failed", "error", err)
	}
}
