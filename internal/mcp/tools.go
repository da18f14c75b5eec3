package mcp

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/kiosk/internal/ipc"
)

// maxPauseMinutes mirrors the daemon's extension ceiling.
const maxPauseMinutes = 240

func (s *Server) handleStatus(_ context.Context, _ *mcpsdk.CallToolRequest, _ StatusInput) (*mcpsdk.CallToolResult, StatusOutput, error) {
	st, err := s.kiosk.GetStatus()
	if err != nil {
		return nil, StatusOutput{}, fmt.Errorf("failed to get kiosk status: %w", err)
	}
	return nil, statusOutput(st), nil
}

func statusOutput(st *ipc.StatusData) StatusOutput {
	out := StatusOutput{
		Locked:           st.Locked,
		VisibleIndex:     st.VisibleIndex,
		SiteName:         st.SiteName,
		SiteURL:          st.SiteURL,
		ShowingHidden:    st.ShowingHidden,
		ManualNavigation: st.ManualNavigation,
		MediaPlaying:     st.MediaPlaying,
		MediaLabel:       st.MediaLabel,
		IdleSeconds:      st.IdleSeconds,
		UptimeSeconds:    st.UptimeSeconds,
	}
	if !st.ExtensionUntil.IsZero() {
		out.PausedUntil = st.ExtensionUntil.Format(time.RFC3339)
	}
	if st.ShowingHidden {
		out.VisibleIndex = -1
		out.SiteName = ""
		out.SiteURL = ""
	}
	return out
}

func (s *Server) handleListSites(_ context.Context, _ *mcpsdk.CallToolRequest, _ ListSitesInput) (*mcpsdk.CallToolResult, ListSitesOutput, error) {
	sites, err := s.kiosk.ListSites()
	if err != nil {
		return nil, ListSitesOutput{}, fmt.Errorf("failed to list sites: %w", err)
	}
	out := ListSitesOutput{Sites: sites.Sites}
	if out.Sites == nil {
		out.Sites = []ipc.SiteInfo{}
	}
	return nil, out, nil
}

func (s *Server) handleNavigateSite(_ context.Context, _ *mcpsdk.CallToolRequest, args NavigateSiteInput) (*mcpsdk.CallToolResult, ActionOutput, error) {
	if err := s.kiosk.Navigate(args.Index); err != nil {
		return nil, ActionOutput{}, fmt.Errorf("failed to show site %d: %w", args.Index, err)
	}
	log.Printf("MCP: navigate_site index=%d", args.Index)
	return s.actionResult()
}

func (s *Server) handleRotate(_ context.Context, _ *mcpsdk.CallToolRequest, args RotateInput) (*mcpsdk.CallToolResult, ActionOutput, error) {
	var err error
	switch strings.ToLower(strings.TrimSpace(args.Direction)) {
	case "", "next":
		err = s.kiosk.Next()
	case "previous", "prev":
		err = s.kiosk.Previous()
	default:
		return nil, ActionOutput{}, fmt.Errorf("unknown direction %q (use next or previous)", args.Direction)
	}
	if err != nil {
		return nil, ActionOutput{}, fmt.Errorf("failed to rotate: %w", err)
	}
	return s.actionResult()
}

func (s *Server) handlePauseRotation(_ context.Context, _ *mcpsdk.CallToolRequest, args PauseRotationInput) (*mcpsdk.CallToolResult, ActionOutput, error) {
	if args.Minutes < 0 || args.Minutes > maxPauseMinutes {
		return nil, ActionOutput{}, fmt.Errorf("minutes must be between 0 and %d", maxPauseMinutes)
	}
	if err := s.kiosk.Extend(args.Minutes); err != nil {
		return nil, ActionOutput{}, fmt.Errorf("failed to pause rotation: %w", err)
	}
	log.Printf("MCP: pause_rotation minutes=%d", args.Minutes)
	return s.actionResult()
}

func (s *Server) handleLockScreen(_ context.Context, _ *mcpsdk.CallToolRequest, _ LockScreenInput) (*mcpsdk.CallToolResult, ActionOutput, error) {
	if err := s.kiosk.LockNow(); err != nil {
		return nil, ActionOutput{}, fmt.Errorf("failed to lock: %w", err)
	}
	log.Printf("MCP: lock_screen")
	return s.actionResult()
}

// actionResult reports the state after a change.
func (s *Server) actionResult() (*mcpsdk.CallToolResult, ActionOutput, error) {
	st, err := s.kiosk.GetStatus()
	if err != nil {
		return nil, ActionOutput{}, fmt.Errorf("action applied but status unavailable: %w", err)
	}
	view := statusOutput(st)
	return nil, ActionOutput{
		VisibleIndex: view.VisibleIndex,
		SiteName:     view.SiteName,
		Locked:       view.Locked,
		PausedUntil:  view.PausedUntil,
	}, nil
}
