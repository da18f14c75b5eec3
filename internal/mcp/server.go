// Package mcp exposes the running kiosk daemon to agents as MCP tools.
package mcp

import (
	"context"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/kiosk/internal/ipc"
)

const ServerName = "kiosk"

// Controller is the daemon surface the tools drive. *ipc.Client implements it.
type Controller interface {
	GetStatus() (*ipc.StatusData, error)
	ListSites() (*ipc.SitesData, error)
	Navigate(index int) error
	Next() error
	Previous() error
	Extend(minutes int) error
	LockNow() error
}

var _ Controller = (*ipc.Client)(nil)

// Server is the MCP server for kiosk control.
type Server struct {
	mcpServer *mcpsdk.Server
	kiosk     Controller
}

// NewServer creates a new MCP server talking to the daemon through ctl.
func NewServer(ctl Controller, version string) *Server {
	s := &Server{kiosk: ctl}
	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: version,
		},
		nil,
	)
	s.registerTools()
	return s
}

// Run starts the MCP server on stdio transport, blocking until done.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "kiosk_status",
		Description: "Report what the kiosk is showing: visible site, lock state, media playback, rotation pause and idle time. Hidden content is never described.",
	}, s.handleStatus)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_sites",
		Description: "List the configured sites (hidden sites excluded) with their config index, rotation duration and whether they are the home site.",
	}, s.handleListSites)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "navigate_site",
		Description: "Show the site at a config index. Counts as a manual switch: the kiosk may later return home after inactivity.",
	}, s.handleNavigateSite)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "rotate",
		Description: "Step to the next or previous visible site.",
	}, s.handleRotate)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "pause_rotation",
		Description: "Pause automatic rotation and the inactivity lock for up to 4 hours. Pass 0 minutes to resume.",
	}, s.handlePauseRotation)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "lock_screen",
		Description: "Lock the kiosk now. Only a person at the display can unlock it with the password. Does nothing when password protection is off.",
	}, s.handleLockScreen)
}
