package ipc

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"sync"
	"time"

	"github.com/1broseidon/kiosk/internal/kiosk"
	"github.com/1broseidon/kiosk/internal/runtimepath"
)

// Executor runs fn on the goroutine that owns the kiosk core and waits for
// it. daemon.Loop implements it.
type Executor interface {
	Do(ctx context.Context, fn func() error) error
}

// requestTimeout bounds how long a request waits for the core.
const requestTimeout = 5 * time.Second

// subscriberBuffer is the per-connection event backlog.
const subscriberBuffer = 64

// Server handles IPC requests from clients
type Server struct {
	socketPath   string
	listener     net.Listener
	core         *kiosk.Core
	exec         Executor
	hub          *Hub
	startTime    time.Time
	shuttingDown bool
	shutdownMu   sync.Mutex
}

// NewServer creates a new IPC server. An empty socketPath uses the runtime
// directory default.
func NewServer(socketPath string, core *kiosk.Core, exec Executor, hub *Hub) (*Server, error) {
	if socketPath == "" {
		p, err := runtimepath.SocketPath()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve IPC socket path: %w", err)
		}
		socketPath = p
	}

	// Remove existing socket if present
	os.Remove(socketPath)

	return &Server{
		socketPath: socketPath,
		core:       core,
		exec:       exec,
		hub:        hub,
		startTime:  time.Now(),
	}, nil
}

// SocketPath returns the path the server listens on.
func (s *Server) SocketPath() string {
	return s.socketPath
}

// Start begins listening for IPC connections
func (s *Server) Start() error {
	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to create IPC socket: %w", err)
	}
	s.listener = listener

	// Set socket permissions
	if err := os.Chmod(s.socketPath, 0600); err != nil {
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}

	log.Printf("IPC server listening on %s", s.socketPath)

	go s.acceptLoop()

	return nil
}

// acceptLoop accepts incoming connections
func (s *Server) acceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			s.shutdownMu.Lock()
			if s.shuttingDown {
				s.shutdownMu.Unlock()
				return
			}
			s.shutdownMu.Unlock()
			log.Printf("IPC accept error: %v", err)
			continue
		}

		go s.handleConnection(conn)
	}
}

// handleConnection handles a single IPC connection
func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()

	reader := bufio.NewReader(conn)

	// Read the request (expect JSON on a single line)
	data, err := reader.ReadBytes('\n')
	if err != nil && err != io.EOF {
		log.Printf("IPC read error: %v", err)
		return
	}

	req, err := ParseRequest(data)
	if err != nil {
		s.sendError(conn, fmt.Sprintf("Invalid request: %v", err))
		return
	}

	if req.Command == CommandSubscribe {
		s.stream(conn, reader)
		return
	}

	resp := s.handleCommand(req)
	if err := writeLine(conn, resp); err != nil {
		log.Printf("Failed to send response: %v", err)
	}
}

// handleCommand processes an IPC command and returns a response
func (s *Server) handleCommand(req *Request) *Response {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	switch req.Command {
	case CommandNext:
		return s.run(ctx, s.core.Next)
	case CommandPrevious:
		return s.run(ctx, s.core.Previous)
	case CommandToggleHidden:
		return s.run(ctx, s.core.ToggleHidden)
	case CommandPinActivity:
		return s.run(ctx, s.core.PinActivity)
	case CommandPowerMenu:
		return s.run(ctx, s.core.PowerMenu)
	case CommandShowKeyboard:
		return s.run(ctx, s.core.ShowKeyboard)
	case CommandCloseKeyboard:
		return s.run(ctx, s.core.CloseKeyboard)
	case CommandKeyboardActivity:
		return s.run(ctx, s.core.KeyboardActivity)
	case CommandRequestPause:
		return s.run(ctx, s.core.RequestPause)
	case CommandLockNow:
		log.Println("IPC: Received LOCK_NOW command")
		return s.run(ctx, s.core.LockNow)
	case CommandActivity:
		return s.run(ctx, func() error {
			s.core.Activity()
			return nil
		})
	case CommandSubmitPIN:
		return s.handleSubmitPIN(ctx, req.Payload)
	case CommandUnlock:
		return s.handleUnlock(ctx, req.Payload)
	case CommandExtend:
		return s.handleExtend(ctx, req.Payload)
	case CommandPromptResponse:
		return s.handlePromptResponse(ctx, req.Payload)
	case CommandNavigate:
		return s.handleNavigate(ctx, req.Payload)
	case CommandListSites:
		return s.handleListSites(ctx)
	case CommandGetStatus:
		return s.handleGetStatus(ctx)
	default:
		return NewErrorResponse(fmt.Sprintf("Unknown command: %s", req.Command))
	}
}

// run executes op on the core's goroutine.
func (s *Server) run(ctx context.Context, op func() error) *Response {
	if err := s.exec.Do(ctx, op); err != nil {
		return NewErrorResponse(describe(err))
	}
	resp, _ := NewOKResponse(nil)
	return resp
}

// describe turns core errors into client-facing messages.
func describe(err error) string {
	switch {
	case errors.Is(err, kiosk.ErrLocked):
		return "kiosk is locked"
	case errors.Is(err, kiosk.ErrNoSites):
		return "no sites configured"
	default:
		return err.Error()
	}
}

func (s *Server) handleSubmitPIN(ctx context.Context, payload json.RawMessage) *Response {
	var req SubmitPINPayload
	if err := decodePayload(payload, &req); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid pin payload: %v", err))
	}

	var correct bool
	err := s.exec.Do(ctx, func() error {
		var err error
		correct, err = s.core.SubmitPIN(req.PIN)
		return err
	})
	if err != nil {
		return NewErrorResponse(describe(err))
	}
	resp, _ := NewOKResponse(ResultData{Correct: correct})
	return resp
}

func (s *Server) handleUnlock(ctx context.Context, payload json.RawMessage) *Response {
	var req UnlockPayload
	if err := decodePayload(payload, &req); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid unlock payload: %v", err))
	}

	var correct bool
	if err := s.exec.Do(ctx, func() error {
		correct = s.core.Unlock(req.Password)
		return nil
	}); err != nil {
		return NewErrorResponse(describe(err))
	}
	if !correct {
		log.Println("IPC: Unlock attempt rejected")
	}
	resp, _ := NewOKResponse(ResultData{Correct: correct})
	return resp
}

func (s *Server) handleExtend(ctx context.Context, payload json.RawMessage) *Response {
	var req ExtendPayload
	if err := decodePayload(payload, &req); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid extend payload: %v", err))
	}
	if req.Minutes < 0 {
		return NewErrorResponse("minutes must not be negative")
	}
	return s.run(ctx, func() error {
		return s.core.Extend(time.Duration(req.Minutes) * time.Minute)
	})
}

func (s *Server) handlePromptResponse(ctx context.Context, payload json.RawMessage) *Response {
	var req PromptResponsePayload
	if err := decodePayload(payload, &req); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid prompt payload: %v", err))
	}
	return s.run(ctx, func() error {
		return s.core.RespondPrompt(kiosk.PromptChoice(req.Choice), req.Minutes)
	})
}

func (s *Server) handleNavigate(ctx context.Context, payload json.RawMessage) *Response {
	var req NavigatePayload
	if err := json.Unmarshal(payload, &req); err != nil {
		return NewErrorResponse(fmt.Sprintf("Invalid navigate payload: %v", err))
	}
	return s.run(ctx, func() error {
		return s.core.Navigate(req.Index)
	})
}

func (s *Server) handleListSites(ctx context.Context) *Response {
	var sites []kiosk.Site
	if err := s.exec.Do(ctx, func() error {
		sites = s.core.Sites()
		return nil
	}); err != nil {
		return NewErrorResponse(describe(err))
	}
	resp, _ := NewOKResponse(SitesData{Sites: listSites(sites)})
	return resp
}

func listSites(sites []kiosk.Site) []SiteInfo {
	out := make([]SiteInfo, 0, len(sites))
	for i, site := range sites {
		if site.Hidden() {
			continue
		}
		out = append(out, SiteInfo{
			Index:    i,
			Name:     site.Title(),
			URL:      site.URL,
			Rotating: site.Rotating(),
			Duration: int(site.Duration / time.Second),
			Home:     site.IsHome,
		})
	}
	return out
}

// handleGetStatus returns current daemon status
func (s *Server) handleGetStatus(ctx context.Context) *Response {
	var st kiosk.Status
	if err := s.exec.Do(ctx, func() error {
		st = s.core.Status()
		return nil
	}); err != nil {
		return NewErrorResponse(describe(err))
	}

	status := StatusData{
		Status:        st,
		UptimeSeconds: int64(time.Since(s.startTime).Seconds()),
		DaemonRunning: true,
	}
	resp, _ := NewOKResponse(status)
	return resp
}

// stream acknowledges a SUBSCRIBE and then writes one event per line until
// the client hangs up or the hub closes.
func (s *Server) stream(conn net.Conn, reader *bufio.Reader) {
	if s.hub == nil {
		s.sendError(conn, "event stream unavailable")
		return
	}
	events, cancel := s.hub.Subscribe(subscriberBuffer)
	defer cancel()

	ok, _ := NewOKResponse(nil)
	if err := writeLine(conn, ok); err != nil {
		return
	}

	go func() {
		// Any read result means the client is done with the stream.
		io.Copy(io.Discard, reader)
		cancel()
	}()

	for e := range events {
		if err := writeLine(conn, e); err != nil {
			return
		}
	}
}

func writeLine(conn net.Conn, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal: %w", err)
	}
	data = append(data, '\n')
	_, err = conn.Write(data)
	return err
}

// sendError sends an error response
func (s *Server) sendError(conn net.Conn, errMsg string) {
	if err := writeLine(conn, NewErrorResponse(errMsg)); err != nil {
		log.Printf("Failed to send error response: %v", err)
	}
}

// Stop gracefully shuts down the IPC server
func (s *Server) Stop() {
	s.shutdownMu.Lock()
	s.shuttingDown = true
	s.shutdownMu.Unlock()

	if s.listener != nil {
		s.listener.Close()
	}
	if s.hub != nil {
		s.hub.Close()
	}
	os.Remove(s.socketPath)
}
