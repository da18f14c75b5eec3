package ipc

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/1broseidon/kiosk/internal/runtimepath"
)

// Client handles IPC communication with the daemon
type Client struct {
	socketPath string
	timeout    time.Duration
}

// NewClient creates a new IPC client
func NewClient() *Client {
	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		// Keep constructor non-failing; sendRequest surfaces connection errors.
		socketPath = ""
	}
	return NewClientWithSocket(socketPath)
}

// NewClientWithSocket creates a client for an explicit socket path.
func NewClientWithSocket(socketPath string) *Client {
	return &Client{
		socketPath: socketPath,
		timeout:    5 * time.Second,
	}
}

func (c *Client) dial() (net.Conn, error) {
	conn, err := net.DialTimeout("unix", c.socketPath, c.timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to daemon: %w (is the daemon running?)", err)
	}
	return conn, nil
}

func newRequest(cmd CommandType, payload any) (*Request, error) {
	req := &Request{Command: cmd}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal %s payload: %w", cmd, err)
		}
		req.Payload = data
	}
	return req, nil
}

func writeRequest(conn net.Conn, req *Request) error {
	reqData, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}
	reqData = append(reqData, '\n')
	if _, err := conn.Write(reqData); err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	return nil
}

func readResponse(reader *bufio.Reader) (*Response, error) {
	respData, err := reader.ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var resp Response
	if err := json.Unmarshal(respData, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if resp.Status == "ERROR" {
		return nil, fmt.Errorf("daemon error: %s", resp.Error)
	}
	return &resp, nil
}

// sendRequest sends a request and waits for a response
func (c *Client) sendRequest(req *Request) (*Response, error) {
	conn, err := c.dial()
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	conn.SetDeadline(time.Now().Add(c.timeout))

	if err := writeRequest(conn, req); err != nil {
		return nil, err
	}
	return readResponse(bufio.NewReader(conn))
}

// call sends cmd with an optional payload and decodes the response data
// into out when out is non-nil.
func (c *Client) call(cmd CommandType, payload any, out any) error {
	req, err := newRequest(cmd, payload)
	if err != nil {
		return err
	}
	resp, err := c.sendRequest(req)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Data, out); err != nil {
		return fmt.Errorf("failed to parse %s data: %w", cmd, err)
	}
	return nil
}

// Next advances to the next visible site.
func (c *Client) Next() error {
	return c.call(CommandNext, nil, nil)
}

// Previous goes back one visible site.
func (c *Client) Previous() error {
	return c.call(CommandPrevious, nil, nil)
}

// ToggleHidden opens the hidden-content gate or advances within it.
func (c *Client) ToggleHidden() error {
	return c.call(CommandToggleHidden, nil, nil)
}

// SubmitPIN submits a hidden-content PIN.
func (c *Client) SubmitPIN(pin string) (bool, error) {
	var res ResultData
	err := c.call(CommandSubmitPIN, SubmitPINPayload{PIN: pin}, &res)
	return res.Correct, err
}

// PinActivity keeps the PIN dialog open.
func (c *Client) PinActivity() error {
	return c.call(CommandPinActivity, nil, nil)
}

// PowerMenu asks the daemon to show the power menu.
func (c *Client) PowerMenu() error {
	return c.call(CommandPowerMenu, nil, nil)
}

// Activity records a user interaction.
func (c *Client) Activity() error {
	return c.call(CommandActivity, nil, nil)
}

// ShowKeyboard opens the on-screen keyboard.
func (c *Client) ShowKeyboard() error {
	return c.call(CommandShowKeyboard, nil, nil)
}

// CloseKeyboard closes the on-screen keyboard.
func (c *Client) CloseKeyboard() error {
	return c.call(CommandCloseKeyboard, nil, nil)
}

// KeyboardActivity keeps the on-screen keyboard open.
func (c *Client) KeyboardActivity() error {
	return c.call(CommandKeyboardActivity, nil, nil)
}

// RequestPause opens the pause dialog.
func (c *Client) RequestPause() error {
	return c.call(CommandRequestPause, nil, nil)
}

// Extend pauses rotation and inactivity lockout for minutes. Zero resumes.
func (c *Client) Extend(minutes int) error {
	return c.call(CommandExtend, ExtendPayload{Minutes: minutes}, nil)
}

// RespondPrompt answers the presence prompt.
func (c *Client) RespondPrompt(choice string, minutes int) error {
	return c.call(CommandPromptResponse, PromptResponsePayload{Choice: choice, Minutes: minutes}, nil)
}

// Unlock submits the lockout password.
func (c *Client) Unlock(password string) (bool, error) {
	var res ResultData
	err := c.call(CommandUnlock, UnlockPayload{Password: password}, &res)
	return res.Correct, err
}

// LockNow locks the kiosk immediately.
func (c *Client) LockNow() error {
	return c.call(CommandLockNow, nil, nil)
}

// ListSites retrieves the non-hidden sites.
func (c *Client) ListSites() (*SitesData, error) {
	var sites SitesData
	if err := c.call(CommandListSites, nil, &sites); err != nil {
		return nil, err
	}
	return &sites, nil
}

// Navigate shows the site at a config index.
func (c *Client) Navigate(index int) error {
	return c.call(CommandNavigate, NavigatePayload{Index: index}, nil)
}

// GetStatus retrieves daemon status
func (c *Client) GetStatus() (*StatusData, error) {
	var status StatusData
	if err := c.call(CommandGetStatus, nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// Subscribe streams outbound events to fn until ctx is cancelled or the
// daemon closes the stream.
func (c *Client) Subscribe(ctx context.Context, fn func(StreamEvent)) error {
	conn, err := c.dial()
	if err != nil {
		return err
	}
	defer conn.Close()

	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	conn.SetWriteDeadline(time.Now().Add(c.timeout))
	if err := writeRequest(conn, &Request{Command: CommandSubscribe}); err != nil {
		return err
	}

	reader := bufio.NewReader(conn)
	if _, err := readResponse(reader); err != nil {
		return err
	}

	for {
		line, err := reader.ReadBytes('\n')
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return nil
		}
		var e StreamEvent
		if err := json.Unmarshal(line, &e); err != nil {
			return fmt.Errorf("failed to parse event: %w", err)
		}
		fn(e)
	}
}
