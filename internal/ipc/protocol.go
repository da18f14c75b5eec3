package ipc

import (
	"encoding/json"
	"fmt"

	"github.com/1broseidon/kiosk/internal/kiosk"
)

// CommandType represents different IPC command types
type CommandType string

const (
	CommandNext             CommandType = "NEXT"
	CommandPrevious         CommandType = "PREVIOUS"
	CommandToggleHidden     CommandType = "TOGGLE_HIDDEN"
	CommandSubmitPIN        CommandType = "SUBMIT_PIN"
	CommandPinActivity      CommandType = "PIN_ACTIVITY"
	CommandPowerMenu        CommandType = "POWER_MENU"
	CommandActivity         CommandType = "ACTIVITY"
	CommandShowKeyboard     CommandType = "SHOW_KEYBOARD"
	CommandCloseKeyboard    CommandType = "CLOSE_KEYBOARD"
	CommandKeyboardActivity CommandType = "KEYBOARD_ACTIVITY"
	CommandRequestPause     CommandType = "REQUEST_PAUSE"
	CommandExtend           CommandType = "EXTEND"
	CommandPromptResponse   CommandType = "PROMPT_RESPONSE"
	CommandUnlock           CommandType = "UNLOCK"
	CommandLockNow          CommandType = "LOCK_NOW"
	CommandListSites        CommandType = "LIST_SITES"
	CommandNavigate         CommandType = "NAVIGATE"
	CommandGetStatus        CommandType = "GET_STATUS"
	CommandSubscribe        CommandType = "SUBSCRIBE"
)

// Request represents an IPC request from client to server
type Request struct {
	Command CommandType     `json:"command"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Response represents an IPC response from server to client
type Response struct {
	Status string          `json:"status"` // "OK" or "ERROR"
	Data   json.RawMessage `json:"data,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// StatusData represents the data returned by GET_STATUS
type StatusData struct {
	kiosk.Status
	UptimeSeconds int64 `json:"uptime_seconds"`
	DaemonRunning bool  `json:"daemon_running"`
}

// SiteInfo describes one listed site. Hidden sites are never listed.
type SiteInfo struct {
	Index    int    `json:"index"`
	Name     string `json:"name"`
	URL      string `json:"url"`
	Rotating bool   `json:"rotating"`
	Duration int    `json:"duration_seconds"`
	Home     bool   `json:"home"`
}

// SitesData represents the data returned by LIST_SITES
type SitesData struct {
	Sites []SiteInfo `json:"sites"`
}

type SubmitPINPayload struct {
	PIN string `json:"pin"`
}

type UnlockPayload struct {
	Password string `json:"password"`
}

// ExtendPayload carries the extension length. Zero resumes rotation.
type ExtendPayload struct {
	Minutes int `json:"minutes"`
}

type PromptResponsePayload struct {
	Choice  string `json:"choice"`
	Minutes int    `json:"minutes,omitempty"`
}

type NavigatePayload struct {
	Index int `json:"index"`
}

// ResultData answers UNLOCK and SUBMIT_PIN.
type ResultData struct {
	Correct bool `json:"correct"`
}

// StreamEvent is one line of a SUBSCRIBE stream as read by clients.
type StreamEvent struct {
	Kind kiosk.EventKind `json:"kind"`
	Data json.RawMessage `json:"data,omitempty"`
}

// NewOKResponse creates a successful response with optional data
func NewOKResponse(data interface{}) (*Response, error) {
	var dataBytes json.RawMessage
	if data != nil {
		bytes, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response data: %w", err)
		}
		dataBytes = bytes
	}

	return &Response{
		Status: "OK",
		Data:   dataBytes,
	}, nil
}

// NewErrorResponse creates an error response with a message
func NewErrorResponse(errMsg string) *Response {
	return &Response{
		Status: "ERROR",
		Error:  errMsg,
	}
}

// ParseRequest parses a request from JSON bytes
func ParseRequest(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}
	return &req, nil
}

// Marshal converts a response to JSON bytes
func (r *Response) Marshal() ([]byte, error) {
	return json.Marshal(r)
}

// decodePayload unmarshals a request payload, treating an empty payload as
// the zero value.
func decodePayload(raw json.RawMessage, out any) error {
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, out)
}
