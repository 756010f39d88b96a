// Package message defines the smartclip control protocol spoken over the
// local IPC socket.
//
// All messages are newline-delimited JSON, one message per line: <json>\n.
// A client sends one request and reads one response, except WATCH, which
// keeps the connection open and receives a HISTORY message per change.
package message

import (
	"encoding/json"
	"fmt"
	"time"

	"go.klb.dev/smartclip/internal/config"
)

// Type identifies the kind of message.
type Type string

const (
	// Requests
	TypeList     Type = "LIST"
	TypePush     Type = "PUSH"
	TypeUse      Type = "USE"
	TypeStatus   Type = "STATUS"
	TypeWatch    Type = "WATCH"
	TypeSession  Type = "SESSION"
	TypeSettings Type = "SETTINGS"

	// Responses
	TypeHistory        Type = "HISTORY"
	TypeStatusResponse Type = "STATUS_RESPONSE"
	TypeSessionView    Type = "SESSION_VIEW"
	TypeOK             Type = "OK"
	TypeError          Type = "ERROR"
)

// SessionOp is the picker operation carried by a SESSION request.
type SessionOp string

const (
	OpShow   SessionOp = "show"
	OpOpen   SessionOp = "open"
	OpFilter SessionOp = "filter"
	OpCycle  SessionOp = "cycle"
	OpMove   SessionOp = "move"
	OpAccept SessionOp = "accept"
	OpCancel SessionOp = "cancel"
)

// SessionView mirrors the picker state for external presenters.
type SessionView struct {
	State   string   `json:"state"`
	Filter  string   `json:"filter"`
	Cursor  int      `json:"cursor"`
	Entries []string `json:"entries"`
}

// HotkeyInfo describes one binding slot in a STATUS response.
type HotkeyInfo struct {
	Combo string `json:"combo"`
	Error string `json:"error,omitempty"`
}

// Status is the daemon summary returned for STATUS.
type Status struct {
	Version   string     `json:"version"`
	StartedAt time.Time  `json:"started_at"`
	Clipboard string     `json:"clipboard"`
	Store     string     `json:"store"`
	Entries   int        `json:"entries"`
	MaxSize   int        `json:"max_size"`
	Session   string     `json:"session"`
	Primary   HotkeyInfo `json:"primary"`
	Secondary HotkeyInfo `json:"secondary"`
	Dropped   uint64     `json:"dropped_events"`
	Watchers  int        `json:"watchers"`
}

// Message is the top-level wire envelope.
type Message struct {
	Type Type `json:"type"`

	// PUSH
	Text string `json:"text,omitempty"`

	// LIST
	Filter string `json:"filter,omitempty"`
	Limit  int    `json:"limit,omitempty"`

	// USE
	Index int `json:"index,omitempty"`

	// SESSION: Filter carries the text for OpFilter, Delta the step for OpMove.
	Op    SessionOp `json:"op,omitempty"`
	Delta int       `json:"delta,omitempty"`

	// SETTINGS: empty Key reads the settings; otherwise Key is set to Value.
	Key   string `json:"key,omitempty"`
	Value string `json:"value,omitempty"`

	// HISTORY: Entries is most recent first, Total the unfiltered count.
	Entries []string `json:"entries,omitempty"`
	Total   int      `json:"total,omitempty"`

	// STATUS_RESPONSE
	Status *Status `json:"status,omitempty"`

	// SESSION_VIEW
	View *SessionView `json:"view,omitempty"`

	// OK for SETTINGS
	Settings *config.Settings `json:"settings,omitempty"`

	// ERROR
	Error string `json:"error,omitempty"`
}

// Encode serialises the message to JSON without a trailing newline.
func (m *Message) Encode() ([]byte, error) {
	return json.Marshal(m)
}

// Decode deserialises a message from raw JSON bytes.
func Decode(b []byte) (*Message, error) {
	var m Message
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("message decode: %w", err)
	}
	return &m, nil
}

// OK returns an empty success response.
func OK() *Message { return &Message{Type: TypeOK} }

// Errorf returns an ERROR response.
func Errorf(format string, args ...any) *Message {
	return &Message{Type: TypeError, Error: fmt.Sprintf(format, args...)}
}

// Err returns the error carried by an ERROR message, or nil.
func (m *Message) Err() error {
	if m.Type != TypeError {
		return nil
	}
	return fmt.Errorf("smartclip: %s", m.Error)
}
