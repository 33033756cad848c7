// Package wire defines the WebSocket protocol for live form editing and
// preview.
package wire

import (
	"encoding/json"

	"github.com/matthewbaird/commonapply/internal/editor"
	"github.com/matthewbaird/commonapply/internal/types"
)

// Client message types.
const (
	TypeEdit    = "edit"
	TypeSelect  = "select"
	TypeMode    = "mode"
	TypeAnswers = "answers"
	TypeSave    = "save"
	TypePing    = "ping"
)

// Server message types.
const (
	TypeSession = "session"
	TypeSchema  = "schema"
	TypeCanvas  = "canvas"
	TypePreview = "preview"
	TypeSaved   = "saved"
	TypeError   = "error"
	TypePong    = "pong"
)

// ── Client → Server messages ────────────────────────────────────────────────

// ClientMessage is the envelope for all client-to-server WebSocket messages.
type ClientMessage struct {
	Type string          `json:"type"` // "edit", "select", "mode", "answers", "save", "ping"
	ID   string          `json:"id"`   // Client-assigned request ID
	Data json.RawMessage `json:"data,omitempty"`
}

// EditData is the payload for "edit" messages.
type EditData = editor.Command

// SelectData is the payload for "select" messages. An empty field id clears
// the selection; an empty tab keeps the current one.
type SelectData struct {
	FieldID string     `json:"fieldId"`
	Tab     editor.Tab `json:"tab,omitempty"`
}

// ModeData is the payload for "mode" messages.
type ModeData struct {
	Mode string `json:"mode"` // "design" or "preview"
}

// AnswersData is the payload for "answers" messages.
type AnswersData struct {
	Answers  map[string]any `json:"answers"`
	Validate bool           `json:"validate,omitempty"`
}

// SaveData is the payload for "save" messages.
type SaveData struct {
	Name string `json:"name,omitempty"`
}

// ── Server → Client messages ────────────────────────────────────────────────

// ServerMessage is the envelope for all server-to-client WebSocket messages.
type ServerMessage struct {
	Type      string `json:"type"`                 // "session", "schema", "canvas", "preview", "saved", "error", "pong"
	RequestID string `json:"request_id,omitempty"` // Echoes client ID
	Data      any    `json:"data,omitempty"`
}

// SessionData carries session information.
type SessionData struct {
	SessionID string `json:"session_id"`
	FormID    string `json:"form_id"`
	Version   int    `json:"version"`
	Mode      string `json:"mode"`
	Resumed   bool   `json:"resumed,omitempty"`
	Sessions  int    `json:"sessions"` // open sessions on the form, this one included
}

// SchemaData carries the working schema after an edit.
type SchemaData struct {
	Schema  types.Schema    `json:"schema"`
	Version int             `json:"version"` // version the working copy is based on
	Dirty   bool            `json:"dirty"`
	Outcome *editor.Outcome `json:"outcome,omitempty"`
}

// SavedData announces a stored version of the form.
type SavedData struct {
	FormID  string `json:"form_id"`
	Version int    `json:"version"`
	By      string `json:"by,omitempty"` // session that saved, if known
}

// ErrorData carries an error message.
type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
