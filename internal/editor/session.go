package editor

import "github.com/matthewbaird/commonapply/internal/types"

// Tab is a settings panel tab of the designer.
type Tab string

const (
	TabBasic    Tab = "basic"
	TabStyle    Tab = "style"
	TabAdvanced Tab = "advanced"
)

// Selection is designer UI state. It never becomes part of the schema.
type Selection struct {
	FieldID string `json:"fieldId,omitempty"`
	Tab     Tab    `json:"tab"`
}

// Session pairs an Editor with the designer's current selection. Removing
// the selected field clears the selection.
type Session struct {
	*Editor
	sel Selection
}

// NewSession wraps e with an empty selection on the basic tab.
func NewSession(e *Editor) *Session {
	return &Session{Editor: e, sel: Selection{Tab: TabBasic}}
}

// Selection returns the current selection.
func (s *Session) Selection() Selection { return s.sel }

// Select focuses the field with the given id and resets the tab to basic.
// An empty id clears the selection; an unknown id is ignored.
func (s *Session) Select(id string) bool {
	if id == "" {
		s.ClearSelection()
		return true
	}
	if _, ok := s.Field(id); !ok {
		return false
	}
	if s.sel.FieldID != id {
		s.sel = Selection{FieldID: id, Tab: TabBasic}
	}
	return true
}

// SetTab switches the settings tab. Unknown tabs are ignored.
func (s *Session) SetTab(t Tab) bool {
	switch t {
	case TabBasic, TabStyle, TabAdvanced:
		s.sel.Tab = t
		return true
	}
	return false
}

// ClearSelection drops the focused field.
func (s *Session) ClearSelection() {
	s.sel = Selection{Tab: TabBasic}
}

// Selected returns the focused field, if any.
func (s *Session) Selected() (types.Field, bool) {
	if s.sel.FieldID == "" {
		return types.Field{}, false
	}
	return s.Field(s.sel.FieldID)
}

// RemoveField deletes the field and clears the selection when it pointed at
// the removed field.
func (s *Session) RemoveField(id string) bool {
	if !s.Editor.RemoveField(id) {
		return false
	}
	if s.sel.FieldID == id {
		s.ClearSelection()
	}
	return true
}

// Apply runs cmd and keeps the selection consistent with the result.
func (s *Session) Apply(cmd Command) (Outcome, error) {
	out, err := s.Editor.Apply(cmd)
	if err == nil && cmd.Op == OpRemoveField && out.Changed && s.sel.FieldID == cmd.ID {
		s.ClearSelection()
	}
	return out, err
}
