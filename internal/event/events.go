package event

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/matthewbaird/commonapply/internal/editor"
	"github.com/matthewbaird/commonapply/internal/types"
)

// Event types.
const (
	FormCreated        = "form_created"
	FormSaved          = "form_saved"
	FormDeleted        = "form_deleted"
	FieldAdded         = "field_added"
	FieldUpdated       = "field_updated"
	FieldRemoved       = "field_removed"
	FieldDuplicated    = "field_duplicated"
	FieldsReordered    = "fields_reordered"
	SectionAdded       = "section_added"
	SectionUpdated     = "section_updated"
	SectionRemoved     = "section_removed"
	SectionsReordered  = "sections_reordered"
	FormStylingChanged = "form_styling_changed"
)

// Categories.
const (
	CategoryForm    = "form"
	CategoryField   = "field"
	CategorySection = "section"
)

// DomainEvent carries the canonical shape of every form event.
type DomainEvent struct {
	ID         string
	EventType  string
	OccurredAt time.Time
	FormID     string
	FieldID    string // set for field events
	Actor      string
	Summary    string
	Category   string
	Payload    json.RawMessage
}

func newID() string { return uuid.New().String() }

func mustJSON(v any) json.RawMessage {
	b, _ := json.Marshal(v)
	return b
}

func newEvent(eventType, category, formID, summary string, payload any) DomainEvent {
	return DomainEvent{
		ID:         newID(),
		EventType:  eventType,
		OccurredAt: time.Now(),
		FormID:     formID,
		Summary:    summary,
		Category:   category,
		Payload:    mustJSON(payload),
	}
}

func labelOf(f types.Field) string {
	if f.Label != "" {
		return f.Label
	}
	return f.ID
}

// ── Form events ──────────────────────────────────────────────────────────────

// FormPayload carries form-level bookkeeping.
type FormPayload struct {
	FormID  string `json:"form_id"`
	Name    string `json:"name,omitempty"`
	Version int    `json:"version,omitempty"`
	Fields  int    `json:"fields"`
}

func NewFormCreated(p FormPayload) DomainEvent {
	return newEvent(FormCreated, CategoryForm, p.FormID, fmt.Sprintf("Created form %q", p.Name), p)
}

func NewFormSaved(p FormPayload) DomainEvent {
	return newEvent(FormSaved, CategoryForm, p.FormID, fmt.Sprintf("Saved version %d", p.Version), p)
}

func NewFormDeleted(p FormPayload) DomainEvent {
	return newEvent(FormDeleted, CategoryForm, p.FormID, fmt.Sprintf("Deleted form %q", p.Name), p)
}

// ── Field events ─────────────────────────────────────────────────────────────

// FieldPayload carries the field as it stands after the change.
type FieldPayload struct {
	FormID   string      `json:"form_id"`
	Field    types.Field `json:"field"`
	SourceID string      `json:"source_id,omitempty"` // duplicated from
}

func newFieldEvent(eventType, summary string, p FieldPayload) DomainEvent {
	evt := newEvent(eventType, CategoryField, p.FormID, summary, p)
	evt.FieldID = p.Field.ID
	return evt
}

func NewFieldAdded(p FieldPayload) DomainEvent {
	return newFieldEvent(FieldAdded, fmt.Sprintf("Added %s field %q", p.Field.Type, labelOf(p.Field)), p)
}

func NewFieldUpdated(p FieldPayload) DomainEvent {
	return newFieldEvent(FieldUpdated, fmt.Sprintf("Updated field %q", labelOf(p.Field)), p)
}

func NewFieldRemoved(p FieldPayload) DomainEvent {
	return newFieldEvent(FieldRemoved, fmt.Sprintf("Removed field %q", labelOf(p.Field)), p)
}

func NewFieldDuplicated(p FieldPayload) DomainEvent {
	return newFieldEvent(FieldDuplicated, fmt.Sprintf("Duplicated field %s as %q", p.SourceID, labelOf(p.Field)), p)
}

// ReorderPayload records a move and the resulting order.
type ReorderPayload struct {
	FormID string   `json:"form_id"`
	From   int      `json:"from"`
	To     int      `json:"to"`
	Order  []string `json:"order"`
}

func NewFieldsReordered(p ReorderPayload) DomainEvent {
	return newEvent(FieldsReordered, CategoryField, p.FormID, fmt.Sprintf("Moved field from position %d to %d", p.From+1, p.To+1), p)
}

// ── Section events ───────────────────────────────────────────────────────────

// SectionPayload carries the section as it stands after the change.
type SectionPayload struct {
	FormID  string        `json:"form_id"`
	Section types.Section `json:"section"`
}

func NewSectionAdded(p SectionPayload) DomainEvent {
	return newEvent(SectionAdded, CategorySection, p.FormID, fmt.Sprintf("Added section %q", p.Section.Title), p)
}

func NewSectionUpdated(p SectionPayload) DomainEvent {
	return newEvent(SectionUpdated, CategorySection, p.FormID, fmt.Sprintf("Updated section %q", p.Section.Title), p)
}

func NewSectionRemoved(p SectionPayload) DomainEvent {
	return newEvent(SectionRemoved, CategorySection, p.FormID, fmt.Sprintf("Removed section %q", p.Section.Title), p)
}

func NewSectionsReordered(p ReorderPayload) DomainEvent {
	return newEvent(SectionsReordered, CategorySection, p.FormID, fmt.Sprintf("Moved section from position %d to %d", p.From+1, p.To+1), p)
}

// StylingPayload carries the form styling after the change.
type StylingPayload struct {
	FormID  string            `json:"form_id"`
	Styling types.FormStyling `json:"form_styling"`
}

func NewFormStylingChanged(p StylingPayload) DomainEvent {
	return newEvent(FormStylingChanged, CategoryForm, p.FormID, "Changed form styling", p)
}

// ForCommand maps an applied editor command to its event. before is the
// schema the command ran against and after the schema it produced; removals
// are described from before. It reports false when the command changed
// nothing.
func ForCommand(formID string, cmd editor.Command, out editor.Outcome, before, after types.Schema) (DomainEvent, bool) {
	if !out.Changed {
		return DomainEvent{}, false
	}
	fieldAfter := func() types.Field {
		if out.Field != nil {
			return *out.Field
		}
		f, _ := after.FieldByID(cmd.ID)
		return f
	}
	sectionIn := func(s types.Schema) types.Section {
		if out.Section != nil {
			return *out.Section
		}
		sec, _ := s.SectionByID(cmd.ID)
		return sec
	}
	fieldOrder := func() []string {
		ids := make([]string, len(after.Fields))
		for i, f := range after.Fields {
			ids[i] = f.ID
		}
		return ids
	}
	sectionOrder := func() []string {
		ids := make([]string, len(after.Sections))
		for i, s := range after.Sections {
			ids[i] = s.ID
		}
		return ids
	}

	switch cmd.Op {
	case editor.OpAddField:
		return NewFieldAdded(FieldPayload{FormID: formID, Field: fieldAfter()}), true
	case editor.OpUpdateField, editor.OpAddOption, editor.OpUpdateOption, editor.OpRemoveOption:
		return NewFieldUpdated(FieldPayload{FormID: formID, Field: fieldAfter()}), true
	case editor.OpRemoveField:
		f, _ := before.FieldByID(cmd.ID)
		return NewFieldRemoved(FieldPayload{FormID: formID, Field: f}), true
	case editor.OpDuplicateField:
		return NewFieldDuplicated(FieldPayload{FormID: formID, Field: fieldAfter(), SourceID: cmd.ID}), true
	case editor.OpReorder:
		return NewFieldsReordered(ReorderPayload{FormID: formID, From: cmd.From, To: cmd.To, Order: fieldOrder()}), true
	case editor.OpAddSection:
		return NewSectionAdded(SectionPayload{FormID: formID, Section: sectionIn(after)}), true
	case editor.OpUpdateSection:
		return NewSectionUpdated(SectionPayload{FormID: formID, Section: sectionIn(after)}), true
	case editor.OpRemoveSection:
		return NewSectionRemoved(SectionPayload{FormID: formID, Section: sectionIn(before)}), true
	case editor.OpReorderSections:
		return NewSectionsReordered(ReorderPayload{FormID: formID, From: cmd.From, To: cmd.To, Order: sectionOrder()}), true
	case editor.OpUpdateFormStyling:
		return NewFormStylingChanged(StylingPayload{FormID: formID, Styling: after.Styling}), true
	}
	return DomainEvent{}, false
}
