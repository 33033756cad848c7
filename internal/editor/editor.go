// Package editor holds the mutable state of a form being designed and the
// operations that change it. Every operation is total: unknown ids and out of
// range indices leave the state untouched and fire no callback.
//
// An Editor is not safe for concurrent use. Callers serialize access, one
// editor per design session.
package editor

import (
	"fmt"
	"reflect"
	"slices"

	"github.com/google/uuid"

	"github.com/matthewbaird/commonapply/internal/patch"
	"github.com/matthewbaird/commonapply/internal/types"
)

// CopySuffix is appended to the label of a duplicated field.
const CopySuffix = " (Copy)"

// maxIDAttempts bounds retries against a generator that keeps colliding.
const maxIDAttempts = 8

// Callbacks are notified with fresh copies after a mutation. Any of them
// may be nil.
type Callbacks struct {
	OnFieldsChange      func([]types.Field)
	OnSectionsChange    func([]types.Section)
	OnFormStylingChange func(types.FormStyling)
}

// Option configures an Editor.
type Option func(*Editor)

// WithIDGenerator replaces the default uuid generator.
func WithIDGenerator(gen func() string) Option {
	return func(e *Editor) {
		if gen != nil {
			e.newID = gen
		}
	}
}

// WithCallbacks registers change callbacks.
func WithCallbacks(cb Callbacks) Option {
	return func(e *Editor) { e.cb = cb }
}

// Editor owns the ordered field list, the ordered section list and the form
// styling of one schema.
type Editor struct {
	fields   []types.Field
	sections []types.Section
	styling  types.FormStyling
	newID    func() string
	cb       Callbacks
}

// New creates an editor over a normalized copy of schema.
func New(schema types.Schema, opts ...Option) *Editor {
	s := schema.Normalize()
	e := &Editor{
		fields:   s.Fields,
		sections: s.Sections,
		styling:  s.Styling,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Schema returns a deep copy of the current triple.
func (e *Editor) Schema() types.Schema {
	return types.Schema{Fields: e.fields, Sections: e.sections, Styling: e.styling}.Clone()
}

// Fields returns a deep copy of the field list.
func (e *Editor) Fields() []types.Field { return types.CloneFields(e.fields) }

// Sections returns a copy of the section list.
func (e *Editor) Sections() []types.Section { return slices.Clone(e.sections) }

// FormStyling returns the form-level styling.
func (e *Editor) FormStyling() types.FormStyling { return e.styling }

// Field returns a copy of the field with the given id.
func (e *Editor) Field(id string) (types.Field, bool) {
	if i := e.fieldIndex(id); i >= 0 {
		return e.fields[i].Clone(), true
	}
	return types.Field{}, false
}

// AddField appends a new field of type t with default label, styling and,
// for choice types, the two default options. An unknown type adds nothing
// and returns the zero Field.
func (e *Editor) AddField(t types.FieldType) types.Field {
	if !t.Valid() {
		return types.Field{}
	}
	f := types.Field{
		ID:      e.nextID(),
		Type:    t,
		Label:   defaultLabel(t),
		Styling: types.DefaultFieldStyling(),
	}.Normalize()
	e.fields = append(slices.Clone(e.fields), f)
	e.fieldsChanged()
	return f.Clone()
}

func defaultLabel(t types.FieldType) string {
	if t == types.FieldSection {
		return "New Section"
	}
	return fmt.Sprintf("New %s field", t)
}

// UpdateField replaces the attributes named by p on the field with the given
// id. It reports whether the field changed.
func (e *Editor) UpdateField(id string, p FieldPatch) bool {
	i := e.fieldIndex(id)
	if i < 0 {
		return false
	}
	next := p.apply(e.fields[i])
	if reflect.DeepEqual(next, e.fields[i]) {
		return false
	}
	fields := slices.Clone(e.fields)
	fields[i] = next
	e.fields = fields
	e.fieldsChanged()
	return true
}

// RemoveField deletes the field with the given id.
func (e *Editor) RemoveField(id string) bool {
	i := e.fieldIndex(id)
	if i < 0 {
		return false
	}
	e.fields = slices.Delete(slices.Clone(e.fields), i, i+1)
	e.fieldsChanged()
	return true
}

// DuplicateField appends a deep copy of the field with a new id and the
// copy suffix on its label.
func (e *Editor) DuplicateField(id string) (types.Field, bool) {
	i := e.fieldIndex(id)
	if i < 0 {
		return types.Field{}, false
	}
	dup := e.fields[i].Clone()
	dup.ID = e.nextID()
	dup.Label += CopySuffix
	e.fields = append(slices.Clone(e.fields), dup)
	e.fieldsChanged()
	return dup.Clone(), true
}

// Reorder moves the field at src to dst, shifting the fields in between.
func (e *Editor) Reorder(src, dst int) bool {
	next, ok := move(e.fields, src, dst)
	if !ok {
		return false
	}
	e.fields = next
	e.fieldsChanged()
	return true
}

// AddOption appends "Option N" to a choice field.
func (e *Editor) AddOption(id string) bool {
	f, ok := e.choiceField(id)
	if !ok {
		return false
	}
	opts := append(slices.Clone(f.Options), fmt.Sprintf("Option %d", len(f.Options)+1))
	return e.UpdateField(id, FieldPatch{Options: &opts})
}

// UpdateOption replaces the option at index.
func (e *Editor) UpdateOption(id string, index int, value string) bool {
	f, ok := e.choiceField(id)
	if !ok || index < 0 || index >= len(f.Options) {
		return false
	}
	opts := slices.Clone(f.Options)
	opts[index] = value
	return e.UpdateField(id, FieldPatch{Options: &opts})
}

// RemoveOption deletes the option at index. The last remaining option is
// kept so a choice field never ends up without choices.
func (e *Editor) RemoveOption(id string, index int) bool {
	f, ok := e.choiceField(id)
	if !ok || index < 0 || index >= len(f.Options) || len(f.Options) <= 1 {
		return false
	}
	opts := slices.Delete(slices.Clone(f.Options), index, index+1)
	return e.UpdateField(id, FieldPatch{Options: &opts})
}

func (e *Editor) choiceField(id string) (types.Field, bool) {
	i := e.fieldIndex(id)
	if i < 0 || !e.fields[i].Type.HasOptions() {
		return types.Field{}, false
	}
	return e.fields[i], true
}

// AddSection appends a section titled "New Section".
func (e *Editor) AddSection() types.Section {
	s := types.Section{ID: e.nextID(), Title: "New Section"}
	e.sections = append(slices.Clone(e.sections), s)
	e.sectionsChanged()
	return s
}

// UpdateSection replaces the attributes named by p on the section.
func (e *Editor) UpdateSection(id string, p SectionPatch) bool {
	i := e.sectionIndex(id)
	if i < 0 {
		return false
	}
	next := p.apply(e.sections[i])
	if next == e.sections[i] {
		return false
	}
	sections := slices.Clone(e.sections)
	sections[i] = next
	e.sections = sections
	e.sectionsChanged()
	return true
}

// RemoveSection deletes the section. Fields that pointed at it keep their
// reference and render ungrouped.
func (e *Editor) RemoveSection(id string) bool {
	i := e.sectionIndex(id)
	if i < 0 {
		return false
	}
	e.sections = slices.Delete(slices.Clone(e.sections), i, i+1)
	e.sectionsChanged()
	return true
}

// ReorderSections moves the section at src to dst.
func (e *Editor) ReorderSections(src, dst int) bool {
	next, ok := move(e.sections, src, dst)
	if !ok {
		return false
	}
	e.sections = next
	e.sectionsChanged()
	return true
}

// UpdateFormStyling merges p into the form styling. Empty attributes of p
// keep the current value.
func (e *Editor) UpdateFormStyling(p FormStylingPatch) bool {
	next := patch.Merge(e.styling, types.FormStyling(p))
	if next == e.styling {
		return false
	}
	e.styling = next
	if e.cb.OnFormStylingChange != nil {
		e.cb.OnFormStylingChange(e.styling)
	}
	return true
}

func (e *Editor) fieldsChanged() {
	if e.cb.OnFieldsChange != nil {
		e.cb.OnFieldsChange(types.CloneFields(e.fields))
	}
}

func (e *Editor) sectionsChanged() {
	if e.cb.OnSectionsChange != nil {
		e.cb.OnSectionsChange(slices.Clone(e.sections))
	}
}

func (e *Editor) fieldIndex(id string) int {
	return slices.IndexFunc(e.fields, func(f types.Field) bool { return f.ID == id })
}

func (e *Editor) sectionIndex(id string) int {
	return slices.IndexFunc(e.sections, func(s types.Section) bool { return s.ID == id })
}

// nextID returns an id not used by any field or section. A generator that
// keeps colliding falls back to uuid.
func (e *Editor) nextID() string {
	for range maxIDAttempts {
		id := e.newID()
		if id != "" && e.fieldIndex(id) < 0 && e.sectionIndex(id) < 0 {
			return id
		}
	}
	return uuid.NewString()
}

func move[T any](list []T, src, dst int) ([]T, bool) {
	n := len(list)
	if src == dst || src < 0 || dst < 0 || src >= n || dst >= n {
		return nil, false
	}
	out := slices.Clone(list)
	item := out[src]
	out = slices.Delete(out, src, src+1)
	out = slices.Insert(out, dst, item)
	return out, true
}
