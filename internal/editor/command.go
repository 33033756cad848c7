package editor

import (
	"fmt"

	"github.com/matthewbaird/commonapply/internal/types"
)

// Op names an editor operation carried in a Command.
type Op string

const (
	OpAddField          Op = "add_field"
	OpUpdateField       Op = "update_field"
	OpRemoveField       Op = "remove_field"
	OpDuplicateField    Op = "duplicate_field"
	OpReorder           Op = "reorder"
	OpAddOption         Op = "add_option"
	OpUpdateOption      Op = "update_option"
	OpRemoveOption      Op = "remove_option"
	OpAddSection        Op = "add_section"
	OpUpdateSection     Op = "update_section"
	OpRemoveSection     Op = "remove_section"
	OpReorderSections   Op = "reorder_sections"
	OpUpdateFormStyling Op = "update_form_styling"
)

// Command is the serialized form of one editor operation. Only the members
// the operation needs are read.
type Command struct {
	Op          Op                `json:"op"`
	FieldType   types.FieldType   `json:"fieldType,omitempty"`
	ID          string            `json:"id,omitempty"`
	From        int               `json:"from,omitempty"`
	To          int               `json:"to,omitempty"`
	Index       int               `json:"index,omitempty"`
	Value       string            `json:"value,omitempty"`
	Field       *FieldPatch       `json:"field,omitempty"`
	Section     *SectionPatch     `json:"section,omitempty"`
	FormStyling *FormStylingPatch `json:"formStyling,omitempty"`
}

// Outcome reports what a command did.
type Outcome struct {
	Op      Op             `json:"op"`
	Changed bool           `json:"changed"`
	Field   *types.Field   `json:"field,omitempty"`
	Section *types.Section `json:"section,omitempty"`
}

// Apply runs cmd against the editor. Only an unknown op or a malformed
// command is an error; operations on unknown ids report Changed=false.
func (e *Editor) Apply(cmd Command) (Outcome, error) {
	out := Outcome{Op: cmd.Op}
	switch cmd.Op {
	case OpAddField:
		if !cmd.FieldType.Valid() {
			return out, fmt.Errorf("unknown field type %q", cmd.FieldType)
		}
		f := e.AddField(cmd.FieldType)
		out.Field, out.Changed = &f, true
	case OpUpdateField:
		if cmd.Field == nil {
			return out, fmt.Errorf("%s: missing field patch", cmd.Op)
		}
		out.Changed = e.UpdateField(cmd.ID, *cmd.Field)
	case OpRemoveField:
		out.Changed = e.RemoveField(cmd.ID)
	case OpDuplicateField:
		if f, ok := e.DuplicateField(cmd.ID); ok {
			out.Field, out.Changed = &f, true
		}
	case OpReorder:
		out.Changed = e.Reorder(cmd.From, cmd.To)
	case OpAddOption:
		out.Changed = e.AddOption(cmd.ID)
	case OpUpdateOption:
		out.Changed = e.UpdateOption(cmd.ID, cmd.Index, cmd.Value)
	case OpRemoveOption:
		out.Changed = e.RemoveOption(cmd.ID, cmd.Index)
	case OpAddSection:
		s := e.AddSection()
		out.Section, out.Changed = &s, true
	case OpUpdateSection:
		if cmd.Section == nil {
			return out, fmt.Errorf("%s: missing section patch", cmd.Op)
		}
		out.Changed = e.UpdateSection(cmd.ID, *cmd.Section)
	case OpRemoveSection:
		out.Changed = e.RemoveSection(cmd.ID)
	case OpReorderSections:
		out.Changed = e.ReorderSections(cmd.From, cmd.To)
	case OpUpdateFormStyling:
		if cmd.FormStyling == nil {
			return out, fmt.Errorf("%s: missing form styling", cmd.Op)
		}
		out.Changed = e.UpdateFormStyling(*cmd.FormStyling)
	default:
		return out, fmt.Errorf("unknown editor op %q", cmd.Op)
	}
	if out.Field != nil {
		return out, nil
	}
	if cmd.ID != "" && out.Changed {
		if f, ok := e.Field(cmd.ID); ok {
			out.Field = &f
		}
	}
	return out, nil
}
