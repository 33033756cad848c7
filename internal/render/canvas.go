package render

import (
	"fmt"

	"github.com/matthewbaird/commonapply/internal/editor"
	"github.com/matthewbaird/commonapply/internal/types"
)

// Affordance is an action offered on a canvas card.
type Affordance string

const (
	AffordDuplicate Affordance = "duplicate"
	AffordSettings  Affordance = "settings"
	AffordDelete    Affordance = "delete"
)

var cardAffordances = []Affordance{AffordDuplicate, AffordSettings, AffordDelete}

// Card is one field on the design canvas.
type Card struct {
	Index       int                `json:"index"`
	Field       types.Field        `json:"field"`
	Entry       types.CatalogEntry `json:"entry"`
	Input       InputKind          `json:"input"`
	Span        int                `json:"span"`
	Selected    bool               `json:"selected"`
	Draggable   bool               `json:"draggable"`
	Affordances []Affordance       `json:"affordances"`
	Badges      []string           `json:"badges,omitempty"`
	Body        string             `json:"body,omitempty"`    // paragraph content
	Section     string             `json:"section,omitempty"` // title of the owning section, if it exists
}

// ControlKind is the editor widget used for one setting.
type ControlKind string

const (
	ControlText    ControlKind = "text"
	ControlArea    ControlKind = "textarea"
	ControlToggle  ControlKind = "toggle"
	ControlNumber  ControlKind = "number"
	ControlChoice  ControlKind = "choice"
	ControlColor   ControlKind = "color"
	ControlOptions ControlKind = "options"
	ControlRules   ControlKind = "rules"
)

// Control is one editable attribute in the settings panel. Name is the
// attribute path a FieldPatch would carry.
type Control struct {
	Name    string      `json:"name"`
	Label   string      `json:"label"`
	Kind    ControlKind `json:"kind"`
	Value   any         `json:"value,omitempty"`
	Choices []string    `json:"choices,omitempty"`
}

// SettingsPanel lists the controls for the selected field, per tab.
type SettingsPanel struct {
	FieldID  string     `json:"fieldId"`
	Tab      editor.Tab `json:"tab"`
	Basic    []Control  `json:"basic"`
	Style    []Control  `json:"style"`
	Advanced []Control  `json:"advanced"`
}

// Controls returns the controls of the active tab.
func (p *SettingsPanel) Controls() []Control {
	switch p.Tab {
	case editor.TabStyle:
		return p.Style
	case editor.TabAdvanced:
		return p.Advanced
	default:
		return p.Basic
	}
}

// CanvasView is the design-time rendering of a schema.
type CanvasView struct {
	Palette  []types.CatalogEntry `json:"palette"`
	Cards    []Card               `json:"cards"`
	Sections []types.Section      `json:"sections"`
	Styling  types.FormStyling    `json:"formStyling"`
	Columns  int                  `json:"columns"`
	Settings *SettingsPanel       `json:"settings,omitempty"`
}

// Canvas builds the design canvas. The settings panel is present only when
// the selection names an existing field.
func Canvas(schema types.Schema, sel editor.Selection) CanvasView {
	view := CanvasView{
		Palette:  types.Catalog(),
		Cards:    make([]Card, 0, len(schema.Fields)),
		Sections: append([]types.Section(nil), schema.Sections...),
		Styling:  schema.Styling,
		Columns:  schema.Styling.Columns(),
	}
	for i, f := range schema.Fields {
		entry, ok := types.LookupType(f.Type)
		if !ok {
			entry = types.CatalogEntry{Type: f.Type, Label: string(f.Type), Icon: "help-circle"}
		}
		card := Card{
			Index:       i,
			Field:       f.Clone(),
			Entry:       entry,
			Input:       KindOf(f.Type),
			Span:        Span(f.Styling.EffectiveWidth()),
			Selected:    sel.FieldID != "" && sel.FieldID == f.ID,
			Draggable:   true,
			Affordances: cardAffordances,
			Badges:      badges(f),
		}
		if f.Type == types.FieldParagraph {
			card.Body = paragraphText(f)
		}
		if sec, ok := schema.SectionByID(f.Section); ok && f.Section != "" {
			card.Section = sec.Title
		}
		view.Cards = append(view.Cards, card)
		if card.Selected {
			view.Settings = settingsFor(f, schema, sel.Tab)
		}
	}
	return view
}

func badges(f types.Field) []string {
	var out []string
	if f.Required && f.TakesInput() {
		out = append(out, "required")
	}
	if len(f.ConditionalLogic) > 0 {
		out = append(out, fmt.Sprintf("%d rule(s)", len(f.ConditionalLogic)))
	}
	if !f.Validation.IsZero() {
		out = append(out, "validated")
	}
	return out
}

func settingsFor(f types.Field, schema types.Schema, tab editor.Tab) *SettingsPanel {
	if tab == "" {
		tab = editor.TabBasic
	}
	return &SettingsPanel{
		FieldID:  f.ID,
		Tab:      tab,
		Basic:    basicControls(f),
		Style:    styleControls(f),
		Advanced: advancedControls(f, schema),
	}
}

func basicControls(f types.Field) []Control {
	out := []Control{{Name: "label", Label: "Label", Kind: ControlText, Value: f.Label}}
	if f.Type == types.FieldParagraph {
		out = append(out, Control{Name: "helpText", Label: "Content", Kind: ControlArea, Value: f.HelpText})
		return out
	}
	if f.Type.IsLayout() {
		out = append(out, Control{Name: "helpText", Label: "Description", Kind: ControlText, Value: f.HelpText})
		return out
	}
	out = append(out,
		Control{Name: "placeholder", Label: "Placeholder", Kind: ControlText, Value: f.Placeholder},
		Control{Name: "helpText", Label: "Help text", Kind: ControlText, Value: f.HelpText},
		Control{Name: "required", Label: "Required", Kind: ControlToggle, Value: f.Required},
	)
	if f.Type.HasOptions() {
		out = append(out, Control{Name: "options", Label: "Options", Kind: ControlOptions, Value: append([]string(nil), f.Options...)})
	}
	return out
}

func styleControls(f types.Field) []Control {
	s := f.Styling
	return []Control{
		{Name: "styling.width", Label: "Width", Kind: ControlChoice, Value: string(s.EffectiveWidth()),
			Choices: []string{string(types.WidthFull), string(types.WidthHalf), string(types.WidthThird), string(types.WidthQuarter)}},
		{Name: "styling.alignment", Label: "Alignment", Kind: ControlChoice, Value: string(s.EffectiveAlignment()),
			Choices: []string{string(types.AlignLeft), string(types.AlignCenter), string(types.AlignRight)}},
		{Name: "styling.labelStyle.bold", Label: "Bold label", Kind: ControlToggle, Value: types.IsSet(s.LabelStyle.Bold)},
		{Name: "styling.labelStyle.italic", Label: "Italic label", Kind: ControlToggle, Value: types.IsSet(s.LabelStyle.Italic)},
		{Name: "styling.labelStyle.underline", Label: "Underline label", Kind: ControlToggle, Value: types.IsSet(s.LabelStyle.Underline)},
		{Name: "styling.labelStyle.color", Label: "Label color", Kind: ControlColor, Value: s.LabelStyle.Color},
		{Name: "styling.fieldStyle.backgroundColor", Label: "Background", Kind: ControlColor, Value: s.FieldStyle.BackgroundColor},
		{Name: "styling.fieldStyle.borderColor", Label: "Border", Kind: ControlColor, Value: s.FieldStyle.BorderColor},
		{Name: "styling.fieldStyle.borderRadius", Label: "Corner radius", Kind: ControlText, Value: s.FieldStyle.BorderRadius},
	}
}

func advancedControls(f types.Field, schema types.Schema) []Control {
	var out []Control
	v := f.Validation
	if v == nil {
		v = &types.Validation{}
	}
	if f.Type.HasLengthBounds() {
		out = append(out,
			Control{Name: "validation.minLength", Label: "Minimum length", Kind: ControlNumber, Value: derefOr(v.MinLength)},
			Control{Name: "validation.maxLength", Label: "Maximum length", Kind: ControlNumber, Value: derefOr(v.MaxLength)},
		)
	}
	if f.Type.HasNumericBounds() {
		out = append(out,
			Control{Name: "validation.min", Label: "Minimum", Kind: ControlNumber, Value: derefOr(v.Min)},
			Control{Name: "validation.max", Label: "Maximum", Kind: ControlNumber, Value: derefOr(v.Max)},
		)
	}
	if f.TakesInput() && !f.Type.HasOptions() && f.Type != types.FieldFile {
		out = append(out, Control{Name: "validation.pattern", Label: "Pattern", Kind: ControlText, Value: v.Pattern})
	}
	if f.TakesInput() {
		out = append(out, Control{Name: "defaultValue", Label: "Default value", Kind: ControlText, Value: f.DefaultValue})
	}
	sections := []string{""}
	for _, s := range schema.Sections {
		sections = append(sections, s.ID)
	}
	out = append(out,
		Control{Name: "section", Label: "Section", Kind: ControlChoice, Value: f.Section, Choices: sections},
		Control{Name: "conditionalLogic", Label: "Conditional logic", Kind: ControlRules, Value: len(f.ConditionalLogic)},
	)
	return out
}

func derefOr[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}
