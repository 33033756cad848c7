package render

import (
	"slices"

	"github.com/matthewbaird/commonapply/internal/logic"
	"github.com/matthewbaird/commonapply/internal/types"
)

// FieldView is one field as the person filling the form sees it.
type FieldView struct {
	ID          string           `json:"id"`
	Type        types.FieldType  `json:"type"`
	Input       InputKind        `json:"input"`
	Label       string           `json:"label,omitempty"`
	ShowLabel   bool             `json:"showLabel"`
	Placeholder string           `json:"placeholder,omitempty"`
	HelpText    string           `json:"helpText,omitempty"`
	Body        string           `json:"body,omitempty"` // paragraph content
	Visible     bool             `json:"visible"`
	Required    bool             `json:"required"`
	Span        int              `json:"span"`
	Alignment   types.Alignment  `json:"alignment"`
	LabelStyle  types.LabelStyle `json:"labelStyle,omitzero"`
	FieldStyle  types.FieldStyle `json:"fieldStyle,omitzero"`
	Choices     []string         `json:"choices,omitempty"`
	Value       string           `json:"value"`
	Selected    []string         `json:"selected,omitempty"`
	Issues      []logic.Issue    `json:"issues,omitempty"`
}

// IsSelected reports whether choice is part of the current answer.
func (v FieldView) IsSelected(choice string) bool {
	if v.Input == InputCheckbox {
		return slices.Contains(v.Selected, choice)
	}
	return v.Value == choice
}

// SectionView groups the fields of one section. The ungrouped group has an
// empty ID and title.
type SectionView struct {
	ID          string               `json:"id,omitempty"`
	Title       string               `json:"title,omitempty"`
	Description string               `json:"description,omitempty"`
	Collapsible bool                 `json:"collapsible"`
	Styling     types.SectionStyling `json:"styling,omitzero"`
	Columns     int                  `json:"columns"`
	Fields      []FieldView          `json:"fields"`
}

// Ungrouped reports whether this is the group of fields without a section.
func (s SectionView) Ungrouped() bool { return s.ID == "" }

// VisibleFields returns the fields currently shown.
func (s SectionView) VisibleFields() []FieldView {
	out := make([]FieldView, 0, len(s.Fields))
	for _, f := range s.Fields {
		if f.Visible {
			out = append(out, f)
		}
	}
	return out
}

// PreviewView is the fill-time rendering of a schema against answers.
type PreviewView struct {
	Styling  types.FormStyling       `json:"formStyling"`
	Columns  int                     `json:"columns"`
	Sections []SectionView           `json:"sections"`
	Results  map[string]logic.Result `json:"results"`
	Issues   []logic.Issue           `json:"issues,omitempty"`
}

// PreviewOption configures Preview.
type PreviewOption func(*previewConfig)

type previewConfig struct {
	validate bool
}

// WithValidation attaches answer validation issues to the view.
func WithValidation() PreviewOption {
	return func(c *previewConfig) { c.validate = true }
}

// Preview evaluates every field against answers and lays the form out.
// Fields whose section is missing or dangling go to the ungrouped group,
// which comes first when it has any fields.
func Preview(schema types.Schema, answers map[string]any, opts ...PreviewOption) PreviewView {
	var cfg previewConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	snapshot := logic.Snapshot(schema.Fields, answers)
	results := logic.EvaluateAll(schema.Fields, snapshot)

	issuesByField := map[string][]logic.Issue{}
	var issues []logic.Issue
	if cfg.validate {
		issues = logic.ValidateAnswers(schema.Fields, snapshot)
		for _, is := range issues {
			issuesByField[is.FieldID] = append(issuesByField[is.FieldID], is)
		}
	}

	columns := schema.Styling.Columns()
	known := make(map[string]int, len(schema.Sections))
	groups := make([]SectionView, len(schema.Sections))
	for i, s := range schema.Sections {
		known[s.ID] = i
		groups[i] = SectionView{
			ID:          s.ID,
			Title:       s.Title,
			Description: s.Description,
			Collapsible: s.Collapsible,
			Styling:     s.Styling,
			Columns:     columns,
			Fields:      []FieldView{},
		}
	}
	ungrouped := SectionView{Columns: columns, Fields: []FieldView{}}

	for _, f := range schema.Fields {
		fv := fieldView(f, results[f.ID], snapshot[f.ID])
		fv.Issues = issuesByField[f.ID]
		if i, ok := known[f.Section]; ok && f.Section != "" {
			groups[i].Fields = append(groups[i].Fields, fv)
		} else {
			ungrouped.Fields = append(ungrouped.Fields, fv)
		}
	}

	view := PreviewView{
		Styling: schema.Styling,
		Columns: columns,
		Results: results,
		Issues:  issues,
	}
	if len(ungrouped.Fields) > 0 {
		view.Sections = append(view.Sections, ungrouped)
	}
	view.Sections = append(view.Sections, groups...)
	return view
}

func fieldView(f types.Field, res logic.Result, answer any) FieldView {
	fv := FieldView{
		ID:          f.ID,
		Type:        f.Type,
		Input:       KindOf(f.Type),
		Label:       f.Label,
		ShowLabel:   f.TakesInput(),
		Placeholder: f.Placeholder,
		HelpText:    f.HelpText,
		Visible:     res.Visible,
		Required:    res.Required && f.TakesInput(),
		Span:        Span(f.Styling.EffectiveWidth()),
		Alignment:   f.Styling.EffectiveAlignment(),
		LabelStyle:  f.Styling.LabelStyle,
		FieldStyle:  f.Styling.FieldStyle,
	}
	if f.Type == types.FieldParagraph {
		fv.Body = paragraphText(f)
		fv.HelpText = ""
	}
	if f.Type.HasOptions() {
		fv.Choices = append([]string{}, f.Options...)
	}
	if !f.TakesInput() {
		return fv
	}
	if f.Type == types.FieldCheckbox {
		fv.Selected = answerList(answer)
	} else {
		fv.Value = answerText(answer)
	}
	return fv
}
