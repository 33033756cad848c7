package render

import (
	"errors"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/matthewbaird/commonapply/internal/logic"
	"github.com/matthewbaird/commonapply/internal/types"
)

// FillState holds the values bound to an interactive fill form.
type FillState struct {
	fields []types.Field
	single map[string]*string
	multi  map[string]*[]string
}

// Answers returns the current answers keyed by field id. Checkbox answers
// are lists, everything else a string.
func (s *FillState) Answers() logic.Answers {
	out := make(logic.Answers, len(s.single)+len(s.multi))
	for id, v := range s.single {
		out[id] = *v
	}
	for id, v := range s.multi {
		list := make([]any, len(*v))
		for i, item := range *v {
			list[i] = item
		}
		out[id] = list
	}
	return out
}

// visible re-runs the evaluator for f against the answers entered so far.
func (s *FillState) visible(f types.Field) bool {
	return logic.Evaluate(f, s.Answers()).Visible
}

// title carries the required marker whenever the field is effectively
// required for the answers entered so far.
func (s *FillState) title(f types.Field) string {
	if f.TakesInput() && logic.Evaluate(f, s.Answers()).Required {
		return f.Label + " *"
	}
	return f.Label
}

// check validates a candidate value for f in the context of every other
// answer, so rule-driven required-ness is honoured.
func (s *FillState) check(f types.Field, candidate any) error {
	answers := s.Answers()
	answers[f.ID] = candidate
	if issues := logic.ValidateAnswers([]types.Field{f}, answers); len(issues) > 0 {
		return errors.New(issues[0].Message)
	}
	return nil
}

// Fill builds an interactive terminal form for schema, prefilled from
// initial. Each field sits in its own group so that the group's hide func
// can re-run the evaluator between steps.
func Fill(schema types.Schema, initial map[string]any) (*huh.Form, *FillState) {
	state := &FillState{
		fields: types.CloneFields(schema.Fields),
		single: map[string]*string{},
		multi:  map[string]*[]string{},
	}
	snapshot := logic.Snapshot(schema.Fields, initial)

	groups := make([]*huh.Group, 0, len(state.fields))
	for _, f := range state.fields {
		field := state.bind(f, snapshot[f.ID])
		g := huh.NewGroup(field).WithHideFunc(func() bool { return !state.visible(f) })
		if sec, ok := schema.SectionByID(f.Section); ok && f.Section != "" {
			g = g.Title(sec.Title)
			if sec.Description != "" {
				g = g.Description(sec.Description)
			}
		}
		groups = append(groups, g)
	}
	if len(groups) == 0 {
		groups = append(groups, huh.NewGroup(huh.NewNote().Title("This form has no fields")))
	}
	return huh.NewForm(groups...).WithShowHelp(true), state
}

func (s *FillState) bind(f types.Field, answer any) huh.Field {
	title := func() string { return s.title(f) }
	bindings := []any{s.single, s.multi}
	switch {
	case f.Type == types.FieldParagraph:
		return huh.NewNote().Description(paragraphText(f))
	case f.Type.IsLayout():
		return huh.NewNote().Title(f.Label).Description(f.HelpText)
	case f.Type.HasOptions() && len(f.Options) == 0:
		return huh.NewNote().TitleFunc(title, bindings).Description("No choices available")
	case f.Type == types.FieldCheckbox:
		val := answerList(answer)
		s.multi[f.ID] = &val
		return huh.NewMultiSelect[string]().
			TitleFunc(title, bindings).
			Description(f.HelpText).
			Options(huh.NewOptions(f.Options...)...).
			Value(&val).
			Validate(func(v []string) error { return s.check(f, toAnyList(v)) })
	case f.Type.HasOptions():
		val := answerText(answer)
		s.single[f.ID] = &val
		return huh.NewSelect[string]().
			TitleFunc(title, bindings).
			Description(f.HelpText).
			Options(huh.NewOptions(f.Options...)...).
			Value(&val).
			Validate(func(v string) error { return s.check(f, v) })
	case f.Type == types.FieldTextarea || f.Type == types.FieldAddress:
		val := answerText(answer)
		s.single[f.ID] = &val
		return huh.NewText().
			TitleFunc(title, bindings).
			Description(f.HelpText).
			Placeholder(f.Placeholder).
			Value(&val).
			Validate(func(v string) error { return s.check(f, v) })
	default:
		val := answerText(answer)
		s.single[f.ID] = &val
		return huh.NewInput().
			TitleFunc(title, bindings).
			Description(f.HelpText).
			Placeholder(strings.TrimSpace(f.Placeholder)).
			Value(&val).
			Validate(func(v string) error { return s.check(f, v) })
	}
}

func toAnyList(v []string) []any {
	out := make([]any, len(v))
	for i, s := range v {
		out[i] = s
	}
	return out
}
