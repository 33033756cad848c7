package lint

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matthewbaird/commonapply/internal/types"
)

func codes(issues []Issue) []string {
	out := make([]string, 0, len(issues))
	for _, is := range issues {
		out = append(out, is.Code)
	}
	return out
}

func find(issues []Issue, code string) (Issue, bool) {
	for _, is := range issues {
		if is.Code == code {
			return is, true
		}
	}
	return Issue{}, false
}

const goodDoc = `{
  "fields": [
    {"id": "name", "type": "text", "label": "Name", "required": true,
     "validation": {"minLength": 2, "maxLength": 40}},
    {"id": "program", "type": "select", "label": "Program", "options": ["BSc", "MSc"], "section": "acad"},
    {"id": "thesis", "type": "textarea", "label": "Thesis",
     "conditionalLogic": [{"action": "show", "logic": "and",
       "conditions": [{"field": "program", "operator": "equals", "value": "MSc"}]}],
     "styling": {"width": "half", "labelStyle": {"bold": true}}}
  ],
  "sections": [{"id": "acad", "title": "Academics", "collapsible": true}],
  "formStyling": {"layout": "two-column", "primaryColor": "#336699"}
}`

func TestCheckAcceptsWellFormedSchema(t *testing.T) {
	r := Check([]byte(goodDoc))
	assert.True(t, r.Valid, "issues: %v", r.Issues)
	assert.Empty(t, r.Issues)
}

func TestCheckAcceptsMarshalledSchema(t *testing.T) {
	s := types.Schema{Fields: []types.Field{
		{ID: "a", Type: types.FieldText, Label: "A", Styling: types.DefaultFieldStyling()},
		{ID: "b", Type: types.FieldRadio, Label: "B", Options: []string{"x"}},
	}}
	raw, err := json.Marshal(s)
	require.NoError(t, err)

	r := Check(raw)
	assert.True(t, r.Valid, "issues: %v", r.Issues)
}

func TestCheckRejectsInvalidJSON(t *testing.T) {
	r := Check([]byte(`{"fields": [`))
	assert.False(t, r.Valid)
	assert.Equal(t, []string{CodeInvalidJSON}, codes(r.Issues))
}

func TestCheckShapeErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"unknown top-level key", `{"fields": [], "theme": "dark"}`},
		{"unknown field key", `{"fields": [{"id": "a", "type": "text", "label": "A", "colour": "red"}]}`},
		{"missing id", `{"fields": [{"type": "text", "label": "A"}]}`},
		{"bad width", `{"fields": [{"id": "a", "type": "text", "label": "A", "styling": {"width": "huge"}}]}`},
		{"bad layout", `{"fields": [], "formStyling": {"layout": "grid"}}`},
		{"negative length", `{"fields": [{"id": "a", "type": "text", "label": "A", "validation": {"minLength": -1}}]}`},
		{"wrong required type", `{"fields": [{"id": "a", "type": "text", "label": "A", "required": "yes"}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Check([]byte(tt.doc))
			assert.False(t, r.Valid)
			_, ok := find(r.Issues, CodeShape)
			assert.True(t, ok, "issues: %v", r.Issues)
		})
	}
}

func TestStructureErrors(t *testing.T) {
	minLen, maxLen := 10, 2
	lo, hi := 5.0, 1.0
	s := types.Schema{
		Fields: []types.Field{
			{ID: "a", Type: types.FieldText, Label: "A"},
			{ID: "a", Type: types.FieldText, Label: "A again"},
			{ID: "w", Type: "widget", Label: "W"},
			{ID: "s", Type: types.FieldSelect, Label: "S"},
			{ID: "p", Type: types.FieldText, Label: "P", Validation: &types.Validation{Pattern: "("}},
			{ID: "l", Type: types.FieldText, Label: "L", Validation: &types.Validation{MinLength: &minLen, MaxLength: &maxLen}},
			{ID: "n", Type: types.FieldNumber, Label: "N", Validation: &types.Validation{Min: &lo, Max: &hi}},
			{ID: "r", Type: types.FieldText, Label: "R", ConditionalLogic: []types.Rule{{
				Action: types.ActionShow, Logic: types.LogicAnd,
				Conditions: []types.Condition{{Field: "ghost", Operator: types.OpEquals, Value: "x"}},
			}}},
		},
		Sections: []types.Section{{ID: "x", Title: "X"}, {ID: "x", Title: "X again"}},
	}

	issues := Structure(s)
	for _, code := range []string{
		CodeDuplicateID, CodeDuplicateSection, CodeUnknownType, CodeMissingOptions,
		CodeInvalidPattern, CodeBoundsOrder,
	} {
		is, ok := find(issues, code)
		if assert.True(t, ok, "missing %s in %v", code, codes(issues)) {
			assert.Equal(t, SeverityError, is.Severity, code)
		}
	}

	dup, _ := find(issues, CodeDuplicateID)
	assert.Equal(t, "fields.1.id", dup.Path)
	dangling, ok := find(issues, CodeDanglingField)
	require.True(t, ok)
	assert.Equal(t, SeverityWarning, dangling.Severity, "a deleted condition target leaves a legal schema")
	assert.Equal(t, "fields.7.conditionalLogic.0.conditions.0.field", dangling.Path)
	assert.Equal(t, "r", dangling.FieldID)
}

func TestStructureWarnings(t *testing.T) {
	lower := 3
	s := types.Schema{
		Fields: []types.Field{
			{ID: "a", Type: types.FieldText, Label: "A", Section: "nowhere", Options: []string{"stray"}},
			{ID: "h", Type: types.FieldHeading, Label: "H", Required: true},
			{ID: "n", Type: types.FieldNumber, Label: "N", Validation: &types.Validation{MinLength: &lower}},
			{ID: "b", Type: types.FieldText, Label: "B", ConditionalLogic: []types.Rule{
				{Action: "blink", Logic: "xor", Conditions: []types.Condition{{Field: "a", Operator: "resembles"}}},
				{Action: types.ActionHide, Conditions: nil},
				{Action: types.ActionRequire, Conditions: []types.Condition{{Field: "b", Operator: types.OpIsEmpty}}},
			}},
		},
	}

	issues := Structure(s)
	for _, code := range []string{
		CodeDanglingSection, CodeStrayOptions, CodeLayoutRequired, CodeIgnoredBounds,
		CodeUnknownAction, CodeUnknownLogic, CodeUnknownOperator, CodeEmptyConditions, CodeSelfReference,
	} {
		is, ok := find(issues, code)
		if assert.True(t, ok, "missing %s in %v", code, codes(issues)) {
			assert.Equal(t, SeverityWarning, is.Severity, code)
		}
	}

	r := newResult(issues)
	assert.True(t, r.Valid, "warnings alone keep a schema valid")
	assert.Empty(t, r.Errors())
}

func TestStructureEmptyLogicIsAccepted(t *testing.T) {
	s := types.Schema{Fields: []types.Field{
		{ID: "a", Type: types.FieldText, Label: "A"},
		{ID: "b", Type: types.FieldText, Label: "B", ConditionalLogic: []types.Rule{{
			Action:     types.ActionShow,
			Conditions: []types.Condition{{Field: "a", Operator: types.OpIsNotEmpty}},
		}}},
	}}
	assert.Empty(t, Structure(s))
}

func TestCheckRunsStructureAfterShape(t *testing.T) {
	doc := `{"fields": [
	  {"id": "a", "type": "text", "label": "A"},
	  {"id": "a", "type": "radio", "label": "B", "options": ["x"]}
	]}`
	r := Check([]byte(doc))
	assert.False(t, r.Valid)
	assert.Equal(t, []string{CodeDuplicateID}, codes(r.Issues))
}

func TestIssueString(t *testing.T) {
	is := Issue{Severity: SeverityError, Code: CodeDuplicateID, Path: "fields.1.id", Message: "dup"}
	assert.Equal(t, "error fields.1.id: dup [duplicate_id]", is.String())
	assert.Contains(t, Issue{Severity: SeverityWarning, Code: "x", Message: "m"}.String(), "(document)")
}
