// Package logic evaluates conditional show/hide/require rules against the
// current answers of a form and validates those answers. Everything here is
// pure: no I/O, no caching across calls, and no panics on malformed rules.
package logic

import (
	"github.com/matthewbaird/commonapply/internal/types"
)

// Answers maps field id to the current answer value. A missing key means the
// referenced field does not exist in the schema (for example it was deleted).
type Answers map[string]any

// Result is the effective state of a field for one evaluation pass.
type Result struct {
	Visible  bool `json:"visible"`
	Required bool `json:"required"`
}

// Evaluate computes visibility and required-ness of f against answers.
//
// With no rules the field is visible and keeps its own required flag. Rules
// run in declaration order and every firing rule sets its flag, so the last
// firing rule wins. A rule with no conditions never fires.
func Evaluate(f types.Field, answers Answers) Result {
	res := Result{Visible: true, Required: f.Required}
	for _, rule := range f.ConditionalLogic {
		if !ruleFires(rule, answers) {
			continue
		}
		switch rule.Action {
		case types.ActionShow:
			res.Visible = true
		case types.ActionHide:
			res.Visible = false
		case types.ActionRequire:
			res.Required = true
		}
	}
	if f.Type.IsLayout() {
		res.Required = false
	}
	return res
}

// EvaluateAll runs Evaluate once for every field.
func EvaluateAll(fields []types.Field, answers Answers) map[string]Result {
	out := make(map[string]Result, len(fields))
	for _, f := range fields {
		out[f.ID] = Evaluate(f, answers)
	}
	return out
}

func ruleFires(rule types.Rule, answers Answers) bool {
	if len(rule.Conditions) == 0 {
		return false
	}
	if rule.Logic == types.LogicOr {
		for _, c := range rule.Conditions {
			if conditionHolds(c, answers) {
				return true
			}
		}
		return false
	}
	for _, c := range rule.Conditions {
		if !conditionHolds(c, answers) {
			return false
		}
	}
	return true
}

// conditionHolds fails closed: dangling references and unknown operators are
// false.
func conditionHolds(c types.Condition, answers Answers) bool {
	answer, ok := answers[c.Field]
	if !ok {
		return false
	}
	op, ok := LookupOperator(c.Operator)
	if !ok {
		return false
	}
	return op(answer, c.Value)
}

// Snapshot builds the answer map for a schema. Every input field is present,
// using the supplied raw answer, then the field's default value, then "".
// Layout fields and ids that are not in the schema are left out, so
// conditions pointing at deleted fields stay dangling.
func Snapshot(fields []types.Field, raw map[string]any) Answers {
	out := make(Answers, len(fields))
	for _, f := range fields {
		if !f.TakesInput() {
			continue
		}
		if v, ok := raw[f.ID]; ok {
			out[f.ID] = v
			continue
		}
		out[f.ID] = f.DefaultValue
	}
	return out
}
