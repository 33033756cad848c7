package lint

import (
	"fmt"
	"regexp"

	"github.com/matthewbaird/commonapply/internal/logic"
	"github.com/matthewbaird/commonapply/internal/types"
)

// Structure runs the cross-field checks on a decoded schema.
func Structure(s types.Schema) []Issue {
	var issues []Issue
	add := func(sev Severity, code, path, fieldID, format string, args ...any) {
		issues = append(issues, Issue{
			Severity: sev,
			Code:     code,
			Path:     path,
			FieldID:  fieldID,
			Message:  fmt.Sprintf(format, args...),
		})
	}

	sections := make(map[string]bool, len(s.Sections))
	for i, sec := range s.Sections {
		if sections[sec.ID] {
			add(SeverityError, CodeDuplicateSection, fmt.Sprintf("sections.%d.id", i), "", "section id %q is used more than once", sec.ID)
		}
		sections[sec.ID] = true
	}

	ids := make(map[string]bool, len(s.Fields))
	for i, f := range s.Fields {
		if ids[f.ID] {
			add(SeverityError, CodeDuplicateID, fmt.Sprintf("fields.%d.id", i), f.ID, "field id %q is used more than once", f.ID)
		}
		ids[f.ID] = true
	}

	for i, f := range s.Fields {
		at := func(suffix string) string { return fmt.Sprintf("fields.%d.%s", i, suffix) }

		if !f.Type.Valid() {
			add(SeverityError, CodeUnknownType, at("type"), f.ID, "unknown field type %q", f.Type)
			continue
		}
		switch {
		case f.Type.HasOptions() && len(f.Options) == 0:
			add(SeverityError, CodeMissingOptions, at("options"), f.ID, "%s field needs at least one option", f.Type)
		case !f.Type.HasOptions() && len(f.Options) > 0:
			add(SeverityWarning, CodeStrayOptions, at("options"), f.ID, "options on a %s field are ignored", f.Type)
		}
		if f.Type.IsLayout() && f.Required {
			add(SeverityWarning, CodeLayoutRequired, at("required"), f.ID, "%s fields cannot be required", f.Type)
		}
		if f.Section != "" && !sections[f.Section] {
			add(SeverityWarning, CodeDanglingSection, at("section"), f.ID, "section %q does not exist", f.Section)
		}
		issues = append(issues, checkValidation(f, at)...)

		for r, rule := range f.ConditionalLogic {
			rp := fmt.Sprintf("conditionalLogic.%d", r)
			switch rule.Action {
			case types.ActionShow, types.ActionHide, types.ActionRequire:
			default:
				add(SeverityWarning, CodeUnknownAction, at(rp+".action"), f.ID, "unknown action %q never applies", rule.Action)
			}
			switch rule.Logic {
			case "", types.LogicAnd, types.LogicOr:
			default:
				add(SeverityWarning, CodeUnknownLogic, at(rp+".logic"), f.ID, "unknown logic %q is treated as and", rule.Logic)
			}
			if len(rule.Conditions) == 0 {
				add(SeverityWarning, CodeEmptyConditions, at(rp+".conditions"), f.ID, "rule has no conditions and never fires")
			}
			for c, cond := range rule.Conditions {
				cp := fmt.Sprintf("%s.conditions.%d", rp, c)
				switch {
				case cond.Field == f.ID:
					add(SeverityWarning, CodeSelfReference, at(cp+".field"), f.ID, "condition refers to its own field")
				case !ids[cond.Field]:
					add(SeverityWarning, CodeDanglingField, at(cp+".field"), f.ID, "condition refers to unknown field %q and never holds", cond.Field)
				}
				if _, ok := logic.LookupOperator(cond.Operator); !ok {
					add(SeverityWarning, CodeUnknownOperator, at(cp+".operator"), f.ID, "unknown operator %q always evaluates false", cond.Operator)
				}
			}
		}
	}
	return issues
}

func checkValidation(f types.Field, at func(string) string) []Issue {
	v := f.Validation
	if v.IsZero() {
		return nil
	}
	var issues []Issue
	add := func(sev Severity, code, path, format string, args ...any) {
		issues = append(issues, Issue{Severity: sev, Code: code, Path: at(path), FieldID: f.ID, Message: fmt.Sprintf(format, args...)})
	}

	if v.Pattern != "" {
		if _, err := regexp.Compile(v.Pattern); err != nil {
			add(SeverityError, CodeInvalidPattern, "validation.pattern", "pattern does not compile: %v", err)
		}
	}
	if v.MinLength != nil && v.MaxLength != nil && *v.MinLength > *v.MaxLength {
		add(SeverityError, CodeBoundsOrder, "validation", "minLength %d exceeds maxLength %d", *v.MinLength, *v.MaxLength)
	}
	if v.Min != nil && v.Max != nil && *v.Min > *v.Max {
		add(SeverityError, CodeBoundsOrder, "validation", "min %g exceeds max %g", *v.Min, *v.Max)
	}
	if (v.MinLength != nil || v.MaxLength != nil) && !f.Type.HasLengthBounds() {
		add(SeverityWarning, CodeIgnoredBounds, "validation", "length bounds are ignored on %s fields", f.Type)
	}
	if (v.Min != nil || v.Max != nil) && !f.Type.HasNumericBounds() {
		add(SeverityWarning, CodeIgnoredBounds, "validation", "numeric bounds are ignored on %s fields", f.Type)
	}
	return issues
}
