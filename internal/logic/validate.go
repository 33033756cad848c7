package logic

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/matthewbaird/commonapply/internal/types"
)

// Issue codes reported by ValidateAnswers.
const (
	CodeRequired  = "required"
	CodeTooShort  = "too_short"
	CodeTooLong   = "too_long"
	CodeBelowMin  = "below_min"
	CodeAboveMax  = "above_max"
	CodeNotNumber = "not_number"
	CodePattern   = "pattern"
	CodeEmail     = "email"
	CodePhone     = "phone"
	CodeChoice    = "invalid_choice"
)

// Issue is one validation failure tied to a field.
type Issue struct {
	FieldID string `json:"field_id"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

var phonePattern = regexp.MustCompile(`^\+?[0-9 ()\-.]{6,20}$`)

// ValidateAnswers checks every visible input field against its effective
// required flag and its validation bounds. Hidden and layout fields are
// skipped. An invalid pattern in the schema is ignored rather than reported
// against the user's answer.
func ValidateAnswers(fields []types.Field, answers Answers) []Issue {
	var issues []Issue
	for _, f := range fields {
		if !f.TakesInput() {
			continue
		}
		res := Evaluate(f, answers)
		if !res.Visible {
			continue
		}
		answer := answers[f.ID]
		if isEmpty(answer) {
			if res.Required {
				issues = append(issues, Issue{f.ID, CodeRequired, fmt.Sprintf("%s is required", labelOf(f))})
			}
			continue
		}
		issues = append(issues, validateValue(f, answer)...)
	}
	return issues
}

func validateValue(f types.Field, answer any) []Issue {
	var issues []Issue
	add := func(code, format string, args ...any) {
		issues = append(issues, Issue{FieldID: f.ID, Code: code, Message: fmt.Sprintf(format, args...)})
	}
	name := labelOf(f)
	v := f.Validation

	switch {
	case f.Type.HasNumericBounds():
		n, ok := toFloat(answer)
		if !ok {
			add(CodeNotNumber, "%s must be a number", name)
			return issues
		}
		if v != nil && v.Min != nil && n < *v.Min {
			add(CodeBelowMin, "%s must be at least %s", name, toString(*v.Min))
		}
		if v != nil && v.Max != nil && n > *v.Max {
			add(CodeAboveMax, "%s must be at most %s", name, toString(*v.Max))
		}
	case f.Type.HasLengthBounds():
		length := utf8.RuneCountInString(toString(answer))
		if v != nil && v.MinLength != nil && length < *v.MinLength {
			add(CodeTooShort, "%s must be at least %d characters", name, *v.MinLength)
		}
		if v != nil && v.MaxLength != nil && length > *v.MaxLength {
			add(CodeTooLong, "%s must be at most %d characters", name, *v.MaxLength)
		}
	case f.Type == types.FieldEmail:
		if _, err := mail.ParseAddress(toString(answer)); err != nil {
			add(CodeEmail, "%s must be a valid email address", name)
		}
	case f.Type == types.FieldPhone:
		if !phonePattern.MatchString(strings.TrimSpace(toString(answer))) {
			add(CodePhone, "%s must be a valid phone number", name)
		}
	case f.Type.HasOptions():
		if !validChoice(f, answer) {
			add(CodeChoice, "%s has a value that is not one of its options", name)
		}
	}

	if v != nil && v.Pattern != "" && !f.Type.HasOptions() {
		if re, err := regexp.Compile(v.Pattern); err == nil && !re.MatchString(toString(answer)) {
			add(CodePattern, "%s has an invalid format", name)
		}
	}
	return issues
}

func validChoice(f types.Field, answer any) bool {
	if list, ok := asList(answer); ok {
		for _, item := range list {
			if !hasOption(f.Options, toString(item)) {
				return false
			}
		}
		return true
	}
	return hasOption(f.Options, toString(answer))
}

func hasOption(options []string, v string) bool {
	for _, o := range options {
		if o == v {
			return true
		}
	}
	return false
}

func labelOf(f types.Field) string {
	if f.Label != "" {
		return f.Label
	}
	return f.ID
}
