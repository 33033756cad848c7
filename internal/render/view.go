// Package render turns a form schema into view models for the two designer
// modes, the editable canvas and the fillable preview, and draws those
// models as HTML, as terminal boxes or as an interactive terminal form.
//
// View models are plain data. Everything about layout is decided here so the
// templates only loop and print.
package render

import (
	"fmt"
	"strings"

	"github.com/matthewbaird/commonapply/internal/types"
)

// GridColumns is the width of the layout grid field spans are measured in.
const GridColumns = 12

// InputKind is the control a field renders as.
type InputKind string

const (
	InputText      InputKind = "text"
	InputEmail     InputKind = "email"
	InputNumber    InputKind = "number"
	InputDate      InputKind = "date"
	InputTel       InputKind = "tel"
	InputFile      InputKind = "file"
	InputTextarea  InputKind = "textarea"
	InputAddress   InputKind = "address"
	InputSelect    InputKind = "select"
	InputRadio     InputKind = "radio"
	InputCheckbox  InputKind = "checkbox"
	InputDivider   InputKind = "divider"
	InputHeading   InputKind = "heading"
	InputParagraph InputKind = "paragraph"
)

var inputKinds = map[types.FieldType]InputKind{
	types.FieldText:      InputText,
	types.FieldEmail:     InputEmail,
	types.FieldNumber:    InputNumber,
	types.FieldDate:      InputDate,
	types.FieldPhone:     InputTel,
	types.FieldFile:      InputFile,
	types.FieldTextarea:  InputTextarea,
	types.FieldAddress:   InputAddress,
	types.FieldSelect:    InputSelect,
	types.FieldRadio:     InputRadio,
	types.FieldCheckbox:  InputCheckbox,
	types.FieldSection:   InputDivider,
	types.FieldHeading:   InputHeading,
	types.FieldParagraph: InputParagraph,
}

// KindOf returns the control for t. Unknown types render as a text input.
func KindOf(t types.FieldType) InputKind {
	if k, ok := inputKinds[t]; ok {
		return k
	}
	return InputText
}

// Span converts a width to grid columns.
func Span(w types.Width) int {
	switch w {
	case types.WidthHalf:
		return 6
	case types.WidthThird:
		return 4
	case types.WidthQuarter:
		return 3
	default:
		return GridColumns
	}
}

// paragraphText is the body of a paragraph field: its help text when set,
// else its label.
func paragraphText(f types.Field) string {
	if strings.TrimSpace(f.HelpText) != "" {
		return f.HelpText
	}
	return f.Label
}

// answerText flattens an answer for display in a single-value control.
func answerText(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case []any, []string:
		return strings.Join(answerList(x), ", ")
	default:
		return fmt.Sprint(x)
	}
}

// answerList reads a multi-value answer. A scalar becomes a single-item list.
func answerList(v any) []string {
	switch x := v.(type) {
	case nil:
		return nil
	case []string:
		return x
	case []any:
		out := make([]string, 0, len(x))
		for _, item := range x {
			if item != nil {
				out = append(out, fmt.Sprint(item))
			}
		}
		return out
	case string:
		if x == "" {
			return nil
		}
		return []string{x}
	default:
		return []string{fmt.Sprint(x)}
	}
}
