package editor

import (
	"slices"

	"github.com/matthewbaird/commonapply/internal/patch"
	"github.com/matthewbaird/commonapply/internal/types"
)

// FieldPatch names the attributes an update replaces. Nil members are left
// alone. Styling is merged rather than replaced, so a patch carrying only
// labelStyle.italic keeps every other decoration.
type FieldPatch struct {
	Type             *types.FieldType    `json:"type,omitempty"`
	Label            *string             `json:"label,omitempty"`
	Placeholder      *string             `json:"placeholder,omitempty"`
	HelpText         *string             `json:"helpText,omitempty"`
	DefaultValue     *string             `json:"defaultValue,omitempty"`
	Required         *bool               `json:"required,omitempty"`
	Options          *[]string           `json:"options,omitempty"`
	Validation       *types.Validation   `json:"validation,omitempty"`
	ConditionalLogic *[]types.Rule       `json:"conditionalLogic,omitempty"`
	Styling          *types.FieldStyling `json:"styling,omitempty"`
	Section          *string             `json:"section,omitempty"`
}

// IsZero reports whether the patch names no attribute.
func (p FieldPatch) IsZero() bool {
	return p == FieldPatch{}
}

// apply returns a new field; f is not modified. An unknown type is ignored.
// A validation value with no bounds clears validation.
func (p FieldPatch) apply(f types.Field) types.Field {
	out := f.Clone()
	if p.Type != nil && p.Type.Valid() {
		out.Type = *p.Type
	}
	setIf(&out.Label, p.Label)
	setIf(&out.Placeholder, p.Placeholder)
	setIf(&out.HelpText, p.HelpText)
	setIf(&out.DefaultValue, p.DefaultValue)
	setIf(&out.Required, p.Required)
	setIf(&out.Section, p.Section)
	if p.Options != nil {
		out.Options = slices.Clone(*p.Options)
	}
	if p.Validation != nil {
		if p.Validation.IsZero() {
			out.Validation = nil
		} else {
			out.Validation = p.Validation.Clone()
		}
	}
	if p.ConditionalLogic != nil {
		out.ConditionalLogic = nil
		for _, r := range *p.ConditionalLogic {
			out.ConditionalLogic = append(out.ConditionalLogic, r.Clone())
		}
	}
	if p.Styling != nil {
		out.Styling = patch.Merge(out.Styling, p.Styling.Clone())
	}
	return out.Normalize()
}

// SectionPatch names the section attributes an update replaces. Styling is
// merged.
type SectionPatch struct {
	Title       *string               `json:"title,omitempty"`
	Description *string               `json:"description,omitempty"`
	Collapsible *bool                 `json:"collapsible,omitempty"`
	Styling     *types.SectionStyling `json:"styling,omitempty"`
}

func (p SectionPatch) apply(s types.Section) types.Section {
	setIf(&s.Title, p.Title)
	setIf(&s.Description, p.Description)
	setIf(&s.Collapsible, p.Collapsible)
	if p.Styling != nil {
		s.Styling = patch.Merge(s.Styling, *p.Styling)
	}
	return s
}

// FormStylingPatch carries the form styling attributes to change. Empty
// attributes keep their current value.
type FormStylingPatch types.FormStyling

func setIf[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}
