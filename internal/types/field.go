package types

import "slices"

// Field is the atomic element of a form: an input, a choice control or a
// layout marker. Options is only populated for choice types; Normalize
// enforces that.
type Field struct {
	ID               string       `json:"id" yaml:"id"`
	Type             FieldType    `json:"type" yaml:"type"`
	Label            string       `json:"label" yaml:"label"`
	Placeholder      string       `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
	HelpText         string       `json:"helpText,omitempty" yaml:"helpText,omitempty"`
	DefaultValue     string       `json:"defaultValue,omitempty" yaml:"defaultValue,omitempty"`
	Required         bool         `json:"required" yaml:"required"`
	Options          []string     `json:"options,omitempty" yaml:"options,omitempty"`
	Validation       *Validation  `json:"validation,omitempty" yaml:"validation,omitempty"`
	ConditionalLogic []Rule       `json:"conditionalLogic,omitempty" yaml:"conditionalLogic,omitempty"`
	Styling          FieldStyling `json:"styling,omitzero" yaml:"styling,omitempty"`
	Section          string       `json:"section,omitempty" yaml:"section,omitempty"` // non-owning section id
}

// Validation holds optional bounds. Length bounds apply to text and textarea,
// numeric bounds to number; pattern applies to any input field.
type Validation struct {
	MinLength *int     `json:"minLength,omitempty" yaml:"minLength,omitempty"`
	MaxLength *int     `json:"maxLength,omitempty" yaml:"maxLength,omitempty"`
	Pattern   string   `json:"pattern,omitempty" yaml:"pattern,omitempty"`
	Min       *float64 `json:"min,omitempty" yaml:"min,omitempty"`
	Max       *float64 `json:"max,omitempty" yaml:"max,omitempty"`
}

// IsZero reports whether no bound is set.
func (v *Validation) IsZero() bool {
	return v == nil || (v.MinLength == nil && v.MaxLength == nil && v.Pattern == "" && v.Min == nil && v.Max == nil)
}

// Clone deep-copies the bounds.
func (v *Validation) Clone() *Validation {
	if v == nil {
		return nil
	}
	out := &Validation{Pattern: v.Pattern}
	out.MinLength = clonePtr(v.MinLength)
	out.MaxLength = clonePtr(v.MaxLength)
	out.Min = clonePtr(v.Min)
	out.Max = clonePtr(v.Max)
	return out
}

// Clone returns a deep copy of f that shares no slices or pointers with it.
func (f Field) Clone() Field {
	out := f
	out.Options = slices.Clone(f.Options)
	out.Validation = f.Validation.Clone()
	if f.ConditionalLogic != nil {
		out.ConditionalLogic = make([]Rule, len(f.ConditionalLogic))
		for i, r := range f.ConditionalLogic {
			out.ConditionalLogic[i] = r.Clone()
		}
	}
	out.Styling = f.Styling.Clone()
	return out
}

// Normalize returns f with the type invariants restored: choice fields get
// the default options when theirs are missing, other fields drop options, and
// layout fields lose required and validation.
func (f Field) Normalize() Field {
	if f.Type.HasOptions() {
		if len(f.Options) == 0 {
			f.Options = DefaultOptions()
		}
	} else {
		f.Options = nil
	}
	if f.Type.IsLayout() {
		f.Required = false
		f.Validation = nil
	}
	return f
}

// TakesInput reports whether the field collects an answer.
func (f Field) TakesInput() bool {
	return !f.Type.IsLayout()
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
