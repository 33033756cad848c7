// Package types defines the dynamic form schema: fields, sections, conditional
// rules and styling metadata. The schema triple (fields, sections, form styling)
// is what gets persisted as JSON and what every editor and renderer operates on.
package types

// FieldType is the closed set of field variants a form can contain.
type FieldType string

const (
	FieldText      FieldType = "text"
	FieldEmail     FieldType = "email"
	FieldNumber    FieldType = "number"
	FieldDate      FieldType = "date"
	FieldTextarea  FieldType = "textarea"
	FieldSelect    FieldType = "select"
	FieldRadio     FieldType = "radio"
	FieldCheckbox  FieldType = "checkbox"
	FieldFile      FieldType = "file"
	FieldPhone     FieldType = "phone"
	FieldAddress   FieldType = "address"
	FieldSection   FieldType = "section"
	FieldHeading   FieldType = "heading"
	FieldParagraph FieldType = "paragraph"
)

// AllFieldTypes lists every field type in catalog order.
var AllFieldTypes = []FieldType{
	FieldText, FieldEmail, FieldNumber, FieldDate, FieldTextarea,
	FieldSelect, FieldRadio, FieldCheckbox,
	FieldFile, FieldPhone, FieldAddress,
	FieldSection, FieldHeading, FieldParagraph,
}

// Valid reports whether t is one of the known field types.
func (t FieldType) Valid() bool {
	for _, known := range AllFieldTypes {
		if t == known {
			return true
		}
	}
	return false
}

// IsLayout reports whether t is a layout-only pseudo-field. Layout fields take
// no input, are never required and are never validated.
func (t FieldType) IsLayout() bool {
	switch t {
	case FieldSection, FieldHeading, FieldParagraph:
		return true
	}
	return false
}

// HasOptions reports whether fields of type t carry a choice list.
func (t FieldType) HasOptions() bool {
	switch t {
	case FieldSelect, FieldRadio, FieldCheckbox:
		return true
	}
	return false
}

// HasLengthBounds reports whether minLength/maxLength apply to t.
func (t FieldType) HasLengthBounds() bool {
	return t == FieldText || t == FieldTextarea
}

// HasNumericBounds reports whether min/max apply to t.
func (t FieldType) HasNumericBounds() bool {
	return t == FieldNumber
}

// DefaultOptions returns the choice list a new choice field starts with.
func DefaultOptions() []string {
	return []string{"Option 1", "Option 2"}
}
