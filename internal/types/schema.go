package types

// Section is a named visual grouping of fields. Its lifecycle is independent
// of the fields that point at it.
type Section struct {
	ID          string         `json:"id" yaml:"id"`
	Title       string         `json:"title" yaml:"title"`
	Description string         `json:"description,omitempty" yaml:"description,omitempty"`
	Collapsible bool           `json:"collapsible" yaml:"collapsible"`
	Styling     SectionStyling `json:"styling,omitzero" yaml:"styling,omitempty"`
}

// Schema is the (fields, sections, form styling) triple describing one form.
type Schema struct {
	Fields   []Field     `json:"fields" yaml:"fields"`
	Sections []Section   `json:"sections" yaml:"sections"`
	Styling  FormStyling `json:"formStyling,omitzero" yaml:"formStyling,omitempty"`
}

// Clone deep-copies the whole schema.
func (s Schema) Clone() Schema {
	out := Schema{Styling: s.Styling}
	out.Fields = CloneFields(s.Fields)
	if s.Sections != nil {
		out.Sections = make([]Section, len(s.Sections))
		copy(out.Sections, s.Sections)
	}
	return out
}

// Normalize restores the per-field invariants and replaces nil collections
// with empty ones so the schema always encodes as arrays.
func (s Schema) Normalize() Schema {
	out := s.Clone()
	if out.Fields == nil {
		out.Fields = []Field{}
	}
	if out.Sections == nil {
		out.Sections = []Section{}
	}
	for i := range out.Fields {
		out.Fields[i] = out.Fields[i].Normalize()
	}
	return out
}

// FieldIndex returns the position of the field with the given id, or -1.
func (s Schema) FieldIndex(id string) int {
	for i, f := range s.Fields {
		if f.ID == id {
			return i
		}
	}
	return -1
}

// FieldByID looks a field up by id.
func (s Schema) FieldByID(id string) (Field, bool) {
	if i := s.FieldIndex(id); i >= 0 {
		return s.Fields[i], true
	}
	return Field{}, false
}

// SectionByID looks a section up by id.
func (s Schema) SectionByID(id string) (Section, bool) {
	for _, sec := range s.Sections {
		if sec.ID == id {
			return sec, true
		}
	}
	return Section{}, false
}

// CloneFields deep-copies a field list, preserving nil.
func CloneFields(fields []Field) []Field {
	if fields == nil {
		return nil
	}
	out := make([]Field, len(fields))
	for i, f := range fields {
		out[i] = f.Clone()
	}
	return out
}
