package types

// Width is the horizontal share of the form row a field occupies.
type Width string

const (
	WidthFull    Width = "full"
	WidthHalf    Width = "half"
	WidthThird   Width = "third"
	WidthQuarter Width = "quarter"
)

// Alignment positions a field's content.
type Alignment string

const (
	AlignLeft   Alignment = "left"
	AlignCenter Alignment = "center"
	AlignRight  Alignment = "right"
)

// Layout is the form-level column arrangement.
type Layout string

const (
	LayoutSingle      Layout = "single"
	LayoutTwoColumn   Layout = "two-column"
	LayoutThreeColumn Layout = "three-column"
)

// FieldStyling is per-field presentation metadata. Every attribute is
// optional; an empty width means full and an empty alignment means left.
type FieldStyling struct {
	Width      Width      `json:"width,omitempty" yaml:"width,omitempty"`
	Alignment  Alignment  `json:"alignment,omitempty" yaml:"alignment,omitempty"`
	LabelStyle LabelStyle `json:"labelStyle,omitzero" yaml:"labelStyle,omitempty"`
	FieldStyle FieldStyle `json:"fieldStyle,omitzero" yaml:"fieldStyle,omitempty"`
}

// LabelStyle decorates a field label. Nil flags mean "not set".
type LabelStyle struct {
	Bold      *bool  `json:"bold,omitempty" yaml:"bold,omitempty"`
	Italic    *bool  `json:"italic,omitempty" yaml:"italic,omitempty"`
	Underline *bool  `json:"underline,omitempty" yaml:"underline,omitempty"`
	Color     string `json:"color,omitempty" yaml:"color,omitempty"`
}

// FieldStyle decorates the input control itself.
type FieldStyle struct {
	BackgroundColor string `json:"backgroundColor,omitempty" yaml:"backgroundColor,omitempty"`
	BorderColor     string `json:"borderColor,omitempty" yaml:"borderColor,omitempty"`
	BorderRadius    string `json:"borderRadius,omitempty" yaml:"borderRadius,omitempty"`
}

// DefaultFieldStyling is the styling a freshly added field gets.
func DefaultFieldStyling() FieldStyling {
	return FieldStyling{Width: WidthFull, Alignment: AlignLeft}
}

// EffectiveWidth resolves an unset width to full.
func (s FieldStyling) EffectiveWidth() Width {
	switch s.Width {
	case WidthHalf, WidthThird, WidthQuarter:
		return s.Width
	}
	return WidthFull
}

// EffectiveAlignment resolves an unset alignment to left.
func (s FieldStyling) EffectiveAlignment() Alignment {
	switch s.Alignment {
	case AlignCenter, AlignRight:
		return s.Alignment
	}
	return AlignLeft
}

// Clone deep-copies the label flags.
func (s FieldStyling) Clone() FieldStyling {
	out := s
	out.LabelStyle.Bold = clonePtr(s.LabelStyle.Bold)
	out.LabelStyle.Italic = clonePtr(s.LabelStyle.Italic)
	out.LabelStyle.Underline = clonePtr(s.LabelStyle.Underline)
	return out
}

// Flag is a convenience for building *bool style flags.
func Flag(b bool) *bool { return &b }

// IsSet reports whether a style flag is present and true.
func IsSet(b *bool) bool { return b != nil && *b }

// FormStyling applies to the whole schema.
type FormStyling struct {
	PrimaryColor    string `json:"primaryColor,omitempty" yaml:"primaryColor,omitempty"`
	BackgroundColor string `json:"backgroundColor,omitempty" yaml:"backgroundColor,omitempty"`
	FontFamily      string `json:"fontFamily,omitempty" yaml:"fontFamily,omitempty"`
	Layout          Layout `json:"layout,omitempty" yaml:"layout,omitempty"`
}

// Columns maps the layout onto a column count; anything unknown is single.
func (s FormStyling) Columns() int {
	switch s.Layout {
	case LayoutTwoColumn:
		return 2
	case LayoutThreeColumn:
		return 3
	}
	return 1
}

// SectionStyling decorates a section container.
type SectionStyling struct {
	BackgroundColor string `json:"backgroundColor,omitempty" yaml:"backgroundColor,omitempty"`
	BorderColor     string `json:"borderColor,omitempty" yaml:"borderColor,omitempty"`
	TitleColor      string `json:"titleColor,omitempty" yaml:"titleColor,omitempty"`
}
