package types

// Category groups field types in the designer palette.
type Category string

const (
	CategoryBasic    Category = "basic"
	CategoryChoice   Category = "choice"
	CategoryAdvanced Category = "advanced"
	CategoryLayout   Category = "layout"
)

// CatalogEntry is the display metadata of one field type.
type CatalogEntry struct {
	Type     FieldType `json:"type"`
	Label    string    `json:"label"`
	Icon     string    `json:"icon"`
	Category Category  `json:"category"`
}

// catalog is a configuration table. Adding a type here also needs the
// options/validation branches on FieldType kept in step.
var catalog = []CatalogEntry{
	{FieldText, "Text Input", "type", CategoryBasic},
	{FieldEmail, "Email", "mail", CategoryBasic},
	{FieldNumber, "Number", "hash", CategoryBasic},
	{FieldDate, "Date", "calendar", CategoryBasic},
	{FieldTextarea, "Text Area", "align-left", CategoryBasic},
	{FieldSelect, "Dropdown", "chevron-down", CategoryChoice},
	{FieldRadio, "Radio Buttons", "circle-dot", CategoryChoice},
	{FieldCheckbox, "Checkboxes", "check-square", CategoryChoice},
	{FieldFile, "File Upload", "upload", CategoryAdvanced},
	{FieldPhone, "Phone", "phone", CategoryAdvanced},
	{FieldAddress, "Address", "map-pin", CategoryAdvanced},
	{FieldSection, "Section", "layout", CategoryLayout},
	{FieldHeading, "Heading", "heading", CategoryLayout},
	{FieldParagraph, "Paragraph", "file-text", CategoryLayout},
}

// Catalog returns a copy of the field-type catalog.
func Catalog() []CatalogEntry {
	out := make([]CatalogEntry, len(catalog))
	copy(out, catalog)
	return out
}

// LookupType returns the catalog entry for t.
func LookupType(t FieldType) (CatalogEntry, bool) {
	for _, e := range catalog {
		if e.Type == t {
			return e, true
		}
	}
	return CatalogEntry{}, false
}
