package models

// FieldSpec is one row of the mapping: where a named field lives.
type FieldSpec struct {
	// Category is the grouping label.
	Category string `json:"category" yaml:"category"`
	// FieldName is the unique key of the field, stable across files.
	FieldName string `json:"field_name" yaml:"field_name"`
	// SheetName is the declared target sheet.
	SheetName string `json:"sheet_name" yaml:"sheet_name"`
	// CellAddress is the declared address, possibly with $ markers.
	CellAddress string `json:"cell_address" yaml:"cell_address"`
	// ExpectedValue is an optional validation hint.
	ExpectedValue string `json:"expected_value,omitempty" yaml:"expected_value,omitempty"`
	// Row is the 1-based position of the spec in its source table.
	Row int `json:"row,omitempty" yaml:"-"`
}

// Ref renders the spec's location as Sheet!Address.
func (s FieldSpec) Ref() string {
	return s.SheetName + "!" + s.CellAddress
}

// MappingSet is the ordered, validated collection of field specs for a run.
// It is read-only once loaded and safe to share between workers.
type MappingSet struct {
	// Source labels where the mapping came from (file path or "reader").
	Source string `json:"source"`
	// Fields holds the specs in source order.
	Fields []FieldSpec `json:"fields"`
	// Duplicates holds rows dropped because their field name was already taken.
	Duplicates []FieldSpec `json:"duplicates,omitempty"`

	index map[string]int
}

// NewMappingSet builds a MappingSet. The caller guarantees unique field names.
func NewMappingSet(source string, fields []FieldSpec, duplicates []FieldSpec) *MappingSet {
	index := make(map[string]int, len(fields))
	for i, f := range fields {
		index[f.FieldName] = i
	}
	return &MappingSet{
		Source:     source,
		Fields:     fields,
		Duplicates: duplicates,
		index:      index,
	}
}

// Len returns the number of fields.
func (m *MappingSet) Len() int {
	if m == nil {
		return 0
	}
	return len(m.Fields)
}

// Lookup returns the spec for a field name.
func (m *MappingSet) Lookup(fieldName string) (FieldSpec, bool) {
	if m == nil {
		return FieldSpec{}, false
	}
	i, ok := m.index[fieldName]
	if !ok {
		return FieldSpec{}, false
	}
	return m.Fields[i], true
}

// Categories returns the distinct categories in first-seen order.
func (m *MappingSet) Categories() []string {
	if m == nil {
		return nil
	}
	seen := make(map[string]struct{})
	var out []string
	for _, f := range m.Fields {
		if _, ok := seen[f.Category]; ok {
			continue
		}
		seen[f.Category] = struct{}{}
		out = append(out, f.Category)
	}
	return out
}
