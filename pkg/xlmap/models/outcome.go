package models

// Category is the closed set of extraction failure kinds.
type Category string

const (
	// CategoryMissingSheet means the declared sheet is not in the workbook.
	CategoryMissingSheet Category = "missing_sheet"
	// CategoryInvalidCellAddress means the declared address cannot be parsed.
	CategoryInvalidCellAddress Category = "invalid_cell_address"
	// CategoryFormulaError means the cell holds a formula error sentinel.
	CategoryFormulaError Category = "formula_error"
	// CategoryTypeMismatch means the raw value is neither numeric nor text.
	CategoryTypeMismatch Category = "type_mismatch"
	// CategoryFileUnreadable means the workbook could not be opened or read.
	CategoryFileUnreadable Category = "file_unreadable"
	// CategoryMalformedMapping is raised by the mapping loader only.
	CategoryMalformedMapping Category = "malformed_mapping"
)

// Categories lists every category in reporting order.
var Categories = []Category{
	CategoryMissingSheet,
	CategoryInvalidCellAddress,
	CategoryFormulaError,
	CategoryTypeMismatch,
	CategoryFileUnreadable,
	CategoryMalformedMapping,
}

// Value is a successful extraction. Both fields are nil for a blank cell.
type Value struct {
	// Raw is the value as read from the workbook.
	Raw any `json:"raw"`
	// Normalized is a float64 or a string.
	Normalized any `json:"normalized"`
}

// IsBlank reports whether the value is the empty extraction.
func (v Value) IsBlank() bool {
	return v.Raw == nil && v.Normalized == nil
}

// Failure is a typed extraction failure.
type Failure struct {
	Category     Category `json:"category"`
	Message      string   `json:"message"`
	SuggestedFix *string  `json:"suggested_fix"`
	// SheetName and CellAddress echo the spec that failed.
	SheetName   string `json:"sheet_name"`
	CellAddress string `json:"cell_address"`
}

// Fix returns the suggested fix or "" when none exists.
func (f Failure) Fix() string {
	if f.SuggestedFix == nil {
		return ""
	}
	return *f.SuggestedFix
}

// Outcome is the result for one (field, file) pair. Exactly one of Value
// and Failure is non-nil.
type Outcome struct {
	Value   *Value   `json:"value,omitempty"`
	Failure *Failure `json:"failure,omitempty"`
}

// Succeeded returns an Outcome holding a value.
func Succeeded(raw, normalized any) Outcome {
	return Outcome{Value: &Value{Raw: raw, Normalized: normalized}}
}

// Blank returns the successful empty Outcome.
func Blank() Outcome {
	return Outcome{Value: &Value{}}
}

// Failed returns an Outcome holding a failure.
func Failed(f Failure) Outcome {
	return Outcome{Failure: &f}
}

// OK reports whether the outcome is a value.
func (o Outcome) OK() bool {
	return o.Value != nil
}

// StringPtr is a helper for optional string fields.
func StringPtr(s string) *string {
	return &s
}
