package models

import "time"

// ErrorRecord is one failure with the context needed for reporting.
type ErrorRecord struct {
	FileID    string    `json:"file_id,omitempty"`
	FieldName string    `json:"field_name"`
	Failure   Failure   `json:"failure"`
	Timestamp time.Time `json:"timestamp"`
}

// CategoryStat is the share of one category in a report.
type CategoryStat struct {
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// CommonError is a distinct (category, message) pair with its frequency.
type CommonError struct {
	Category     Category  `json:"category"`
	Message      string    `json:"message"`
	Count        int       `json:"count"`
	ExampleField string    `json:"example_field"`
	SuggestedFix *string   `json:"suggested_fix"`
	Timestamp    time.Time `json:"timestamp"`
}

// DetailedError is the flattened per-failure entry of a report.
type DetailedError struct {
	FileID       string    `json:"file_id,omitempty"`
	FieldName    string    `json:"field_name"`
	Category     Category  `json:"category"`
	SheetName    string    `json:"sheet_name"`
	CellAddress  string    `json:"cell_address"`
	ErrorMessage string    `json:"error_message"`
	SuggestedFix *string   `json:"suggested_fix"`
	Timestamp    time.Time `json:"timestamp"`
}

// ErrorReport summarizes the failures of a file or a whole batch.
type ErrorReport struct {
	// TotalErrors is the number of failures covered by the report.
	TotalErrors int `json:"total_errors"`
	// Breakdown maps each present category to its count and percentage.
	Breakdown map[Category]CategoryStat `json:"error_breakdown_by_category"`
	// MostCommon ranks distinct messages by descending count.
	MostCommon []CommonError `json:"most_common_errors"`
	// Recommendations holds one fixed hint per present category.
	Recommendations []string `json:"recommendations"`
	// Detailed lists every failure in input order.
	Detailed []DetailedError `json:"detailed_errors"`
}
