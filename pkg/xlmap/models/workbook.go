package models

// Workbook is an opened spreadsheet container.
//
// Implementations are owned by a single worker and are not required to be
// safe for concurrent use.
type Workbook interface {
	// SheetNames returns the sheet names in workbook order.
	SheetNames() []string
	// Cell returns the raw value stored at the zero-based coordinate of a
	// sheet. A missing or blank cell yields (nil, nil). Formula error
	// sentinels are returned as their literal text (e.g. "#DIV/0!").
	Cell(sheet string, at Coordinate) (any, error)
	// Close releases resources held by the workbook.
	Close() error
}
