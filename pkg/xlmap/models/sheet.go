package models

// SheetInfo describes a sheet of an inspected workbook.
type SheetInfo struct {
	// Name is the sheet name.
	Name string `json:"name"`
	// UsedRange is the bounding range of non-empty cells (e.g. "A1:D10").
	// Empty for a blank sheet.
	UsedRange string `json:"used_range,omitempty"`
	// NonEmptyCells is the number of populated cells inside UsedRange.
	NonEmptyCells int `json:"non_empty_cells"`
}
