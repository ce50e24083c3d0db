// Package models defines data structures for mapping-driven extraction.
package models

import "fmt"

// Coordinate is a zero-based (row, column) position inside a sheet.
type Coordinate struct {
	// Row is the row index (0-based).
	Row int `json:"row"`
	// Col is the column index (0-based).
	Col int `json:"col"`
}

func (c Coordinate) String() string {
	return fmt.Sprintf("(%d,%d)", c.Row, c.Col)
}
