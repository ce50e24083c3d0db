// Package parser turns declarative cell references into reads against a
// spreadsheet and normalizes what it finds.
package parser

// Sheet limits of the OOXML format.
const (
	// MaxColumns is the number of columns of a sheet (column XFD).
	MaxColumns = 16384
	// MaxRows is the number of rows of a sheet.
	MaxRows = 1048576
)
