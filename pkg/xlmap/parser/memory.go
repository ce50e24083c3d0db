package parser

import (
	"github.com/cockroachdb/errors"
	"github.com/ukaji3/xlmap-go/pkg/xlmap/models"
)

// ErrSheetNotFound is returned when reading a sheet the workbook lacks.
var ErrSheetNotFound = errors.New("sheet not found")

// MemoryWorkbook is a sparse in-memory workbook. It is useful for callers
// that already hold decoded cell values and for tests.
type MemoryWorkbook struct {
	order  []string
	sheets map[string]map[models.Coordinate]any
	closed bool
}

// NewMemoryWorkbook creates an empty workbook with the given sheets.
func NewMemoryWorkbook(sheets ...string) *MemoryWorkbook {
	w := &MemoryWorkbook{sheets: make(map[string]map[models.Coordinate]any)}
	for _, s := range sheets {
		w.AddSheet(s)
	}
	return w
}

// AddSheet appends a sheet if it does not exist yet.
func (w *MemoryWorkbook) AddSheet(name string) *MemoryWorkbook {
	if _, ok := w.sheets[name]; !ok {
		w.order = append(w.order, name)
		w.sheets[name] = make(map[models.Coordinate]any)
	}
	return w
}

// Set stores a raw value at a zero-based position, creating the sheet when
// needed.
func (w *MemoryWorkbook) Set(sheet string, row, col int, value any) *MemoryWorkbook {
	w.AddSheet(sheet)
	w.sheets[sheet][models.Coordinate{Row: row, Col: col}] = value
	return w
}

// SheetNames returns the sheet names in insertion order.
func (w *MemoryWorkbook) SheetNames() []string {
	return w.order
}

// Cell returns the stored value or nil for an empty position.
func (w *MemoryWorkbook) Cell(sheet string, at models.Coordinate) (any, error) {
	cells, ok := w.sheets[sheet]
	if !ok {
		return nil, errors.Wrapf(ErrSheetNotFound, "%q", sheet)
	}
	return cells[at], nil
}

// Close marks the workbook closed.
func (w *MemoryWorkbook) Close() error {
	w.closed = true
	return nil
}

// Closed reports whether Close was called.
func (w *MemoryWorkbook) Closed() bool {
	return w.closed
}
