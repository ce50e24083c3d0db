package parser

import (
	"io"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/ukaji3/xlmap-go/pkg/xlmap/models"
	"github.com/xuri/excelize/v2"
)

// BlankMarkers are text values read as an empty cell.
var BlankMarkers = []string{"n/a", "na", "null", "none", "-", "tbd", "tba"}

// numericPattern matches integers, decimals and scientific notation.
var numericPattern = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// excelWorkbook adapts an excelize file to models.Workbook.
type excelWorkbook struct {
	f        *excelize.File
	sheets   []string
	date1904 bool
}

// OpenFile opens an xlsx/xlsm/xltx/xltm workbook from disk.
func OpenFile(path string) (models.Workbook, error) {
	f, err := excelize.OpenFile(path, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, errors.Wrapf(err, "open workbook %s", path)
	}
	return newExcelWorkbook(f), nil
}

// OpenReader opens a workbook from a byte stream.
func OpenReader(r io.Reader) (models.Workbook, error) {
	f, err := excelize.OpenReader(r, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, errors.Wrap(err, "open workbook stream")
	}
	return newExcelWorkbook(f), nil
}

func newExcelWorkbook(f *excelize.File) *excelWorkbook {
	w := &excelWorkbook{f: f, sheets: f.GetSheetList()}
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		w.date1904 = *props.Date1904
	}
	return w
}

func (w *excelWorkbook) SheetNames() []string {
	return w.sheets
}

// Cell reads the cached value of a cell. Numbers come back as float64,
// date-formatted numbers as time.Time, booleans as bool, formula errors and
// text as string.
func (w *excelWorkbook) Cell(sheet string, at models.Coordinate) (any, error) {
	name, err := CellName(at)
	if err != nil {
		return nil, err
	}

	cellType, err := w.f.GetCellType(sheet, name)
	if err != nil {
		return nil, errors.Wrapf(err, "read type of %s!%s", sheet, name)
	}
	value, err := w.f.GetCellValue(sheet, name)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s!%s", sheet, name)
	}
	if value == "" {
		return nil, nil
	}

	switch cellType {
	case excelize.CellTypeBool:
		return value == "1" || strings.EqualFold(value, "true"), nil
	case excelize.CellTypeNumber, excelize.CellTypeUnset:
		f, ok := parseNumber(value)
		if !ok {
			return value, nil
		}
		if w.isDateCell(sheet, name) {
			if t, err := excelize.ExcelDateToTime(f, w.date1904); err == nil {
				return t, nil
			}
		}
		return f, nil
	case excelize.CellTypeDate:
		for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"} {
			if t, err := time.Parse(layout, value); err == nil {
				return t, nil
			}
		}
		return value, nil
	default:
		// Shared and inline strings, cached formula strings and error
		// sentinels are returned verbatim.
		return value, nil
	}
}

// isDateCell reports whether the cell's number format renders a date or time.
func (w *excelWorkbook) isDateCell(sheet, cell string) bool {
	idx, err := w.f.GetCellStyle(sheet, cell)
	if err != nil || idx == 0 {
		return false
	}
	style, err := w.f.GetStyle(idx)
	if err != nil || style == nil {
		return false
	}
	if style.CustomNumFmt != nil {
		return IsDateFormat(*style.CustomNumFmt)
	}
	return isBuiltInDateFormat(style.NumFmt)
}

func (w *excelWorkbook) Close() error {
	return w.f.Close()
}

// Normalize coerces a raw cell value to a float64 or a trimmed string.
// Blank values and blank markers yield (nil, true). Values that are neither
// numeric nor text yield (nil, false).
func Normalize(raw any, blankMarkers []string) (any, bool) {
	switch v := raw.(type) {
	case nil:
		return nil, true
	case string:
		return normalizeText(v, blankMarkers), true
	case float64:
		return normalizeFloat(v), true
	case float32:
		return normalizeFloat(float64(v)), true
	case int:
		return float64(v), true
	case int8:
		return float64(v), true
	case int16:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint8:
		return float64(v), true
	case uint16:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	case bool:
		if v {
			return "TRUE", true
		}
		return "FALSE", true
	case time.Time:
		return v.Format(time.RFC3339), true
	default:
		return nil, false
	}
}

func normalizeFloat(f float64) any {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return f
}

func normalizeText(s string, blankMarkers []string) any {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	lower := strings.ToLower(s)
	for _, m := range blankMarkers {
		if lower == m {
			return nil
		}
	}
	if f, ok := parseNumber(s); ok {
		return f
	}
	return s
}

// parseNumber parses plain decimal text. Words such as "NaN" or "Inf" that
// strconv would accept are left as text.
func parseNumber(s string) (float64, bool) {
	if !numericPattern.MatchString(s) {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
