// Package mapping loads the declarative field-to-cell mapping of a run.
//
// A mapping is a row-oriented table with the columns category, field_name,
// sheet_name and cell_address, plus an optional expected_value. It can be
// read from CSV, from a sheet of an xlsx workbook, or from YAML. Loading is
// all-or-nothing: any structural problem yields a single *MappingError that
// lists every issue found, wrapped with ErrMalformedMapping.
package mapping

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/ukaji3/xlmap-go/pkg/xlmap/models"
	"github.com/ukaji3/xlmap-go/pkg/xlmap/parser"
	"go.uber.org/zap"
)

// Canonical column names.
const (
	colCategory      = "category"
	colFieldName     = "field_name"
	colSheetName     = "sheet_name"
	colCellAddress   = "cell_address"
	colExpectedValue = "expected_value"
)

var requiredColumns = []string{colCategory, colFieldName, colSheetName, colCellAddress}

// Format is the encoding of a mapping source.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatYAML Format = "yaml"
)

// Options configures loading.
type Options struct {
	// Sheet is the sheet read from an xlsx source (default: first sheet).
	Sheet string
	// CleanNames normalizes field names with CleanFieldName.
	CleanNames bool
	// AllowDuplicates keeps the first occurrence of a repeated field name and
	// reports the rest in MappingSet.Duplicates instead of failing.
	AllowDuplicates bool
	// Logger receives load diagnostics. Nil disables logging.
	Logger *zap.SugaredLogger
}

func (o Options) logger() *zap.SugaredLogger {
	if o.Logger == nil {
		return zap.NewNop().Sugar()
	}
	return o.Logger
}

// table is the raw rows of a source before validation.
type table struct {
	header []string
	rows   [][]string
	// firstLine is the 1-based source line of rows[0].
	firstLine int
	// lines overrides firstLine when rows are not contiguous in the source.
	lines []int
}

func (t *table) line(i int) int {
	if i < len(t.lines) {
		return t.lines[i]
	}
	return t.firstLine + i
}

// FormatFromPath picks the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV, nil
	case ".xlsx", ".xlsm", ".xltx", ".xltm":
		return FormatXLSX, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", errors.Wrapf(ErrMalformedMapping, "unsupported mapping format %q", filepath.Ext(path))
	}
}

// LoadFile loads a mapping from disk, choosing the format by extension.
func LoadFile(path string, opts Options) (*models.MappingSet, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open mapping %s", path)
	}
	defer f.Close()

	return load(f, format, path, opts)
}

// Load loads a mapping from a reader.
func Load(r io.Reader, format Format, opts Options) (*models.MappingSet, error) {
	return load(r, format, "reader", opts)
}

func load(r io.Reader, format Format, source string, opts Options) (*models.MappingSet, error) {
	var (
		t   *table
		err error
	)
	switch format {
	case FormatCSV:
		t, err = readCSV(r)
	case FormatXLSX:
		t, err = readXLSX(r, opts.Sheet)
	case FormatYAML:
		t, err = readYAML(r)
	default:
		return nil, errors.Wrapf(ErrMalformedMapping, "unsupported mapping format %q", format)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "read mapping %s", source)
	}

	set, err := build(t, source, opts)
	if err != nil {
		opts.logger().Errorw("mapping rejected", "source", source, "error", err)
		return nil, err
	}

	opts.logger().Infow("mapping loaded",
		"source", source,
		"fields", set.Len(),
		"categories", len(set.Categories()),
		"duplicates", len(set.Duplicates),
	)
	return set, nil
}

// build validates a raw table into a MappingSet.
func build(t *table, source string, opts Options) (*models.MappingSet, error) {
	columns := make(map[string]int)
	for i, h := range t.header {
		name := canonicalHeader(h)
		if _, taken := columns[name]; !taken {
			columns[name] = i
		}
	}

	var missing []string
	for _, c := range requiredColumns {
		if _, ok := columns[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, newMappingError(source, fmt.Sprintf("missing required columns: %s", strings.Join(missing, ", ")))
	}

	cell := func(row []string, col string) string {
		i, ok := columns[col]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var (
		issues     []string
		fields     []models.FieldSpec
		duplicates []models.FieldSpec
		firstSeen  = make(map[string]int)
	)

	for i, row := range t.rows {
		line := t.line(i)
		if isBlankRow(row) {
			continue
		}

		spec := models.FieldSpec{
			Category:      cell(row, colCategory),
			FieldName:     cell(row, colFieldName),
			SheetName:     cell(row, colSheetName),
			ExpectedValue: cell(row, colExpectedValue),
			Row:           line,
		}
		if opts.CleanNames {
			spec.FieldName = CleanFieldName(spec.FieldName)
		}

		refSheet, address := parser.SplitReference(cell(row, colCellAddress))
		if spec.SheetName == "" {
			spec.SheetName = refSheet
		}
		spec.CellAddress = strings.ToUpper(address)

		switch {
		case spec.FieldName == "":
			issues = append(issues, fmt.Sprintf("row %d: empty field_name", line))
			continue
		case spec.SheetName == "":
			issues = append(issues, fmt.Sprintf("row %d: field %q has no sheet_name", line, spec.FieldName))
			continue
		case spec.CellAddress == "":
			issues = append(issues, fmt.Sprintf("row %d: field %q has no cell_address", line, spec.FieldName))
			continue
		}

		if first, dup := firstSeen[spec.FieldName]; dup {
			duplicates = append(duplicates, spec)
			if !opts.AllowDuplicates {
				issues = append(issues, fmt.Sprintf("row %d: duplicate field_name %q (first defined on row %d)", line, spec.FieldName, first))
			}
			continue
		}
		firstSeen[spec.FieldName] = line
		fields = append(fields, spec)
	}

	if len(issues) > 0 {
		return nil, newMappingError(source, issues...)
	}
	if len(fields) == 0 {
		return nil, newMappingError(source, "mapping has no fields")
	}

	for _, d := range duplicates {
		opts.logger().Warnw("duplicate field ignored", "field", d.FieldName, "row", d.Row)
	}

	return models.NewMappingSet(source, fields, duplicates), nil
}

func isBlankRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
