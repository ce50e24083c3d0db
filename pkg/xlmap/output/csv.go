package output

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/cockroachdb/errors"
	"github.com/ukaji3/xlmap-go/pkg/xlmap/models"
)

// Metadata columns written before the field columns.
var metadataColumns = []string{"_file_id", "_total", "_succeeded", "_failed"}

// WriteCSV writes one row per file: metadata columns, then one column per
// mapping field in mapping order. Failed and blank fields are empty.
func WriteCSV(w io.Writer, result *models.BatchResult, mapping *models.MappingSet) error {
	cw := csv.NewWriter(w)

	header := append([]string{}, metadataColumns...)
	for _, f := range mapping.Fields {
		header = append(header, f.FieldName)
	}
	if err := cw.Write(header); err != nil {
		return errors.Wrap(err, "write header")
	}

	for _, file := range result.Files {
		values := file.Values()
		row := []string{
			file.FileID,
			strconv.Itoa(file.Total),
			strconv.Itoa(file.Succeeded),
			strconv.Itoa(file.Failed),
		}
		for _, f := range mapping.Fields {
			row = append(row, FormatValue(values[f.FieldName]))
		}
		if err := cw.Write(row); err != nil {
			return errors.Wrapf(err, "write row for %s", file.FileID)
		}
	}

	cw.Flush()
	return errors.Wrap(cw.Error(), "flush csv")
}

// WriteMappingSummary writes the fields of a mapping with their category.
func WriteMappingSummary(w io.Writer, mapping *models.MappingSet) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"category", "field_name", "sheet_name", "cell_address", "expected_value"}); err != nil {
		return errors.Wrap(err, "write header")
	}
	for _, f := range mapping.Fields {
		if err := cw.Write([]string{f.Category, f.FieldName, f.SheetName, f.CellAddress, f.ExpectedValue}); err != nil {
			return errors.Wrapf(err, "write %s", f.FieldName)
		}
	}
	cw.Flush()
	return errors.Wrap(cw.Error(), "flush csv")
}

// FormatValue renders a normalized value as text. Nil renders as "".
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case string:
		return x
	default:
		return ""
	}
}
