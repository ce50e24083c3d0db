package xlmap

import (
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ukaji3/xlmap-go/pkg/xlmap/models"
	"github.com/ukaji3/xlmap-go/pkg/xlmap/output"
	"github.com/ukaji3/xlmap-go/pkg/xlmap/parser"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap/zaptest"
)

func spec(field, sheet, address string) models.FieldSpec {
	return models.FieldSpec{Category: "Property", FieldName: field, SheetName: sheet, CellAddress: address}
}

func fixedClock() func() time.Time {
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time { return at }
}

// faultyWorkbook fails or panics on every cell read.
type faultyWorkbook struct {
	panics bool
}

func (w faultyWorkbook) SheetNames() []string { return []string{"Sheet1"} }

func (w faultyWorkbook) Cell(string, models.Coordinate) (any, error) {
	if w.panics {
		panic("corrupt shared string table")
	}
	return nil, errors.New("zip: checksum error")
}

func (w faultyWorkbook) Close() error { return nil }

func TestExtract(t *testing.T) {
	wb := parser.NewMemoryWorkbook("Sheet1", "Sheet2").
		Set("Sheet1", 4, 2, "  Emparrado ").
		Set("Sheet1", 4, 5, float64(154)).
		Set("Sheet1", 0, 0, "#DIV/0!").
		Set("Sheet1", 1, 0, "n/a").
		Set("Sheet1", 2, 0, true).
		Set("Sheet1", 3, 0, struct{ X int }{1}).
		Set("Sheet1", 5, 0, "1,5")

	tests := []struct {
		name       string
		spec       models.FieldSpec
		normalized any
		category   models.Category
		hasFix     bool
	}{
		{"text", spec("NAME", "Sheet1", "C5"), "Emparrado", "", false},
		{"number", spec("UNITS", "Sheet1", "$F$5"), float64(154), "", false},
		{"blank cell", spec("EMPTY", "Sheet1", "Z99"), nil, "", false},
		{"blank marker", spec("MARKER", "Sheet1", "A2"), nil, "", false},
		{"bool", spec("FLAG", "Sheet1", "A3"), "TRUE", "", false},
		{"text not numeric", spec("TEXT", "Sheet1", "A6"), "1,5", "", false},
		{"normalized sheet", spec("NAME2", " sheet1 ", "C5"), "Emparrado", "", false},
		{"missing sheet", spec("M", "Sheett1", "A1"), nil, models.CategoryMissingSheet, true},
		{"missing sheet no suggestion", spec("M", "Cash Flow", "A1"), nil, models.CategoryMissingSheet, false},
		{"invalid address", spec("BAD", "Sheet1", "INVALID123"), nil, models.CategoryInvalidCellAddress, true},
		{"formula error", spec("DIV", "Sheet1", "A1"), nil, models.CategoryFormulaError, true},
		{"type mismatch", spec("OBJ", "Sheet1", "A4"), nil, models.CategoryTypeMismatch, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := Extract(tt.spec, wb)
			if tt.category == "" {
				require.True(t, out.OK(), "unexpected failure %+v", out.Failure)
				assert.Nil(t, out.Failure)
				assert.Equal(t, tt.normalized, out.Value.Normalized)
				return
			}
			require.False(t, out.OK())
			assert.Nil(t, out.Value)
			assert.Equal(t, tt.category, out.Failure.Category)
			assert.Equal(t, tt.hasFix, out.Failure.SuggestedFix != nil)
			assert.Equal(t, tt.spec.SheetName, out.Failure.SheetName)
			assert.Equal(t, tt.spec.CellAddress, out.Failure.CellAddress)
		})
	}
}

func TestExtractSuggestsClosestSheet(t *testing.T) {
	wb := parser.NewMemoryWorkbook("Sheet1", "Sheet2")
	out := Extract(spec("X", "Sheett1", "A1"), wb)

	require.NotNil(t, out.Failure)
	assert.Equal(t, models.CategoryMissingSheet, out.Failure.Category)
	assert.Contains(t, out.Failure.Fix(), "'Sheet1'")
}

func TestExtractFormulaErrorNamesSentinel(t *testing.T) {
	for _, s := range []parser.Sentinel{
		parser.SentinelDivZero, parser.SentinelRef, parser.SentinelName, parser.SentinelValue,
		parser.SentinelNA, parser.SentinelNull, parser.SentinelNum,
	} {
		wb := parser.NewMemoryWorkbook().Set("Calc", 9, 6, string(s))
		out := Extract(spec("F", "Calc", "$G$10"), wb)

		require.NotNil(t, out.Failure, string(s))
		assert.Equal(t, models.CategoryFormulaError, out.Failure.Category)
		assert.Contains(t, out.Failure.Message, string(s))
		assert.Contains(t, out.Failure.Fix(), "Calc!G10")
	}
}

func TestExtractDropsNonFiniteRaw(t *testing.T) {
	wb := parser.NewMemoryWorkbook("Sheet1").
		Set("Sheet1", 0, 0, math.NaN()).
		Set("Sheet1", 0, 1, math.Inf(-1))

	for _, address := range []string{"A1", "B1"} {
		out := Extract(spec("X", "Sheet1", address), wb)
		require.NotNil(t, out.Value, address)
		assert.Nil(t, out.Value.Raw, address)
		assert.Nil(t, out.Value.Normalized, address)
	}

	result := ExtractFile("nan.xlsx", wb, models.NewMappingSet("test", []models.FieldSpec{spec("X", "Sheet1", "A1")}, nil), DefaultOptions())
	_, err := output.FileToJSON(&result, false)
	assert.NoError(t, err)
}

func TestExtractRecoversFromWorkbookFaults(t *testing.T) {
	out := Extract(spec("X", "Sheet1", "A1"), faultyWorkbook{})
	require.NotNil(t, out.Failure)
	assert.Equal(t, models.CategoryFileUnreadable, out.Failure.Category)

	out = Extract(spec("X", "Sheet1", "A1"), faultyWorkbook{panics: true})
	require.NotNil(t, out.Failure)
	assert.Equal(t, models.CategoryTypeMismatch, out.Failure.Category)
	assert.Nil(t, out.Failure.SuggestedFix)
}

func TestExtractFileEndToEnd(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetSheetName("Sheet1", "SheetA"))
	require.NoError(t, f.SetCellValue("SheetA", "C5", "Emparrado"))
	require.NoError(t, f.SetCellValue("SheetA", "F5", 154))

	path := filepath.Join(t.TempDir(), "deal.xlsx")
	require.NoError(t, f.SaveAs(path))

	wb, err := parser.OpenFile(path)
	require.NoError(t, err)
	defer wb.Close()

	mapping := models.NewMappingSet("test", []models.FieldSpec{
		spec("PROPERTY_NAME", "SheetA", "C5"),
		spec("UNITS", "SheetA", "F5"),
	}, nil)

	opts := DefaultOptions()
	opts.Now = fixedClock()
	opts.Logger = zaptest.NewLogger(t).Sugar()

	result := ExtractFile(path, wb, mapping, opts)

	assert.Equal(t, map[string]any{"PROPERTY_NAME": "Emparrado", "UNITS": float64(154)}, result.Values())
	assert.Equal(t, 2, result.Total)
	assert.Equal(t, 2, result.Succeeded)
	assert.Zero(t, result.Failed)
	assert.Zero(t, result.Report.TotalErrors)
	assert.Zero(t, result.Duration)
}

func TestExtractFileReportsFailures(t *testing.T) {
	wb := parser.NewMemoryWorkbook("Sheet1").Set("Sheet1", 0, 0, "#REF!")
	mapping := models.NewMappingSet("test", []models.FieldSpec{
		spec("A", "Sheet1", "A1"),
		spec("B", "Nope", "A1"),
		spec("C", "Sheet1", "B2"),
	}, nil)

	opts := DefaultOptions()
	opts.Now = fixedClock()
	result := ExtractFile("f.xlsx", wb, mapping, opts)

	require.Len(t, result.Fields, 3)
	assert.Equal(t, []string{"A", "B", "C"}, []string{result.Fields[0].FieldName, result.Fields[1].FieldName, result.Fields[2].FieldName})
	assert.Equal(t, 1, result.Succeeded)
	assert.Equal(t, 2, result.Failed)
	assert.Equal(t, 2, result.Report.TotalErrors)
	assert.Equal(t, "f.xlsx", result.Report.Detailed[0].FileID)

	records := Records(result)
	require.Len(t, records, 2)
	assert.Equal(t, models.CategoryFormulaError, records[0].Failure.Category)
	assert.Equal(t, models.CategoryMissingSheet, records[1].Failure.Category)
}

func TestUnreadableFile(t *testing.T) {
	mapping := models.NewMappingSet("test", []models.FieldSpec{
		spec("A", "Sheet1", "A1"),
		spec("B", "Sheet1", "B1"),
	}, nil)

	result := UnreadableFile("broken.xlsx", mapping, errors.New("not a zip file"), DefaultOptions())

	assert.True(t, result.Unreadable)
	assert.Equal(t, 2, result.Failed)
	assert.Zero(t, result.Succeeded)
	for _, f := range result.Fields {
		require.NotNil(t, f.Failure)
		assert.Equal(t, models.CategoryFileUnreadable, f.Failure.Category)
		assert.Contains(t, f.Failure.Message, "not a zip file")
	}
	assert.Equal(t, models.CategoryStat{Count: 2, Percentage: 100}, result.Report.Breakdown[models.CategoryFileUnreadable])
}
