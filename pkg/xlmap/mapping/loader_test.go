package mapping

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap/zaptest"
)

const sampleCSV = `category,field_name,sheet_name,cell_address,expected_value
Property,PROPERTY_NAME,SheetA,$C$5,
Property,UNITS,SheetA,f5,154

Financing,LOAN_AMOUNT,Debt,D12,
`

func TestLoadCSV(t *testing.T) {
	set, err := Load(strings.NewReader(sampleCSV), FormatCSV, Options{Logger: zaptest.NewLogger(t).Sugar()})
	require.NoError(t, err)

	require.Equal(t, 3, set.Len())
	assert.Equal(t, "PROPERTY_NAME", set.Fields[0].FieldName)
	assert.Equal(t, "$C$5", set.Fields[0].CellAddress)
	assert.Equal(t, 2, set.Fields[0].Row)

	units, ok := set.Lookup("UNITS")
	require.True(t, ok)
	assert.Equal(t, "F5", units.CellAddress)
	assert.Equal(t, "154", units.ExpectedValue)

	loan, ok := set.Lookup("LOAN_AMOUNT")
	require.True(t, ok)
	assert.Equal(t, 5, loan.Row)

	assert.Equal(t, []string{"Property", "Financing"}, set.Categories())
	assert.Empty(t, set.Duplicates)
}

func TestLoadCSVHeaderVariants(t *testing.T) {
	src := "\ufeffCategory,Field Name,Sheet,Cell\nA,X,S1,A1\n"
	set, err := Load(strings.NewReader(src), FormatCSV, Options{})
	require.NoError(t, err)
	require.Equal(t, 1, set.Len())
	assert.Equal(t, "S1", set.Fields[0].SheetName)
}

func TestLoadMissingColumns(t *testing.T) {
	src := "category,field_name,sheet_name\nA,X,S1\n"
	_, err := Load(strings.NewReader(src), FormatCSV, Options{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMalformedMapping))

	var mErr *MappingError
	require.True(t, errors.As(err, &mErr))
	assert.Contains(t, mErr.Issues[0], "cell_address")
	assert.NotEmpty(t, errors.GetAllHints(err))
}

func TestLoadDuplicatesFailByDefault(t *testing.T) {
	src := "category,field_name,sheet_name,cell_address\nA,X,S1,A1\nA,X,S1,B1\nA,Y,S1,C1\n"

	_, err := Load(strings.NewReader(src), FormatCSV, Options{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMalformedMapping))
	assert.Contains(t, err.Error(), `duplicate field_name "X"`)
}

func TestLoadDuplicatesFirstWins(t *testing.T) {
	src := "category,field_name,sheet_name,cell_address\nA,X,S1,A1\nA,X,S1,B1\nA,Y,S1,C1\n"

	set, err := Load(strings.NewReader(src), FormatCSV, Options{AllowDuplicates: true})
	require.NoError(t, err)
	require.Equal(t, 2, set.Len())

	x, _ := set.Lookup("X")
	assert.Equal(t, "A1", x.CellAddress)
	require.Len(t, set.Duplicates, 1)
	assert.Equal(t, "B1", set.Duplicates[0].CellAddress)
	assert.Equal(t, 3, set.Duplicates[0].Row)
}

func TestLoadRowIssues(t *testing.T) {
	src := "category,field_name,sheet_name,cell_address\nA,,S1,A1\nA,X,,A1\nA,Y,S1,\n"
	_, err := Load(strings.NewReader(src), FormatCSV, Options{})
	require.Error(t, err)

	var mErr *MappingError
	require.True(t, errors.As(err, &mErr))
	assert.Len(t, mErr.Issues, 3)
}

func TestLoadEmptyMapping(t *testing.T) {
	_, err := Load(strings.NewReader("category,field_name,sheet_name,cell_address\n"), FormatCSV, Options{})
	assert.True(t, errors.Is(err, ErrMalformedMapping))
}

func TestLoadQualifiedAddressAndCleanNames(t *testing.T) {
	src := "category,field_name,sheet_name,cell_address\nDeal,Units - Total (Net),,'Rent Roll'!$b$7\n"
	set, err := Load(strings.NewReader(src), FormatCSV, Options{CleanNames: true})
	require.NoError(t, err)

	spec := set.Fields[0]
	assert.Equal(t, "UNITS_TOTAL_NET", spec.FieldName)
	assert.Equal(t, "Rent Roll", spec.SheetName)
	assert.Equal(t, "$B$7", spec.CellAddress)
}

func TestLoadYAML(t *testing.T) {
	src := `fields:
  - category: Property
    field_name: PROPERTY_NAME
    sheet_name: SheetA
    cell_address: C5
  - category: Property
    field_name: UNITS
    sheet_name: SheetA
    cell_address: F5
    expected_value: 154
`
	set, err := Load(strings.NewReader(src), FormatYAML, Options{})
	require.NoError(t, err)
	require.Equal(t, 2, set.Len())
	assert.Equal(t, "154", set.Fields[1].ExpectedValue)
}

func TestLoadXLSX(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "UW Model - Cell Reference Table"
	_, err := f.NewSheet(sheet)
	require.NoError(t, err)
	rows := [][]any{
		{"Category", "Field Name", "Sheet Name", "Cell Address"},
		{"Property", "PROPERTY_NAME", "SheetA", "C5"},
		{"Property", "UNITS", "SheetA", "F5"},
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+3)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))

	set, err := Load(&buf, FormatXLSX, Options{Sheet: sheet})
	require.NoError(t, err)
	require.Equal(t, 2, set.Len())
	assert.Equal(t, 4, set.Fields[0].Row)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "mapping.csv")
	require.NoError(t, os.WriteFile(path, []byte(sampleCSV), 0644))
	set, err := LoadFile(path, Options{})
	require.NoError(t, err)
	assert.Equal(t, path, set.Source)

	bad := filepath.Join(dir, "mapping.txt")
	require.NoError(t, os.WriteFile(bad, []byte(sampleCSV), 0644))
	_, err = LoadFile(bad, Options{})
	assert.True(t, errors.Is(err, ErrMalformedMapping))
}

func TestCleanFieldName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Purchase Price", "PURCHASE_PRICE"},
		{"Units - Total (Net)", "UNITS_TOTAL_NET"},
		{" Cap Rate / Yr. 1 ", "CAP_RATE_YR_1"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, CleanFieldName(tt.input))
	}
}
