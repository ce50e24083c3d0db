package parser

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestUsedRange(t *testing.T) {
	tests := []struct {
		rows     [][]string
		expected string
	}{
		{nil, ""},
		{[][]string{{"", ""}, {""}}, ""},
		{[][]string{{"x"}}, "A1:A1"},
		{[][]string{{}, {"", "a", "b"}, {"", "", "", "c"}}, "B2:D3"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, UsedRange(tt.rows))
	}
}

func TestInspectFile(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	_, err := f.NewSheet("SheetA")
	require.NoError(t, err)
	require.NoError(t, f.SetCellValue("SheetA", "C5", "Emparrado"))
	require.NoError(t, f.SetCellValue("SheetA", "F5", 154))
	require.NoError(t, f.SetCellValue("SheetA", "D7", "x"))

	path := filepath.Join(t.TempDir(), "inspect.xlsx")
	require.NoError(t, f.SaveAs(path))

	infos, err := InspectFile(path)
	require.NoError(t, err)
	require.Len(t, infos, 2)

	assert.Equal(t, "Sheet1", infos[0].Name)
	assert.Empty(t, infos[0].UsedRange)

	assert.Equal(t, "SheetA", infos[1].Name)
	assert.Equal(t, "C5:F7", infos[1].UsedRange)
	assert.Equal(t, 3, infos[1].NonEmptyCells)
}
