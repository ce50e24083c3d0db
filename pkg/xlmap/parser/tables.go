package parser

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/ukaji3/xlmap-go/pkg/xlmap/models"
	"github.com/xuri/excelize/v2"
)

// InspectFile lists the sheets of a workbook with their used ranges.
// It helps when authoring a mapping for a new layout.
func InspectFile(path string) ([]models.SheetInfo, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open workbook %s", path)
	}
	defer f.Close()

	var infos []models.SheetInfo
	for _, sheetName := range f.GetSheetList() {
		info, err := InspectSheet(f, sheetName)
		if err != nil {
			return nil, err
		}
		infos = append(infos, info)
	}
	return infos, nil
}

// InspectSheet computes the used range of one sheet.
func InspectSheet(f *excelize.File, sheetName string) (models.SheetInfo, error) {
	info := models.SheetInfo{Name: sheetName}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return info, errors.Wrapf(err, "read sheet %q", sheetName)
	}

	info.UsedRange = UsedRange(rows)
	if info.UsedRange != "" {
		minRow, maxRow, minCol, maxCol := findDataBounds(rows)
		info.NonEmptyCells = countNonEmptyCells(rows, minRow, maxRow, minCol, maxCol)
	}
	return info, nil
}

// UsedRange returns the bounding range (e.g. "A1:D10") of the non-empty
// cells of a row grid, or "" when the grid is empty.
func UsedRange(rows [][]string) string {
	minRow, maxRow, minCol, maxCol := findDataBounds(rows)
	if minRow < 0 {
		return ""
	}

	startCell, _ := excelize.CoordinatesToCellName(minCol+1, minRow+1)
	endCell, _ := excelize.CoordinatesToCellName(maxCol+1, maxRow+1)
	return fmt.Sprintf("%s:%s", startCell, endCell)
}

// findDataBounds finds the bounding box of non-empty cells.
func findDataBounds(rows [][]string) (minRow, maxRow, minCol, maxCol int) {
	minRow, maxRow = -1, -1
	minCol, maxCol = -1, -1

	for rowIdx, row := range rows {
		for colIdx, cell := range row {
			if cell != "" {
				if minRow < 0 || rowIdx < minRow {
					minRow = rowIdx
				}
				if maxRow < 0 || rowIdx > maxRow {
					maxRow = rowIdx
				}
				if minCol < 0 || colIdx < minCol {
					minCol = colIdx
				}
				if maxCol < 0 || colIdx > maxCol {
					maxCol = colIdx
				}
			}
		}
	}

	return
}

// countNonEmptyCells counts non-empty cells within bounds.
func countNonEmptyCells(rows [][]string, minRow, maxRow, minCol, maxCol int) int {
	count := 0
	for rowIdx := minRow; rowIdx <= maxRow && rowIdx < len(rows); rowIdx++ {
		row := rows[rowIdx]
		for colIdx := minCol; colIdx <= maxCol && colIdx < len(row); colIdx++ {
			if row[colIdx] != "" {
				count++
			}
		}
	}
	return count
}
