package xlmap

import (
	"fmt"
	"math"

	"github.com/ukaji3/xlmap-go/pkg/xlmap/models"
	"github.com/ukaji3/xlmap-go/pkg/xlmap/parser"
	"github.com/ukaji3/xlmap-go/pkg/xlmap/report"
)

const (
	fixInvalidAddress = "Check cell address format (e.g., 'A1', 'B10', '$C$5')"
	fixFileAccess     = "Check file path, permissions, and file format"
)

// Extract reads one field from an opened workbook. It never panics: every
// problem becomes a typed failure in the returned outcome.
func Extract(spec models.FieldSpec, wb models.Workbook) models.Outcome {
	return DefaultOptions().extract(spec, wb)
}

// ExtractWithOptions is Extract with explicit options.
func ExtractWithOptions(spec models.FieldSpec, wb models.Workbook, opts Options) models.Outcome {
	return opts.extract(spec, wb)
}

func (o Options) extract(spec models.FieldSpec, wb models.Workbook) (outcome models.Outcome) {
	defer func() {
		if r := recover(); r != nil {
			outcome = models.Failed(failure(spec, models.CategoryTypeMismatch,
				fmt.Sprintf("Unexpected value while reading cell: %v", r), nil))
		}
	}()

	res := parser.ResolveSheetWithThreshold(spec.SheetName, wb.SheetNames(), o.threshold())
	if !res.Found() {
		var fix *string
		if res.Suggestion != "" {
			fix = models.StringPtr(fmt.Sprintf("Did you mean '%s'? Update sheet_name in the mapping", res.Suggestion))
		}
		return models.Failed(failure(spec, models.CategoryMissingSheet,
			fmt.Sprintf("Sheet '%s' not found in workbook", spec.SheetName), fix))
	}

	coord, err := parser.Translate(spec.CellAddress)
	if err != nil {
		return models.Failed(failure(spec, models.CategoryInvalidCellAddress,
			fmt.Sprintf("Invalid cell address format: %v", err), models.StringPtr(fixInvalidAddress)))
	}

	raw, err := wb.Cell(res.Sheet, coord)
	if err != nil {
		return models.Failed(failure(spec, models.CategoryFileUnreadable,
			fmt.Sprintf("File access error: %v", err), models.StringPtr(fixFileAccess)))
	}
	if raw == nil {
		return models.Blank()
	}

	if sentinel, ok := parser.LookupSentinel(raw); ok {
		ref := res.Sheet + "!" + spec.CellAddress
		if name, err := parser.CellName(coord); err == nil {
			ref = res.Sheet + "!" + name
		}
		return models.Failed(failure(spec, models.CategoryFormulaError,
			fmt.Sprintf("Formula error %s: %s", sentinel, sentinel.Meaning()),
			models.StringPtr(fmt.Sprintf("Fix the formula at %s that produces %s (%s)", ref, sentinel, sentinel.Meaning()))))
	}

	normalized, ok := parser.Normalize(raw, o.blankMarkers())
	if !ok {
		return models.Failed(failure(spec, models.CategoryTypeMismatch,
			fmt.Sprintf("Cannot convert value of type %T to number or text", raw), nil))
	}
	return models.Succeeded(finiteRaw(raw), normalized)
}

// finiteRaw drops NaN and infinite floats, which have no JSON encoding.
func finiteRaw(raw any) any {
	switch v := raw.(type) {
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil
		}
	case float32:
		if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
			return nil
		}
	}
	return raw
}

func failure(spec models.FieldSpec, category models.Category, message string, fix *string) models.Failure {
	return models.Failure{
		Category:     category,
		Message:      message,
		SuggestedFix: fix,
		SheetName:    spec.SheetName,
		CellAddress:  spec.CellAddress,
	}
}

// ExtractFile runs every field of the mapping against one workbook, in
// mapping order, and builds the file's error report. Once started, a file
// always runs to completion.
func ExtractFile(fileID string, wb models.Workbook, mapping *models.MappingSet, opts Options) models.FileResult {
	now := opts.Clock()
	log := opts.Log()
	start := now()

	result := models.FileResult{
		FileID: fileID,
		Fields: make([]models.FieldResult, 0, mapping.Len()),
	}
	var records []models.ErrorRecord

	for _, spec := range mapping.Fields {
		outcome := opts.extract(spec, wb)
		result.Fields = append(result.Fields, models.FieldResult{FieldName: spec.FieldName, Outcome: outcome})
		if outcome.Failure != nil {
			records = append(records, models.ErrorRecord{
				FileID:    fileID,
				FieldName: spec.FieldName,
				Failure:   *outcome.Failure,
				Timestamp: now(),
			})
			log.Debugw("field failed",
				"file", fileID,
				"field", spec.FieldName,
				"category", outcome.Failure.Category,
				"message", outcome.Failure.Message,
			)
		}
	}

	finish(&result, records, opts)
	result.Duration = now().Sub(start)
	return result
}

// UnreadableFile builds the result of a file that could not be processed:
// every field of the mapping fails with file_unreadable.
func UnreadableFile(fileID string, mapping *models.MappingSet, cause error, opts Options) models.FileResult {
	now := opts.Clock()
	result := models.FileResult{
		FileID:     fileID,
		Fields:     make([]models.FieldResult, 0, mapping.Len()),
		Unreadable: true,
	}

	message := fmt.Sprintf("File access error: %v", cause)
	records := make([]models.ErrorRecord, 0, mapping.Len())
	for _, spec := range mapping.Fields {
		f := failure(spec, models.CategoryFileUnreadable, message, models.StringPtr(fixFileAccess))
		result.Fields = append(result.Fields, models.FieldResult{FieldName: spec.FieldName, Outcome: models.Failed(f)})
		records = append(records, models.ErrorRecord{
			FileID:    fileID,
			FieldName: spec.FieldName,
			Failure:   f,
			Timestamp: now(),
		})
	}

	finish(&result, records, opts)
	return result
}

// Records returns the failures of a file result as report records.
func Records(result models.FileResult) []models.ErrorRecord {
	var out []models.ErrorRecord
	for _, d := range result.Report.Detailed {
		out = append(out, models.ErrorRecord{
			FileID:    d.FileID,
			FieldName: d.FieldName,
			Failure: models.Failure{
				Category:     d.Category,
				Message:      d.ErrorMessage,
				SuggestedFix: d.SuggestedFix,
				SheetName:    d.SheetName,
				CellAddress:  d.CellAddress,
			},
			Timestamp: d.Timestamp,
		})
	}
	return out
}

func finish(result *models.FileResult, records []models.ErrorRecord, opts Options) {
	result.Total = len(result.Fields)
	result.Failed = len(records)
	result.Succeeded = result.Total - result.Failed
	result.Report = report.Build(records, report.Options{TopN: opts.TopN})
}
