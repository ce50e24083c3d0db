package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/ukaji3/xlmap-go/pkg/xlmap/models"
	"github.com/ukaji3/xlmap-go/pkg/xlmap/report"
)

func sampleRun() *models.BatchResult {
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	failure := models.Failure{
		Category:     models.CategoryFormulaError,
		Message:      "Formula error #DIV/0!: division by zero",
		SuggestedFix: models.StringPtr("Fix the formula at SheetA!D6 that produces #DIV/0! (division by zero)"),
		SheetName:    "SheetA",
		CellAddress:  "D6",
	}
	records := []models.ErrorRecord{{FileID: "a.xlsx", FieldName: "CAP_RATE", Failure: failure, Timestamp: at}}

	file := models.FileResult{
		FileID: "a.xlsx",
		Fields: []models.FieldResult{
			{FieldName: "PROPERTY_NAME", Outcome: models.Succeeded("Emparrado", "Emparrado")},
			{FieldName: "UNITS", Outcome: models.Succeeded(float64(154), float64(154))},
			{FieldName: "NOTES", Outcome: models.Blank()},
			{FieldName: "CAP_RATE", Outcome: models.Failed(failure)},
		},
		Total:     4,
		Succeeded: 3,
		Failed:    1,
		Report:    report.Build(records, report.Options{}),
	}
	return &models.BatchResult{
		RunID:  "run-1",
		Files:  []models.FileResult{file},
		Report: report.Build(records, report.Options{}),
		Stats: models.BatchStats{
			Files: 1, Fields: 4, Succeeded: 3, Failed: 1,
			StartedAt: at, FinishedAt: at.Add(time.Second),
		},
	}
}

func TestSaveAndQuery(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "results.db"), zaptest.NewLogger(t).Sugar())
	require.NoError(t, err)
	defer s.Close()

	ctx := context.Background()
	require.NoError(t, s.Save(ctx, sampleRun()))

	values, err := s.Values(ctx, "run-1", "a.xlsx")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"PROPERTY_NAME": "Emparrado",
		"UNITS":         float64(154),
		"NOTES":         nil,
	}, values)

	counts, err := s.ErrorCounts(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, map[models.Category]int{models.CategoryFormulaError: 1}, counts)

	// Run ids are unique.
	assert.Error(t, s.Save(ctx, sampleRun()))
}

func TestSaveBeginFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin().WillReturnError(errors.New("database is locked"))

	err = New(db, nil).Save(context.Background(), sampleRun())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database is locked")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveRollsBackOnInsertFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO runs").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO file_results").WillReturnError(errors.New("disk I/O error"))
	mock.ExpectRollback()

	var s Sink = New(db, zaptest.NewLogger(t).Sugar())
	err = s.Save(context.Background(), sampleRun())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "a.xlsx")
	assert.NoError(t, mock.ExpectationsWereMet())
}
