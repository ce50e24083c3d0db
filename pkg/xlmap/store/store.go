// Package store persists run results in SQLite.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/cockroachdb/errors"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/ukaji3/xlmap-go/pkg/xlmap/models"
)

// Sink accepts finished runs for durable storage.
type Sink interface {
	Save(ctx context.Context, result *models.BatchResult) error
}

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id       TEXT PRIMARY KEY,
	started_at   TEXT NOT NULL,
	finished_at  TEXT NOT NULL,
	files        INTEGER NOT NULL,
	fields       INTEGER NOT NULL,
	succeeded    INTEGER NOT NULL,
	failed       INTEGER NOT NULL,
	total_errors INTEGER NOT NULL,
	cancelled    BOOLEAN NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS file_results (
	run_id      TEXT NOT NULL REFERENCES runs(run_id) ON DELETE CASCADE,
	file_index  INTEGER NOT NULL,
	file_id     TEXT NOT NULL,
	total       INTEGER NOT NULL,
	succeeded   INTEGER NOT NULL,
	failed      INTEGER NOT NULL,
	unreadable  BOOLEAN NOT NULL DEFAULT 0,
	skipped     BOOLEAN NOT NULL DEFAULT 0,
	duration_ms INTEGER NOT NULL,
	PRIMARY KEY (run_id, file_index)
);

CREATE TABLE IF NOT EXISTS field_values (
	run_id       TEXT NOT NULL,
	file_index   INTEGER NOT NULL,
	field_name   TEXT NOT NULL,
	value_number REAL,
	value_text   TEXT,
	PRIMARY KEY (run_id, file_index, field_name),
	FOREIGN KEY (run_id, file_index) REFERENCES file_results(run_id, file_index) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS extraction_errors (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id        TEXT NOT NULL REFERENCES runs(run_id) ON DELETE CASCADE,
	file_id       TEXT NOT NULL,
	field_name    TEXT NOT NULL,
	category      TEXT NOT NULL,
	sheet_name    TEXT,
	cell_address  TEXT,
	message       TEXT NOT NULL,
	suggested_fix TEXT,
	created_at    TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_extraction_errors_category ON extraction_errors(run_id, category);
`

// SQLStore is a Sink backed by database/sql.
type SQLStore struct {
	db  *sql.DB
	log *zap.SugaredLogger
}

// Open opens (or creates) a SQLite database at path and applies the schema.
func Open(path string, logger *zap.SugaredLogger) (*SQLStore, error) {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	logger.Debugw("opening database", "path", path)

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open database")
	}

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, errors.Wrapf(err, "failed to apply %q", pragma)
		}
	}

	s := New(db, logger)
	if err := s.Migrate(context.Background()); err != nil {
		db.Close()
		return nil, err
	}

	logger.Infow("database opened", "path", path, "wal_mode", true, "foreign_keys", true)
	return s, nil
}

// New wraps an existing connection. The schema is not applied.
func New(db *sql.DB, logger *zap.SugaredLogger) *SQLStore {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &SQLStore{db: db, log: logger}
}

// Migrate creates the tables if they do not exist.
func (s *SQLStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return errors.Wrap(err, "failed to apply schema")
	}
	return nil
}

// Close closes the database.
func (s *SQLStore) Close() error {
	return s.db.Close()
}

// Save writes a run in a single transaction.
func (s *SQLStore) Save(ctx context.Context, result *models.BatchResult) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				s.log.Warnw("rollback failed", "run_id", result.RunID, "error", rbErr)
			}
		}
	}()

	st := result.Stats
	if _, err = tx.ExecContext(ctx,
		`INSERT INTO runs (run_id, started_at, finished_at, files, fields, succeeded, failed, total_errors, cancelled)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		result.RunID, formatTime(st.StartedAt), formatTime(st.FinishedAt),
		st.Files, st.Fields, st.Succeeded, st.Failed, result.Report.TotalErrors, st.Cancelled,
	); err != nil {
		return errors.Wrapf(err, "failed to insert run %s", result.RunID)
	}

	for i, file := range result.Files {
		if err = saveFile(ctx, tx, result.RunID, i, file); err != nil {
			return err
		}
	}

	if err = tx.Commit(); err != nil {
		return errors.Wrap(err, "failed to commit")
	}

	s.log.Infow("run saved", "run_id", result.RunID, "files", len(result.Files), "errors", result.Report.TotalErrors)
	return nil
}

func saveFile(ctx context.Context, tx *sql.Tx, runID string, index int, file models.FileResult) error {
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO file_results (run_id, file_index, file_id, total, succeeded, failed, unreadable, skipped, duration_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, index, file.FileID, file.Total, file.Succeeded, file.Failed, file.Unreadable, file.Skipped, file.Duration.Milliseconds(),
	); err != nil {
		return errors.Wrapf(err, "failed to insert file %s", file.FileID)
	}

	for _, f := range file.Fields {
		if f.Value == nil {
			continue
		}
		number, text := splitValue(f.Value.Normalized)
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO field_values (run_id, file_index, field_name, value_number, value_text) VALUES (?, ?, ?, ?, ?)`,
			runID, index, f.FieldName, number, text,
		); err != nil {
			return errors.Wrapf(err, "failed to insert %s of %s", f.FieldName, file.FileID)
		}
	}

	for _, d := range file.Report.Detailed {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO extraction_errors (run_id, file_id, field_name, category, sheet_name, cell_address, message, suggested_fix, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			runID, d.FileID, d.FieldName, string(d.Category), d.SheetName, d.CellAddress, d.ErrorMessage, d.SuggestedFix, formatTime(d.Timestamp),
		); err != nil {
			return errors.Wrapf(err, "failed to insert error for %s", d.FieldName)
		}
	}
	return nil
}

func splitValue(v any) (sql.NullFloat64, sql.NullString) {
	switch x := v.(type) {
	case float64:
		return sql.NullFloat64{Float64: x, Valid: true}, sql.NullString{}
	case string:
		return sql.NullFloat64{}, sql.NullString{String: x, Valid: true}
	case nil:
		return sql.NullFloat64{}, sql.NullString{}
	default:
		return sql.NullFloat64{}, sql.NullString{String: fmt.Sprint(x), Valid: true}
	}
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// Values returns the stored values of one file of a run. Numbers are
// float64, text is string and blanks are nil.
func (s *SQLStore) Values(ctx context.Context, runID, fileID string) (map[string]any, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT v.field_name, v.value_number, v.value_text
		 FROM field_values v
		 JOIN file_results f ON f.run_id = v.run_id AND f.file_index = v.file_index
		 WHERE v.run_id = ? AND f.file_id = ?`,
		runID, fileID,
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query values")
	}
	defer rows.Close()

	out := make(map[string]any)
	for rows.Next() {
		var (
			name   string
			number sql.NullFloat64
			text   sql.NullString
		)
		if err := rows.Scan(&name, &number, &text); err != nil {
			return nil, errors.Wrap(err, "failed to scan value")
		}
		switch {
		case number.Valid:
			out[name] = number.Float64
		case text.Valid:
			out[name] = text.String
		default:
			out[name] = nil
		}
	}
	return out, errors.Wrap(rows.Err(), "failed to read values")
}

// ErrorCounts returns the number of stored errors per category for a run.
func (s *SQLStore) ErrorCounts(ctx context.Context, runID string) (map[models.Category]int, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT category, COUNT(*) FROM extraction_errors WHERE run_id = ? GROUP BY category`, runID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query errors")
	}
	defer rows.Close()

	out := make(map[models.Category]int)
	for rows.Next() {
		var (
			category string
			n        int
		)
		if err := rows.Scan(&category, &n); err != nil {
			return nil, errors.Wrap(err, "failed to scan error count")
		}
		out[models.Category(category)] = n
	}
	return out, errors.Wrap(rows.Err(), "failed to read error counts")
}
