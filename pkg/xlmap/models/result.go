package models

import "time"

// FieldResult pairs a field name with its outcome.
type FieldResult struct {
	FieldName string `json:"field_name"`
	Outcome
}

// FileResult is the extraction result for one workbook.
type FileResult struct {
	// FileID identifies the source (path or caller-supplied id).
	FileID string `json:"file_id"`
	// Fields holds one outcome per mapping field, in mapping order.
	Fields []FieldResult `json:"fields"`
	// Total, Succeeded and Failed count the outcomes.
	Total     int `json:"total"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
	// Unreadable is set when the workbook could not be opened or read.
	Unreadable bool `json:"unreadable,omitempty"`
	// Skipped is set when the run was cancelled before the file started.
	Skipped bool `json:"skipped,omitempty"`
	// Report summarizes this file's failures.
	Report ErrorReport `json:"error_report"`
	// Duration is the wall time spent on the file.
	Duration time.Duration `json:"duration_ns"`
}

// Outcome returns the outcome recorded for a field.
func (r *FileResult) Outcome(fieldName string) (Outcome, bool) {
	for _, f := range r.Fields {
		if f.FieldName == fieldName {
			return f.Outcome, true
		}
	}
	return Outcome{}, false
}

// Values returns the normalized values of every successful field.
// Blank fields map to nil.
func (r *FileResult) Values() map[string]any {
	out := make(map[string]any, r.Succeeded)
	for _, f := range r.Fields {
		if f.Value != nil {
			out[f.FieldName] = f.Value.Normalized
		}
	}
	return out
}

// BatchStats holds run-level timing and throughput figures.
type BatchStats struct {
	Files           int           `json:"files"`
	UnreadableFiles int           `json:"unreadable_files"`
	SkippedFiles    int           `json:"skipped_files"`
	Fields          int           `json:"fields"`
	Succeeded       int           `json:"succeeded"`
	Failed          int           `json:"failed"`
	Workers         int           `json:"workers"`
	StartedAt       time.Time     `json:"started_at"`
	FinishedAt      time.Time     `json:"finished_at"`
	Duration        time.Duration `json:"duration_ns"`
	FilesPerSecond  float64       `json:"files_per_second"`
	FieldsPerSecond float64       `json:"fields_per_second"`
	Cancelled       bool          `json:"cancelled,omitempty"`
}

// BatchResult is the consolidated artifact of a run.
type BatchResult struct {
	// RunID uniquely identifies the run.
	RunID string `json:"run_id"`
	// Files holds one result per input file, in input order.
	Files []FileResult `json:"files"`
	// Report merges the failures of every file.
	Report ErrorReport `json:"error_report"`
	// Stats holds timing and throughput.
	Stats BatchStats `json:"stats"`
}
