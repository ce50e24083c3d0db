// Package batch runs mapping-driven extraction over many workbooks with a
// bounded worker pool and per-file fault isolation.
package batch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/ukaji3/xlmap-go/pkg/xlmap"
	"github.com/ukaji3/xlmap-go/pkg/xlmap/models"
	"github.com/ukaji3/xlmap-go/pkg/xlmap/report"
	"golang.org/x/sync/errgroup"
)

// DefaultMaxWorkers is the pool size used when Options.MaxWorkers is unset.
const DefaultMaxWorkers = 4

var errCancelled = errors.New("run cancelled before file was opened")

// Event is emitted once per finished file.
type Event struct {
	// Index is the position of the file in the input list.
	Index int
	// Completed counts files finished so far, this one included.
	Completed int
	// Total is the number of input files.
	Total int
	// Result is the file's result.
	Result models.FileResult
}

// Options configures a run.
type Options struct {
	xlmap.Options

	// MaxWorkers bounds how many files are processed at once.
	MaxWorkers int
	// FileTimeout bounds opening and extracting one file. Zero disables it.
	// A timed-out file is reported as unreadable right away. Its extraction
	// goroutine is abandoned: a source that ignores ctx may keep its open
	// call running until it returns, and a workbook opened after the
	// deadline is closed without being read.
	FileTimeout time.Duration
	// RunID labels the run. If empty, a random UUID is used.
	RunID string
	// OnFileDone is called after each file, one call at a time.
	OnFileDone func(Event)
}

// DefaultOptions returns default run options.
func DefaultOptions() Options {
	return Options{
		Options:    xlmap.DefaultOptions(),
		MaxWorkers: DefaultMaxWorkers,
	}
}

func (o Options) workers(files int) int {
	n := o.MaxWorkers
	if n <= 0 {
		n = DefaultMaxWorkers
	}
	if n > files {
		n = files
	}
	return n
}

type runner struct {
	mapping *models.MappingSet
	opts    Options
	acc     *report.Accumulator

	mu        sync.Mutex
	completed int
	total     int
}

// Run extracts every mapping field from every file. Files are processed
// concurrently but results keep input order. Per-file problems are recorded
// in the result; only a missing mapping or an empty file list fail the run.
//
// Cancelling ctx stops new files from starting. Files already opened run to
// completion; the rest are recorded as skipped.
func Run(ctx context.Context, files []Source, mapping *models.MappingSet, opts Options) (*models.BatchResult, error) {
	if mapping.Len() == 0 {
		return nil, errors.WithHint(xlmap.ErrNoMapping, "load a mapping with at least one field")
	}
	if len(files) == 0 {
		return nil, errors.WithHint(xlmap.ErrEmptyFileList, "pass workbook paths, --dir or --manifest")
	}

	now := opts.Clock()
	log := opts.Log()
	runID := opts.RunID
	if runID == "" {
		runID = uuid.NewString()
	}
	workers := opts.workers(len(files))
	started := now()

	r := &runner{
		mapping: mapping,
		opts:    opts,
		acc:     report.NewAccumulator(report.Options{TopN: opts.TopN}),
		total:   len(files),
	}
	results := make([]models.FileResult, len(files))

	log.Infow("batch started", "run_id", runID, "files", len(files), "fields", mapping.Len(), "workers", workers)

	g := new(errgroup.Group)
	g.SetLimit(workers)
	for i, src := range files {
		i, src := i, src
		if ctx.Err() != nil {
			results[i] = r.skipped(i, src.ID())
			continue
		}
		g.Go(func() error {
			results[i] = r.process(ctx, i, src)
			return nil
		})
	}
	_ = g.Wait()

	finished := now()
	result := &models.BatchResult{
		RunID:  runID,
		Files:  results,
		Report: r.acc.Report(),
		Stats:  stats(results, workers, started, finished),
	}
	result.Stats.Cancelled = ctx.Err() != nil && result.Stats.SkippedFiles > 0

	log.Infow("batch finished",
		"run_id", runID,
		"files", result.Stats.Files,
		"unreadable", result.Stats.UnreadableFiles,
		"skipped", result.Stats.SkippedFiles,
		"errors", result.Report.TotalErrors,
		"duration_ms", result.Stats.Duration.Milliseconds(),
	)
	return result, nil
}

// process handles one file end to end. It never panics.
func (r *runner) process(ctx context.Context, index int, src Source) models.FileResult {
	id := src.ID()
	if ctx.Err() != nil {
		return r.skipped(index, id)
	}

	now := r.opts.Clock()
	start := now()

	// A started file finishes even if the run is cancelled.
	fileCtx := context.WithoutCancel(ctx)
	var result models.FileResult
	if r.opts.FileTimeout > 0 {
		result = r.extractWithTimeout(fileCtx, id, src)
	} else {
		result = r.extract(fileCtx, id, src)
	}
	result.Duration = now().Sub(start)

	r.done(index, result)
	r.opts.Log().Debugw("file processed",
		"file", id,
		"succeeded", result.Succeeded,
		"failed", result.Failed,
		"unreadable", result.Unreadable,
		"duration_ms", result.Duration.Milliseconds(),
	)
	return result
}

func (r *runner) extractWithTimeout(ctx context.Context, id string, src Source) models.FileResult {
	ctx, cancel := context.WithTimeout(ctx, r.opts.FileTimeout)
	defer cancel()

	done := make(chan models.FileResult, 1)
	go func() {
		done <- r.extract(ctx, id, src)
	}()

	select {
	case result := <-done:
		return result
	case <-ctx.Done():
		r.opts.Log().Warnw("file timed out", "file", id, "timeout", r.opts.FileTimeout)
		return xlmap.UnreadableFile(id, r.mapping,
			xlmap.NewFileError(id, "timeout", errors.Wrapf(ctx.Err(), "exceeded %s", r.opts.FileTimeout)), r.opts.Options)
	}
}

func (r *runner) extract(ctx context.Context, id string, src Source) (result models.FileResult) {
	defer func() {
		if p := recover(); p != nil {
			r.opts.Log().Errorw("file panicked", "file", id, "panic", p)
			result = xlmap.UnreadableFile(id, r.mapping, xlmap.NewFileError(id, "panic", fmt.Errorf("%v", p)), r.opts.Options)
		}
	}()

	wb, err := src.Open(ctx)
	if err != nil {
		r.opts.Log().Warnw("file unreadable", "file", id, "error", err)
		return xlmap.UnreadableFile(id, r.mapping, xlmap.NewFileError(id, "open", err), r.opts.Options)
	}
	defer wb.Close()
	if err := ctx.Err(); err != nil {
		return xlmap.UnreadableFile(id, r.mapping, xlmap.NewFileError(id, "open", err), r.opts.Options)
	}

	return xlmap.ExtractFile(id, wb, r.mapping, r.opts.Options)
}

func (r *runner) skipped(index int, id string) models.FileResult {
	result := xlmap.UnreadableFile(id, r.mapping, errCancelled, r.opts.Options)
	result.Unreadable = false
	result.Skipped = true
	r.done(index, result)
	return result
}

// done is the single synchronization point per finished file.
func (r *runner) done(index int, result models.FileResult) {
	r.acc.Add(index, xlmap.Records(result))

	r.mu.Lock()
	defer r.mu.Unlock()
	r.completed++
	if r.opts.OnFileDone != nil {
		r.opts.OnFileDone(Event{Index: index, Completed: r.completed, Total: r.total, Result: result})
	}
}

func stats(results []models.FileResult, workers int, started, finished time.Time) models.BatchStats {
	s := models.BatchStats{
		Files:      len(results),
		Workers:    workers,
		StartedAt:  started,
		FinishedAt: finished,
		Duration:   finished.Sub(started),
	}
	for _, r := range results {
		switch {
		case r.Skipped:
			s.SkippedFiles++
		case r.Unreadable:
			s.UnreadableFiles++
		}
		s.Fields += r.Total
		s.Succeeded += r.Succeeded
		s.Failed += r.Failed
	}
	if secs := s.Duration.Seconds(); secs > 0 {
		s.FilesPerSecond = float64(s.Files) / secs
		s.FieldsPerSecond = float64(s.Fields) / secs
	}
	return s
}
