package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/ukaji3/xlmap-go/pkg/xlmap/batch"
	"github.com/ukaji3/xlmap-go/pkg/xlmap/mapping"
	"github.com/ukaji3/xlmap-go/pkg/xlmap/models"
	"github.com/ukaji3/xlmap-go/pkg/xlmap/output"
	"github.com/ukaji3/xlmap-go/pkg/xlmap/parser"
	"github.com/ukaji3/xlmap-go/pkg/xlmap/report"
	"github.com/ukaji3/xlmap-go/pkg/xlmap/store"
)

var (
	mappingPath  string
	outputPath   string
	csvPath      string
	manifestPath string
	inputDir     string
	patterns     []string
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [input.xlsx...]",
		Short: "Extract mapped fields from workbooks",
		Long: `Extract every field of a mapping from each input workbook. Inputs are
the positional files plus those found with --dir and listed in --manifest.`,
		RunE: runExtract,
	}

	f := cmd.Flags()
	f.StringVarP(&mappingPath, "mapping", "m", "", "Mapping file (.csv, .xlsx or .yaml)")
	f.StringVarP(&outputPath, "output", "o", "", "Output JSON file (default: stdout)")
	f.StringVar(&csvPath, "csv", "", "Write one CSV row per file")
	f.StringVar(&manifestPath, "manifest", "", "JSON list of files to process")
	f.StringVar(&inputDir, "dir", "", "Process every workbook under this directory")
	f.StringSliceVar(&patterns, "pattern", batch.DefaultPatterns, "File patterns used with --dir")
	f.Int("workers", batch.DefaultMaxWorkers, "Maximum files processed at once")
	f.Duration("file-timeout", 0, "Per-file timeout (0 disables)")
	f.Int("top-errors", report.DefaultTopN, "Length of the most common errors list")
	f.Float64("similarity-threshold", parser.DefaultSimilarityThreshold, "Minimum score for sheet name suggestions")
	f.String("mapping-sheet", "", "Sheet holding the mapping in an xlsx mapping file")
	f.Bool("clean-names", false, "Normalize field names (e.g. 'Units - Total' to UNITS_TOTAL)")
	f.Bool("allow-duplicates", false, "Keep the first of duplicate field names instead of failing")
	f.Bool("pretty", false, "Pretty-print JSON output")
	f.String("db", "", "Also save results to this SQLite database")
	_ = cmd.MarkFlagRequired("mapping")

	return cmd
}

func runExtract(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup(cmd)
	if err != nil {
		return err
	}
	defer log.Sync()

	set, err := mapping.LoadFile(mappingPath, cfg.MappingOptions(log))
	if err != nil {
		return fmt.Errorf("mapping: %w", err)
	}

	sources, err := collectSources(args)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Results go to stdout unless --output is set; keep the terminal UI off it.
	ui := io.Writer(os.Stdout)
	if outputPath == "" {
		ui = os.Stderr
	}

	opts := cfg.BatchOptions(log)
	var bar *pterm.ProgressbarPrinter
	if outputPath != "" {
		bar, _ = pterm.DefaultProgressbar.WithTotal(len(sources)).WithTitle("Extracting").Start()
		opts.OnFileDone = func(batch.Event) { bar.Increment() }
	}

	result, err := batch.Run(ctx, sources, set, opts)
	if bar != nil {
		_, _ = bar.Stop()
	}
	if err != nil {
		return err
	}

	jsonData, err := output.ToJSON(result, cfg.Output.Pretty)
	if err != nil {
		return fmt.Errorf("serialization failed: %w", err)
	}
	if outputPath != "" {
		if err := os.WriteFile(outputPath, jsonData, 0644); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	} else {
		fmt.Println(string(jsonData))
	}

	if csvPath != "" {
		var buf bytes.Buffer
		if err := output.WriteCSV(&buf, result, set); err != nil {
			return fmt.Errorf("failed to build csv: %w", err)
		}
		if err := os.WriteFile(csvPath, buf.Bytes(), 0644); err != nil {
			return fmt.Errorf("failed to write csv: %w", err)
		}
	}

	if cfg.DB.Path != "" {
		db, err := store.Open(cfg.DB.Path, log)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := saveRun(ctx, db, result); err != nil {
			return err
		}
	}

	printSummary(ui, result)
	return nil
}

// saveRun stores the run even after an interrupt, so a cancelled run keeps
// the files it finished.
func saveRun(ctx context.Context, sink store.Sink, result *models.BatchResult) error {
	return sink.Save(context.WithoutCancel(ctx), result)
}

func collectSources(args []string) ([]batch.Source, error) {
	var sources []batch.Source
	if manifestPath != "" {
		listed, err := batch.LoadManifest(manifestPath)
		if err != nil {
			return nil, err
		}
		sources = append(sources, listed...)
	}
	if inputDir != "" {
		found, err := batch.DiscoverDir(inputDir, patterns)
		if err != nil {
			return nil, err
		}
		sources = append(sources, found...)
	}
	for _, path := range args {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return nil, fmt.Errorf("file not found: %s", path)
		}
	}
	return append(sources, batch.FileSources(args...)...), nil
}

func printSummary(w io.Writer, result *models.BatchResult) {
	st := result.Stats
	data := pterm.TableData{
		{"Files", "Unreadable", "Skipped", "Fields", "Succeeded", "Failed", "Duration"},
		{
			fmt.Sprint(st.Files),
			fmt.Sprint(st.UnreadableFiles),
			fmt.Sprint(st.SkippedFiles),
			fmt.Sprint(st.Fields),
			fmt.Sprint(st.Succeeded),
			fmt.Sprint(st.Failed),
			st.Duration.Round(time.Millisecond).String(),
		},
	}
	if table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender(); err == nil {
		pterm.Fprintln(w, table)
	}

	rep := result.Report
	if rep.TotalErrors == 0 {
		pterm.Fprintln(w, pterm.Success.Sprintf("Run %s: all fields extracted", result.RunID))
		return
	}

	for _, c := range models.Categories {
		if stat, ok := rep.Breakdown[c]; ok {
			pterm.Fprintln(w, pterm.Gray(fmt.Sprintf("  %-22s %6d  %5.1f%%", c, stat.Count, stat.Percentage)))
		}
	}
	for _, r := range rep.Recommendations {
		pterm.Fprintln(w, pterm.Warning.Sprint(r))
	}
	if st.Cancelled {
		pterm.Fprintln(w, pterm.Error.Sprintf("Run %s was cancelled; %d files skipped", result.RunID, st.SkippedFiles))
	}
}
