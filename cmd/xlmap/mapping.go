package main

import (
	"bytes"
	"fmt"
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/ukaji3/xlmap-go/pkg/xlmap/mapping"
	"github.com/ukaji3/xlmap-go/pkg/xlmap/output"
)

var summaryPath string

func newMappingCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mapping [mapping.csv]",
		Short: "Validate a mapping file",
		Args:  cobra.ExactArgs(1),
		RunE:  validateMapping,
	}
	cmd.Flags().StringVar(&summaryPath, "summary", "", "Write the validated fields to this CSV file")
	cmd.Flags().String("mapping-sheet", "", "Sheet holding the mapping in an xlsx mapping file")
	cmd.Flags().Bool("clean-names", false, "Normalize field names")
	cmd.Flags().Bool("allow-duplicates", false, "Keep the first of duplicate field names instead of failing")
	return cmd
}

func validateMapping(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup(cmd)
	if err != nil {
		return err
	}
	defer log.Sync()

	set, err := mapping.LoadFile(args[0], cfg.MappingOptions(log))
	if err != nil {
		return err
	}

	pterm.Success.Printf("%s: %d fields in %d categories\n", args[0], set.Len(), len(set.Categories()))
	for _, d := range set.Duplicates {
		pterm.Warning.Printf("row %d: duplicate field %s ignored\n", d.Row, d.FieldName)
	}

	if summaryPath != "" {
		var buf bytes.Buffer
		if err := output.WriteMappingSummary(&buf, set); err != nil {
			return err
		}
		if err := os.WriteFile(summaryPath, buf.Bytes(), 0644); err != nil {
			return fmt.Errorf("failed to write summary: %w", err)
		}
	}
	return nil
}
