package main

import (
	"fmt"
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/ukaji3/xlmap-go/pkg/xlmap/parser"
)

func newInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect [input.xlsx]",
		Short: "List the sheets of a workbook with their used range",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(args[0]); os.IsNotExist(err) {
				return fmt.Errorf("file not found: %s", args[0])
			}
			sheets, err := parser.InspectFile(args[0])
			if err != nil {
				return err
			}

			data := pterm.TableData{{"Sheet", "Used range", "Non-empty cells"}}
			for _, s := range sheets {
				data = append(data, []string{s.Name, s.UsedRange, fmt.Sprint(s.NonEmptyCells)})
			}
			return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
		},
	}
}
