// Package main provides the CLI entry point for xlmap.
package main

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ukaji3/xlmap-go/internal/config"
	"github.com/ukaji3/xlmap-go/internal/logging"
)

var (
	configPath string
	logLevel   string
	logJSON    bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "xlmap",
		Short: "Extract mapped fields from Excel workbooks",
		Long: `xlmap reads a field-to-cell mapping and extracts every mapped field from
a set of workbooks, classifying each failure and reporting suggested fixes.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (yaml, toml or json)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "Emit JSON logs")

	rootCmd.AddCommand(newRunCmd(), newInspectCmd(), newMappingCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// setup resolves configuration and builds the logger for a command.
func setup(cmd *cobra.Command) (*config.Config, *zap.SugaredLogger, error) {
	cfg, err := config.Load(configPath, cmd.Flags())
	if err != nil {
		return nil, nil, err
	}
	log, err := logging.New(cfg.Log.Level, cfg.Log.JSON)
	if err != nil {
		return nil, nil, err
	}
	return cfg, log, nil
}
