// Package config loads xlmap settings from defaults, an optional config
// file, XLMAP_ environment variables and command-line flags, in increasing
// order of precedence.
package config

import (
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/ukaji3/xlmap-go/pkg/xlmap/batch"
	"github.com/ukaji3/xlmap-go/pkg/xlmap/mapping"
	"github.com/ukaji3/xlmap-go/pkg/xlmap/parser"
	"github.com/ukaji3/xlmap-go/pkg/xlmap/report"
)

// EnvPrefix prefixes environment overrides, e.g. XLMAP_MAPPING_SHEET.
const EnvPrefix = "XLMAP"

// Config is the resolved configuration.
type Config struct {
	Workers             int           `mapstructure:"workers"`
	FileTimeout         time.Duration `mapstructure:"file_timeout"`
	TopErrors           int           `mapstructure:"top_errors"`
	SimilarityThreshold float64       `mapstructure:"similarity_threshold"`
	Mapping             MappingConfig `mapstructure:"mapping"`
	Log                 LogConfig     `mapstructure:"log"`
	Output              OutputConfig  `mapstructure:"output"`
	DB                  DBConfig      `mapstructure:"db"`
}

// MappingConfig controls mapping loading.
type MappingConfig struct {
	Sheet           string `mapstructure:"sheet"`
	CleanNames      bool   `mapstructure:"clean_names"`
	AllowDuplicates bool   `mapstructure:"allow_duplicates"`
}

// LogConfig controls logging.
type LogConfig struct {
	Level string `mapstructure:"level"`
	JSON  bool   `mapstructure:"json"`
}

// OutputConfig controls result serialization.
type OutputConfig struct {
	Pretty bool `mapstructure:"pretty"`
}

// DBConfig controls persistence. An empty path disables it.
type DBConfig struct {
	Path string `mapstructure:"path"`
}

// flagKeys maps config keys to the CLI flags that override them.
var flagKeys = map[string]string{
	"workers":                  "workers",
	"file_timeout":             "file-timeout",
	"top_errors":               "top-errors",
	"similarity_threshold":     "similarity-threshold",
	"mapping.sheet":            "mapping-sheet",
	"mapping.clean_names":      "clean-names",
	"mapping.allow_duplicates": "allow-duplicates",
	"log.level":                "log-level",
	"log.json":                 "log-json",
	"output.pretty":            "pretty",
	"db.path":                  "db",
}

// SetDefaults registers the default of every key.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("workers", batch.DefaultMaxWorkers)
	v.SetDefault("file_timeout", time.Duration(0))
	v.SetDefault("top_errors", report.DefaultTopN)
	v.SetDefault("similarity_threshold", parser.DefaultSimilarityThreshold)
	v.SetDefault("mapping.sheet", "")
	v.SetDefault("mapping.clean_names", false)
	v.SetDefault("mapping.allow_duplicates", false)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.json", false)
	v.SetDefault("output.pretty", false)
	v.SetDefault("db.path", "")
}

// Load resolves the configuration. configPath may be empty. flags may be nil;
// only flags that exist in the set are bound.
func Load(configPath string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	SetDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "failed to read config file %s", configPath)
		}
	}

	if flags != nil {
		for key, name := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, errors.Wrapf(err, "failed to bind flag --%s", name)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	switch {
	case c.Workers < 1:
		return errors.Newf("workers must be at least 1, got %d", c.Workers)
	case c.FileTimeout < 0:
		return errors.Newf("file_timeout must not be negative, got %s", c.FileTimeout)
	case c.TopErrors < 1:
		return errors.Newf("top_errors must be at least 1, got %d", c.TopErrors)
	case c.SimilarityThreshold <= 0 || c.SimilarityThreshold > 1:
		return errors.Newf("similarity_threshold must be in (0, 1], got %g", c.SimilarityThreshold)
	}
	return nil
}

// MappingOptions returns the loader options.
func (c *Config) MappingOptions(logger *zap.SugaredLogger) mapping.Options {
	return mapping.Options{
		Sheet:           c.Mapping.Sheet,
		CleanNames:      c.Mapping.CleanNames,
		AllowDuplicates: c.Mapping.AllowDuplicates,
		Logger:          logger,
	}
}

// BatchOptions returns the run options.
func (c *Config) BatchOptions(logger *zap.SugaredLogger) batch.Options {
	opts := batch.DefaultOptions()
	opts.MaxWorkers = c.Workers
	opts.FileTimeout = c.FileTimeout
	opts.TopN = c.TopErrors
	opts.SimilarityThreshold = c.SimilarityThreshold
	opts.Logger = logger
	return opts
}
