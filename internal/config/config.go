// Package config loads fqscores settings from defaults, an optional YAML
// file and FQSCORES_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/vertti/fqscores/internal/convert"
	"github.com/vertti/fqscores/internal/quality"
)

// EnvPrefix is prepended to environment variable overrides, e.g.
// FQSCORES_CONVERT_WORKERS for convert.workers.
const EnvPrefix = "FQSCORES"

// Config represents the complete fqscores configuration
type Config struct {
	Convert ConvertConfig `mapstructure:"convert"`
	Quality QualityConfig `mapstructure:"quality"`
	Bin     BinConfig     `mapstructure:"bin"`
	Grid    GridConfig    `mapstructure:"grid"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// ConvertConfig controls the conversion pipeline
type ConvertConfig struct {
	// Workers is the number of parallel conversion workers (1 = sequential)
	Workers int `mapstructure:"workers"`
	// BlockSize is the number of lines handed to a worker at once
	BlockSize int `mapstructure:"block_size"`
	// Input is "lines" for one quality string per line or "fastq"
	Input string `mapstructure:"input"`
}

// QualityConfig controls how characters are decoded
type QualityConfig struct {
	// Offset is "33", "64" or "auto"
	Offset string `mapstructure:"offset"`
}

// BinConfig controls y-coordinate binning
type BinConfig struct {
	Count int `mapstructure:"count"`
}

// GridConfig controls the 2D binned-mean grid
type GridConfig struct {
	BinsX int `mapstructure:"bins_x"`
	BinsY int `mapstructure:"bins_y"`
}

// LoggingConfig controls diagnostic output
type LoggingConfig struct {
	// Level is one of debug, info, warn, error
	Level string `mapstructure:"level"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Convert: ConvertConfig{
			Workers:   1,
			BlockSize: convert.DefaultBlockSize,
			Input:     "lines",
		},
		Quality: QualityConfig{Offset: "33"},
		Bin:     BinConfig{Count: 5},
		Grid:    GridConfig{BinsX: 100, BinsY: 100},
		Logging: LoggingConfig{Level: "warn"},
	}
}

// SetDefaults registers default values with v
func SetDefaults(v *viper.Viper) {
	defaults := Default()

	v.SetDefault("convert.workers", defaults.Convert.Workers)
	v.SetDefault("convert.block_size", defaults.Convert.BlockSize)
	v.SetDefault("convert.input", defaults.Convert.Input)
	v.SetDefault("quality.offset", defaults.Quality.Offset)
	v.SetDefault("bin.count", defaults.Bin.Count)
	v.SetDefault("grid.bins_x", defaults.Grid.BinsX)
	v.SetDefault("grid.bins_y", defaults.Grid.BinsY)
	v.SetDefault("logging.level", defaults.Logging.Level)
}

// New returns a viper instance with defaults and environment overrides
// registered. If file is non-empty it must exist; otherwise ./fqscores.yaml
// is read when present.
func New(file string) (*viper.Viper, error) {
	v := viper.New()
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", file, err)
		}
		return v, nil
	}

	v.SetConfigName("fqscores")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}
	return v, nil
}

// Load unmarshals and validates the configuration held by v
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, errs
	}
	return &cfg, nil
}

// Encoding returns the configured decoding scheme and whether it should be
// detected from the data.
func (c *QualityConfig) Encoding() (quality.Encoding, bool) {
	switch c.Offset {
	case "64":
		return quality.EncodingPhred64, false
	case "auto":
		return quality.EncodingPhred33, true
	default:
		return quality.EncodingPhred33, false
	}
}

// Source returns the configured input format
func (c *ConvertConfig) Source() convert.SourceFormat {
	if c.Input == "fastq" {
		return convert.SourceFASTQ
	}
	return convert.SourceLines
}

// Options builds conversion options from the configuration
func (c *Config) Options() *convert.Options {
	enc, detect := c.Quality.Encoding()
	return &convert.Options{
		BlockSize: c.Convert.BlockSize,
		Workers:   c.Convert.Workers,
		Encoding:  enc,
		Detect:    detect,
		Source:    c.Convert.Source(),
	}
}
