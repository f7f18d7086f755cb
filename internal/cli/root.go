// Package cli implements the fqscores command tree.
package cli

import (
	"context"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/vertti/fqscores/internal/config"
	"github.com/vertti/fqscores/internal/logging"
)

// app carries the state shared by every subcommand once flags and config
// have been resolved.
type app struct {
	cfg *config.Config
	log *slog.Logger
}

// flagKeys maps command-line flags to the config keys they override.
// Only flags set explicitly take precedence over file and env values.
var flagKeys = map[string]string{
	"workers":    "convert.workers",
	"block-size": "convert.block_size",
	"input":      "convert.input",
	"offset":     "quality.offset",
	"log-level":  "logging.level",
	"bins":       "bin.count",
	"bins-x":     "grid.bins_x",
	"bins-y":     "grid.bins_y",
}

// NewRootCmd builds the fqscores command tree.
func NewRootCmd(version string) *cobra.Command {
	a := &app{log: logging.Discard()}

	root := &cobra.Command{
		Use:   "fqscores",
		Short: "Convert and summarize Phred quality scores",
		Long: `fqscores decodes Phred+33 ASCII quality strings into integer scores,
averages them per read, and prepares the binned summaries used to plot
quality across flowcell tiles.

Every command reads plain, gzip or zstd input and writes plain output
unless the output path ends in .gz or .zst.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.String("config", "", "config file (default is ./fqscores.yaml)")
	pf.IntP("workers", "w", 1, "parallel conversion workers")
	pf.Int("block-size", 0, "lines per worker block (default 100000)")
	pf.String("input", "", "input format: lines or fastq (default lines)")
	pf.String("offset", "", "quality offset: 33, 64 or auto (default 33)")
	pf.String("log-level", "", "log level: debug, info, warn, error (default warn)")

	root.AddCommand(
		newConvertCmd(a),
		newAverageCmd(a),
		newMinMaxCmd(a),
		newFreqCmd(a),
		newBinCmd(a),
		newGridCmd(a),
	)
	return root
}

// Execute runs the command tree with args.
func Execute(ctx context.Context, version string, args []string, stdout, stderr io.Writer) error {
	root := NewRootCmd(version)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	return root.ExecuteContext(ctx)
}

func (a *app) init(cmd *cobra.Command) error {
	file, err := cmd.Flags().GetString("config")
	if err != nil {
		return err
	}

	v, err := config.New(file)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	for name, key := range flagKeys {
		if f := flags.Lookup(name); f != nil && f.Changed {
			if err := v.BindPFlag(key, f); err != nil {
				return err
			}
		}
	}

	cfg, err := config.Load(v)
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.log = logging.New(cmd.ErrOrStderr(), cfg.Logging.Level)
	a.log.Debug("configuration loaded", "file", v.ConfigFileUsed(), "workers", cfg.Convert.Workers, "offset", cfg.Quality.Offset)
	return nil
}

func argOr(args []string, i int) string {
	if i < len(args) {
		return args[i]
	}
	return ""
}
