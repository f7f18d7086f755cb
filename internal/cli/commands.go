package cli

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vertti/fqscores/internal/convert"
	"github.com/vertti/fqscores/internal/fileio"
	"github.com/vertti/fqscores/internal/format"
	"github.com/vertti/fqscores/internal/stats"
)

func newConvertCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "convert [input] [output]",
		Short: "Write one comma-separated score list per quality string",
		Example: `  fqscores convert quality_scores.txt converted_quality_scores.txt
  fqscores convert --input fastq reads.fastq.gz scores.txt.zst
  cat quality_scores.txt | fqscores convert > converted.txt`,
		Args: cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runConvert(cmd, args, convert.ModeScores)
		},
	}
}

func newAverageCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "average [input] [output]",
		Short: "Write the mean score of each quality string, one per line",
		Example: `  fqscores average quality_scores.txt average_qas.txt`,
		Args: cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runConvert(cmd, args, convert.ModeAverage)
		},
	}
}

func (a *app) runConvert(cmd *cobra.Command, args []string, mode convert.Mode) (err error) {
	inPath, outPath := argOr(args, 0), argOr(args, 1)

	r, closeIn, err := fileio.OpenInput(inPath)
	if err != nil {
		return err
	}
	defer closeIn()

	w, closeOut, err := fileio.OpenOutput(outPath)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := closeOut(); err == nil && cerr != nil {
			err = fmt.Errorf("writing output: %w", cerr)
		}
	}()

	summary, err := convert.Run(cmd.Context(), r, w, mode, a.cfg.Options())
	if err != nil {
		return err
	}

	a.log.Info("conversion finished",
		"command", cmd.Name(),
		"input", displayPath(inPath),
		"output", displayPath(outPath),
		"lines", summary.Lines,
		"blocks", summary.Blocks,
		"encoding", summary.Encoding.String())
	return nil
}

func newMinMaxCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "minmax <file>",
		Short: "Print the largest and smallest integer in a one-per-line file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			values, err := readInts(args[0])
			if err != nil {
				return err
			}
			lo, hi, err := stats.MinMax(values)
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Final Max: %d\n", hi)
			fmt.Fprintf(out, "Final Min: %d\n", lo)
			a.log.Debug("scanned values", "file", args[0], "count", len(values))
			return nil
		},
	}
}

func newFreqCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "freq <file>",
		Short: "Print how often each integer occurs in a one-per-line file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			values, err := readInts(args[0])
			if err != nil {
				return err
			}
			lo, hi, err := stats.MinMax(values)
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Final Max: %d\n", hi)
			fmt.Fprintf(out, "Final Min: %d\n", lo)
			fmt.Fprintln(out, "i  freq")
			freqs := stats.Frequencies(values)
			for _, f := range freqs {
				fmt.Fprintf(out, "%d: %d\n", f.Value, f.Count)
			}
			a.log.Debug("counted values", "file", args[0], "count", len(values), "distinct", len(freqs))
			return nil
		},
	}
}

func newBinCmd(a *app) *cobra.Command {
	var outDir string

	cmd := &cobra.Command{
		Use:   "bin <x_coord file> <y_coord file> <qa file>",
		Short: "Split reads into bands of y coordinate",
		Long: `bin splits parallel x-coordinate, y-coordinate and averaged-quality files
into bands of y. Band N is written as binN_x_coord.txt, binN_y_coord.txt and
binN_qa.txt in the output directory. Reading stops at the end of the
shortest input.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			points, err := a.readPoints(args[0], args[1], args[2])
			if err != nil {
				return err
			}

			bins, err := stats.SplitByY(points, a.cfg.Bin.Count)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Binning will be done based on %s\n", args[1])
			fmt.Fprintf(out, "Max of %s: %d\n", args[1], maxY(points))
			fmt.Fprintf(out, "Min of %s: %d\n", args[1], bins.Edges[0])
			fmt.Fprintf(out, "Bins are: %s\n", describeEdges(bins.Edges))

			for i, bin := range bins.Bins {
				if err := writeBin(outDir, i+1, bin); err != nil {
					return err
				}
				a.log.Info("wrote bin", "bin", i+1, "from", bins.Edges[i], "to", bins.Edges[i+1], "points", len(bin))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&outDir, "out-dir", "d", ".", "directory for the bin files")
	cmd.Flags().IntP("bins", "n", 5, "number of y bands")
	return cmd
}

func newGridCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "grid <x_coord file> <y_coord file> <qa file> [output]",
		Short: "Average quality over a 2D grid of tile coordinates",
		Long: `grid bins reads by x and y coordinate into equal-width cells and writes
the mean averaged quality of each cell as CSV, one row per y cell from the
lowest y upward. Cells without reads hold the median of the other cells.`,
		Args: cobra.RangeArgs(3, 4),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			xs, err := readInts(args[0])
			if err != nil {
				return err
			}
			ys, err := readInts(args[1])
			if err != nil {
				return err
			}
			qas, err := readAverages(args[2])
			if err != nil {
				return err
			}

			grid, err := stats.BinnedMean2D(stats.Float64s(xs), stats.Float64s(ys), qas, a.cfg.Grid.BinsX, a.cfg.Grid.BinsY)
			if err != nil {
				return err
			}

			outPath := argOr(args, 3)
			w, closeOut, err := fileio.OpenOutput(outPath)
			if err != nil {
				return err
			}
			defer func() {
				if cerr := closeOut(); err == nil && cerr != nil {
					err = fmt.Errorf("writing output: %w", cerr)
				}
			}()

			if err := format.WriteGrid(w, grid.Values); err != nil {
				return fmt.Errorf("writing grid: %w", err)
			}

			extent := grid.Extent()
			a.log.Info("grid written",
				"output", displayPath(outPath),
				"bins_x", a.cfg.Grid.BinsX,
				"bins_y", a.cfg.Grid.BinsY,
				"empty", grid.Empty,
				"extent", fmt.Sprintf("[%g, %g, %g, %g]", extent[0], extent[1], extent[2], extent[3]))
			return nil
		},
	}
	cmd.Flags().Int("bins-x", 100, "number of x cells")
	cmd.Flags().Int("bins-y", 100, "number of y cells")
	return cmd
}

func readInts(path string) ([]int, error) {
	r, closeIn, err := fileio.OpenInput(path)
	if err != nil {
		return nil, err
	}
	defer closeIn()

	values, err := format.ReadInts(r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return values, nil
}

func readAverages(path string) ([]float64, error) {
	r, closeIn, err := fileio.OpenInput(path)
	if err != nil {
		return nil, err
	}
	defer closeIn()

	values, err := format.ReadAverages(r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return values, nil
}

func (a *app) readPoints(xPath, yPath, qaPath string) ([]stats.Point, error) {
	xs, err := readInts(xPath)
	if err != nil {
		return nil, err
	}
	ys, err := readInts(yPath)
	if err != nil {
		return nil, err
	}
	qas, err := readAverages(qaPath)
	if err != nil {
		return nil, err
	}

	n := min(len(xs), len(ys), len(qas))
	if n != len(xs) || n != len(ys) || n != len(qas) {
		a.log.Warn("input lengths differ, truncating to shortest",
			"x", len(xs), "y", len(ys), "qa", len(qas), "kept", n)
	}

	points := make([]stats.Point, n)
	for i := range n {
		points[i] = stats.Point{X: xs[i], Y: ys[i], Value: qas[i]}
	}
	return points, nil
}

func writeBin(dir string, n int, points []stats.Point) error {
	xs := make([]int, len(points))
	ys := make([]int, len(points))
	qas := make([]float64, len(points))
	for i, p := range points {
		xs[i], ys[i], qas[i] = p.X, p.Y, p.Value
	}

	files := []struct {
		suffix string
		write  func(io.Writer) error
	}{
		{"x_coord", func(w io.Writer) error { return format.WriteInts(w, xs) }},
		{"y_coord", func(w io.Writer) error { return format.WriteInts(w, ys) }},
		{"qa", func(w io.Writer) error { return format.WriteAverages(w, qas) }},
	}

	for _, f := range files {
		path := filepath.Join(dir, fmt.Sprintf("bin%d_%s.txt", n, f.suffix))
		if err := writeFile(path, f.write); err != nil {
			return err
		}
	}
	return nil
}

func writeFile(path string, write func(io.Writer) error) error {
	w, closeOut, err := fileio.OpenOutput(path)
	if err != nil {
		return err
	}
	if err := write(w); err != nil {
		_ = closeOut()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := closeOut(); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func maxY(points []stats.Point) int {
	hi := points[0].Y
	for _, p := range points[1:] {
		hi = max(hi, p.Y)
	}
	return hi
}

func describeEdges(edges []int) string {
	parts := make([]string, 0, len(edges)-1)
	for i := 1; i < len(edges); i++ {
		parts = append(parts, fmt.Sprintf("[ %d, %d]", edges[i-1], edges[i]))
	}
	return strings.Join(parts, ", ")
}

func displayPath(path string) string {
	if fileio.IsStdio(path) {
		return "-"
	}
	return path
}
