// Package stats computes the summaries that feed quality-score plots:
// value ranges, value frequencies, coordinate binning and 2D binned means.
package stats

import (
	"errors"
	"fmt"
	"maps"
	"slices"
)

// ErrNoValues is returned when a summary is requested over no values.
var ErrNoValues = errors.New("no values")

// MinMax returns the smallest and largest of values.
func MinMax(values []int) (lo, hi int, err error) {
	if len(values) == 0 {
		return 0, 0, ErrNoValues
	}
	lo, hi = values[0], values[0]
	for _, v := range values[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi, nil
}

// Frequency is the number of times Value occurs.
type Frequency struct {
	Value int
	Count int
}

// Frequencies counts occurrences of each distinct value, ascending by value.
func Frequencies(values []int) []Frequency {
	counts := make(map[int]int)
	for _, v := range values {
		counts[v]++
	}

	keys := slices.Sorted(maps.Keys(counts))
	freqs := make([]Frequency, len(keys))
	for i, k := range keys {
		freqs[i] = Frequency{Value: k, Count: counts[k]}
	}
	return freqs
}

// Point is one read's tile position and its averaged quality.
type Point struct {
	X     int
	Y     int
	Value float64
}

// YBins is the result of SplitByY.
type YBins struct {
	// Edges has len(Bins)+1 entries; bin i covers [Edges[i], Edges[i+1]).
	Edges []int
	Bins  [][]Point
}

// SplitByY partitions points into n bins along y.
// The bin width is (max-min)/n + n, which always covers the full y range.
func SplitByY(points []Point, n int) (*YBins, error) {
	if n <= 0 {
		return nil, fmt.Errorf("bin count must be positive, got %d", n)
	}
	if len(points) == 0 {
		return nil, ErrNoValues
	}

	lo, hi := points[0].Y, points[0].Y
	for _, p := range points[1:] {
		lo = min(lo, p.Y)
		hi = max(hi, p.Y)
	}

	width := (hi-lo)/n + n
	edges := make([]int, n+1)
	for i := range edges {
		edges[i] = lo + i*width
	}

	bins := make([][]Point, n)
	for _, p := range points {
		i := (p.Y - lo) / width
		if i >= 0 && i < n {
			bins[i] = append(bins[i], p)
		}
	}
	return &YBins{Edges: edges, Bins: bins}, nil
}

// Grid holds per-bin means over a 2D coordinate space.
type Grid struct {
	XEdges []float64
	YEdges []float64
	// Values is indexed [y][x]; row 0 is the lowest y bin.
	Values [][]float64
	// Empty is the number of bins that held no points and were filled
	// with the median.
	Empty int
}

// Extent returns the grid bounds as xmin, xmax, ymin, ymax.
func (g *Grid) Extent() [4]float64 {
	return [4]float64{
		g.XEdges[0], g.XEdges[len(g.XEdges)-1],
		g.YEdges[0], g.YEdges[len(g.YEdges)-1],
	}
}

// BinnedMean2D bins (xs[i], ys[i]) into binsX by binsY equal-width bins
// and averages ws within each bin. Bins that receive no points are set to
// the median of the non-empty bin means.
func BinnedMean2D(xs, ys, ws []float64, binsX, binsY int) (*Grid, error) {
	if len(xs) != len(ys) || len(xs) != len(ws) {
		return nil, fmt.Errorf("length mismatch: %d x, %d y, %d values", len(xs), len(ys), len(ws))
	}
	if len(xs) == 0 {
		return nil, ErrNoValues
	}
	if binsX <= 0 || binsY <= 0 {
		return nil, fmt.Errorf("bin counts must be positive, got %dx%d", binsX, binsY)
	}

	xEdges := linearEdges(xs, binsX)
	yEdges := linearEdges(ys, binsY)

	sums := make([][]float64, binsY)
	counts := make([][]int, binsY)
	for j := range sums {
		sums[j] = make([]float64, binsX)
		counts[j] = make([]int, binsX)
	}

	for i := range xs {
		bx := binIndex(xEdges, xs[i])
		by := binIndex(yEdges, ys[i])
		sums[by][bx] += ws[i]
		counts[by][bx]++
	}

	means := make([]float64, 0, binsX*binsY)
	for j := range sums {
		for k := range sums[j] {
			if counts[j][k] > 0 {
				sums[j][k] /= float64(counts[j][k])
				means = append(means, sums[j][k])
			}
		}
	}
	fill := Median(means)

	empty := 0
	for j := range sums {
		for k := range sums[j] {
			if counts[j][k] == 0 {
				sums[j][k] = fill
				empty++
			}
		}
	}

	return &Grid{XEdges: xEdges, YEdges: yEdges, Values: sums, Empty: empty}, nil
}

// linearEdges returns n+1 evenly spaced edges over the range of values.
// A zero-width range is widened to +/-0.5.
func linearEdges(values []float64, n int) []float64 {
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	if lo == hi {
		lo -= 0.5
		hi += 0.5
	}

	edges := make([]float64, n+1)
	step := (hi - lo) / float64(n)
	for i := range edges {
		edges[i] = lo + float64(i)*step
	}
	edges[n] = hi
	return edges
}

// binIndex returns the bin holding v. The rightmost edge belongs to the
// last bin.
func binIndex(edges []float64, v float64) int {
	last := len(edges) - 2
	i, found := slices.BinarySearch(edges, v)
	if !found {
		i--
	}
	return max(0, min(i, last))
}

// Median returns the median of values, or 0 when values is empty.
// values is not modified.
func Median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := slices.Clone(values)
	slices.Sort(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}

// Float64s converts integer coordinates for BinnedMean2D.
func Float64s(values []int) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = float64(v)
	}
	return out
}
