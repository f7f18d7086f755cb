package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMinMax(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		values []int
		lo, hi int
	}{
		{"single", []int{7}, 7, 7},
		{"tile numbers", []int{1101, 2316, 1203, 1101}, 1101, 2316},
		{"negative", []int{-4, 3, -10, 0}, -10, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			lo, hi, err := MinMax(tt.values)
			require.NoError(t, err)
			assert.Equal(t, tt.lo, lo)
			assert.Equal(t, tt.hi, hi)
		})
	}
}

func TestMinMax_Empty(t *testing.T) {
	t.Parallel()

	_, _, err := MinMax(nil)
	require.ErrorIs(t, err, ErrNoValues)
}

func TestFrequencies(t *testing.T) {
	t.Parallel()

	freqs := Frequencies([]int{3, 1, 3, -2, 3, 1})
	assert.Equal(t, []Frequency{
		{Value: -2, Count: 1},
		{Value: 1, Count: 2},
		{Value: 3, Count: 3},
	}, freqs)

	assert.Empty(t, Frequencies(nil))
}

func TestSplitByY(t *testing.T) {
	t.Parallel()

	points := []Point{
		{X: 1, Y: 0, Value: 30},
		{X: 2, Y: 5, Value: 31},
		{X: 3, Y: 10, Value: 32},
		{X: 4, Y: 100, Value: 33},
	}

	bins, err := SplitByY(points, 5)
	require.NoError(t, err)

	// width = (100-0)/5 + 5 = 25
	assert.Equal(t, []int{0, 25, 50, 75, 100, 125}, bins.Edges)
	require.Len(t, bins.Bins, 5)
	assert.Len(t, bins.Bins[0], 3)
	assert.Empty(t, bins.Bins[1])
	assert.Empty(t, bins.Bins[2])
	assert.Empty(t, bins.Bins[3])
	assert.Equal(t, []Point{{X: 4, Y: 100, Value: 33}}, bins.Bins[4])
}

func TestSplitByY_EveryPointBinnedOnce(t *testing.T) {
	t.Parallel()

	var points []Point
	for y := 2072; y <= 200941; y += 997 {
		points = append(points, Point{X: y % 2048, Y: y, Value: float64(y % 41)})
	}

	for _, n := range []int{1, 3, 5, 7} {
		bins, err := SplitByY(points, n)
		require.NoError(t, err)

		total := 0
		for i, bin := range bins.Bins {
			for _, p := range bin {
				assert.GreaterOrEqual(t, p.Y, bins.Edges[i])
				assert.Less(t, p.Y, bins.Edges[i+1])
			}
			total += len(bin)
		}
		assert.Equal(t, len(points), total)
	}
}

func TestSplitByY_Invalid(t *testing.T) {
	t.Parallel()

	_, err := SplitByY([]Point{{Y: 1}}, 0)
	require.Error(t, err)

	_, err = SplitByY(nil, 5)
	require.ErrorIs(t, err, ErrNoValues)
}

func TestBinnedMean2D(t *testing.T) {
	t.Parallel()

	xs := []float64{0, 0, 10, 10}
	ys := []float64{0, 0, 0, 10}
	ws := []float64{30, 40, 20, 10}

	grid, err := BinnedMean2D(xs, ys, ws, 2, 2)
	require.NoError(t, err)

	assert.Equal(t, []float64{0, 5, 10}, grid.XEdges)
	assert.Equal(t, []float64{0, 5, 10}, grid.YEdges)
	// Row 0 is low y: (x0,y0) mean 35, (x1,y0) 20. Row 1: (x0,y1) empty, (x1,y1) 10.
	// Empty bin gets the median of {35, 20, 10} = 20.
	assert.Equal(t, [][]float64{{35, 20}, {20, 10}}, grid.Values)
	assert.Equal(t, 1, grid.Empty)
	assert.Equal(t, [4]float64{0, 10, 0, 10}, grid.Extent())
}

func TestBinnedMean2D_DegenerateAxis(t *testing.T) {
	t.Parallel()

	grid, err := BinnedMean2D([]float64{5, 5}, []float64{1, 2}, []float64{10, 20}, 1, 2)
	require.NoError(t, err)

	assert.Equal(t, []float64{4.5, 5.5}, grid.XEdges)
	assert.Equal(t, [][]float64{{10}, {20}}, grid.Values)
	assert.Zero(t, grid.Empty)
}

func TestBinnedMean2D_Invalid(t *testing.T) {
	t.Parallel()

	_, err := BinnedMean2D([]float64{1}, []float64{1, 2}, []float64{1}, 2, 2)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "length mismatch")

	_, err = BinnedMean2D(nil, nil, nil, 2, 2)
	require.ErrorIs(t, err, ErrNoValues)

	_, err = BinnedMean2D([]float64{1}, []float64{1}, []float64{1}, 0, 2)
	require.Error(t, err)
}

func TestMedian(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, 2.0, Median([]float64{3, 1, 2}), 1e-12)
	assert.InDelta(t, 2.5, Median([]float64{4, 1, 3, 2}), 1e-12)
	assert.Zero(t, Median(nil))

	values := []float64{3, 1, 2}
	Median(values)
	assert.Equal(t, []float64{3, 1, 2}, values)
}

func TestFloat64s(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []float64{1, -2, 3}, Float64s([]int{1, -2, 3}))
}
