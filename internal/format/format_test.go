package format

import (
	"bytes"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vertti/fqscores/internal/quality"
)

func TestEncodeAsDelimitedText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    [][]int
		expected string
	}{
		{
			name:     "single array",
			input:    [][]int{{0, 2, 40}},
			expected: "0,2,40\n",
		},
		{
			name:     "several arrays",
			input:    [][]int{{40, 40}, {0}, {-1, 93}},
			expected: "40,40\n0\n-1,93\n",
		},
		{
			name:     "empty array is an empty line",
			input:    [][]int{{1}, {}, {2}},
			expected: "1\n\n2\n",
		},
		{
			name:     "no arrays",
			input:    nil,
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, EncodeAsDelimitedText(tt.input))

			var buf bytes.Buffer
			require.NoError(t, WriteDelimited(&buf, tt.input))
			assert.Equal(t, tt.expected, buf.String())
		})
	}
}

func TestDelimited_RoundTrip(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"!",
		"IIIIIIIIII",
		"!\"#$%&'()*+,-./0123456789:;<=>?@ABCDEFGHIJKLMNOPQRSTUVWXYZ[\\]^_`abcdefghijklmnopqrstuvwxyz{|}~",
		"CCCFFFFFHHHHHJJJJJJJJJJJJIJJJJJJJJJJJJJJJJJJJJJIJJJJHHHHHFFFFFEEEEEEDDDDDDDDDDDDDDDDDDDDDDDDDDDDDDDD",
		" ",
	}

	for _, s := range inputs {
		want := quality.Decode(s)
		text := EncodeAsDelimitedText([][]int{want})
		assert.NotContains(t, strings.TrimSuffix(text, "\n"), "\n")

		got, err := ReadDelimited(strings.NewReader(text))
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, want, got[0], "input %q", s)
	}
}

func TestParseDelimitedLine_Invalid(t *testing.T) {
	t.Parallel()

	_, err := ParseDelimitedLine("1,x,3")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "field 2")

	_, err = ReadDelimited(strings.NewReader("1,2\n3,,4\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
}

func TestFormatFloat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    float64
		expected string
	}{
		{0.0, "0.0"},
		{40.0, "40.0"},
		{-1.0, "-1.0"},
		{37.25, "37.25"},
		{35.93, "35.93"},
		{1.0 / 3.0, "0.3333333333333333"},
		{0.00001, "1e-05"},
		{1e16, "1e+16"},
		{math.NaN(), "nan"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, FormatFloat(tt.input))
		})
	}
}

func TestAverages_RoundTrip(t *testing.T) {
	t.Parallel()

	values := []float64{0, 40, 37.25, 1.0 / 3.0, -2.5}

	var buf bytes.Buffer
	require.NoError(t, WriteAverages(&buf, values))
	assert.Equal(t, "0.0\n40.0\n37.25\n0.3333333333333333\n-2.5\n", buf.String())

	got, err := ReadAverages(&buf)
	require.NoError(t, err)
	assert.Equal(t, values, got)
}

func TestInts_RoundTrip(t *testing.T) {
	t.Parallel()

	values := []int{2072, 41846, -5, 0, 200941}

	var buf bytes.Buffer
	require.NoError(t, WriteInts(&buf, values))

	got, err := ReadInts(&buf)
	require.NoError(t, err)
	assert.Equal(t, values, got)
}

func TestReadInts_Invalid(t *testing.T) {
	t.Parallel()

	_, err := ReadInts(strings.NewReader("1\n2\nthree\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 3")
}

func TestGrid_RoundTrip(t *testing.T) {
	t.Parallel()

	rows := [][]float64{{1, 2.5}, {36, 40}}

	var buf bytes.Buffer
	require.NoError(t, WriteGrid(&buf, rows))
	assert.Equal(t, "1.0,2.5\n36.0,40.0\n", buf.String())

	got, err := ReadGrid(&buf)
	require.NoError(t, err)
	assert.Equal(t, rows, got)
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestWriters_PropagateErrors(t *testing.T) {
	t.Parallel()

	require.Error(t, WriteDelimited(failingWriter{}, [][]int{{1}}))
	require.Error(t, WriteAverages(failingWriter{}, []float64{1}))
	require.Error(t, WriteInts(failingWriter{}, []int{1}))
	require.Error(t, WriteGrid(failingWriter{}, [][]float64{{1}}))
}
