// Package format defines the plain-text score files exchanged between
// conversion and plotting.
//
// Converted scores: one comma-separated list of integers per read.
// Averaged scores: one floating-point value per read.
// Coordinate columns: one integer per line.
// Grids: one comma-separated row of bin means per y bin.
package format

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/vertti/fqscores/internal/parser"
)

// Delimiter separates values within a converted-score line.
const Delimiter = ','

// AppendDelimited appends one converted-score line, newline included.
func AppendDelimited(dst []byte, scores []int) []byte {
	for i, s := range scores {
		if i > 0 {
			dst = append(dst, Delimiter)
		}
		dst = strconv.AppendInt(dst, int64(s), 10)
	}
	return append(dst, '\n')
}

// EncodeAsDelimitedText renders score arrays in the converted-score format.
func EncodeAsDelimitedText(arrays [][]int) string {
	var buf []byte
	for _, scores := range arrays {
		buf = AppendDelimited(buf, scores)
	}
	return string(buf)
}

// WriteDelimited writes score arrays in the converted-score format.
func WriteDelimited(w io.Writer, arrays [][]int) error {
	var buf []byte
	for _, scores := range arrays {
		buf = AppendDelimited(buf[:0], scores)
		if _, err := w.Write(buf); err != nil {
			return err
		}
	}
	return nil
}

// ParseDelimitedLine parses one converted-score line. An empty line is an
// empty score array.
func ParseDelimitedLine(line string) ([]int, error) {
	if line == "" {
		return []int{}, nil
	}
	fields := strings.Split(line, string(Delimiter))
	scores := make([]int, len(fields))
	for i, f := range fields {
		v, err := strconv.Atoi(f)
		if err != nil {
			return nil, fmt.Errorf("field %d: %w", i+1, err)
		}
		scores[i] = v
	}
	return scores, nil
}

// ReadDelimited reads a whole converted-score file.
func ReadDelimited(r io.Reader) ([][]int, error) {
	var arrays [][]int
	err := eachLine(r, func(line string) error {
		scores, err := ParseDelimitedLine(line)
		if err != nil {
			return err
		}
		arrays = append(arrays, scores)
		return nil
	})
	return arrays, err
}

// AppendFloat appends v the way averaged-score files render numbers: the
// shortest representation that round-trips, with a ".0" suffix on integral
// values and exponent notation outside [1e-4, 1e16).
func AppendFloat(dst []byte, v float64) []byte {
	switch {
	case math.IsNaN(v):
		return append(dst, "nan"...)
	case math.IsInf(v, 1):
		return append(dst, "inf"...)
	case math.IsInf(v, -1):
		return append(dst, "-inf"...)
	}

	abs := math.Abs(v)
	if abs != 0 && (abs < 1e-4 || abs >= 1e16) {
		return strconv.AppendFloat(dst, v, 'e', -1, 64)
	}

	start := len(dst)
	dst = strconv.AppendFloat(dst, v, 'f', -1, 64)
	if !strings.ContainsRune(string(dst[start:]), '.') {
		dst = append(dst, '.', '0')
	}
	return dst
}

// FormatFloat is AppendFloat for a single value.
func FormatFloat(v float64) string {
	return string(AppendFloat(nil, v))
}

// WriteAverages writes one averaged score per line.
func WriteAverages(w io.Writer, averages []float64) error {
	var buf []byte
	for _, v := range averages {
		buf = AppendFloat(buf[:0], v)
		buf = append(buf, '\n')
		if _, err := w.Write(buf); err != nil {
			return err
		}
	}
	return nil
}

// ReadAverages reads one floating-point value per line.
func ReadAverages(r io.Reader) ([]float64, error) {
	var values []float64
	err := eachLine(r, func(line string) error {
		v, err := strconv.ParseFloat(strings.TrimSpace(line), 64)
		if err != nil {
			return err
		}
		values = append(values, v)
		return nil
	})
	return values, err
}

// ReadInts reads one base-10 integer per line.
func ReadInts(r io.Reader) ([]int, error) {
	var values []int
	err := eachLine(r, func(line string) error {
		v, err := strconv.Atoi(strings.TrimSpace(line))
		if err != nil {
			return err
		}
		values = append(values, v)
		return nil
	})
	return values, err
}

// WriteInts writes one integer per line.
func WriteInts(w io.Writer, values []int) error {
	var buf []byte
	for _, v := range values {
		buf = strconv.AppendInt(buf[:0], int64(v), 10)
		buf = append(buf, '\n')
		if _, err := w.Write(buf); err != nil {
			return err
		}
	}
	return nil
}

// WriteGrid writes rows of bin means, lowest y bin first.
func WriteGrid(w io.Writer, rows [][]float64) error {
	var buf []byte
	for _, row := range rows {
		buf = buf[:0]
		for i, v := range row {
			if i > 0 {
				buf = append(buf, Delimiter)
			}
			buf = AppendFloat(buf, v)
		}
		buf = append(buf, '\n')
		if _, err := w.Write(buf); err != nil {
			return err
		}
	}
	return nil
}

// ReadGrid parses a grid written by WriteGrid.
func ReadGrid(r io.Reader) ([][]float64, error) {
	var rows [][]float64
	err := eachLine(r, func(line string) error {
		fields := strings.Split(line, string(Delimiter))
		row := make([]float64, len(fields))
		for i, f := range fields {
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return fmt.Errorf("field %d: %w", i+1, err)
			}
			row[i] = v
		}
		rows = append(rows, row)
		return nil
	})
	return rows, err
}

func eachLine(r io.Reader, fn func(line string) error) error {
	lr := parser.NewLineReader(r)
	for lineNum := 1; ; lineNum++ {
		line, err := lr.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if err := fn(string(line)); err != nil {
			return fmt.Errorf("line %d: %w", lineNum, err)
		}
	}
}
