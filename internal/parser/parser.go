// Package parser reads quality strings from plain line files and FASTQ.
package parser

import (
	"bufio"
	"bytes"
	"errors"
	"io"
)

// LineReader reads newline-separated lines from an input stream.
type LineReader struct {
	reader *bufio.Reader
	line   []byte // reusable buffer for reading lines
}

// NewLineReader creates a new line reader.
func NewLineReader(r io.Reader) *LineReader {
	return &LineReader{
		reader: bufio.NewReaderSize(r, 1<<20), // 1MB buffer
		line:   make([]byte, 0, 512),
	}
}

// Next returns the next line with its newline stripped. The returned slice
// is only valid until the next call.
// Returns io.EOF when no more lines are available.
func (p *LineReader) Next() ([]byte, error) {
	p.line = p.line[:0]

	for {
		segment, isPrefix, err := p.reader.ReadLine()
		if err != nil {
			return nil, err
		}

		p.line = append(p.line, segment...)

		if !isPrefix {
			break
		}
	}

	// Trim any trailing CR (for Windows line endings)
	p.line = bytes.TrimSuffix(p.line, []byte{'\r'})

	return p.line, nil
}

// ReadAll reads every remaining line into memory.
func ReadAll(r io.Reader) ([]string, error) {
	lr := NewLineReader(r)
	var lines []string
	for {
		line, err := lr.Next()
		if errors.Is(err, io.EOF) {
			return lines, nil
		}
		if err != nil {
			return lines, err
		}
		lines = append(lines, string(line))
	}
}

// Source yields one quality string per call.
type Source interface {
	Next() ([]byte, error)
}

// FASTQ reads FASTQ records and yields only their quality lines.
type FASTQ struct {
	lines *LineReader
	seq   []byte
}

// NewFASTQ creates a FASTQ quality reader.
func NewFASTQ(r io.Reader) *FASTQ {
	return &FASTQ{
		lines: NewLineReader(r),
		seq:   make([]byte, 0, 512),
	}
}

// Next reads the next FASTQ record and returns its quality line.
// Returns io.EOF when no more records are available.
func (p *FASTQ) Next() ([]byte, error) {
	// Line 1: Header (starts with @)
	line, err := p.lines.Next()
	if err != nil {
		return nil, err
	}
	if len(line) == 0 || line[0] != '@' {
		return nil, errors.New("invalid FASTQ: header line must start with @")
	}

	// Line 2: Sequence, kept only for the length check
	line, err = p.lines.Next()
	if err != nil {
		return nil, truncated(err)
	}
	p.seq = append(p.seq[:0], line...)

	// Line 3: Plus line (we ignore it)
	line, err = p.lines.Next()
	if err != nil {
		return nil, truncated(err)
	}
	if len(line) == 0 || line[0] != '+' {
		return nil, errors.New("invalid FASTQ: separator line must start with +")
	}

	// Line 4: Quality scores
	line, err = p.lines.Next()
	if err != nil {
		return nil, truncated(err)
	}
	if len(line) != len(p.seq) {
		return nil, errors.New("invalid FASTQ: sequence and quality lengths must match")
	}

	return line, nil
}

func truncated(err error) error {
	if errors.Is(err, io.EOF) {
		return io.ErrUnexpectedEOF
	}
	return err
}
