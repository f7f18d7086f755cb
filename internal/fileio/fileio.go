// Package fileio opens input and output paths, transparently handling
// stdin/stdout and gzip or zstd compression.
package fileio

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

const bufSize = 1 << 20

var (
	gzipMagic = []byte{0x1f, 0x8b}
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
)

// Compression identifies a stream compression format.
type Compression uint8

// Supported compression formats.
const (
	None Compression = iota
	Gzip
	Zstd
)

// CompressionFor returns the compression implied by a path's extension.
func CompressionFor(path string) Compression {
	lower := strings.ToLower(path)
	switch {
	case strings.HasSuffix(lower, ".gz"):
		return Gzip
	case strings.HasSuffix(lower, ".zst"):
		return Zstd
	default:
		return None
	}
}

// IsStdio reports whether path means stdin or stdout.
func IsStdio(path string) bool {
	return path == "" || path == "-"
}

// OpenInput opens path for reading, or stdin when path is empty or "-".
// Compressed input is detected by extension or magic bytes.
func OpenInput(path string) (io.Reader, func(), error) {
	if IsStdio(path) {
		return WrapInput(path, os.Stdin, func() {})
	}

	f, err := os.Open(path) //nolint:gosec // CLI tool needs to open user-specified files
	if err != nil {
		return nil, nil, fmt.Errorf("cannot open input: %w", err)
	}
	return WrapInput(path, f, func() { _ = f.Close() })
}

// WrapInput buffers in and layers a decompressor over it when needed.
// closeInput is called by the returned cleanup, or immediately on error.
func WrapInput(path string, in io.Reader, closeInput func()) (io.Reader, func(), error) {
	br := bufio.NewReaderSize(in, bufSize)
	comp, err := sniff(br)
	if err != nil {
		closeInput()
		return nil, nil, fmt.Errorf("cannot inspect input: %w", err)
	}
	if comp == None {
		comp = CompressionFor(path)
	}

	switch comp {
	case Gzip:
		gz, err := gzip.NewReader(br)
		if err != nil {
			closeInput()
			return nil, nil, fmt.Errorf("cannot open gzip input: %w", err)
		}
		return gz, func() {
			_ = gz.Close()
			closeInput()
		}, nil
	case Zstd:
		zr, err := zstd.NewReader(br)
		if err != nil {
			closeInput()
			return nil, nil, fmt.Errorf("cannot open zstd input: %w", err)
		}
		return zr, func() {
			zr.Close()
			closeInput()
		}, nil
	default:
		return br, closeInput, nil
	}
}

func sniff(br *bufio.Reader) (Compression, error) {
	header, err := br.Peek(len(zstdMagic))
	if err != nil && !errors.Is(err, io.EOF) {
		return None, err
	}
	switch {
	case bytes.HasPrefix(header, gzipMagic):
		return Gzip, nil
	case bytes.HasPrefix(header, zstdMagic):
		return Zstd, nil
	default:
		return None, nil
	}
}

// OpenOutput creates path for writing, or writes to stdout when path is
// empty or "-". A ".gz" or ".zst" path is compressed accordingly.
// The cleanup function flushes and closes everything; its error must be
// checked since buffered data is only written then.
func OpenOutput(path string) (io.Writer, func() error, error) {
	if IsStdio(path) {
		bw := bufio.NewWriterSize(os.Stdout, bufSize)
		return bw, bw.Flush, nil
	}

	f, err := os.Create(path) //nolint:gosec // CLI tool needs to create user-specified files
	if err != nil {
		return nil, nil, fmt.Errorf("cannot create output: %w", err)
	}
	w, closeWriter, err := WrapOutput(CompressionFor(path), f)
	if err != nil {
		_ = f.Close()
		return nil, nil, err
	}
	return w, func() error {
		werr := closeWriter()
		if cerr := f.Close(); werr == nil {
			werr = cerr
		}
		return werr
	}, nil
}

// WrapOutput buffers w and layers a compressor over it for comp.
// The returned close function flushes the compressor and the buffer but
// does not close w.
func WrapOutput(comp Compression, w io.Writer) (io.Writer, func() error, error) {
	bw := bufio.NewWriterSize(w, bufSize)

	switch comp {
	case Gzip:
		gz := gzip.NewWriter(bw)
		return gz, func() error {
			if err := gz.Close(); err != nil {
				return err
			}
			return bw.Flush()
		}, nil
	case Zstd:
		zw, err := zstd.NewWriter(bw, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			return nil, nil, fmt.Errorf("creating zstd encoder: %w", err)
		}
		return zw, func() error {
			if err := zw.Close(); err != nil {
				return err
			}
			return bw.Flush()
		}, nil
	default:
		return bw, bw.Flush, nil
	}
}
