// Package convert turns quality-string files into converted-score or
// averaged-score files.
package convert

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/vertti/fqscores/internal/format"
	"github.com/vertti/fqscores/internal/parser"
	"github.com/vertti/fqscores/internal/quality"
)

// DefaultBlockSize is the default number of lines per block.
const DefaultBlockSize = 100000

// Mode selects what is written for each quality string.
type Mode uint8

// Output modes.
const (
	ModeScores  Mode = iota // comma-separated decoded scores
	ModeAverage             // mean score
)

// SourceFormat selects how quality strings are read from the input.
type SourceFormat uint8

// Input formats.
const (
	SourceLines SourceFormat = iota // one quality string per line
	SourceFASTQ                     // quality lines of FASTQ records
)

// Options configures a conversion run.
type Options struct {
	BlockSize int              // Lines per block (default: 100000)
	Workers   int              // Parallel workers (default: 1)
	Encoding  quality.Encoding // Offset used to decode characters
	Detect    bool             // Detect the encoding from the first block
	Source    SourceFormat
}

// Summary describes a finished run.
type Summary struct {
	Lines    int
	Blocks   int
	Encoding quality.Encoding
}

type job struct {
	seqNum    int
	firstLine int // 1-based input line (or record) number of lines[0]
	lines     [][]byte
}

type result struct {
	seqNum int
	lines  int
	data   []byte
}

// scratch holds the decode buffer reused across lines of a block.
type scratch struct {
	scores []int
}

var scratchPool = sync.Pool{
	New: func() any {
		return &scratch{scores: make([]int, 0, 256)}
	},
}

// Convert writes one comma-separated score line per quality string.
func Convert(ctx context.Context, r io.Reader, w io.Writer, opts *Options) (Summary, error) {
	return Run(ctx, r, w, ModeScores, opts)
}

// Average writes one mean score per quality string. An empty quality
// string aborts the run with quality.ErrDivisionByZero.
func Average(ctx context.Context, r io.Reader, w io.Writer, opts *Options) (Summary, error) {
	return Run(ctx, r, w, ModeAverage, opts)
}

// Run reads quality strings from r and writes mode's rendering of each to
// w, in input order.
func Run(ctx context.Context, r io.Reader, w io.Writer, mode Mode, opts *Options) (Summary, error) {
	if opts == nil {
		opts = &Options{}
	}
	blockSize := opts.BlockSize
	if blockSize <= 0 {
		blockSize = DefaultBlockSize
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = 1
	}

	src := newSource(r, opts.Source)
	firstBatch, err := nextBlock(src, blockSize)
	if err != nil && !errors.Is(err, io.EOF) {
		return Summary{}, fmt.Errorf("reading input: %w", err)
	}
	firstBatchEOF := errors.Is(err, io.EOF)

	enc := opts.Encoding
	if opts.Detect && len(firstBatch) > 0 {
		enc = quality.DetectEncoding(firstBatch)
	}

	p := &pipeline{
		src:       src,
		mode:      mode,
		offset:    enc.Offset(),
		blockSize: blockSize,
		summary:   Summary{Encoding: enc},
	}

	if workers == 1 {
		err = p.runSequential(ctx, w, firstBatch, firstBatchEOF)
	} else {
		err = p.runParallel(ctx, w, workers, firstBatch, firstBatchEOF)
	}
	return p.summary, err
}

type pipeline struct {
	src       parser.Source
	mode      Mode
	offset    int
	blockSize int
	summary   Summary
}

func newSource(r io.Reader, sf SourceFormat) parser.Source {
	if sf == SourceFASTQ {
		return parser.NewFASTQ(r)
	}
	return parser.NewLineReader(r)
}

// nextBlock reads up to n quality strings, copying them out of the
// reader's reusable buffer into one backing slab.
func nextBlock(src parser.Source, n int) ([][]byte, error) {
	lines := make([][]byte, 0, min(n, 4096))
	slab := make([]byte, 0, min(n, 4096)*128)

	for len(lines) < n {
		line, err := src.Next()
		if err != nil {
			if errors.Is(err, io.EOF) && len(lines) > 0 {
				return lines, io.EOF
			}
			return lines, err
		}
		if cap(slab)-len(slab) < len(line) {
			slab = make([]byte, 0, max(len(line), 2*cap(slab)))
		}
		start := len(slab)
		slab = append(slab, line...)
		lines = append(lines, slab[start:len(slab):len(slab)])
	}
	return lines, nil
}

func (p *pipeline) runSequential(ctx context.Context, w io.Writer, firstBatch [][]byte, firstBatchEOF bool) error {
	batch := firstBatch
	eof := firstBatchEOF
	lineNum := 1

	for len(batch) > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}

		data, err := p.encodeBlock(job{firstLine: lineNum, lines: batch})
		if err != nil {
			return err
		}
		if _, err := w.Write(data); err != nil {
			return fmt.Errorf("writing block %d: %w", p.summary.Blocks, err)
		}
		p.summary.Blocks++
		p.summary.Lines += len(batch)
		lineNum += len(batch)

		if eof {
			break
		}
		batch, err = nextBlock(p.src, p.blockSize)
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("reading input: %w", err)
		}
		eof = errors.Is(err, io.EOF)
	}
	return nil
}

func (p *pipeline) runParallel(ctx context.Context, w io.Writer, workers int, firstBatch [][]byte, firstBatchEOF bool) error {
	jobs := make(chan job, workers*2)
	results := make(chan result, workers*2)

	g, gctx := errgroup.WithContext(ctx)

	// Start workers
	for range workers {
		g.Go(func() error {
			return p.runWorker(gctx, jobs, results)
		})
	}

	// Producer: dispatch first batch and continue reading
	g.Go(func() error {
		defer close(jobs)
		return p.produce(gctx, jobs, firstBatch, firstBatchEOF)
	})

	// Collector: write results in order
	var collectorErr error
	collectorDone := make(chan struct{})
	go func() {
		defer close(collectorDone)
		collectorErr = p.collect(results, w)
	}()

	workerErr := g.Wait()
	close(results)
	<-collectorDone

	if workerErr != nil {
		return workerErr
	}
	return collectorErr
}

func (p *pipeline) runWorker(ctx context.Context, jobs <-chan job, results chan<- result) error {
	for j := range jobs {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		data, err := p.encodeBlock(j)
		if err != nil {
			return err
		}
		select {
		case results <- result{seqNum: j.seqNum, lines: len(j.lines), data: data}:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

func (p *pipeline) produce(ctx context.Context, jobs chan<- job, firstBatch [][]byte, firstBatchEOF bool) error {
	seqNum := 0
	lineNum := 1
	batch := firstBatch
	eof := firstBatchEOF

	for len(batch) > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}

		select {
		case jobs <- job{seqNum: seqNum, firstLine: lineNum, lines: batch}:
			seqNum++
			lineNum += len(batch)
		case <-ctx.Done():
			return ctx.Err()
		}

		if eof {
			break
		}
		var err error
		batch, err = nextBlock(p.src, p.blockSize)
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("reading input: %w", err)
		}
		eof = errors.Is(err, io.EOF)
	}
	return nil
}

// collect writes results in sequence order. It keeps draining after a
// write error so workers never block on a full channel.
func (p *pipeline) collect(results <-chan result, w io.Writer) error {
	pending := make(map[int]result)
	nextSeqNum := 0
	var writeErr error

	for res := range results {
		if writeErr != nil {
			continue
		}
		pending[res.seqNum] = res

		for {
			next, ok := pending[nextSeqNum]
			if !ok {
				break
			}
			if _, err := w.Write(next.data); err != nil {
				writeErr = fmt.Errorf("writing block %d: %w", nextSeqNum, err)
				break
			}
			delete(pending, nextSeqNum)
			p.summary.Blocks++
			p.summary.Lines += next.lines
			nextSeqNum++
		}
	}
	return writeErr
}

// encodeBlock renders every line of a block into one output buffer.
func (p *pipeline) encodeBlock(j job) ([]byte, error) {
	s := scratchPool.Get().(*scratch) //nolint:errcheck // pool always returns *scratch
	defer scratchPool.Put(s)

	out := make([]byte, 0, len(j.lines)*64)
	for i, line := range j.lines {
		s.scores = quality.DecodeBytes(s.scores[:0], line, p.offset)

		switch p.mode {
		case ModeAverage:
			avg, err := quality.Average(s.scores)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", j.firstLine+i, err)
			}
			out = format.AppendFloat(out, avg)
			out = append(out, '\n')
		default:
			out = format.AppendDelimited(out, s.scores)
		}
	}
	return out, nil
}
