// Package tsv reads and writes the tab-separated files exploded by core.
//
// A file starts with a header line naming the columns. Every following line
// is one row of tab-separated cells. Cells are never quoted; list
// separators and escapes inside cells are left for the value parser.
package tsv

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"iter"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// Separator splits cells on a line.
const Separator = "\t"

// CommentPrefix starts a comment line.
const CommentPrefix = "#"

// Stdio is the path meaning stdin for input and stdout for output.
const Stdio = "-"

// maxLineSize bounds a single input line.
const maxLineSize = 64 << 20

var (
	ErrNoHeader      = errors.New("input has no header line")
	ErrTooManyCells  = errors.New("row has too many cells")
	ErrTooFewCells   = errors.New("row has too few cells")
	ErrEmptyFilename = errors.New("empty file name")
)

// LineError ties a read failure to an input line.
type LineError struct {
	Line int // 1-based, counting the header
	Err  error
}

func (e *LineError) Error() string { return fmt.Sprintf("line %d: %v", e.Line, e.Err) }

func (e *LineError) Unwrap() error { return e.Err }

// ReaderOptions controls how lines become rows.
type ReaderOptions struct {
	// SkipComments drops lines starting with '#'.
	SkipComments bool

	// FillShortRows pads rows with fewer cells than the header with empty
	// cells instead of failing.
	FillShortRows bool
}

// DefaultReaderOptions skips comments and fills short rows.
func DefaultReaderOptions() ReaderOptions {
	return ReaderOptions{SkipComments: true, FillShortRows: true}
}

// Reader streams rows from a TSV source.
type Reader struct {
	opts    ReaderOptions
	scanner *bufio.Scanner
	counter *CountingReader
	closers []io.Closer

	header []string
	line   int
	used   bool
}

// Open opens path for reading. "-" reads stdin; a ".gz" suffix is
// decompressed.
func Open(path string, opts ReaderOptions) (*Reader, error) {
	if path == "" {
		return nil, ErrEmptyFilename
	}

	var (
		src     io.Reader
		closers []io.Closer
	)
	if path == Stdio {
		src = os.Stdin
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		src = f
		closers = append(closers, f)
	}

	if strings.HasSuffix(path, ".gz") {
		zr, err := gzip.NewReader(src)
		if err != nil {
			closeAll(closers)
			return nil, fmt.Errorf("open %s: %w", path, err)
		}
		src = zr
		closers = append([]io.Closer{zr}, closers...)
	}

	r, err := NewReader(src, opts)
	if err != nil {
		closeAll(closers)
		return nil, err
	}
	r.closers = closers
	return r, nil
}

// NewReader reads the header from src and returns a reader positioned at
// the first row. Closing the reader does not close src.
func NewReader(src io.Reader, opts ReaderOptions) (*Reader, error) {
	in, counter := WrapForStreaming(src)
	sc := bufio.NewScanner(in)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	r := &Reader{opts: opts, scanner: sc, counter: counter}
	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return nil, fmt.Errorf("read header: %w", err)
		}
		return nil, ErrNoHeader
	}
	r.line = 1
	header := trimCR(sc.Text())
	if header == "" {
		return nil, &LineError{Line: 1, Err: ErrNoHeader}
	}
	r.header = strings.Split(header, Separator)
	return r, nil
}

// ColumnNames returns the header cells.
func (r *Reader) ColumnNames() []string { return r.header }

// ColumnCount returns the number of header cells.
func (r *Reader) ColumnCount() int { return len(r.header) }

// BytesRead returns the number of raw bytes consumed so far.
func (r *Reader) BytesRead() int64 { return r.counter.BytesRead }

// Line returns the last line read, counting the header as line 1.
func (r *Reader) Line() int { return r.line }

// Rows yields the data rows. Blank lines are skipped. Each row has exactly
// ColumnCount cells. Iteration stops after the first error. Rows may only
// be ranged over once.
func (r *Reader) Rows() iter.Seq2[[]string, error] {
	return func(yield func([]string, error) bool) {
		if r.used {
			yield(nil, errors.New("rows already consumed"))
			return
		}
		r.used = true

		width := len(r.header)
		for r.scanner.Scan() {
			r.line++
			line := trimCR(r.scanner.Text())
			if line == "" {
				continue
			}
			if r.opts.SkipComments && strings.HasPrefix(line, CommentPrefix) {
				continue
			}

			row := strings.Split(line, Separator)
			switch {
			case len(row) > width:
				yield(nil, &LineError{Line: r.line, Err: fmt.Errorf("%w: %d > %d", ErrTooManyCells, len(row), width)})
				return
			case len(row) < width:
				if !r.opts.FillShortRows {
					yield(nil, &LineError{Line: r.line, Err: fmt.Errorf("%w: %d < %d", ErrTooFewCells, len(row), width)})
					return
				}
				row = append(row, make([]string, width-len(row))...)
			}

			if !yield(row, nil) {
				return
			}
		}
		if err := r.scanner.Err(); err != nil {
			yield(nil, &LineError{Line: r.line + 1, Err: err})
		}
	}
}

// Close releases the files opened by Open.
func (r *Reader) Close() error {
	err := closeAll(r.closers)
	r.closers = nil
	return err
}

func trimCR(s string) string { return strings.TrimSuffix(s, "\r") }

func closeAll(closers []io.Closer) error {
	var errs []error
	for _, c := range closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
