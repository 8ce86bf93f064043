package tsv

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// Writer emits rows of a fixed width.
type Writer struct {
	buf     *bufio.Writer
	closers []io.Closer
	width   int
	rows    int
}

// Create opens path for writing and writes the header. "-" writes to
// stdout; a ".gz" suffix is compressed.
func Create(path string, columns []string) (*Writer, error) {
	if path == "" {
		return nil, ErrEmptyFilename
	}

	var (
		dst     io.Writer
		closers []io.Closer
	)
	if path == Stdio {
		dst = os.Stdout
	} else {
		f, err := os.Create(path)
		if err != nil {
			return nil, err
		}
		dst = f
		closers = append(closers, f)
	}

	if strings.HasSuffix(path, ".gz") {
		zw := gzip.NewWriter(dst)
		dst = zw
		closers = append([]io.Closer{zw}, closers...)
	}

	w, err := NewWriter(dst, columns)
	if err != nil {
		closeAll(closers)
		return nil, err
	}
	w.closers = closers
	return w, nil
}

// NewWriter writes the header to dst. Closing the writer flushes but does
// not close dst.
func NewWriter(dst io.Writer, columns []string) (*Writer, error) {
	w := &Writer{buf: bufio.NewWriter(dst), width: len(columns)}
	if err := w.writeLine(columns); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	return w, nil
}

// Write emits row, filling missing trailing cells with empty cells.
// A row wider than the header is rejected.
func (w *Writer) Write(row []string) error {
	if len(row) > w.width {
		return fmt.Errorf("%w: %d > %d", ErrTooManyCells, len(row), w.width)
	}
	if err := w.writeLine(row); err != nil {
		return err
	}
	w.rows++
	return nil
}

// controlEscaper keeps a cell on one line and in one column.
var controlEscaper = strings.NewReplacer("\t", `\t`, "\n", `\n`, "\r", `\r`)

func (w *Writer) writeLine(row []string) error {
	for i := range w.width {
		if i > 0 {
			if err := w.buf.WriteByte('\t'); err != nil {
				return err
			}
		}
		if i < len(row) {
			cell := row[i]
			if strings.ContainsAny(cell, "\t\n\r") {
				cell = controlEscaper.Replace(cell)
			}
			if _, err := w.buf.WriteString(cell); err != nil {
				return err
			}
		}
	}
	return w.buf.WriteByte('\n')
}

// Rows returns the number of data rows written.
func (w *Writer) Rows() int { return w.rows }

// Flush writes buffered rows to the destination.
func (w *Writer) Flush() error { return w.buf.Flush() }

// Close flushes and closes anything opened by Create.
func (w *Writer) Close() error {
	err := w.buf.Flush()
	if cerr := closeAll(w.closers); err == nil {
		err = cerr
	}
	w.closers = nil
	return err
}
