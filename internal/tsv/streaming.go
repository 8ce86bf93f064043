package tsv

// streaming.go prepares raw input bytes for line splitting without loading
// the file into memory:
//
//   - a leading UTF-8 BOM is dropped
//   - invalid UTF-8 sequences become U+FFFD
//   - bytes are counted for the run summary
//
// Use WrapForStreaming to apply all transforms in the correct order.

import (
	"io"

	"golang.org/x/text/encoding/unicode"
)

// CountingReader wraps an io.Reader to track bytes read.
type CountingReader struct {
	reader    io.Reader
	BytesRead int64
}

// NewCountingReader creates a counting reader.
func NewCountingReader(r io.Reader) *CountingReader {
	return &CountingReader{reader: r}
}

// Read implements io.Reader.
func (r *CountingReader) Read(p []byte) (int, error) {
	n, err := r.reader.Read(p)
	r.BytesRead += int64(n)
	return n, err
}

// NewSanitizingReader strips a UTF-8 BOM and replaces invalid UTF-8.
func NewSanitizingReader(r io.Reader) io.Reader {
	return unicode.UTF8BOM.NewDecoder().Reader(r)
}

// WrapForStreaming counts the raw bytes, then sanitizes them.
//
// The order matters: the count reflects the bytes on disk, not the
// decoded text.
func WrapForStreaming(r io.Reader) (io.Reader, *CountingReader) {
	counter := NewCountingReader(r)
	return NewSanitizingReader(counter), counter
}
