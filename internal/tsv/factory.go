package tsv

import (
	"context"
	"io"

	"github.com/JonMunkholm/explode/internal/core"
	"github.com/JonMunkholm/explode/internal/logging"
)

var _ core.LineReporter = (*Reader)(nil)

// FileReader returns a factory opening path as pipeline input.
func FileReader(path string, opts ReaderOptions) core.ReaderFactory {
	return func(ctx context.Context) (core.RowReader, error) {
		logging.FromContext(ctx).Debug("opening the input file", "path", path)
		return Open(path, opts)
	}
}

// FileWriter returns a factory creating path as pipeline output.
func FileWriter(path string) core.WriterFactory {
	return func(ctx context.Context, columns []string) (core.RowWriter, error) {
		logging.FromContext(ctx).Debug("opening the output file", "path", path, "columns", len(columns))
		return Create(path, columns)
	}
}

// StreamReader returns a factory reading from src, which the caller owns.
func StreamReader(src io.Reader, opts ReaderOptions) core.ReaderFactory {
	return func(context.Context) (core.RowReader, error) {
		return NewReader(src, opts)
	}
}

// StreamWriter returns a factory writing to dst, which the caller owns.
// onOpen, if set, runs before the header is written.
func StreamWriter(dst io.Writer, onOpen func(ctx context.Context, columns []string)) core.WriterFactory {
	return func(ctx context.Context, columns []string) (core.RowWriter, error) {
		if onOpen != nil {
			onOpen(ctx, columns)
		}
		return NewWriter(dst, columns)
	}
}
