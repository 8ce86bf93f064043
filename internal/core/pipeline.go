package core

// pipeline.go drives one explode run over a stream of rows.
//
// The run moves through these states:
//
//	Init -> Reading -> (Parsing -> Exploding -> Writing)* -> Draining -> Closed
//
// Init opens the input, validates the request and builds the output
// schema. Only then is the output opened, so a configuration error never
// leaves a half-written file behind. Rows are processed strictly one at a
// time; nothing is buffered beyond the current row.

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/google/uuid"

	"github.com/JonMunkholm/explode/internal/logging"
	"github.com/JonMunkholm/explode/internal/value"
)

// DefaultCheckInterval is how often (in rows) a pipeline checks for
// cancellation unless Pipeline.CheckInterval says otherwise.
const DefaultCheckInterval = 100

// RowReader is the input side of a run.
type RowReader interface {
	// ColumnNames returns the header, in file order.
	ColumnNames() []string

	// ColumnCount returns len(ColumnNames()).
	ColumnCount() int

	// Rows yields the data rows once. Each row has ColumnCount cells.
	Rows() iter.Seq2[[]string, error]

	Close() error
}

// LineReporter is implemented by readers that know the input line of the
// row last yielded. Row errors then carry that line.
type LineReporter interface {
	Line() int
}

// RowWriter is the output side of a run.
type RowWriter interface {
	// Write emits one row, filling missing trailing cells and rejecting
	// rows wider than the schema.
	Write(row []string) error

	// Close flushes and releases the output.
	Close() error
}

// ReaderFactory opens the input.
type ReaderFactory func(ctx context.Context) (RowReader, error)

// WriterFactory opens the output for the given column names.
type WriterFactory func(ctx context.Context, columns []string) (RowWriter, error)

// State is a pipeline lifecycle state.
type State string

const (
	StateInit      State = "init"
	StateReading   State = "reading"
	StateParsing   State = "parsing"
	StateExploding State = "exploding"
	StateWriting   State = "writing"
	StateDraining  State = "draining"
	StateClosed    State = "closed"
)

// Result summarizes a finished run.
type Result struct {
	RunID   string
	Columns []string // output header

	RowsRead      int
	RowsWritten   int
	InvalidRows   int // rows passed through unexploded
	ListsExploded int

	Duration time.Duration
}

// Pipeline explodes one input into one output.
type Pipeline struct {
	Request    Request
	Options    *value.Options
	OpenReader ReaderFactory
	OpenWriter WriterFactory

	// OnInvalid, if set, is called for every row whose target value fails
	// validation. row is the 1-based data row number.
	OnInvalid func(row int, raw string)

	// DumpValues logs a full dump of every parsed value at debug level.
	DumpValues bool

	// CheckInterval is how often (in rows) Run checks ctx for
	// cancellation. Zero means DefaultCheckInterval.
	CheckInterval int

	state State
}

// State returns the current lifecycle state.
func (p *Pipeline) State() State {
	if p.state == "" {
		return StateInit
	}
	return p.state
}

func (p *Pipeline) enter(s State) { p.state = s }

// Run executes the pipeline. On a configuration error nothing is written.
// On a mid-stream error the output is closed but left truncated.
func (p *Pipeline) Run(ctx context.Context) (res *Result, err error) {
	start := time.Now()
	p.enter(StateInit)
	defer p.enter(StateClosed)

	if p.OpenReader == nil || p.OpenWriter == nil {
		return nil, configErr(ErrMissingCollaborator, "")
	}
	opts := p.Options
	if opts == nil {
		opts = value.DefaultOptions()
	}

	every := p.CheckInterval
	if every <= 0 {
		every = DefaultCheckInterval
	}

	runID := uuid.NewString()
	ctx = logging.WithRunID(ctx, runID)
	logger := logging.WithFields(ctx, "column", p.Request.Column)

	reader, err := p.OpenReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	defer func() {
		if cerr := reader.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close input: %w", cerr)
		}
	}()

	base, err := NewSchema(reader.ColumnNames())
	if err != nil {
		return nil, err
	}
	out, ex, err := BuildExplosion(base, p.Request)
	if err != nil {
		return nil, err
	}
	for _, t := range ex.Targets {
		if t.New {
			logger.Debug("field becomes new column", "field", t.Field, "column", t.Column, "index", t.Index)
		} else {
			logger.Debug("field overwrites existing column", "field", t.Field, "column", t.Column, "index", t.Index)
		}
	}

	writer, err := p.OpenWriter(ctx, out.Names())
	if err != nil {
		return nil, fmt.Errorf("open output: %w", err)
	}
	defer func() {
		if cerr := writer.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close output: %w", cerr)
		}
	}()

	res = &Result{RunID: runID, Columns: out.Names()}
	logger.Info("exploding records",
		"fields", len(ex.Targets),
		"new_columns", ex.NewColumns,
	)

	p.enter(StateReading)
	for row, rerr := range reader.Rows() {
		if rerr != nil {
			return res, fmt.Errorf("read row %d: %w", res.RowsRead+1, rerr)
		}
		res.RowsRead++

		if res.RowsRead%every == 0 {
			if cerr := ctx.Err(); cerr != nil {
				return res, fmt.Errorf("operation cancelled at row %d: %w", res.RowsRead, cerr)
			}
		}

		if err := p.processRow(logger, opts, row, lineOf(reader), ex, writer, res); err != nil {
			return res, err
		}
		p.enter(StateReading)
	}

	p.enter(StateDraining)
	res.Duration = time.Since(start)
	logger.Info("explode complete",
		"rows_read", res.RowsRead,
		"rows_written", res.RowsWritten,
		"invalid_rows", res.InvalidRows,
		"lists_exploded", res.ListsExploded,
		"duration_ms", res.Duration.Milliseconds(),
	)
	return res, nil
}

// processRow handles the Parsing -> Exploding -> Writing steps for one row.
func (p *Pipeline) processRow(logger *slog.Logger, opts *value.Options, row []string, line int, ex *Explosion, w RowWriter, res *Result) error {
	p.enter(StateParsing)
	var raw string
	if ex.ColumnIndex < len(row) {
		raw = row[ex.ColumnIndex]
	}
	v := value.Parse(raw, opts)
	valid := v.Validate()
	if p.DumpValues {
		logger.Debug("parsed value", "row", res.RowsRead, "dump", spew.Sdump(v))
	}

	switch {
	case !valid:
		res.InvalidRows++
		logger.Debug("not exploding invalid item", "row", res.RowsRead, "line", line, "value", raw)
		if p.OnInvalid != nil {
			p.OnInvalid(res.RowsRead, raw)
		}
	case v.IsList():
		res.ListsExploded++
		logger.Debug("exploding a list", "row", res.RowsRead, "items", len(v.Items()))
	case p.Request.ExpandList && v.Kind != value.KindEmpty:
		return &RowError{Row: res.RowsRead, Line: line, Value: raw, Err: ErrNotAList}
	}

	p.enter(StateExploding)
	for out := range Explode(v, row, ex) {
		p.enter(StateWriting)
		if err := w.Write(out); err != nil {
			return fmt.Errorf("write row %d: %w", res.RowsRead, err)
		}
		res.RowsWritten++
	}
	return nil
}

// IsCancelled reports whether err came from context cancellation.
func IsCancelled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// lineOf returns the input line of the row r last yielded, or 0.
func lineOf(r RowReader) int {
	if lr, ok := r.(LineReporter); ok {
		return lr.Line()
	}
	return 0
}
