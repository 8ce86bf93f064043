package core

import (
	"errors"
	"fmt"
)

// Configuration errors. These are detected before any row is read.
var (
	ErrEmptyColumnName     = errors.New("column name to explode is empty")
	ErrColumnNotFound      = errors.New("column not found in input")
	ErrNoFields            = errors.New("list of fields to explode is empty")
	ErrUnknownField        = errors.New("unknown field name")
	ErrDuplicateField      = errors.New("duplicate exploded column")
	ErrColumnCollision     = errors.New("exploded column already exists")
	ErrDuplicateHeader     = errors.New("duplicate column name in header")
	ErrMissingCollaborator = errors.New("pipeline is missing a reader or writer")
)

// ErrNotAList is the per-row failure raised when list expansion is
// required but the target value is a single item.
var ErrNotAList = errors.New("value to expand is not a list")

// ConfigError reports a bad run configuration.
type ConfigError struct {
	Name string // offending column or field name, if any
	Err  error
}

func (e *ConfigError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("%s: %q", e.Err.Error(), e.Name)
	}
	return e.Err.Error()
}

func (e *ConfigError) Unwrap() error { return e.Err }

func configErr(err error, name string) error {
	return &ConfigError{Name: name, Err: err}
}

// IsConfigError reports whether err is a configuration error.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}

// RowError reports a failure tied to one input row.
type RowError struct {
	Row   int    // 1-based data row number
	Line  int    // input line, counting the header; 0 if unknown
	Value string // raw target cell
	Err   error
}

func (e *RowError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("row %d (line %d): %s: %q", e.Row, e.Line, e.Err.Error(), e.Value)
	}
	return fmt.Sprintf("row %d: %s: %q", e.Row, e.Err.Error(), e.Value)
}

func (e *RowError) Unwrap() error { return e.Err }
