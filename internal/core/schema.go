package core

// schema.go computes the output column layout of an explode run.
//
// The output schema is the input header followed by any new exploded
// columns, in the order the fields were requested. Existing column
// positions never move; with overwrite enabled an exploded field may reuse
// an existing column instead of appending one.

import (
	"slices"

	"github.com/JonMunkholm/explode/internal/value"
)

// HeaderIndex maps column names to their position in a row.
type HeaderIndex map[string]int

// Schema is an ordered list of unique column names.
type Schema struct {
	names []string
	index HeaderIndex
}

// NewSchema builds a schema from a header row.
// Duplicate column names are a configuration error.
func NewSchema(header []string) (*Schema, error) {
	s := &Schema{
		names: make([]string, 0, len(header)),
		index: make(HeaderIndex, len(header)),
	}
	for _, name := range header {
		if _, dup := s.index[name]; dup {
			return nil, configErr(ErrDuplicateHeader, name)
		}
		s.append(name)
	}
	return s, nil
}

// Names returns a copy of the column names.
func (s *Schema) Names() []string { return slices.Clone(s.names) }

// Len returns the number of columns.
func (s *Schema) Len() int { return len(s.names) }

// Index returns the position of a column.
func (s *Schema) Index(name string) (int, bool) {
	i, ok := s.index[name]
	return i, ok
}

func (s *Schema) append(name string) int {
	s.index[name] = len(s.names)
	s.names = append(s.names, name)
	return len(s.names) - 1
}

func (s *Schema) clone() *Schema {
	c := &Schema{
		names: slices.Clone(s.names),
		index: make(HeaderIndex, len(s.index)),
	}
	for k, v := range s.index {
		c.index[k] = v
	}
	return c
}

// Request describes what to explode.
type Request struct {
	// Column is the name of the column holding the values to explode.
	Column string

	// Fields are the sub-field names to project, in output order.
	Fields []string

	// Prefix is prepended to each field name to name its column.
	Prefix string

	// Overwrite lets an exploded field reuse an existing column.
	Overwrite bool

	// ExpandList requires every non-empty target value to be a list.
	ExpandList bool
}

// Target is one field's destination column.
type Target struct {
	Field  string
	Column string
	Index  int
	New    bool // true if the column was appended
}

// Explosion is the field-to-column map for a run. It is built once by
// BuildExplosion and only read afterwards.
type Explosion struct {
	// ColumnIndex is the position of the column being exploded.
	ColumnIndex int

	Targets []Target

	// NewColumns counts appended columns.
	NewColumns int

	// Width is the column count of every output row.
	Width int
}

// BuildExplosion validates req against base and returns the extended
// output schema with the explosion map. base is not modified.
func BuildExplosion(base *Schema, req Request) (*Schema, *Explosion, error) {
	if req.Column == "" {
		return nil, nil, configErr(ErrEmptyColumnName, "")
	}
	colIdx, ok := base.Index(req.Column)
	if !ok {
		return nil, nil, configErr(ErrColumnNotFound, req.Column)
	}

	if len(req.Fields) == 0 {
		return nil, nil, configErr(ErrNoFields, "")
	}
	for _, f := range req.Fields {
		if !value.IsFieldName(f) {
			return nil, nil, configErr(ErrUnknownField, f)
		}
	}

	out := base.clone()
	ex := &Explosion{
		ColumnIndex: colIdx,
		Targets:     make([]Target, 0, len(req.Fields)),
	}
	assigned := make(map[string]struct{}, len(req.Fields))

	for _, f := range req.Fields {
		name := req.Prefix + f
		if _, dup := assigned[name]; dup {
			return nil, nil, configErr(ErrDuplicateField, name)
		}
		assigned[name] = struct{}{}

		if idx, exists := base.Index(name); exists {
			if !req.Overwrite {
				return nil, nil, configErr(ErrColumnCollision, name)
			}
			ex.Targets = append(ex.Targets, Target{Field: f, Column: name, Index: idx})
			continue
		}

		idx := out.append(name)
		ex.Targets = append(ex.Targets, Target{Field: f, Column: name, Index: idx, New: true})
		ex.NewColumns++
	}

	ex.Width = out.Len()
	return out, ex, nil
}
