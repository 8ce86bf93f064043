package core

import (
	"iter"

	"github.com/JonMunkholm/explode/internal/value"
)

// Explode returns the output rows for one input row.
//
//   - invalid value: one copy of row, padded, nothing substituted
//   - list: one row per item, the exploded column holding the item's text
//     and the targets that item's fields
//   - anything else: one row carrying the value's own fields
//
// Every yielded row is a fresh slice of length ex.Width. Fields a value
// does not define leave their cells as padding (empty) or, for overwritten
// existing columns, as the original content.
func Explode(v *value.Value, row []string, ex *Explosion) iter.Seq[[]string] {
	return func(yield func([]string) bool) {
		if !v.Validate() {
			yield(padRow(row, ex.Width))
			return
		}

		if v.IsList() {
			for _, item := range v.Items() {
				out := padRow(row, ex.Width)
				out[ex.ColumnIndex] = value.EscapeSeparators(item.Text(), value.ListSeparator, value.EscapeChar)
				if !yield(fill(out, item, ex)) {
					return
				}
			}
			return
		}

		yield(fill(padRow(row, ex.Width), v, ex))
	}
}

// fill sets the explosion targets of out from v's fields.
func fill(out []string, v *value.Value, ex *Explosion) []string {
	for _, t := range ex.Targets {
		if f, ok := v.Fields[t.Field]; ok {
			out[t.Index] = f.String()
		}
	}
	return out
}

// padRow returns a copy of row extended with empty cells to width.
func padRow(row []string, width int) []string {
	out := make([]string, max(width, len(row)))
	copy(out, row)
	return out
}

// ExplodeCount returns how many rows Explode yields for v.
func ExplodeCount(v *value.Value) int {
	if v.Validate() && v.IsList() {
		return len(v.Items())
	}
	return 1
}
