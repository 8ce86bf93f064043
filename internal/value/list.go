package value

import "strings"

// List syntax.
const (
	ListSeparator = '|'
	EscapeChar    = '\\'
)

// HasUnescaped reports whether raw contains sep not preceded by an escape.
// An escaped escape character does not protect the character after it.
func HasUnescaped(raw string, sep, escape rune) bool {
	escaped := false
	for _, r := range raw {
		switch {
		case escaped:
			escaped = false
		case r == escape:
			escaped = true
		case r == sep:
			return true
		}
	}
	return false
}

// SplitList splits raw on every unescaped sep, scanning left to right.
//
// An escape in front of sep or in front of another escape keeps the
// following character literal and is dropped from the item. Any other
// escape sequence is kept as written so item-level grammars (such as
// string escapes) still see it. Non-empty input always yields at least
// one item.
func SplitList(raw string, sep, escape rune) []string {
	if raw == "" {
		return []string{""}
	}

	var (
		items   []string
		cur     strings.Builder
		escaped bool
	)
	for _, r := range raw {
		if escaped {
			escaped = false
			if r != sep && r != escape {
				cur.WriteRune(escape)
			}
			cur.WriteRune(r)
			continue
		}
		switch r {
		case escape:
			escaped = true
		case sep:
			items = append(items, cur.String())
			cur.Reset()
		default:
			cur.WriteRune(r)
		}
	}
	// A trailing lone escape has nothing to protect.
	if escaped {
		cur.WriteRune(escape)
	}
	return append(items, cur.String())
}

// EscapeSeparators escapes every sep in item so it reads back as a single
// list item.
func EscapeSeparators(item string, sep, escape rune) string {
	if !strings.ContainsRune(item, sep) {
		return item
	}
	return strings.ReplaceAll(item, string(sep), string(escape)+string(sep))
}
