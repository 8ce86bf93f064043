// Package value parses and validates the typed literals stored in the
// cells of a tab-separated knowledge-graph file.
//
// A cell is classified by its leading character and shape into one Kind,
// then validated against Options. Valid values expose their parts through
// a Fields map (year, month, language, number, units, ...), which is what
// the exploder projects into columns.
//
//	v := value.Parse(`'Paris'@fr`, opts)
//	if v.Validate() {
//	    lang := v.Fields[value.FieldLanguage].String() // "fr"
//	}
package value

import "strings"

// Kind identifies the literal type of a cell.
type Kind int

const (
	KindInvalid Kind = iota
	KindEmpty
	KindList
	KindString
	KindLanguageString
	KindSymbol
	KindBoolean
	KindDateTime
	KindQuantity
	KindNumber
	KindLocation
)

// String returns the name reported in the data_type field.
func (k Kind) String() string {
	switch k {
	case KindEmpty:
		return "empty"
	case KindList:
		return "list"
	case KindString:
		return "string"
	case KindLanguageString:
		return "language_qualified_string"
	case KindSymbol:
		return "symbol"
	case KindBoolean:
		return "boolean"
	case KindDateTime:
		return "date_and_times"
	case KindQuantity:
		return "quantity"
	case KindNumber:
		return "number"
	case KindLocation:
		return "location_coordinates"
	default:
		return "invalid"
	}
}

// Value is one parsed cell.
type Value struct {
	// Raw is the cell text exactly as read.
	Raw string

	Kind Kind

	// Fields is populated by Validate. It only holds the names the kind
	// defines, plus data_type and valid.
	Fields Fields

	opts      *Options
	text      string // Raw, or its repaired form after Validate
	inList    bool
	items     []*Value
	validated bool
	valid     bool
}

// Parse classifies raw under opts. Call Validate before reading Fields.
func Parse(raw string, opts *Options) *Value {
	return parse(raw, opts, false)
}

func parse(raw string, opts *Options, inList bool) *Value {
	if opts == nil {
		opts = DefaultOptions()
	}
	v := &Value{Raw: raw, text: raw, opts: opts, inList: inList}
	v.Kind = v.classify()
	return v
}

// classify picks the kind from the structure of the text alone.
func (v *Value) classify() Kind {
	s := v.text
	if s == "" {
		return KindEmpty
	}
	if !v.inList && !v.opts.EscapeListSeparators && HasUnescaped(s, ListSeparator, EscapeChar) {
		return KindList
	}

	switch c := s[0]; {
	case c == '"':
		return KindString
	case c == '\'':
		return KindLanguageString
	case c == DatePrefix:
		return KindDateTime
	case c == LocationPrefix:
		return KindLocation
	case c == '+' || c == '-' || c == '.' || (c >= '0' && c <= '9'):
		return classifyNumeric(s)
	}

	// The boolean literals are identifier shaped, so they are checked first.
	if s == TrueLiteral || s == FalseLiteral {
		return KindBoolean
	}
	if symbolRegex.MatchString(s) {
		return KindSymbol
	}
	return KindInvalid
}

func classifyNumeric(s string) Kind {
	if looksLikeDate(s) {
		return KindDateTime
	}
	if looksLikeCoordinatePair(s) {
		return KindLocation
	}
	if m := quantityRegex.FindStringSubmatch(s); m != nil && (m[2] != "" || m[4] != "") {
		return KindQuantity
	}
	return KindNumber
}

// Validate checks the value against its kind's rules and fills Fields.
// It never panics; an invalid value simply reports false. Repeated calls
// return the first result.
func (v *Value) Validate() bool {
	if v.validated {
		return v.valid
	}
	v.validated = true
	v.Fields = make(Fields)

	var ok bool
	switch v.Kind {
	case KindEmpty:
		ok = true
	case KindList:
		ok = v.validateList()
	case KindString:
		ok = v.validateString()
	case KindLanguageString:
		ok = v.validateLanguageString()
	case KindSymbol:
		ok = v.validateSymbol()
	case KindBoolean:
		ok = v.validateBoolean()
	case KindDateTime:
		ok = v.validateDate()
	case KindQuantity:
		ok = v.validateQuantity()
	case KindNumber:
		ok = v.validateNumber()
	case KindLocation:
		ok = v.validateLocation()
	case KindInvalid:
		ok = false
	}

	if !ok {
		clear(v.Fields)
		v.text = v.Raw
	}
	v.valid = ok
	v.Fields[FieldDataType] = TextField(v.Kind.String())
	v.Fields[FieldValid] = BoolField(ok)
	return ok
}

// validateList parses every item with list detection off. The list is
// valid only if all of its items are.
func (v *Value) validateList() bool {
	raw := SplitList(v.text, ListSeparator, EscapeChar)
	v.items = make([]*Value, len(raw))
	ok := true
	for i, s := range raw {
		item := parse(s, v.opts, true)
		if !item.Validate() {
			ok = false
		}
		v.items[i] = item
	}
	v.Fields[FieldListLen] = IntField(len(raw))
	return ok
}

// IsValid reports the result of Validate, validating on first use.
func (v *Value) IsValid() bool { return v.Validate() }

// IsList reports whether the value is a list.
func (v *Value) IsList() bool { return v.Kind == KindList }

// Items returns the validated list items, or nil for non-list values.
func (v *Value) Items() []*Value {
	if v.Kind != KindList {
		return nil
	}
	v.Validate()
	return v.items
}

// Text returns the value text, with any month/day repair applied.
func (v *Value) Text() string { return v.text }

// String implements fmt.Stringer for logging.
func (v *Value) String() string {
	var b strings.Builder
	b.WriteString(v.Kind.String())
	b.WriteString("(")
	b.WriteString(v.Raw)
	b.WriteString(")")
	return b.String()
}
