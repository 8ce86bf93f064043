package value

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgtype"
)

// Recognized sub-field names.
const (
	FieldDataType       = "data_type"
	FieldValid          = "valid"
	FieldListLen        = "list_len"
	FieldText           = "text"
	FieldDecodedText    = "decoded_text"
	FieldLanguage       = "language"
	FieldLanguageSuffix = "language_suffix"
	FieldSymbol         = "symbol"
	FieldTruth          = "truth"
	FieldNumber         = "number"
	FieldLowTolerance   = "low_tolerance"
	FieldHighTolerance  = "high_tolerance"
	FieldUnits          = "units"
	FieldDateAndTime    = "date_and_time"
	FieldYear           = "year"
	FieldMonth          = "month"
	FieldDay            = "day"
	FieldHour           = "hour"
	FieldMinutes        = "minutes"
	FieldSeconds        = "seconds"
	FieldZone           = "zonestr"
	FieldPrecision      = "precision"
	FieldLatitude       = "latitude"
	FieldLongitude      = "longitude"
)

// FieldNames lists every sub-field name any kind can produce, in the
// order used when no explicit field list is given.
var FieldNames = []string{
	FieldDataType,
	FieldValid,
	FieldListLen,
	FieldText,
	FieldDecodedText,
	FieldLanguage,
	FieldLanguageSuffix,
	FieldSymbol,
	FieldTruth,
	FieldNumber,
	FieldLowTolerance,
	FieldHighTolerance,
	FieldUnits,
	FieldDateAndTime,
	FieldYear,
	FieldMonth,
	FieldDay,
	FieldHour,
	FieldMinutes,
	FieldSeconds,
	FieldZone,
	FieldPrecision,
	FieldLatitude,
	FieldLongitude,
}

var knownFields = func() map[string]struct{} {
	m := make(map[string]struct{}, len(FieldNames))
	for _, n := range FieldNames {
		m[n] = struct{}{}
	}
	return m
}()

// IsFieldName reports whether name is a recognized sub-field name.
func IsFieldName(name string) bool {
	_, ok := knownFields[name]
	return ok
}

type fieldType int

const (
	fieldText fieldType = iota
	fieldInt
	fieldDecimal
	fieldBool
	fieldDecoded
)

// Field is one scalar sub-field of a parsed value.
type Field struct {
	typ fieldType
	s   string
	i   int
	pad int // minimum digits of an integer field
	n   pgtype.Numeric
	b   bool
}

// TextField returns a text sub-field.
func TextField(s string) Field { return Field{typ: fieldText, s: s} }

// DecodedTextField returns a text sub-field holding decoded string content.
// Its cell text re-escapes backslash, tab, newline and carriage return so
// the cell stays on one TSV line.
func DecodedTextField(s string) Field { return Field{typ: fieldDecoded, s: s} }

// IntField returns an integer sub-field.
func IntField(i int) Field { return Field{typ: fieldInt, i: i} }

// PaddedIntField returns an integer sub-field written with at least width
// digits, zero padded.
func PaddedIntField(i, width int) Field { return Field{typ: fieldInt, i: i, pad: width} }

// DecimalField returns an exact decimal sub-field.
func DecimalField(n pgtype.Numeric) Field { return Field{typ: fieldDecimal, n: n} }

// BoolField returns a boolean sub-field.
func BoolField(b bool) Field { return Field{typ: fieldBool, b: b} }

// String returns the canonical cell text for the field. This text is what
// lands in exploded columns, so changing it changes the output format.
//
//   - text: as stored, no quotes added
//   - decoded text: \\, \t, \n and \r re-escaped
//   - integers: base 10, zero padded when built by PaddedIntField
//   - decimals: plain decimal notation, no exponent
//   - booleans: True / False
func (f Field) String() string {
	switch f.typ {
	case fieldInt:
		if f.pad > 0 {
			return fmt.Sprintf("%0*d", f.pad, f.i)
		}
		return strconv.Itoa(f.i)
	case fieldDecimal:
		return formatDecimal(f.n)
	case fieldBool:
		if f.b {
			return "True"
		}
		return "False"
	case fieldDecoded:
		return cellEscaper.Replace(f.s)
	default:
		return f.s
	}
}

var cellEscaper = strings.NewReplacer(`\`, `\\`, "\t", `\t`, "\n", `\n`, "\r", `\r`)

// Float64 returns the numeric value of an integer or decimal field.
func (f Field) Float64() (float64, bool) {
	switch f.typ {
	case fieldInt:
		return float64(f.i), true
	case fieldDecimal:
		v, err := f.n.Float64Value()
		if err != nil || !v.Valid {
			return 0, false
		}
		return v.Float64, true
	default:
		return 0, false
	}
}

// Fields maps sub-field names to their values.
type Fields map[string]Field

// Strings returns the canonical text of every field.
func (fs Fields) Strings() map[string]string {
	out := make(map[string]string, len(fs))
	for k, v := range fs {
		out[k] = v.String()
	}
	return out
}
