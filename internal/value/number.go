package value

// number.go parses numbers and quantities into exact decimals.
//
// Decimals are kept as pgtype.Numeric (an arbitrary precision integer plus a
// base 10 exponent) so exploded cells print back the value that was read,
// without float rounding. Trailing zeros are folded into the exponent,
// which makes "1.50", "1.5" and "15e-1" serialize identically.

import (
	"math"
	"math/big"
	"regexp"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgtype"
)

// Bounds on what ParseDecimal accepts. The exponent bound applies to the
// written exponent; folding trailing zeros may move the stored exponent
// past it. Digit count bounds the big.Int conversion.
const (
	maxDecimalExponent = 1000
	maxDecimalDigits   = 10000
)

const numberPattern = `[+-]?(?:\d+(?:\.\d*)?|\.\d+)(?:[eE][+-]?\d+)?`

var (
	numberRegex = regexp.MustCompile(`^` + numberPattern + `$`)

	// quantityRegex: number, optional [low,high] tolerance, optional unit.
	// Units are SI-style symbols (letters, optional exponent) or Q node ids.
	quantityRegex = regexp.MustCompile(
		`^(` + numberPattern + `)` +
			`(?:\[(` + numberPattern + `),(` + numberPattern + `)\])?` +
			`([A-Za-z][A-Za-z]*(?:-?\d+)?|Q[1-9]\d*)?$`)
)

// ParseDecimal parses s into an exact decimal.
// Returns false if s is not a plain number.
func ParseDecimal(s string) (pgtype.Numeric, bool) {
	if !numberRegex.MatchString(s) {
		return pgtype.Numeric{}, false
	}

	mantissa, expPart, _ := strings.Cut(strings.ToLower(s), "e")
	exp := 0
	if expPart != "" {
		e, err := strconv.Atoi(expPart)
		if err != nil || e > maxDecimalExponent || e < -maxDecimalExponent {
			return pgtype.Numeric{}, false
		}
		exp = e
	}

	intPart, frac, _ := strings.Cut(mantissa, ".")
	exp -= len(frac)

	digits := intPart + frac
	neg := strings.HasPrefix(digits, "-")
	digits = strings.TrimLeft(digits, "+-0")
	if digits == "" {
		return pgtype.Numeric{Int: new(big.Int), Valid: true}, true
	}

	sig := strings.TrimRight(digits, "0")
	exp += len(digits) - len(sig)
	if len(sig) > maxDecimalDigits || exp > math.MaxInt32 || exp < math.MinInt32 {
		return pgtype.Numeric{}, false
	}

	n, ok := new(big.Int).SetString(sig, 10)
	if !ok {
		return pgtype.Numeric{}, false
	}
	if neg {
		n.Neg(n)
	}

	return pgtype.Numeric{Int: n, Exp: int32(exp), Valid: true}, true
}

// formatDecimal renders a decimal in plain notation ("1500", "0.001").
func formatDecimal(n pgtype.Numeric) string {
	if !n.Valid {
		return ""
	}
	b, err := n.MarshalJSON()
	if err != nil {
		return ""
	}
	return strings.Trim(string(b), `"`)
}

// decimalFloat returns n as a float64 for range checks.
func decimalFloat(n pgtype.Numeric) (float64, bool) {
	f, err := n.Float64Value()
	if err != nil || !f.Valid {
		return 0, false
	}
	return f.Float64, true
}

// validateNumber handles the plain number kind.
func (v *Value) validateNumber() bool {
	n, ok := ParseDecimal(v.text)
	if !ok {
		return false
	}
	v.Fields[FieldNumber] = DecimalField(n)
	return true
}

// validateQuantity handles numbers with a tolerance and/or unit.
func (v *Value) validateQuantity() bool {
	m := quantityRegex.FindStringSubmatch(v.text)
	if m == nil {
		return false
	}

	n, ok := ParseDecimal(m[1])
	if !ok {
		return false
	}
	v.Fields[FieldNumber] = DecimalField(n)

	if m[2] != "" {
		low, okLow := ParseDecimal(m[2])
		high, okHigh := ParseDecimal(m[3])
		if !okLow || !okHigh {
			return false
		}
		lf, _ := decimalFloat(low)
		hf, _ := decimalFloat(high)
		if lf > hf {
			return false
		}
		v.Fields[FieldLowTolerance] = DecimalField(low)
		v.Fields[FieldHighTolerance] = DecimalField(high)
	}

	if m[4] != "" {
		v.Fields[FieldUnits] = TextField(m[4])
	}
	return true
}
