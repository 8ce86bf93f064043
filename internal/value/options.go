package value

import (
	"errors"
	"fmt"
	"strings"
)

// Default option bounds.
const (
	// DefaultMinimumValidYear follows ISO 8601: earlier years need special agreement.
	DefaultMinimumValidYear = 1583
	DefaultMaximumValidYear = 2100

	DefaultMinimumValidLat = -90.0
	DefaultMaximumValidLat = 90.0
	DefaultMinimumValidLon = -180.0
	DefaultMaximumValidLon = 180.0
)

// Options controls how raw cell text is classified and validated.
//
// Build one with NewOptions (or DefaultOptions) at startup and share the
// returned pointer read-only for the rest of the run.
type Options struct {
	MinimumValidYear int
	MaximumValidYear int

	MinimumValidLat float64
	MaximumValidLat float64
	MinimumValidLon float64
	MaximumValidLon float64

	// AllowMonthOrDayZero accepts "2020-00-00" style dates as written.
	// Not ISO 8601, but common in Wikidata dumps.
	AllowMonthOrDayZero bool

	// RepairMonthOrDayZero rewrites a zero month or day to 01.
	// Wins over AllowMonthOrDayZero when both are set.
	RepairMonthOrDayZero bool

	// AllowLaxStrings skips the check that internal double quotes are escaped.
	AllowLaxStrings bool

	// AllowLaxLQStrings skips the check that internal single quotes are
	// escaped in language-qualified strings.
	AllowLaxLQStrings bool

	// AllowLanguageSuffixes accepts 'text'@en-gb style region suffixes.
	AllowLanguageSuffixes bool

	// EscapeListSeparators treats every list separator as literal text,
	// so no cell is ever a list.
	EscapeListSeparators bool

	// AdditionalLanguageCodes are accepted in addition to ISO 639 codes.
	AdditionalLanguageCodes []string

	additional map[string]struct{}
}

// DefaultOptions returns a new Options with the standard defaults.
func DefaultOptions() *Options {
	opts, err := NewOptions(Options{
		MinimumValidYear:      DefaultMinimumValidYear,
		MaximumValidYear:      DefaultMaximumValidYear,
		MinimumValidLat:       DefaultMinimumValidLat,
		MaximumValidLat:       DefaultMaximumValidLat,
		MinimumValidLon:       DefaultMinimumValidLon,
		MaximumValidLon:       DefaultMaximumValidLon,
		AllowLanguageSuffixes: true,
	})
	if err != nil {
		// The defaults are constants; failing here is a programming error.
		panic(fmt.Sprintf("value: invalid default options: %v", err))
	}
	return opts
}

// NewOptions validates o and returns a copy ready for use.
// All problems are reported together.
func NewOptions(o Options) (*Options, error) {
	var errs []error

	if o.MinimumValidYear > o.MaximumValidYear {
		errs = append(errs, fmt.Errorf("minimum valid year (%d) must be <= maximum valid year (%d)",
			o.MinimumValidYear, o.MaximumValidYear))
	}
	if o.MinimumValidLat > o.MaximumValidLat {
		errs = append(errs, fmt.Errorf("minimum valid latitude (%g) must be <= maximum valid latitude (%g)",
			o.MinimumValidLat, o.MaximumValidLat))
	}
	if o.MinimumValidLat < DefaultMinimumValidLat || o.MaximumValidLat > DefaultMaximumValidLat {
		errs = append(errs, fmt.Errorf("latitude bounds must lie within [%g, %g]",
			DefaultMinimumValidLat, DefaultMaximumValidLat))
	}
	if o.MinimumValidLon > o.MaximumValidLon {
		errs = append(errs, fmt.Errorf("minimum valid longitude (%g) must be <= maximum valid longitude (%g)",
			o.MinimumValidLon, o.MaximumValidLon))
	}
	if o.MinimumValidLon < DefaultMinimumValidLon || o.MaximumValidLon > DefaultMaximumValidLon {
		errs = append(errs, fmt.Errorf("longitude bounds must lie within [%g, %g]",
			DefaultMinimumValidLon, DefaultMaximumValidLon))
	}

	codes := make([]string, 0, len(o.AdditionalLanguageCodes))
	set := make(map[string]struct{}, len(o.AdditionalLanguageCodes))
	for _, c := range o.AdditionalLanguageCodes {
		c = strings.ToLower(strings.TrimSpace(c))
		if c == "" {
			errs = append(errs, errors.New("additional language codes must not be empty"))
			continue
		}
		if _, dup := set[c]; dup {
			continue
		}
		set[c] = struct{}{}
		codes = append(codes, c)
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("invalid value options: %w", errors.Join(errs...))
	}

	out := o
	out.AdditionalLanguageCodes = codes
	out.additional = set
	return &out, nil
}

// isAdditionalLanguage reports whether code was configured as an extra
// language code. code must already be lowercase.
func (o *Options) isAdditionalLanguage(code string) bool {
	_, ok := o.additional[code]
	return ok
}
