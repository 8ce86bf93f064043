package value

import (
	"regexp"
	"strconv"
	"strings"
)

// DatePrefix marks a date-and-time literal. It is optional when the date
// carries at least a month.
const DatePrefix = '^'

// Wikidata uses precisions 0 (billion years) to 14 (second).
const maxDatePrecision = 14

var dateRegex = regexp.MustCompile(
	`^(?P<year>[+-]?\d{4})` +
		`(?:-(?P<month>\d{2})(?:-(?P<day>\d{2}))?)?` +
		`(?:T(?P<hour>\d{2})(?::(?P<minutes>\d{2})(?::(?P<seconds>\d{2})(?P<fraction>\.\d+)?)?)?)?` +
		`(?P<zone>Z|[+-]\d{2}(?::?\d{2})?)?` +
		`(?:/(?P<precision>\d{1,2}))?$`)

var (
	dateYear      = dateRegex.SubexpIndex("year")
	dateMonth     = dateRegex.SubexpIndex("month")
	dateDay       = dateRegex.SubexpIndex("day")
	dateHour      = dateRegex.SubexpIndex("hour")
	dateMinutes   = dateRegex.SubexpIndex("minutes")
	dateSeconds   = dateRegex.SubexpIndex("seconds")
	dateFraction  = dateRegex.SubexpIndex("fraction")
	dateZone      = dateRegex.SubexpIndex("zone")
	datePrecision = dateRegex.SubexpIndex("precision")
)

// looksLikeDate is the structural test used during classification.
func looksLikeDate(s string) bool {
	if strings.HasPrefix(s, string(DatePrefix)) {
		return dateRegex.MatchString(s[1:])
	}
	m := dateRegex.FindStringSubmatch(s)
	return m != nil && m[dateMonth] != ""
}

// validateDate checks ranges and applies the month/day zero policy.
func (v *Value) validateDate() bool {
	s := strings.TrimPrefix(v.text, string(DatePrefix))
	m := dateRegex.FindStringSubmatch(s)
	if m == nil {
		return false
	}

	year, err := strconv.Atoi(m[dateYear])
	if err != nil || year < v.opts.MinimumValidYear || year > v.opts.MaximumValidYear {
		return false
	}

	monthStr, dayStr := m[dateMonth], m[dateDay]
	month, day := atoiOr(monthStr, -1), atoiOr(dayStr, -1)

	if month == 0 || day == 0 {
		switch {
		case v.opts.RepairMonthOrDayZero:
			if month == 0 {
				month, monthStr = 1, "01"
			}
			if day == 0 {
				day, dayStr = 1, "01"
			}
		case v.opts.AllowMonthOrDayZero:
		default:
			return false
		}
	}
	if month > 12 || day > 31 {
		return false
	}

	hour, minutes, seconds := atoiOr(m[dateHour], -1), atoiOr(m[dateMinutes], -1), atoiOr(m[dateSeconds], -1)
	if hour > 23 || minutes > 59 || seconds > 60 {
		return false
	}

	precision := atoiOr(m[datePrecision], -1)
	if precision > maxDatePrecision {
		return false
	}

	// Rebuild the date text so a repair shows up in the output.
	var b strings.Builder
	b.WriteString(m[dateYear])
	if monthStr != "" {
		b.WriteString("-" + monthStr)
		if dayStr != "" {
			b.WriteString("-" + dayStr)
		}
	}
	if m[dateHour] != "" {
		b.WriteString("T" + m[dateHour])
		if m[dateMinutes] != "" {
			b.WriteString(":" + m[dateMinutes])
			if m[dateSeconds] != "" {
				b.WriteString(":" + m[dateSeconds] + m[dateFraction])
			}
		}
	}
	b.WriteString(m[dateZone])
	dateText := b.String()

	if monthStr != m[dateMonth] || dayStr != m[dateDay] {
		repaired := string(DatePrefix) + dateText
		if m[datePrecision] != "" {
			repaired += "/" + m[datePrecision]
		}
		v.text = repaired
	}

	v.Fields[FieldDateAndTime] = TextField(dateText)
	v.Fields[FieldYear] = IntField(year)
	if month >= 0 {
		v.Fields[FieldMonth] = PaddedIntField(month, 2)
	}
	if day >= 0 {
		v.Fields[FieldDay] = PaddedIntField(day, 2)
	}
	if hour >= 0 {
		v.Fields[FieldHour] = PaddedIntField(hour, 2)
	}
	if minutes >= 0 {
		v.Fields[FieldMinutes] = PaddedIntField(minutes, 2)
	}
	if seconds >= 0 {
		v.Fields[FieldSeconds] = PaddedIntField(seconds, 2)
	}
	if m[dateZone] != "" {
		v.Fields[FieldZone] = TextField(m[dateZone])
	}
	if precision >= 0 {
		v.Fields[FieldPrecision] = IntField(precision)
	}
	return true
}

// atoiOr parses a non-negative decimal, returning def for empty input.
func atoiOr(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
