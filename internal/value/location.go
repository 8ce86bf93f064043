package value

import "regexp"

// LocationPrefix marks the @lat/lon coordinate form.
const LocationPrefix = '@'

var (
	prefixedLocationRegex = regexp.MustCompile(`^@(` + numberPattern + `)/(` + numberPattern + `)$`)
	pairLocationRegex     = regexp.MustCompile(`^(` + numberPattern + `),(` + numberPattern + `)$`)
)

func looksLikeCoordinatePair(s string) bool {
	return pairLocationRegex.MatchString(s)
}

func (v *Value) validateLocation() bool {
	m := prefixedLocationRegex.FindStringSubmatch(v.text)
	if m == nil {
		m = pairLocationRegex.FindStringSubmatch(v.text)
	}
	if m == nil {
		return false
	}

	lat, okLat := ParseDecimal(m[1])
	lon, okLon := ParseDecimal(m[2])
	if !okLat || !okLon {
		return false
	}
	latF, _ := decimalFloat(lat)
	lonF, _ := decimalFloat(lon)
	if latF < v.opts.MinimumValidLat || latF > v.opts.MaximumValidLat {
		return false
	}
	if lonF < v.opts.MinimumValidLon || lonF > v.opts.MaximumValidLon {
		return false
	}

	v.Fields[FieldLatitude] = DecimalField(lat)
	v.Fields[FieldLongitude] = DecimalField(lon)
	return true
}
