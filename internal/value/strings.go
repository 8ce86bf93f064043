package value

import (
	"regexp"
	"strings"

	"golang.org/x/text/language"
)

var (
	strictStringRegex = regexp.MustCompile(`^"((?:[^"\\]|\\.)*)"$`)
	laxStringRegex    = regexp.MustCompile(`^"(.*)"$`)

	strictLQStringRegex = regexp.MustCompile(`^'((?:[^'\\]|\\.)*)'@([A-Za-z]{2,3})(?:-([A-Za-z0-9]{1,8}))?$`)
	laxLQStringRegex    = regexp.MustCompile(`^'(.*)'@([A-Za-z]{2,3})(?:-([A-Za-z0-9]{1,8}))?$`)

	symbolRegex = regexp.MustCompile(`^[\p{L}_][\p{L}\p{N}_:./#\-~%+]*$`)
)

// Boolean literals.
const (
	TrueLiteral  = "True"
	FalseLiteral = "False"
)

func (v *Value) validateString() bool {
	re := strictStringRegex
	if v.opts.AllowLaxStrings {
		re = laxStringRegex
	}
	m := re.FindStringSubmatch(v.text)
	if m == nil {
		return false
	}
	v.Fields[FieldText] = TextField(m[1])
	v.Fields[FieldDecodedText] = DecodedTextField(decodeEscapes(m[1]))
	return true
}

func (v *Value) validateLanguageString() bool {
	re := strictLQStringRegex
	if v.opts.AllowLaxLQStrings {
		re = laxLQStringRegex
	}
	m := re.FindStringSubmatch(v.text)
	if m == nil {
		return false
	}

	lang, suffix := strings.ToLower(m[2]), strings.ToLower(m[3])
	if suffix != "" && !v.opts.AllowLanguageSuffixes {
		return false
	}
	if !v.knownLanguage(lang, suffix) {
		return false
	}

	v.Fields[FieldText] = TextField(m[1])
	v.Fields[FieldDecodedText] = DecodedTextField(decodeEscapes(m[1]))
	v.Fields[FieldLanguage] = TextField(lang)
	if suffix != "" {
		v.Fields[FieldLanguageSuffix] = TextField(suffix)
	}
	return true
}

// knownLanguage accepts ISO 639 codes and the configured extra codes. An
// extra code may be a bare language or a full language-suffix tag.
func (v *Value) knownLanguage(lang, suffix string) bool {
	if v.opts.isAdditionalLanguage(lang) {
		return true
	}
	if suffix != "" && v.opts.isAdditionalLanguage(lang+"-"+suffix) {
		return true
	}
	_, err := language.ParseBase(lang)
	return err == nil
}

func (v *Value) validateSymbol() bool {
	if !symbolRegex.MatchString(v.text) {
		return false
	}
	v.Fields[FieldSymbol] = TextField(v.text)
	return true
}

func (v *Value) validateBoolean() bool {
	switch v.text {
	case TrueLiteral:
		v.Fields[FieldTruth] = BoolField(true)
	case FalseLiteral:
		v.Fields[FieldTruth] = BoolField(false)
	default:
		return false
	}
	return true
}

// decodeEscapes resolves backslash escapes inside string literals.
// Unknown escapes keep the escaped character.
func decodeEscapes(s string) string {
	if !strings.ContainsRune(s, EscapeChar) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	escaped := false
	for _, r := range s {
		if !escaped {
			if r == EscapeChar {
				escaped = true
				continue
			}
			b.WriteRune(r)
			continue
		}
		escaped = false
		switch r {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		default:
			b.WriteRune(r)
		}
	}
	if escaped {
		b.WriteRune(EscapeChar)
	}
	return b.String()
}
