package validation

import (
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// Validity holds the built-in constraint flags for one value.
type Validity struct {
	ValueMissing    bool
	TypeMismatch    bool
	PatternMismatch bool
	TooShort        bool
}

func (v Validity) Has(flag Flag) bool {
	switch flag {
	case FlagValueMissing:
		return v.ValueMissing
	case FlagTypeMismatch:
		return v.TypeMismatch
	case FlagPatternMismatch:
		return v.PatternMismatch
	case FlagTooShort:
		return v.TooShort
	default:
		return false
	}
}

// CheckValidity computes the flags the way an HTML form control would.
// Number and url values are stripped of surrounding whitespace first; text
// values are taken as typed.
func CheckValidity(f Field, value string) Validity {
	if f.Type != TypeText {
		value = strings.TrimSpace(value)
	}
	var v Validity
	if value == "" {
		v.ValueMissing = f.Required
		return v
	}

	switch f.Type {
	case TypeNumber:
		n, err := decimal.NewFromString(value)
		if err != nil {
			v.TypeMismatch = true
			return v
		}
		if f.Min.Valid && n.LessThan(f.Min.Decimal) {
			v.TooShort = true
		}
	case TypeURL:
		if !isAbsoluteURL(value) {
			v.TypeMismatch = true
		}
	}

	if f.Pattern != nil && !f.Pattern.MatchString(value) {
		v.PatternMismatch = true
	}
	if f.Type != TypeNumber && f.MinLength > 0 && utf8.RuneCountInString(value) < f.MinLength {
		v.TooShort = true
	}
	return v
}

func isAbsoluteURL(value string) bool {
	u, err := url.Parse(value)
	return err == nil && u.Scheme != ""
}
