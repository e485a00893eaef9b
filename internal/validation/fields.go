package validation

import (
	"regexp"

	"github.com/shopspring/decimal"
)

const (
	FieldName  = "name"
	FieldPrice = "price"
	FieldImage = "image"
)

type FieldType string

const (
	TypeText   FieldType = "text"
	TypeNumber FieldType = "number"
	TypeURL    FieldType = "url"
)

// Flag names one built-in validity condition. Flags are checked in the
// order of the Flags slice.
type Flag string

const (
	FlagValueMissing    Flag = "valueMissing"
	FlagTypeMismatch    Flag = "typeMismatch"
	FlagPatternMismatch Flag = "patternMismatch"
	FlagTooShort        Flag = "tooShort"
)

var Flags = []Flag{FlagValueMissing, FlagTypeMismatch, FlagPatternMismatch, FlagTooShort}

const (
	fallbackNameLength = "The name must be between 3 and 100 characters."
	fallbackImageURL   = "The image URL is not valid."
	fallbackRequired   = "This field is required."
)

// Field describes one form input and its constraints.
type Field struct {
	Name      string
	Type      FieldType
	Required  bool
	MinLength int
	MaxLength int
	Pattern   *regexp.Regexp
	Min       decimal.NullDecimal

	// StrictLength makes a character count outside [MinLength, MaxLength]
	// fail before any other check.
	StrictLength bool
}

type Messages map[Flag]string

var namePattern = regexp.MustCompile(`^(?:[\p{L}\p{N}\s.,'&()/\-]+)$`)

// DefaultFields returns the product form in display order.
func DefaultFields() []Field {
	return []Field{
		{
			Name:         FieldName,
			Type:         TypeText,
			Required:     true,
			MinLength:    3,
			MaxLength:    100,
			Pattern:      namePattern,
			StrictLength: true,
		},
		{
			Name:     FieldPrice,
			Type:     TypeNumber,
			Required: true,
			Min:      decimal.NewNullDecimal(decimal.NewFromInt(1)),
		},
		{
			Name:      FieldImage,
			Type:      TypeURL,
			Required:  true,
			MinLength: 3,
		},
	}
}

func DefaultMessages() map[string]Messages {
	return map[string]Messages{
		FieldName: {
			FlagValueMissing:    "The name field cannot be empty.",
			FlagPatternMismatch: "Please enter a valid name.",
			FlagTooShort:        fallbackNameLength,
		},
		FieldPrice: {
			FlagValueMissing: "The price field cannot be empty.",
			FlagTypeMismatch: "Please enter a valid price.",
			FlagTooShort:     "The minimum price is 1.",
		},
		FieldImage: {
			FlagValueMissing: "The URL field cannot be empty.",
			FlagTypeMismatch: "Please enter a valid image URL.",
			FlagTooShort:     "The URL must be at least 3 characters.",
		},
	}
}
