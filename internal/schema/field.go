// Package schema declares flat, nullable extraction schemas for structured
// model output. An Object validates parsed JSON locally and renders itself in
// the Gemini response-schema format so the model is constrained by the same
// rules the validator enforces.
package schema

import "regexp"

// Kind is the base JSON type of a field.
type Kind int

const (
	KindString Kind = iota
	KindNumber
	KindEnum
)

func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindEnum:
		return "enum"
	default:
		return "string"
	}
}

// yearPattern matches a four digit year such as "2021".
const yearPattern = `^\d{4}$`

// Field describes one key of an extraction object. Every field is nullable:
// the model reports null for anything it could not find.
type Field struct {
	Key         string
	Kind        Kind
	Description string

	// Min and Max bound number fields when set.
	Min *float64
	Max *float64

	// Pattern constrains string fields when non-empty.
	Pattern string

	// Enum lists the allowed values of an enum field.
	Enum []string

	// Currency marks a number field whose raw value may arrive as a
	// formatted string ("$450,000") and is coerced before validation.
	Currency bool
}

// String declares a free-form string field.
func String(key, description string) Field {
	return Field{Key: key, Kind: KindString, Description: description}
}

// Number declares a plain number field.
func Number(key, description string) Field {
	return Field{Key: key, Kind: KindNumber, Description: description}
}

// Currency declares a bounded number field that accepts currency formatted
// strings.
func Currency(key string, min, max float64, description string) Field {
	return Number(key, description).WithRange(min, max).coerced()
}

// Year declares a string field holding a four digit year.
func Year(key, description string) Field {
	return String(key, description).WithPattern(yearPattern)
}

// Enum declares a string field restricted to values.
func Enum(key, description string, values ...string) Field {
	return Field{Key: key, Kind: KindEnum, Description: description, Enum: values}
}

// WithRange returns a copy of f bounded to [min, max].
func (f Field) WithRange(min, max float64) Field {
	f.Min = &min
	f.Max = &max
	return f
}

// WithPattern returns a copy of f that must match the regular expression p.
// It panics if p does not compile.
func (f Field) WithPattern(p string) Field {
	regexp.MustCompile(p)
	f.Pattern = p
	return f
}

func (f Field) coerced() Field {
	f.Currency = true
	return f
}
