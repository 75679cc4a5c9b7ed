package rulesquery

import (
	"strings"
	"time"
)

// DateShortLayout is the only date format accepted and produced for date fields.
const DateShortLayout = "2006-01-02"

const (
	literalTrue    = "true"
	literalFalse   = "false"
	arraySeparator = ","
)

// ParseOptionalBoolean maps the exact, case-sensitive literals "true" and "false" to a boolean.
// Anything else, including "TRUE" or an empty string, yields nil (unset).
func ParseOptionalBoolean(value string) *bool {
	switch value {
	case literalTrue:
		b := true
		return &b
	case literalFalse:
		b := false
		return &b
	default:
		return nil
	}
}

// ParseDate parses a calendar date in DateShortLayout as UTC midnight.
// Unparsable input yields the zero time.Time, which means unset.
// 0001-01-01 is the zero time.Time itself, so it reads as unset and is never serialized.
func ParseDate(value string) time.Time {
	if value == "" {
		return time.Time{}
	}

	date, err := time.ParseInLocation(DateShortLayout, value, time.UTC)
	if err != nil {
		return time.Time{}
	}

	return date
}

// ParseOptionalString returns value unchanged. An empty string means unset,
// so there is nothing to normalize; the function exists to keep field parsing uniform.
func ParseOptionalString(value string) string {
	return value
}

// ParseArray splits every raw value on commas and drops empty elements.
//
// It accepts both encodings of an array: a single comma-joined value or an already split sequence.
// The result keeps the transport order and is never nil.
func ParseArray(values []string) []string {
	parsed := make([]string, 0, len(values))

	for _, value := range values {
		for element := range strings.SplitSeq(value, arraySeparator) {
			if element = ParseOptionalString(element); element != "" {
				parsed = append(parsed, element)
			}
		}
	}

	return parsed
}

// SerializeOptionalBoolean is the inverse of ParseOptionalBoolean.
// The second return value reports whether the key should be emitted.
func SerializeOptionalBoolean(value *bool) (string, bool) {
	if value == nil {
		return "", false
	}

	if *value {
		return literalTrue, true
	}

	return literalFalse, true
}

// SerializeDateShort is the inverse of ParseDate.
// The second return value reports whether the key should be emitted.
func SerializeDateShort(value time.Time) (string, bool) {
	if value.IsZero() {
		return "", false
	}

	return value.Format(DateShortLayout), true
}

// SerializeString emits non-empty strings unchanged.
// The second return value reports whether the key should be emitted.
func SerializeString(value string) (string, bool) {
	return value, value != ""
}

// SerializeStringArray joins the elements with commas.
//
// An empty array omits the key, so a cleared filter and a filter that was never set
// look the same on the wire.
func SerializeStringArray(values []string) (string, bool) {
	nonEmpty := make([]string, 0, len(values))
	for _, value := range values {
		if value != "" {
			nonEmpty = append(nonEmpty, value)
		}
	}

	if len(nonEmpty) == 0 {
		return "", false
	}

	return strings.Join(nonEmpty, arraySeparator), true
}
