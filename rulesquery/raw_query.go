package rulesquery

import (
	"net/url"
	"slices"
	"strings"
)

// RawQuery is the flat string-keyed representation of a rules filter as carried in a URL.
//
// A key maps to one or more raw values. For array fields both a single comma-joined value
// ("MAJOR,MINOR") and repeated values ("MAJOR", "MINOR") are legal encodings.
type RawQuery map[string][]string

// RawQueryFromValues converts decoded url.Values into a RawQuery.
// The value slices are copied, so later changes to values don't leak into the RawQuery.
func RawQueryFromValues(values url.Values) RawQuery {
	raw := make(RawQuery, len(values))

	for key, vals := range values {
		raw[key] = slices.Clone(vals)
	}

	return raw
}

// ParseRawQuery decodes a URL query string (with or without the leading "?") into a RawQuery.
//
// It never fails: pairs with malformed escapes are kept with their undecoded text,
// so a hand-edited URL still produces a usable RawQuery.
func ParseRawQuery(rawQuery string) RawQuery {
	raw := make(RawQuery)

	for pair := range strings.SplitSeq(strings.TrimPrefix(rawQuery, "?"), "&") {
		if pair == "" {
			continue
		}

		key, value, _ := strings.Cut(pair, "=")
		key = unescapeQueryComponent(key)
		if key == "" {
			continue
		}

		raw[key] = append(raw[key], unescapeQueryComponent(value))
	}

	return raw
}

func unescapeQueryComponent(s string) string {
	unescaped, err := url.QueryUnescape(s)
	if err != nil {
		return s
	}

	return unescaped
}

// Get returns the first non-empty value for key and whether such a value exists.
func (q RawQuery) Get(key string) (string, bool) {
	for _, value := range q[key] {
		if value != "" {
			return value, true
		}
	}

	return "", false
}

// GetAll returns all raw values for key, in transport order.
func (q RawQuery) GetAll(key string) []string {
	return q[key]
}

// Set replaces all values of key with the single given value.
func (q RawQuery) Set(key, value string) {
	q[key] = []string{value}
}

// Values converts the RawQuery into url.Values.
func (q RawQuery) Values() url.Values {
	values := make(url.Values, len(q))

	for key, vals := range q {
		values[key] = slices.Clone(vals)
	}

	return values
}

// Encode encodes the RawQuery in "URL encoded" form sorted by key.
func (q RawQuery) Encode() string {
	return q.Values().Encode()
}

// CleanQuery strips all keys without a usable value.
//
// Empty strings are removed from each value list; a key whose list ends up empty is dropped.
// The result never contains a key with an absent or empty value.
func CleanQuery(raw RawQuery) RawQuery {
	cleaned := make(RawQuery, len(raw))

	for key, vals := range raw {
		kept := slices.DeleteFunc(slices.Clone(vals), func(v string) bool { return v == "" })
		if len(kept) == 0 {
			continue
		}

		cleaned[key] = slices.Clip(kept)
	}

	return cleaned
}
