package rulesquery_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/AntonStoeckl/coding-rules-query-go/rulesquery"
)

//nolint:funlen
func Test_AreQueriesEqual(t *testing.T) {
	tests := []struct {
		name     string
		a        rulesquery.RawQuery
		b        rulesquery.RawQuery
		expected bool
	}{
		{
			name:     "array_order_is_irrelevant",
			a:        rulesquery.RawQuery{"severities": {"MAJOR,MINOR"}},
			b:        rulesquery.RawQuery{"severities": {"MINOR,MAJOR"}},
			expected: true,
		},
		{
			name:     "array_encoding_is_irrelevant",
			a:        rulesquery.RawQuery{"tags": {"cert,cwe"}},
			b:        rulesquery.RawQuery{"tags": {"cwe", "cert"}},
			expected: true,
		},
		{
			name:     "duplicates_are_irrelevant",
			a:        rulesquery.RawQuery{"tags": {"cert,cert"}},
			b:        rulesquery.RawQuery{"tags": {"cert"}},
			expected: true,
		},
		{
			name:     "different_array_members",
			a:        rulesquery.RawQuery{"severities": {"MAJOR"}},
			b:        rulesquery.RawQuery{"severities": {"MAJOR,MINOR"}},
			expected: false,
		},
		{
			name:     "boolean_literal_is_case_sensitive",
			a:        rulesquery.RawQuery{"is_template": {"true"}},
			b:        rulesquery.RawQuery{"is_template": {"TRUE"}},
			expected: false,
		},
		{
			name:     "malformed_boolean_equals_absent",
			a:        rulesquery.RawQuery{"is_template": {"TRUE"}},
			b:        rulesquery.RawQuery{},
			expected: true,
		},
		{
			name:     "redundant_empty_parameter",
			a:        rulesquery.RawQuery{"q": {""}, "languages": {"java"}},
			b:        rulesquery.RawQuery{"languages": {"java"}},
			expected: true,
		},
		{
			name:     "unknown_keys_are_ignored",
			a:        rulesquery.RawQuery{"open": {"java:S1"}},
			b:        rulesquery.RawQuery{"open": {"java:S2"}},
			expected: true,
		},
		{
			name:     "different_scalar",
			a:        rulesquery.RawQuery{"qprofile": {"A"}},
			b:        rulesquery.RawQuery{"qprofile": {"B"}},
			expected: false,
		},
		{
			name:     "invalid_inheritance_equals_absent",
			a:        rulesquery.RawQuery{"inheritance": {"BOGUS"}},
			b:        rulesquery.RawQuery{},
			expected: true,
		},
		{
			name:     "different_dates",
			a:        rulesquery.RawQuery{"available_since": {"2020-01-01"}},
			b:        rulesquery.RawQuery{"available_since": {"2020-01-02"}},
			expected: false,
		},
		{
			name:     "true_differs_from_false",
			a:        rulesquery.RawQuery{"activation": {"true"}},
			b:        rulesquery.RawQuery{"activation": {"false"}},
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, rulesquery.AreQueriesEqual(tt.a, tt.b))
			assert.Equal(t, tt.expected, rulesquery.AreQueriesEqual(tt.b, tt.a), "equality must be symmetric")
		})
	}
}

func Test_QueriesEqual_When_ArraysAreNilOrEmpty(t *testing.T) {
	a := rulesquery.Query{}
	b := rulesquery.ParseQuery(rulesquery.RawQuery{})

	assert.True(t, rulesquery.QueriesEqual(a, b))
}

func Test_QueriesEqual_ComparesDatesByCalendarDay(t *testing.T) {
	a := rulesquery.Query{AvailableSince: time.Date(2021, 6, 1, 0, 0, 0, 0, time.UTC)}
	b := rulesquery.Query{AvailableSince: time.Date(2021, 6, 1, 15, 30, 0, 0, time.UTC)}
	c := rulesquery.Query{AvailableSince: time.Date(2021, 6, 2, 0, 0, 0, 0, time.UTC)}

	assert.True(t, rulesquery.QueriesEqual(a, b))
	assert.False(t, rulesquery.QueriesEqual(a, c))
}

func Test_Canonical_EncodesEqualQueriesIdentically(t *testing.T) {
	a := rulesquery.ParseQuery(rulesquery.ParseRawQuery("tags=sql,cwe&languages=java&severities=MAJOR&severities=MAJOR"))
	b := rulesquery.ParseQuery(rulesquery.ParseRawQuery("languages=java&severities=MAJOR&tags=cwe&tags=sql&tags=cwe"))

	assert.True(t, rulesquery.QueriesEqual(a, b))
	assert.Equal(
		t,
		rulesquery.SerializeQuery(a.Canonical()).Encode(),
		rulesquery.SerializeQuery(b.Canonical()).Encode(),
	)
	assert.Equal(t, []string{"sql", "cwe"}, a.Tags, "the receiver must not change")
}
