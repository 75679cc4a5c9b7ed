package rulesquery_test

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/AntonStoeckl/coding-rules-query-go/rulesquery"
)

func Test_ParseRawQuery(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected rulesquery.RawQuery
	}{
		{name: "empty", input: "", expected: rulesquery.RawQuery{}},
		{name: "leading_question_mark", input: "?q=x", expected: rulesquery.RawQuery{"q": {"x"}}},
		{
			name:     "repeated_keys",
			input:    "tags=a&tags=b",
			expected: rulesquery.RawQuery{"tags": {"a", "b"}},
		},
		{
			name:     "escaped_comma",
			input:    "severities=MAJOR%2CMINOR",
			expected: rulesquery.RawQuery{"severities": {"MAJOR,MINOR"}},
		},
		{
			name:     "malformed_escape_is_kept",
			input:    "q=100%&languages=java",
			expected: rulesquery.RawQuery{"q": {"100%"}, "languages": {"java"}},
		},
		{
			name:     "key_without_value",
			input:    "activation&q=",
			expected: rulesquery.RawQuery{"activation": {""}, "q": {""}},
		},
		{
			name:     "plus_is_space",
			input:    "q=null+pointer",
			expected: rulesquery.RawQuery{"q": {"null pointer"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, rulesquery.ParseRawQuery(tt.input))
		})
	}
}

func Test_RawQuery_Get(t *testing.T) {
	raw := rulesquery.RawQuery{"q": {"", "second"}, "empty": {""}}

	value, ok := raw.Get("q")
	assert.True(t, ok)
	assert.Equal(t, "second", value)

	_, ok = raw.Get("empty")
	assert.False(t, ok)

	_, ok = raw.Get("missing")
	assert.False(t, ok)
}

func Test_RawQueryFromValues_CopiesValues(t *testing.T) {
	values := url.Values{"tags": {"a"}}

	raw := rulesquery.RawQueryFromValues(values)
	values["tags"][0] = "changed"

	assert.Equal(t, []string{"a"}, raw.GetAll("tags"))
}

func Test_RawQuery_Encode_IsSortedByKey(t *testing.T) {
	raw := rulesquery.RawQuery{"tags": {"cert"}, "severities": {"MAJOR,MINOR"}, "activation": {"true"}}

	assert.Equal(t, "activation=true&severities=MAJOR%2CMINOR&tags=cert", raw.Encode())
}

func Test_CleanQuery(t *testing.T) {
	raw := rulesquery.RawQuery{
		"keep":    {"a"},
		"partial": {"", "b"},
		"empty":   {""},
		"none":    {},
		"nil":     nil,
	}

	cleaned := rulesquery.CleanQuery(raw)

	assert.Equal(t, rulesquery.RawQuery{"keep": {"a"}, "partial": {"b"}}, cleaned)
	assert.Equal(t, []string{"", "b"}, raw["partial"], "input must not be modified")
}
