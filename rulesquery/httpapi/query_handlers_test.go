package httpapi_test

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/coding-rules-query-go/rulesquery"
	"github.com/AntonStoeckl/coding-rules-query-go/rulesquery/httpapi"
)

func Test_Normalize(t *testing.T) {
	// setup
	server := givenServer(t, &searcherSpy{})

	// act
	recorder := serve(server, "/api/rules/query/normalize?is_template=TRUE&severities=&tags=a,,b&open=java:S1&selected=java:S2")

	// assert
	require.Equal(t, http.StatusOK, recorder.Code)

	body := decode[httpapi.NormalizeResponse](t, recorder)
	assert.Equal(t, rulesquery.RawQuery{"tags": {"a,b"}}, body.Query)
	assert.Equal(t, "open=java%3AS1&selected=java%3AS2&tags=a%2Cb", body.Encoded)
	assert.Equal(t, rulesquery.RawQuery{"open": {"java:S1"}, "selected": {"java:S2"}}, body.Extras)
	assert.Equal(t, "java:S1", body.Open)
	assert.Equal(t, "java:S2", body.Selected)
}

func Test_Equal(t *testing.T) {
	testCases := []struct {
		description string
		a           string
		b           string
		expected    bool
	}{
		{
			description: "reordered arrays",
			a:           "languages=java,py&tags=cwe",
			b:           "tags=cwe&languages=py,java",
			expected:    true,
		},
		{
			description: "different template flag",
			a:           "is_template=true",
			b:           "is_template=TRUE",
			expected:    false,
		},
		{
			description: "both empty",
			expected:    true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			// setup
			server := givenServer(t, &searcherSpy{})
			target := "/api/rules/query/equal?" + url.Values{"a": {tc.a}, "b": {tc.b}}.Encode()

			// act
			recorder := serve(server, target)

			// assert
			require.Equal(t, http.StatusOK, recorder.Code)
			assert.Equal(t, tc.expected, decode[httpapi.EqualResponse](t, recorder).Equal)
		})
	}
}

func Test_FacetPolicy(t *testing.T) {
	// setup
	server := givenServer(t, &searcherSpy{})

	// act
	recorder := serve(server, "/api/rules/facets/policy?facet=activationSeverities,standard&facet=searchQuery")

	// assert
	require.Equal(t, http.StatusOK, recorder.Code)

	body := decode[httpapi.FacetPolicyResponse](t, recorder)
	require.Len(t, body.Facets, 3)

	assert.Equal(t, httpapi.FacetPolicy{
		Facet:       "activationSeverities",
		Requestable: true,
		ServerFacet: "active_severities",
		Expanded:    []rulesquery.FacetKey{"activationSeverities"},
	}, body.Facets[0])
	assert.Equal(t, rulesquery.StandardFacets(), body.Facets[1].Expanded)
	assert.True(t, body.Facets[1].Requestable)
	assert.False(t, body.Facets[2].Requestable)
	assert.Empty(t, body.Facets[2].Expanded)
}

func Test_FacetPolicy_WithoutFacet(t *testing.T) {
	// setup
	server := givenServer(t, &searcherSpy{})

	// act
	recorder := serve(server, "/api/rules/facets/policy")

	// assert
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Equal(t, "missing facet parameter", decode[httpapi.ErrorResponse](t, recorder).Errors[0].Msg)
}

func Test_Health(t *testing.T) {
	// setup
	server := givenServer(t, &searcherSpy{})

	// act
	recorder := serve(server, "/healthz")

	// assert
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "ok", decode[httpapi.HealthResponse](t, recorder).Status)
}
