package rulesquery_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/AntonStoeckl/coding-rules-query-go/rulesquery"
)

func Test_ShouldRequestFacet(t *testing.T) {
	for _, facet := range []string{
		"activationSeverities",
		"cwe",
		"languages",
		"owaspTop10",
		"owaspTop10-2021",
		"repositories",
		"sansTop25",
		"severities",
		"sonarsourceSecurity",
		"standard",
		"statuses",
		"tags",
		"types",
	} {
		assert.True(t, rulesquery.ShouldRequestFacet(facet), facet)
	}

	for _, facet := range []string{
		"unknown_field",
		"",
		"activation",
		"availableSince",
		"inheritance",
		"profile",
		"template",
		"active_severities",
		"Severities",
	} {
		assert.False(t, rulesquery.ShouldRequestFacet(facet), facet)
	}
}

func Test_RequestableFacets_MatchesShouldRequestFacet(t *testing.T) {
	facets := rulesquery.RequestableFacets()

	assert.Len(t, facets, 13)
	for _, facet := range facets {
		assert.True(t, rulesquery.ShouldRequestFacet(facet), facet)
	}
}

func Test_GetServerFacet_And_GetAppFacet(t *testing.T) {
	assert.Equal(t, "active_severities", rulesquery.GetServerFacet("activationSeverities"))
	assert.Equal(t, "activationSeverities", rulesquery.GetAppFacet("active_severities"))

	for _, facet := range append(rulesquery.RequestableFacets(), rulesquery.FacetActivation, rulesquery.FacetTemplate) {
		assert.Equal(t, facet, rulesquery.GetAppFacet(rulesquery.GetServerFacet(facet)), facet)
	}

	assert.Equal(t, "severities", rulesquery.GetServerFacet("severities"))
	assert.Equal(t, "severities", rulesquery.GetAppFacet("severities"))
}

func Test_SerializeQuery_UsesServerFacetNameForActivationSeverities(t *testing.T) {
	query := rulesquery.Query{ActivationSeverities: []string{"INFO"}}

	raw := rulesquery.SerializeQuery(query)

	assert.Contains(t, raw, rulesquery.GetServerFacet(rulesquery.FacetActivationSeverities))
	assert.Equal(t, query.ActivationSeverities, rulesquery.ParseQuery(raw).ActivationSeverities)
}

func Test_ExpandFacets(t *testing.T) {
	expanded := rulesquery.ExpandFacets([]string{"languages", "standard", "bogus", "cwe", "languages", "activation"})

	assert.Equal(t, []string{"languages", "owaspTop10", "owaspTop10-2021", "cwe", "sonarsourceSecurity"}, expanded)
}

func Test_StandardFacets_ReturnsACopy(t *testing.T) {
	standards := rulesquery.StandardFacets()
	standards[0] = "changed"

	assert.Equal(t, rulesquery.FacetOwaspTop10, rulesquery.StandardFacets()[0])
}
