package rulesquery

import "slices"

// FacetKey identifies a facet by its in-app name, which is the name of the corresponding Query field.
type FacetKey = string

// App facet keys. Every filterable Query field is a potential facet.
const (
	FacetActivation           FacetKey = "activation"
	FacetActivationSeverities FacetKey = "activationSeverities"
	FacetAvailableSince       FacetKey = "availableSince"
	FacetCompareToProfile     FacetKey = "compareToProfile"
	FacetCWE                  FacetKey = "cwe"
	FacetInheritance          FacetKey = "inheritance"
	FacetLanguages            FacetKey = "languages"
	FacetOwaspTop10           FacetKey = "owaspTop10"
	FacetOwaspTop10_2021      FacetKey = "owaspTop10-2021" //nolint:revive
	FacetProfile              FacetKey = "profile"
	FacetRepositories         FacetKey = "repositories"
	FacetRuleKey              FacetKey = "ruleKey"
	FacetSansTop25            FacetKey = "sansTop25"
	FacetSearchQuery          FacetKey = "searchQuery"
	FacetSeverities           FacetKey = "severities"
	FacetSonarsourceSecurity  FacetKey = "sonarsourceSecurity"
	FacetStandard             FacetKey = "standard"
	FacetStatuses             FacetKey = "statuses"
	FacetTags                 FacetKey = "tags"
	FacetTemplate             FacetKey = "template"
	FacetTypes                FacetKey = "types"
)

// Facet maps a facet value to the number of rules carrying it.
type Facet map[string]int

// Facets holds the computed Facet per app facet key.
type Facets map[FacetKey]Facet

// OpenFacets tracks which facets are expanded in a view.
type OpenFacets map[FacetKey]bool

// facetRename is one entry of the bidirectional app <-> server facet name table.
type facetRename struct {
	app    FacetKey
	server string
}

// facetRenames lists every facet whose server name differs from its app name.
// Any facet not listed here has identical names on both sides.
var facetRenames = [...]facetRename{
	{app: FacetActivationSeverities, server: "active_severities"},
}

var (
	serverFacetByApp = buildServerFacetIndex()
	appFacetByServer = buildAppFacetIndex()
)

// requestableFacets is the closed set of facets the server is asked to compute counts for.
var requestableFacets = map[FacetKey]struct{}{
	FacetActivationSeverities: {},
	FacetCWE:                  {},
	FacetLanguages:            {},
	FacetOwaspTop10:           {},
	FacetOwaspTop10_2021:      {},
	FacetRepositories:         {},
	FacetSansTop25:            {},
	FacetSeverities:           {},
	FacetSonarsourceSecurity:  {},
	FacetStandard:             {},
	FacetStatuses:             {},
	FacetTags:                 {},
	FacetTypes:                {},
}

// standardFacets are the security standard facets grouped under the FacetStandard facet.
var standardFacets = [...]FacetKey{
	FacetOwaspTop10,
	FacetOwaspTop10_2021,
	FacetCWE,
	FacetSonarsourceSecurity,
}

func buildServerFacetIndex() map[FacetKey]string {
	index := make(map[FacetKey]string, len(facetRenames))
	for _, rename := range facetRenames {
		index[rename.app] = rename.server
	}

	return index
}

func buildAppFacetIndex() map[string]FacetKey {
	index := make(map[string]FacetKey, len(facetRenames))
	for _, rename := range facetRenames {
		index[rename.server] = rename.app
	}

	return index
}

// ShouldRequestFacet reports whether the server should be asked to compute counts for facet.
// Unknown facets are not requestable; that is a normal outcome, not an error.
func ShouldRequestFacet(facet string) bool {
	_, ok := requestableFacets[facet]
	return ok
}

// GetServerFacet translates an app facet key into the facet (and parameter) name used by the server.
func GetServerFacet(facet FacetKey) string {
	if server, ok := serverFacetByApp[facet]; ok {
		return server
	}

	return facet
}

// GetAppFacet translates a server facet name back into the app facet key.
func GetAppFacet(serverFacet string) FacetKey {
	if app, ok := appFacetByServer[serverFacet]; ok {
		return app
	}

	return serverFacet
}

// RequestableFacets returns the requestable facet keys in a stable order.
func RequestableFacets() []FacetKey {
	return []FacetKey{
		FacetActivationSeverities,
		FacetCWE,
		FacetLanguages,
		FacetOwaspTop10,
		FacetOwaspTop10_2021,
		FacetRepositories,
		FacetSansTop25,
		FacetSeverities,
		FacetSonarsourceSecurity,
		FacetStandard,
		FacetStatuses,
		FacetTags,
		FacetTypes,
	}
}

// StandardFacets returns the facets grouped under FacetStandard.
func StandardFacets() []FacetKey {
	return slices.Clone(standardFacets[:])
}

// ExpandFacets drops facets that must not be requested, replaces FacetStandard by the
// individual StandardFacets and removes duplicates while keeping the first occurrence order.
func ExpandFacets(facets []string) []FacetKey {
	expanded := make([]FacetKey, 0, len(facets))
	seen := make(map[FacetKey]struct{}, len(facets))

	add := func(facet FacetKey) {
		if _, ok := seen[facet]; ok {
			return
		}
		seen[facet] = struct{}{}
		expanded = append(expanded, facet)
	}

	for _, facet := range facets {
		if !ShouldRequestFacet(facet) {
			continue
		}

		if facet == FacetStandard {
			for _, standard := range standardFacets {
				add(standard)
			}

			continue
		}

		add(facet)
	}

	return expanded
}
