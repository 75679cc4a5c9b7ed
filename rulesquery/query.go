package rulesquery

import (
	"time"
)

// Wire parameter names of the scalar Query fields and of the pass-through view keys.
// Array fields use their facet's server name, see GetServerFacet.
const (
	ParamActivation       = "activation"
	ParamActiveSeverities = "active_severities"
	ParamAvailableSince   = "available_since"
	ParamCompareToProfile = "compareToProfile"
	ParamInheritance      = "inheritance"
	ParamIsTemplate       = "is_template"
	ParamProfile          = "qprofile"
	ParamRuleKey          = "rule_key"
	ParamSearchQuery      = "q"
	ParamOpen             = "open"
	ParamSelected         = "selected"
)

// Query is the normalized filter state of a rules search.
//
// Unset scalars are represented by their zero value (nil, "", zero time.Time or InheritanceUnset).
// Array fields are never nil after ParseQuery; their order is transport order and carries no meaning.
type Query struct {
	Activation           *bool
	ActivationSeverities []string
	AvailableSince       time.Time
	CompareToProfile     string
	CWE                  []string
	Inheritance          RuleInheritance
	Languages            []string
	OwaspTop10           []string
	OwaspTop10_2021      []string //nolint:revive
	Profile              string
	Repositories         []string
	RuleKey              string
	SansTop25            []string
	SearchQuery          string
	Severities           []string
	SonarsourceSecurity  []string
	Statuses             []string
	Tags                 []string
	Template             *bool
	Types                []string
}

// arrayFacets lists the facets backed by an array field of Query.
var arrayFacets = [...]FacetKey{
	FacetActivationSeverities,
	FacetCWE,
	FacetLanguages,
	FacetOwaspTop10,
	FacetOwaspTop10_2021,
	FacetRepositories,
	FacetSansTop25,
	FacetSeverities,
	FacetSonarsourceSecurity,
	FacetStatuses,
	FacetTags,
	FacetTypes,
}

// knownParams is the set of wire keys ParseQuery reads.
var knownParams = buildKnownParams()

func buildKnownParams() map[string]struct{} {
	params := map[string]struct{}{
		ParamActivation:       {},
		ParamAvailableSince:   {},
		ParamCompareToProfile: {},
		ParamInheritance:      {},
		ParamIsTemplate:       {},
		ParamProfile:          {},
		ParamRuleKey:          {},
		ParamSearchQuery:      {},
	}

	for _, facet := range arrayFacets {
		params[GetServerFacet(facet)] = struct{}{}
	}

	return params
}

// IsQueryParam reports whether key is read by ParseQuery.
func IsQueryParam(key string) bool {
	_, ok := knownParams[key]
	return ok
}

// ParseQuery builds a fresh Query from raw. It never fails: malformed values become unset
// and unknown keys are ignored.
func ParseQuery(raw RawQuery) Query {
	first := func(key string) string {
		value, _ := raw.Get(key)
		return value
	}

	array := func(facet FacetKey) []string {
		return ParseArray(raw.GetAll(GetServerFacet(facet)))
	}

	return Query{
		Activation:           ParseOptionalBoolean(first(ParamActivation)),
		ActivationSeverities: array(FacetActivationSeverities),
		AvailableSince:       ParseDate(first(ParamAvailableSince)),
		CompareToProfile:     ParseOptionalString(first(ParamCompareToProfile)),
		CWE:                  array(FacetCWE),
		Inheritance:          ParseInheritance(first(ParamInheritance)),
		Languages:            array(FacetLanguages),
		OwaspTop10:           array(FacetOwaspTop10),
		OwaspTop10_2021:      array(FacetOwaspTop10_2021),
		Profile:              ParseOptionalString(first(ParamProfile)),
		Repositories:         array(FacetRepositories),
		RuleKey:              ParseOptionalString(first(ParamRuleKey)),
		SansTop25:            array(FacetSansTop25),
		SearchQuery:          ParseOptionalString(first(ParamSearchQuery)),
		Severities:           array(FacetSeverities),
		SonarsourceSecurity:  array(FacetSonarsourceSecurity),
		Statuses:             array(FacetStatuses),
		Tags:                 array(FacetTags),
		Template:             ParseOptionalBoolean(first(ParamIsTemplate)),
		Types:                array(FacetTypes),
	}
}

// SerializeQuery is the inverse of ParseQuery. Only non-default fields are emitted
// and the result never contains a key with an empty value.
func SerializeQuery(q Query) RawQuery {
	raw := make(RawQuery)

	put := func(key string, value string, ok bool) {
		if ok {
			raw[key] = []string{value}
		}
	}

	putArray := func(facet FacetKey, values []string) {
		value, ok := SerializeStringArray(values)
		put(GetServerFacet(facet), value, ok)
	}

	activation, ok := SerializeOptionalBoolean(q.Activation)
	put(ParamActivation, activation, ok)
	putArray(FacetActivationSeverities, q.ActivationSeverities)
	availableSince, ok := SerializeDateShort(q.AvailableSince)
	put(ParamAvailableSince, availableSince, ok)
	compareToProfile, ok := SerializeString(q.CompareToProfile)
	put(ParamCompareToProfile, compareToProfile, ok)
	putArray(FacetCWE, q.CWE)
	inheritance, ok := SerializeInheritance(q.Inheritance)
	put(ParamInheritance, inheritance, ok)
	template, ok := SerializeOptionalBoolean(q.Template)
	put(ParamIsTemplate, template, ok)
	putArray(FacetLanguages, q.Languages)
	putArray(FacetOwaspTop10, q.OwaspTop10)
	putArray(FacetOwaspTop10_2021, q.OwaspTop10_2021)
	searchQuery, ok := SerializeString(q.SearchQuery)
	put(ParamSearchQuery, searchQuery, ok)
	profile, ok := SerializeString(q.Profile)
	put(ParamProfile, profile, ok)
	putArray(FacetRepositories, q.Repositories)
	ruleKey, ok := SerializeString(q.RuleKey)
	put(ParamRuleKey, ruleKey, ok)
	putArray(FacetSansTop25, q.SansTop25)
	putArray(FacetSeverities, q.Severities)
	putArray(FacetSonarsourceSecurity, q.SonarsourceSecurity)
	putArray(FacetStatuses, q.Statuses)
	putArray(FacetTags, q.Tags)
	putArray(FacetTypes, q.Types)

	return CleanQuery(raw)
}

// SplitUnknown returns the keys of raw that ParseQuery ignores, such as view state like "open" or "selected".
// Pass-through callers keep them and hand them back to SerializeQueryWithExtras.
func SplitUnknown(raw RawQuery) RawQuery {
	extras := make(RawQuery)

	for key, vals := range raw {
		if IsQueryParam(key) {
			continue
		}

		extras[key] = vals
	}

	return CleanQuery(extras)
}

// SerializeQueryWithExtras serializes q and merges the unrecognized keys in extras back in.
// Keys owned by Query are always taken from q, never from extras.
func SerializeQueryWithExtras(q Query, extras RawQuery) RawQuery {
	raw := SplitUnknown(extras)

	for key, vals := range SerializeQuery(q) {
		raw[key] = vals
	}

	return raw
}

// FacetValues returns the selected values of an array facet, or nil for facets without an array field.
func (q Query) FacetValues(facet FacetKey) []string {
	switch facet {
	case FacetActivationSeverities:
		return q.ActivationSeverities
	case FacetCWE:
		return q.CWE
	case FacetLanguages:
		return q.Languages
	case FacetOwaspTop10:
		return q.OwaspTop10
	case FacetOwaspTop10_2021:
		return q.OwaspTop10_2021
	case FacetRepositories:
		return q.Repositories
	case FacetSansTop25:
		return q.SansTop25
	case FacetSeverities:
		return q.Severities
	case FacetSonarsourceSecurity:
		return q.SonarsourceSecurity
	case FacetStatuses:
		return q.Statuses
	case FacetTags:
		return q.Tags
	case FacetTypes:
		return q.Types
	default:
		return nil
	}
}

// WithoutFacet returns a copy of q in which the selection of facet is cleared.
// Clearing FacetStandard clears all StandardFacets.
func (q Query) WithoutFacet(facet FacetKey) Query {
	switch facet {
	case FacetActivationSeverities:
		q.ActivationSeverities = []string{}
	case FacetCWE:
		q.CWE = []string{}
	case FacetLanguages:
		q.Languages = []string{}
	case FacetOwaspTop10:
		q.OwaspTop10 = []string{}
	case FacetOwaspTop10_2021:
		q.OwaspTop10_2021 = []string{}
	case FacetRepositories:
		q.Repositories = []string{}
	case FacetSansTop25:
		q.SansTop25 = []string{}
	case FacetSeverities:
		q.Severities = []string{}
	case FacetSonarsourceSecurity:
		q.SonarsourceSecurity = []string{}
	case FacetStatuses:
		q.Statuses = []string{}
	case FacetTags:
		q.Tags = []string{}
	case FacetTypes:
		q.Types = []string{}
	case FacetStandard:
		for _, standard := range standardFacets {
			q = q.WithoutFacet(standard)
		}
	case FacetActivation:
		q.Activation = nil
	case FacetAvailableSince:
		q.AvailableSince = time.Time{}
	case FacetInheritance:
		q.Inheritance = InheritanceUnset
	case FacetTemplate:
		q.Template = nil
	}

	return q
}

// GetOpen returns the key of the facet or rule that is open in the view, if any.
func GetOpen(raw RawQuery) string {
	value, _ := raw.Get(ParamOpen)
	return value
}

// GetSelected returns the key of the selected rule in the view, if any.
func GetSelected(raw RawQuery) string {
	value, _ := raw.Get(ParamSelected)
	return value
}

// HasRuleKey reports whether raw filters on a single rule.
func HasRuleKey(raw RawQuery) bool {
	_, ok := raw.Get(ParamRuleKey)
	return ok
}
