package rulesquery

import (
	"slices"
	"time"
)

// AreQueriesEqual reports whether a and b denote the same filter once normalized through ParseQuery.
//
// Textually different queries (key order, element order inside an array, a redundant empty parameter)
// are equal; callers use this to skip a re-fetch when only cosmetic details changed.
func AreQueriesEqual(a, b RawQuery) bool {
	return QueriesEqual(ParseQuery(a), ParseQuery(b))
}

// QueriesEqual compares two Query values field by field.
// Array fields are compared as sets, dates by calendar day.
func QueriesEqual(a, b Query) bool {
	return optionalBooleansEqual(a.Activation, b.Activation) &&
		setsEqual(a.ActivationSeverities, b.ActivationSeverities) &&
		datesEqual(a.AvailableSince, b.AvailableSince) &&
		a.CompareToProfile == b.CompareToProfile &&
		setsEqual(a.CWE, b.CWE) &&
		a.Inheritance == b.Inheritance &&
		setsEqual(a.Languages, b.Languages) &&
		setsEqual(a.OwaspTop10, b.OwaspTop10) &&
		setsEqual(a.OwaspTop10_2021, b.OwaspTop10_2021) &&
		a.Profile == b.Profile &&
		setsEqual(a.Repositories, b.Repositories) &&
		a.RuleKey == b.RuleKey &&
		setsEqual(a.SansTop25, b.SansTop25) &&
		a.SearchQuery == b.SearchQuery &&
		setsEqual(a.Severities, b.Severities) &&
		setsEqual(a.SonarsourceSecurity, b.SonarsourceSecurity) &&
		setsEqual(a.Statuses, b.Statuses) &&
		setsEqual(a.Tags, b.Tags) &&
		optionalBooleansEqual(a.Template, b.Template) &&
		setsEqual(a.Types, b.Types)
}

func optionalBooleansEqual(a, b *bool) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	return *a == *b
}

func datesEqual(a, b time.Time) bool {
	serializedA, _ := SerializeDateShort(a)
	serializedB, _ := SerializeDateShort(b)

	return serializedA == serializedB
}

// setsEqual treats nil and empty as the same set and ignores order and duplicates.
func setsEqual(a, b []string) bool {
	return slices.Equal(normalizedSet(a), normalizedSet(b))
}

func normalizedSet(values []string) []string {
	normalized := slices.Clone(values)
	slices.Sort(normalized)

	return slices.Compact(normalized)
}

// Canonical returns a copy of q in which every array field is sorted and free of duplicates.
// Queries that are QueriesEqual have the same SerializeQuery encoding once canonical.
func (q Query) Canonical() Query {
	arrays := []*[]string{
		&q.ActivationSeverities,
		&q.CWE,
		&q.Languages,
		&q.OwaspTop10,
		&q.OwaspTop10_2021,
		&q.Repositories,
		&q.SansTop25,
		&q.Severities,
		&q.SonarsourceSecurity,
		&q.Statuses,
		&q.Tags,
		&q.Types,
	}

	for _, values := range arrays {
		*values = normalizedSet(*values)
	}

	return q
}
