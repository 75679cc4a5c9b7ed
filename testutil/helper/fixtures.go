package helper

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/coding-rules-query-go/rulesquery"
)

// Keys of the fixture rules.
const (
	RuleNullPointer      = "java:S2259"
	RuleSQLInjection     = "java:S3649"
	RuleTrackTodo        = "java:S1135"
	RuleClearText        = "py:S5332"
	RuleMethodNames      = "py:S100"
	RuleTrackCommentTmpl = "js:S124"
)

// FixtureDay returns midnight UTC of the given date.
func FixtureDay(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// FixtureRules builds a small catalog of rules over three languages, all rule types and statuses.
//
//nolint:funlen
func FixtureRules(t testing.TB) rulesquery.Rules {
	t.Helper()

	build := func(
		key, name, language, ruleType, severity string,
		createdAt time.Time,
		options ...rulesquery.RuleOption,
	) rulesquery.Rule {
		rule, err := rulesquery.BuildRule(key, name, language, ruleType, severity, createdAt, options...)
		require.NoError(t, err, "error in arranging test data")

		return rule
	}

	return rulesquery.Rules{
		build(
			RuleNullPointer, "Null pointers should not be dereferenced", "java",
			rulesquery.RuleTypeBug, rulesquery.SeverityMajor, FixtureDay(2023, time.May, 1),
			rulesquery.WithTags("cwe", "cert"),
			rulesquery.WithCWE("476"),
		),
		build(
			RuleSQLInjection, "Database queries should not be vulnerable to injection attacks", "java",
			rulesquery.RuleTypeVulnerability, rulesquery.SeverityBlocker, FixtureDay(2024, time.February, 1),
			rulesquery.WithTags("cwe", "owasp", "sql"),
			rulesquery.WithCWE("89", "943"),
			rulesquery.WithOwaspTop10("a1"),
			rulesquery.WithOwaspTop10_2021("a3"),
			rulesquery.WithSansTop25("insecure-interaction"),
			rulesquery.WithSonarsourceSecurity("sql-injection"),
		),
		build(
			RuleTrackTodo, "Track uses of \"TODO\" tags", "java",
			rulesquery.RuleTypeCodeSmell, rulesquery.SeverityInfo, FixtureDay(2022, time.January, 1),
			rulesquery.WithTags("cwe"),
			rulesquery.WithCWE("546"),
		),
		build(
			RuleClearText, "Using clear-text protocols is security-sensitive", "py",
			rulesquery.RuleTypeSecurityHotspot, rulesquery.SeverityCritical, FixtureDay(2024, time.March, 10),
			rulesquery.WithTags("cwe", "privacy"),
			rulesquery.WithCWE("200", "319"),
			rulesquery.WithOwaspTop10("a3", "a6"),
			rulesquery.WithOwaspTop10_2021("a2", "a5"),
			rulesquery.WithSonarsourceSecurity("encrypt-data"),
		),
		build(
			RuleMethodNames, "Method names should comply with a naming convention", "py",
			rulesquery.RuleTypeCodeSmell, rulesquery.SeverityMinor, FixtureDay(2021, time.June, 1),
			rulesquery.WithTags("convention"),
			rulesquery.WithStatus(rulesquery.RuleStatusDeprecated),
		),
		build(
			RuleTrackCommentTmpl, "Track comments matching a regular expression", "js",
			rulesquery.RuleTypeCodeSmell, rulesquery.SeverityMajor, FixtureDay(2024, time.March, 10),
			rulesquery.AsTemplate(),
			rulesquery.WithStatus(rulesquery.RuleStatusBeta),
			rulesquery.WithParamsJSON([]byte(`[{"key":"regularExpression","type":"STRING"}]`)),
		),
	}
}

// RuleKeys returns the keys of rules in order.
func RuleKeys(rules rulesquery.Rules) []string {
	keys := make([]string, 0, len(rules))
	for _, rule := range rules {
		keys = append(keys, rule.Key)
	}

	return keys
}
