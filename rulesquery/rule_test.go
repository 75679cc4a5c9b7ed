package rulesquery_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/coding-rules-query-go/rulesquery"
)

func Test_BuildRule(t *testing.T) {
	// setup
	createdAt := time.Date(2024, 4, 2, 8, 0, 0, 0, time.FixedZone("CEST", 2*60*60))

	// act
	rule, err := rulesquery.BuildRule(
		"java:S2259",
		"Null pointers should not be dereferenced",
		"java",
		rulesquery.RuleTypeBug,
		rulesquery.SeverityMajor,
		createdAt,
		rulesquery.WithTags("cert", "cwe", "cert", ""),
		rulesquery.WithCWE("476"),
		rulesquery.WithParamsJSON([]byte(`[{"key":"max","defaultValue":"3"}]`)),
	)

	// assert
	require.NoError(t, err)
	assert.Equal(t, "java", rule.Repository)
	assert.Equal(t, rulesquery.RuleStatusReady, rule.Status)
	assert.Equal(t, []string{"cert", "cwe"}, rule.Tags)
	assert.Equal(t, []string{"476"}, rule.CWE)
	assert.Empty(t, rule.OwaspTop10)
	assert.NotNil(t, rule.OwaspTop10)
	assert.Equal(t, time.UTC, rule.CreatedAt.Location())
	assert.True(t, createdAt.Equal(rule.CreatedAt))
	assert.False(t, rule.IsTemplate)
}

//nolint:funlen
func Test_BuildRule_ErrorCases(t *testing.T) {
	validTime := time.Now()

	tests := []struct {
		name        string
		key         string
		ruleName    string
		language    string
		ruleType    string
		severity    string
		options     []rulesquery.RuleOption
		expectedErr error
	}{
		{
			name: "key without repository", key: "S123", ruleName: "n", language: "java",
			ruleType: rulesquery.RuleTypeBug, severity: rulesquery.SeverityMajor,
			expectedErr: rulesquery.ErrInvalidRuleKey,
		},
		{
			name: "key with empty rule part", key: "java:", ruleName: "n", language: "java",
			ruleType: rulesquery.RuleTypeBug, severity: rulesquery.SeverityMajor,
			expectedErr: rulesquery.ErrInvalidRuleKey,
		},
		{
			name: "empty name", key: "java:S1", ruleName: "", language: "java",
			ruleType: rulesquery.RuleTypeBug, severity: rulesquery.SeverityMajor,
			expectedErr: rulesquery.ErrEmptyRuleName,
		},
		{
			name: "empty language", key: "java:S1", ruleName: "n", language: "",
			ruleType: rulesquery.RuleTypeBug, severity: rulesquery.SeverityMajor,
			expectedErr: rulesquery.ErrEmptyRuleLanguage,
		},
		{
			name: "unknown type", key: "java:S1", ruleName: "n", language: "java",
			ruleType: "SMELL", severity: rulesquery.SeverityMajor,
			expectedErr: rulesquery.ErrInvalidRuleType,
		},
		{
			name: "unknown severity", key: "java:S1", ruleName: "n", language: "java",
			ruleType: rulesquery.RuleTypeBug, severity: "major",
			expectedErr: rulesquery.ErrInvalidSeverity,
		},
		{
			name: "unknown status", key: "java:S1", ruleName: "n", language: "java",
			ruleType: rulesquery.RuleTypeBug, severity: rulesquery.SeverityMajor,
			options:     []rulesquery.RuleOption{rulesquery.WithStatus("REMOVED")},
			expectedErr: rulesquery.ErrInvalidRuleStatus,
		},
		{
			name: "invalid params json", key: "java:S1", ruleName: "n", language: "java",
			ruleType: rulesquery.RuleTypeBug, severity: rulesquery.SeverityMajor,
			options:     []rulesquery.RuleOption{rulesquery.WithParamsJSON([]byte(`{"invalid": json}`))},
			expectedErr: rulesquery.ErrInvalidParamsJSON,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := rulesquery.BuildRule(tt.key, tt.ruleName, tt.language, tt.ruleType, tt.severity, validTime, tt.options...)

			assert.ErrorIs(t, err, tt.expectedErr)
		})
	}
}

func Test_ValidateActivation(t *testing.T) {
	assert.NoError(t, rulesquery.ValidateActivation("AXp", rulesquery.SeverityInfo, rulesquery.InheritanceNone))
	assert.ErrorIs(t, rulesquery.ValidateActivation("", rulesquery.SeverityInfo, rulesquery.InheritanceNone), rulesquery.ErrEmptyProfileKey)
	assert.ErrorIs(t, rulesquery.ValidateActivation("AXp", "LOW", rulesquery.InheritanceNone), rulesquery.ErrInvalidSeverity)
	assert.ErrorIs(t, rulesquery.ValidateActivation("AXp", rulesquery.SeverityInfo, rulesquery.InheritanceUnset), rulesquery.ErrInvalidInheritance)
}

func Test_DomainTables_ReturnCopies(t *testing.T) {
	severities := rulesquery.Severities()
	severities[0] = "changed"

	assert.Equal(t, []string{"BLOCKER", "CRITICAL", "MAJOR", "MINOR", "INFO"}, rulesquery.Severities())
	assert.Equal(t, []string{"BUG", "VULNERABILITY", "CODE_SMELL", "SECURITY_HOTSPOT"}, rulesquery.RuleTypes())
	assert.Equal(t, []string{"READY", "BETA", "DEPRECATED"}, rulesquery.RuleStatuses())
}
