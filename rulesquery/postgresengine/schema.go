package postgresengine

import "fmt"

// Schema returns the DDL statements creating the rules and active rules tables with the given names.
// The statements are idempotent and must be executed in order.
func Schema(rulesTableName string, activeRulesTableName string) []string {
	arrayIndex := func(col string) string {
		return fmt.Sprintf(
			"CREATE INDEX IF NOT EXISTS %s_%s_idx ON %s USING gin (%s)",
			rulesTableName, col, rulesTableName, col,
		)
	}

	return []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	%s uuid PRIMARY KEY,
	%s text NOT NULL UNIQUE,
	%s text NOT NULL,
	%s text NOT NULL,
	%s text NOT NULL,
	%s text NOT NULL,
	%s text NOT NULL,
	%s text NOT NULL,
	%s boolean NOT NULL DEFAULT false,
	%s text[] NOT NULL DEFAULT '{}',
	%s text[] NOT NULL DEFAULT '{}',
	%s text[] NOT NULL DEFAULT '{}',
	%s text[] NOT NULL DEFAULT '{}',
	%s text[] NOT NULL DEFAULT '{}',
	%s text[] NOT NULL DEFAULT '{}',
	%s jsonb NOT NULL DEFAULT '[]',
	%s timestamp with time zone NOT NULL
)`,
			rulesTableName,
			colID,
			colRuleKey,
			colRepository,
			colName,
			colLanguage,
			colRuleType,
			colSeverity,
			colStatus,
			colIsTemplate,
			colTags,
			colCWE,
			colOwaspTop10,
			colOwaspTop10_2021,
			colSansTop25,
			colSonarsourceSecurity,
			colParams,
			colCreatedAt,
		),
		fmt.Sprintf(
			"CREATE INDEX IF NOT EXISTS %s_%s_idx ON %s (%s, %s)",
			rulesTableName, colName, rulesTableName, colName, colRuleKey,
		),
		fmt.Sprintf(
			"CREATE INDEX IF NOT EXISTS %s_%s_idx ON %s (%s)",
			rulesTableName, colCreatedAt, rulesTableName, colCreatedAt,
		),
		arrayIndex(colTags),
		arrayIndex(colCWE),
		arrayIndex(colOwaspTop10),
		arrayIndex(colOwaspTop10_2021),
		arrayIndex(colSansTop25),
		arrayIndex(colSonarsourceSecurity),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	%s text NOT NULL,
	%s text NOT NULL REFERENCES %s (%s) ON DELETE CASCADE,
	%s text NOT NULL,
	%s text NOT NULL,
	PRIMARY KEY (%s, %s)
)`,
			activeRulesTableName,
			colProfileKey,
			colRuleKey, rulesTableName, colRuleKey,
			colSeverity,
			colInheritance,
			colProfileKey, colRuleKey,
		),
	}
}
