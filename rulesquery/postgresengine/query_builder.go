package postgresengine

import (
	"errors"
	"strings"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // driver import
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/lib/pq"

	"github.com/AntonStoeckl/coding-rules-query-go/rulesquery"
)

const (
	colID                  = "id"
	colRuleKey             = "rule_key"
	colRepository          = "repository"
	colName                = "name"
	colLanguage            = "language"
	colRuleType            = "rule_type"
	colSeverity            = "severity"
	colStatus              = "status"
	colIsTemplate          = "is_template"
	colTags                = "tags"
	colCWE                 = "cwe"
	colOwaspTop10          = "owasp_top10"
	colOwaspTop10_2021     = "owasp_top10_2021" //nolint:revive
	colSansTop25           = "sans_top25"
	colSonarsourceSecurity = "sonarsource_security"
	colParams              = "params"
	colCreatedAt           = "created_at"
	colProfileKey          = "profile_key"
	colInheritance         = "inheritance"
	dialectPostgres        = "postgres"
	aliasFacetValue        = "facet_value"
	aliasFacetCount        = "facet_count"
	aliasFacetValues       = "facet_values"
	castText               = "?::text"
	castTextArray          = "?::text[]"
	castJsonb              = "?::jsonb"
	exprArrayToJSON        = "array_to_json(?)::text"
	exprOverlaps           = "? && ?::text[]"
	exprUnnest             = "unnest(?)"
	exprExcluded           = "EXCLUDED."
)

// facetColumn is the column backing a facet and whether it holds an array.
type facetColumn struct {
	facet   rulesquery.FacetKey
	name    string
	isArray bool
}

// facetColumns is ordered, so that the generated SQL is stable.
var facetColumns = [...]facetColumn{
	{facet: rulesquery.FacetLanguages, name: colLanguage},
	{facet: rulesquery.FacetRepositories, name: colRepository},
	{facet: rulesquery.FacetSeverities, name: colSeverity},
	{facet: rulesquery.FacetStatuses, name: colStatus},
	{facet: rulesquery.FacetTypes, name: colRuleType},
	{facet: rulesquery.FacetTags, name: colTags, isArray: true},
	{facet: rulesquery.FacetCWE, name: colCWE, isArray: true},
	{facet: rulesquery.FacetOwaspTop10, name: colOwaspTop10, isArray: true},
	{facet: rulesquery.FacetOwaspTop10_2021, name: colOwaspTop10_2021, isArray: true},
	{facet: rulesquery.FacetSansTop25, name: colSansTop25, isArray: true},
	{facet: rulesquery.FacetSonarsourceSecurity, name: colSonarsourceSecurity, isArray: true},
}

func columnForFacet(facet rulesquery.FacetKey) (facetColumn, bool) {
	for _, column := range facetColumns {
		if column.facet == facet {
			return column, true
		}
	}

	return facetColumn{}, false
}

var likeEscapes = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// buildSearchQueries builds the paged select and the matching count query.
func (rs *RuleStore) buildSearchQueries(query rulesquery.Query, paging rulesquery.Paging) (
	sqlQueryString,
	sqlQueryString,
	error,
) {

	builder := goqu.Dialect(dialectPostgres)
	where := rs.whereExpressions(query)

	selectStmt := builder.
		From(rs.rulesTableName).
		Select(rs.ruleColumns()...).
		Where(where...).
		Order(goqu.I(colName).Asc(), goqu.I(colRuleKey).Asc()).
		Limit(uint(paging.PageSize)).
		Offset(uint(paging.Offset()))

	selectSQL, _, selectErr := selectStmt.ToSQL()
	if selectErr != nil {
		return "", "", errors.Join(rulesquery.ErrBuildingQueryFailed, selectErr)
	}

	countStmt := builder.
		From(rs.rulesTableName).
		Select(goqu.COUNT(goqu.Star())).
		Where(where...)

	countSQL, _, countErr := countStmt.ToSQL()
	if countErr != nil {
		return "", "", errors.Join(rulesquery.ErrBuildingQueryFailed, countErr)
	}

	return selectSQL, countSQL, nil
}

// ruleColumns selects the rule columns in scan order. Arrays are read as JSON text
// so all adapters can scan them into a string.
func (rs *RuleStore) ruleColumns() []any {
	arrayColumn := func(col string) any {
		return goqu.L(exprArrayToJSON, goqu.I(col)).As(col)
	}

	return []any{
		goqu.L(castText, goqu.I(colID)).As(colID),
		colRuleKey,
		colRepository,
		colName,
		colLanguage,
		colRuleType,
		colSeverity,
		colStatus,
		colIsTemplate,
		arrayColumn(colTags),
		arrayColumn(colCWE),
		arrayColumn(colOwaspTop10),
		arrayColumn(colOwaspTop10_2021),
		arrayColumn(colSansTop25),
		arrayColumn(colSonarsourceSecurity),
		goqu.L(castText, goqu.I(colParams)).As(colParams),
		colCreatedAt,
	}
}

// buildFacetQuery builds the value count query for one facet.
// The facet's own selection is cleared so that all of its values stay countable.
// Returns false if the facet can't be computed for this query.
func (rs *RuleStore) buildFacetQuery(
	query rulesquery.Query,
	facet rulesquery.FacetKey,
	serverFacet string,
) (sqlQueryString, bool, error) {

	builder := goqu.Dialect(dialectPostgres)
	unfiltered := query.WithoutFacet(facet)

	var inner *goqu.SelectDataset

	switch column, ok := columnForFacet(facet); {
	case facet == rulesquery.FacetActivationSeverities:
		if query.Profile == "" {
			return "", false, nil
		}

		matchingRules := builder.
			From(rs.rulesTableName).
			Select(colRuleKey).
			Where(rs.whereExpressions(unfiltered)...)

		inner = builder.
			From(rs.activeRulesTableName).
			Select(goqu.I(colSeverity).As(aliasFacetValue)).
			Where(
				goqu.C(colProfileKey).Eq(query.Profile),
				goqu.C(colRuleKey).In(matchingRules),
			)

	case ok && column.isArray:
		inner = builder.
			From(rs.rulesTableName).
			Select(goqu.L(exprUnnest, goqu.I(column.name)).As(aliasFacetValue)).
			Where(rs.whereExpressions(unfiltered)...)

	case ok:
		inner = builder.
			From(rs.rulesTableName).
			Select(goqu.I(column.name).As(aliasFacetValue)).
			Where(rs.whereExpressions(unfiltered)...)

	default:
		return "", false, errors.Join(rulesquery.ErrBuildingQueryFailed, errors.New("no column for facet "+serverFacet))
	}

	countStmt := builder.
		From(inner.As(aliasFacetValues)).
		Select(goqu.C(aliasFacetValue), goqu.COUNT(goqu.Star()).As(aliasFacetCount)).
		GroupBy(goqu.C(aliasFacetValue)).
		Order(goqu.C(aliasFacetCount).Desc(), goqu.C(aliasFacetValue).Asc())

	sqlQuery, _, toSQLErr := countStmt.ToSQL()
	if toSQLErr != nil {
		return "", false, errors.Join(rulesquery.ErrBuildingQueryFailed, toSQLErr)
	}

	return sqlQuery, true, nil
}

// whereExpressions translates the filter fields of a query into SQL conditions on the rules table.
// Unset fields add no condition.
func (rs *RuleStore) whereExpressions(query rulesquery.Query) []exp.Expression {
	expressions := make([]exp.Expression, 0)

	if query.SearchQuery != "" {
		pattern := "%" + likeEscapes.Replace(query.SearchQuery) + "%"
		expressions = append(expressions, goqu.Or(
			goqu.I(colName).ILike(pattern),
			goqu.I(colRuleKey).ILike(pattern),
		))
	}

	if query.RuleKey != "" {
		expressions = append(expressions, goqu.C(colRuleKey).Eq(query.RuleKey))
	}

	for _, column := range facetColumns {
		values := query.FacetValues(column.facet)
		if len(values) == 0 {
			continue
		}

		if column.isArray {
			expressions = append(expressions, goqu.L(exprOverlaps, goqu.I(column.name), pq.StringArray(values)))
			continue
		}

		expressions = append(expressions, goqu.C(column.name).In(values))
	}

	if query.Template != nil {
		expressions = append(expressions, goqu.C(colIsTemplate).Eq(*query.Template))
	}

	if !query.AvailableSince.IsZero() {
		expressions = append(expressions, goqu.C(colCreatedAt).Gte(query.AvailableSince))
	}

	if activation := rs.activationExpression(query); activation != nil {
		expressions = append(expressions, activation)
	}

	return expressions
}

// activationExpression restricts the rules to those (not) active in the selected quality profile.
// It is nil unless both a profile and an activation state are selected.
// Activation severities and inheritance only narrow down active rules.
func (rs *RuleStore) activationExpression(query rulesquery.Query) exp.Expression {
	if query.Profile == "" || query.Activation == nil {
		return nil
	}

	conditions := []exp.Expression{goqu.C(colProfileKey).Eq(query.Profile)}

	if *query.Activation {
		if len(query.ActivationSeverities) > 0 {
			conditions = append(conditions, goqu.C(colSeverity).In(query.ActivationSeverities))
		}

		if query.Inheritance != rulesquery.InheritanceUnset {
			conditions = append(conditions, goqu.C(colInheritance).Eq(string(query.Inheritance)))
		}
	}

	activeRules := goqu.Dialect(dialectPostgres).
		From(rs.activeRulesTableName).
		Select(colRuleKey).
		Where(conditions...)

	if *query.Activation {
		return goqu.C(colRuleKey).In(activeRules)
	}

	return goqu.C(colRuleKey).NotIn(activeRules)
}

// buildInsertRulesQuery builds one multi row insert for all rules.
func (rs *RuleStore) buildInsertRulesQuery(rules rulesquery.Rules) (sqlQueryString, error) {
	textArray := func(values []string) exp.LiteralExpression {
		if values == nil {
			values = []string{}
		}

		return goqu.L(castTextArray, pq.StringArray(values))
	}

	records := make([]any, 0, len(rules))

	for _, rule := range rules {
		params := string(rule.ParamsJSON)
		if params == "" {
			params = "[]"
		}

		records = append(records, goqu.Record{
			colID:                  rule.ID.String(),
			colRuleKey:             rule.Key,
			colRepository:          rule.Repository,
			colName:                rule.Name,
			colLanguage:            rule.Language,
			colRuleType:            rule.Type,
			colSeverity:            rule.Severity,
			colStatus:              rule.Status,
			colIsTemplate:          rule.IsTemplate,
			colTags:                textArray(rule.Tags),
			colCWE:                 textArray(rule.CWE),
			colOwaspTop10:          textArray(rule.OwaspTop10),
			colOwaspTop10_2021:     textArray(rule.OwaspTop10_2021),
			colSansTop25:           textArray(rule.SansTop25),
			colSonarsourceSecurity: textArray(rule.SonarsourceSecurity),
			colParams:              goqu.L(castJsonb, params),
			colCreatedAt:           rule.CreatedAt.UTC(),
		})
	}

	insertStmt := goqu.Dialect(dialectPostgres).
		Insert(rs.rulesTableName).
		Rows(records...)

	sqlQuery, _, toSQLErr := insertStmt.ToSQL()
	if toSQLErr != nil {
		return "", errors.Join(rulesquery.ErrBuildingQueryFailed, toSQLErr)
	}

	return sqlQuery, nil
}

// buildActivateQuery builds an upsert of the activation that only inserts if the rule exists.
func (rs *RuleStore) buildActivateQuery(
	profileKey string,
	ruleKey string,
	severity string,
	inheritance rulesquery.RuleInheritance,
) (sqlQueryString, error) {

	builder := goqu.Dialect(dialectPostgres)

	existingRule := builder.
		From(rs.rulesTableName).
		Select(
			goqu.L(castText, profileKey),
			goqu.C(colRuleKey),
			goqu.L(castText, severity),
			goqu.L(castText, string(inheritance)),
		).
		Where(goqu.C(colRuleKey).Eq(ruleKey))

	upsertStmt := builder.
		Insert(rs.activeRulesTableName).
		Cols(colProfileKey, colRuleKey, colSeverity, colInheritance).
		FromQuery(existingRule).
		OnConflict(goqu.DoUpdate(colProfileKey+", "+colRuleKey, goqu.Record{
			colSeverity:    goqu.L(exprExcluded + colSeverity),
			colInheritance: goqu.L(exprExcluded + colInheritance),
		}))

	sqlQuery, _, toSQLErr := upsertStmt.ToSQL()
	if toSQLErr != nil {
		return "", errors.Join(rulesquery.ErrBuildingQueryFailed, toSQLErr)
	}

	return sqlQuery, nil
}
