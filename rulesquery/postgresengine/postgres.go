package postgresengine

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	jsoniter "github.com/json-iterator/go"

	"github.com/AntonStoeckl/coding-rules-query-go/rulesquery"
	"github.com/AntonStoeckl/coding-rules-query-go/rulesquery/postgresengine/internal/adapters"
)

const (
	defaultRulesTableName       = "rules"
	defaultActiveRulesTableName = "active_rules"
	logMsgBuildQueryFailed      = "failed to build sql query"
	logMsgDBQueryFailed         = "database query execution failed"
	logMsgDBExecFailed          = "database execution failed"
	logMsgCloseRowsFailed       = "failed to close database rows"
	logMsgScanRowFailed         = "failed to scan database row"
	logMsgDecodeArrayFailed     = "failed to decode array column"
	logMsgRowsAffectedFailed    = "failed to get rows affected count"
	logMsgInvalidActivation     = "invalid rule activation"
	logMsgFacetSkipped          = "facet is not requestable, skipped"
	logMsgFacetNeedsProfile     = "facet needs a quality profile, returning no counts"
	logMsgSearchCompleted       = "search completed"
	logMsgFacetsCompleted       = "facets computed"
	logMsgRulesAdded            = "rules added"
	logMsgRuleActivated         = "rule activated"
	logMsgSchemaCreated         = "schema created"
	logMsgSQLExecuted           = "executed sql for: "
	logMsgOperation             = "rulesquery operation: "
	logAttrError                = "error"
	logAttrQuery                = "query"
	logAttrFacet                = "facet"
	logAttrFacetCount           = "facet_count"
	logAttrRuleCount            = "rule_count"
	logAttrRuleKey              = "rule_key"
	logAttrProfileKey           = "profile_key"
	logAttrTotal                = "total"
	logAttrColumn               = "column"
	logAttrDurationMS           = "duration_ms"
	logActionSearch             = "search"
	logActionCount              = "count"
	logActionFacet              = "facet"
	logActionAdd                = "add"
	logActionActivate           = "activate"
	logActionSchema             = "schema"
)

type (
	sqlQueryString = string
	queryDuration  = time.Duration
)

// RuleStore searches coding rules stored in PostgreSQL by a rulesquery.Query
// and computes facet counts for the requestable facets.
// It leverages a database adapter and supports optional logging, metrics and tracing.
type RuleStore struct {
	db                   adapters.DBAdapter
	rulesTableName       string
	activeRulesTableName string
	logger               Logger
	metricsCollector     MetricsCollector
	tracingCollector     TracingCollector
	contextualLogger     ContextualLogger
}

type ruleRow struct {
	id                  string
	key                 string
	repository          string
	name                string
	language            string
	ruleType            string
	severity            string
	status              string
	isTemplate          bool
	tags                string
	cwe                 string
	owaspTop10          string
	owaspTop10_2021     string //nolint:revive
	sansTop25           string
	sonarsourceSecurity string
	params              string
	createdAt           time.Time
}

// NewRuleStoreFromPGXPool creates a new RuleStore using a pgx Pool with optional configuration.
func NewRuleStoreFromPGXPool(db *pgxpool.Pool, options ...Option) (*RuleStore, error) {
	if db == nil {
		return nil, rulesquery.ErrNilDatabaseConnection
	}

	return newRuleStore(adapters.NewPGXAdapter(db), options...)
}

// NewRuleStoreFromPGXPoolWithReplica creates a new RuleStore using a primary and a replica pgx Pool.
// Searches read from the replica when the context carries rulesquery.WithEventualConsistency.
func NewRuleStoreFromPGXPoolWithReplica(primary *pgxpool.Pool, replica *pgxpool.Pool, options ...Option) (*RuleStore, error) {
	if primary == nil {
		return nil, rulesquery.ErrNilDatabaseConnection
	}

	return newRuleStore(adapters.NewPGXAdapterWithReplica(primary, replica), options...)
}

// NewRuleStoreFromSQLDB creates a new RuleStore using a sql.DB with optional configuration.
func NewRuleStoreFromSQLDB(db *sql.DB, options ...Option) (*RuleStore, error) {
	if db == nil {
		return nil, rulesquery.ErrNilDatabaseConnection
	}

	return newRuleStore(adapters.NewSQLAdapter(db), options...)
}

// NewRuleStoreFromSQLX creates a new RuleStore using a sqlx.DB with optional configuration.
func NewRuleStoreFromSQLX(db *sqlx.DB, options ...Option) (*RuleStore, error) {
	if db == nil {
		return nil, rulesquery.ErrNilDatabaseConnection
	}

	return newRuleStore(adapters.NewSQLXAdapter(db), options...)
}

func newRuleStore(db adapters.DBAdapter, options ...Option) (*RuleStore, error) {
	rs := &RuleStore{
		db:                   db,
		rulesTableName:       defaultRulesTableName,
		activeRulesTableName: defaultActiveRulesTableName,
	}

	for _, option := range options {
		if err := option(rs); err != nil {
			return nil, err
		}
	}

	return rs, nil
}

// Search returns one page of the rules matching query, ordered by name and key,
// together with the total number of matching rules.
func (rs *RuleStore) Search(ctx context.Context, query rulesquery.Query, paging rulesquery.Paging) (
	rulesquery.Rules,
	int,
	error,
) {

	var empty rulesquery.Rules

	if err := paging.Validate(); err != nil {
		return empty, 0, err
	}

	observer, ctx := rs.startObservation(ctx, operationSearch, map[string]string{
		spanAttrPageIndex: strconv.Itoa(paging.PageIndex),
		spanAttrPageSize:  strconv.Itoa(paging.PageSize),
	})

	selectQuery, countQuery, buildErr := rs.buildSearchQueries(query, paging)
	if buildErr != nil {
		rs.logError(ctx, logMsgBuildQueryFailed, buildErr)
		observer.finishError(errorTypeBuildQuery)

		return empty, 0, buildErr
	}

	total, countErr := rs.queryCount(ctx, countQuery)
	if countErr != nil {
		observer.finishError(errorTypeDatabaseQuery)
		return empty, 0, countErr
	}

	rows, duration, queryErr := rs.executeQuery(ctx, selectQuery, logActionSearch)
	if queryErr != nil {
		observer.finishError(errorTypeDatabaseQuery)
		return empty, 0, queryErr
	}
	defer rs.closeRows(ctx, rows)

	rules, scanErr := rs.processRuleRows(ctx, rows)
	if scanErr != nil {
		observer.finishError(errorTypeRowScan)
		return empty, 0, scanErr
	}

	observer.finishSuccess(len(rules), map[string]string{spanAttrTotal: strconv.Itoa(total)})

	rs.logOperation(
		ctx,
		logMsgSearchCompleted,
		logAttrRuleCount, len(rules),
		logAttrTotal, total,
		logAttrDurationMS, rs.toMilliseconds(duration),
	)

	return rules, total, nil
}

// FacetCounts computes the value counts of the requested facets for the rules matching query.
//
// Facets for which rulesquery.ShouldRequestFacet is false are skipped, rulesquery.FacetStandard
// is expanded into the individual security standard facets. The counts of a facet ignore the
// facet's own selection, so every value stays visible while the facet is filtered.
// The activation severities facet needs a quality profile; without one it is returned empty.
func (rs *RuleStore) FacetCounts(ctx context.Context, query rulesquery.Query, facets ...string) (rulesquery.Facets, error) {
	requested := rs.requestableFacets(ctx, facets)

	observer, ctx := rs.startObservation(ctx, operationFacets, map[string]string{
		spanAttrFacets: strings.Join(requested, ","),
	})

	start := time.Now()
	result := make(rulesquery.Facets, len(requested))

	for _, facet := range requested {
		serverFacet := rulesquery.GetServerFacet(facet)

		counts, err := rs.countFacet(ctx, query, facet, serverFacet)
		if err != nil {
			observer.finishError(errorTypeFacetCount)
			return nil, err
		}

		result[rulesquery.GetAppFacet(serverFacet)] = counts
	}

	observer.finishSuccess(len(result), nil)

	rs.logOperation(
		ctx,
		logMsgFacetsCompleted,
		logAttrFacetCount, len(result),
		logAttrDurationMS, rs.toMilliseconds(time.Since(start)),
	)

	return result, nil
}

// requestableFacets filters and expands the requested facets, logging and counting the skipped ones.
func (rs *RuleStore) requestableFacets(ctx context.Context, facets []string) []rulesquery.FacetKey {
	for _, facet := range facets {
		if !rulesquery.ShouldRequestFacet(facet) {
			rs.logDebug(ctx, logMsgFacetSkipped, logAttrFacet, facet)
			rs.recordSkippedFacet(ctx, facet)
		}
	}

	return rulesquery.ExpandFacets(facets)
}

func (rs *RuleStore) countFacet(
	ctx context.Context,
	query rulesquery.Query,
	facet rulesquery.FacetKey,
	serverFacet string,
) (rulesquery.Facet, error) {

	sqlQuery, ok, buildErr := rs.buildFacetQuery(query, facet, serverFacet)
	if buildErr != nil {
		rs.logError(ctx, logMsgBuildQueryFailed, buildErr, logAttrFacet, facet)
		return nil, buildErr
	}

	if !ok {
		rs.logDebug(ctx, logMsgFacetNeedsProfile, logAttrFacet, facet)
		return rulesquery.Facet{}, nil
	}

	rows, _, queryErr := rs.executeQuery(ctx, sqlQuery, logActionFacet)
	if queryErr != nil {
		return nil, errors.Join(rulesquery.ErrCountingFacetFailed, queryErr)
	}
	defer rs.closeRows(ctx, rows)

	counts := make(rulesquery.Facet)

	var value string
	var count int64

	for rows.Next() {
		if scanErr := rows.Scan(&value, &count); scanErr != nil {
			rs.logError(ctx, logMsgScanRowFailed, scanErr, logAttrFacet, facet)
			return nil, errors.Join(rulesquery.ErrCountingFacetFailed, rulesquery.ErrScanningDBRowFailed, scanErr)
		}

		counts[value] = int(count)
	}

	if iterErr := rows.Err(); iterErr != nil {
		rs.logError(ctx, logMsgDBQueryFailed, iterErr, logAttrFacet, facet)
		return nil, errors.Join(rulesquery.ErrCountingFacetFailed, iterErr)
	}

	return counts, nil
}

// Add stores one or multiple rules in a single statement.
func (rs *RuleStore) Add(ctx context.Context, rule rulesquery.Rule, additionalRules ...rulesquery.Rule) error {
	allRules := rulesquery.Rules{rule}
	allRules = append(allRules, additionalRules...)

	observer, ctx := rs.startObservation(ctx, operationAdd, map[string]string{
		spanAttrRuleCount: strconv.Itoa(len(allRules)),
	})

	sqlQuery, buildErr := rs.buildInsertRulesQuery(allRules)
	if buildErr != nil {
		rs.logError(ctx, logMsgBuildQueryFailed, buildErr, logAttrRuleCount, len(allRules))
		observer.finishError(errorTypeBuildQuery)

		return buildErr
	}

	rowsAffected, duration, execErr := rs.executeStatement(ctx, sqlQuery, logActionAdd)
	if execErr != nil {
		observer.finishError(errorTypeDatabaseExec)
		return errors.Join(rulesquery.ErrAddingRuleFailed, execErr)
	}

	observer.finishSuccess(int(rowsAffected), nil)

	rs.logOperation(
		ctx,
		logMsgRulesAdded,
		logAttrRuleCount, rowsAffected,
		logAttrDurationMS, rs.toMilliseconds(duration),
	)

	return nil
}

// Activate activates the rule in the quality profile, or updates an existing activation.
func (rs *RuleStore) Activate(
	ctx context.Context,
	profileKey string,
	ruleKey string,
	severity string,
	inheritance rulesquery.RuleInheritance,
) error {

	if err := rulesquery.ValidateActivation(profileKey, severity, inheritance); err != nil {
		rs.logError(ctx, logMsgInvalidActivation, err, logAttrProfileKey, profileKey, logAttrRuleKey, ruleKey)
		return err
	}

	observer, ctx := rs.startObservation(ctx, operationActivate, map[string]string{
		spanAttrProfileKey: profileKey,
	})

	sqlQuery, buildErr := rs.buildActivateQuery(profileKey, ruleKey, severity, inheritance)
	if buildErr != nil {
		rs.logError(ctx, logMsgBuildQueryFailed, buildErr, logAttrRuleKey, ruleKey)
		observer.finishError(errorTypeBuildQuery)

		return buildErr
	}

	rowsAffected, duration, execErr := rs.executeStatement(ctx, sqlQuery, logActionActivate)
	if execErr != nil {
		observer.finishError(errorTypeDatabaseExec)
		return errors.Join(rulesquery.ErrActivatingRuleFailed, execErr)
	}

	if rowsAffected == 0 {
		observer.finishError(errorTypeRuleNotFound)
		return errors.Join(rulesquery.ErrActivatingRuleFailed, rulesquery.ErrRuleNotFound)
	}

	observer.finishSuccess(int(rowsAffected), nil)

	rs.logOperation(
		ctx,
		logMsgRuleActivated,
		logAttrProfileKey, profileKey,
		logAttrRuleKey, ruleKey,
		logAttrDurationMS, rs.toMilliseconds(duration),
	)

	return nil
}

// CreateSchema creates the rules and active rules tables and their indexes if they don't exist.
func (rs *RuleStore) CreateSchema(ctx context.Context) error {
	for _, statement := range Schema(rs.rulesTableName, rs.activeRulesTableName) {
		if _, _, err := rs.executeStatement(ctx, statement, logActionSchema); err != nil {
			return errors.Join(rulesquery.ErrCreatingSchemaFailed, err)
		}
	}

	rs.logOperation(ctx, logMsgSchemaCreated)

	return nil
}

// queryCount executes a count query and returns the single count value.
func (rs *RuleStore) queryCount(ctx context.Context, sqlQuery string) (int, error) {
	rows, _, queryErr := rs.executeQuery(ctx, sqlQuery, logActionCount)
	if queryErr != nil {
		return 0, queryErr
	}
	defer rs.closeRows(ctx, rows)

	var total int64

	if rows.Next() {
		if scanErr := rows.Scan(&total); scanErr != nil {
			rs.logError(ctx, logMsgScanRowFailed, scanErr)
			return 0, errors.Join(rulesquery.ErrScanningDBRowFailed, scanErr)
		}
	}

	if iterErr := rows.Err(); iterErr != nil {
		rs.logError(ctx, logMsgDBQueryFailed, iterErr)
		return 0, errors.Join(rulesquery.ErrQueryingRulesFailed, iterErr)
	}

	return int(total), nil
}

// executeQuery executes the SQL query and returns rows with timing information.
func (rs *RuleStore) executeQuery(ctx context.Context, sqlQuery string, action string) (
	adapters.DBRows,
	queryDuration,
	error,
) {

	start := time.Now()
	rows, queryErr := rs.db.Query(ctx, sqlQuery)
	duration := time.Since(start)
	rs.logQueryWithDuration(ctx, sqlQuery, action, duration)

	if queryErr != nil {
		rs.logError(ctx, logMsgDBQueryFailed, queryErr, logAttrQuery, sqlQuery)
		rs.recordDatabaseError(ctx, action)

		return nil, duration, errors.Join(rulesquery.ErrQueryingRulesFailed, queryErr)
	}

	return rows, duration, nil
}

// executeStatement executes a data changing statement and returns rows affected and duration.
func (rs *RuleStore) executeStatement(ctx context.Context, sqlQuery string, action string) (
	int64,
	queryDuration,
	error,
) {

	start := time.Now()
	result, execErr := rs.db.Exec(ctx, sqlQuery)
	duration := time.Since(start)
	rs.logQueryWithDuration(ctx, sqlQuery, action, duration)

	if execErr != nil {
		rs.logError(ctx, logMsgDBExecFailed, execErr, logAttrQuery, sqlQuery)
		rs.recordDatabaseError(ctx, action)

		return 0, duration, execErr
	}

	rowsAffected, rowsAffectedErr := result.RowsAffected()
	if rowsAffectedErr != nil {
		rs.logError(ctx, logMsgRowsAffectedFailed, rowsAffectedErr)
		return 0, duration, errors.Join(rulesquery.ErrGettingRowsAffectedFailed, rowsAffectedErr)
	}

	return rowsAffected, duration, nil
}

// closeRows safely closes database rows and logs any errors.
func (rs *RuleStore) closeRows(ctx context.Context, rows adapters.DBRows) {
	if closeErr := rows.Close(); closeErr != nil {
		rs.logWarn(ctx, logMsgCloseRowsFailed, logAttrError, closeErr.Error())
	}
}

// processRuleRows converts database rows into rules.
func (rs *RuleStore) processRuleRows(ctx context.Context, rows adapters.DBRows) (rulesquery.Rules, error) {
	rules := make(rulesquery.Rules, 0)
	row := ruleRow{}

	for rows.Next() {
		scanErr := rows.Scan(
			&row.id,
			&row.key,
			&row.repository,
			&row.name,
			&row.language,
			&row.ruleType,
			&row.severity,
			&row.status,
			&row.isTemplate,
			&row.tags,
			&row.cwe,
			&row.owaspTop10,
			&row.owaspTop10_2021,
			&row.sansTop25,
			&row.sonarsourceSecurity,
			&row.params,
			&row.createdAt,
		)
		if scanErr != nil {
			rs.logError(ctx, logMsgScanRowFailed, scanErr)
			return nil, errors.Join(rulesquery.ErrScanningDBRowFailed, scanErr)
		}

		rule, convertErr := rs.ruleFromRow(row)
		if convertErr != nil {
			rs.logError(ctx, logMsgDecodeArrayFailed, convertErr, logAttrRuleKey, row.key)
			return nil, errors.Join(rulesquery.ErrScanningDBRowFailed, convertErr)
		}

		rules = append(rules, rule)
	}

	if iterErr := rows.Err(); iterErr != nil {
		rs.logError(ctx, logMsgDBQueryFailed, iterErr)
		return nil, errors.Join(rulesquery.ErrQueryingRulesFailed, iterErr)
	}

	return rules, nil
}

// ruleFromRow builds a rule from a scanned row. Array columns arrive as JSON arrays.
func (rs *RuleStore) ruleFromRow(row ruleRow) (rulesquery.Rule, error) {
	id, parseErr := uuid.Parse(row.id)
	if parseErr != nil {
		return rulesquery.Rule{}, parseErr
	}

	rule := rulesquery.Rule{
		ID:         id,
		Key:        row.key,
		Repository: row.repository,
		Name:       row.name,
		Language:   row.language,
		Type:       row.ruleType,
		Severity:   row.severity,
		Status:     row.status,
		IsTemplate: row.isTemplate,
		CreatedAt:  row.createdAt.UTC(),
		ParamsJSON: []byte(row.params),
	}

	arrays := []struct {
		column string
		raw    string
		dest   *[]string
	}{
		{colTags, row.tags, &rule.Tags},
		{colCWE, row.cwe, &rule.CWE},
		{colOwaspTop10, row.owaspTop10, &rule.OwaspTop10},
		{colOwaspTop10_2021, row.owaspTop10_2021, &rule.OwaspTop10_2021},
		{colSansTop25, row.sansTop25, &rule.SansTop25},
		{colSonarsourceSecurity, row.sonarsourceSecurity, &rule.SonarsourceSecurity},
	}

	for _, array := range arrays {
		values := make([]string, 0)
		if err := jsoniter.UnmarshalFromString(array.raw, &values); err != nil {
			return rulesquery.Rule{}, fmt.Errorf("%s %s: %w", logAttrColumn, array.column, err)
		}

		if values == nil {
			values = []string{}
		}

		*array.dest = values
	}

	return rule, nil
}
