package rulesquery

import (
	"errors"
)

var ErrNilDatabaseConnection = errors.New("database connection must not be nil")
var ErrEmptyRulesTableName = errors.New("empty rules table name supplied")
var ErrEmptyActiveRulesTableName = errors.New("empty active rules table name supplied")
var ErrBuildingQueryFailed = errors.New("building the sql query failed")
var ErrQueryingRulesFailed = errors.New("querying rules failed")
var ErrScanningDBRowFailed = errors.New("scanning the database row failed")
var ErrCountingFacetFailed = errors.New("counting facet values failed")
var ErrAddingRuleFailed = errors.New("adding rule failed")
var ErrActivatingRuleFailed = errors.New("activating rule failed")
var ErrCreatingSchemaFailed = errors.New("creating the schema failed")
var ErrGettingRowsAffectedFailed = errors.New("getting rows affected failed")
var ErrRuleNotFound = errors.New("rule not found")
var ErrInvalidPaging = errors.New("invalid paging")

var ErrInvalidRuleKey = errors.New("rule key must have the form <repository>:<rule>")
var ErrEmptyRuleName = errors.New("rule name must not be empty")
var ErrEmptyRuleLanguage = errors.New("rule language must not be empty")
var ErrInvalidRuleType = errors.New("rule type is not valid")
var ErrInvalidSeverity = errors.New("severity is not valid")
var ErrInvalidRuleStatus = errors.New("rule status is not valid")
var ErrInvalidInheritance = errors.New("inheritance is not valid")
var ErrInvalidParamsJSON = errors.New("params json is not valid")
var ErrEmptyProfileKey = errors.New("quality profile key must not be empty")
