package rulesquery

import "context"

// ConsistencyLevel defines which database node a search may read from.
type ConsistencyLevel int

const (
	// StrongConsistency reads from the primary database, so a search sees rules and activations
	// that were just written. This is the default.
	StrongConsistency ConsistencyLevel = iota

	// EventualConsistency allows reads from a replica database. Interactive rule browsing
	// tolerates slightly stale facet counts in exchange for a lower load on the primary.
	EventualConsistency
)

type contextKey string

// ConsistencyLevelKey is the context key used to store the consistency level preference.
const ConsistencyLevelKey contextKey = "rulesquery.consistency_level"

// WithStrongConsistency returns a context that makes searches read from the primary database.
//
// Example usage:
//
//	ctx = rulesquery.WithStrongConsistency(ctx)
//	rules, total, err := store.Search(ctx, query, paging)
func WithStrongConsistency(ctx context.Context) context.Context {
	return context.WithValue(ctx, ConsistencyLevelKey, StrongConsistency)
}

// WithEventualConsistency returns a context that allows searches to read from a replica database.
//
// Example usage:
//
//	ctx = rulesquery.WithEventualConsistency(ctx)
//	facets, err := store.FacetCounts(ctx, query, rulesquery.FacetStandard)
func WithEventualConsistency(ctx context.Context) context.Context {
	return context.WithValue(ctx, ConsistencyLevelKey, EventualConsistency)
}

// GetConsistencyLevel extracts the consistency level from the context.
// It returns StrongConsistency when none is set.
func GetConsistencyLevel(ctx context.Context) ConsistencyLevel {
	if level, ok := ctx.Value(ConsistencyLevelKey).(ConsistencyLevel); ok {
		return level
	}

	return StrongConsistency
}

// String provides a string representation of ConsistencyLevel for logging.
func (c ConsistencyLevel) String() string {
	switch c {
	case StrongConsistency:
		return "strong"
	case EventualConsistency:
		return "eventual"
	default:
		return "unknown"
	}
}
