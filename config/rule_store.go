package config

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/AntonStoeckl/coding-rules-query-go/rulesquery/postgresengine"
)

// OpenRuleStore connects to the database with the configured adapter and creates a RuleStore on it.
// The returned function closes the connections.
func OpenRuleStore(
	ctx context.Context,
	cfg Config,
	options ...postgresengine.Option,
) (*postgresengine.RuleStore, func(), error) {

	options = append(
		[]postgresengine.Option{
			postgresengine.WithTableName(cfg.RulesTable),
			postgresengine.WithActiveRulesTableName(cfg.ActiveRulesTable),
		},
		options...,
	)

	switch cfg.Adapter {
	case AdapterPGXPool:
		return openPGXRuleStore(ctx, cfg, options)

	case AdapterSQLDB:
		db, err := NewSQLDB(ctx, cfg.DSN)
		if err != nil {
			return nil, nil, err
		}

		store, err := postgresengine.NewRuleStoreFromSQLDB(db, options...)
		if err != nil {
			_ = db.Close()
			return nil, nil, err
		}

		return store, func() { _ = db.Close() }, nil

	case AdapterSQLX:
		db, err := NewSQLX(ctx, cfg.DSN)
		if err != nil {
			return nil, nil, err
		}

		store, err := postgresengine.NewRuleStoreFromSQLX(db, options...)
		if err != nil {
			_ = db.Close()
			return nil, nil, err
		}

		return store, func() { _ = db.Close() }, nil

	default:
		return nil, nil, errors.Join(ErrUnsupportedAdapter, errors.New(cfg.Adapter))
	}
}

// openPGXRuleStore uses a replica pool for eventually consistent reads if a replica DSN is configured.
func openPGXRuleStore(
	ctx context.Context,
	cfg Config,
	options []postgresengine.Option,
) (*postgresengine.RuleStore, func(), error) {

	primary, err := NewPGXPool(ctx, cfg.DSN)
	if err != nil {
		return nil, nil, err
	}

	var replica *pgxpool.Pool
	if cfg.ReplicaDSN != "" {
		if replica, err = NewPGXPool(ctx, cfg.ReplicaDSN); err != nil {
			primary.Close()
			return nil, nil, err
		}
	}

	closeAll := func() {
		primary.Close()
		if replica != nil {
			replica.Close()
		}
	}

	store, err := postgresengine.NewRuleStoreFromPGXPoolWithReplica(primary, replica, options...)
	if err != nil {
		closeAll()
		return nil, nil, err
	}

	return store, closeAll, nil
}
