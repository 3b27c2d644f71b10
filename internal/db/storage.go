// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/exaring/otelpgx"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/canonical/project-hub/internal/logging"
	"github.com/canonical/project-hub/internal/monitoring"
	"github.com/canonical/project-hub/internal/tracing"
)

const (
	defaultPage      uint64 = 1
	defaultPageSize  uint64 = 20
	maxPageSize      uint64 = 100
	defaultTxTimeout        = time.Second * 60
)

type LazyTxContextKey struct{}

var lazyTxContextKey LazyTxContextKey

var (
	writeTxOptions    = sql.TxOptions{Isolation: sql.LevelReadCommitted, ReadOnly: false}
	snapshotTxOptions = sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true}
)

type Config struct {
	DSN             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
	TracingEnabled  bool
}

// Page clamps the requested page number to a minimum of 1.
func Page(pageParam int64) uint64 {
	if pageParam < 1 {
		return defaultPage
	}
	return uint64(pageParam)
}

// PageSize calculates the page size for pagination based on the provided size parameter.
// Non positive sizes fall back to the default, larger ones are capped.
func PageSize(sizeParam int64) uint64 {
	if sizeParam <= 0 {
		return defaultPageSize
	}
	if uint64(sizeParam) > maxPageSize {
		return maxPageSize
	}
	return uint64(sizeParam)
}

// Offset calculates the offset for pagination based on the provided page parameter and page size.
func Offset(pageParam int64, pageSize uint64) uint64 {
	return (Page(pageParam) - 1) * pageSize
}

// lazyTx wraps transaction state for lazy initialization.
type lazyTx struct {
	ctx       context.Context
	db        *sql.DB
	opts      sql.TxOptions
	tx        TxInterface
	committed bool
	cancel    context.CancelFunc
}

// get returns the transaction, creating it lazily on first call.
// The transaction is bound to the caller context, abandoning the request rolls it back.
func (lt *lazyTx) get() (TxInterface, error) {
	if lt.tx != nil {
		return lt.tx, nil
	}

	ctx, cancel := context.WithTimeout(lt.ctx, defaultTxTimeout)
	opts := lt.opts
	tx, err := lt.db.BeginTx(ctx, &opts)
	if err != nil {
		cancel()
		return nil, err
	}

	lt.tx = tx
	lt.cancel = cancel
	return tx, nil
}

// isStarted returns true if the transaction has been created.
func (lt *lazyTx) isStarted() bool {
	return lt.tx != nil
}

type DBClient struct {
	// pool is the native PGX pool we hold to allow closing
	pool *pgxpool.Pool
	// db original instance to handle transactions
	db *sql.DB
	// dbRunner is the runner instance of choice
	dbRunner sq.BaseRunner

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

// Statement provides a StatementBuilderType configured to use the DBClient's database connection.
// If a unit of work exists in the context, its transaction is used (created lazily on first use).
// A transaction that cannot be started yields a runner failing every statement, so work meant
// to be atomic never silently runs in autocommit mode.
func (d *DBClient) Statement(ctx context.Context) sq.StatementBuilderType {
	builder := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

	if lt := lazyTxFromContext(ctx); lt != nil {
		tx, err := lt.get()
		if err != nil {
			d.logger.Errorf("failed to create lazy transaction: %v", err)
			return builder.RunWith(&errRunner{err: fmt.Errorf("failed to begin transaction: %w", err)})
		}
		return builder.RunWith(tx)
	}

	return builder.RunWith(d.dbRunner)
}

// lazyTxFromContext extracts a lazy transaction holder from the context.
func lazyTxFromContext(ctx context.Context) *lazyTx {
	if lt, ok := ctx.Value(lazyTxContextKey).(*lazyTx); ok {
		return lt
	}
	return nil
}

// contextWithLazyTx returns a new context with a lazy transaction holder attached.
func contextWithLazyTx(ctx context.Context, lt *lazyTx) context.Context {
	return context.WithValue(ctx, lazyTxContextKey, lt)
}

// InTx reports whether ctx carries a unit of work.
func InTx(ctx context.Context) bool {
	return lazyTxFromContext(ctx) != nil
}

// WithTx executes a function within a read-committed transaction.
// The transaction is created lazily on first database access.
// If the function returns an error, the transaction is rolled back.
// Otherwise, the transaction is committed.
// If no database operations occurred, no transaction is created or committed.
// Nested calls join the outer unit of work.
func (d *DBClient) WithTx(ctx context.Context, fn func(context.Context) error) error {
	return d.run(ctx, writeTxOptions, fn)
}

// WithSnapshot executes fn in a read-only repeatable-read transaction so that
// every statement observes the same snapshot.
func (d *DBClient) WithSnapshot(ctx context.Context, fn func(context.Context) error) error {
	return d.run(ctx, snapshotTxOptions, fn)
}

func (d *DBClient) run(ctx context.Context, opts sql.TxOptions, fn func(context.Context) error) error {
	if InTx(ctx) {
		return fn(ctx)
	}

	lt := &lazyTx{
		ctx:  ctx,
		db:   d.db,
		opts: opts,
	}
	txCtx := contextWithLazyTx(ctx, lt)

	defer func() {
		// Only rollback if transaction was started and not committed
		if lt.isStarted() && !lt.committed {
			if err := lt.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
				d.logger.Errorf("failed to rollback transaction: %v", err)
			}
		}
		if lt.cancel != nil {
			lt.cancel()
		}
	}()

	if err := fn(txCtx); err != nil {
		return err
	}

	// Only commit if transaction was actually started
	if lt.isStarted() {
		if err := lt.tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit transaction: %w", err)
		}
		lt.committed = true
	}

	return nil
}

func (d *DBClient) Ping(ctx context.Context) error {
	return d.db.PingContext(ctx)
}

// DB exposes the underlying connection, used by migrations
func (d *DBClient) DB() *sql.DB {
	return d.db
}

func (d *DBClient) Close() {
	if d.db != nil {
		_ = d.db.Close()
	}

	if d.pool != nil {
		d.pool.Close()
	}
}

// NewDBClient creates a new DBClient instance with the provided DSN and configuration options.
func NewDBClient(cfg Config, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) (*DBClient, error) {
	config, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("DSN validation failed: %w", err)
	}

	if cfg.TracingEnabled {
		// otelpgx.NewTracer will use default global TracerProvider, just like our tracer struct
		config.ConnConfig.Tracer = otelpgx.NewTracer()
	}

	config.MaxConns = cfg.MaxConns
	config.MinConns = cfg.MinConns
	config.MaxConnLifetime = cfg.MaxConnLifetime
	config.MaxConnLifetimeJitter = cfg.MaxConnLifetime / 10 // Add 10% jitter to avoid thundering herd
	config.MaxConnIdleTime = cfg.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(context.Background(), config)
	if err != nil {
		return nil, fmt.Errorf("failed to create db pool: %v", err)
	}

	if cfg.TracingEnabled {
		// when tracing is enabled, also collect metrics
		if err := otelpgx.RecordStats(pool); err != nil {
			return nil, fmt.Errorf("failed to start metrics collection for database: %v", err)
		}
	}

	db := stdlib.OpenDBFromPool(pool)
	if err := db.Ping(); err != nil {
		_ = monitor.SetDependencyAvailability(map[string]string{"component": "database"}, 0)
		return nil, fmt.Errorf("failed to connect to the database: %v", err)
	}
	_ = monitor.SetDependencyAvailability(map[string]string{"component": "database"}, 1)

	d := NewDBClientFromDB(db, tracer, monitor, logger)
	d.pool = pool

	return d, nil
}

// NewDBClientFromDB wraps an already opened connection
func NewDBClientFromDB(db *sql.DB, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *DBClient {
	d := new(DBClient)
	d.db = db
	d.dbRunner = db

	d.tracer = tracer
	d.monitor = monitor
	d.logger = logger

	return d
}
