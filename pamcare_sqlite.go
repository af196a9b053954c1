package pamcare

// Helpers to create SQLite connection pools with defaults that suit the
// backend (WAL mode, busy timeout). Applications that query the database
// directly alongside the App must share a single pool to avoid SQLITE_BUSY
// errors; create the pool here and hand it to both sides.

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/pamcare/pamcare/core"
	"github.com/pamcare/pamcare/db/zombiezen"
	"github.com/pamcare/pamcare/migrations"
)

// WithZombiezenPool configures the App to use the given pool. The caller
// owns the pool lifecycle.
func WithZombiezenPool(pool *sqlitex.Pool) core.Option {
	dbInstance, err := zombiezen.New(pool)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize database with existing pool: %v", err))
	}
	return core.WithDb(dbInstance)
}

// NewZombiezenPool creates a SQLite connection pool with default options.
// A poolSize of 0 or less means one connection per CPU.
func NewZombiezenPool(dbPath string, poolSize int) (*sqlitex.Pool, error) {
	if poolSize <= 0 {
		poolSize = runtime.NumCPU()
	}

	// Default flags are ReadWrite | Create | WAL | URI.
	pool, err := sqlitex.NewPool(fmt.Sprintf("file:%s", dbPath), sqlitex.PoolOptions{
		PoolSize: poolSize,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create sqlite pool at %s: %w", dbPath, err)
	}
	return pool, nil
}

var explicitBusyTimeout = 5 * time.Second

// NewZombiezenPerformancePool creates a pool with explicit performance
// pragmas in the DSN.
func NewZombiezenPerformancePool(dbPath string, poolSize int) (*sqlitex.Pool, error) {
	if poolSize <= 0 {
		poolSize = runtime.NumCPU()
	}

	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=%d&_foreign_keys=off",
		dbPath,
		explicitBusyTimeout.Milliseconds(),
	)

	pool, err := sqlitex.NewPool(dsn, sqlitex.PoolOptions{
		PoolSize: poolSize,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create performance sqlite pool at %s: %w", dbPath, err)
	}
	return pool, nil
}

// MigrateSchema applies the embedded schema to the database behind the pool.
// All statements are idempotent, so running it on every boot is safe.
func MigrateSchema(ctx context.Context, pool *sqlitex.Pool) error {
	conn, err := pool.Take(ctx)
	if err != nil {
		return fmt.Errorf("failed to get connection for migration: %w", err)
	}
	defer pool.Put(conn)

	return zombiezen.ApplyMigrations(conn, migrations.Schema())
}
