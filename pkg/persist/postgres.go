// pkg/persist/postgres.go
package persist

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// DBPool is an interface that abstracts the pgxpool.Pool to allow for mocking in tests.
type DBPool interface {
	Ping(ctx context.Context) error
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

const (
	sqlCreateSyncTable = `
        CREATE TABLE IF NOT EXISTS domunify_sync (
            key TEXT PRIMARY KEY,
            value JSONB NOT NULL,
            updated_at TIMESTAMPTZ NOT NULL
        );
    `
	sqlSelectSyncValue = `SELECT value FROM domunify_sync WHERE key = $1;`
	sqlUpsertSyncValue = `
        INSERT INTO domunify_sync (key, value, updated_at)
        VALUES ($1, $2, $3)
        ON CONFLICT (key) DO UPDATE SET
            value = EXCLUDED.value,
            updated_at = EXCLUDED.updated_at;
    `
	sqlDeleteSyncValue = `DELETE FROM domunify_sync WHERE key = $1;`
	sqlListSyncKeys    = `SELECT key FROM domunify_sync ORDER BY key;`
)

// PostgresKV is a KV backed by the domunify_sync table.
type PostgresKV struct {
	pool DBPool
	log  *zap.Logger
}

// NewPostgresKV creates a KV over pool and verifies the connection.
func NewPostgresKV(ctx context.Context, pool DBPool, logger *zap.Logger) (*PostgresKV, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return &PostgresKV{
		pool: pool,
		log:  logger.Named("kv"),
	}, nil
}

// OpenPostgresKV dials dsn, creates the sync table when missing, and returns
// the KV together with the pool the caller must close.
func OpenPostgresKV(ctx context.Context, dsn string, logger *zap.Logger) (*PostgresKV, *pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	kv, err := NewPostgresKV(ctx, pool, logger)
	if err != nil {
		pool.Close()
		return nil, nil, err
	}
	if err := kv.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, nil, err
	}
	return kv, pool, nil
}

// EnsureSchema creates the domunify_sync table if it does not exist.
func (p *PostgresKV) EnsureSchema(ctx context.Context) error {
	if _, err := p.pool.Exec(ctx, sqlCreateSyncTable); err != nil {
		return fmt.Errorf("failed to create sync table: %w", err)
	}
	return nil
}

func (p *PostgresKV) Get(ctx context.Context, key string) ([]byte, bool, error) {
	rows, err := p.pool.Query(ctx, sqlSelectSyncValue, key)
	if err != nil {
		return nil, false, fmt.Errorf("failed to query sync value for key %s: %w", key, err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, false, fmt.Errorf("error iterating sync rows: %w", err)
		}
		return nil, false, nil
	}
	var value []byte
	if err := rows.Scan(&value); err != nil {
		return nil, false, fmt.Errorf("failed to scan sync value: %w", err)
	}
	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("error iterating sync rows: %w", err)
	}
	return value, true, nil
}

// Put upserts value, which must be a valid JSON document.
func (p *PostgresKV) Put(ctx context.Context, key string, value []byte) error {
	if !json.Valid(value) {
		return fmt.Errorf("refusing to store invalid JSON for key %s", key)
	}
	tag, err := p.pool.Exec(ctx, sqlUpsertSyncValue, key, string(value), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to upsert sync value for key %s: %w", key, err)
	}
	p.log.Debug("Stored sync value", zap.String("key", key), zap.Int64("rows", tag.RowsAffected()))
	return nil
}

func (p *PostgresKV) Delete(ctx context.Context, key string) error {
	if _, err := p.pool.Exec(ctx, sqlDeleteSyncValue, key); err != nil {
		return fmt.Errorf("failed to delete sync value for key %s: %w", key, err)
	}
	return nil
}

// Keys lists every stored key in order.
func (p *PostgresKV) Keys(ctx context.Context) ([]string, error) {
	rows, err := p.pool.Query(ctx, sqlListSyncKeys)
	if err != nil {
		return nil, fmt.Errorf("failed to query sync keys: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("failed to scan sync key: %w", err)
		}
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sync keys: %w", err)
	}
	return keys, nil
}
