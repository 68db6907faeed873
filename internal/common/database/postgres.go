// internal/common/database/postgres.go
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"time"

	"student-intake/internal/common/config"

	_ "github.com/lib/pq"
)

var identifierPattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// PostgresClient stores namespace values as JSONB rows of a single table.
type PostgresClient struct {
	DB        *sql.DB
	table     string
	namespace string
}

var _ Namespace = (*PostgresClient)(nil)

// NewPostgres creates a new PostgreSQL client
func NewPostgres(cfg config.PostgresConfig, namespace string) (*PostgresClient, error) {
	db, err := sql.Open("postgres", cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxConnections)
	db.SetMaxIdleConns(cfg.MaxIdle)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)

	client, err := NewPostgresFromDB(db, cfg.Table, namespace)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return client, nil
}

// NewPostgresFromDB wraps an open handle. table must be a plain lower-case identifier.
func NewPostgresFromDB(db *sql.DB, table, namespace string) (*PostgresClient, error) {
	if table == "" {
		table = "intake_kv"
	}
	if !identifierPattern.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	return &PostgresClient{DB: db, table: table, namespace: namespace}, nil
}

// Ping tests the database connection
func (c *PostgresClient) Ping(ctx context.Context) error {
	return c.DB.PingContext(ctx)
}

// Close closes the database connection
func (c *PostgresClient) Close() error {
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}

// EnsureSchema creates the key-value table when missing.
func (c *PostgresClient) EnsureSchema(ctx context.Context) error {
	query := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		key TEXT PRIMARY KEY,
		value JSONB NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`, c.table)
	if _, err := c.DB.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("create table %s: %w", c.table, err)
	}
	return nil
}

func (c *PostgresClient) Get(ctx context.Context, key string) ([]byte, bool, error) {
	query := fmt.Sprintf(`SELECT value FROM %s WHERE key = $1`, c.table)

	var value []byte
	err := c.DB.QueryRowContext(ctx, query, prefixed(c.namespace, key)).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("postgres get %s: %w", key, err)
	}
	return value, true, nil
}

// Put upserts the value. JSONB parameters are sent as text.
func (c *PostgresClient) Put(ctx context.Context, key string, value []byte) error {
	query := fmt.Sprintf(`INSERT INTO %s (key, value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`, c.table)

	if _, err := c.DB.ExecContext(ctx, query, prefixed(c.namespace, key), string(value)); err != nil {
		return fmt.Errorf("postgres put %s: %w", key, err)
	}
	return nil
}
