// Package sqlitekv implements the cache port with an embedded SQLite
// database as the durable process-local tier.
package sqlitekv

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite" // registers the "sqlite" database/sql driver

	"github.com/codelore/codelore/internal/port/cache"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Cache is a SQLite-backed key-value store. Expiry is evaluated at read
// time; expired rows are deleted when encountered.
type Cache struct {
	db *sql.DB
}

// Open creates (or opens) the database at path and applies pending
// migrations. The parent directory is created if missing.
func Open(ctx context.Context, path string) (*Cache, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("sqlitekv: create dir: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlitekv: open: %w", err)
	}
	// SQLite serializes writers; a single connection avoids SQLITE_BUSY
	// under concurrent analysis workers.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlitekv: ping: %w", err)
	}

	if err := runMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Cache{db: db}, nil
}

// runMigrations applies all pending goose migrations from the embedded SQL files.
func runMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations)
	goose.SetLogger(goose.NopLogger())

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("sqlitekv: set dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("sqlitekv: migrate: %w", err)
	}
	return nil
}

// Get retrieves a value, treating expired rows as absent and deleting
// them opportunistically.
func (c *Cache) Get(ctx context.Context, key string) (value []byte, ok bool, err error) {
	var (
		val        []byte
		insertedAt int64
		ttlSeconds sql.NullInt64
	)
	row := c.db.QueryRowContext(ctx,
		`SELECT value, inserted_at, ttl_seconds FROM cache_entries WHERE key = ?`, key)
	if err := row.Scan(&val, &insertedAt, &ttlSeconds); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("sqlitekv: get %s: %w", key, err)
	}

	if ttlSeconds.Valid && !time.Now().Before(time.Unix(insertedAt, 0).Add(time.Duration(ttlSeconds.Int64)*time.Second)) {
		_, _ = c.db.ExecContext(ctx, `DELETE FROM cache_entries WHERE key = ?`, key)
		return nil, false, nil
	}

	return val, true, nil
}

// Set stores a value, replacing any previous entry under the same key.
func (c *Cache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	var ttlSeconds sql.NullInt64
	if ttl != cache.NoExpiry {
		ttlSeconds = sql.NullInt64{Int64: int64(ttl / time.Second), Valid: true}
	}
	_, err := c.db.ExecContext(ctx,
		`INSERT INTO cache_entries (key, value, inserted_at, ttl_seconds)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET
		   value = excluded.value,
		   inserted_at = excluded.inserted_at,
		   ttl_seconds = excluded.ttl_seconds`,
		key, value, time.Now().Unix(), ttlSeconds)
	if err != nil {
		return fmt.Errorf("sqlitekv: set %s: %w", key, err)
	}
	return nil
}

// Delete removes a value. Deleting a missing key is not an error.
func (c *Cache) Delete(ctx context.Context, key string) error {
	if _, err := c.db.ExecContext(ctx, `DELETE FROM cache_entries WHERE key = ?`, key); err != nil {
		return fmt.Errorf("sqlitekv: delete %s: %w", key, err)
	}
	return nil
}

// Close closes the underlying database.
func (c *Cache) Close() error {
	return c.db.Close()
}
