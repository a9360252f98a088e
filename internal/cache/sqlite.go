package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// DefaultSQLiteFile is the database name used under cache.dir.
const DefaultSQLiteFile = "consultantpdf.db"

const sqliteSchema = `CREATE TABLE IF NOT EXISTS resources (
	name      TEXT PRIMARY KEY,
	stored_at INTEGER NOT NULL,
	payload   BLOB NOT NULL
)`

// SQLiteCache implements Cache with one row per resource in a SQLite file.
// Each write is a single statement, so readers see the old or the new row.
type SQLiteCache struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteCache opens (creating if needed) the database at path.
func NewSQLiteCache(path string) (*SQLiteCache, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	// WAL lets a second invocation read while another one writes.
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping SQLite database: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create resources table: %w", err)
	}

	return &SQLiteCache{db: db, now: time.Now}, nil
}

// ReadFresh returns the payload if it was stored no more than maxAge ago.
func (c *SQLiteCache) ReadFresh(ctx context.Context, name string, maxAge time.Duration) (json.RawMessage, bool, error) {
	payload, storedAt, ok, err := c.read(ctx, name)
	if err != nil || !ok {
		return nil, false, err
	}
	if !isFresh(c.now(), storedAt, maxAge) {
		return nil, false, nil
	}
	return payload, true, nil
}

// ReadStale returns the payload regardless of age.
func (c *SQLiteCache) ReadStale(ctx context.Context, name string) (json.RawMessage, bool, error) {
	payload, _, ok, err := c.read(ctx, name)
	return payload, ok, err
}

func (c *SQLiteCache) read(ctx context.Context, name string) (json.RawMessage, time.Time, bool, error) {
	var (
		storedAt int64
		payload  []byte
	)
	err := c.db.QueryRowContext(ctx, `SELECT stored_at, payload FROM resources WHERE name = ?`, name).Scan(&storedAt, &payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, time.Time{}, false, nil
	}
	if err != nil {
		return nil, time.Time{}, false, fmt.Errorf("failed to read cache entry %s: %w", name, err)
	}
	if !json.Valid(payload) {
		return nil, time.Time{}, false, fmt.Errorf("cache entry %s is not valid JSON", name)
	}
	return json.RawMessage(payload), time.UnixMilli(storedAt), true, nil
}

// Write replaces the row for name.
func (c *SQLiteCache) Write(ctx context.Context, name string, payload json.RawMessage) error {
	_, err := c.db.ExecContext(ctx,
		`INSERT INTO resources (name, stored_at, payload) VALUES (?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET stored_at = excluded.stored_at, payload = excluded.payload`,
		name, c.now().UnixMilli(), []byte(payload))
	if err != nil {
		return fmt.Errorf("failed to write cache entry %s: %w", name, err)
	}
	return nil
}

// Close closes the database.
func (c *SQLiteCache) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}
