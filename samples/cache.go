package samples

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const hashCacheSchema = `
CREATE TABLE IF NOT EXISTS file_hashes (
	path TEXT NOT NULL,
	size INTEGER NOT NULL,
	mtime INTEGER NOT NULL,
	hash TEXT NOT NULL,
	PRIMARY KEY (path, size, mtime)
)`

// CacheKey identifies one version of a file on disk. Path is absolute.
type CacheKey struct {
	Path    string
	Size    int64
	ModTime time.Time
}

// SQLiteHashCache persists content hashes of files on disk. A file that is
// rewritten gets a new modification time and so a new key.
type SQLiteHashCache struct {
	db *sql.DB
}

// OpenSQLiteHashCache opens or creates the cache database at dbPath.
func OpenSQLiteHashCache(ctx context.Context, dbPath string) (*SQLiteHashCache, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("mkdir db dir: %w", err)
	}
	dsn := fmt.Sprintf("file:%s?cache=shared&mode=rwc&_busy_timeout=5000", dbPath)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	c, err := NewSQLiteHashCache(ctx, db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return c, nil
}

// NewSQLiteHashCache uses db and creates the table when missing.
func NewSQLiteHashCache(ctx context.Context, db *sql.DB) (*SQLiteHashCache, error) {
	if _, err := db.ExecContext(ctx, hashCacheSchema); err != nil {
		return nil, fmt.Errorf("create hash table: %w", err)
	}
	return &SQLiteHashCache{db: db}, nil
}

func (c *SQLiteHashCache) Get(ctx context.Context, key CacheKey) (string, bool, error) {
	var h string
	err := c.db.QueryRowContext(ctx,
		`SELECT hash FROM file_hashes WHERE path = ? AND size = ? AND mtime = ?`,
		key.Path, key.Size, key.ModTime.UnixNano()).Scan(&h)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("lookup hash %s: %w", key.Path, err)
	}
	return h, true, nil
}

func (c *SQLiteHashCache) Put(ctx context.Context, key CacheKey, hash string) error {
	_, err := c.db.ExecContext(ctx, `
		INSERT INTO file_hashes (path, size, mtime, hash) VALUES (?, ?, ?, ?)
		ON CONFLICT (path, size, mtime) DO UPDATE SET hash = excluded.hash
	`, key.Path, key.Size, key.ModTime.UnixNano(), hash)
	if err != nil {
		return fmt.Errorf("store hash %s: %w", key.Path, err)
	}
	return nil
}

func (c *SQLiteHashCache) Len(ctx context.Context) (int, error) {
	var n int
	err := c.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM file_hashes`).Scan(&n)
	return n, err
}

func (c *SQLiteHashCache) Close() error { return c.db.Close() }
