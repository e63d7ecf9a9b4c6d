// Package assetcache is the offline cache layer: a generational,
// sqlite-backed store of static assets plus a cache-first proxy in
// front of the deployed origin. It runs in its own process, decoupled
// from the dashboard, and never touches API traffic.
package assetcache

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const cacheFile = "assets.db"

// Entry is one cached asset under the live generation.
type Entry struct {
	ContentType string
	Body        []byte
	FetchedAt   time.Time
}

// Store persists cached assets keyed by (generation, path). At most
// one generation is live; activation purges every other one.
type Store struct {
	conn       *sql.DB
	generation string
}

// Open opens (or creates) the cache database in dir for the given
// generation token.
func Open(dir, generation string) (*Store, error) {
	if generation == "" {
		return nil, fmt.Errorf("cache generation must not be empty")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}

	conn, err := sql.Open("sqlite", filepath.Join(dir, cacheFile))
	if err != nil {
		return nil, fmt.Errorf("open cache db: %w", err)
	}
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enable WAL: %w", err)
	}
	if err := InitSchema(conn); err != nil {
		conn.Close()
		return nil, err
	}
	return &Store{conn: conn, generation: generation}, nil
}

// NewWithConn wraps an existing connection (tests use an in-memory
// database) after ensuring the schema exists.
func NewWithConn(conn *sql.DB, generation string) (*Store, error) {
	if err := InitSchema(conn); err != nil {
		return nil, err
	}
	return &Store{conn: conn, generation: generation}, nil
}

// InitSchema creates the asset table if needed.
func InitSchema(conn *sql.DB) error {
	_, err := conn.Exec(`
		CREATE TABLE IF NOT EXISTS assets (
			generation   TEXT NOT NULL,
			path         TEXT NOT NULL,
			content_type TEXT NOT NULL DEFAULT '',
			body         BLOB NOT NULL,
			fetched_at   TIMESTAMP NOT NULL,
			PRIMARY KEY (generation, path)
		)`)
	if err != nil {
		return fmt.Errorf("init cache schema: %w", err)
	}
	return nil
}

// Generation returns the live generation token.
func (s *Store) Generation() string {
	return s.generation
}

// Put stores an asset under the live generation, replacing any prior
// copy of the same path.
func (s *Store) Put(path, contentType string, body []byte) error {
	_, err := s.conn.Exec(`
		INSERT OR REPLACE INTO assets (generation, path, content_type, body, fetched_at)
		VALUES (?, ?, ?, ?, ?)`,
		s.generation, path, contentType, body, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("cache put %s: %w", path, err)
	}
	return nil
}

// Get returns the cached asset for path under the live generation.
func (s *Store) Get(path string) (Entry, bool, error) {
	var e Entry
	err := s.conn.QueryRow(`
		SELECT content_type, body, fetched_at FROM assets
		WHERE generation = ? AND path = ?`,
		s.generation, path).Scan(&e.ContentType, &e.Body, &e.FetchedAt)
	if err == sql.ErrNoRows {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("cache get %s: %w", path, err)
	}
	return e, true, nil
}

// Activate purges every generation except the live one, bounding
// storage growth across deployments. Returns the number of entries
// removed.
func (s *Store) Activate() (int, error) {
	res, err := s.conn.Exec(`DELETE FROM assets WHERE generation != ?`, s.generation)
	if err != nil {
		return 0, fmt.Errorf("purge old generations: %w", err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

// Paths lists the cached paths under the live generation, sorted.
func (s *Store) Paths() ([]string, error) {
	rows, err := s.conn.Query(`
		SELECT path FROM assets WHERE generation = ? ORDER BY path`, s.generation)
	if err != nil {
		return nil, fmt.Errorf("list cached paths: %w", err)
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("scan cached path: %w", err)
		}
		paths = append(paths, p)
	}
	return paths, rows.Err()
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.conn.Close()
}
