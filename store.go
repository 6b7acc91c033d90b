package stanza

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"os"
	"path/filepath"
	"time"
)

// Store wraps the SQLite database holding rendered markdown fragments between
// builds. Keys are content-relative source paths; a stored fragment is only
// served while the body hash still matches.
type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) the SQLite database at path, ensures the cache
// directory exists, and runs schema migrations.
func NewStore(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// Enable WAL mode for concurrent read/write access, set a busy timeout
	// so writers wait instead of returning SQLITE_BUSY immediately, and tune
	// performance: synchronous=NORMAL is safe with WAL and avoids an fsync
	// per transaction; larger cache and mmap reduce disk I/O.
	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA busy_timeout=5000;
		PRAGMA synchronous=NORMAL;
		PRAGMA cache_size=-8000;
		PRAGMA mmap_size=268435456;
	`); err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS fragments (
    source TEXT PRIMARY KEY,
    hash TEXT NOT NULL,
    html TEXT NOT NULL,
    rendered_at TEXT NOT NULL
);
`)
	return err
}

// GetFragment returns the cached HTML for source if the stored body hash
// still matches. A miss, stale or absent, is reported as sql.ErrNoRows.
func (s *Store) GetFragment(source, hash string) (string, error) {
	var storedHash, html string
	err := s.db.QueryRow(`SELECT hash, html FROM fragments WHERE source = ?`, source).
		Scan(&storedHash, &html)
	if err != nil {
		return "", err
	}
	if storedHash != hash {
		return "", sql.ErrNoRows
	}
	return html, nil
}

// PutFragment upserts the rendered HTML for source.
func (s *Store) PutFragment(source, hash, html string) error {
	_, err := s.db.Exec(`INSERT OR REPLACE INTO fragments (source, hash, html, rendered_at) VALUES (?, ?, ?, ?)`,
		source, hash, html, time.Now().UTC().Format(time.RFC3339))
	return err
}

// DeleteFragment removes the cached fragment for source.
func (s *Store) DeleteFragment(source string) error {
	_, err := s.db.Exec(`DELETE FROM fragments WHERE source = ?`, source)
	return err
}

// Prune drops fragments whose source file no longer exists. Returns the
// number of rows removed.
func (s *Store) Prune(live map[string]struct{}) (int, error) {
	rows, err := s.db.Query(`SELECT source FROM fragments`)
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	var stale []string
	for rows.Next() {
		var source string
		if err := rows.Scan(&source); err != nil {
			return 0, err
		}
		if _, ok := live[source]; !ok {
			stale = append(stale, source)
		}
	}
	if err := rows.Err(); err != nil {
		return 0, err
	}
	for _, source := range stale {
		if _, err := s.db.Exec(`DELETE FROM fragments WHERE source = ?`, source); err != nil {
			return 0, err
		}
	}
	return len(stale), nil
}

// HashBytes returns the hex SHA-256 of b, the cache key for a rendered body.
func HashBytes(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}
