package cache

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/blackwell-systems/depprune/internal/extractor"
)

// Store is the persistent cache tier. Use ":memory:" for tests.
type Store struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS extractions (
    fingerprint TEXT PRIMARY KEY,
    result TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL
);
`

// OpenStore opens (and if needed initializes) the cache database.
func OpenStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}

	// SQLite only allows one writer at a time; a single connection also
	// serializes the engine's per-fingerprint writes.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create cache schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Get looks up the stored extraction result for a fingerprint.
func (s *Store) Get(fingerprint string) (*extractor.Result, bool, error) {
	var encoded string
	err := s.db.QueryRow(
		`SELECT result FROM extractions WHERE fingerprint = ?`, fingerprint,
	).Scan(&encoded)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to query cache: %w", err)
	}

	var res extractor.Result
	if err := json.Unmarshal([]byte(encoded), &res); err != nil {
		// A corrupt row is treated as a miss; the file is re-parsed and
		// the row rewritten on Put.
		return nil, false, nil
	}
	return &res, true, nil
}

// Put stores an extraction result. The upsert keeps concurrent writes
// for the same fingerprint idempotent (content-identical rows race
// benignly) and lets a corrupt row heal on the next write.
func (s *Store) Put(fingerprint string, res *extractor.Result) error {
	encoded, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("failed to marshal extraction result: %w", err)
	}
	_, err = s.db.Exec(
		`INSERT INTO extractions (fingerprint, result, created_at) VALUES (?, ?, ?)
		 ON CONFLICT(fingerprint) DO UPDATE SET result = excluded.result`,
		fingerprint, string(encoded), time.Now().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to store extraction result: %w", err)
	}
	return nil
}
