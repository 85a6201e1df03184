// Package history keeps a record of past builds in a local sqlite database,
// so rule file changes can be traced after the fact (which input produced the
// installed ruleset, when, and with how many warnings).
package history

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Run statuses.
const (
	StatusOK     = "ok"
	StatusFailed = "failed"
)

// Run records one build: what was compiled, from which input, and how it went.
type Run struct {
	ID          string    `json:"id"`
	Timestamp   time.Time `json:"timestamp"`
	ConfigPath  string    `json:"config_path"`
	ConfigHash  string    `json:"config_hash"`
	OutputDir   string    `json:"output_dir,omitempty"`
	V4Rules     int       `json:"v4_rules"`
	V6Rules     int       `json:"v6_rules"`
	Warnings    int       `json:"warnings"`
	Status      string    `json:"status"`
	Diagnostics []string  `json:"diagnostics,omitempty"`
}

// Store provides persistent storage for build runs.
type Store struct {
	mu sync.RWMutex
	db *sql.DB
}

// NewStore opens the history database at dbPath, creating it if needed.
func NewStore(dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create history dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS build_runs (
			id TEXT PRIMARY KEY,
			timestamp DATETIME NOT NULL,
			config_path TEXT NOT NULL,
			config_hash TEXT NOT NULL,
			output_dir TEXT,
			v4_rules INTEGER DEFAULT 0,
			v6_rules INTEGER DEFAULT 0,
			warnings INTEGER DEFAULT 0,
			status TEXT NOT NULL,
			diagnostics TEXT
		);
		CREATE INDEX IF NOT EXISTS idx_runs_timestamp ON build_runs(timestamp);
		CREATE INDEX IF NOT EXISTS idx_runs_hash ON build_runs(config_hash);
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create history table: %w", err)
	}

	return &Store{db: db}, nil
}

// Record persists a run. A missing ID or timestamp is filled in; the stored
// run is returned.
func (s *Store) Record(run Run) (Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	if run.Timestamp.IsZero() {
		run.Timestamp = time.Now().UTC()
	}

	var diagJSON []byte
	if len(run.Diagnostics) > 0 {
		var err error
		diagJSON, err = json.Marshal(run.Diagnostics)
		if err != nil {
			diagJSON = []byte("[]")
		}
	}

	_, err := s.db.Exec(`
		INSERT INTO build_runs (id, timestamp, config_path, config_hash, output_dir, v4_rules, v6_rules, warnings, status, diagnostics)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, run.ID, run.Timestamp, run.ConfigPath, run.ConfigHash, run.OutputDir,
		run.V4Rules, run.V6Rules, run.Warnings, run.Status, string(diagJSON))
	if err != nil {
		return run, fmt.Errorf("insert build run: %w", err)
	}

	return run, nil
}

// Recent returns the most recent runs, newest first. A limit of 0 returns
// everything.
func (s *Store) Recent(limit int) ([]Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	clause := "ORDER BY timestamp DESC"
	if limit > 0 {
		clause += fmt.Sprintf(" LIMIT %d", limit)
	}
	return s.queryRuns(clause)
}

// Last returns the most recent run, or nil when the history is empty.
func (s *Store) Last() (*Run, error) {
	runs, err := s.Recent(1)
	if err != nil || len(runs) == 0 {
		return nil, err
	}
	return &runs[0], nil
}

// ByHash returns runs whose input hashed to hash, newest first.
func (s *Store) ByHash(hash string) ([]Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryRuns("WHERE config_hash = ? ORDER BY timestamp DESC", hash)
}

func (s *Store) queryRuns(clause string, args ...any) ([]Run, error) {
	query := `SELECT id, timestamp, config_path, config_hash, output_dir,
		v4_rules, v6_rules, warnings, status, diagnostics FROM build_runs ` + clause

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query build runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		var outputDir, diagJSON sql.NullString

		err := rows.Scan(&run.ID, &run.Timestamp, &run.ConfigPath, &run.ConfigHash,
			&outputDir, &run.V4Rules, &run.V6Rules, &run.Warnings, &run.Status, &diagJSON)
		if err != nil {
			return nil, fmt.Errorf("scan build run: %w", err)
		}

		if outputDir.Valid {
			run.OutputDir = outputDir.String
		}
		if diagJSON.Valid && diagJSON.String != "" {
			json.Unmarshal([]byte(diagJSON.String), &run.Diagnostics)
		}

		runs = append(runs, run)
	}

	return runs, rows.Err()
}

// Prune keeps the newest keep runs and deletes the rest, returning the number
// removed.
func (s *Store) Prune(keep int) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if keep < 0 {
		keep = 0
	}
	result, err := s.db.Exec(`
		DELETE FROM build_runs WHERE id NOT IN (
			SELECT id FROM build_runs ORDER BY timestamp DESC LIMIT ?
		)
	`, keep)
	if err != nil {
		return 0, fmt.Errorf("prune build runs: %w", err)
	}

	return result.RowsAffected()
}

// Count returns the total number of recorded runs.
func (s *Store) Count() (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int64
	err := s.db.QueryRow("SELECT COUNT(*) FROM build_runs").Scan(&count)
	return count, err
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// HashFile returns the hex sha256 of a file's contents, used to detect when
// the same input produced different builds.
func HashFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("hash %s: %w", path, err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
