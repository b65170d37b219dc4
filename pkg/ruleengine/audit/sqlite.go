package audit

import (
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// SQLiteStore persists decisions to SQLite.
// It is suitable for single-process production use.
type SQLiteStore struct {
	db     *sql.DB
	mu     sync.RWMutex
	closed bool
}

// NewSQLiteStore creates a new SQLite decision store.
// The path should be a file path (e.g., "./decisions.db") or ":memory:" for testing.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// A single connection keeps ":memory:" databases shared across calls.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS decisions (
			id TEXT PRIMARY KEY,
			rule_name TEXT NOT NULL,
			rule TEXT NOT NULL,
			context BLOB NOT NULL,
			verdict INTEGER NOT NULL,
			error TEXT NOT NULL,
			sequence INTEGER NOT NULL,
			timestamp TEXT NOT NULL
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create table: %w", err)
	}

	if _, err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_decisions_rule_name
		ON decisions(rule_name, sequence)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create index: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Record implements Store.
func (s *SQLiteStore) Record(d Decision) error {
	if d.ID == "" {
		return ErrMissingID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	var exists int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM decisions WHERE id = ?`, d.ID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check decision: %w", err)
	}
	if exists > 0 {
		return fmt.Errorf("%w: %s", ErrDuplicateID, d.ID)
	}

	ctxData, err := encodeContext(d.Context)
	if err != nil {
		return fmt.Errorf("encode context: %w", err)
	}

	_, err = s.db.Exec(`
		INSERT INTO decisions (id, rule_name, rule, context, verdict, error, sequence, timestamp)
		VALUES (
			?, ?, ?, ?, ?, ?,
			COALESCE((SELECT MAX(sequence) FROM decisions WHERE rule_name = ?), 0) + 1,
			?
		)
	`, d.ID, d.RuleName, d.Rule, ctxData, d.Verdict, d.Error, d.RuleName,
		time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("record decision: %w", err)
	}
	return nil
}

// Get implements Store.
func (s *SQLiteStore) Get(id string) (Decision, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return Decision{}, ErrStoreClosed
	}

	row := s.db.QueryRow(`
		SELECT id, rule_name, rule, context, verdict, error, sequence, timestamp
		FROM decisions
		WHERE id = ?
	`, id)

	d, err := scanDecision(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Decision{}, ErrNotFound
	}
	if err != nil {
		return Decision{}, fmt.Errorf("get decision: %w", err)
	}
	return d, nil
}

// List implements Store.
func (s *SQLiteStore) List(ruleName string) ([]Decision, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	rows, err := s.db.Query(`
		SELECT id, rule_name, rule, context, verdict, error, sequence, timestamp
		FROM decisions
		WHERE rule_name = ?
		ORDER BY sequence
	`, ruleName)
	if err != nil {
		return nil, fmt.Errorf("list decisions: %w", err)
	}
	defer rows.Close()

	var out []Decision
	for rows.Next() {
		d, err := scanDecision(rows)
		if err != nil {
			return nil, fmt.Errorf("scan decision: %w", err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate decisions: %w", err)
	}
	return out, nil
}

// DeleteRule implements Store.
func (s *SQLiteStore) DeleteRule(ruleName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	if _, err := s.db.Exec(`DELETE FROM decisions WHERE rule_name = ?`, ruleName); err != nil {
		return fmt.Errorf("delete rule decisions: %w", err)
	}
	return nil
}

// Close implements Store.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}

	s.closed = true
	return s.db.Close()
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanDecision(sc scanner) (Decision, error) {
	var (
		d         Decision
		ctxData   []byte
		timestamp string
	)
	if err := sc.Scan(&d.ID, &d.RuleName, &d.Rule, &ctxData, &d.Verdict, &d.Error, &d.Sequence, &timestamp); err != nil {
		return Decision{}, err
	}
	data, err := decodeContext(ctxData)
	if err != nil {
		return Decision{}, fmt.Errorf("decode context: %w", err)
	}
	d.Context = data
	d.Timestamp, _ = time.Parse(time.RFC3339Nano, timestamp)
	return d, nil
}
