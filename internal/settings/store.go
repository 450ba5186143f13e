package settings

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"

	_ "modernc.org/sqlite"
)

// Store keeps settings as name/JSON rows. Set only stages a change; nothing
// is written until Persist.
type Store struct {
	db      *sql.DB
	mu      sync.Mutex
	pending map[string]json.RawMessage
}

func Open(dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// busy_timeout(5000): wait up to 5s when another process holds the lock
	db, err := sql.Open("sqlite", dbPath+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &Store{db: db, pending: make(map[string]json.RawMessage)}
	if err := store.createTables(); err != nil {
		db.Close()
		return nil, err
	}

	return store, nil
}

func (s *Store) createTables() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS settings (
			name TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Get returns the raw JSON value of name, preferring a staged value.
func (s *Store) Get(name string) (json.RawMessage, bool, error) {
	s.mu.Lock()
	if v, ok := s.pending[name]; ok {
		s.mu.Unlock()
		return v, true, nil
	}
	s.mu.Unlock()

	var value string
	err := s.db.QueryRow(`SELECT value FROM settings WHERE name = ?`, name).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read setting %s: %w", name, err)
	}
	return json.RawMessage(value), true, nil
}

func (s *Store) Set(name string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", name, err)
	}
	return s.SetRaw(name, raw)
}

func (s *Store) SetRaw(name string, raw json.RawMessage) error {
	if name == "" {
		return fmt.Errorf("setting name is required")
	}
	if !json.Valid(raw) {
		return fmt.Errorf("invalid JSON for %s", name)
	}
	if err := validate(name, raw); err != nil {
		return err
	}

	s.mu.Lock()
	s.pending[name] = append(json.RawMessage(nil), raw...)
	s.mu.Unlock()
	return nil
}

// Persist writes all staged values in one transaction.
func (s *Store) Persist() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.pending) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	for name, raw := range s.pending {
		_, err := tx.Exec(`
			INSERT INTO settings (name, value, updated_at)
			VALUES (?, ?, CURRENT_TIMESTAMP)
			ON CONFLICT(name) DO UPDATE SET
				value = excluded.value,
				updated_at = CURRENT_TIMESTAMP
		`, name, string(raw))
		if err != nil {
			return fmt.Errorf("failed to persist %s: %w", name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit settings: %w", err)
	}

	s.pending = make(map[string]json.RawMessage)
	return nil
}

func (s *Store) Delete(name string) error {
	s.mu.Lock()
	delete(s.pending, name)
	s.mu.Unlock()

	_, err := s.db.Exec(`DELETE FROM settings WHERE name = ?`, name)
	return err
}

func (s *Store) Names() ([]string, error) {
	rows, err := s.db.Query(`SELECT name FROM settings`)
	if err != nil {
		return nil, fmt.Errorf("failed to list settings: %w", err)
	}
	defer rows.Close()

	seen := make(map[string]struct{})
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		seen[name] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	for name := range s.pending {
		seen[name] = struct{}{}
	}
	s.mu.Unlock()

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Load builds a fresh Settings from the stored and staged values.
func (s *Store) Load() (*Settings, error) {
	var out Settings
	for _, name := range knownNames {
		raw, ok, err := s.Get(name)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		if err := out.apply(name, raw); err != nil {
			return nil, err
		}
	}
	return &out, nil
}

// Import stages every top-level entry of a JSON settings document, such as
// an AutoRemote.sublime-settings file. It returns the staged names.
func (s *Store) Import(r io.Reader) ([]string, error) {
	var doc map[string]json.RawMessage
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode settings: %w", err)
	}

	for name, raw := range doc {
		if err := validate(name, raw); err != nil {
			return nil, err
		}
	}

	names := make([]string, 0, len(doc))
	for name, raw := range doc {
		if err := s.SetRaw(name, raw); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}
