// Package store keeps named rule-list texts in SQLite.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

var ErrNotFound = errors.New("storage: rule list not found")

// Rulebook is a SQLite-backed collection of named rule lists.
type Rulebook struct {
	db *sql.DB
}

// Entry is one stored rule list.
type Entry struct {
	Name      string
	Rules     string
	Kept      int
	Dropped   int
	UpdatedAt time.Time
}

// Open creates or opens the rulebook at dbPath, creating parent
// directories and running migrations. A leading ~ expands to the home
// directory.
func Open(dbPath string) (*Rulebook, error) {
	if strings.HasPrefix(dbPath, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("storage: cannot expand home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	rb := &Rulebook{db: db}
	if err := rb.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}
	return rb, nil
}

func (rb *Rulebook) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS rule_lists (
			name TEXT PRIMARY KEY,
			rules TEXT NOT NULL,
			kept INTEGER NOT NULL DEFAULT 0,
			dropped INTEGER NOT NULL DEFAULT 0,
			updated_at INTEGER NOT NULL
		);
	`
	_, err := rb.db.Exec(schema)
	return err
}

func (rb *Rulebook) Close() error {
	if rb.db != nil {
		return rb.db.Close()
	}
	return nil
}

// Save stores text under name, replacing any previous version. kept and
// dropped are the parse counts recorded alongside for listing.
func (rb *Rulebook) Save(name, text string, kept, dropped int) error {
	if strings.TrimSpace(name) == "" {
		return errors.New("storage: rule list name is empty")
	}
	_, err := rb.db.Exec(`
		INSERT INTO rule_lists (name, rules, kept, dropped, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			rules = excluded.rules,
			kept = excluded.kept,
			dropped = excluded.dropped,
			updated_at = excluded.updated_at`,
		name, text, kept, dropped, time.Now().UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("storage: cannot save %s: %w", name, err)
	}
	return nil
}

// Load returns the stored text for name, or ErrNotFound.
func (rb *Rulebook) Load(name string) (Entry, error) {
	e := Entry{Name: name}
	var updated int64
	err := rb.db.QueryRow(
		"SELECT rules, kept, dropped, updated_at FROM rule_lists WHERE name = ?", name,
	).Scan(&e.Rules, &e.Kept, &e.Dropped, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return Entry{}, fmt.Errorf("storage: cannot load %s: %w", name, err)
	}
	e.UpdatedAt = time.Unix(0, updated)
	return e, nil
}

// List returns every entry ordered by name. Rule text is omitted.
func (rb *Rulebook) List() ([]Entry, error) {
	rows, err := rb.db.Query("SELECT name, kept, dropped, updated_at FROM rule_lists ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("storage: cannot list rule lists: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		var updated int64
		if err := rows.Scan(&e.Name, &e.Kept, &e.Dropped, &updated); err != nil {
			return nil, fmt.Errorf("storage: cannot scan rule list: %w", err)
		}
		e.UpdatedAt = time.Unix(0, updated)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return out, nil
}

// Delete removes name. Deleting a missing name returns ErrNotFound.
func (rb *Rulebook) Delete(name string) error {
	res, err := rb.db.Exec("DELETE FROM rule_lists WHERE name = ?", name)
	if err != nil {
		return fmt.Errorf("storage: cannot delete %s: %w", name, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return nil
}
