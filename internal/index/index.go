// Package index maintains a SQLite search index derived from the record store.
// The JSON record files stay authoritative; the index can always be rebuilt.
package index

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3" // registers the sqlite3 driver with database/sql

	"github.com/go-ports/stratocrm/internal/models"
)

// Result is a single customer hit returned from Search or Recent.
type Result struct {
	AccountNumber string
	Name          string
	Email         string
	Phone         string
	NoteCount     int
	IndexedAt     string
}

// Index wraps a *sql.DB with the path it was opened from.
type Index struct {
	db   *sql.DB
	path string
}

// Open opens (or creates) the index database at path and initialises the schema.
func Open(path string) (*Index, error) {
	sqldb, err := sql.Open("sqlite3", path+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("index.Open: %w", err)
	}
	ix := &Index{db: sqldb, path: path}
	if err := ix.createSchema(); err != nil {
		_ = sqldb.Close()
		return nil, fmt.Errorf("index.Open createSchema: %w", err)
	}
	return ix, nil
}

// Close closes the underlying database connection.
func (ix *Index) Close() error {
	return ix.db.Close()
}

// ---------------------------------------------------------------------------
// Schema
// ---------------------------------------------------------------------------

func (ix *Index) createSchema() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS customers (
			account_number TEXT PRIMARY KEY,
			name           TEXT NOT NULL,
			email          TEXT NOT NULL,
			phone          TEXT NOT NULL,
			notes          TEXT NOT NULL DEFAULT '[]',
			note_count     INTEGER NOT NULL DEFAULT 0,
			indexed_at     TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS meta (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,
	}
	for _, s := range stmts {
		if _, err := ix.db.Exec(s); err != nil {
			return fmt.Errorf("createSchema exec: %w\nSQL: %s", err, s)
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// Meta
// ---------------------------------------------------------------------------

// GetMeta reads a value from the meta table.
func (ix *Index) GetMeta(key string) (string, bool, error) {
	var val string
	err := ix.db.QueryRow(`SELECT value FROM meta WHERE key = ?`, key).Scan(&val)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

// SetMeta upserts a value in the meta table.
func (ix *Index) SetMeta(key, value string) error {
	_, err := ix.db.Exec(
		`INSERT INTO meta(key, value) VALUES(?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	return err
}

// LastReindex returns when Rebuild last completed, if ever.
func (ix *Index) LastReindex() (time.Time, bool, error) {
	val, ok, err := ix.GetMeta("last_reindex")
	if !ok || err != nil {
		return time.Time{}, false, err
	}
	t, err := time.Parse(time.RFC3339, val)
	if err != nil {
		return time.Time{}, false, err
	}
	return t, true, nil
}

// ---------------------------------------------------------------------------
// Writes
// ---------------------------------------------------------------------------

type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

const upsertSQL = `INSERT INTO customers
	(account_number, name, email, phone, notes, note_count, indexed_at)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(account_number) DO UPDATE SET
		name = excluded.name,
		email = excluded.email,
		phone = excluded.phone,
		notes = excluded.notes,
		note_count = excluded.note_count,
		indexed_at = excluded.indexed_at`

func upsert(e execer, c *models.Customer, now string) error {
	notes := c.Notes
	if notes == nil {
		notes = make([]string, 0)
	}
	notesJSON, err := json.Marshal(notes)
	if err != nil {
		return err
	}
	_, err = e.Exec(upsertSQL,
		c.AccountNumber, c.Name, c.Email, c.Phone,
		string(notesJSON), len(notes), now,
	)
	return err
}

// Upsert inserts or replaces the index row for c.
func (ix *Index) Upsert(c *models.Customer) error {
	if err := upsert(ix.db, c, time.Now().UTC().Format(time.RFC3339)); err != nil {
		return fmt.Errorf("index.Upsert: %w", err)
	}
	return nil
}

// Rebuild replaces every indexed row with records in a single transaction.
func (ix *Index) Rebuild(records []*models.Customer) error {
	tx, err := ix.db.Begin()
	if err != nil {
		return fmt.Errorf("index.Rebuild begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`DELETE FROM customers`); err != nil {
		return fmt.Errorf("index.Rebuild clear: %w", err)
	}
	now := time.Now().UTC().Format(time.RFC3339)
	for _, c := range records {
		if err := upsert(tx, c, now); err != nil {
			return fmt.Errorf("index.Rebuild %s: %w", c.AccountNumber, err)
		}
	}
	if _, err := tx.Exec(
		`INSERT INTO meta(key, value) VALUES('last_reindex', ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`, now,
	); err != nil {
		return fmt.Errorf("index.Rebuild meta: %w", err)
	}
	return tx.Commit()
}

// ---------------------------------------------------------------------------
// Reads
// ---------------------------------------------------------------------------

// Count returns the number of indexed customers.
func (ix *Index) Count() (int, error) {
	var n int
	err := ix.db.QueryRow(`SELECT COUNT(*) FROM customers`).Scan(&n)
	return n, err
}

// Search returns customers whose name, email, phone or any single note
// contains query (case-insensitive for ASCII), ordered by account number.
// Notes are matched element by element so JSON syntax never matches.
func (ix *Index) Search(query string, limit int) ([]Result, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return make([]Result, 0), nil
	}
	if limit <= 0 {
		limit = 20
	}
	pattern := "%" + escapeLike(query) + "%"
	rows, err := ix.db.Query(
		`SELECT account_number, name, email, phone, note_count, indexed_at
		 FROM customers
		 WHERE name LIKE ?1 ESCAPE '\'
		    OR email LIKE ?1 ESCAPE '\'
		    OR phone LIKE ?1 ESCAPE '\'
		    OR EXISTS (
		        SELECT 1 FROM json_each(customers.notes)
		        WHERE json_each.value LIKE ?1 ESCAPE '\'
		    )
		 ORDER BY account_number
		 LIMIT ?2`,
		pattern, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("index.Search: %w", err)
	}
	return scanResults(rows)
}

// Recent returns the most recently indexed customers, newest first.
func (ix *Index) Recent(limit int) ([]Result, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := ix.db.Query(
		`SELECT account_number, name, email, phone, note_count, indexed_at
		 FROM customers
		 ORDER BY indexed_at DESC, account_number DESC
		 LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("index.Recent: %w", err)
	}
	return scanResults(rows)
}

func scanResults(rows *sql.Rows) ([]Result, error) {
	defer rows.Close()
	out := make([]Result, 0)
	for rows.Next() {
		var r Result
		if err := rows.Scan(&r.AccountNumber, &r.Name, &r.Email, &r.Phone, &r.NoteCount, &r.IndexedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// escapeLike escapes LIKE wildcards so query matches literally.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
