package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"kv-shepherd.io/adminseed/internal/domain"
	apperrors "kv-shepherd.io/adminseed/internal/pkg/errors"
	"kv-shepherd.io/adminseed/internal/schema"
)

// SQLite stores each record as one JSON document in a two-column table.
// Updates go through json_patch in a single statement, so a save is atomic
// and leaves fields outside the patch untouched.
type SQLite struct {
	db       *sql.DB
	table    string
	keyField string
}

// OpenSQLite opens (creating if needed) the database at dsn and prepares table.
func OpenSQLite(ctx context.Context, dsn, table, keyField string) (*SQLite, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dsn, err)
	}
	// One writer; avoids SQLITE_BUSY between pooled connections.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	s := NewSQLite(db, table, keyField)
	if err := s.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// NewSQLite wraps an open database. Call Migrate before first use.
func NewSQLite(db *sql.DB, table, keyField string) *SQLite {
	return &SQLite{db: db, table: table, keyField: keyField}
}

// Migrate creates the document table when missing.
func (s *SQLite) Migrate(ctx context.Context) error {
	q := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	record_key TEXT PRIMARY KEY,
	doc        TEXT NOT NULL CHECK (json_valid(doc))
)`, quoteSQLiteIdent(s.table))
	if _, err := s.db.ExecContext(ctx, q); err != nil {
		return fmt.Errorf("create table %s: %w", s.table, err)
	}
	return nil
}

// FindOne implements reconcile.Store.
func (s *SQLite) FindOne(ctx context.Context, key string) (domain.Record, error) {
	q := fmt.Sprintf(`SELECT doc FROM %s WHERE record_key = ?`, quoteSQLiteIdent(s.table))

	var raw string
	err := s.db.QueryRowContext(ctx, q, key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s %q: %w", s.keyField, key, apperrors.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("select %s: %w", s.table, err)
	}

	var rec domain.Record
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return nil, fmt.Errorf("decode stored document: %w", err)
	}
	return rec, nil
}

// Create implements reconcile.Store.
func (s *SQLite) Create(ctx context.Context, rec domain.Record) error {
	key, err := recordKey(rec, s.keyField)
	if err != nil {
		return err
	}
	doc, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}

	q := fmt.Sprintf(`INSERT INTO %s (record_key, doc) VALUES (?, ?)`, quoteSQLiteIdent(s.table))
	if _, err := s.db.ExecContext(ctx, q, key, string(doc)); err != nil {
		if isSQLiteConstraint(err) {
			return fmt.Errorf("%s %q: %w", s.keyField, key, apperrors.ErrAlreadyExists)
		}
		return fmt.Errorf("insert %s: %w", s.table, err)
	}
	return nil
}

// Save implements reconcile.Store.
func (s *SQLite) Save(ctx context.Context, key string, changes domain.Record) error {
	patch, err := json.Marshal(changes)
	if err != nil {
		return fmt.Errorf("encode changes: %w", err)
	}

	q := fmt.Sprintf(`UPDATE %s SET doc = json_patch(doc, ?) WHERE record_key = ?`, quoteSQLiteIdent(s.table))
	res, err := s.db.ExecContext(ctx, q, string(patch), key)
	if err != nil {
		return fmt.Errorf("update %s: %w", s.table, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update %s: %w", s.table, err)
	}
	if n == 0 {
		return fmt.Errorf("%s %q: %w", s.keyField, key, apperrors.ErrNotFound)
	}
	return nil
}

// Describe implements schema.Provider. Documents in SQLite carry no schema.
func (s *SQLite) Describe(context.Context) (schema.Description, error) {
	return nil, fmt.Errorf("sqlite table %s: %w", s.table, apperrors.ErrNoSchema)
}

// Close closes the underlying database.
func (s *SQLite) Close() error {
	return s.db.Close()
}

func quoteSQLiteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func isSQLiteConstraint(err error) bool {
	var sqliteErr *sqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	// Primary result code lives in the low byte of extended codes.
	return sqliteErr.Code()&0xff == sqlite3.SQLITE_CONSTRAINT
}
