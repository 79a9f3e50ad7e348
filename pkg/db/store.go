// Package db stores finished lookups in SQLite, one table per mode.
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/japaniel/glossword/pkg/gloss"
)

// DBExecutor is an interface that allows methods to accept either *sql.DB or *sql.Tx
type DBExecutor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// ErrDuplicate is returned when inserting a word that is already cached.
var ErrDuplicate = errors.New("entry already cached")

// ErrNoEntry is returned when updating a word that is not cached.
var ErrNoEntry = errors.New("no cached entry to update")

// isUniqueConstraintErr returns true when the error indicates a unique/constraint violation
func isUniqueConstraintErr(err error) bool {
	if err == nil {
		return false
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "unique") || strings.Contains(s, "constraint failed")
}

// tableFor maps a mode onto its table. Table names never come from input.
func tableFor(mode gloss.Mode) (string, error) {
	switch mode {
	case gloss.Definition:
		return "dictionary", nil
	case gloss.Etymology:
		return "etymology", nil
	default:
		return "", fmt.Errorf("%w: unknown mode %v", gloss.ErrCache, mode)
	}
}

// Cache is the persistent (mode, word) -> text store.
type Cache struct {
	conn *sql.DB
}

// NewCache wraps an open connection and creates the schema if it is missing.
func NewCache(ctx context.Context, conn *sql.DB) (*Cache, error) {
	if err := InitDB(ctx, conn); err != nil {
		return nil, fmt.Errorf("%w: %w", gloss.ErrCache, err)
	}
	return &Cache{conn: conn}, nil
}

// Close closes the underlying connection.
func (c *Cache) Close() error {
	return c.conn.Close()
}

// Lookup returns the cached text for word. The boolean is false on a miss;
// a miss is not an error.
func (c *Cache) Lookup(ctx context.Context, mode gloss.Mode, word string) (string, bool, error) {
	table, err := tableFor(mode)
	if err != nil {
		return "", false, err
	}
	var content string
	err = c.conn.QueryRowContext(ctx, `SELECT content FROM `+table+` WHERE word = ?`, word).Scan(&content)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("%w: query %s: %w", gloss.ErrCache, table, err)
	}
	return content, true, nil
}

// Upsert stores text for word. With isUpdate the existing row is overwritten;
// otherwise a new row is inserted and an existing one is reported as
// ErrDuplicate. Each write is a single statement, so a reader sees either the
// old or the new text.
func (c *Cache) Upsert(ctx context.Context, mode gloss.Mode, word, text string, isUpdate bool) error {
	table, err := tableFor(mode)
	if err != nil {
		return err
	}
	return upsert(ctx, c.conn, table, word, text, isUpdate)
}

func upsert(ctx context.Context, db DBExecutor, table, word, text string, isUpdate bool) error {
	if strings.TrimSpace(word) == "" {
		return fmt.Errorf("%w: word must be non-empty", gloss.ErrCache)
	}

	if isUpdate {
		res, err := db.ExecContext(ctx, `UPDATE `+table+` SET content = ? WHERE word = ?`, text, word)
		if err != nil {
			return fmt.Errorf("%w: update %s: %w", gloss.ErrCache, table, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("%w: update %s: %w", gloss.ErrCache, table, err)
		}
		if n == 0 {
			return fmt.Errorf("%w: %w: %q", gloss.ErrCache, ErrNoEntry, word)
		}
		return nil
	}

	if _, err := db.ExecContext(ctx, `INSERT INTO `+table+` (word, content) VALUES (?, ?)`, word, text); err != nil {
		if isUniqueConstraintErr(err) {
			return fmt.Errorf("%w: %w: %q", gloss.ErrCache, ErrDuplicate, word)
		}
		return fmt.Errorf("%w: insert %s: %w", gloss.ErrCache, table, err)
	}
	return nil
}
