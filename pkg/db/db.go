package db

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

// migrationsSQL creates one table per lookup mode. Every statement is
// idempotent so InitDB can run on each start.
const migrationsSQL = `
CREATE TABLE IF NOT EXISTS dictionary (
	word    TEXT UNIQUE NOT NULL,
	content TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS etymology (
	word    TEXT UNIQUE NOT NULL,
	content TEXT NOT NULL
);
`

// InitDB runs migrations on the given DB connection using the embedded SQL.
func InitDB(ctx context.Context, db DBExecutor) error {
	stmts := strings.Split(migrationsSQL, ";")
	for _, s := range stmts {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, err := db.ExecContext(ctx, s); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// dsn adds the connection parameters every cache connection needs. WAL lets
// other processes read while one writes; the busy timeout serializes writers
// from concurrent invocations instead of failing them immediately. The path is
// escaped so that '#', '%' and '?' in directory names reach SQLite intact.
func dsn(path string) string {
	if path == ":memory:" {
		return path
	}
	u := url.URL{
		Scheme:   "file",
		Path:     filepath.ToSlash(path),
		RawQuery: "_journal_mode=WAL&_busy_timeout=5000",
	}
	return u.String()
}

// Open opens (creating if needed) the cache database at path and makes sure
// the schema exists.
func Open(ctx context.Context, path string) (*Cache, error) {
	conn, err := sql.Open("sqlite3", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	c, err := NewCache(ctx, conn)
	if err != nil {
		conn.Close()
		return nil, err
	}
	return c, nil
}
