package db

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/japaniel/glossword/pkg/gloss"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestInitDBCreatesSchema verifies both mode tables exist with the expected
// columns, and that running the migration again is harmless.
func TestInitDBCreatesSchema(t *testing.T) {
	ctx := context.Background()
	dbConn, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	defer dbConn.Close()
	dbConn.SetMaxOpenConns(1)

	require.NoError(t, InitDB(ctx, dbConn))
	require.NoError(t, InitDB(ctx, dbConn), "InitDB must be idempotent")

	for _, table := range []string{"dictionary", "etymology"} {
		rows, err := dbConn.Query("PRAGMA table_info(" + table + ")")
		require.NoError(t, err)
		cols := map[string]bool{}
		for rows.Next() {
			var cid int
			var colName, ctype string
			var notnull, pk int
			var dfltVal interface{}
			require.NoError(t, rows.Scan(&cid, &colName, &ctype, &notnull, &dfltVal, &pk))
			cols[colName] = true
		}
		rows.Close()
		require.True(t, cols["word"] && cols["content"], "table %s columns: %v", table, cols)
	}
}

func TestOpenFileBackedKeepsEntries(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "entries.sqlite")

	c, err := Open(ctx, path)
	require.NoError(t, err)
	require.NoError(t, c.Upsert(ctx, gloss.Definition, "bank", "a slope", false))
	require.NoError(t, c.Close())

	c, err = Open(ctx, path)
	require.NoError(t, err)
	defer c.Close()
	text, hit, err := c.Lookup(ctx, gloss.Definition, "bank")
	require.NoError(t, err)
	require.True(t, hit)
	require.Equal(t, "a slope", text)
}

func TestDSN(t *testing.T) {
	assert.Equal(t, ":memory:", dsn(":memory:"))
	assert.Equal(t,
		"file:///var/cache/a%23b/c%25d/e%3Ff/entries.sqlite?_journal_mode=WAL&_busy_timeout=5000",
		dsn("/var/cache/a#b/c%d/e?f/entries.sqlite"))
}

// TestOpenPathWithSpecialChars checks that the database lands exactly at the
// requested path, whatever the directory is called.
func TestOpenPathWithSpecialChars(t *testing.T) {
	ctx := context.Background()
	for _, name := range []string{"a#b", "a%41b", "a?b", "a b"} {
		t.Run(name, func(t *testing.T) {
			root := t.TempDir()
			dir := filepath.Join(root, name)
			require.NoError(t, os.MkdirAll(dir, 0o755))
			path := filepath.Join(dir, "entries.sqlite")

			c, err := Open(ctx, path)
			require.NoError(t, err)
			require.NoError(t, c.Upsert(ctx, gloss.Definition, "bank", "a slope", false))
			require.NoError(t, c.Close())

			_, err = os.Stat(path)
			require.NoError(t, err, "database must be created inside %s", dir)

			entries, err := os.ReadDir(root)
			require.NoError(t, err)
			require.Len(t, entries, 1, "nothing may be created beside the cache directory")
			assert.Equal(t, name, entries[0].Name())

			c, err = Open(ctx, path)
			require.NoError(t, err)
			defer c.Close()
			text, hit, err := c.Lookup(ctx, gloss.Definition, "bank")
			require.NoError(t, err)
			assert.True(t, hit)
			assert.Equal(t, "a slope", text)
		})
	}
}
