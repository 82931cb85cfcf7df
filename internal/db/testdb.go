package db

import (
	"database/sql"
	"path/filepath"
	"testing"
)

// NewTestDB opens a throwaway database file under t.TempDir with the schema
// applied. A file is used rather than ":memory:" so tests run with the same
// WAL journal and single-connection pool as the server.
func NewTestDB(t testing.TB) *sql.DB {
	t.Helper()

	database, err := Open(filepath.Join(t.TempDir(), "traceback.sqlite3"))
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	if err := EnsureSchema(database); err != nil {
		t.Fatalf("creating test database schema: %v", err)
	}
	return database
}
