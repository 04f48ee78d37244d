package testutil

import (
	"context"
	"database/sql"
	"testing"

	"github.com/biosecret/go-todo/config"
	"github.com/biosecret/go-todo/database"
)

// OpenInMemoryDB opens a shared-cache in-memory SQLite database with the
// schema applied. The name keeps databases of different tests apart.
func OpenInMemoryDB(t *testing.T, name string) *sql.DB {
	t.Helper()
	d, err := database.Open(context.Background(), config.DatabaseConfig{
		Driver: "sqlite3",
		URL:    "file:" + name + "?mode=memory&cache=shared",
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })
	return d
}

// SeedUser inserts a bare user row so lists can reference it.
func SeedUser(t *testing.T, d *sql.DB, id, username string) {
	t.Helper()
	_, err := d.Exec(`INSERT INTO users (id, username, email, password_hash, created_at) VALUES ($1, $2, $3, $4, CURRENT_TIMESTAMP)`,
		id, username, username+"@example.com", "x")
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
}
