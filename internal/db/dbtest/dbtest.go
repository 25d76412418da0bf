// Package dbtest opens throwaway migrated databases for tests.
package dbtest

import (
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
	"github.com/templui/calldesk/internal/db"
)

// New returns a migrated SQLite database in t's temp dir with foreign keys on.
// It is closed when the test ends.
func New(t testing.TB) *sqlx.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "calldesk.db") + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	database, err := db.Open("sqlite", dsn)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = database.Close()
	})

	return database
}
