// Package testutil holds helpers shared by tests that need a database.
package testutil

import (
	"context"
	"testing"

	"resultsync-backend/pkg/migrations"

	"github.com/jmoiron/sqlx"
)

// OpenDB opens an in memory sqlite database with foreign keys enforced and
// the given schema applied. The database is closed when the test ends.
func OpenDB(t testing.TB, schema string) *sqlx.DB {
	t.Helper()

	db, err := migrations.OpenAndApply(context.Background(), migrations.DriverSqlite, ":memory:", schema)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		db.Close()
	})
	return db
}
