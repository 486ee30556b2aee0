package migrations

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"
)

const (
	DriverSqlite   = "sqlite"
	DriverLibsql   = "libsql"
	DriverPostgres = "postgres"
)

func init() {
	sqlx.BindDriver(DriverSqlite, sqlx.QUESTION)
	sqlx.BindDriver(DriverLibsql, sqlx.QUESTION)
}

func wrapOpenDB(err error) error {
	return fmt.Errorf("open db: %w", err)
}

// OpenDB opens a database with one of the supported drivers and waits for it
// to accept connections.
func OpenDB(ctx context.Context, driver, dsn string) (*sqlx.DB, error) {
	switch driver {
	case DriverSqlite:
		return openSqlite(ctx, dsn)
	case DriverLibsql, DriverPostgres:
		db, err := sqlx.Open(driver, dsn)
		if err != nil {
			return nil, wrapOpenDB(err)
		}
		err = ping(ctx, db)
		if err != nil {
			db.Close()
			return nil, wrapOpenDB(err)
		}
		return db, nil
	}
	return nil, wrapOpenDB(fmt.Errorf("unsupported driver '%s'", driver))
}

func openSqlite(ctx context.Context, path string) (*sqlx.DB, error) {
	if path != ":memory:" {
		os.MkdirAll(filepath.Dir(path), 0777)
	}

	db, err := sqlx.Open(DriverSqlite, path)
	if err != nil {
		return nil, wrapOpenDB(err)
	}

	// see this stackoverflow post for information on why the following
	// lines exist: https://stackoverflow.com/questions/35804884/sqlite-concurrent-writing-performance
	db.SetMaxOpenConns(1)
	_, err = db.ExecContext(ctx, "PRAGMA journal_mode=WAL")
	if err != nil {
		return nil, wrapOpenDB(err)
	}
	// foreign keys are off by default in sqlite, this only works because
	// there is a single connection
	_, err = db.ExecContext(ctx, "PRAGMA foreign_keys=ON")
	if err != nil {
		return nil, wrapOpenDB(err)
	}

	return db, nil
}

// ping waits for the database to be ready, backing off between attempts.
func ping(ctx context.Context, db *sqlx.DB) error {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 100 * time.Millisecond
	policy.MaxElapsedTime = 30 * time.Second

	err := backoff.Retry(func() error {
		return db.PingContext(ctx)
	}, backoff.WithContext(policy, ctx))
	if err != nil {
		return fmt.Errorf("ping timeout: %w", err)
	}
	return nil
}

func wrapOpenAndApply(err error) error {
	return fmt.Errorf("open and apply schema: %w", err)
}

// Apply executes every statement of a schema, the schema is expected to only
// contain idempotent statements like CREATE TABLE IF NOT EXISTS.
func Apply(ctx context.Context, db *sqlx.DB, schema string) error {
	for _, stmt := range strings.Split(schema, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		_, err := db.ExecContext(ctx, stmt)
		if err != nil {
			return err
		}
	}
	return nil
}

func OpenAndApply(ctx context.Context, driver, dsn, schema string) (*sqlx.DB, error) {
	db, err := OpenDB(ctx, driver, dsn)
	if err != nil {
		return nil, wrapOpenAndApply(err)
	}
	err = Apply(ctx, db, schema)
	if err != nil {
		db.Close()
		return nil, wrapOpenAndApply(err)
	}
	return db, nil
}
