package db

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
)

// MakeTx begins a transaction and returns a Queries bound to it. discard is
// safe to defer after commit.
type MakeTx = func(ctx context.Context) (tx *Queries, discard, commit func() error, err error)

func NewMakeTx(database *sqlx.DB) MakeTx {
	return newMakeTx(database, &sql.TxOptions{})
}

func newMakeTx(database *sqlx.DB, opts *sql.TxOptions) MakeTx {
	return func(ctx context.Context) (*Queries, func() error, func() error, error) {
		sqltx, err := database.BeginTxx(ctx, opts)
		if err != nil {
			return nil, nil, nil, err
		}
		discard := func() error {
			err := sqltx.Rollback()
			if errors.Is(err, sql.ErrTxDone) {
				return nil
			}
			return err
		}
		return New(sqltx), discard, sqltx.Commit, nil
	}
}

func snapshotOptions(driverName string) *sql.TxOptions {
	if driverName == "postgres" {
		return &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true}
	}
	// a sqlite transaction reads from a single snapshot from its first read on
	return &sql.TxOptions{}
}

// NewMakeSnapshotTx is like NewMakeTx, but every statement run in the
// transaction sees the same state of the database.
func NewMakeSnapshotTx(database *sqlx.DB) MakeTx {
	return newMakeTx(database, snapshotOptions(database.DriverName()))
}
