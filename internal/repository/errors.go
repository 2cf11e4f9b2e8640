// Package repository holds the MySQL persistence layer. Driver errors are
// translated into the sentinels below so that services never inspect
// driver types.
package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-sql-driver/mysql"
)

var (
	// ErrNotFound is returned when a lookup by key matches no row.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned when an insert violates a unique key.
	ErrDuplicate = errors.New("duplicate key")
	// ErrMissingReference is returned when an insert references a row
	// that does not exist.
	ErrMissingReference = errors.New("missing reference")
	// ErrDeadlock is returned when InnoDB aborted the transaction to break a
	// lock cycle. The whole transaction may be retried.
	ErrDeadlock = errors.New("deadlock")
)

const (
	mysqlDuplicateEntry  = 1062
	mysqlDeadlock        = 1213
	mysqlNoReferencedRow = 1452
)

// dbtx is satisfied by both *sql.DB and *sql.Tx.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func mysqlErrorNumber(err error) uint16 {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number
	}
	return 0
}

// translate maps driver errors onto repository sentinels.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sql.ErrNoRows):
		return ErrNotFound
	}
	switch mysqlErrorNumber(err) {
	case mysqlDuplicateEntry:
		return errors.Join(ErrDuplicate, err)
	case mysqlNoReferencedRow:
		return errors.Join(ErrMissingReference, err)
	case mysqlDeadlock:
		return errors.Join(ErrDeadlock, err)
	}
	return err
}

// withTx runs fn inside a transaction on db, committing on success.
func withTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) (err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
			return
		}
		err = tx.Commit()
	}()
	return fn(tx)
}
