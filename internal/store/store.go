// Package store holds the SQL persistence functions for the portal.
//
// Every function accepts a DBTX so the same code runs against the pool for
// single statements and against a *sql.Tx when an operation spans stores.
// Getters return (nil, nil) when the row does not exist.
package store

import (
	"context"
	"database/sql"
	"strings"
)

// DBTX is the subset of *sql.DB and *sql.Tx used by the store functions.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// nullInt64 converts an optional id into a driver value.
func nullInt64(v *int64) any {
	if v == nil {
		return nil
	}
	return *v
}

// placeholders returns "?, ?, ?" for n arguments.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
