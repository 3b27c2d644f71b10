// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package db

import (
	"context"
	"database/sql"

	sq "github.com/Masterminds/squirrel"
)

// errRunner fails every statement with the same error.
type errRunner struct {
	err error
}

type errRow struct {
	err error
}

func (r *errRow) Scan(...interface{}) error {
	return r.err
}

func (r *errRunner) Exec(string, ...interface{}) (sql.Result, error) {
	return nil, r.err
}

func (r *errRunner) Query(string, ...interface{}) (*sql.Rows, error) {
	return nil, r.err
}

func (r *errRunner) QueryRow(string, ...interface{}) sq.RowScanner {
	return &errRow{err: r.err}
}

func (r *errRunner) ExecContext(context.Context, string, ...interface{}) (sql.Result, error) {
	return nil, r.err
}

func (r *errRunner) QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error) {
	return nil, r.err
}

func (r *errRunner) QueryRowContext(context.Context, string, ...interface{}) sq.RowScanner {
	return &errRow{err: r.err}
}
