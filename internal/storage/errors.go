// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package storage

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Sentinel errors for storage operations.
var (
	ErrNotFound            = errors.New("resource not found")
	ErrDuplicateKey        = errors.New("duplicate key violation")
	ErrForeignKeyViolation = errors.New("foreign key violation")
	ErrCheckViolation      = errors.New("check constraint violation")
)

// PostgreSQL error codes
const (
	pgErrCodeUniqueViolation     = "23505"
	pgErrCodeForeignKeyViolation = "23503"
	pgErrCodeCheckViolation      = "23514"
	pgErrCodeInvalidText         = "22P02"
)

func pgErrorCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// IsDuplicateKeyError checks if the error is a PostgreSQL unique constraint violation.
func IsDuplicateKeyError(err error) bool {
	return pgErrorCode(err) == pgErrCodeUniqueViolation
}

// IsForeignKeyViolation checks if the error is a PostgreSQL foreign key violation.
func IsForeignKeyViolation(err error) bool {
	return pgErrorCode(err) == pgErrCodeForeignKeyViolation
}

func IsCheckViolation(err error) bool {
	return pgErrorCode(err) == pgErrCodeCheckViolation
}

// isInvalidText reports a value postgres could not parse, such as a malformed uuid.
func isInvalidText(err error) bool {
	return pgErrorCode(err) == pgErrCodeInvalidText
}

// isNoRows also covers malformed ids, no row can match a value that is not a uuid.
func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows) || errors.Is(err, pgx.ErrNoRows) || isInvalidText(err)
}

// wrapWriteError maps constraint violations on writes to storage sentinels.
func wrapWriteError(err error, op string) error {
	switch {
	case IsDuplicateKeyError(err):
		return fmt.Errorf("%s: %w", op, ErrDuplicateKey)
	case IsForeignKeyViolation(err):
		return fmt.Errorf("%s: %w", op, ErrForeignKeyViolation)
	case IsCheckViolation(err):
		return fmt.Errorf("%s: %w", op, ErrCheckViolation)
	case isNoRows(err):
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}

// wrapReadError maps a missing row to ErrNotFound.
func wrapReadError(err error, op string) error {
	if isNoRows(err) {
		return ErrNotFound
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}
