// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package storage

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/canonical/project-hub/internal/types"
)

var userColumns = []string{
	"id", "tenant_id", "email", "password_hash", "role", "first_name", "last_name", "created_at", "updated_at",
}

func scanUser(row rowScanner) (*types.User, error) {
	var u types.User
	err := row.Scan(&u.ID, &u.TenantID, &u.Email, &u.PasswordHash, &u.Role, &u.FirstName, &u.LastName, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func tenantEq(tenantID *string) sq.Eq {
	if tenantID == nil {
		return sq.Eq{"tenant_id": nil}
	}
	return sq.Eq{"tenant_id": *tenantID}
}

func (s *Storage) CreateUser(ctx context.Context, u *types.User) (*types.User, error) {
	ctx, span := s.tracer.Start(ctx, "storage.CreateUser")
	defer span.End()

	id, err := newID()
	if err != nil {
		return nil, err
	}

	created, err := scanUser(
		s.db.Statement(ctx).
			Insert("users").
			Columns("id", "tenant_id", "email", "password_hash", "role", "first_name", "last_name").
			Values(id, u.TenantID, u.Email, u.PasswordHash, u.Role, u.FirstName, u.LastName).
			Suffix(returning(userColumns)).
			QueryRowContext(ctx),
	)
	if err != nil {
		return nil, wrapWriteError(err, "insert user")
	}

	return created, nil
}

func (s *Storage) GetUser(ctx context.Context, id string) (*types.User, error) {
	ctx, span := s.tracer.Start(ctx, "storage.GetUser")
	defer span.End()

	u, err := scanUser(
		s.db.Statement(ctx).
			Select(userColumns...).
			From("users").
			Where(sq.Eq{"id": id}).
			QueryRowContext(ctx),
	)
	if err != nil {
		return nil, wrapReadError(err, "get user")
	}

	return u, nil
}

// GetUserByEmail looks up an email within a tenant, a nil tenant matches tenant-less accounts.
func (s *Storage) GetUserByEmail(ctx context.Context, tenantID *string, email string) (*types.User, error) {
	ctx, span := s.tracer.Start(ctx, "storage.GetUserByEmail")
	defer span.End()

	u, err := scanUser(
		s.db.Statement(ctx).
			Select(userColumns...).
			From("users").
			Where(tenantEq(tenantID)).
			Where(sq.Eq{"email": email}).
			QueryRowContext(ctx),
	)
	if err != nil {
		return nil, wrapReadError(err, "get user by email")
	}

	return u, nil
}

// ListUsers returns no users for a tenant id that is not a uuid.
func (s *Storage) ListUsers(ctx context.Context, tenantID string) ([]*types.User, error) {
	ctx, span := s.tracer.Start(ctx, "storage.ListUsers")
	defer span.End()

	rows, err := s.db.Statement(ctx).
		Select(userColumns...).
		From("users").
		Where(sq.Eq{"tenant_id": tenantID}).
		OrderBy("created_at ASC").
		QueryContext(ctx)
	if isInvalidText(err) {
		return []*types.User{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	users := make([]*types.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}

	if err := rows.Err(); isInvalidText(err) {
		return []*types.User{}, nil
	} else if err != nil {
		return nil, fmt.Errorf("error iterating user rows: %w", err)
	}

	return users, nil
}

func (s *Storage) UpdateUser(ctx context.Context, id string, changes map[string]interface{}) (*types.User, error) {
	ctx, span := s.tracer.Start(ctx, "storage.UpdateUser")
	defer span.End()

	u, err := scanUser(
		s.db.Statement(ctx).
			Update("users").
			SetMap(changes).
			Set("updated_at", sq.Expr("NOW()")).
			Where(sq.Eq{"id": id}).
			Suffix(returning(userColumns)).
			QueryRowContext(ctx),
	)
	if err != nil {
		return nil, wrapWriteError(err, "update user")
	}

	return u, nil
}

func (s *Storage) DeleteUser(ctx context.Context, id string) error {
	ctx, span := s.tracer.Start(ctx, "storage.DeleteUser")
	defer span.End()

	return s.deleteByID(ctx, "users", id)
}

func (s *Storage) CountUsers(ctx context.Context, tenantID string) (int64, error) {
	ctx, span := s.tracer.Start(ctx, "storage.CountUsers")
	defer span.End()

	return s.countRows(ctx, "users", sq.Eq{"tenant_id": tenantID})
}

func (s *Storage) deleteByID(ctx context.Context, table, id string) error {
	res, err := s.db.Statement(ctx).
		Delete(table).
		Where(sq.Eq{"id": id}).
		ExecContext(ctx)
	if err != nil {
		return wrapWriteError(err, "delete from "+table)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}

	if n == 0 {
		return ErrNotFound
	}

	return nil
}

func (s *Storage) countRows(ctx context.Context, table string, pred sq.Sqlizer) (int64, error) {
	var n int64
	err := s.db.Statement(ctx).
		Select("COUNT(*)").
		From(table).
		Where(pred).
		QueryRowContext(ctx).
		Scan(&n)
	if isInvalidText(err) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", table, err)
	}

	return n, nil
}
