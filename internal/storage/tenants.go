// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package storage

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/canonical/project-hub/internal/types"
)

var tenantColumns = []string{
	"id", "name", "subdomain", "plan", "status", "max_users", "max_projects", "created_at", "updated_at",
}

func scanTenant(row rowScanner) (*types.Tenant, error) {
	var t types.Tenant
	err := row.Scan(&t.ID, &t.Name, &t.Subdomain, &t.Plan, &t.Status, &t.MaxUsers, &t.MaxProjects, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *Storage) CreateTenant(ctx context.Context, t *types.Tenant) (*types.Tenant, error) {
	ctx, span := s.tracer.Start(ctx, "storage.CreateTenant")
	defer span.End()

	id, err := newID()
	if err != nil {
		return nil, err
	}

	created, err := scanTenant(
		s.db.Statement(ctx).
			Insert("tenants").
			Columns("id", "name", "subdomain", "plan", "status", "max_users", "max_projects").
			Values(id, t.Name, t.Subdomain, t.Plan, t.Status, t.MaxUsers, t.MaxProjects).
			Suffix(returning(tenantColumns)).
			QueryRowContext(ctx),
	)
	if err != nil {
		return nil, wrapWriteError(err, "insert tenant")
	}

	return created, nil
}

func (s *Storage) GetTenant(ctx context.Context, id string) (*types.Tenant, error) {
	ctx, span := s.tracer.Start(ctx, "storage.GetTenant")
	defer span.End()

	t, err := scanTenant(
		s.db.Statement(ctx).
			Select(tenantColumns...).
			From("tenants").
			Where(sq.Eq{"id": id}).
			QueryRowContext(ctx),
	)
	if err != nil {
		return nil, wrapReadError(err, "get tenant")
	}

	return t, nil
}

func (s *Storage) GetTenantBySubdomain(ctx context.Context, subdomain string) (*types.Tenant, error) {
	ctx, span := s.tracer.Start(ctx, "storage.GetTenantBySubdomain")
	defer span.End()

	t, err := scanTenant(
		s.db.Statement(ctx).
			Select(tenantColumns...).
			From("tenants").
			Where(sq.Eq{"subdomain": subdomain}).
			QueryRowContext(ctx),
	)
	if err != nil {
		return nil, wrapReadError(err, "get tenant by subdomain")
	}

	return t, nil
}

func (s *Storage) ListTenants(ctx context.Context) ([]*types.Tenant, error) {
	ctx, span := s.tracer.Start(ctx, "storage.ListTenants")
	defer span.End()

	rows, err := s.db.Statement(ctx).
		Select(tenantColumns...).
		From("tenants").
		OrderBy("created_at ASC").
		QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tenants: %w", err)
	}
	defer rows.Close()

	tenants := make([]*types.Tenant, 0)
	for rows.Next() {
		t, err := scanTenant(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan tenant: %w", err)
		}
		tenants = append(tenants, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tenant rows: %w", err)
	}

	return tenants, nil
}

// UpdateTenant applies the column changes and returns the stored row.
func (s *Storage) UpdateTenant(ctx context.Context, id string, changes map[string]interface{}) (*types.Tenant, error) {
	ctx, span := s.tracer.Start(ctx, "storage.UpdateTenant")
	defer span.End()

	t, err := scanTenant(
		s.db.Statement(ctx).
			Update("tenants").
			SetMap(changes).
			Set("updated_at", sq.Expr("NOW()")).
			Where(sq.Eq{"id": id}).
			Suffix(returning(tenantColumns)).
			QueryRowContext(ctx),
	)
	if err != nil {
		return nil, wrapWriteError(err, "update tenant")
	}

	return t, nil
}

// LockTenantLimits reads the quota ceilings and holds the tenant row lock until
// the surrounding transaction ends, serializing concurrent creations per tenant.
func (s *Storage) LockTenantLimits(ctx context.Context, id string) (*types.TenantLimits, error) {
	ctx, span := s.tracer.Start(ctx, "storage.LockTenantLimits")
	defer span.End()

	var limits types.TenantLimits
	err := s.db.Statement(ctx).
		Select("max_users", "max_projects").
		From("tenants").
		Where(sq.Eq{"id": id}).
		Suffix("FOR UPDATE").
		QueryRowContext(ctx).
		Scan(&limits.MaxUsers, &limits.MaxProjects)
	if err != nil {
		return nil, wrapReadError(err, "lock tenant")
	}

	return &limits, nil
}

// TenantStats counts users, projects and tasks of each tenant.
func (s *Storage) TenantStats(ctx context.Context, tenantIDs []string) (map[string]*types.TenantStats, error) {
	ctx, span := s.tracer.Start(ctx, "storage.TenantStats")
	defer span.End()

	stats := make(map[string]*types.TenantStats, len(tenantIDs))
	for _, id := range tenantIDs {
		stats[id] = new(types.TenantStats)
	}

	if len(tenantIDs) == 0 {
		return stats, nil
	}

	targets := []struct {
		table string
		set   func(*types.TenantStats, int64)
	}{
		{"users", func(st *types.TenantStats, n int64) { st.TotalUsers = n }},
		{"projects", func(st *types.TenantStats, n int64) { st.TotalProjects = n }},
		{"tasks", func(st *types.TenantStats, n int64) { st.TotalTasks = n }},
	}

	for _, target := range targets {
		if err := s.countByTenant(ctx, target.table, tenantIDs, func(id string, n int64) {
			if st, ok := stats[id]; ok {
				target.set(st, n)
			}
		}); err != nil {
			return nil, err
		}
	}

	return stats, nil
}

func (s *Storage) countByTenant(ctx context.Context, table string, tenantIDs []string, fn func(string, int64)) error {
	rows, err := s.db.Statement(ctx).
		Select("tenant_id", "COUNT(*)").
		From(table).
		Where(sq.Eq{"tenant_id": tenantIDs}).
		GroupBy("tenant_id").
		QueryContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to count %s: %w", table, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id string
			n  int64
		)
		if err := rows.Scan(&id, &n); err != nil {
			return fmt.Errorf("failed to scan %s count: %w", table, err)
		}
		fn(id, n)
	}

	return rows.Err()
}
