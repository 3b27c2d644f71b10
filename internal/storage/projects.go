// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package storage

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/canonical/project-hub/internal/types"
)

var projectColumns = []string{
	"id", "tenant_id", "name", "description", "status", "created_by", "created_at", "updated_at",
}

func scanProject(row rowScanner) (*types.Project, error) {
	var p types.Project
	err := row.Scan(&p.ID, &p.TenantID, &p.Name, &p.Description, &p.Status, &p.CreatedBy, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Storage) CreateProject(ctx context.Context, p *types.Project) (*types.Project, error) {
	ctx, span := s.tracer.Start(ctx, "storage.CreateProject")
	defer span.End()

	id, err := newID()
	if err != nil {
		return nil, err
	}

	created, err := scanProject(
		s.db.Statement(ctx).
			Insert("projects").
			Columns("id", "tenant_id", "name", "description", "status", "created_by").
			Values(id, p.TenantID, p.Name, p.Description, p.Status, p.CreatedBy).
			Suffix(returning(projectColumns)).
			QueryRowContext(ctx),
	)
	if err != nil {
		return nil, wrapWriteError(err, "insert project")
	}

	return created, nil
}

func (s *Storage) GetProject(ctx context.Context, id string) (*types.Project, error) {
	ctx, span := s.tracer.Start(ctx, "storage.GetProject")
	defer span.End()

	p, err := scanProject(
		s.db.Statement(ctx).
			Select(projectColumns...).
			From("projects").
			Where(sq.Eq{"id": id}).
			QueryRowContext(ctx),
	)
	if err != nil {
		return nil, wrapReadError(err, "get project")
	}

	return p, nil
}

// ListProjects lists the projects of a tenant, or of every tenant when tenantID is nil.
func (s *Storage) ListProjects(ctx context.Context, tenantID *string) ([]*types.Project, error) {
	ctx, span := s.tracer.Start(ctx, "storage.ListProjects")
	defer span.End()

	query := s.db.Statement(ctx).
		Select(projectColumns...).
		From("projects").
		OrderBy("created_at ASC")

	if tenantID != nil {
		query = query.Where(sq.Eq{"tenant_id": *tenantID})
	}

	rows, err := query.QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	projects := make([]*types.Project, 0)
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating project rows: %w", err)
	}

	return projects, nil
}

func (s *Storage) UpdateProject(ctx context.Context, id string, changes map[string]interface{}) (*types.Project, error) {
	ctx, span := s.tracer.Start(ctx, "storage.UpdateProject")
	defer span.End()

	p, err := scanProject(
		s.db.Statement(ctx).
			Update("projects").
			SetMap(changes).
			Set("updated_at", sq.Expr("NOW()")).
			Where(sq.Eq{"id": id}).
			Suffix(returning(projectColumns)).
			QueryRowContext(ctx),
	)
	if err != nil {
		return nil, wrapWriteError(err, "update project")
	}

	return p, nil
}

// DeleteProject removes the project, its tasks go with it through the cascading foreign key.
func (s *Storage) DeleteProject(ctx context.Context, id string) error {
	ctx, span := s.tracer.Start(ctx, "storage.DeleteProject")
	defer span.End()

	return s.deleteByID(ctx, "projects", id)
}

func (s *Storage) CountProjects(ctx context.Context, tenantID string) (int64, error) {
	ctx, span := s.tracer.Start(ctx, "storage.CountProjects")
	defer span.End()

	return s.countRows(ctx, "projects", sq.Eq{"tenant_id": tenantID})
}

// TaskCounts returns total and completed task counts per project in a single grouped query.
// Projects without tasks are present with zero counts.
func (s *Storage) TaskCounts(ctx context.Context, projectIDs []string) (map[string]types.TaskCounts, error) {
	ctx, span := s.tracer.Start(ctx, "storage.TaskCounts")
	defer span.End()

	counts := make(map[string]types.TaskCounts, len(projectIDs))
	for _, id := range projectIDs {
		counts[id] = types.TaskCounts{}
	}

	if len(projectIDs) == 0 {
		return counts, nil
	}

	rows, err := s.db.Statement(ctx).
		Select("project_id", "COUNT(*)").
		Column(sq.Expr("COUNT(*) FILTER (WHERE status = ?)", types.TaskStatusCompleted)).
		From("tasks").
		Where(sq.Eq{"project_id": projectIDs}).
		GroupBy("project_id").
		QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count tasks: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id string
			c  types.TaskCounts
		)
		if err := rows.Scan(&id, &c.Total, &c.Completed); err != nil {
			return nil, fmt.Errorf("failed to scan task counts: %w", err)
		}
		counts[id] = c
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating task count rows: %w", err)
	}

	return counts, nil
}
