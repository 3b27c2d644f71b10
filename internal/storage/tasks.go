// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package storage

import (
	"context"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"

	"github.com/canonical/project-hub/internal/types"
)

var taskColumns = []string{
	"id", "tenant_id", "project_id", "title", "description", "status", "priority", "assigned_to", "created_by", "created_at", "updated_at",
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func scanTask(row rowScanner) (*types.Task, error) {
	var t types.Task
	err := row.Scan(&t.ID, &t.TenantID, &t.ProjectID, &t.Title, &t.Description, &t.Status, &t.Priority, &t.AssignedTo, &t.CreatedBy, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// taskPredicate is shared by the page and the total so both see the same rows.
func taskPredicate(tenantID, projectID string, f types.TaskFilter) sq.And {
	pred := sq.And{
		sq.Eq{"project_id": projectID},
		sq.Eq{"tenant_id": tenantID},
	}

	if f.Status != nil {
		pred = append(pred, sq.Eq{"status": *f.Status})
	}

	if f.Priority != nil {
		pred = append(pred, sq.Eq{"priority": *f.Priority})
	}

	if f.AssignedTo != nil {
		if *f.AssignedTo == "" {
			pred = append(pred, sq.Eq{"assigned_to": nil})
		} else {
			pred = append(pred, sq.Eq{"assigned_to": *f.AssignedTo})
		}
	}

	if f.Search != "" {
		pattern := "%" + likeEscaper.Replace(f.Search) + "%"
		pred = append(pred, sq.Or{
			sq.ILike{"title": pattern},
			sq.ILike{"description": pattern},
		})
	}

	return pred
}

func (s *Storage) CreateTask(ctx context.Context, t *types.Task) (*types.Task, error) {
	ctx, span := s.tracer.Start(ctx, "storage.CreateTask")
	defer span.End()

	id, err := newID()
	if err != nil {
		return nil, err
	}

	created, err := scanTask(
		s.db.Statement(ctx).
			Insert("tasks").
			Columns("id", "tenant_id", "project_id", "title", "description", "status", "priority", "assigned_to", "created_by").
			Values(id, t.TenantID, t.ProjectID, t.Title, t.Description, t.Status, t.Priority, t.AssignedTo, t.CreatedBy).
			Suffix(returning(taskColumns)).
			QueryRowContext(ctx),
	)
	if err != nil {
		return nil, wrapWriteError(err, "insert task")
	}

	return created, nil
}

func (s *Storage) GetTask(ctx context.Context, id string) (*types.Task, error) {
	ctx, span := s.tracer.Start(ctx, "storage.GetTask")
	defer span.End()

	t, err := scanTask(
		s.db.Statement(ctx).
			Select(taskColumns...).
			From("tasks").
			Where(sq.Eq{"id": id}).
			QueryRowContext(ctx),
	)
	if err != nil {
		return nil, wrapReadError(err, "get task")
	}

	return t, nil
}

// ListTasks matches nothing when a filter value is not a uuid.
func (s *Storage) ListTasks(ctx context.Context, tenantID, projectID string, f types.TaskFilter, limit, offset uint64) ([]*types.Task, error) {
	ctx, span := s.tracer.Start(ctx, "storage.ListTasks")
	defer span.End()

	rows, err := s.db.Statement(ctx).
		Select(taskColumns...).
		From("tasks").
		Where(taskPredicate(tenantID, projectID, f)).
		OrderBy("created_at ASC", "id ASC").
		Limit(limit).
		Offset(offset).
		QueryContext(ctx)
	if isInvalidText(err) {
		return []*types.Task{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	tasks := make([]*types.Task, 0)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, t)
	}

	if err := rows.Err(); isInvalidText(err) {
		return []*types.Task{}, nil
	} else if err != nil {
		return nil, fmt.Errorf("error iterating task rows: %w", err)
	}

	return tasks, nil
}

func (s *Storage) CountTasks(ctx context.Context, tenantID, projectID string, f types.TaskFilter) (int64, error) {
	ctx, span := s.tracer.Start(ctx, "storage.CountTasks")
	defer span.End()

	return s.countRows(ctx, "tasks", taskPredicate(tenantID, projectID, f))
}

func (s *Storage) UpdateTask(ctx context.Context, id string, changes map[string]interface{}) (*types.Task, error) {
	ctx, span := s.tracer.Start(ctx, "storage.UpdateTask")
	defer span.End()

	t, err := scanTask(
		s.db.Statement(ctx).
			Update("tasks").
			SetMap(changes).
			Set("updated_at", sq.Expr("NOW()")).
			Where(sq.Eq{"id": id}).
			Suffix(returning(taskColumns)).
			QueryRowContext(ctx),
	)
	if err != nil {
		return nil, wrapWriteError(err, "update task")
	}

	return t, nil
}

func (s *Storage) DeleteTask(ctx context.Context, id string) error {
	ctx, span := s.tracer.Start(ctx, "storage.DeleteTask")
	defer span.End()

	return s.deleteByID(ctx, "tasks", id)
}
