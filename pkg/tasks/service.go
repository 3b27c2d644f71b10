// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package tasks

import (
	"context"
	"errors"
	"strings"

	"github.com/canonical/project-hub/internal/apperror"
	"github.com/canonical/project-hub/internal/audit"
	"github.com/canonical/project-hub/internal/authorization"
	"github.com/canonical/project-hub/internal/db"
	"github.com/canonical/project-hub/internal/identity"
	"github.com/canonical/project-hub/internal/logging"
	"github.com/canonical/project-hub/internal/monitoring"
	"github.com/canonical/project-hub/internal/storage"
	"github.com/canonical/project-hub/internal/tracing"
	"github.com/canonical/project-hub/internal/types"
)

const (
	msgTitleRequired   = "Title is required"
	msgInvalidStatus   = "Invalid status"
	msgInvalidPriority = "Invalid priority"
	msgForeignAssignee = "Assigned user must belong to the same tenant"
	msgInvalidAssignee = "Invalid assignedTo"
)

var _ ServiceInterface = (*Service)(nil)

type Service struct {
	storage    StorageInterface
	resolver   ResolverInterface
	db         DBClientInterface
	transactor TransactorInterface
	authz      AuthorizerInterface

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func taskResource(t *types.Task, tenantID string) authorization.Resource {
	res := authorization.Resource{Kind: types.KindTask, ID: t.ID, TenantID: tenantID}
	if t.CreatedBy != nil {
		res.OwnerID = *t.CreatedBy
	}
	return res
}

func (s *Service) loadProject(ctx context.Context, id string) (*types.Project, error) {
	p, err := s.storage.GetProject(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, apperror.NotFound("Project not found")
	}
	return p, err
}

// loadTask returns the task with the tenant its project belongs to.
func (s *Service) loadTask(ctx context.Context, id string) (*types.Task, string, error) {
	t, err := s.storage.GetTask(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, "", apperror.NotFound("Task not found")
	}
	if err != nil {
		return nil, "", err
	}

	tenantID, err := s.resolver.TaskTenant(ctx, t)
	if err != nil {
		return nil, "", err
	}

	return t, tenantID, nil
}

// assignee returns the user id to store, nil for no assignee. The user must
// belong to tenantID.
func (s *Service) assignee(ctx context.Context, tenantID string, userID *string) (*string, error) {
	if userID == nil || *userID == "" {
		return nil, nil
	}

	u, err := s.storage.GetUser(ctx, *userID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, apperror.Validation(msgForeignAssignee)
	}
	if err != nil {
		return nil, err
	}

	if u.Tenant() != tenantID {
		return nil, apperror.Validation(msgForeignAssignee)
	}

	return &u.ID, nil
}

func (s *Service) CreateTask(ctx context.Context, projectID string, req *CreateTaskRequest) (*types.Task, error) {
	ctx, span := s.tracer.Start(ctx, "tasks.Service.CreateTask")
	defer span.End()

	actor, err := identity.Require(ctx)
	if err != nil {
		return nil, err
	}

	status := req.Status
	if status == "" {
		status = types.TaskStatusTodo
	}

	priority := req.Priority
	if priority == "" {
		priority = types.TaskPriorityMedium
	}

	description := req.Description
	if description != nil && *description == "" {
		description = nil
	}

	var created *types.Task

	err = s.transactor.Execute(ctx, func(ctx context.Context) ([]*types.AuditEntry, error) {
		p, err := s.loadProject(ctx, projectID)
		if err != nil {
			return nil, err
		}

		res := authorization.Resource{Kind: types.KindTask, TenantID: p.TenantID}
		if err := s.authz.Authorize(ctx, actor, authorization.ActionCreate, res); err != nil {
			return nil, err
		}

		switch {
		case strings.TrimSpace(req.Title) == "":
			return nil, apperror.Validation(msgTitleRequired)
		case !status.Valid():
			return nil, apperror.Validation(msgInvalidStatus)
		case !priority.Valid():
			return nil, apperror.Validation(msgInvalidPriority)
		}

		assignedTo, err := s.assignee(ctx, p.TenantID, req.AssignedTo)
		if err != nil {
			return nil, err
		}

		created, err = s.storage.CreateTask(ctx, &types.Task{
			TenantID:    p.TenantID,
			ProjectID:   p.ID,
			Title:       req.Title,
			Description: description,
			Status:      status,
			Priority:    priority,
			AssignedTo:  assignedTo,
			CreatedBy:   &actor.UserID,
		})
		if err != nil {
			return nil, err
		}

		return []*types.AuditEntry{
			audit.NewEntry(actor, &p.TenantID, types.KindTask, created.ID, types.AuditCreate, types.Metadata{
				"title":    created.Title,
				"status":   created.Status,
				"priority": created.Priority,
			}),
		}, nil
	})
	if err != nil {
		return nil, err
	}

	return created, nil
}

// ListTasks pages through the tasks of a project. The page and the total are
// read from the same snapshot.
func (s *Service) ListTasks(ctx context.Context, projectID string, params *ListTasksParams) (*types.TaskPage, error) {
	ctx, span := s.tracer.Start(ctx, "tasks.Service.ListTasks")
	defer span.End()

	actor, err := identity.Require(ctx)
	if err != nil {
		return nil, err
	}

	pageSize := db.PageSize(deref(params.PageSize))
	page := &types.TaskPage{
		Page:     db.Page(deref(params.Page)),
		PageSize: pageSize,
	}

	err = s.db.WithSnapshot(ctx, func(ctx context.Context) error {
		p, err := s.loadProject(ctx, projectID)
		if err != nil {
			return err
		}

		res := authorization.Resource{Kind: types.KindTask, TenantID: p.TenantID}
		if err := s.authz.Authorize(ctx, actor, authorization.ActionList, res); err != nil {
			return err
		}

		f, err := params.filter()
		if err != nil {
			return err
		}

		page.Data, err = s.storage.ListTasks(ctx, p.TenantID, p.ID, f, pageSize, db.Offset(deref(params.Page), pageSize))
		if err != nil {
			return err
		}

		page.Total, err = s.storage.CountTasks(ctx, p.TenantID, p.ID, f)
		return err
	})
	if err != nil {
		return nil, apperror.Classify(err)
	}

	return page, nil
}

// UpdateTaskStatus is open to every member of the task's tenant.
func (s *Service) UpdateTaskStatus(ctx context.Context, taskID string, status types.TaskStatus) (*types.Task, error) {
	ctx, span := s.tracer.Start(ctx, "tasks.Service.UpdateTaskStatus")
	defer span.End()

	actor, err := identity.Require(ctx)
	if err != nil {
		return nil, err
	}

	if !status.Valid() {
		return nil, apperror.Validation(msgInvalidStatus)
	}

	var updated *types.Task

	err = s.transactor.Execute(ctx, func(ctx context.Context) ([]*types.AuditEntry, error) {
		before, tenantID, err := s.loadTask(ctx, taskID)
		if err != nil {
			return nil, err
		}

		if err := s.authz.Authorize(ctx, actor, authorization.ActionUpdateStatus, taskResource(before, tenantID)); err != nil {
			return nil, err
		}

		updated, err = s.storage.UpdateTask(ctx, before.ID, map[string]interface{}{"status": status})
		if err != nil {
			return nil, err
		}

		return []*types.AuditEntry{
			audit.NewEntry(actor, &tenantID, types.KindTask, before.ID, types.AuditUpdate, types.Metadata{"before": before, "after": updated}),
		}, nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

func (s *Service) UpdateTask(ctx context.Context, taskID string, req *UpdateTaskRequest) (*types.Task, error) {
	ctx, span := s.tracer.Start(ctx, "tasks.Service.UpdateTask")
	defer span.End()

	actor, err := identity.Require(ctx)
	if err != nil {
		return nil, err
	}

	var updated *types.Task

	err = s.transactor.Execute(ctx, func(ctx context.Context) ([]*types.AuditEntry, error) {
		before, tenantID, err := s.loadTask(ctx, taskID)
		if err != nil {
			return nil, err
		}

		if err := s.authz.Authorize(ctx, actor, authorization.ActionUpdate, taskResource(before, tenantID)); err != nil {
			return nil, err
		}

		if err := req.validate(); err != nil {
			return nil, err
		}

		changes := make(map[string]interface{})
		if req.Title != nil {
			changes["title"] = *req.Title
		}
		if req.Description.Set {
			changes["description"] = req.Description.Value
		}
		if req.Status != nil {
			changes["status"] = *req.Status
		}
		if req.Priority != nil {
			changes["priority"] = *req.Priority
		}
		if req.AssignedTo.Set {
			assignedTo, err := s.assignee(ctx, tenantID, req.AssignedTo.Value)
			if err != nil {
				return nil, err
			}
			changes["assigned_to"] = assignedTo
		}

		if len(changes) == 0 {
			return nil, apperror.Validation("No fields to update")
		}

		updated, err = s.storage.UpdateTask(ctx, before.ID, changes)
		if err != nil {
			return nil, err
		}

		return []*types.AuditEntry{
			audit.NewEntry(actor, &tenantID, types.KindTask, before.ID, types.AuditUpdate, types.Metadata{"before": before, "after": updated}),
		}, nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

func (s *Service) DeleteTask(ctx context.Context, taskID string) (*types.Deleted, error) {
	ctx, span := s.tracer.Start(ctx, "tasks.Service.DeleteTask")
	defer span.End()

	actor, err := identity.Require(ctx)
	if err != nil {
		return nil, err
	}

	var deleted *types.Deleted

	err = s.transactor.Execute(ctx, func(ctx context.Context) ([]*types.AuditEntry, error) {
		t, tenantID, err := s.loadTask(ctx, taskID)
		if err != nil {
			return nil, err
		}

		if err := s.authz.Authorize(ctx, actor, authorization.ActionDelete, taskResource(t, tenantID)); err != nil {
			return nil, err
		}

		if err := s.storage.DeleteTask(ctx, t.ID); err != nil {
			return nil, err
		}

		deleted = &types.Deleted{ID: t.ID, Title: t.Title}

		return []*types.AuditEntry{
			audit.NewEntry(actor, &tenantID, types.KindTask, t.ID, types.AuditDelete, types.Metadata{"title": t.Title, "status": t.Status}),
		}, nil
	})
	if err != nil {
		return nil, err
	}

	return deleted, nil
}

func NewService(
	storage StorageInterface,
	resolver ResolverInterface,
	db DBClientInterface,
	transactor TransactorInterface,
	authz AuthorizerInterface,
	tracer tracing.TracingInterface,
	monitor monitoring.MonitorInterface,
	logger logging.LoggerInterface,
) *Service {
	s := new(Service)

	s.storage = storage
	s.resolver = resolver
	s.db = db
	s.transactor = transactor
	s.authz = authz

	s.tracer = tracer
	s.monitor = monitor
	s.logger = logger

	return s
}
