// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package tasks

import (
	"context"

	"github.com/canonical/project-hub/internal/audit"
	"github.com/canonical/project-hub/internal/authorization"
	"github.com/canonical/project-hub/internal/identity"
	"github.com/canonical/project-hub/internal/types"
)

type ServiceInterface interface {
	CreateTask(ctx context.Context, projectID string, req *CreateTaskRequest) (*types.Task, error)
	ListTasks(ctx context.Context, projectID string, params *ListTasksParams) (*types.TaskPage, error)
	UpdateTaskStatus(ctx context.Context, taskID string, status types.TaskStatus) (*types.Task, error)
	UpdateTask(ctx context.Context, taskID string, req *UpdateTaskRequest) (*types.Task, error)
	DeleteTask(ctx context.Context, taskID string) (*types.Deleted, error)
}

type StorageInterface interface {
	GetProject(ctx context.Context, id string) (*types.Project, error)
	GetUser(ctx context.Context, id string) (*types.User, error)
	CreateTask(ctx context.Context, t *types.Task) (*types.Task, error)
	GetTask(ctx context.Context, id string) (*types.Task, error)
	ListTasks(ctx context.Context, tenantID, projectID string, f types.TaskFilter, limit, offset uint64) ([]*types.Task, error)
	CountTasks(ctx context.Context, tenantID, projectID string, f types.TaskFilter) (int64, error)
	UpdateTask(ctx context.Context, id string, changes map[string]interface{}) (*types.Task, error)
	DeleteTask(ctx context.Context, id string) error
}

type ResolverInterface interface {
	TaskTenant(ctx context.Context, task *types.Task) (string, error)
}

type DBClientInterface interface {
	WithSnapshot(context.Context, func(context.Context) error) error
}

type TransactorInterface interface {
	Execute(ctx context.Context, fn audit.MutationFunc) error
}

type AuthorizerInterface interface {
	Authorize(ctx context.Context, actor identity.Identity, action authorization.Action, res authorization.Resource) error
}
