// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package storage

import (
	"context"

	"github.com/canonical/project-hub/internal/types"
)

type StorageInterface interface {
	CreateTenant(ctx context.Context, t *types.Tenant) (*types.Tenant, error)
	GetTenant(ctx context.Context, id string) (*types.Tenant, error)
	GetTenantBySubdomain(ctx context.Context, subdomain string) (*types.Tenant, error)
	ListTenants(ctx context.Context) ([]*types.Tenant, error)
	UpdateTenant(ctx context.Context, id string, changes map[string]interface{}) (*types.Tenant, error)
	LockTenantLimits(ctx context.Context, id string) (*types.TenantLimits, error)
	TenantStats(ctx context.Context, tenantIDs []string) (map[string]*types.TenantStats, error)

	CreateUser(ctx context.Context, u *types.User) (*types.User, error)
	GetUser(ctx context.Context, id string) (*types.User, error)
	GetUserByEmail(ctx context.Context, tenantID *string, email string) (*types.User, error)
	ListUsers(ctx context.Context, tenantID string) ([]*types.User, error)
	UpdateUser(ctx context.Context, id string, changes map[string]interface{}) (*types.User, error)
	DeleteUser(ctx context.Context, id string) error
	CountUsers(ctx context.Context, tenantID string) (int64, error)

	CreateProject(ctx context.Context, p *types.Project) (*types.Project, error)
	GetProject(ctx context.Context, id string) (*types.Project, error)
	ListProjects(ctx context.Context, tenantID *string) ([]*types.Project, error)
	UpdateProject(ctx context.Context, id string, changes map[string]interface{}) (*types.Project, error)
	DeleteProject(ctx context.Context, id string) error
	CountProjects(ctx context.Context, tenantID string) (int64, error)
	TaskCounts(ctx context.Context, projectIDs []string) (map[string]types.TaskCounts, error)

	CreateTask(ctx context.Context, t *types.Task) (*types.Task, error)
	GetTask(ctx context.Context, id string) (*types.Task, error)
	ListTasks(ctx context.Context, tenantID, projectID string, f types.TaskFilter, limit, offset uint64) ([]*types.Task, error)
	CountTasks(ctx context.Context, tenantID, projectID string, f types.TaskFilter) (int64, error)
	UpdateTask(ctx context.Context, id string, changes map[string]interface{}) (*types.Task, error)
	DeleteTask(ctx context.Context, id string) error

	CreateAuditEntry(ctx context.Context, e *types.AuditEntry) (*types.AuditEntry, error)
}
