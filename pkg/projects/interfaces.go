// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package projects

import (
	"context"

	"github.com/canonical/project-hub/internal/audit"
	"github.com/canonical/project-hub/internal/authorization"
	"github.com/canonical/project-hub/internal/identity"
	"github.com/canonical/project-hub/internal/types"
)

type ServiceInterface interface {
	CreateProject(ctx context.Context, req *CreateProjectRequest) (*types.Project, error)
	GetProject(ctx context.Context, id string) (*types.Project, error)
	ListProjects(ctx context.Context) ([]*types.Project, error)
	UpdateProject(ctx context.Context, id string, req *UpdateProjectRequest) (*types.Project, error)
	DeleteProject(ctx context.Context, id string) (*types.Deleted, error)
}

type StorageInterface interface {
	CreateProject(ctx context.Context, p *types.Project) (*types.Project, error)
	GetProject(ctx context.Context, id string) (*types.Project, error)
	ListProjects(ctx context.Context, tenantID *string) ([]*types.Project, error)
	UpdateProject(ctx context.Context, id string, changes map[string]interface{}) (*types.Project, error)
	DeleteProject(ctx context.Context, id string) error
	TaskCounts(ctx context.Context, projectIDs []string) (map[string]types.TaskCounts, error)
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

type QuotaInterface interface {
	Check(ctx context.Context, tenantID string, kind types.EntityKind) error
}
