// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package tenancy

import (
	"context"

	"github.com/canonical/project-hub/internal/types"
)

type ResolverInterface interface {
	ResolveTenant(ctx context.Context, kind types.EntityKind, id string) (string, error)
	TaskTenant(ctx context.Context, task *types.Task) (string, error)
}

type StorageInterface interface {
	GetTenant(ctx context.Context, id string) (*types.Tenant, error)
	GetUser(ctx context.Context, id string) (*types.User, error)
	GetProject(ctx context.Context, id string) (*types.Project, error)
	GetTask(ctx context.Context, id string) (*types.Task, error)
}
