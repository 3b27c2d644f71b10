// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package tenant

import (
	"context"

	"github.com/canonical/project-hub/internal/audit"
	"github.com/canonical/project-hub/internal/authorization"
	"github.com/canonical/project-hub/internal/identity"
	"github.com/canonical/project-hub/internal/types"
)

type ServiceInterface interface {
	RegisterTenant(ctx context.Context, req *RegisterTenantRequest) (*Registration, error)
	GetTenant(ctx context.Context, id string) (*types.TenantWithStats, error)
	ListTenants(ctx context.Context) ([]*types.TenantWithStats, error)
	UpdateTenant(ctx context.Context, id string, req *UpdateTenantRequest) (*types.TenantWithStats, error)
}

type StorageInterface interface {
	CreateTenant(ctx context.Context, t *types.Tenant) (*types.Tenant, error)
	GetTenant(ctx context.Context, id string) (*types.Tenant, error)
	GetTenantBySubdomain(ctx context.Context, subdomain string) (*types.Tenant, error)
	ListTenants(ctx context.Context) ([]*types.Tenant, error)
	UpdateTenant(ctx context.Context, id string, changes map[string]interface{}) (*types.Tenant, error)
	TenantStats(ctx context.Context, tenantIDs []string) (map[string]*types.TenantStats, error)
	CreateUser(ctx context.Context, u *types.User) (*types.User, error)
	GetUserByEmail(ctx context.Context, tenantID *string, email string) (*types.User, error)
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

type HasherInterface interface {
	Hash(password string) (string, error)
}

type TokenIssuerInterface interface {
	IssueToken(ctx context.Context, id identity.Identity) (string, error)
}
