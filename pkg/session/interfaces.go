// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package session

import (
	"context"

	"github.com/canonical/project-hub/internal/identity"
	"github.com/canonical/project-hub/internal/types"
)

type ServiceInterface interface {
	Login(ctx context.Context, req *LoginRequest) (*LoginResult, error)
	Me(ctx context.Context) (*Profile, error)
	Logout(ctx context.Context) error
}

type StorageInterface interface {
	GetTenant(ctx context.Context, id string) (*types.Tenant, error)
	GetTenantBySubdomain(ctx context.Context, subdomain string) (*types.Tenant, error)
	GetUser(ctx context.Context, id string) (*types.User, error)
	GetUserByEmail(ctx context.Context, tenantID *string, email string) (*types.User, error)
}

type HasherInterface interface {
	Compare(hash, password string) bool
}

type TokenIssuerInterface interface {
	IssueToken(ctx context.Context, id identity.Identity) (string, error)
}
