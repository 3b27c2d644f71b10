// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package users

import (
	"context"

	"github.com/canonical/project-hub/internal/audit"
	"github.com/canonical/project-hub/internal/authorization"
	"github.com/canonical/project-hub/internal/identity"
	"github.com/canonical/project-hub/internal/types"
)

type ServiceInterface interface {
	CreateUser(ctx context.Context, tenantID string, req *CreateUserRequest) (*types.User, error)
	ListUsers(ctx context.Context, tenantID string) ([]*types.User, error)
	UpdateUser(ctx context.Context, userID string, req *UpdateUserRequest) (*types.User, error)
	DeleteUser(ctx context.Context, userID string) (*types.Deleted, error)
}

type StorageInterface interface {
	CreateUser(ctx context.Context, u *types.User) (*types.User, error)
	GetUser(ctx context.Context, id string) (*types.User, error)
	GetUserByEmail(ctx context.Context, tenantID *string, email string) (*types.User, error)
	ListUsers(ctx context.Context, tenantID string) ([]*types.User, error)
	UpdateUser(ctx context.Context, id string, changes map[string]interface{}) (*types.User, error)
	DeleteUser(ctx context.Context, id string) error
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

type HasherInterface interface {
	Hash(password string) (string, error)
}
