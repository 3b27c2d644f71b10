// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package users

import (
	"context"
	"errors"
	"maps"
	"slices"

	"github.com/canonical/project-hub/internal/apperror"
	"github.com/canonical/project-hub/internal/audit"
	"github.com/canonical/project-hub/internal/authorization"
	"github.com/canonical/project-hub/internal/identity"
	"github.com/canonical/project-hub/internal/logging"
	"github.com/canonical/project-hub/internal/monitoring"
	"github.com/canonical/project-hub/internal/storage"
	"github.com/canonical/project-hub/internal/tracing"
	"github.com/canonical/project-hub/internal/types"
	"github.com/canonical/project-hub/internal/validation"
)

const msgEmailTaken = "Email already exists in this tenant"

var _ ServiceInterface = (*Service)(nil)

type Service struct {
	storage    StorageInterface
	transactor TransactorInterface
	authz      AuthorizerInterface
	quota      QuotaInterface
	hasher     HasherInterface
	validator  *validation.Validator

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func (s *Service) loadUser(ctx context.Context, id string) (*types.User, error) {
	u, err := s.storage.GetUser(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, apperror.NotFound("User not found")
	}
	return u, err
}

func (s *Service) CreateUser(ctx context.Context, tenantID string, req *CreateUserRequest) (*types.User, error) {
	ctx, span := s.tracer.Start(ctx, "users.Service.CreateUser")
	defer span.End()

	actor, err := identity.Require(ctx)
	if err != nil {
		return nil, err
	}

	res := authorization.Resource{Kind: types.KindUser, TenantID: tenantID}
	if err := s.authz.Authorize(ctx, actor, authorization.ActionCreate, res); err != nil {
		return nil, err
	}

	if err := s.validator.Struct(req); err != nil {
		return nil, err
	}

	role := req.Role
	if role == "" {
		role = types.RoleUser
	}
	if !role.Assignable() {
		return nil, apperror.Validation("Invalid role")
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	var created *types.User

	err = s.transactor.Execute(ctx, func(ctx context.Context) ([]*types.AuditEntry, error) {
		if err := s.quota.Check(ctx, tenantID, types.KindUser); err != nil {
			return nil, err
		}

		_, err := s.storage.GetUserByEmail(ctx, &tenantID, req.Email)
		switch {
		case err == nil:
			return nil, apperror.Conflict(msgEmailTaken)
		case !errors.Is(err, storage.ErrNotFound):
			return nil, err
		}

		created, err = s.storage.CreateUser(ctx, &types.User{
			TenantID:     &tenantID,
			Email:        req.Email,
			PasswordHash: hash,
			Role:         role,
			FirstName:    req.FirstName,
			LastName:     req.LastName,
		})
		if errors.Is(err, storage.ErrDuplicateKey) {
			return nil, apperror.Conflict(msgEmailTaken)
		}
		if err != nil {
			return nil, err
		}

		return []*types.AuditEntry{
			audit.NewEntry(actor, &tenantID, types.KindUser, created.ID, types.AuditCreate, types.Metadata{"email": created.Email, "role": created.Role}),
		}, nil
	})
	if err != nil {
		return nil, err
	}

	return created, nil
}

func (s *Service) ListUsers(ctx context.Context, tenantID string) ([]*types.User, error) {
	ctx, span := s.tracer.Start(ctx, "users.Service.ListUsers")
	defer span.End()

	actor, err := identity.Require(ctx)
	if err != nil {
		return nil, err
	}

	res := authorization.Resource{Kind: types.KindUser, TenantID: tenantID}
	if err := s.authz.Authorize(ctx, actor, authorization.ActionList, res); err != nil {
		return nil, err
	}

	users, err := s.storage.ListUsers(ctx, tenantID)
	if err != nil {
		return nil, apperror.Classify(err)
	}

	return users, nil
}

// UpdateUser lets a user rename themselves, admins may also change the role.
func (s *Service) UpdateUser(ctx context.Context, userID string, req *UpdateUserRequest) (*types.User, error) {
	ctx, span := s.tracer.Start(ctx, "users.Service.UpdateUser")
	defer span.End()

	actor, err := identity.Require(ctx)
	if err != nil {
		return nil, err
	}

	changes := req.changes()

	var updated *types.User

	err = s.transactor.Execute(ctx, func(ctx context.Context) ([]*types.AuditEntry, error) {
		before, err := s.loadUser(ctx, userID)
		if err != nil {
			return nil, err
		}

		res := authorization.Resource{
			Kind:     types.KindUser,
			ID:       before.ID,
			TenantID: before.Tenant(),
			Fields:   slices.Sorted(maps.Keys(changes)),
		}
		if err := s.authz.Authorize(ctx, actor, authorization.ActionUpdate, res); err != nil {
			return nil, err
		}

		if len(changes) == 0 {
			return nil, apperror.Validation("No fields to update")
		}

		if req.Role != nil && !req.Role.Assignable() {
			return nil, apperror.Validation("Invalid role")
		}

		updated, err = s.storage.UpdateUser(ctx, before.ID, changes)
		if err != nil {
			return nil, err
		}

		return []*types.AuditEntry{
			audit.NewEntry(actor, before.TenantID, types.KindUser, before.ID, types.AuditUpdate, types.Metadata{"before": before, "after": updated}),
		}, nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

func (s *Service) DeleteUser(ctx context.Context, userID string) (*types.Deleted, error) {
	ctx, span := s.tracer.Start(ctx, "users.Service.DeleteUser")
	defer span.End()

	actor, err := identity.Require(ctx)
	if err != nil {
		return nil, err
	}

	var deleted *types.Deleted

	err = s.transactor.Execute(ctx, func(ctx context.Context) ([]*types.AuditEntry, error) {
		u, err := s.loadUser(ctx, userID)
		if err != nil {
			return nil, err
		}

		res := authorization.Resource{Kind: types.KindUser, ID: u.ID, TenantID: u.Tenant()}
		if err := s.authz.Authorize(ctx, actor, authorization.ActionDelete, res); err != nil {
			return nil, err
		}

		if err := s.storage.DeleteUser(ctx, u.ID); err != nil {
			return nil, err
		}

		deleted = &types.Deleted{ID: u.ID, Email: u.Email}

		return []*types.AuditEntry{
			audit.NewEntry(actor, u.TenantID, types.KindUser, u.ID, types.AuditDelete, types.Metadata{"deletedUser": u}),
		}, nil
	})
	if err != nil {
		return nil, err
	}

	return deleted, nil
}

func NewService(
	storage StorageInterface,
	transactor TransactorInterface,
	authz AuthorizerInterface,
	quota QuotaInterface,
	hasher HasherInterface,
	validator *validation.Validator,
	tracer tracing.TracingInterface,
	monitor monitoring.MonitorInterface,
	logger logging.LoggerInterface,
) *Service {
	s := new(Service)

	s.storage = storage
	s.transactor = transactor
	s.authz = authz
	s.quota = quota
	s.hasher = hasher
	s.validator = validator

	s.tracer = tracer
	s.monitor = monitor
	s.logger = logger

	return s
}
