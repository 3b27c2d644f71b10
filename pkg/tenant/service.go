// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package tenant

import (
	"context"
	"errors"
	"maps"
	"slices"
	"strings"

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

var _ ServiceInterface = (*Service)(nil)

type Service struct {
	storage    StorageInterface
	db         DBClientInterface
	transactor TransactorInterface
	authz      AuthorizerInterface
	hasher     HasherInterface
	tokens     TokenIssuerInterface
	validator  *validation.Validator
	limits     types.TenantLimits

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func tenantNotFound(err error) error {
	if errors.Is(err, storage.ErrNotFound) {
		return apperror.NotFound("Tenant not found")
	}
	return apperror.Classify(err)
}

func withStats(t *types.Tenant, stats map[string]*types.TenantStats) *types.TenantWithStats {
	out := &types.TenantWithStats{Tenant: t}
	if s, ok := stats[t.ID]; ok && s != nil {
		out.Stats = *s
	}
	return out
}

// RegisterTenant creates a tenant and its first tenant_admin in one unit of
// work, both creations are audited with the new admin as actor.
func (s *Service) RegisterTenant(ctx context.Context, req *RegisterTenantRequest) (*Registration, error) {
	ctx, span := s.tracer.Start(ctx, "tenant.Service.RegisterTenant")
	defer span.End()

	if err := s.validator.Struct(req); err != nil {
		return nil, err
	}

	plan := req.Plan
	if plan == "" {
		plan = types.PlanPro
	}
	if !plan.Valid() {
		return nil, apperror.Validation("Invalid plan")
	}

	hash, err := s.hasher.Hash(req.Admin.Password)
	if err != nil {
		return nil, err
	}

	result := new(Registration)

	err = s.transactor.Execute(ctx, func(ctx context.Context) ([]*types.AuditEntry, error) {
		_, err := s.storage.GetTenantBySubdomain(ctx, req.Subdomain)
		switch {
		case err == nil:
			return nil, apperror.Conflict("Subdomain already in use")
		case !errors.Is(err, storage.ErrNotFound):
			return nil, err
		}

		t, err := s.storage.CreateTenant(ctx, &types.Tenant{
			Name:        req.Name,
			Subdomain:   req.Subdomain,
			Plan:        plan,
			Status:      types.TenantStatusActive,
			MaxUsers:    s.limits.MaxUsers,
			MaxProjects: s.limits.MaxProjects,
		})
		if errors.Is(err, storage.ErrDuplicateKey) {
			return nil, apperror.Conflict("Subdomain already in use")
		}
		if err != nil {
			return nil, err
		}

		tenantID := &t.ID
		_, err = s.storage.GetUserByEmail(ctx, tenantID, req.Admin.Email)
		switch {
		case err == nil:
			return nil, apperror.Conflict("Email already exists in tenant")
		case !errors.Is(err, storage.ErrNotFound):
			return nil, err
		}

		u, err := s.storage.CreateUser(ctx, &types.User{
			TenantID:     tenantID,
			Email:        req.Admin.Email,
			PasswordHash: hash,
			Role:         types.RoleTenantAdmin,
			FirstName:    req.Admin.FirstName,
			LastName:     req.Admin.LastName,
		})
		if errors.Is(err, storage.ErrDuplicateKey) {
			return nil, apperror.Conflict("Email already exists in tenant")
		}
		if err != nil {
			return nil, err
		}

		result.Tenant = t
		result.User = u

		actor := identity.Identity{UserID: u.ID, TenantID: t.ID, Role: u.Role}

		return []*types.AuditEntry{
			audit.NewEntry(actor, tenantID, types.KindTenant, t.ID, types.AuditCreate, types.Metadata{"subdomain": t.Subdomain, "plan": t.Plan}),
			audit.NewEntry(actor, tenantID, types.KindUser, u.ID, types.AuditCreate, types.Metadata{"email": u.Email, "role": u.Role}),
		}, nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Security().AdminAction(result.User.ID, "register_tenant", result.Tenant.ID, "subdomain", result.Tenant.Subdomain)

	result.Token, err = s.tokens.IssueToken(ctx, identity.Identity{UserID: result.User.ID, TenantID: result.Tenant.ID, Role: result.User.Role})
	if err != nil {
		return nil, apperror.Internal(err, "failed to issue token")
	}

	return result, nil
}

func (s *Service) GetTenant(ctx context.Context, id string) (*types.TenantWithStats, error) {
	ctx, span := s.tracer.Start(ctx, "tenant.Service.GetTenant")
	defer span.End()

	actor, err := identity.Require(ctx)
	if err != nil {
		return nil, err
	}

	var out *types.TenantWithStats

	err = s.db.WithSnapshot(ctx, func(ctx context.Context) error {
		t, err := s.storage.GetTenant(ctx, id)
		if err != nil {
			return tenantNotFound(err)
		}

		if err := s.authz.Authorize(ctx, actor, authorization.ActionRead, authorization.TenantResource(t.ID)); err != nil {
			return err
		}

		stats, err := s.storage.TenantStats(ctx, []string{t.ID})
		if err != nil {
			return err
		}

		out = withStats(t, stats)
		return nil
	})
	if err != nil {
		return nil, apperror.Classify(err)
	}

	return out, nil
}

func (s *Service) ListTenants(ctx context.Context) ([]*types.TenantWithStats, error) {
	ctx, span := s.tracer.Start(ctx, "tenant.Service.ListTenants")
	defer span.End()

	actor, err := identity.Require(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.authz.Authorize(ctx, actor, authorization.ActionListAll, authorization.Resource{Kind: types.KindTenant}); err != nil {
		return nil, err
	}

	out := make([]*types.TenantWithStats, 0)

	err = s.db.WithSnapshot(ctx, func(ctx context.Context) error {
		tenants, err := s.storage.ListTenants(ctx)
		if err != nil {
			return err
		}

		ids := make([]string, 0, len(tenants))
		for _, t := range tenants {
			ids = append(ids, t.ID)
		}

		stats, err := s.storage.TenantStats(ctx, ids)
		if err != nil {
			return err
		}

		for _, t := range tenants {
			out = append(out, withStats(t, stats))
		}
		return nil
	})
	if err != nil {
		return nil, apperror.Classify(err)
	}

	return out, nil
}

func validateTenantUpdate(req *UpdateTenantRequest) error {
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		return apperror.Validation("Invalid name")
	}
	if req.Plan != nil && !req.Plan.Valid() {
		return apperror.Validation("Invalid plan")
	}
	if req.Status != nil && !req.Status.Valid() {
		return apperror.Validation("Invalid status")
	}
	if req.MaxUsers != nil && *req.MaxUsers < 0 {
		return apperror.Validation("Invalid max_users")
	}
	if req.MaxProjects != nil && *req.MaxProjects < 0 {
		return apperror.Validation("Invalid max_projects")
	}
	return nil
}

// UpdateTenant applies the fields the caller's role may change. Asking for a
// field outside that set denies the whole request.
func (s *Service) UpdateTenant(ctx context.Context, id string, req *UpdateTenantRequest) (*types.TenantWithStats, error) {
	ctx, span := s.tracer.Start(ctx, "tenant.Service.UpdateTenant")
	defer span.End()

	actor, err := identity.Require(ctx)
	if err != nil {
		return nil, err
	}

	changes := req.changes()
	fields := slices.Sorted(maps.Keys(changes))

	var out *types.TenantWithStats

	err = s.transactor.Execute(ctx, func(ctx context.Context) ([]*types.AuditEntry, error) {
		before, err := s.storage.GetTenant(ctx, id)
		if err != nil {
			return nil, tenantNotFound(err)
		}

		res := authorization.TenantResource(before.ID)
		res.Fields = fields
		if err := s.authz.Authorize(ctx, actor, authorization.ActionUpdate, res); err != nil {
			return nil, err
		}

		if len(changes) == 0 {
			return nil, apperror.Validation("No fields to update")
		}

		if err := validateTenantUpdate(req); err != nil {
			return nil, err
		}

		after, err := s.storage.UpdateTenant(ctx, before.ID, changes)
		if err != nil {
			return nil, err
		}

		stats, err := s.storage.TenantStats(ctx, []string{after.ID})
		if err != nil {
			return nil, err
		}

		out = withStats(after, stats)

		return []*types.AuditEntry{
			audit.NewEntry(actor, &after.ID, types.KindTenant, after.ID, types.AuditUpdate, types.Metadata{"before": before, "after": after}),
		}, nil
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}

func NewService(
	storage StorageInterface,
	db DBClientInterface,
	transactor TransactorInterface,
	authz AuthorizerInterface,
	hasher HasherInterface,
	tokens TokenIssuerInterface,
	validator *validation.Validator,
	limits types.TenantLimits,
	tracer tracing.TracingInterface,
	monitor monitoring.MonitorInterface,
	logger logging.LoggerInterface,
) *Service {
	s := new(Service)

	s.storage = storage
	s.db = db
	s.transactor = transactor
	s.authz = authz
	s.hasher = hasher
	s.tokens = tokens
	s.validator = validator
	s.limits = limits

	s.tracer = tracer
	s.monitor = monitor
	s.logger = logger

	return s
}
