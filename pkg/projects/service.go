// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package projects

import (
	"context"
	"errors"
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
)

const msgNameRequired = "Project name is required"

var _ ServiceInterface = (*Service)(nil)

type Service struct {
	storage    StorageInterface
	db         DBClientInterface
	transactor TransactorInterface
	authz      AuthorizerInterface
	quota      QuotaInterface

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func resource(p *types.Project) authorization.Resource {
	res := authorization.Resource{Kind: types.KindProject, ID: p.ID, TenantID: p.TenantID}
	if p.CreatedBy != nil {
		res.OwnerID = *p.CreatedBy
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

// withCounts fills the task aggregates of every project from one grouped query.
func (s *Service) withCounts(ctx context.Context, projects ...*types.Project) error {
	ids := make([]string, 0, len(projects))
	for _, p := range projects {
		ids = append(ids, p.ID)
	}

	counts, err := s.storage.TaskCounts(ctx, ids)
	if err != nil {
		return err
	}

	for _, p := range projects {
		c := counts[p.ID]
		p.TaskCount = c.Total
		p.CompletedTaskCount = c.Completed
	}

	return nil
}

func (s *Service) CreateProject(ctx context.Context, req *CreateProjectRequest) (*types.Project, error) {
	ctx, span := s.tracer.Start(ctx, "projects.Service.CreateProject")
	defer span.End()

	actor, err := identity.Require(ctx)
	if err != nil {
		return nil, err
	}

	res := authorization.Resource{Kind: types.KindProject, TenantID: actor.TenantID}
	if err := s.authz.Authorize(ctx, actor, authorization.ActionCreate, res); err != nil {
		return nil, err
	}

	if strings.TrimSpace(req.Name) == "" {
		return nil, apperror.Validation(msgNameRequired)
	}

	description := req.Description
	if description != nil && *description == "" {
		description = nil
	}

	var created *types.Project

	err = s.transactor.Execute(ctx, func(ctx context.Context) ([]*types.AuditEntry, error) {
		if err := s.quota.Check(ctx, actor.TenantID, types.KindProject); err != nil {
			return nil, err
		}

		created, err = s.storage.CreateProject(ctx, &types.Project{
			TenantID:    actor.TenantID,
			Name:        req.Name,
			Description: description,
			Status:      types.ProjectStatusActive,
			CreatedBy:   &actor.UserID,
		})
		if err != nil {
			return nil, err
		}

		if err := s.withCounts(ctx, created); err != nil {
			return nil, err
		}

		return []*types.AuditEntry{
			audit.NewEntry(actor, &created.TenantID, types.KindProject, created.ID, types.AuditCreate, types.Metadata{"name": created.Name, "status": created.Status}),
		}, nil
	})
	if err != nil {
		return nil, err
	}

	return created, nil
}

func (s *Service) GetProject(ctx context.Context, id string) (*types.Project, error) {
	ctx, span := s.tracer.Start(ctx, "projects.Service.GetProject")
	defer span.End()

	actor, err := identity.Require(ctx)
	if err != nil {
		return nil, err
	}

	var p *types.Project

	err = s.db.WithSnapshot(ctx, func(ctx context.Context) error {
		p, err = s.loadProject(ctx, id)
		if err != nil {
			return err
		}

		if err := s.authz.Authorize(ctx, actor, authorization.ActionRead, resource(p)); err != nil {
			return err
		}

		return s.withCounts(ctx, p)
	})
	if err != nil {
		return nil, apperror.Classify(err)
	}

	return p, nil
}

// ListProjects returns the caller's tenant projects, or those of every tenant
// for a super admin.
func (s *Service) ListProjects(ctx context.Context) ([]*types.Project, error) {
	ctx, span := s.tracer.Start(ctx, "projects.Service.ListProjects")
	defer span.End()

	actor, err := identity.Require(ctx)
	if err != nil {
		return nil, err
	}

	// a tenant-less super admin lists across tenants
	res := authorization.Resource{Kind: types.KindProject, TenantID: actor.TenantID}
	if err := s.authz.Authorize(ctx, actor, authorization.ActionList, res); err != nil {
		return nil, err
	}

	var scope *string
	if actor.Role != types.RoleSuperAdmin {
		scope = &actor.TenantID
	}

	var projects []*types.Project

	err = s.db.WithSnapshot(ctx, func(ctx context.Context) error {
		projects, err = s.storage.ListProjects(ctx, scope)
		if err != nil {
			return err
		}

		return s.withCounts(ctx, projects...)
	})
	if err != nil {
		return nil, apperror.Classify(err)
	}

	return projects, nil
}

func (s *Service) UpdateProject(ctx context.Context, id string, req *UpdateProjectRequest) (*types.Project, error) {
	ctx, span := s.tracer.Start(ctx, "projects.Service.UpdateProject")
	defer span.End()

	actor, err := identity.Require(ctx)
	if err != nil {
		return nil, err
	}

	changes := req.changes()

	var updated *types.Project

	err = s.transactor.Execute(ctx, func(ctx context.Context) ([]*types.AuditEntry, error) {
		before, err := s.loadProject(ctx, id)
		if err != nil {
			return nil, err
		}

		if err := s.authz.Authorize(ctx, actor, authorization.ActionUpdate, resource(before)); err != nil {
			return nil, err
		}

		if len(changes) == 0 {
			return nil, apperror.Validation("No fields to update")
		}

		if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
			return nil, apperror.Validation(msgNameRequired)
		}

		if req.Status != nil && !req.Status.Valid() {
			return nil, apperror.Validation("Invalid status")
		}

		updated, err = s.storage.UpdateProject(ctx, before.ID, changes)
		if err != nil {
			return nil, err
		}

		if err := s.withCounts(ctx, updated); err != nil {
			return nil, err
		}

		return []*types.AuditEntry{
			audit.NewEntry(actor, &before.TenantID, types.KindProject, before.ID, types.AuditUpdate, types.Metadata{"before": before, "after": updated}),
		}, nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// DeleteProject removes the project together with its tasks.
func (s *Service) DeleteProject(ctx context.Context, id string) (*types.Deleted, error) {
	ctx, span := s.tracer.Start(ctx, "projects.Service.DeleteProject")
	defer span.End()

	actor, err := identity.Require(ctx)
	if err != nil {
		return nil, err
	}

	var deleted *types.Deleted

	err = s.transactor.Execute(ctx, func(ctx context.Context) ([]*types.AuditEntry, error) {
		p, err := s.loadProject(ctx, id)
		if err != nil {
			return nil, err
		}

		if err := s.authz.Authorize(ctx, actor, authorization.ActionDelete, resource(p)); err != nil {
			return nil, err
		}

		if err := s.storage.DeleteProject(ctx, p.ID); err != nil {
			return nil, err
		}

		deleted = &types.Deleted{ID: p.ID, Name: p.Name}

		return []*types.AuditEntry{
			audit.NewEntry(actor, &p.TenantID, types.KindProject, p.ID, types.AuditDelete, types.Metadata{"name": p.Name}),
		}, nil
	})
	if err != nil {
		return nil, err
	}

	return deleted, nil
}

func NewService(
	storage StorageInterface,
	db DBClientInterface,
	transactor TransactorInterface,
	authz AuthorizerInterface,
	quota QuotaInterface,
	tracer tracing.TracingInterface,
	monitor monitoring.MonitorInterface,
	logger logging.LoggerInterface,
) *Service {
	s := new(Service)

	s.storage = storage
	s.db = db
	s.transactor = transactor
	s.authz = authz
	s.quota = quota

	s.tracer = tracer
	s.monitor = monitor
	s.logger = logger

	return s
}
