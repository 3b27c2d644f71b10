// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package tenancy

import (
	"context"
	"errors"
	"fmt"

	"github.com/canonical/project-hub/internal/apperror"
	"github.com/canonical/project-hub/internal/logging"
	"github.com/canonical/project-hub/internal/monitoring"
	"github.com/canonical/project-hub/internal/storage"
	"github.com/canonical/project-hub/internal/tracing"
	"github.com/canonical/project-hub/internal/types"
)

var _ ResolverInterface = (*Resolver)(nil)

// Resolver finds the tenant owning an entity. Tenant-less super admins resolve to "".
type Resolver struct {
	storage StorageInterface

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func notFound(kind types.EntityKind, err error) error {
	if errors.Is(err, storage.ErrNotFound) {
		return apperror.NotFound("%s not found", kind.Label())
	}
	return apperror.Classify(err)
}

func (r *Resolver) ResolveTenant(ctx context.Context, kind types.EntityKind, id string) (string, error) {
	ctx, span := r.tracer.Start(ctx, "tenancy.Resolver.ResolveTenant")
	defer span.End()

	switch kind {
	case types.KindTenant:
		t, err := r.storage.GetTenant(ctx, id)
		if err != nil {
			return "", notFound(kind, err)
		}
		return t.ID, nil
	case types.KindUser:
		u, err := r.storage.GetUser(ctx, id)
		if err != nil {
			return "", notFound(kind, err)
		}
		return u.Tenant(), nil
	case types.KindProject:
		p, err := r.storage.GetProject(ctx, id)
		if err != nil {
			return "", notFound(kind, err)
		}
		return p.TenantID, nil
	case types.KindTask:
		t, err := r.storage.GetTask(ctx, id)
		if err != nil {
			return "", notFound(kind, err)
		}
		return r.TaskTenant(ctx, t)
	}

	return "", apperror.Internal(fmt.Errorf("unknown entity kind %q", kind), "failed to resolve tenant")
}

// TaskTenant checks the task tenant against its project. A mismatch means
// corrupted data and is never recovered from.
func (r *Resolver) TaskTenant(ctx context.Context, task *types.Task) (string, error) {
	ctx, span := r.tracer.Start(ctx, "tenancy.Resolver.TaskTenant")
	defer span.End()

	p, err := r.storage.GetProject(ctx, task.ProjectID)
	if err != nil {
		return "", notFound(types.KindProject, err)
	}

	if p.TenantID != task.TenantID {
		r.logger.Errorw("task tenant diverges from project tenant",
			"task", task.ID,
			"task_tenant", task.TenantID,
			"project", p.ID,
			"project_tenant", p.TenantID,
		)
		return "", apperror.Internal(
			fmt.Errorf("task %s tenant %s, project %s tenant %s", task.ID, task.TenantID, p.ID, p.TenantID),
			"data integrity violation",
		)
	}

	return p.TenantID, nil
}

func NewResolver(s StorageInterface, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *Resolver {
	r := new(Resolver)

	r.storage = s

	r.tracer = tracer
	r.monitor = monitor
	r.logger = logger

	return r
}
