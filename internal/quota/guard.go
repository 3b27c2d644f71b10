// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package quota

import (
	"context"
	"errors"
	"fmt"

	"github.com/canonical/project-hub/internal/apperror"
	"github.com/canonical/project-hub/internal/db"
	"github.com/canonical/project-hub/internal/logging"
	"github.com/canonical/project-hub/internal/monitoring"
	"github.com/canonical/project-hub/internal/storage"
	"github.com/canonical/project-hub/internal/tracing"
	"github.com/canonical/project-hub/internal/types"
)

var _ GuardInterface = (*Guard)(nil)

// Guard enforces the per tenant ceilings on users and projects.
type Guard struct {
	storage StorageInterface

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

// Check must run inside the unit of work performing the insert: the tenant row
// stays locked until that unit ends, so concurrent creations for the same tenant
// are counted one after the other.
func (g *Guard) Check(ctx context.Context, tenantID string, kind types.EntityKind) error {
	ctx, span := g.tracer.Start(ctx, "quota.Guard.Check")
	defer span.End()

	if !db.InTx(ctx) {
		return apperror.Internal(errors.New("quota check outside of a transaction"), "failed to check quota")
	}

	limits, err := g.storage.LockTenantLimits(ctx, tenantID)
	if errors.Is(err, storage.ErrNotFound) {
		return apperror.NotFound("Tenant not found")
	}
	if err != nil {
		return apperror.Internal(err, "failed to read tenant limits")
	}

	var (
		count   int64
		ceiling int
		message string
	)

	switch kind {
	case types.KindUser:
		ceiling, message = limits.MaxUsers, "Max users limit reached for this tenant"
		count, err = g.storage.CountUsers(ctx, tenantID)
	case types.KindProject:
		ceiling, message = limits.MaxProjects, "Max projects limit reached for this tenant"
		count, err = g.storage.CountProjects(ctx, tenantID)
	default:
		return apperror.Internal(fmt.Errorf("no quota for %q", kind), "failed to check quota")
	}

	if err != nil {
		return apperror.Internal(err, "failed to count %s", kind.Table())
	}

	if count >= int64(ceiling) {
		g.logger.Infow("quota exceeded", "tenant", tenantID, "kind", string(kind), "count", count, "ceiling", ceiling)
		return apperror.Conflict("%s", message)
	}

	return nil
}

func NewGuard(s StorageInterface, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *Guard {
	g := new(Guard)

	g.storage = s

	g.tracer = tracer
	g.monitor = monitor
	g.logger = logger

	return g
}
