// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package quota

import (
	"context"

	"github.com/canonical/project-hub/internal/types"
)

type GuardInterface interface {
	Check(ctx context.Context, tenantID string, kind types.EntityKind) error
}

type StorageInterface interface {
	LockTenantLimits(ctx context.Context, id string) (*types.TenantLimits, error)
	CountUsers(ctx context.Context, tenantID string) (int64, error)
	CountProjects(ctx context.Context, tenantID string) (int64, error)
}
