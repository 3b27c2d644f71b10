// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package audit

import (
	"context"

	"github.com/canonical/project-hub/internal/types"
)

type TransactorInterface interface {
	Execute(ctx context.Context, fn MutationFunc) error
}

type DBClientInterface interface {
	WithTx(context.Context, func(context.Context) error) error
}

type StorageInterface interface {
	CreateAuditEntry(ctx context.Context, e *types.AuditEntry) (*types.AuditEntry, error)
}

type PublisherInterface interface {
	Publish(ctx context.Context, entry *types.AuditEntry) error
}
