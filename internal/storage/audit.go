// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/canonical/project-hub/internal/types"
)

// CreateAuditEntry appends an audit entry, there is no update or delete counterpart.
func (s *Storage) CreateAuditEntry(ctx context.Context, e *types.AuditEntry) (*types.AuditEntry, error) {
	ctx, span := s.tracer.Start(ctx, "storage.CreateAuditEntry")
	defer span.End()

	id, err := newID()
	if err != nil {
		return nil, err
	}

	metadata := e.Metadata
	if metadata == nil {
		metadata = types.Metadata{}
	}

	raw, err := json.Marshal(metadata)
	if err != nil {
		return nil, fmt.Errorf("failed to encode audit metadata: %w", err)
	}

	stored := *e
	stored.Metadata = metadata

	err = s.db.Statement(ctx).
		Insert("audit_logs").
		Columns("id", "tenant_id", "table_name", "record_id", "action", "actor_user_id", "metadata").
		Values(id, e.TenantID, e.TableName, e.RecordID, e.Action, e.ActorUserID, string(raw)).
		Suffix("RETURNING id, created_at").
		QueryRowContext(ctx).
		Scan(&stored.ID, &stored.CreatedAt)
	if err != nil {
		return nil, wrapWriteError(err, "insert audit entry")
	}

	return &stored, nil
}
