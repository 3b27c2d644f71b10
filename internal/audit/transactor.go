// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package audit

import (
	"context"
	"errors"

	"github.com/canonical/project-hub/internal/apperror"
	"github.com/canonical/project-hub/internal/identity"
	"github.com/canonical/project-hub/internal/logging"
	"github.com/canonical/project-hub/internal/monitoring"
	"github.com/canonical/project-hub/internal/tracing"
	"github.com/canonical/project-hub/internal/types"
)

var errNoEntries = errors.New("mutation produced no audit entry")

// MutationFunc performs the writes of a mutation and describes them as audit
// entries. It runs inside the unit of work opened by Execute.
type MutationFunc func(ctx context.Context) ([]*types.AuditEntry, error)

type pendingKey struct{}

// Transactor commits a mutation together with its audit entries, or neither.
type Transactor struct {
	db        DBClientInterface
	storage   StorageInterface
	publisher PublisherInterface

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func (t *Transactor) Execute(ctx context.Context, fn MutationFunc) error {
	ctx, span := t.tracer.Start(ctx, "audit.Transactor.Execute")
	defer span.End()

	// nested calls hand their entries to the outermost Execute, which
	// reports them once the unit of work is committed
	outer, nested := ctx.Value(pendingKey{}).(*[]*types.AuditEntry)

	committed := make([]*types.AuditEntry, 0, 2)
	target := &committed
	if nested {
		target = outer
	}

	err := t.db.WithTx(ctx, func(ctx context.Context) error {
		ctx = context.WithValue(ctx, pendingKey{}, target)

		entries, err := fn(ctx)
		if err != nil {
			return err
		}

		if len(entries) == 0 {
			return apperror.Internal(errNoEntries, "mutation was not audited")
		}

		for _, e := range entries {
			stored, err := t.storage.CreateAuditEntry(ctx, e)
			if err != nil {
				return err
			}
			*target = append(*target, stored)
		}

		return nil
	})
	if err != nil {
		return apperror.Classify(err)
	}

	if nested {
		return nil
	}

	for _, e := range committed {
		if merr := t.monitor.IncAuditedMutation(map[string]string{"table": e.TableName, "action": string(e.Action)}); merr != nil {
			t.logger.Debugf("failed to record audited mutation: %v", merr)
		}

		if err := t.publisher.Publish(ctx, e); err != nil {
			t.logger.Warnw("failed to publish audit entry", "id", e.ID, "table", e.TableName, "error", err)
		}
	}

	return nil
}

// NewEntry builds an audit entry attributed to the actor, anonymous actors
// leave the actor column empty.
func NewEntry(actor identity.Identity, tenantID *string, kind types.EntityKind, recordID string, action types.AuditAction, metadata types.Metadata) *types.AuditEntry {
	e := &types.AuditEntry{
		TenantID:  tenantID,
		TableName: kind.Table(),
		RecordID:  recordID,
		Action:    action,
		Metadata:  metadata,
	}

	if actor.UserID != "" {
		userID := actor.UserID
		e.ActorUserID = &userID
	}

	return e
}

func NewTransactor(db DBClientInterface, storage StorageInterface, publisher PublisherInterface, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *Transactor {
	t := new(Transactor)

	t.db = db
	t.storage = storage
	t.publisher = publisher

	t.tracer = tracer
	t.monitor = monitor
	t.logger = logger

	return t
}
