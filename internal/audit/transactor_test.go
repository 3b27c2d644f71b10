// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package audit

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"go.uber.org/mock/gomock"

	"github.com/canonical/project-hub/internal/apperror"
	"github.com/canonical/project-hub/internal/db"
	"github.com/canonical/project-hub/internal/identity"
	"github.com/canonical/project-hub/internal/logging"
	"github.com/canonical/project-hub/internal/monitoring"
	"github.com/canonical/project-hub/internal/storage"
	"github.com/canonical/project-hub/internal/tracing"
	"github.com/canonical/project-hub/internal/types"
)

//go:generate mockgen -build_flags=--mod=mod -package audit -destination ./mock_audit.go -source=./interfaces.go StorageInterface,PublisherInterface
//go:generate mockgen -build_flags=--mod=mod -package audit -destination ./mock_logger.go -source=../logging/interfaces.go
//go:generate mockgen -build_flags=--mod=mod -package audit -destination ./mock_monitor.go -source=../monitoring/interfaces.go

func setupTransactor(t *testing.T) (*Transactor, *MockStorageInterface, *MockPublisherInterface) {
	t.Helper()

	ctrl := gomock.NewController(t)
	conn, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	logger := logging.NewNoopLogger()
	tracer := tracing.NewNoopTracer()
	monitor := monitoring.NewNoopMonitor("test", logger)

	mockStorage := NewMockStorageInterface(ctrl)
	mockPublisher := NewMockPublisherInterface(ctrl)

	client := db.NewDBClientFromDB(conn, tracer, monitor, logger)

	return NewTransactor(client, mockStorage, mockPublisher, tracer, monitor, logger), mockStorage, mockPublisher
}

func stored(e *types.AuditEntry, id string) *types.AuditEntry {
	c := *e
	c.ID = id
	return &c
}

func TestTransactor_Execute(t *testing.T) {
	tenant := "t-1"
	actor := identity.Identity{UserID: "u-1", TenantID: tenant, Role: types.RoleTenantAdmin}
	entry := NewEntry(actor, &tenant, types.KindProject, "p-1", types.AuditCreate, types.Metadata{"name": "Alpha"})

	t.Run("commits and publishes every entry", func(t *testing.T) {
		tx, mockStorage, mockPublisher := setupTransactor(t)

		second := NewEntry(actor, &tenant, types.KindUser, "u-2", types.AuditUpdate, nil)

		gomock.InOrder(
			mockStorage.EXPECT().CreateAuditEntry(gomock.Any(), entry).Return(stored(entry, "a-1"), nil),
			mockStorage.EXPECT().CreateAuditEntry(gomock.Any(), second).Return(stored(second, "a-2"), nil),
		)
		mockPublisher.EXPECT().Publish(gomock.Any(), gomock.Any()).Times(2).Return(nil)

		err := tx.Execute(context.Background(), func(ctx context.Context) ([]*types.AuditEntry, error) {
			if !db.InTx(ctx) {
				t.Error("mutation does not run inside a unit of work")
			}
			return []*types.AuditEntry{entry, second}, nil
		})
		if err != nil {
			t.Fatalf("Execute() error = %v", err)
		}
	})

	t.Run("mutation failure skips audit and publish", func(t *testing.T) {
		tx, _, _ := setupTransactor(t)

		err := tx.Execute(context.Background(), func(context.Context) ([]*types.AuditEntry, error) {
			return nil, apperror.Conflict("Max projects limit reached for this tenant")
		})
		if !apperror.Is(err, apperror.KindConflict) {
			t.Fatalf("expected conflict, got %v", err)
		}
		if err.Error() != "Max projects limit reached for this tenant" {
			t.Errorf("unexpected message %q", err.Error())
		}
	})

	t.Run("storage errors are classified", func(t *testing.T) {
		tx, _, _ := setupTransactor(t)

		err := tx.Execute(context.Background(), func(context.Context) ([]*types.AuditEntry, error) {
			return nil, storage.ErrDuplicateKey
		})
		if !apperror.Is(err, apperror.KindConflict) {
			t.Errorf("expected conflict, got %v", err)
		}
	})

	t.Run("unaudited mutation is rejected", func(t *testing.T) {
		tx, _, _ := setupTransactor(t)

		err := tx.Execute(context.Background(), func(context.Context) ([]*types.AuditEntry, error) {
			return nil, nil
		})
		if !apperror.Is(err, apperror.KindInternal) {
			t.Errorf("expected internal error, got %v", err)
		}
	})

	t.Run("audit insert failure aborts", func(t *testing.T) {
		tx, mockStorage, _ := setupTransactor(t)

		mockStorage.EXPECT().CreateAuditEntry(gomock.Any(), entry).Return(nil, errors.New("connection reset"))

		err := tx.Execute(context.Background(), func(context.Context) ([]*types.AuditEntry, error) {
			return []*types.AuditEntry{entry}, nil
		})
		if !apperror.Is(err, apperror.KindInternal) {
			t.Errorf("expected internal error, got %v", err)
		}
	})

	t.Run("publish failure does not fail the mutation", func(t *testing.T) {
		tx, mockStorage, mockPublisher := setupTransactor(t)

		mockStorage.EXPECT().CreateAuditEntry(gomock.Any(), entry).Return(stored(entry, "a-1"), nil)
		mockPublisher.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(errors.New("nats: no responders"))

		err := tx.Execute(context.Background(), func(context.Context) ([]*types.AuditEntry, error) {
			return []*types.AuditEntry{entry}, nil
		})
		if err != nil {
			t.Errorf("Execute() error = %v", err)
		}
	})

	t.Run("nested execute publishes once after the outer commit", func(t *testing.T) {
		tx, mockStorage, mockPublisher := setupTransactor(t)

		inner := NewEntry(actor, &tenant, types.KindTenant, tenant, types.AuditCreate, nil)

		mockStorage.EXPECT().CreateAuditEntry(gomock.Any(), inner).Return(stored(inner, "a-1"), nil)
		mockStorage.EXPECT().CreateAuditEntry(gomock.Any(), entry).Return(stored(entry, "a-2"), nil)

		published := 0
		mockPublisher.EXPECT().Publish(gomock.Any(), gomock.Any()).Times(2).DoAndReturn(
			func(context.Context, *types.AuditEntry) error {
				published++
				return nil
			},
		)

		err := tx.Execute(context.Background(), func(ctx context.Context) ([]*types.AuditEntry, error) {
			err := tx.Execute(ctx, func(context.Context) ([]*types.AuditEntry, error) {
				return []*types.AuditEntry{inner}, nil
			})
			if err != nil {
				return nil, err
			}
			if published != 0 {
				t.Error("nested entries were published before commit")
			}
			return []*types.AuditEntry{entry}, nil
		})
		if err != nil {
			t.Fatalf("Execute() error = %v", err)
		}
	})
}

func TestTransactor_ExecuteMetricFailure(t *testing.T) {
	ctrl := gomock.NewController(t)

	conn, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	mockLogger := NewMockLoggerInterface(ctrl)
	mockMonitor := NewMockMonitorInterface(ctrl)
	mockStorage := NewMockStorageInterface(ctrl)
	mockPublisher := NewMockPublisherInterface(ctrl)
	tracer := tracing.NewNoopTracer()
	noop := logging.NewNoopLogger()
	client := db.NewDBClientFromDB(conn, tracer, monitoring.NewNoopMonitor("test", noop), noop)

	tx := NewTransactor(client, mockStorage, mockPublisher, tracer, mockMonitor, mockLogger)

	tenant := "t-1"
	actor := identity.Identity{UserID: "u-1", TenantID: tenant, Role: types.RoleUser}
	entry := NewEntry(actor, &tenant, types.KindTask, "k-1", types.AuditDelete, nil)

	mockStorage.EXPECT().CreateAuditEntry(gomock.Any(), entry).Return(stored(entry, "a-1"), nil)
	mockMonitor.EXPECT().IncAuditedMutation(map[string]string{"table": "tasks", "action": "DELETE"}).Return(errors.New("registry closed"))
	mockLogger.EXPECT().Debugf("failed to record audited mutation: %v", gomock.Any())
	mockPublisher.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil)

	err = tx.Execute(context.Background(), func(context.Context) ([]*types.AuditEntry, error) {
		return []*types.AuditEntry{entry}, nil
	})
	if err != nil {
		t.Fatalf("a metric failure must not fail the mutation: %v", err)
	}
}

func TestNewEntry(t *testing.T) {
	anonymous := NewEntry(identity.Identity{}, nil, types.KindTenant, "t-1", types.AuditCreate, nil)
	if anonymous.ActorUserID != nil {
		t.Errorf("expected no actor, got %v", *anonymous.ActorUserID)
	}
	if anonymous.TableName != "tenants" {
		t.Errorf("expected tenants table, got %q", anonymous.TableName)
	}

	e := NewEntry(identity.Identity{UserID: "u-1"}, nil, types.KindTask, "task-1", types.AuditDelete, types.Metadata{"title": "x"})
	if e.ActorUserID == nil || *e.ActorUserID != "u-1" {
		t.Errorf("unexpected actor %v", e.ActorUserID)
	}
	if e.TableName != "tasks" || e.Action != types.AuditDelete {
		t.Errorf("unexpected entry %+v", e)
	}
}
