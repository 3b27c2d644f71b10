// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package tasks

import (
	"context"
	"testing"

	"go.uber.org/mock/gomock"

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

//go:generate mockgen -build_flags=--mod=mod -package tasks -destination ./mock_tasks.go -source=./interfaces.go

type fixture struct {
	storage  *MockStorageInterface
	resolver *MockResolverInterface
	db       *MockDBClientInterface
	tx       *MockTransactorInterface
	svc      *Service

	entries []*types.AuditEntry
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	ctrl := gomock.NewController(t)
	logger := logging.NewNoopLogger()
	tracer := tracing.NewNoopTracer()
	monitor := monitoring.NewNoopMonitor("test", logger)

	f := &fixture{
		storage:  NewMockStorageInterface(ctrl),
		resolver: NewMockResolverInterface(ctrl),
		db:       NewMockDBClientInterface(ctrl),
		tx:       NewMockTransactorInterface(ctrl),
	}

	f.svc = NewService(f.storage, f.resolver, f.db, f.tx, authorization.NewAuthorizer(tracer, monitor, logger), tracer, monitor, logger)

	f.db.EXPECT().WithSnapshot(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, fn func(context.Context) error) error {
			return fn(ctx)
		},
	).AnyTimes()

	f.tx.EXPECT().Execute(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, fn audit.MutationFunc) error {
			entries, err := fn(ctx)
			if err != nil {
				return err
			}
			f.entries = entries
			return nil
		},
	).AnyTimes()

	return f
}

func as(id identity.Identity) context.Context {
	return identity.NewContext(context.Background(), id)
}

func ptr[T any](v T) *T {
	return &v
}

var (
	superAdmin = identity.Identity{UserID: "root", Role: types.RoleSuperAdmin}
	adminA     = identity.Identity{UserID: "admin-a", TenantID: "t-a", Role: types.RoleTenantAdmin}
	memberA    = identity.Identity{UserID: "member-a", TenantID: "t-a", Role: types.RoleUser}
	otherA     = identity.Identity{UserID: "other-a", TenantID: "t-a", Role: types.RoleUser}
	memberB    = identity.Identity{UserID: "member-b", TenantID: "t-b", Role: types.RoleUser}

	projectA = &types.Project{ID: "p-1", TenantID: "t-a", Name: "Apollo"}
)

func taskA() *types.Task {
	return &types.Task{
		ID: "task-1", TenantID: "t-a", ProjectID: "p-1", Title: "Launch",
		Status: types.TaskStatusTodo, Priority: types.TaskPriorityMedium, CreatedBy: ptr("member-a"),
	}
}

func TestService_CreateTask(t *testing.T) {
	tests := []struct {
		name       string
		actor      identity.Identity
		req        *CreateTaskRequest
		setupMocks func(*fixture)
		errKind    *apperror.Kind
		errMsg     string
	}{
		{
			name:  "defaults applied",
			actor: memberA,
			req:   &CreateTaskRequest{Title: "Launch"},
			setupMocks: func(f *fixture) {
				f.storage.EXPECT().GetProject(gomock.Any(), "p-1").Return(projectA, nil)
				f.storage.EXPECT().CreateTask(gomock.Any(), &types.Task{
					TenantID: "t-a", ProjectID: "p-1", Title: "Launch",
					Status: types.TaskStatusTodo, Priority: types.TaskPriorityMedium, CreatedBy: ptr("member-a"),
				}).Return(taskA(), nil)
			},
		},
		{
			name:  "assigned to tenant member",
			actor: memberA,
			req:   &CreateTaskRequest{Title: "Launch", AssignedTo: ptr("other-a"), Priority: types.TaskPriorityHigh},
			setupMocks: func(f *fixture) {
				f.storage.EXPECT().GetProject(gomock.Any(), "p-1").Return(projectA, nil)
				f.storage.EXPECT().GetUser(gomock.Any(), "other-a").Return(&types.User{ID: "other-a", TenantID: ptr("t-a")}, nil)
				f.storage.EXPECT().CreateTask(gomock.Any(), &types.Task{
					TenantID: "t-a", ProjectID: "p-1", Title: "Launch", AssignedTo: ptr("other-a"),
					Status: types.TaskStatusTodo, Priority: types.TaskPriorityHigh, CreatedBy: ptr("member-a"),
				}).Return(taskA(), nil)
			},
		},
		{
			name:  "assignee from another tenant",
			actor: memberA,
			req:   &CreateTaskRequest{Title: "Launch", AssignedTo: ptr("member-b")},
			setupMocks: func(f *fixture) {
				f.storage.EXPECT().GetProject(gomock.Any(), "p-1").Return(projectA, nil)
				f.storage.EXPECT().GetUser(gomock.Any(), "member-b").Return(&types.User{ID: "member-b", TenantID: ptr("t-b")}, nil)
			},
			errKind: ptr(apperror.KindValidation),
			errMsg:  "Assigned user must belong to the same tenant",
		},
		{
			name:  "unknown assignee",
			actor: memberA,
			req:   &CreateTaskRequest{Title: "Launch", AssignedTo: ptr("ghost")},
			setupMocks: func(f *fixture) {
				f.storage.EXPECT().GetProject(gomock.Any(), "p-1").Return(projectA, nil)
				f.storage.EXPECT().GetUser(gomock.Any(), "ghost").Return(nil, storage.ErrNotFound)
			},
			errKind: ptr(apperror.KindValidation),
			errMsg:  "Assigned user must belong to the same tenant",
		},
		{
			name:  "missing title",
			actor: memberA,
			req:   &CreateTaskRequest{},
			setupMocks: func(f *fixture) {
				f.storage.EXPECT().GetProject(gomock.Any(), "p-1").Return(projectA, nil)
			},
			errKind: ptr(apperror.KindValidation),
			errMsg:  "Title is required",
		},
		{
			name:  "invalid priority",
			actor: memberA,
			req:   &CreateTaskRequest{Title: "Launch", Priority: "urgent"},
			setupMocks: func(f *fixture) {
				f.storage.EXPECT().GetProject(gomock.Any(), "p-1").Return(projectA, nil)
			},
			errKind: ptr(apperror.KindValidation),
			errMsg:  "Invalid priority",
		},
		{
			name:  "project of another tenant",
			actor: memberB,
			req:   &CreateTaskRequest{Title: "Launch"},
			setupMocks: func(f *fixture) {
				f.storage.EXPECT().GetProject(gomock.Any(), "p-1").Return(projectA, nil)
			},
			errKind: ptr(apperror.KindForbidden),
			errMsg:  "Forbidden: tenant mismatch",
		},
		{
			name:  "missing project",
			actor: memberA,
			req:   &CreateTaskRequest{Title: "Launch"},
			setupMocks: func(f *fixture) {
				f.storage.EXPECT().GetProject(gomock.Any(), "p-1").Return(nil, storage.ErrNotFound)
			},
			errKind: ptr(apperror.KindNotFound),
			errMsg:  "Project not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			tt.setupMocks(f)

			task, err := f.svc.CreateTask(as(tt.actor), "p-1", tt.req)

			if tt.errKind != nil {
				if !apperror.Is(err, *tt.errKind) || err.Error() != tt.errMsg {
					t.Fatalf("expected %s %q, got %v", *tt.errKind, tt.errMsg, err)
				}
				if f.entries != nil {
					t.Error("rejected creation must not be audited")
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if task.ID != "task-1" {
				t.Errorf("unexpected task %+v", task)
			}

			if len(f.entries) != 1 || f.entries[0].TableName != "tasks" || f.entries[0].Metadata["title"] != "Launch" {
				t.Errorf("unexpected audit entries %+v", f.entries)
			}
		})
	}
}

func TestService_ListTasks(t *testing.T) {
	t.Run("filters and clamps paging", func(t *testing.T) {
		f := newFixture(t)

		filter := types.TaskFilter{Status: ptr(types.TaskStatusTodo), AssignedTo: ptr(""), Search: "launch"}

		f.storage.EXPECT().GetProject(gomock.Any(), "p-1").Return(projectA, nil)
		f.storage.EXPECT().ListTasks(gomock.Any(), "t-a", "p-1", filter, uint64(100), uint64(100)).Return([]*types.Task{taskA()}, nil)
		f.storage.EXPECT().CountTasks(gomock.Any(), "t-a", "p-1", filter).Return(int64(101), nil)

		page, err := f.svc.ListTasks(as(memberA), "p-1", &ListTasksParams{
			Status:     ptr(types.TaskStatusTodo),
			AssignedTo: ptr(""),
			Search:     ptr(" launch "),
			Page:       ptr(int64(2)),
			PageSize:   ptr(int64(500)),
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if page.Page != 2 || page.PageSize != 100 || page.Total != 101 || len(page.Data) != 1 {
			t.Errorf("unexpected page %+v", page)
		}
	})

	t.Run("defaults", func(t *testing.T) {
		f := newFixture(t)

		f.storage.EXPECT().GetProject(gomock.Any(), "p-1").Return(projectA, nil)
		f.storage.EXPECT().ListTasks(gomock.Any(), "t-a", "p-1", types.TaskFilter{}, uint64(20), uint64(0)).Return([]*types.Task{}, nil)
		f.storage.EXPECT().CountTasks(gomock.Any(), "t-a", "p-1", types.TaskFilter{}).Return(int64(0), nil)

		page, err := f.svc.ListTasks(as(superAdmin), "p-1", &ListTasksParams{Page: ptr(int64(-3))})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if page.Page != 1 || page.PageSize != 20 {
			t.Errorf("unexpected paging %d/%d", page.Page, page.PageSize)
		}
	})

	t.Run("invalid status filter", func(t *testing.T) {
		f := newFixture(t)
		f.storage.EXPECT().GetProject(gomock.Any(), "p-1").Return(projectA, nil)

		_, err := f.svc.ListTasks(as(memberA), "p-1", &ListTasksParams{Status: ptr(types.TaskStatus("done"))})
		if !apperror.Is(err, apperror.KindValidation) || err.Error() != "Invalid status" {
			t.Errorf("expected invalid status, got %v", err)
		}
	})

	t.Run("malformed assignee filter", func(t *testing.T) {
		f := newFixture(t)
		f.storage.EXPECT().GetProject(gomock.Any(), "p-1").Return(projectA, nil)

		_, err := f.svc.ListTasks(as(memberA), "p-1", &ListTasksParams{AssignedTo: ptr("not-a-uuid")})
		if !apperror.Is(err, apperror.KindValidation) || err.Error() != "Invalid assignedTo" {
			t.Errorf("expected invalid assignedTo, got %v", err)
		}
	})

	t.Run("assignee filter by id", func(t *testing.T) {
		f := newFixture(t)

		id := "0190c2a4-7b1e-7d2f-8a3b-4c5d6e7f8091"
		filter := types.TaskFilter{AssignedTo: &id}

		f.storage.EXPECT().GetProject(gomock.Any(), "p-1").Return(projectA, nil)
		f.storage.EXPECT().ListTasks(gomock.Any(), "t-a", "p-1", filter, uint64(20), uint64(0)).Return([]*types.Task{}, nil)
		f.storage.EXPECT().CountTasks(gomock.Any(), "t-a", "p-1", filter).Return(int64(0), nil)

		if _, err := f.svc.ListTasks(as(memberA), "p-1", &ListTasksParams{AssignedTo: &id}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("foreign tenant", func(t *testing.T) {
		f := newFixture(t)
		f.storage.EXPECT().GetProject(gomock.Any(), "p-1").Return(projectA, nil)

		_, err := f.svc.ListTasks(as(memberB), "p-1", &ListTasksParams{})
		if !apperror.Is(err, apperror.KindForbidden) {
			t.Errorf("expected forbidden, got %v", err)
		}
	})
}

func TestService_UpdateTaskStatus(t *testing.T) {
	t.Run("any member", func(t *testing.T) {
		f := newFixture(t)
		f.storage.EXPECT().GetTask(gomock.Any(), "task-1").Return(taskA(), nil)
		f.resolver.EXPECT().TaskTenant(gomock.Any(), gomock.Any()).Return("t-a", nil)
		f.storage.EXPECT().UpdateTask(gomock.Any(), "task-1", map[string]interface{}{"status": types.TaskStatusCompleted}).
			Return(&types.Task{ID: "task-1", Status: types.TaskStatusCompleted}, nil)

		task, err := f.svc.UpdateTaskStatus(as(otherA), "task-1", types.TaskStatusCompleted)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if task.Status != types.TaskStatusCompleted {
			t.Errorf("unexpected status %s", task.Status)
		}

		if len(f.entries) != 1 || *f.entries[0].TenantID != "t-a" || f.entries[0].Action != types.AuditUpdate {
			t.Errorf("unexpected audit entries %+v", f.entries)
		}
	})

	t.Run("invalid status", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.svc.UpdateTaskStatus(as(memberA), "task-1", "done")
		if !apperror.Is(err, apperror.KindValidation) {
			t.Errorf("expected validation error, got %v", err)
		}
	})

	t.Run("integrity violation surfaces", func(t *testing.T) {
		f := newFixture(t)
		f.storage.EXPECT().GetTask(gomock.Any(), "task-1").Return(taskA(), nil)
		f.resolver.EXPECT().TaskTenant(gomock.Any(), gomock.Any()).Return("", apperror.Internal(nil, "data integrity violation"))

		_, err := f.svc.UpdateTaskStatus(as(memberA), "task-1", types.TaskStatusCompleted)
		if apperror.KindOf(err) != apperror.KindInternal {
			t.Errorf("expected internal error, got %v", err)
		}
	})
}

func TestService_UpdateTask(t *testing.T) {
	tests := []struct {
		name       string
		actor      identity.Identity
		req        *UpdateTaskRequest
		setupMocks func(*fixture)
		errKind    *apperror.Kind
		errMsg     string
	}{
		{
			name:  "creator unassigns and retitles",
			actor: memberA,
			req:   &UpdateTaskRequest{Title: ptr("Land"), AssignedTo: types.Null[string]()},
			setupMocks: func(f *fixture) {
				f.storage.EXPECT().UpdateTask(gomock.Any(), "task-1", map[string]interface{}{
					"title": "Land", "assigned_to": (*string)(nil),
				}).Return(taskA(), nil)
			},
		},
		{
			name:  "admin reassigns",
			actor: adminA,
			req:   &UpdateTaskRequest{AssignedTo: types.Some("other-a"), Priority: ptr(types.TaskPriorityLow)},
			setupMocks: func(f *fixture) {
				f.storage.EXPECT().GetUser(gomock.Any(), "other-a").Return(&types.User{ID: "other-a", TenantID: ptr("t-a")}, nil)
				f.storage.EXPECT().UpdateTask(gomock.Any(), "task-1", map[string]interface{}{
					"assigned_to": ptr("other-a"), "priority": types.TaskPriorityLow,
				}).Return(taskA(), nil)
			},
		},
		{
			name:       "non creator member",
			actor:      otherA,
			req:        &UpdateTaskRequest{Title: ptr("Land")},
			setupMocks: func(*fixture) {},
			errKind:    ptr(apperror.KindForbidden),
			errMsg:     "Forbidden",
		},
		{
			name:       "nothing recognized",
			actor:      memberA,
			req:        &UpdateTaskRequest{},
			setupMocks: func(*fixture) {},
			errKind:    ptr(apperror.KindValidation),
			errMsg:     "No fields to update",
		},
		{
			name:       "blank title",
			actor:      memberA,
			req:        &UpdateTaskRequest{Title: ptr("")},
			setupMocks: func(*fixture) {},
			errKind:    ptr(apperror.KindValidation),
			errMsg:     "Title is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.storage.EXPECT().GetTask(gomock.Any(), "task-1").Return(taskA(), nil)
			f.resolver.EXPECT().TaskTenant(gomock.Any(), gomock.Any()).Return("t-a", nil)
			tt.setupMocks(f)

			_, err := f.svc.UpdateTask(as(tt.actor), "task-1", tt.req)

			if tt.errKind != nil {
				if !apperror.Is(err, *tt.errKind) || err.Error() != tt.errMsg {
					t.Fatalf("expected %s %q, got %v", *tt.errKind, tt.errMsg, err)
				}
				if f.entries != nil {
					t.Error("rejected update must not be audited")
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if len(f.entries) != 1 || f.entries[0].Metadata["before"] == nil {
				t.Errorf("unexpected audit entries %+v", f.entries)
			}
		})
	}
}

func TestService_DeleteTask(t *testing.T) {
	t.Run("creator deletes", func(t *testing.T) {
		f := newFixture(t)
		f.storage.EXPECT().GetTask(gomock.Any(), "task-1").Return(taskA(), nil)
		f.resolver.EXPECT().TaskTenant(gomock.Any(), gomock.Any()).Return("t-a", nil)
		f.storage.EXPECT().DeleteTask(gomock.Any(), "task-1").Return(nil)

		deleted, err := f.svc.DeleteTask(as(memberA), "task-1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if *deleted != (types.Deleted{ID: "task-1", Title: "Launch"}) {
			t.Errorf("unexpected result %+v", deleted)
		}

		if len(f.entries) != 1 || f.entries[0].Metadata["status"] != types.TaskStatusTodo {
			t.Errorf("unexpected audit entries %+v", f.entries)
		}
	})

	t.Run("missing task", func(t *testing.T) {
		f := newFixture(t)
		f.storage.EXPECT().GetTask(gomock.Any(), "task-x").Return(nil, storage.ErrNotFound)

		_, err := f.svc.DeleteTask(as(memberA), "task-x")
		if !apperror.Is(err, apperror.KindNotFound) || err.Error() != "Task not found" {
			t.Errorf("expected not found, got %v", err)
		}
	})

	t.Run("super admin deletes anywhere", func(t *testing.T) {
		f := newFixture(t)
		f.storage.EXPECT().GetTask(gomock.Any(), "task-1").Return(taskA(), nil)
		f.resolver.EXPECT().TaskTenant(gomock.Any(), gomock.Any()).Return("t-a", nil)
		f.storage.EXPECT().DeleteTask(gomock.Any(), "task-1").Return(nil)

		if _, err := f.svc.DeleteTask(as(superAdmin), "task-1"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})
}
