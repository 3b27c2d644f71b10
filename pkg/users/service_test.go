// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package users

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
	"github.com/canonical/project-hub/internal/validation"
)

//go:generate mockgen -build_flags=--mod=mod -package users -destination ./mock_users.go -source=./interfaces.go

type fixture struct {
	storage *MockStorageInterface
	tx      *MockTransactorInterface
	quota   *MockQuotaInterface
	hasher  *MockHasherInterface
	svc     *Service

	entries []*types.AuditEntry
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	ctrl := gomock.NewController(t)
	logger := logging.NewNoopLogger()
	tracer := tracing.NewNoopTracer()
	monitor := monitoring.NewNoopMonitor("test", logger)

	f := &fixture{
		storage: NewMockStorageInterface(ctrl),
		tx:      NewMockTransactorInterface(ctrl),
		quota:   NewMockQuotaInterface(ctrl),
		hasher:  NewMockHasherInterface(ctrl),
	}

	f.svc = NewService(
		f.storage, f.tx,
		authorization.NewAuthorizer(tracer, monitor, logger),
		f.quota, f.hasher, validation.NewValidator(),
		tracer, monitor, logger,
	)

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
	adminB     = identity.Identity{UserID: "admin-b", TenantID: "t-b", Role: types.RoleTenantAdmin}

	userMemberA = &types.User{ID: "member-a", TenantID: ptr("t-a"), Email: "member@acme.test", Role: types.RoleUser, PasswordHash: "hash"}
	userAdminA  = &types.User{ID: "admin-a", TenantID: ptr("t-a"), Email: "admin@acme.test", Role: types.RoleTenantAdmin}
)

func TestService_CreateUser(t *testing.T) {
	valid := func() *CreateUserRequest {
		return &CreateUserRequest{Email: "new@acme.test", Password: "pw"}
	}

	tests := []struct {
		name       string
		actor      identity.Identity
		tenantID   string
		req        func() *CreateUserRequest
		setupMocks func(*fixture)
		errKind    *apperror.Kind
		errMsg     string
	}{
		{
			name:     "tenant admin creates member",
			actor:    adminA,
			tenantID: "t-a",
			req:      valid,
			setupMocks: func(f *fixture) {
				f.hasher.EXPECT().Hash("pw").Return("hash", nil)
				f.quota.EXPECT().Check(gomock.Any(), "t-a", types.KindUser).Return(nil)
				f.storage.EXPECT().GetUserByEmail(gomock.Any(), ptr("t-a"), "new@acme.test").Return(nil, storage.ErrNotFound)
				f.storage.EXPECT().CreateUser(gomock.Any(), &types.User{
					TenantID: ptr("t-a"), Email: "new@acme.test", PasswordHash: "hash", Role: types.RoleUser,
				}).Return(&types.User{ID: "u-new", TenantID: ptr("t-a"), Email: "new@acme.test", Role: types.RoleUser}, nil)
			},
		},
		{
			name:     "super admin creates in any tenant",
			actor:    superAdmin,
			tenantID: "t-b",
			req: func() *CreateUserRequest {
				r := valid()
				r.Role = types.RoleTenantAdmin
				return r
			},
			setupMocks: func(f *fixture) {
				f.hasher.EXPECT().Hash("pw").Return("hash", nil)
				f.quota.EXPECT().Check(gomock.Any(), "t-b", types.KindUser).Return(nil)
				f.storage.EXPECT().GetUserByEmail(gomock.Any(), ptr("t-b"), "new@acme.test").Return(nil, storage.ErrNotFound)
				f.storage.EXPECT().CreateUser(gomock.Any(), gomock.Any()).Return(&types.User{ID: "u-new", TenantID: ptr("t-b"), Role: types.RoleTenantAdmin}, nil)
			},
		},
		{
			name:       "member cannot create",
			actor:      memberA,
			tenantID:   "t-a",
			req:        valid,
			setupMocks: func(*fixture) {},
			errKind:    ptr(apperror.KindForbidden),
			errMsg:     "Forbidden: only tenant_admin can create users",
		},
		{
			name:       "admin of another tenant",
			actor:      adminB,
			tenantID:   "t-a",
			req:        valid,
			setupMocks: func(*fixture) {},
			errKind:    ptr(apperror.KindForbidden),
			errMsg:     "Forbidden: tenant mismatch",
		},
		{
			name:       "missing credentials",
			actor:      adminA,
			tenantID:   "t-a",
			req:        func() *CreateUserRequest { return &CreateUserRequest{} },
			setupMocks: func(*fixture) {},
			errKind:    ptr(apperror.KindValidation),
			errMsg:     "Missing required fields: email, password",
		},
		{
			name:     "super admin role is not assignable",
			actor:    adminA,
			tenantID: "t-a",
			req: func() *CreateUserRequest {
				r := valid()
				r.Role = types.RoleSuperAdmin
				return r
			},
			setupMocks: func(*fixture) {},
			errKind:    ptr(apperror.KindValidation),
			errMsg:     "Invalid role",
		},
		{
			name:     "quota reached",
			actor:    adminA,
			tenantID: "t-a",
			req:      valid,
			setupMocks: func(f *fixture) {
				f.hasher.EXPECT().Hash("pw").Return("hash", nil)
				f.quota.EXPECT().Check(gomock.Any(), "t-a", types.KindUser).Return(apperror.Conflict("Max users limit reached for this tenant"))
			},
			errKind: ptr(apperror.KindConflict),
			errMsg:  "Max users limit reached for this tenant",
		},
		{
			name:     "email taken",
			actor:    adminA,
			tenantID: "t-a",
			req:      valid,
			setupMocks: func(f *fixture) {
				f.hasher.EXPECT().Hash("pw").Return("hash", nil)
				f.quota.EXPECT().Check(gomock.Any(), "t-a", types.KindUser).Return(nil)
				f.storage.EXPECT().GetUserByEmail(gomock.Any(), ptr("t-a"), "new@acme.test").Return(userMemberA, nil)
			},
			errKind: ptr(apperror.KindConflict),
			errMsg:  msgEmailTaken,
		},
		{
			name:     "email race lost on insert",
			actor:    adminA,
			tenantID: "t-a",
			req:      valid,
			setupMocks: func(f *fixture) {
				f.hasher.EXPECT().Hash("pw").Return("hash", nil)
				f.quota.EXPECT().Check(gomock.Any(), "t-a", types.KindUser).Return(nil)
				f.storage.EXPECT().GetUserByEmail(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, storage.ErrNotFound)
				f.storage.EXPECT().CreateUser(gomock.Any(), gomock.Any()).Return(nil, storage.ErrDuplicateKey)
			},
			errKind: ptr(apperror.KindConflict),
			errMsg:  msgEmailTaken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			tt.setupMocks(f)

			u, err := f.svc.CreateUser(as(tt.actor), tt.tenantID, tt.req())

			if tt.errKind != nil {
				if !apperror.Is(err, *tt.errKind) {
					t.Fatalf("expected %s error, got %v", *tt.errKind, err)
				}
				if err.Error() != tt.errMsg {
					t.Errorf("expected message %q, got %q", tt.errMsg, err.Error())
				}
				if f.entries != nil {
					t.Error("rejected creation must not be audited")
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if u.ID != "u-new" {
				t.Errorf("unexpected user %+v", u)
			}

			if len(f.entries) != 1 {
				t.Fatalf("expected one audit entry, got %d", len(f.entries))
			}

			e := f.entries[0]
			if e.Action != types.AuditCreate || e.RecordID != "u-new" || *e.TenantID != tt.tenantID || *e.ActorUserID != tt.actor.UserID {
				t.Errorf("unexpected audit entry %+v", e)
			}
		})
	}
}

func TestService_ListUsers(t *testing.T) {
	t.Run("member lists own tenant", func(t *testing.T) {
		f := newFixture(t)
		f.storage.EXPECT().ListUsers(gomock.Any(), "t-a").Return([]*types.User{userAdminA, userMemberA}, nil)

		users, err := f.svc.ListUsers(as(memberA), "t-a")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(users) != 2 {
			t.Errorf("expected 2 users, got %d", len(users))
		}
	})

	t.Run("super admin with a malformed tenant id gets an empty list", func(t *testing.T) {
		f := newFixture(t)
		f.storage.EXPECT().ListUsers(gomock.Any(), "not-a-uuid").Return([]*types.User{}, nil)

		users, err := f.svc.ListUsers(as(superAdmin), "not-a-uuid")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(users) != 0 {
			t.Errorf("expected no users, got %d", len(users))
		}
	})

	t.Run("other tenant is forbidden", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.svc.ListUsers(as(adminB), "t-a")
		if !apperror.Is(err, apperror.KindForbidden) || err.Error() != "Forbidden: tenant mismatch" {
			t.Errorf("expected tenant mismatch, got %v", err)
		}
	})
}

func TestService_UpdateUser(t *testing.T) {
	tests := []struct {
		name       string
		actor      identity.Identity
		target     string
		req        *UpdateUserRequest
		setupMocks func(*fixture)
		errKind    *apperror.Kind
		errMsg     string
	}{
		{
			name:   "self rename and clear last name",
			actor:  memberA,
			target: "member-a",
			req:    &UpdateUserRequest{FirstName: types.Some("Grace"), LastName: types.Null[string]()},
			setupMocks: func(f *fixture) {
				f.storage.EXPECT().GetUser(gomock.Any(), "member-a").Return(userMemberA, nil)
				f.storage.EXPECT().UpdateUser(gomock.Any(), "member-a", map[string]interface{}{
					"first_name": ptr("Grace"), "last_name": (*string)(nil),
				}).Return(userMemberA, nil)
			},
		},
		{
			name:   "self role change is restricted",
			actor:  memberA,
			target: "member-a",
			req:    &UpdateUserRequest{Role: ptr(types.RoleTenantAdmin)},
			setupMocks: func(f *fixture) {
				f.storage.EXPECT().GetUser(gomock.Any(), "member-a").Return(userMemberA, nil)
			},
			errKind: ptr(apperror.KindForbidden),
			errMsg:  "Forbidden: restricted field for role",
		},
		{
			name:   "tenant admin promotes member",
			actor:  adminA,
			target: "member-a",
			req:    &UpdateUserRequest{Role: ptr(types.RoleTenantAdmin)},
			setupMocks: func(f *fixture) {
				f.storage.EXPECT().GetUser(gomock.Any(), "member-a").Return(userMemberA, nil)
				f.storage.EXPECT().UpdateUser(gomock.Any(), "member-a", map[string]interface{}{"role": types.RoleTenantAdmin}).Return(userMemberA, nil)
			},
		},
		{
			name:   "member cannot update others",
			actor:  memberA,
			target: "admin-a",
			req:    &UpdateUserRequest{FirstName: types.Some("x")},
			setupMocks: func(f *fixture) {
				f.storage.EXPECT().GetUser(gomock.Any(), "admin-a").Return(userAdminA, nil)
			},
			errKind: ptr(apperror.KindForbidden),
		},
		{
			name:   "admin of another tenant",
			actor:  adminB,
			target: "member-a",
			req:    &UpdateUserRequest{FirstName: types.Some("x")},
			setupMocks: func(f *fixture) {
				f.storage.EXPECT().GetUser(gomock.Any(), "member-a").Return(userMemberA, nil)
			},
			errKind: ptr(apperror.KindForbidden),
		},
		{
			name:   "invalid role",
			actor:  superAdmin,
			target: "member-a",
			req:    &UpdateUserRequest{Role: ptr(types.RoleSuperAdmin)},
			setupMocks: func(f *fixture) {
				f.storage.EXPECT().GetUser(gomock.Any(), "member-a").Return(userMemberA, nil)
			},
			errKind: ptr(apperror.KindValidation),
			errMsg:  "Invalid role",
		},
		{
			name:   "nothing to update",
			actor:  adminA,
			target: "member-a",
			req:    &UpdateUserRequest{},
			setupMocks: func(f *fixture) {
				f.storage.EXPECT().GetUser(gomock.Any(), "member-a").Return(userMemberA, nil)
			},
			errKind: ptr(apperror.KindValidation),
			errMsg:  "No fields to update",
		},
		{
			name:   "missing user",
			actor:  adminA,
			target: "ghost",
			req:    &UpdateUserRequest{FirstName: types.Some("x")},
			setupMocks: func(f *fixture) {
				f.storage.EXPECT().GetUser(gomock.Any(), "ghost").Return(nil, storage.ErrNotFound)
			},
			errKind: ptr(apperror.KindNotFound),
			errMsg:  "User not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			tt.setupMocks(f)

			_, err := f.svc.UpdateUser(as(tt.actor), tt.target, tt.req)

			if tt.errKind != nil {
				if !apperror.Is(err, *tt.errKind) {
					t.Fatalf("expected %s error, got %v", *tt.errKind, err)
				}
				if tt.errMsg != "" && err.Error() != tt.errMsg {
					t.Errorf("expected message %q, got %q", tt.errMsg, err.Error())
				}
				if f.entries != nil {
					t.Error("rejected update must not be audited")
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if len(f.entries) != 1 || f.entries[0].Action != types.AuditUpdate || *f.entries[0].TenantID != "t-a" {
				t.Errorf("unexpected audit entries %+v", f.entries)
			}
		})
	}
}

func TestService_DeleteUser(t *testing.T) {
	tests := []struct {
		name       string
		actor      identity.Identity
		target     string
		setupMocks func(*fixture)
		errKind    *apperror.Kind
		errMsg     string
	}{
		{
			name:   "tenant admin deletes member",
			actor:  adminA,
			target: "member-a",
			setupMocks: func(f *fixture) {
				f.storage.EXPECT().GetUser(gomock.Any(), "member-a").Return(userMemberA, nil)
				f.storage.EXPECT().DeleteUser(gomock.Any(), "member-a").Return(nil)
			},
		},
		{
			name:   "self delete is forbidden",
			actor:  adminA,
			target: "admin-a",
			setupMocks: func(f *fixture) {
				f.storage.EXPECT().GetUser(gomock.Any(), "admin-a").Return(userAdminA, nil)
			},
			errKind: ptr(apperror.KindForbidden),
			errMsg:  "Forbidden: cannot delete yourself",
		},
		{
			name:   "member cannot delete",
			actor:  memberA,
			target: "admin-a",
			setupMocks: func(f *fixture) {
				f.storage.EXPECT().GetUser(gomock.Any(), "admin-a").Return(userAdminA, nil)
			},
			errKind: ptr(apperror.KindForbidden),
			errMsg:  "Forbidden: only tenant_admin can delete users",
		},
		{
			name:   "cross tenant delete",
			actor:  adminB,
			target: "member-a",
			setupMocks: func(f *fixture) {
				f.storage.EXPECT().GetUser(gomock.Any(), "member-a").Return(userMemberA, nil)
			},
			errKind: ptr(apperror.KindForbidden),
			errMsg:  "Forbidden: tenant mismatch",
		},
		{
			name:   "missing user",
			actor:  superAdmin,
			target: "ghost",
			setupMocks: func(f *fixture) {
				f.storage.EXPECT().GetUser(gomock.Any(), "ghost").Return(nil, storage.ErrNotFound)
			},
			errKind: ptr(apperror.KindNotFound),
			errMsg:  "User not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			tt.setupMocks(f)

			deleted, err := f.svc.DeleteUser(as(tt.actor), tt.target)

			if tt.errKind != nil {
				if !apperror.Is(err, *tt.errKind) {
					t.Fatalf("expected %s error, got %v", *tt.errKind, err)
				}
				if err.Error() != tt.errMsg {
					t.Errorf("expected message %q, got %q", tt.errMsg, err.Error())
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if *deleted != (types.Deleted{ID: "member-a", Email: "member@acme.test"}) {
				t.Errorf("unexpected result %+v", deleted)
			}

			if len(f.entries) != 1 {
				t.Fatalf("expected one audit entry, got %d", len(f.entries))
			}

			if f.entries[0].Action != types.AuditDelete || f.entries[0].Metadata["deletedUser"] == nil {
				t.Errorf("unexpected audit entry %+v", f.entries[0])
			}
		})
	}
}
