// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package authorization

import (
	"slices"

	"github.com/canonical/project-hub/internal/apperror"
	"github.com/canonical/project-hub/internal/identity"
	"github.com/canonical/project-hub/internal/types"
)

const (
	msgForbidden       = "Forbidden"
	msgTenantMismatch  = "Forbidden: tenant mismatch"
	msgRestrictedField = "Forbidden: restricted field for role"
	msgSelfDelete      = "Forbidden: cannot delete yourself"
	msgTenantRequired  = "Forbidden: tenant required"
)

type check func(identity.Identity, Resource) bool

type rule func(identity.Identity, Resource) error

func isSuper(a identity.Identity, _ Resource) bool {
	return a.Role == types.RoleSuperAdmin
}

func hasTenant(a identity.Identity, _ Resource) bool {
	return a.TenantID != ""
}

func isMember(a identity.Identity, r Resource) bool {
	return a.TenantID != "" && a.TenantID == r.TenantID
}

func isTenantAdmin(a identity.Identity, r Resource) bool {
	return a.Role == types.RoleTenantAdmin && isMember(a, r)
}

func isAdminRole(a identity.Identity, _ Resource) bool {
	return a.Role == types.RoleTenantAdmin || a.Role == types.RoleSuperAdmin
}

func isOwner(a identity.Identity, r Resource) bool {
	return r.OwnerID != "" && a.UserID == r.OwnerID
}

func isSelf(a identity.Identity, r Resource) bool {
	return r.ID != "" && a.UserID == r.ID
}

func or(checks ...check) check {
	return func(a identity.Identity, r Resource) bool {
		for _, c := range checks {
			if c(a, r) {
				return true
			}
		}
		return false
	}
}

// require denies with msg unless c holds.
func require(msg string, c check) rule {
	return func(a identity.Identity, r Resource) error {
		if c(a, r) {
			return nil
		}
		return apperror.Forbidden("%s", msg)
	}
}

// forbid denies with msg when c holds.
func forbid(msg string, c check) rule {
	return func(a identity.Identity, r Resource) error {
		if c(a, r) {
			return apperror.Forbidden("%s", msg)
		}
		return nil
	}
}

func fieldsWithin(allowed []string) rule {
	return func(_ identity.Identity, r Resource) error {
		for _, f := range r.Fields {
			if !slices.Contains(allowed, f) {
				return apperror.Forbidden("%s", msgRestrictedField)
			}
		}
		return nil
	}
}

// all stops at the first denial.
func all(rules ...rule) rule {
	return func(a identity.Identity, r Resource) error {
		for _, fn := range rules {
			if err := fn(a, r); err != nil {
				return err
			}
		}
		return nil
	}
}

type when struct {
	cond check
	then rule
}

// firstMatch applies the rule of the first matching case, denying with msg when none match.
func firstMatch(msg string, cases ...when) rule {
	return func(a identity.Identity, r Resource) error {
		for _, c := range cases {
			if c.cond(a, r) {
				return c.then(a, r)
			}
		}
		return apperror.Forbidden("%s", msg)
	}
}

var (
	memberOrSuper  = require(msgTenantMismatch, or(isSuper, isMember))
	creatorOrAdmin = all(
		memberOrSuper,
		require(msgForbidden, or(isOwner, isTenantAdmin, isSuper)),
	)
)

var policy = map[types.EntityKind]map[Action]rule{
	types.KindTenant: {
		ActionRead:    require(msgForbidden, or(isSuper, isMember)),
		ActionListAll: require(msgForbidden, isSuper),
		ActionUpdate: firstMatch(msgForbidden,
			when{isSuper, fieldsWithin(superAdminTenantFields)},
			when{isTenantAdmin, fieldsWithin(tenantAdminTenantFields)},
		),
	},
	types.KindUser: {
		ActionList: memberOrSuper,
		ActionCreate: all(
			require("Forbidden: only tenant_admin can create users", isAdminRole),
			memberOrSuper,
		),
		ActionUpdate: firstMatch(msgForbidden,
			when{isSelf, fieldsWithin(selfUserFields)},
			when{isSuper, fieldsWithin(adminUserFields)},
			when{isTenantAdmin, fieldsWithin(adminUserFields)},
		),
		ActionDelete: all(
			forbid(msgSelfDelete, isSelf),
			require("Forbidden: only tenant_admin can delete users", isAdminRole),
			memberOrSuper,
		),
	},
	types.KindProject: {
		ActionRead: memberOrSuper,
		ActionList: all(
			require(msgTenantRequired, or(isSuper, hasTenant)),
			memberOrSuper,
		),
		ActionCreate: all(
			require(msgTenantRequired, hasTenant),
			memberOrSuper,
		),
		ActionUpdate: creatorOrAdmin,
		ActionDelete: creatorOrAdmin,
	},
	types.KindTask: {
		ActionRead:         memberOrSuper,
		ActionList:         memberOrSuper,
		ActionCreate:       memberOrSuper,
		ActionUpdateStatus: memberOrSuper,
		ActionUpdate:       creatorOrAdmin,
		ActionDelete:       creatorOrAdmin,
	},
}

// Evaluate decides whether actor may perform action on res. It returns nil or a
// Forbidden error and never touches storage. Unknown roles, kinds and actions are denied.
func Evaluate(actor identity.Identity, action Action, res Resource) error {
	if !actor.Role.Valid() || actor.UserID == "" {
		return apperror.Forbidden("%s", msgForbidden)
	}

	fn, ok := policy[res.Kind][action]
	if !ok {
		return apperror.Forbidden("%s", msgForbidden)
	}

	return fn(actor, res)
}
