// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package identity

import (
	"context"

	"github.com/canonical/project-hub/internal/apperror"
	"github.com/canonical/project-hub/internal/types"
)

// Identity is the authenticated caller of a request.
// TenantID is empty for tenant-less super admins.
type Identity struct {
	UserID   string
	TenantID string
	Role     types.Role
}

func (i Identity) HasTenant() bool {
	return i.TenantID != ""
}

func (i Identity) IsSuperAdmin() bool {
	return i.Role == types.RoleSuperAdmin
}

// TenantPtr returns the tenant as a nullable column value.
func (i Identity) TenantPtr() *string {
	if i.TenantID == "" {
		return nil
	}
	t := i.TenantID
	return &t
}

type contextKey struct{}

var identityContextKey = contextKey{}

func NewContext(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityContextKey, id)
}

// FromContext returns the caller identity, false when the request is anonymous.
func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityContextKey).(Identity)
	if !ok || id.UserID == "" {
		return Identity{}, false
	}
	return id, true
}

// Require returns the caller identity or an Unauthenticated error.
func Require(ctx context.Context) (Identity, error) {
	id, ok := FromContext(ctx)
	if !ok {
		return Identity{}, apperror.Unauthenticated("Unauthorized")
	}
	return id, nil
}
