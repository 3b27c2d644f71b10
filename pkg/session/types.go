// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package session

import (
	"github.com/canonical/project-hub/internal/types"
)

// LoginRequest authenticates against a tenant when Subdomain is set, against
// the tenant-less accounts otherwise.
type LoginRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	Subdomain string `json:"subdomain"`
}

type LoginResult struct {
	Token string      `json:"token"`
	User  *types.User `json:"user"`
}

// Profile is the caller's account, Tenant is nil for super admins.
type Profile struct {
	User   *types.User   `json:"user"`
	Tenant *types.Tenant `json:"tenant"`
}
