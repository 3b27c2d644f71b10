// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package tenant

import (
	"github.com/canonical/project-hub/internal/authorization"
	"github.com/canonical/project-hub/internal/types"
)

type AdminRequest struct {
	Email     string  `json:"email" validate:"required,email"`
	Password  string  `json:"password" validate:"required"`
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
}

type RegisterTenantRequest struct {
	Name      string       `json:"name" validate:"required"`
	Subdomain string       `json:"subdomain" validate:"required,subdomain"`
	Plan      types.Plan   `json:"plan"`
	Admin     AdminRequest `json:"admin" validate:"required"`
}

// Registration is the outcome of a self-service signup.
type Registration struct {
	Token  string        `json:"token"`
	User   *types.User   `json:"user"`
	Tenant *types.Tenant `json:"tenant"`
}

type UpdateTenantRequest struct {
	Name        *string             `json:"name"`
	Plan        *types.Plan         `json:"plan"`
	Status      *types.TenantStatus `json:"status"`
	MaxUsers    *int                `json:"max_users"`
	MaxProjects *int                `json:"max_projects"`
}

// changes returns the requested columns, keyed the way the storage and the
// permission evaluator name them.
func (r *UpdateTenantRequest) changes() map[string]interface{} {
	c := make(map[string]interface{})

	if r.Name != nil {
		c[authorization.FieldName] = *r.Name
	}
	if r.Plan != nil {
		c[authorization.FieldPlan] = *r.Plan
	}
	if r.Status != nil {
		c[authorization.FieldStatus] = *r.Status
	}
	if r.MaxUsers != nil {
		c[authorization.FieldMaxUsers] = *r.MaxUsers
	}
	if r.MaxProjects != nil {
		c[authorization.FieldMaxProjects] = *r.MaxProjects
	}

	return c
}
