// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package users

import (
	"github.com/canonical/project-hub/internal/authorization"
	"github.com/canonical/project-hub/internal/types"
)

type CreateUserRequest struct {
	Email     string     `json:"email" validate:"required,email"`
	Password  string     `json:"password" validate:"required"`
	Role      types.Role `json:"role"`
	FirstName *string    `json:"firstName"`
	LastName  *string    `json:"lastName"`
}

// UpdateUserRequest distinguishes an absent name from an explicit null,
// which clears it.
type UpdateUserRequest struct {
	FirstName types.Optional[string] `json:"firstName"`
	LastName  types.Optional[string] `json:"lastName"`
	Role      *types.Role            `json:"role"`
}

func (r *UpdateUserRequest) changes() map[string]interface{} {
	c := make(map[string]interface{})

	if r.FirstName.Set {
		c[authorization.FieldFirstName] = r.FirstName.Value
	}
	if r.LastName.Set {
		c[authorization.FieldLastName] = r.LastName.Value
	}
	if r.Role != nil {
		c[authorization.FieldRole] = *r.Role
	}

	return c
}
