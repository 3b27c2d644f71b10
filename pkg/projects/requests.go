// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package projects

import (
	"github.com/canonical/project-hub/internal/types"
)

type CreateProjectRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

// UpdateProjectRequest clears the description on an explicit null.
type UpdateProjectRequest struct {
	Name        *string                `json:"name"`
	Description types.Optional[string] `json:"description"`
	Status      *types.ProjectStatus   `json:"status"`
}

func (r *UpdateProjectRequest) changes() map[string]interface{} {
	c := make(map[string]interface{})

	if r.Name != nil {
		c["name"] = *r.Name
	}
	if r.Description.Set {
		c["description"] = r.Description.Value
	}
	if r.Status != nil {
		c["status"] = *r.Status
	}

	return c
}
