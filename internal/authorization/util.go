// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package authorization

import (
	"github.com/canonical/project-hub/internal/types"
)

type Action string

const (
	ActionRead         Action = "read"
	ActionList         Action = "list"
	ActionListAll      Action = "list_all"
	ActionCreate       Action = "create"
	ActionUpdate       Action = "update"
	ActionUpdateStatus Action = "update_status"
	ActionDelete       Action = "delete"
)

// Updatable columns per role, used as Resource.Fields.
const (
	FieldName        = "name"
	FieldPlan        = "plan"
	FieldStatus      = "status"
	FieldMaxUsers    = "max_users"
	FieldMaxProjects = "max_projects"
	FieldFirstName   = "first_name"
	FieldLastName    = "last_name"
	FieldRole        = "role"
)

var (
	tenantAdminTenantFields = []string{FieldName}
	superAdminTenantFields  = []string{FieldName, FieldPlan, FieldStatus, FieldMaxUsers, FieldMaxProjects}
	selfUserFields          = []string{FieldFirstName, FieldLastName}
	adminUserFields         = []string{FieldFirstName, FieldLastName, FieldRole}
)

// Resource describes the target of an action. TenantID is the resolved owning tenant,
// OwnerID the creator for projects and tasks, Fields the columns an update touches.
type Resource struct {
	Kind     types.EntityKind
	ID       string
	TenantID string
	OwnerID  string
	Fields   []string
}

func TenantResource(id string) Resource {
	return Resource{Kind: types.KindTenant, ID: id, TenantID: id}
}
