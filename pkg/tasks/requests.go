// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package tasks

import (
	"strings"

	"github.com/google/uuid"

	"github.com/canonical/project-hub/internal/apperror"
	"github.com/canonical/project-hub/internal/types"
)

type CreateTaskRequest struct {
	Title       string             `json:"title"`
	Description *string            `json:"description"`
	AssignedTo  *string            `json:"assignedTo"`
	Status      types.TaskStatus   `json:"status"`
	Priority    types.TaskPriority `json:"priority"`
}

type UpdateStatusRequest struct {
	Status types.TaskStatus `json:"status"`
}

// UpdateTaskRequest clears the description or the assignee on an explicit null.
type UpdateTaskRequest struct {
	Title       *string                `json:"title"`
	Description types.Optional[string] `json:"description"`
	Status      *types.TaskStatus      `json:"status"`
	Priority    *types.TaskPriority    `json:"priority"`
	AssignedTo  types.Optional[string] `json:"assignedTo"`
}

func (r *UpdateTaskRequest) validate() error {
	if r.Title != nil && strings.TrimSpace(*r.Title) == "" {
		return apperror.Validation(msgTitleRequired)
	}
	if r.Status != nil && !r.Status.Valid() {
		return apperror.Validation(msgInvalidStatus)
	}
	if r.Priority != nil && !r.Priority.Valid() {
		return apperror.Validation(msgInvalidPriority)
	}
	return nil
}

// ListTasksParams are the query parameters of a task listing. An empty
// assignedTo selects unassigned tasks.
type ListTasksParams struct {
	Status     *types.TaskStatus
	AssignedTo *string
	Priority   *types.TaskPriority
	Search     *string
	Page       *int64
	PageSize   *int64
}

func (p *ListTasksParams) filter() (types.TaskFilter, error) {
	f := types.TaskFilter{
		Status:     p.Status,
		Priority:   p.Priority,
		AssignedTo: p.AssignedTo,
	}

	if f.Status != nil && !f.Status.Valid() {
		return f, apperror.Validation(msgInvalidStatus)
	}
	if f.Priority != nil && !f.Priority.Valid() {
		return f, apperror.Validation(msgInvalidPriority)
	}
	if f.AssignedTo != nil && *f.AssignedTo != "" {
		if _, err := uuid.Parse(*f.AssignedTo); err != nil {
			return f, apperror.Validation(msgInvalidAssignee)
		}
	}
	if p.Search != nil {
		f.Search = strings.TrimSpace(*p.Search)
	}

	return f, nil
}

func deref(v *int64) int64 {
	if v == nil {
		return 0
	}
	return *v
}
