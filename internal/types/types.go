// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package types

import (
	"time"
)

type Tenant struct {
	ID          string       `db:"id" json:"id"`
	Name        string       `db:"name" json:"name"`
	Subdomain   string       `db:"subdomain" json:"subdomain"`
	Plan        Plan         `db:"plan" json:"plan"`
	Status      TenantStatus `db:"status" json:"status"`
	MaxUsers    int          `db:"max_users" json:"max_users"`
	MaxProjects int          `db:"max_projects" json:"max_projects"`
	CreatedAt   time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time    `db:"updated_at" json:"updated_at"`
}

// TenantStats holds live row counts for a tenant.
type TenantStats struct {
	TotalUsers    int64 `json:"total_users"`
	TotalProjects int64 `json:"total_projects"`
	TotalTasks    int64 `json:"total_tasks"`
}

type TenantWithStats struct {
	*Tenant
	Stats TenantStats `json:"stats"`
}

// TenantLimits are the quota ceilings of a tenant.
type TenantLimits struct {
	MaxUsers    int
	MaxProjects int
}

type User struct {
	ID           string    `db:"id" json:"id"`
	TenantID     *string   `db:"tenant_id" json:"tenant_id"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Role         Role      `db:"role" json:"role"`
	FirstName    *string   `db:"first_name" json:"first_name"`
	LastName     *string   `db:"last_name" json:"last_name"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// Tenant returns the owning tenant id, empty for tenant-less accounts.
func (u *User) Tenant() string {
	if u.TenantID == nil {
		return ""
	}
	return *u.TenantID
}

type Project struct {
	ID                 string        `db:"id" json:"id"`
	TenantID           string        `db:"tenant_id" json:"tenant_id"`
	Name               string        `db:"name" json:"name"`
	Description        *string       `db:"description" json:"description"`
	Status             ProjectStatus `db:"status" json:"status"`
	CreatedBy          *string       `db:"created_by" json:"created_by"`
	CreatedAt          time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time     `db:"updated_at" json:"updated_at"`
	TaskCount          int64         `json:"task_count"`
	CompletedTaskCount int64         `json:"completed_task_count"`
}

// TaskCounts aggregates the tasks of a single project.
type TaskCounts struct {
	Total     int64
	Completed int64
}

type Task struct {
	ID          string       `db:"id" json:"id"`
	TenantID    string       `db:"tenant_id" json:"tenant_id"`
	ProjectID   string       `db:"project_id" json:"project_id"`
	Title       string       `db:"title" json:"title"`
	Description *string      `db:"description" json:"description"`
	Status      TaskStatus   `db:"status" json:"status"`
	Priority    TaskPriority `db:"priority" json:"priority"`
	AssignedTo  *string      `db:"assigned_to" json:"assigned_to"`
	CreatedBy   *string      `db:"created_by" json:"created_by"`
	CreatedAt   time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time    `db:"updated_at" json:"updated_at"`
}

// TaskFilter narrows a task listing. A non-nil AssignedTo pointing to an
// empty string selects unassigned tasks.
type TaskFilter struct {
	Status     *TaskStatus
	Priority   *TaskPriority
	AssignedTo *string
	Search     string
}

type TaskPage struct {
	Data     []*Task `json:"data"`
	Page     uint64  `json:"page"`
	PageSize uint64  `json:"page_size"`
	Total    int64   `json:"total"`
}

type AuditEntry struct {
	ID          string      `db:"id" json:"id"`
	TenantID    *string     `db:"tenant_id" json:"tenant_id"`
	TableName   string      `db:"table_name" json:"table_name"`
	RecordID    string      `db:"record_id" json:"record_id"`
	Action      AuditAction `db:"action" json:"action"`
	ActorUserID *string     `db:"actor_user_id" json:"actor_user_id"`
	Metadata    Metadata    `db:"metadata" json:"metadata"`
	CreatedAt   time.Time   `db:"created_at" json:"created_at"`
}

type Metadata map[string]any

// Deleted is returned by delete operations.
type Deleted struct {
	ID    string `json:"id"`
	Name  string `json:"name,omitempty"`
	Title string `json:"title,omitempty"`
	Email string `json:"email,omitempty"`
}
