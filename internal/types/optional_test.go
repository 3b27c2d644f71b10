// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package types

import (
	"encoding/json"
	"testing"
)

func TestOptionalUnmarshal(t *testing.T) {
	type payload struct {
		Description Optional[string] `json:"description"`
	}

	tests := []struct {
		name      string
		input     string
		wantSet   bool
		wantValue *string
	}{
		{name: "absent", input: `{}`, wantSet: false},
		{name: "null", input: `{"description": null}`, wantSet: true},
		{name: "value", input: `{"description": "hello"}`, wantSet: true, wantValue: ptr("hello")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p payload
			if err := json.Unmarshal([]byte(tt.input), &p); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if p.Description.Set != tt.wantSet {
				t.Errorf("expected Set %v, got %v", tt.wantSet, p.Description.Set)
			}

			switch {
			case tt.wantValue == nil && p.Description.Value != nil:
				t.Errorf("expected nil value, got %q", *p.Description.Value)
			case tt.wantValue != nil && (p.Description.Value == nil || *p.Description.Value != *tt.wantValue):
				t.Errorf("expected %q, got %v", *tt.wantValue, p.Description.Value)
			}
		})
	}
}

func TestOptionalUnmarshalTypeMismatch(t *testing.T) {
	var o Optional[int]
	if err := json.Unmarshal([]byte(`"abc"`), &o); err == nil {
		t.Fatal("expected error for mismatched type")
	}
}

func TestEntityKindTable(t *testing.T) {
	kinds := map[EntityKind]string{
		KindTenant:  "tenants",
		KindUser:    "users",
		KindProject: "projects",
		KindTask:    "tasks",
	}

	for kind, table := range kinds {
		if kind.Table() != table {
			t.Errorf("expected %s table for %s, got %s", table, kind, kind.Table())
		}
	}
}

func TestRoleAssignable(t *testing.T) {
	if RoleSuperAdmin.Assignable() {
		t.Error("super_admin must not be assignable")
	}

	if !RoleTenantAdmin.Assignable() || !RoleUser.Assignable() {
		t.Error("tenant_admin and user must be assignable")
	}

	if Role("owner").Valid() {
		t.Error("unknown role reported as valid")
	}
}

func ptr[T any](v T) *T {
	return &v
}
