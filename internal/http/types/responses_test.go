// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package types

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"

	"github.com/canonical/project-hub/internal/apperror"
	"github.com/canonical/project-hub/internal/logging"
)

func TestErrorResponse(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		status   int
		expected *Response
	}{
		{
			name:     "validation",
			err:      apperror.Validation("Title is required"),
			status:   http.StatusBadRequest,
			expected: &Response{Message: "Title is required"},
		},
		{
			name:     "not found",
			err:      apperror.NotFound("Project not found"),
			status:   http.StatusNotFound,
			expected: &Response{Message: "Project not found"},
		},
		{
			name:     "forbidden wrapped",
			err:      fmt.Errorf("update: %w", apperror.Forbidden("Forbidden: tenant mismatch")),
			status:   http.StatusForbidden,
			expected: &Response{Message: "Forbidden: tenant mismatch"},
		},
		{
			name:     "conflict",
			err:      apperror.Conflict("Email already exists in this tenant"),
			status:   http.StatusConflict,
			expected: &Response{Message: "Email already exists in this tenant"},
		},
		{
			name:     "unauthenticated",
			err:      apperror.Unauthenticated("Invalid email or password"),
			status:   http.StatusUnauthorized,
			expected: &Response{Message: "Invalid email or password"},
		},
		{
			name:     "internal hides cause",
			err:      apperror.Internal(errors.New("pq: connection refused"), "failed to load"),
			status:   http.StatusInternalServerError,
			expected: &Response{Message: internalErrorMessage},
		},
		{
			name:     "unclassified",
			err:      errors.New("boom"),
			status:   http.StatusInternalServerError,
			expected: &Response{Message: internalErrorMessage},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			status, body := ErrorResponse(test.err)

			if status != test.status {
				t.Errorf("expected status %d, got %d", test.status, status)
			}

			if !reflect.DeepEqual(body, test.expected) {
				t.Errorf("expected body %+v, got %+v", test.expected, body)
			}
		})
	}
}

func TestWriteData(t *testing.T) {
	w := httptest.NewRecorder()

	WriteData(w, http.StatusCreated, map[string]string{"id": "p-1"}, logging.NewNoopLogger())

	if w.Code != http.StatusCreated {
		t.Errorf("expected status %d, got %d", http.StatusCreated, w.Code)
	}

	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("unexpected content type %q", ct)
	}

	var body struct {
		Success bool              `json:"success"`
		Data    map[string]string `json:"data"`
	}
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}

	if !body.Success || body.Data["id"] != "p-1" {
		t.Errorf("unexpected body %+v", body)
	}
}

func TestWriteError(t *testing.T) {
	w := httptest.NewRecorder()

	WriteError(w, apperror.Forbidden("Forbidden"), logging.NewNoopLogger())

	if w.Code != http.StatusForbidden {
		t.Errorf("expected status %d, got %d", http.StatusForbidden, w.Code)
	}

	if got := strings.TrimSpace(w.Body.String()); got != `{"success":false,"message":"Forbidden"}` {
		t.Errorf("unexpected body %s", got)
	}
}

func TestDecodeJSON(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{not json"))

	var v map[string]any
	if err := DecodeJSON(r, &v); !apperror.Is(err, apperror.KindValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
}
