// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package users

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.uber.org/mock/gomock"

	"github.com/canonical/project-hub/internal/apperror"
	"github.com/canonical/project-hub/internal/logging"
	"github.com/canonical/project-hub/internal/monitoring"
	"github.com/canonical/project-hub/internal/tracing"
	"github.com/canonical/project-hub/internal/types"
)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func TestAPI_Endpoints(t *testing.T) {
	tests := []struct {
		name           string
		method         string
		path           string
		body           string
		setupMocks     func(*MockServiceInterface)
		expectedStatus int
		expectedMsg    string
	}{
		{
			name:   "create user",
			method: http.MethodPost,
			path:   "/tenants/t-a/users",
			body:   `{"email":"new@acme.test","password":"pw","role":"user"}`,
			setupMocks: func(m *MockServiceInterface) {
				m.EXPECT().CreateUser(gomock.Any(), "t-a", &CreateUserRequest{Email: "new@acme.test", Password: "pw", Role: types.RoleUser}).
					Return(&types.User{ID: "u-new", PasswordHash: "secret"}, nil)
			},
			expectedStatus: http.StatusCreated,
			expectedMsg:    "User created",
		},
		{
			name:   "create user over quota",
			method: http.MethodPost,
			path:   "/tenants/t-a/users",
			body:   `{"email":"new@acme.test","password":"pw"}`,
			setupMocks: func(m *MockServiceInterface) {
				m.EXPECT().CreateUser(gomock.Any(), "t-a", gomock.Any()).Return(nil, apperror.Conflict("Max users limit reached for this tenant"))
			},
			expectedStatus: http.StatusConflict,
			expectedMsg:    "Max users limit reached for this tenant",
		},
		{
			name:   "list users",
			method: http.MethodGet,
			path:   "/tenants/t-a/users",
			setupMocks: func(m *MockServiceInterface) {
				m.EXPECT().ListUsers(gomock.Any(), "t-a").Return([]*types.User{userAdminA, userMemberA}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:   "clear last name",
			method: http.MethodPut,
			path:   "/users/member-a",
			body:   `{"firstName":"Ada","lastName":null}`,
			setupMocks: func(m *MockServiceInterface) {
				m.EXPECT().UpdateUser(gomock.Any(), "member-a", &UpdateUserRequest{
					FirstName: types.Some("Ada"), LastName: types.Null[string](),
				}).Return(userMemberA, nil)
			},
			expectedStatus: http.StatusOK,
			expectedMsg:    "User updated",
		},
		{
			name:           "update with malformed body",
			method:         http.MethodPut,
			path:           "/users/member-a",
			body:           `[`,
			setupMocks:     func(*MockServiceInterface) {},
			expectedStatus: http.StatusBadRequest,
			expectedMsg:    "Invalid request body",
		},
		{
			name:   "delete user",
			method: http.MethodDelete,
			path:   "/users/member-a",
			setupMocks: func(m *MockServiceInterface) {
				m.EXPECT().DeleteUser(gomock.Any(), "member-a").Return(&types.Deleted{ID: "member-a", Email: "member@acme.test"}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedMsg:    "User deleted",
		},
		{
			name:   "delete self",
			method: http.MethodDelete,
			path:   "/users/admin-a",
			setupMocks: func(m *MockServiceInterface) {
				m.EXPECT().DeleteUser(gomock.Any(), "admin-a").Return(nil, apperror.Forbidden("Forbidden: cannot delete yourself"))
			},
			expectedStatus: http.StatusForbidden,
			expectedMsg:    "Forbidden: cannot delete yourself",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			mockService := NewMockServiceInterface(ctrl)
			tt.setupMocks(mockService)

			logger := logging.NewNoopLogger()
			mux := chi.NewMux()
			NewAPI(mockService, tracing.NewNoopTracer(), monitoring.NewNoopMonitor("test", logger), logger).RegisterEndpoints(mux)

			req := httptest.NewRequest(tt.method, tt.path, bytes.NewBufferString(tt.body))
			w := httptest.NewRecorder()

			mux.ServeHTTP(w, req)

			if w.Code != tt.expectedStatus {
				t.Fatalf("expected status %d, got %d: %s", tt.expectedStatus, w.Code, w.Body.String())
			}

			var body envelope
			if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}

			if tt.expectedMsg != "" && body.Message != tt.expectedMsg {
				t.Errorf("expected message %q, got %q", tt.expectedMsg, body.Message)
			}

			if bytes.Contains(body.Data, []byte("secret")) || bytes.Contains(body.Data, []byte("hash")) {
				t.Error("password hash leaked into the response")
			}
		})
	}
}
