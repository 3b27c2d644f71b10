// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package projects

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
			name:   "create project",
			method: http.MethodPost,
			path:   "/projects",
			body:   `{"name":"Apollo","description":"moon"}`,
			setupMocks: func(m *MockServiceInterface) {
				m.EXPECT().CreateProject(gomock.Any(), &CreateProjectRequest{Name: "Apollo", Description: ptr("moon")}).Return(projectA(), nil)
			},
			expectedStatus: http.StatusCreated,
			expectedMsg:    "Project created",
		},
		{
			name:   "list projects",
			method: http.MethodGet,
			path:   "/projects",
			setupMocks: func(m *MockServiceInterface) {
				m.EXPECT().ListProjects(gomock.Any()).Return([]*types.Project{projectA()}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:   "get missing project",
			method: http.MethodGet,
			path:   "/projects/p-x",
			setupMocks: func(m *MockServiceInterface) {
				m.EXPECT().GetProject(gomock.Any(), "p-x").Return(nil, apperror.NotFound("Project not found"))
			},
			expectedStatus: http.StatusNotFound,
			expectedMsg:    "Project not found",
		},
		{
			name:   "update project",
			method: http.MethodPut,
			path:   "/projects/p-1",
			body:   `{"status":"completed"}`,
			setupMocks: func(m *MockServiceInterface) {
				m.EXPECT().UpdateProject(gomock.Any(), "p-1", &UpdateProjectRequest{Status: ptr(types.ProjectStatusCompleted)}).Return(projectA(), nil)
			},
			expectedStatus: http.StatusOK,
			expectedMsg:    "Project updated",
		},
		{
			name:   "delete project",
			method: http.MethodDelete,
			path:   "/projects/p-1",
			setupMocks: func(m *MockServiceInterface) {
				m.EXPECT().DeleteProject(gomock.Any(), "p-1").Return(&types.Deleted{ID: "p-1", Name: "Apollo"}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedMsg:    "Project deleted",
		},
		{
			name:   "unexpected failure is masked",
			method: http.MethodDelete,
			path:   "/projects/p-1",
			setupMocks: func(m *MockServiceInterface) {
				m.EXPECT().DeleteProject(gomock.Any(), "p-1").Return(nil, apperror.Internal(nil, "pq: connection reset"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedMsg:    "Internal server error",
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

			var body struct {
				Success bool   `json:"success"`
				Message string `json:"message"`
			}
			if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}

			if body.Success != (tt.expectedStatus < http.StatusBadRequest) {
				t.Errorf("unexpected success flag %v", body.Success)
			}

			if tt.expectedMsg != "" && body.Message != tt.expectedMsg {
				t.Errorf("expected message %q, got %q", tt.expectedMsg, body.Message)
			}
		})
	}
}
