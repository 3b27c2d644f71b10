// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package tasks

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
			name:   "create task",
			method: http.MethodPost,
			path:   "/projects/p-1/tasks",
			body:   `{"title":"Launch","priority":"high"}`,
			setupMocks: func(m *MockServiceInterface) {
				m.EXPECT().CreateTask(gomock.Any(), "p-1", &CreateTaskRequest{Title: "Launch", Priority: types.TaskPriorityHigh}).Return(taskA(), nil)
			},
			expectedStatus: http.StatusCreated,
			expectedMsg:    "Task created",
		},
		{
			name:   "list tasks with filters",
			method: http.MethodGet,
			path:   "/projects/p-1/tasks?status=todo&assignedTo=&search=moon&page=2&pageSize=10",
			setupMocks: func(m *MockServiceInterface) {
				m.EXPECT().ListTasks(gomock.Any(), "p-1", &ListTasksParams{
					Status:     ptr(types.TaskStatusTodo),
					AssignedTo: ptr(""),
					Search:     ptr("moon"),
					Page:       ptr(int64(2)),
					PageSize:   ptr(int64(10)),
				}).Return(&types.TaskPage{Data: []*types.Task{}, Page: 2, PageSize: 10}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:   "list tasks without filters",
			method: http.MethodGet,
			path:   "/projects/p-1/tasks",
			setupMocks: func(m *MockServiceInterface) {
				m.EXPECT().ListTasks(gomock.Any(), "p-1", &ListTasksParams{}).Return(&types.TaskPage{Data: []*types.Task{}, Page: 1, PageSize: 20}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "list tasks with non numeric page",
			method:         http.MethodGet,
			path:           "/projects/p-1/tasks?page=two",
			setupMocks:     func(*MockServiceInterface) {},
			expectedStatus: http.StatusBadRequest,
			expectedMsg:    "Invalid query parameter page",
		},
		{
			name:   "update status",
			method: http.MethodPatch,
			path:   "/tasks/task-1/status",
			body:   `{"status":"in_progress"}`,
			setupMocks: func(m *MockServiceInterface) {
				m.EXPECT().UpdateTaskStatus(gomock.Any(), "task-1", types.TaskStatusInProgress).Return(taskA(), nil)
			},
			expectedStatus: http.StatusOK,
			expectedMsg:    "Task status updated",
		},
		{
			name:   "update task forbidden",
			method: http.MethodPut,
			path:   "/tasks/task-1",
			body:   `{"title":"Land"}`,
			setupMocks: func(m *MockServiceInterface) {
				m.EXPECT().UpdateTask(gomock.Any(), "task-1", &UpdateTaskRequest{Title: ptr("Land")}).Return(nil, apperror.Forbidden("Forbidden"))
			},
			expectedStatus: http.StatusForbidden,
			expectedMsg:    "Forbidden",
		},
		{
			name:   "delete task",
			method: http.MethodDelete,
			path:   "/tasks/task-1",
			setupMocks: func(m *MockServiceInterface) {
				m.EXPECT().DeleteTask(gomock.Any(), "task-1").Return(&types.Deleted{ID: "task-1", Title: "Launch"}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedMsg:    "Task deleted",
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

			if tt.expectedMsg != "" && body.Message != tt.expectedMsg {
				t.Errorf("expected message %q, got %q", tt.expectedMsg, body.Message)
			}
		})
	}
}
