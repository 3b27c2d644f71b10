// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package tasks

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"

	"github.com/canonical/project-hub/internal/apperror"
	httptypes "github.com/canonical/project-hub/internal/http/types"
	"github.com/canonical/project-hub/internal/logging"
	"github.com/canonical/project-hub/internal/monitoring"
	"github.com/canonical/project-hub/internal/tracing"
)

type API struct {
	service ServiceInterface

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func (a *API) RegisterEndpoints(mux chi.Router) {
	mux.Post("/projects/{projectID}/tasks", a.createTask)
	mux.Get("/projects/{projectID}/tasks", a.listTasks)
	mux.Patch("/tasks/{taskID}/status", a.updateTaskStatus)
	mux.Put("/tasks/{taskID}", a.updateTask)
	mux.Delete("/tasks/{taskID}", a.deleteTask)
}

func bindListParams(r *http.Request) (*ListTasksParams, error) {
	params := new(ListTasksParams)
	query := r.URL.Query()

	bindings := []struct {
		name string
		dest any
	}{
		{"status", &params.Status},
		{"priority", &params.Priority},
		{"search", &params.Search},
		{"page", &params.Page},
		{"pageSize", &params.PageSize},
	}

	for _, b := range bindings {
		if err := runtime.BindQueryParameter("form", true, false, b.name, query, b.dest); err != nil {
			return nil, apperror.Validation("Invalid query parameter %s", b.name)
		}
	}

	// a present but empty assignedTo selects unassigned tasks
	if query.Has("assignedTo") {
		assignedTo := query.Get("assignedTo")
		params.AssignedTo = &assignedTo
	}

	return params, nil
}

func (a *API) createTask(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "tasks.API.createTask")
	defer span.End()

	req := new(CreateTaskRequest)
	if err := httptypes.DecodeJSON(r, req); err != nil {
		httptypes.WriteError(w, err, a.logger)
		return
	}

	t, err := a.service.CreateTask(ctx, chi.URLParam(r, "projectID"), req)
	if err != nil {
		httptypes.WriteError(w, err, a.logger)
		return
	}

	httptypes.WriteResult(w, http.StatusCreated, "Task created", t, a.logger)
}

func (a *API) listTasks(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "tasks.API.listTasks")
	defer span.End()

	params, err := bindListParams(r)
	if err != nil {
		httptypes.WriteError(w, err, a.logger)
		return
	}

	page, err := a.service.ListTasks(ctx, chi.URLParam(r, "projectID"), params)
	if err != nil {
		httptypes.WriteError(w, err, a.logger)
		return
	}

	httptypes.WriteData(w, http.StatusOK, page, a.logger)
}

func (a *API) updateTaskStatus(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "tasks.API.updateTaskStatus")
	defer span.End()

	req := new(UpdateStatusRequest)
	if err := httptypes.DecodeJSON(r, req); err != nil {
		httptypes.WriteError(w, err, a.logger)
		return
	}

	t, err := a.service.UpdateTaskStatus(ctx, chi.URLParam(r, "taskID"), req.Status)
	if err != nil {
		httptypes.WriteError(w, err, a.logger)
		return
	}

	httptypes.WriteResult(w, http.StatusOK, "Task status updated", t, a.logger)
}

func (a *API) updateTask(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "tasks.API.updateTask")
	defer span.End()

	req := new(UpdateTaskRequest)
	if err := httptypes.DecodeJSON(r, req); err != nil {
		httptypes.WriteError(w, err, a.logger)
		return
	}

	t, err := a.service.UpdateTask(ctx, chi.URLParam(r, "taskID"), req)
	if err != nil {
		httptypes.WriteError(w, err, a.logger)
		return
	}

	httptypes.WriteResult(w, http.StatusOK, "Task updated", t, a.logger)
}

func (a *API) deleteTask(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "tasks.API.deleteTask")
	defer span.End()

	deleted, err := a.service.DeleteTask(ctx, chi.URLParam(r, "taskID"))
	if err != nil {
		httptypes.WriteError(w, err, a.logger)
		return
	}

	httptypes.WriteResult(w, http.StatusOK, "Task deleted", deleted, a.logger)
}

func NewAPI(service ServiceInterface, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *API {
	a := new(API)

	a.service = service

	a.tracer = tracer
	a.monitor = monitor
	a.logger = logger

	return a
}
