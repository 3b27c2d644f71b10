// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package projects

import (
	"net/http"

	"github.com/go-chi/chi/v5"

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
	mux.Post("/projects", a.createProject)
	mux.Get("/projects", a.listProjects)
	mux.Get("/projects/{projectID}", a.getProject)
	mux.Put("/projects/{projectID}", a.updateProject)
	mux.Delete("/projects/{projectID}", a.deleteProject)
}

func (a *API) createProject(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "projects.API.createProject")
	defer span.End()

	req := new(CreateProjectRequest)
	if err := httptypes.DecodeJSON(r, req); err != nil {
		httptypes.WriteError(w, err, a.logger)
		return
	}

	p, err := a.service.CreateProject(ctx, req)
	if err != nil {
		httptypes.WriteError(w, err, a.logger)
		return
	}

	httptypes.WriteResult(w, http.StatusCreated, "Project created", p, a.logger)
}

func (a *API) listProjects(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "projects.API.listProjects")
	defer span.End()

	projects, err := a.service.ListProjects(ctx)
	if err != nil {
		httptypes.WriteError(w, err, a.logger)
		return
	}

	httptypes.WriteData(w, http.StatusOK, projects, a.logger)
}

func (a *API) getProject(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "projects.API.getProject")
	defer span.End()

	p, err := a.service.GetProject(ctx, chi.URLParam(r, "projectID"))
	if err != nil {
		httptypes.WriteError(w, err, a.logger)
		return
	}

	httptypes.WriteData(w, http.StatusOK, p, a.logger)
}

func (a *API) updateProject(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "projects.API.updateProject")
	defer span.End()

	req := new(UpdateProjectRequest)
	if err := httptypes.DecodeJSON(r, req); err != nil {
		httptypes.WriteError(w, err, a.logger)
		return
	}

	p, err := a.service.UpdateProject(ctx, chi.URLParam(r, "projectID"), req)
	if err != nil {
		httptypes.WriteError(w, err, a.logger)
		return
	}

	httptypes.WriteResult(w, http.StatusOK, "Project updated", p, a.logger)
}

func (a *API) deleteProject(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "projects.API.deleteProject")
	defer span.End()

	deleted, err := a.service.DeleteProject(ctx, chi.URLParam(r, "projectID"))
	if err != nil {
		httptypes.WriteError(w, err, a.logger)
		return
	}

	httptypes.WriteResult(w, http.StatusOK, "Project deleted", deleted, a.logger)
}

func NewAPI(service ServiceInterface, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *API {
	a := new(API)

	a.service = service

	a.tracer = tracer
	a.monitor = monitor
	a.logger = logger

	return a
}
