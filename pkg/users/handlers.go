// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package users

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
	mux.Post("/tenants/{tenantID}/users", a.createUser)
	mux.Get("/tenants/{tenantID}/users", a.listUsers)
	mux.Put("/users/{userID}", a.updateUser)
	mux.Delete("/users/{userID}", a.deleteUser)
}

func (a *API) createUser(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "users.API.createUser")
	defer span.End()

	req := new(CreateUserRequest)
	if err := httptypes.DecodeJSON(r, req); err != nil {
		httptypes.WriteError(w, err, a.logger)
		return
	}

	u, err := a.service.CreateUser(ctx, chi.URLParam(r, "tenantID"), req)
	if err != nil {
		httptypes.WriteError(w, err, a.logger)
		return
	}

	httptypes.WriteResult(w, http.StatusCreated, "User created", u, a.logger)
}

func (a *API) listUsers(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "users.API.listUsers")
	defer span.End()

	users, err := a.service.ListUsers(ctx, chi.URLParam(r, "tenantID"))
	if err != nil {
		httptypes.WriteError(w, err, a.logger)
		return
	}

	httptypes.WriteData(w, http.StatusOK, users, a.logger)
}

func (a *API) updateUser(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "users.API.updateUser")
	defer span.End()

	req := new(UpdateUserRequest)
	if err := httptypes.DecodeJSON(r, req); err != nil {
		httptypes.WriteError(w, err, a.logger)
		return
	}

	u, err := a.service.UpdateUser(ctx, chi.URLParam(r, "userID"), req)
	if err != nil {
		httptypes.WriteError(w, err, a.logger)
		return
	}

	httptypes.WriteResult(w, http.StatusOK, "User updated", u, a.logger)
}

func (a *API) deleteUser(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "users.API.deleteUser")
	defer span.End()

	deleted, err := a.service.DeleteUser(ctx, chi.URLParam(r, "userID"))
	if err != nil {
		httptypes.WriteError(w, err, a.logger)
		return
	}

	httptypes.WriteResult(w, http.StatusOK, "User deleted", deleted, a.logger)
}

func NewAPI(service ServiceInterface, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *API {
	a := new(API)

	a.service = service

	a.tracer = tracer
	a.monitor = monitor
	a.logger = logger

	return a
}
