// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package session

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

// RegisterPublicEndpoints mounts the routes reachable without a token.
func (a *API) RegisterPublicEndpoints(mux chi.Router) {
	mux.Post("/auth/login", a.login)
}

func (a *API) RegisterEndpoints(mux chi.Router) {
	mux.Get("/auth/me", a.me)
	mux.Post("/auth/logout", a.logout)
}

func (a *API) login(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "session.API.login")
	defer span.End()

	req := new(LoginRequest)
	if err := httptypes.DecodeJSON(r, req); err != nil {
		httptypes.WriteError(w, err, a.logger)
		return
	}

	result, err := a.service.Login(ctx, req)
	if err != nil {
		httptypes.WriteError(w, err, a.logger)
		return
	}

	httptypes.WriteResult(w, http.StatusOK, "Login successful", result, a.logger)
}

func (a *API) me(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "session.API.me")
	defer span.End()

	profile, err := a.service.Me(ctx)
	if err != nil {
		httptypes.WriteError(w, err, a.logger)
		return
	}

	httptypes.WriteData(w, http.StatusOK, profile, a.logger)
}

func (a *API) logout(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "session.API.logout")
	defer span.End()

	if err := a.service.Logout(ctx); err != nil {
		httptypes.WriteError(w, err, a.logger)
		return
	}

	httptypes.WriteMessage(w, http.StatusOK, "Logged out", a.logger)
}

func NewAPI(service ServiceInterface, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *API {
	a := new(API)

	a.service = service

	a.tracer = tracer
	a.monitor = monitor
	a.logger = logger

	return a
}
