// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package tenant

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
	mux.Post("/auth/register-tenant", a.registerTenant)
}

func (a *API) RegisterEndpoints(mux chi.Router) {
	mux.Get("/tenants", a.listTenants)
	mux.Get("/tenants/{tenantID}", a.getTenant)
	mux.Put("/tenants/{tenantID}", a.updateTenant)
}

func (a *API) registerTenant(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "tenant.API.registerTenant")
	defer span.End()

	req := new(RegisterTenantRequest)
	if err := httptypes.DecodeJSON(r, req); err != nil {
		httptypes.WriteError(w, err, a.logger)
		return
	}

	result, err := a.service.RegisterTenant(ctx, req)
	if err != nil {
		httptypes.WriteError(w, err, a.logger)
		return
	}

	httptypes.WriteResult(w, http.StatusCreated, "Tenant registered", result, a.logger)
}

func (a *API) listTenants(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "tenant.API.listTenants")
	defer span.End()

	tenants, err := a.service.ListTenants(ctx)
	if err != nil {
		httptypes.WriteError(w, err, a.logger)
		return
	}

	httptypes.WriteData(w, http.StatusOK, tenants, a.logger)
}

func (a *API) getTenant(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "tenant.API.getTenant")
	defer span.End()

	t, err := a.service.GetTenant(ctx, chi.URLParam(r, "tenantID"))
	if err != nil {
		httptypes.WriteError(w, err, a.logger)
		return
	}

	httptypes.WriteData(w, http.StatusOK, t, a.logger)
}

func (a *API) updateTenant(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "tenant.API.updateTenant")
	defer span.End()

	req := new(UpdateTenantRequest)
	if err := httptypes.DecodeJSON(r, req); err != nil {
		httptypes.WriteError(w, err, a.logger)
		return
	}

	t, err := a.service.UpdateTenant(ctx, chi.URLParam(r, "tenantID"), req)
	if err != nil {
		httptypes.WriteError(w, err, a.logger)
		return
	}

	httptypes.WriteResult(w, http.StatusOK, "Tenant updated", t, a.logger)
}

func NewAPI(service ServiceInterface, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *API {
	a := new(API)

	a.service = service

	a.tracer = tracer
	a.monitor = monitor
	a.logger = logger

	return a
}
