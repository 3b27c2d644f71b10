// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package status

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	httptypes "github.com/canonical/project-hub/internal/http/types"
	"github.com/canonical/project-hub/internal/logging"
	"github.com/canonical/project-hub/internal/monitoring"
	"github.com/canonical/project-hub/internal/tracing"
	"github.com/canonical/project-hub/internal/version"
)

const checkTimeout = 5 * time.Second

type Health struct {
	Status string  `json:"status"`
	Uptime float64 `json:"uptime"`
	Reason string  `json:"reason,omitempty"`
}

type BuildInfo struct {
	Version string `json:"version"`
}

type API struct {
	db         PingerInterface
	migrations MigrationsInterface
	started    time.Time

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func (a *API) RegisterEndpoints(mux chi.Router) {
	mux.Get("/health", a.health)
	mux.Get("/version", a.version)
}

// check reports why the service cannot serve traffic, empty when it can.
func (a *API) check(ctx context.Context) string {
	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	if err := a.db.Ping(ctx); err != nil {
		a.logger.Errorf("database ping failed: %v", err)
		a.setAvailability("database", 0)
		return "database unavailable"
	}
	a.setAvailability("database", 1)

	pending, err := a.migrations.HasPending(ctx)
	if err != nil {
		a.logger.Errorf("failed to check migrations: %v", err)
		return "migration status unknown"
	}
	if pending {
		return "pending migrations"
	}

	return ""
}

func (a *API) setAvailability(dependency string, value float64) {
	if err := a.monitor.SetDependencyAvailability(map[string]string{"component": dependency}, value); err != nil {
		a.logger.Debugf("failed to record %s availability: %v", dependency, err)
	}
}

func (a *API) health(w http.ResponseWriter, r *http.Request) {
	ctx, span := a.tracer.Start(r.Context(), "status.API.health")
	defer span.End()

	h := Health{Status: "ok", Uptime: time.Since(a.started).Seconds()}

	if reason := a.check(ctx); reason != "" {
		h.Status = "unavailable"
		h.Reason = reason
		httptypes.WriteResult(w, http.StatusServiceUnavailable, "Service unavailable", h, a.logger)
		return
	}

	httptypes.WriteData(w, http.StatusOK, h, a.logger)
}

func (a *API) version(w http.ResponseWriter, r *http.Request) {
	_, span := a.tracer.Start(r.Context(), "status.API.version")
	defer span.End()

	httptypes.WriteData(w, http.StatusOK, BuildInfo{Version: version.Version}, a.logger)
}

func NewAPI(db PingerInterface, migrations MigrationsInterface, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *API {
	a := new(API)

	a.db = db
	a.migrations = migrations
	a.started = time.Now()

	a.tracer = tracer
	a.monitor = monitor
	a.logger = logger

	return a
}
