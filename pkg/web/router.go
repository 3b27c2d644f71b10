// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package web

import (
	"net/http"

	chi "github.com/go-chi/chi/v5"
	middleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	httptypes "github.com/canonical/project-hub/internal/http/types"
	"github.com/canonical/project-hub/internal/identity"
	"github.com/canonical/project-hub/internal/logging"
	"github.com/canonical/project-hub/internal/monitoring"
	"github.com/canonical/project-hub/internal/tracing"
)

const APIPrefix = "/api"

type EndpointsInterface interface {
	RegisterEndpoints(mux chi.Router)
}

type PublicEndpointsInterface interface {
	RegisterPublicEndpoints(mux chi.Router)
}

// Routes groups the APIs mounted by the router.
type Routes struct {
	Metrics EndpointsInterface
	Status  EndpointsInterface

	Public    []PublicEndpointsInterface
	Protected []EndpointsInterface

	// Authenticate guards every protected route.
	Authenticate func(http.Handler) http.Handler

	TrustedHeaders bool
	AllowedOrigins []string
}

func NewRouter(
	routes Routes,
	tracer tracing.TracingInterface,
	monitor monitoring.MonitorInterface,
	logger logging.LoggerInterface,
) http.Handler {
	router := chi.NewMux()

	middlewares := make(chi.Middlewares, 0)
	middlewares = append(
		middlewares,
		middleware.RequestID,
		middleware.Recoverer,
		monitoring.NewMiddleware(monitor, logger).ResponseTime(),
		middlewareCORS(routes.AllowedOrigins),
	)

	router.Use(middlewares...)

	notFound := func(w http.ResponseWriter, _ *http.Request) {
		httptypes.WriteMessage(w, http.StatusNotFound, "Resource not found", logger)
	}
	router.NotFound(notFound)
	router.MethodNotAllowed(notFound)

	if routes.Metrics != nil {
		routes.Metrics.RegisterEndpoints(router)
	}

	router.Route(APIPrefix, func(r chi.Router) {
		r.NotFound(notFound)
		r.MethodNotAllowed(notFound)

		if routes.Status != nil {
			routes.Status.RegisterEndpoints(r)
		}

		r.Group(func(r chi.Router) {
			for _, api := range routes.Public {
				api.RegisterPublicEndpoints(r)
			}
		})

		r.Group(func(r chi.Router) {
			if routes.TrustedHeaders {
				r.Use(identity.NewMiddleware(tracer, monitor, logger).HTTPMiddleware)
			}
			if routes.Authenticate != nil {
				r.Use(routes.Authenticate)
			}

			for _, api := range routes.Protected {
				api.RegisterEndpoints(r)
			}
		})
	})

	return tracing.NewMiddleware(monitor, logger).OpenTelemetry(router)
}

func middlewareCORS(origins []string) func(http.Handler) http.Handler {
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	return cors.Handler(
		cors.Options{
			AllowedOrigins:   origins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
			ExposedHeaders:   []string{"X-Request-Id"},
			AllowCredentials: false,
			MaxAge:           300,
		},
	)
}
