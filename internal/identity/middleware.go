// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package identity

import (
	"net/http"

	"github.com/canonical/project-hub/internal/logging"
	"github.com/canonical/project-hub/internal/monitoring"
	"github.com/canonical/project-hub/internal/tracing"
	"github.com/canonical/project-hub/internal/types"
)

const (
	// UserHeader carries the identity asserted by a trusted proxy
	UserHeader   = "X-Identity-User-Id"
	TenantHeader = "X-Identity-Tenant-Id"
	RoleHeader   = "X-Identity-Role"
)

// Middleware accepts an identity asserted by an authenticating proxy in front of the service.
// It only runs when the deployment enables trusted headers.
type Middleware struct {
	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func NewMiddleware(tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *Middleware {
	return &Middleware{
		tracer:  tracer,
		monitor: monitor,
		logger:  logger,
	}
}

func (m *Middleware) HTTPMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, span := m.tracer.Start(r.Context(), "identity.Middleware.HTTPMiddleware")
		defer span.End()

		if _, ok := FromContext(ctx); ok {
			next.ServeHTTP(w, r.WithContext(ctx))
			return
		}

		userID := r.Header.Get(UserHeader)
		role := types.Role(r.Header.Get(RoleHeader))

		if userID != "" {
			if !role.Valid() {
				m.logger.Security().AuthnFailure(userID, "reason", "invalid role header")
			} else {
				ctx = NewContext(ctx, Identity{
					UserID:   userID,
					TenantID: r.Header.Get(TenantHeader),
					Role:     role,
				})
			}
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
