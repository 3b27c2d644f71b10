// Copyright 2025 Canonical Ltd
// SPDX-License-Identifier: AGPL-3.0

package authorization

import (
	"context"
	"fmt"

	"github.com/canonical/project-hub/internal/identity"
	"github.com/canonical/project-hub/internal/logging"
	"github.com/canonical/project-hub/internal/monitoring"
	"github.com/canonical/project-hub/internal/tracing"
)

var _ AuthorizerInterface = (*Authorizer)(nil)

// Authorizer evaluates the policy table and records every denial.
type Authorizer struct {
	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func (a *Authorizer) Authorize(ctx context.Context, actor identity.Identity, action Action, res Resource) error {
	_, span := a.tracer.Start(ctx, "authorization.Authorizer.Authorize")
	defer span.End()

	err := Evaluate(actor, action, res)
	if err == nil {
		return nil
	}

	a.logger.Security().AuthzFailure(
		actor.UserID,
		fmt.Sprintf("%s:%s", res.Kind, res.ID),
		"action", string(action),
		"tenant", res.TenantID,
		"reason", err.Error(),
	)

	if merr := a.monitor.IncAuthorizationDenial(map[string]string{"resource": string(res.Kind), "action": string(action)}); merr != nil {
		a.logger.Debugf("failed to record authorization denial: %v", merr)
	}

	return err
}

func NewAuthorizer(tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *Authorizer {
	authorizer := new(Authorizer)
	authorizer.tracer = tracer
	authorizer.monitor = monitor
	authorizer.logger = logger

	return authorizer
}
