// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package authentication

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/coreos/go-oidc/v3/oidc"

	"github.com/canonical/project-hub/internal/identity"
	"github.com/canonical/project-hub/internal/logging"
	"github.com/canonical/project-hub/internal/monitoring"
	"github.com/canonical/project-hub/internal/tracing"
	"github.com/canonical/project-hub/internal/types"
)

// JWTVerifier accepts access tokens minted by an external OIDC issuer. The
// issuer must carry the tenantId and role claims.
type JWTVerifier struct {
	verifier      *oidc.IDTokenVerifier
	requiredScope string

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func (v *JWTVerifier) VerifyToken(ctx context.Context, rawToken string) (identity.Identity, error) {
	ctx, span := v.tracer.Start(ctx, "authentication.JWTVerifier.VerifyToken")
	defer span.End()

	token, err := v.verifier.Verify(ctx, rawToken)
	if err != nil {
		return identity.Identity{}, err
	}

	var claims struct {
		Subject  string     `json:"sub"`
		TenantID *string    `json:"tenantId"`
		Role     types.Role `json:"role"`
		Scope    string     `json:"scope"`
		Scopes   []string   `json:"scp"`
	}

	if err := token.Claims(&claims); err != nil {
		v.logger.Debugf("Failed to extract claims: %v", err)
		return identity.Identity{}, err
	}

	if v.requiredScope != "" && !slices.Contains(strings.Fields(claims.Scope), v.requiredScope) && !slices.Contains(claims.Scopes, v.requiredScope) {
		v.logger.Security().AuthzFailure(claims.Subject, "jwt_api_access")
		return identity.Identity{}, fmt.Errorf("unauthorized: missing required scope")
	}

	if claims.Subject == "" || !claims.Role.Valid() {
		return identity.Identity{}, errors.New("token is missing subject or role")
	}

	id := identity.Identity{UserID: claims.Subject, Role: claims.Role}
	if claims.TenantID != nil {
		id.TenantID = *claims.TenantID
	}

	return id, nil
}

func NewJWTVerifier(
	verifier *oidc.IDTokenVerifier,
	requiredScope string,
	tracer tracing.TracingInterface,
	monitor monitoring.MonitorInterface,
	logger logging.LoggerInterface,
) *JWTVerifier {
	return &JWTVerifier{
		verifier:      verifier,
		requiredScope: requiredScope,
		tracer:        tracer,
		monitor:       monitor,
		logger:        logger,
	}
}

// ChainVerifier tries each verifier in order and accepts the first success.
type ChainVerifier struct {
	verifiers []TokenVerifierInterface
}

func (c *ChainVerifier) VerifyToken(ctx context.Context, rawToken string) (identity.Identity, error) {
	errs := make([]error, 0, len(c.verifiers))

	for _, v := range c.verifiers {
		id, err := v.VerifyToken(ctx, rawToken)
		if err == nil {
			return id, nil
		}
		errs = append(errs, err)
	}

	if len(errs) == 0 {
		return identity.Identity{}, errors.New("no token verifier configured")
	}

	return identity.Identity{}, errors.Join(errs...)
}

func NewChainVerifier(verifiers ...TokenVerifierInterface) *ChainVerifier {
	return &ChainVerifier{verifiers: verifiers}
}
