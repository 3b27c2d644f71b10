// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package authentication

import (
	"context"
	"fmt"

	"github.com/canonical/project-hub/internal/logging"
	"github.com/canonical/project-hub/internal/monitoring"
	"github.com/canonical/project-hub/internal/tracing"
)

const (
	ModeHMAC = "hmac"
	ModeOIDC = "oidc"
)

type Config struct {
	Mode          string
	Issuer        string
	JWKSURL       string
	RequiredScope string
}

// NewAuthenticator builds the verifier for the configured mode. Session
// tokens signed by the service itself are always accepted, OIDC mode adds
// tokens minted by the external issuer.
func NewAuthenticator(
	ctx context.Context,
	cfg Config,
	sessions *HMACTokens,
	tracer tracing.TracingInterface,
	monitor monitoring.MonitorInterface,
	logger logging.LoggerInterface,
) (TokenVerifierInterface, error) {
	switch cfg.Mode {
	case "", ModeHMAC:
		logger.Info("JWT authentication is enabled with HMAC session tokens")
		return sessions, nil
	case ModeOIDC:
	default:
		return nil, fmt.Errorf("unknown authentication mode %q", cfg.Mode)
	}

	if cfg.Issuer == "" {
		return nil, fmt.Errorf("issuer is required for OIDC authentication")
	}

	if cfg.JWKSURL != "" {
		logger.Infof("Using JWKS URL %s for issuer %s", cfg.JWKSURL, cfg.Issuer)
	} else {
		logger.Infof("Using OIDC discovery for issuer %s", cfg.Issuer)
	}

	idTokenVerifier, err := newIDTokenVerifier(ctx, cfg.Issuer, cfg.JWKSURL)
	if err != nil {
		return nil, err
	}

	verifier := NewJWTVerifier(idTokenVerifier, cfg.RequiredScope, tracer, monitor, logger)
	logger.Info("JWT authentication is enabled with HMAC session tokens and OIDC")

	return NewChainVerifier(sessions, verifier), nil
}
