// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package session

import (
	"context"
	"errors"

	"github.com/canonical/project-hub/internal/apperror"
	"github.com/canonical/project-hub/internal/identity"
	"github.com/canonical/project-hub/internal/logging"
	"github.com/canonical/project-hub/internal/monitoring"
	"github.com/canonical/project-hub/internal/storage"
	"github.com/canonical/project-hub/internal/tracing"
)

const msgBadCredentials = "Invalid email or password"

var _ ServiceInterface = (*Service)(nil)

type Service struct {
	storage StorageInterface
	hasher  HasherInterface
	tokens  TokenIssuerInterface

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func (s *Service) Login(ctx context.Context, req *LoginRequest) (*LoginResult, error) {
	ctx, span := s.tracer.Start(ctx, "session.Service.Login")
	defer span.End()

	if req.Email == "" || req.Password == "" {
		return nil, apperror.Validation("Missing credentials")
	}

	var tenantID *string
	if req.Subdomain != "" {
		t, err := s.storage.GetTenantBySubdomain(ctx, req.Subdomain)
		if errors.Is(err, storage.ErrNotFound) {
			return nil, apperror.NotFound("Tenant not found")
		}
		if err != nil {
			return nil, apperror.Classify(err)
		}
		tenantID = &t.ID
	}

	u, err := s.storage.GetUserByEmail(ctx, tenantID, req.Email)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return nil, apperror.Classify(err)
	}

	// unknown accounts still pay for a full comparison
	digest := ""
	if u != nil {
		digest = u.PasswordHash
	}

	if !s.hasher.Compare(digest, req.Password) || u == nil {
		s.logger.Security().AuthnFailure(req.Email, "subdomain", req.Subdomain)
		return nil, apperror.Unauthenticated(msgBadCredentials)
	}

	token, err := s.tokens.IssueToken(ctx, identity.Identity{UserID: u.ID, TenantID: u.Tenant(), Role: u.Role})
	if err != nil {
		return nil, apperror.Internal(err, "failed to issue token")
	}

	return &LoginResult{Token: token, User: u}, nil
}

func (s *Service) Me(ctx context.Context) (*Profile, error) {
	ctx, span := s.tracer.Start(ctx, "session.Service.Me")
	defer span.End()

	actor, err := identity.Require(ctx)
	if err != nil {
		return nil, err
	}

	u, err := s.storage.GetUser(ctx, actor.UserID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, apperror.NotFound("User not found")
	}
	if err != nil {
		return nil, apperror.Classify(err)
	}

	profile := &Profile{User: u}

	if u.TenantID != nil {
		t, err := s.storage.GetTenant(ctx, *u.TenantID)
		if err != nil && !errors.Is(err, storage.ErrNotFound) {
			return nil, apperror.Classify(err)
		}
		profile.Tenant = t
	}

	return profile, nil
}

// Logout has nothing to revoke, tokens expire on their own.
func (s *Service) Logout(ctx context.Context) error {
	_, span := s.tracer.Start(ctx, "session.Service.Logout")
	defer span.End()

	actor, err := identity.Require(ctx)
	if err != nil {
		return err
	}

	s.logger.Debugw("logout", "user", actor.UserID)

	return nil
}

func NewService(storage StorageInterface, hasher HasherInterface, tokens TokenIssuerInterface, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *Service {
	s := new(Service)

	s.storage = storage
	s.hasher = hasher
	s.tokens = tokens

	s.tracer = tracer
	s.monitor = monitor
	s.logger = logger

	return s
}
