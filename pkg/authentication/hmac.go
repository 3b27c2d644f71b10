// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package authentication

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/canonical/project-hub/internal/identity"
	"github.com/canonical/project-hub/internal/logging"
	"github.com/canonical/project-hub/internal/monitoring"
	"github.com/canonical/project-hub/internal/tracing"
	"github.com/canonical/project-hub/internal/types"
)

const DefaultTokenTTL = 24 * time.Hour

// Claims is the payload of a session token.
type Claims struct {
	UserID   string     `json:"userId"`
	TenantID *string    `json:"tenantId"`
	Role     types.Role `json:"role"`

	jwt.RegisteredClaims
}

// Identity converts the claims, the tenant is empty for tenant-less accounts.
func (c *Claims) Identity() identity.Identity {
	id := identity.Identity{UserID: c.UserID, Role: c.Role}
	if c.TenantID != nil {
		id.TenantID = *c.TenantID
	}
	return id
}

// HMACTokens issues and verifies HS256 session tokens signed with a shared secret.
type HMACTokens struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

func (h *HMACTokens) IssueToken(ctx context.Context, id identity.Identity) (string, error) {
	_, span := h.tracer.Start(ctx, "authentication.HMACTokens.IssueToken")
	defer span.End()

	now := h.now()
	claims := &Claims{
		UserID:   id.UserID,
		TenantID: id.TenantPtr(),
		Role:     id.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.UserID,
			Issuer:    h.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(h.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(h.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, nil
}

func (h *HMACTokens) VerifyToken(ctx context.Context, rawToken string) (identity.Identity, error) {
	_, span := h.tracer.Start(ctx, "authentication.HMACTokens.VerifyToken")
	defer span.End()

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(h.now),
	}
	if h.issuer != "" {
		opts = append(opts, jwt.WithIssuer(h.issuer))
	}

	claims := new(Claims)
	_, err := jwt.ParseWithClaims(rawToken, claims, func(*jwt.Token) (any, error) {
		return h.secret, nil
	}, opts...)
	if err != nil {
		return identity.Identity{}, err
	}

	if claims.UserID == "" || !claims.Role.Valid() {
		return identity.Identity{}, fmt.Errorf("token payload is missing userId or role")
	}

	return claims.Identity(), nil
}

func NewHMACTokens(secret, issuer string, ttl time.Duration, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) (*HMACTokens, error) {
	if secret == "" {
		return nil, fmt.Errorf("secret is required for HMAC tokens")
	}

	h := new(HMACTokens)

	h.secret = []byte(secret)
	h.issuer = issuer
	h.ttl = ttl
	if h.ttl <= 0 {
		h.ttl = DefaultTokenTTL
	}
	h.now = time.Now

	h.tracer = tracer
	h.monitor = monitor
	h.logger = logger

	return h, nil
}
