// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package authentication

import (
	"context"

	"github.com/canonical/project-hub/internal/identity"
)

type TokenVerifierInterface interface {
	// VerifyToken verifies a raw JWT string and returns the identity it carries
	VerifyToken(ctx context.Context, rawToken string) (identity.Identity, error)
}

type TokenIssuerInterface interface {
	IssueToken(ctx context.Context, id identity.Identity) (string, error)
}
