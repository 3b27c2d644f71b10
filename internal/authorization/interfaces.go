// Copyright 2025 Canonical Ltd
// SPDX-License-Identifier: AGPL-3.0

package authorization

import (
	"context"

	"github.com/canonical/project-hub/internal/identity"
)

type AuthorizerInterface interface {
	Authorize(context.Context, identity.Identity, Action, Resource) error
}
