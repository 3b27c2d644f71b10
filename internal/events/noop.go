// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package events

import (
	"context"

	"github.com/canonical/project-hub/internal/types"
)

// NoopPublisher is used when no event bus is configured.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, *types.AuditEntry) error {
	return nil
}

func (NoopPublisher) Close() {}

func NewNoopPublisher() *NoopPublisher {
	return &NoopPublisher{}
}
