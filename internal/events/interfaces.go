// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package events

import (
	"context"

	"github.com/nats-io/nats.go"

	"github.com/canonical/project-hub/internal/types"
)

type PublisherInterface interface {
	Publish(ctx context.Context, entry *types.AuditEntry) error
	Close()
}

// JetStreamInterface is the subset of nats.JetStreamContext used to publish.
type JetStreamInterface interface {
	Publish(subj string, data []byte, opts ...nats.PubOpt) (*nats.PubAck, error)
}
