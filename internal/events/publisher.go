// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/canonical/project-hub/internal/logging"
	"github.com/canonical/project-hub/internal/monitoring"
	"github.com/canonical/project-hub/internal/tracing"
	"github.com/canonical/project-hub/internal/types"
)

const (
	StreamName    = "AUDIT_EVENTS"
	subjectPrefix = "audit"
	globalScope   = "global"
)

var _ PublisherInterface = (*Publisher)(nil)

type Config struct {
	URL         string
	ServiceName string
}

// Publisher pushes committed audit entries to a JetStream stream.
type Publisher struct {
	conn *nats.Conn
	js   JetStreamInterface

	tracer  tracing.TracingInterface
	monitor monitoring.MonitorInterface
	logger  logging.LoggerInterface
}

// Subject returns audit.<tenant|global>.<table>.<action>.
func Subject(entry *types.AuditEntry) string {
	scope := globalScope
	if entry.TenantID != nil && *entry.TenantID != "" {
		scope = *entry.TenantID
	}

	return strings.Join([]string{subjectPrefix, scope, entry.TableName, strings.ToLower(string(entry.Action))}, ".")
}

func (p *Publisher) Publish(ctx context.Context, entry *types.AuditEntry) error {
	ctx, span := p.tracer.Start(ctx, "events.Publisher.Publish")
	defer span.End()

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal audit entry: %w", err)
	}

	// the entry id deduplicates redeliveries within the stream window
	if _, err := p.js.Publish(Subject(entry), data, nats.MsgId(entry.ID), nats.Context(ctx)); err != nil {
		return fmt.Errorf("failed to publish audit entry %s: %w", entry.ID, err)
	}

	return nil
}

func (p *Publisher) Close() {
	if p.conn == nil {
		return
	}

	if err := p.conn.Drain(); err != nil {
		p.logger.Warnf("failed to drain NATS connection: %v", err)
		p.conn.Close()
	}
}

// NewPublisher connects to NATS and makes sure the audit stream exists.
func NewPublisher(cfg Config, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) (*Publisher, error) {
	component := map[string]string{"component": "nats"}

	opts := []nats.Option{
		nats.Name(cfg.ServiceName),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2 * time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			_ = monitor.SetDependencyAvailability(component, 0)
			logger.Warnf("NATS disconnected: %v", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			_ = monitor.SetDependencyAvailability(component, 1)
			logger.Infof("NATS reconnected to %s", nc.ConnectedUrl())
		}),
		nats.ErrorHandler(func(_ *nats.Conn, _ *nats.Subscription, err error) {
			logger.Errorf("NATS error: %v", err)
		}),
	}

	conn, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	_, err = js.AddStream(&nats.StreamConfig{
		Name:        StreamName,
		Description: "Committed audit log entries",
		Subjects:    []string{subjectPrefix + ".>"},
		Storage:     nats.FileStorage,
		Retention:   nats.LimitsPolicy,
		MaxAge:      7 * 24 * time.Hour,
		Duplicates:  2 * time.Minute,
		Discard:     nats.DiscardOld,
	})
	if err != nil && !errors.Is(err, nats.ErrStreamNameAlreadyInUse) {
		logger.Warnf("could not create stream %s: %v", StreamName, err)
	}

	_ = monitor.SetDependencyAvailability(component, 1)

	return newPublisher(conn, js, tracer, monitor, logger), nil
}

func newPublisher(conn *nats.Conn, js JetStreamInterface, tracer tracing.TracingInterface, monitor monitoring.MonitorInterface, logger logging.LoggerInterface) *Publisher {
	p := new(Publisher)

	p.conn = conn
	p.js = js

	p.tracer = tracer
	p.monitor = monitor
	p.logger = logger

	return p
}
