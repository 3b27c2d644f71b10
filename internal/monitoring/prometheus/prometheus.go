// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package prometheus

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/canonical/project-hub/internal/logging"
	"github.com/canonical/project-hub/internal/monitoring"
)

var _ monitoring.MonitorInterface = (*Monitor)(nil)

type Monitor struct {
	service string

	responseTime           *prometheus.HistogramVec
	dependencyAvailability *prometheus.GaugeVec
	auditedMutations       *prometheus.CounterVec
	authorizationDenials   *prometheus.CounterVec

	logger logging.LoggerInterface
}

func (m *Monitor) GetService() string {
	return m.service
}

func (m *Monitor) SetResponseTimeMetric(tags map[string]string, value float64) error {
	observer, err := m.responseTime.GetMetricWith(m.labels(tags, "route", "status"))
	if err != nil {
		return fmt.Errorf("response time metric: %w", err)
	}

	observer.Observe(value)
	return nil
}

func (m *Monitor) SetDependencyAvailability(tags map[string]string, value float64) error {
	gauge, err := m.dependencyAvailability.GetMetricWith(m.labels(tags, "component"))
	if err != nil {
		return fmt.Errorf("dependency availability metric: %w", err)
	}

	gauge.Set(value)
	return nil
}

func (m *Monitor) IncAuditedMutation(tags map[string]string) error {
	counter, err := m.auditedMutations.GetMetricWith(m.labels(tags, "table", "action"))
	if err != nil {
		return fmt.Errorf("audited mutation metric: %w", err)
	}

	counter.Inc()
	return nil
}

func (m *Monitor) IncAuthorizationDenial(tags map[string]string) error {
	counter, err := m.authorizationDenials.GetMetricWith(m.labels(tags, "resource", "action"))
	if err != nil {
		return fmt.Errorf("authorization denial metric: %w", err)
	}

	counter.Inc()
	return nil
}

// labels keeps only the known label names, missing ones are set empty
func (m *Monitor) labels(tags map[string]string, names ...string) prometheus.Labels {
	l := prometheus.Labels{"service": m.service}
	for _, name := range names {
		l[name] = tags[name]
	}
	return l
}

func (m *Monitor) register(registerer prometheus.Registerer) {
	m.responseTime = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_response_time_seconds",
			Help:    "http response time",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service", "route", "status"},
	)

	m.dependencyAvailability = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "dependency_available",
			Help: "dependency availability, 1 when reachable",
		},
		[]string{"service", "component"},
	)

	m.auditedMutations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "audited_mutations_total",
			Help: "committed mutations with their audit entries",
		},
		[]string{"service", "table", "action"},
	)

	m.authorizationDenials = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "authorization_denials_total",
			Help: "requests denied by the permission evaluator",
		},
		[]string{"service", "resource", "action"},
	)

	for _, c := range []prometheus.Collector{m.responseTime, m.dependencyAvailability, m.auditedMutations, m.authorizationDenials} {
		if err := registerer.Register(c); err != nil {
			m.logger.Errorf("failed to register collector: %v", err)
		}
	}
}

// NewMonitor registers collectors on the default prometheus registry
func NewMonitor(service string, logger logging.LoggerInterface) *Monitor {
	return NewMonitorWithRegisterer(service, prometheus.DefaultRegisterer, logger)
}

func NewMonitorWithRegisterer(service string, registerer prometheus.Registerer, logger logging.LoggerInterface) *Monitor {
	m := new(Monitor)

	m.service = service
	m.logger = logger
	m.register(registerer)

	return m
}
