// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package prometheus

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/canonical/project-hub/internal/logging"
)

func TestMonitorCounters(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewMonitorWithRegisterer("project-hub", registry, logging.NewNoopLogger())

	if err := m.IncAuditedMutation(map[string]string{"table": "projects", "action": "CREATE"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := m.IncAuditedMutation(map[string]string{"table": "projects", "action": "CREATE"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := m.IncAuthorizationDenial(map[string]string{"resource": "task", "action": "delete"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := `
# HELP audited_mutations_total committed mutations with their audit entries
# TYPE audited_mutations_total counter
audited_mutations_total{action="CREATE",service="project-hub",table="projects"} 2
`
	if err := testutil.GatherAndCompare(registry, strings.NewReader(expected), "audited_mutations_total"); err != nil {
		t.Error(err)
	}

	if count := testutil.CollectAndCount(m.authorizationDenials); count != 1 {
		t.Errorf("expected 1 denial series, got %d", count)
	}
}

func TestMonitorDependencyAvailability(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewMonitorWithRegisterer("project-hub", registry, logging.NewNoopLogger())

	if err := m.SetDependencyAvailability(map[string]string{"component": "database"}, 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if v := testutil.ToFloat64(m.dependencyAvailability.WithLabelValues("project-hub", "database")); v != 1 {
		t.Errorf("expected availability 1, got %v", v)
	}

	if m.GetService() != "project-hub" {
		t.Errorf("unexpected service %s", m.GetService())
	}
}

func TestMonitorResponseTime(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewMonitorWithRegisterer("project-hub", registry, logging.NewNoopLogger())

	if err := m.SetResponseTimeMetric(map[string]string{"route": "GET/api/projects", "status": "200"}, 0.05); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if count := testutil.CollectAndCount(m.responseTime); count != 1 {
		t.Errorf("expected 1 histogram series, got %d", count)
	}
}
