// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package tracing

import (
	"context"
	"fmt"

	"go.opentelemetry.io/contrib/propagators/jaeger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/canonical/project-hub/internal/logging"
)

const serviceName = "project-hub"

var _ TracingInterface = (*Tracer)(nil)

type Tracer struct {
	tracer   trace.Tracer
	provider *sdktrace.TracerProvider

	logger logging.LoggerInterface
}

func (t *Tracer) Start(ctx context.Context, spanName string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, spanName, opts...)
}

// Shutdown flushes pending spans, it is a no-op when tracing is disabled
func (t *Tracer) Shutdown(ctx context.Context) error {
	if t.provider == nil {
		return nil
	}
	return t.provider.Shutdown(ctx)
}

func (t *Tracer) init(cfg *Config) error {
	exporter, err := t.exporter(cfg)
	if err != nil {
		return err
	}

	t.provider = sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(
			resource.NewSchemaless(attribute.String("service.name", serviceName)),
		),
	)

	otel.SetTracerProvider(t.provider)
	otel.SetTextMapPropagator(
		propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{},
			propagation.Baggage{},
			jaeger.Jaeger{},
		),
	)

	t.tracer = otel.Tracer(serviceName)

	return nil
}

func (t *Tracer) exporter(cfg *Config) (sdktrace.SpanExporter, error) {
	ctx := context.Background()

	switch {
	case cfg.OtelGRPCEndpoint != "":
		t.logger.Infof("exporting traces via gRPC to %s", cfg.OtelGRPCEndpoint)
		return otlptracegrpc.New(ctx, otlptracegrpc.WithEndpoint(cfg.OtelGRPCEndpoint), otlptracegrpc.WithInsecure())
	case cfg.OtelHTTPEndpoint != "":
		t.logger.Infof("exporting traces via HTTP to %s", cfg.OtelHTTPEndpoint)
		return otlptracehttp.New(ctx, otlptracehttp.WithEndpoint(cfg.OtelHTTPEndpoint), otlptracehttp.WithInsecure())
	}

	t.logger.Info("no otel endpoint configured, exporting traces to stdout")
	exporter, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
	if err != nil {
		return nil, fmt.Errorf("failed to create stdout exporter: %w", err)
	}

	return exporter, nil
}

// NewTracer returns a Tracer backed by the otel SDK when enabled, a noop one otherwise
func NewTracer(cfg *Config) *Tracer {
	t := new(Tracer)
	t.logger = cfg.Logger

	if !cfg.Enabled {
		t.tracer = noop.NewTracerProvider().Tracer(serviceName)
		return t
	}

	if err := t.init(cfg); err != nil {
		t.logger.Errorf("failed to initialize tracing, falling back to noop: %v", err)
		t.tracer = noop.NewTracerProvider().Tracer(serviceName)
	}

	return t
}

func NewNoopTracer() *Tracer {
	t := new(Tracer)
	t.tracer = noop.NewTracerProvider().Tracer(serviceName)
	t.logger = logging.NewNoopLogger()

	return t
}
