// Package telemetry installs the process-wide OpenTelemetry tracer provider.
package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"k8s.io/klog/v2"
)

// Options configures tracing.
type Options struct {
	Enabled     bool
	Endpoint    string // OTLP gRPC collector, host:port
	Insecure    bool
	ServiceName string
	Version     string
}

// ShutdownFunc flushes pending spans and stops the exporter.
type ShutdownFunc func(context.Context) error

// Setup installs an SDK tracer provider exporting over OTLP gRPC. When
// tracing is disabled the global no-op provider is left in place. Clients
// pick up the provider when they are constructed, so Setup must run first.
func Setup(ctx context.Context, opts Options) (ShutdownFunc, error) {
	if !opts.Enabled {
		return func(context.Context) error { return nil }, nil
	}

	clientOpts := []otlptracegrpc.Option{}
	if opts.Endpoint != "" {
		clientOpts = append(clientOpts, otlptracegrpc.WithEndpoint(opts.Endpoint))
	}
	if opts.Insecure {
		clientOpts = append(clientOpts, otlptracegrpc.WithInsecure())
	}

	exporter, err := otlptracegrpc.New(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("creating trace exporter: %w", err)
	}

	tp := NewProvider(sdktrace.WithBatcher(exporter), opts.ServiceName, opts.Version)
	otel.SetTracerProvider(tp)
	klog.Infof("tracing enabled, exporting to %s", opts.Endpoint)

	return tp.Shutdown, nil
}

// NewProvider builds a tracer provider tagged with the service name and
// version, sending spans through the given span option.
func NewProvider(spans sdktrace.TracerProviderOption, service, version string) *sdktrace.TracerProvider {
	if service == "" {
		service = "po-scanner"
	}
	res := resource.NewSchemaless(
		attribute.String("service.name", service),
		attribute.String("service.version", version),
	)
	return sdktrace.NewTracerProvider(spans, sdktrace.WithResource(res))
}
