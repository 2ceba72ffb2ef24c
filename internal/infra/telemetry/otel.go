// Package telemetry configures OpenTelemetry tracing.
package telemetry

import (
	"context"
	"log/slog"

	"taskboard/config"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/fx"
)

// Params defines the required parameters
type Params struct {
	fx.In
	fx.Lifecycle

	Config *config.Config
	Logger *slog.Logger
}

// NewTracerProvider exports spans over OTLP/HTTP when an endpoint is configured.
// Without one it returns a no-op provider.
func NewTracerProvider(params Params) (trace.TracerProvider, error) {
	cfg := params.Config.Telemetry
	if cfg.OTLPEndpoint == "" {
		params.Logger.Info("Tracing disabled, no OTLP endpoint configured")

		return noop.NewTracerProvider(), nil
	}

	exporter, err := otlptracehttp.New(context.Background(),
		otlptracehttp.WithEndpoint(cfg.OTLPEndpoint),
		otlptracehttp.WithInsecure(),
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create OTLP exporter")
	}

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = params.Config.Env.ServiceName
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(serviceName),
			semconv.DeploymentEnvironment(params.Config.Env.Env),
		)),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	params.Logger.Info("Tracing enabled",
		slog.String("endpoint", cfg.OTLPEndpoint),
		slog.String("service", serviceName),
	)

	params.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return errors.Wrap(tp.Shutdown(ctx), "failed to shut down tracer provider")
		},
	})

	return tp, nil
}

// Module provides the telemetry FX module
//
//nolint:gochecknoglobals
var Module = fx.Options(
	fx.Provide(NewTracerProvider),
)
