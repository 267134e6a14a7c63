// Package otel bootstraps OpenTelemetry tracing for the registry CLI.
package otel

import (
	"context"
	"strings"

	"github.com/louisbranch/cadastro/internal/platform/config"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// Settings controls trace export.
type Settings struct {
	// Endpoint is the OTLP/HTTP collector URL. Empty disables export.
	Endpoint string `env:"CADASTRO_OTEL_ENDPOINT"`
	// Enabled set to "false" disables export even when Endpoint is set.
	Enabled string `env:"CADASTRO_OTEL_ENABLED"`
}

// ShutdownFunc flushes pending spans.
type ShutdownFunc func(context.Context) error

func noop(context.Context) error { return nil }

// Setup reads Settings from the environment and initialises tracing.
//
// Tracing is opt-in: when CADASTRO_OTEL_ENDPOINT is empty or
// CADASTRO_OTEL_ENABLED is "false", Setup returns a no-op shutdown function
// and no global provider is registered.
func Setup(ctx context.Context, serviceName string) (ShutdownFunc, error) {
	var settings Settings
	if err := config.ParseEnv(&settings); err != nil {
		return noop, err
	}
	return SetupWithSettings(ctx, serviceName, settings)
}

// SetupWithSettings initialises tracing from explicit settings.
func SetupWithSettings(ctx context.Context, serviceName string, settings Settings) (ShutdownFunc, error) {
	if strings.EqualFold(strings.TrimSpace(settings.Enabled), "false") {
		return noop, nil
	}
	endpoint := strings.TrimSpace(settings.Endpoint)
	if endpoint == "" {
		return noop, nil
	}

	exporter, err := otlptracehttp.New(ctx, otlptracehttp.WithEndpointURL(endpoint))
	if err != nil {
		return noop, err
	}

	res, err := resource.New(ctx, resource.WithAttributes(semconv.ServiceName(serviceName)))
	if err != nil {
		return noop, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	return tp.Shutdown, nil
}
