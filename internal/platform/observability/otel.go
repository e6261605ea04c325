package observability

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// Instruments bundles the process-wide logger, tracer and meter providers.
type Instruments struct {
	Logger         *slog.Logger
	TracerProvider trace.TracerProvider
	MeterProvider  metric.MeterProvider
	// MetricReader collects the service metrics on demand.
	MetricReader *sdkmetric.ManualReader
}

// Init configures slog and OpenTelemetry for one shop process. The logger is
// installed as slog's default. The returned function flushes pending spans.
//
// Environment:
//
//	LOG_LEVEL                    debug, info, warn or error (default info)
//	LOG_FORMAT                   json or text (default json)
//	OTEL_TRACES_EXPORTER         otlp (default), stdout or none
//	OTEL_EXPORTER_OTLP_ENDPOINT  collector host:port
//	OTEL_EXPORTER_OTLP_INSECURE  set to 0 to require TLS
//	ENVIRONMENT                  deployment.environment attribute
func Init(ctx context.Context, serviceName string) (*Instruments, func(context.Context) error, error) {
	logger := newLogger(os.Stdout, serviceName)

	res, err := resource.New(ctx,
		resource.WithFromEnv(),
		resource.WithProcess(),
		resource.WithTelemetrySDK(),
		resource.WithHost(),
		resource.WithAttributes(
			attribute.String("service.name", serviceName),
			attribute.String("deployment.environment", envOrDefault("ENVIRONMENT", "local")),
		),
	)
	if err != nil {
		return nil, nil, err
	}

	tracerOptions := []sdktrace.TracerProviderOption{sdktrace.WithResource(res)}
	spanExporter, err := newSpanExporter(ctx, logger)
	if err != nil {
		return nil, nil, err
	}
	if spanExporter != nil {
		tracerOptions = append(tracerOptions, sdktrace.WithBatcher(spanExporter))
	}
	tracerProvider := sdktrace.NewTracerProvider(tracerOptions...)
	otel.SetTracerProvider(tracerProvider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	reader := sdkmetric.NewManualReader()
	meterProvider := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(reader),
	)
	otel.SetMeterProvider(meterProvider)

	shutdown := func(ctx context.Context) error {
		return errors.Join(meterProvider.Shutdown(ctx), tracerProvider.Shutdown(ctx))
	}
	return &Instruments{
		Logger:         logger,
		TracerProvider: tracerProvider,
		MeterProvider:  meterProvider,
		MetricReader:   reader,
	}, shutdown, nil
}

// Tracer falls back to the global provider when i is nil.
func (i *Instruments) Tracer(name string) trace.Tracer {
	if i == nil || i.TracerProvider == nil {
		return otel.Tracer(name)
	}
	return i.TracerProvider.Tracer(name)
}

// Meter falls back to a no-op meter when i is nil.
func (i *Instruments) Meter(name string) metric.Meter {
	if i == nil || i.MeterProvider == nil {
		return metricnoop.NewMeterProvider().Meter(name)
	}
	return i.MeterProvider.Meter(name)
}

func newLogger(w io.Writer, serviceName string) *slog.Logger {
	options := &slog.HandlerOptions{Level: logLevel(os.Getenv("LOG_LEVEL")), AddSource: true}
	var handler slog.Handler = slog.NewJSONHandler(w, options)
	if strings.EqualFold(strings.TrimSpace(os.Getenv("LOG_FORMAT")), "text") {
		handler = slog.NewTextHandler(w, options)
	}
	logger := slog.New(handler).With(slog.String("service", serviceName))
	slog.SetDefault(logger)
	return logger
}

// logLevel parses LOG_LEVEL and defaults to info on anything it does not
// understand.
func logLevel(raw string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(raw))); err != nil {
		return slog.LevelInfo
	}
	return level
}

// newSpanExporter returns nil when tracing export is switched off.
func newSpanExporter(ctx context.Context, logger *slog.Logger) (sdktrace.SpanExporter, error) {
	switch strings.ToLower(envOrDefault("OTEL_TRACES_EXPORTER", "otlp")) {
	case "none":
		return nil, nil
	case "stdout", "console":
		return stdouttrace.New(stdouttrace.WithPrettyPrint())
	}
	var opts []otlptracehttp.Option
	if endpoint := strings.TrimSpace(os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")); endpoint != "" {
		opts = append(opts, otlptracehttp.WithEndpoint(endpoint))
	}
	if os.Getenv("OTEL_EXPORTER_OTLP_INSECURE") != "0" {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	exporter, err := otlptracehttp.New(ctx, opts...)
	if err == nil {
		return exporter, nil
	}
	logger.Warn("failed to initialize OTLP trace exporter, falling back to stdout", slog.String("error", err.Error()))
	return stdouttrace.New(stdouttrace.WithPrettyPrint())
}

func envOrDefault(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}
