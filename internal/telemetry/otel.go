package telemetry

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploghttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	otellog "go.opentelemetry.io/otel/log"
	"go.opentelemetry.io/otel/log/global"
	"go.opentelemetry.io/otel/propagation"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	"callinsight_backend/platform/config"
)

const instrumentationName = "callinsight_backend/internal/telemetry"

// Providers holds the OpenTelemetry providers installed by SetupOTel.
type Providers struct {
	tracerProvider *sdktrace.TracerProvider
	loggerProvider *sdklog.LoggerProvider
}

// Shutdown flushes and stops both providers.
func (p *Providers) Shutdown(ctx context.Context) error {
	if p == nil {
		return nil
	}
	var errs []error
	if p.tracerProvider != nil {
		if err := p.tracerProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracer shutdown: %w", err))
		}
	}
	if p.loggerProvider != nil {
		if err := p.loggerProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("logger shutdown: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("otel shutdown errors: %v", errs)
	}
	return nil
}

// SetupOTel installs global OTLP/HTTP trace and log providers. It returns nil
// providers when no endpoint is configured.
func SetupOTel(ctx context.Context, cfg config.TelemetryConfig) (*Providers, error) {
	if !cfg.IsOTLPEnabled() {
		return nil, nil
	}

	headers := parseHeaders(cfg.GetOTLPHeaders())

	res, err := resource.Merge(
		resource.Default(),
		resource.NewSchemaless(semconv.ServiceName(cfg.GetServiceName())),
	)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	traceExporter, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpointURL(cfg.GetOTLPEndpoint()+"/v1/traces"),
		otlptracehttp.WithHeaders(headers),
	)
	if err != nil {
		return nil, fmt.Errorf("creating trace exporter: %w", err)
	}

	tracerProvider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(traceExporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tracerProvider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	logExporter, err := otlploghttp.New(ctx,
		otlploghttp.WithEndpointURL(cfg.GetOTLPEndpoint()+"/v1/logs"),
		otlploghttp.WithHeaders(headers),
	)
	if err != nil {
		_ = tracerProvider.Shutdown(ctx)
		return nil, fmt.Errorf("creating log exporter: %w", err)
	}

	loggerProvider := sdklog.NewLoggerProvider(
		sdklog.WithProcessor(sdklog.NewBatchProcessor(logExporter)),
		sdklog.WithResource(res),
	)
	global.SetLoggerProvider(loggerProvider)

	return &Providers{
		tracerProvider: tracerProvider,
		loggerProvider: loggerProvider,
	}, nil
}

func parseHeaders(s string) map[string]string {
	headers := make(map[string]string)
	if s == "" {
		return headers
	}
	for _, pair := range strings.Split(s, ",") {
		kv := strings.SplitN(pair, "=", 2)
		if len(kv) == 2 {
			headers[strings.TrimSpace(kv[0])] = strings.TrimSpace(kv[1])
		}
	}
	return headers
}

// OTelExporter emits each event as an OpenTelemetry log record.
type OTelExporter struct {
	logger otellog.Logger
}

// NewOTelExporter emits through provider; nil uses the global provider.
func NewOTelExporter(provider otellog.LoggerProvider) *OTelExporter {
	if provider == nil {
		provider = global.GetLoggerProvider()
	}
	return &OTelExporter{logger: provider.Logger(instrumentationName)}
}

func (e *OTelExporter) Name() string { return "otel" }

func (e *OTelExporter) Export(ctx context.Context, event Event) error {
	var rec otellog.Record
	rec.SetTimestamp(time.Now())
	rec.SetSeverity(otellog.SeverityInfo)
	rec.SetSeverityText("INFO")
	rec.SetBody(otellog.StringValue("ai_telemetry"))
	rec.AddAttributes(
		otellog.String("ai.model", event.Model),
		otellog.String("ai.operation", string(event.Operation)),
		otellog.Int64("ai.duration_ms", event.DurationMs),
		otellog.Int("ai.token_estimate_in", event.TokenEstimateIn),
		otellog.Int("ai.token_estimate_out", event.TokenEstimateOut),
		otellog.String("ai.status", string(event.Status)),
	)
	if event.ErrorKind != "" {
		rec.AddAttributes(otellog.String("ai.error_kind", event.ErrorKind))
	}
	if event.QualityScore != nil {
		rec.AddAttributes(otellog.Int("callqa.quality_score", *event.QualityScore))
	}
	if event.Sentiment != "" {
		rec.AddAttributes(otellog.String("callqa.sentiment", event.Sentiment))
	}
	if event.CompliancePassRate != nil {
		rec.AddAttributes(otellog.Float64("callqa.compliance_pass_rate", *event.CompliancePassRate))
	}
	e.logger.Emit(ctx, rec)
	return nil
}
