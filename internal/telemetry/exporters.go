package telemetry

import (
	"context"
	"log/slog"

	"callinsight_backend/platform/logger"
)

// LogExporter writes each event as an "ai_telemetry" log line.
type LogExporter struct {
	log *logger.Logger
}

// NewLogExporter returns an exporter writing to log.
func NewLogExporter(log *logger.Logger) *LogExporter {
	return &LogExporter{log: log}
}

func (e *LogExporter) Name() string { return "log" }

func (e *LogExporter) Export(ctx context.Context, event Event) error {
	attrs := []any{
		slog.String("model", event.Model),
		slog.String("operation", string(event.Operation)),
		slog.Int64("duration_ms", event.DurationMs),
		slog.Int("token_estimate_in", event.TokenEstimateIn),
		slog.Int("token_estimate_out", event.TokenEstimateOut),
		slog.String("status", string(event.Status)),
	}
	if event.ErrorKind != "" {
		attrs = append(attrs, slog.String("error_kind", event.ErrorKind))
	}
	if event.QualityScore != nil {
		attrs = append(attrs, slog.Int("quality_score", *event.QualityScore))
	}
	if event.Sentiment != "" {
		attrs = append(attrs, slog.String("sentiment", event.Sentiment))
	}
	if event.CompliancePassRate != nil {
		attrs = append(attrs, slog.Float64("compliance_pass_rate", *event.CompliancePassRate))
	}
	e.log.InfoContext(ctx, "ai_telemetry", attrs...)
	return nil
}
