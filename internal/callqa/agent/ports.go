package agent

import (
	"context"

	"callinsight_backend/internal/telemetry"
	"callinsight_backend/platform/ai"
	"callinsight_backend/platform/events"
)

// AnalysisBackend produces structured analysis text for an audio prompt.
type AnalysisBackend interface {
	GenerateAnalysis(ctx context.Context, prompt ai.AudioPrompt) (ai.Reply, error)
}

// ChatBackend produces one chat reply for a replayed conversation.
type ChatBackend interface {
	Chat(ctx context.Context, prompt ai.ChatPrompt) (ai.Reply, error)
}

// TelemetrySink receives one event per backend request without blocking.
type TelemetrySink interface {
	Log(event telemetry.Event)
}

// Publisher publishes domain events.
type Publisher interface {
	Publish(ctx context.Context, event events.Event)
}

type noopSink struct{}

func (noopSink) Log(telemetry.Event) {}

type noopPublisher struct{}

func (noopPublisher) Publish(context.Context, events.Event) {}
