// Package notification reacts to analyzed calls: calls that fall below the
// quality threshold or fail a compliance step raise an alert event and, when
// SMTP is configured, an e-mail to the QA inbox.
package notification

import (
	"context"
	"fmt"

	"callinsight_backend/internal/email"
	"callinsight_backend/internal/events"
	"callinsight_backend/platform/logger"
)

// Config controls when alerts fire and where they go.
type Config struct {
	// Threshold is the quality score below which a call is flagged.
	Threshold int
	// Recipient receives alert e-mails. Empty disables e-mail.
	Recipient string
}

// Module subscribes to analysis events and raises quality alerts.
type Module struct {
	cfg    Config
	sender email.Sender
	bus    events.Bus
	log    *logger.Logger
}

// New creates the notification module. A nil sender disables e-mail.
func New(cfg Config, sender email.Sender, bus events.Bus, log *logger.Logger) *Module {
	if sender == nil {
		sender = email.NoopSender{}
	}
	return &Module{cfg: cfg, sender: sender, bus: bus, log: log}
}

// RegisterHandlers subscribes the module to the events it reacts to.
func (m *Module) RegisterHandlers(bus *events.InMemoryBus) {
	bus.Subscribe(events.CallAnalyzed{}.EventName(), m)
	m.log.Info("notification module registered event handlers")
}

// Handle routes events to the appropriate handler method.
func (m *Module) Handle(ctx context.Context, event events.Event) error {
	switch e := event.(type) {
	case events.CallAnalyzed:
		return m.handleCallAnalyzed(ctx, e)
	case *events.CallAnalyzed:
		return m.handleCallAnalyzed(ctx, *e)
	default:
		return nil
	}
}

func (m *Module) handleCallAnalyzed(ctx context.Context, e events.CallAnalyzed) error {
	reasons := m.reasons(e)
	if len(reasons) == 0 {
		return nil
	}

	alert := events.QualityAlertRaised{
		BaseEvent:        events.NewBaseEvent(),
		RequestID:        e.RequestID,
		QualityScore:     e.QualityScore,
		Threshold:        m.cfg.Threshold,
		Sentiment:        e.Sentiment,
		FailedCompliance: e.FailedCompliance,
		Reasons:          reasons,
		Summary:          e.Summary,
	}

	log := m.log.WithContext(ctx)
	log.Warn("quality alert raised",
		"request_id", e.RequestID,
		"quality_score", e.QualityScore,
		"threshold", m.cfg.Threshold,
		"failed_compliance", len(e.FailedCompliance),
	)

	if m.bus != nil {
		m.bus.Publish(ctx, alert)
	}

	if m.cfg.Recipient == "" {
		return nil
	}
	err := m.sender.SendQualityAlert(ctx, m.cfg.Recipient, email.QualityAlert{
		RequestID:        alert.RequestID,
		QualityScore:     alert.QualityScore,
		Threshold:        alert.Threshold,
		Sentiment:        alert.Sentiment,
		FailedCompliance: alert.FailedCompliance,
		Reasons:          alert.Reasons,
		Summary:          alert.Summary,
		OccurredAt:       e.OccurredAt(),
	})
	if err != nil {
		log.Error("failed to send quality alert email", "error", err)
		return fmt.Errorf("send quality alert: %w", err)
	}
	return nil
}

func (m *Module) reasons(e events.CallAnalyzed) []string {
	var reasons []string
	if e.QualityScore < m.cfg.Threshold {
		reasons = append(reasons, fmt.Sprintf("quality score %d is below %d", e.QualityScore, m.cfg.Threshold))
	}
	if n := len(e.FailedCompliance); n > 0 {
		reasons = append(reasons, fmt.Sprintf("%d compliance step(s) failed", n))
	}
	return reasons
}
