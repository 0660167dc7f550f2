package notification

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"callinsight_backend/internal/email"
	"callinsight_backend/internal/events"
	"callinsight_backend/platform/logger"
)

type testSender struct {
	mu     sync.Mutex
	to     []string
	alerts []email.QualityAlert
	err    error
}

func (s *testSender) SendQualityAlert(_ context.Context, to string, alert email.QualityAlert) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.to = append(s.to, to)
	s.alerts = append(s.alerts, alert)
	return s.err
}

type recordingBus struct {
	published []events.Event
}

func (b *recordingBus) Publish(_ context.Context, e events.Event) { b.published = append(b.published, e) }
func (b *recordingBus) PublishSync(_ context.Context, e events.Event) error {
	b.published = append(b.published, e)
	return nil
}
func (b *recordingBus) Subscribe(string, events.Handler) {}

const testRecipient = "qa@example.com"

func analyzed(score int, failed ...string) events.CallAnalyzed {
	return events.CallAnalyzed{
		BaseEvent:        events.NewBaseEvent(),
		RequestID:        "req-1",
		QualityScore:     score,
		Sentiment:        "NEUTRAL",
		FailedCompliance: failed,
		Summary:          "Billing question.",
	}
}

func TestHealthyCallRaisesNothing(t *testing.T) {
	sender := &testSender{}
	bus := &recordingBus{}
	m := New(Config{Threshold: 50, Recipient: testRecipient}, sender, bus, logger.Discard())

	require.NoError(t, m.Handle(context.Background(), analyzed(80)))
	assert.Empty(t, bus.published)
	assert.Empty(t, sender.alerts)
}

func TestLowScoreRaisesAlertAndEmails(t *testing.T) {
	sender := &testSender{}
	bus := &recordingBus{}
	m := New(Config{Threshold: 50, Recipient: testRecipient}, sender, bus, logger.Discard())

	require.NoError(t, m.Handle(context.Background(), analyzed(30)))

	require.Len(t, bus.published, 1)
	alert, ok := bus.published[0].(events.QualityAlertRaised)
	require.True(t, ok)
	assert.Equal(t, 30, alert.QualityScore)
	assert.Equal(t, 50, alert.Threshold)
	assert.Equal(t, []string{"quality score 30 is below 50"}, alert.Reasons)

	require.Len(t, sender.alerts, 1)
	assert.Equal(t, testRecipient, sender.to[0])
	assert.Equal(t, "req-1", sender.alerts[0].RequestID)
}

func TestFailedComplianceRaisesAlertEvenWithGoodScore(t *testing.T) {
	bus := &recordingBus{}
	m := New(Config{Threshold: 50}, nil, bus, logger.Discard())

	require.NoError(t, m.Handle(context.Background(), analyzed(90, "Verify identity")))

	require.Len(t, bus.published, 1)
	alert := bus.published[0].(events.QualityAlertRaised)
	assert.Equal(t, []string{"1 compliance step(s) failed"}, alert.Reasons)
	assert.Equal(t, []string{"Verify identity"}, alert.FailedCompliance)
}

func TestScoreAtThresholdIsNotFlagged(t *testing.T) {
	bus := &recordingBus{}
	m := New(Config{Threshold: 50}, nil, bus, logger.Discard())

	require.NoError(t, m.Handle(context.Background(), analyzed(50)))
	assert.Empty(t, bus.published)
}

func TestNoRecipientSkipsEmail(t *testing.T) {
	sender := &testSender{}
	m := New(Config{Threshold: 50}, sender, &recordingBus{}, logger.Discard())

	require.NoError(t, m.Handle(context.Background(), analyzed(10)))
	assert.Empty(t, sender.alerts)
}

func TestSendFailureIsReturned(t *testing.T) {
	sender := &testSender{err: errors.New("relay down")}
	m := New(Config{Threshold: 50, Recipient: testRecipient}, sender, &recordingBus{}, logger.Discard())

	err := m.Handle(context.Background(), analyzed(10))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "relay down")
}

func TestUnrelatedEventsAreIgnored(t *testing.T) {
	bus := &recordingBus{}
	m := New(Config{Threshold: 50}, nil, bus, logger.Discard())

	require.NoError(t, m.Handle(context.Background(), events.QualityAlertRaised{BaseEvent: events.NewBaseEvent()}))
	assert.Empty(t, bus.published)
}

func TestRegisteredOnInMemoryBus(t *testing.T) {
	bus := events.NewInMemoryBus(logger.Discard())
	sender := &testSender{}
	m := New(Config{Threshold: 50, Recipient: testRecipient}, sender, bus, logger.Discard())
	m.RegisterHandlers(bus)

	bus.Publish(context.Background(), analyzed(20))
	bus.Wait()

	sender.mu.Lock()
	defer sender.mu.Unlock()
	assert.Len(t, sender.alerts, 1)
}
