package email

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleAlert() QualityAlert {
	return QualityAlert{
		RequestID:        "req-42",
		QualityScore:     38,
		Threshold:        50,
		Sentiment:        "NEGATIVE",
		FailedCompliance: []string{"Verify identity"},
		Reasons:          []string{"quality score 38 is below 50"},
		Summary:          "Customer <b>angry</b> about billing.",
		OccurredAt:       time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestRenderQualityAlert(t *testing.T) {
	body, err := renderQualityAlert(sampleAlert())
	require.NoError(t, err)

	assert.Contains(t, body, "38 / 100")
	assert.Contains(t, body, "Verify identity")
	assert.Contains(t, body, "req-42")
	assert.Contains(t, body, "quality score 38 is below 50")
	assert.Contains(t, body, "&lt;b&gt;angry&lt;/b&gt;")
	assert.False(t, strings.Contains(body, "<b>angry</b>"))
}

func TestRenderQualityAlertOmitsEmptySections(t *testing.T) {
	alert := sampleAlert()
	alert.FailedCompliance = nil
	alert.Summary = ""

	body, err := renderQualityAlert(alert)
	require.NoError(t, err)
	assert.NotContains(t, body, "Failed compliance steps")
	assert.NotContains(t, body, "<h2 style=\"font-size:16px;\">Summary</h2>")
}

func TestQualityAlertSubject(t *testing.T) {
	assert.Equal(t, "Call quality alert: score 38 (threshold 50)", qualityAlertSubject(sampleAlert()))
}

func TestNewSMTPSenderRequiresHostAndFrom(t *testing.T) {
	_, err := NewSMTPSender(SMTPConfig{Host: "smtp.example.com"})
	require.Error(t, err)

	s, err := NewSMTPSender(SMTPConfig{Host: "smtp.example.com", FromAddress: "qa@example.com"})
	require.NoError(t, err)
	assert.Equal(t, 587, s.cfg.Port)
}

func TestMessageRejectsInvalidRecipient(t *testing.T) {
	s, err := NewSMTPSender(SMTPConfig{Host: "smtp.example.com", FromAddress: "qa@example.com", FromName: "Call QA"})
	require.NoError(t, err)

	_, err = s.message("not an address", "subject", "<p>x</p>")
	require.Error(t, err)

	msg, err := s.message("lead@example.com", "subject", "<p>x</p>")
	require.NoError(t, err)
	assert.NotNil(t, msg)
}

func TestNoopSender(t *testing.T) {
	var s Sender = NoopSender{}
	assert.NoError(t, s.SendQualityAlert(context.Background(), "x@example.com", sampleAlert()))
}
