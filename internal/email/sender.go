package email

import (
	"context"
	"time"
)

// QualityAlert is the content of one quality alert e-mail.
type QualityAlert struct {
	RequestID        string
	QualityScore     int
	Threshold        int
	Sentiment        string
	FailedCompliance []string
	Reasons          []string
	Summary          string
	OccurredAt       time.Time
}

// Sender delivers notification e-mails.
type Sender interface {
	SendQualityAlert(ctx context.Context, to string, alert QualityAlert) error
}

// NoopSender discards every message. Used when SMTP is not configured.
type NoopSender struct{}

func (NoopSender) SendQualityAlert(context.Context, string, QualityAlert) error { return nil }
