// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"callinsight_backend/platform/events"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// =============================================================================
// Call QA Domain Events
// =============================================================================

// CallAnalyzed is published after an analysis passed contract validation.
type CallAnalyzed struct {
	BaseEvent
	RequestID          string   `json:"requestId,omitempty"`
	Model              string   `json:"model"`
	QualityScore       int      `json:"qualityScore"`
	Sentiment          string   `json:"sentiment"`
	CompliancePassRate float64  `json:"compliancePassRate"`
	FailedCompliance   []string `json:"failedCompliance,omitempty"`
	Summary            string   `json:"summary"`
	Redacted           bool     `json:"redacted"`
}

func (e CallAnalyzed) EventName() string { return "callqa.call.analyzed" }

// QualityAlertRaised is published when an analyzed call falls below the
// quality threshold or failed a compliance step.
type QualityAlertRaised struct {
	BaseEvent
	RequestID        string   `json:"requestId,omitempty"`
	QualityScore     int      `json:"qualityScore"`
	Threshold        int      `json:"threshold"`
	Sentiment        string   `json:"sentiment"`
	FailedCompliance []string `json:"failedCompliance,omitempty"`
	Reasons          []string `json:"reasons"`
	Summary          string   `json:"summary"`
}

func (e QualityAlertRaised) EventName() string { return "callqa.quality.alert_raised" }
