// Package telemetry is the process-wide sink for per-request AI telemetry.
// Events are handed off without waiting and exported in the background, so
// telemetry can never slow down or fail an analysis or chat request.
package telemetry

import (
	"unicode/utf8"
)

// Operation names the request that produced an event.
type Operation string

const (
	OperationAnalysis Operation = "analysis"
	OperationChat     Operation = "chat"
)

// Status is the outcome of the request.
type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// Event is one telemetry record. The pointer fields are set only on a
// successful analysis.
type Event struct {
	Model              string    `json:"model"`
	Operation          Operation `json:"operation"`
	DurationMs         int64     `json:"durationMs"`
	TokenEstimateIn    int       `json:"tokenEstimateIn"`
	TokenEstimateOut   int       `json:"tokenEstimateOut"`
	Status             Status    `json:"status"`
	ErrorKind          string    `json:"errorKind,omitempty"`
	QualityScore       *int      `json:"qualityScore,omitempty"`
	Sentiment          string    `json:"sentiment,omitempty"`
	CompliancePassRate *float64  `json:"compliancePassRate,omitempty"`
}

const (
	charsPerToken = 4
	// Audio is estimated at 32 tokens per second, assuming 16 kB of encoded
	// audio per second.
	audioTokensPerSecond = 32
	audioBytesPerSecond  = 16_000
)

// EstimateTextTokens returns ceil(characters/4).
func EstimateTextTokens(text string) int {
	n := utf8.RuneCountInString(text)
	return (n + charsPerToken - 1) / charsPerToken
}

// EstimateAudioTokens converts an encoded audio size into a token estimate.
func EstimateAudioTokens(size int) int {
	if size <= 0 {
		return 0
	}
	seconds := (size + audioBytesPerSecond - 1) / audioBytesPerSecond
	return seconds * audioTokensPerSecond
}
