// Package transport holds the request and response shapes of the call QA HTTP API.
package transport

import (
	"callinsight_backend/internal/callqa/domain"
)

// ChatTurn is one prior message of the conversation.
type ChatTurn struct {
	Role string `json:"role" validate:"required,oneof=user model"`
	Text string `json:"text" validate:"max=20000"`
}

// ChatRequest is the body of POST /callqa/chat. The full history is resent on
// every turn, so its size is bounded.
type ChatRequest struct {
	History       []ChatTurn           `json:"history" validate:"max=200,dive"`
	Message       string               `json:"message" validate:"required,max=8000"`
	Analysis      *domain.CallAnalysis `json:"analysis,omitempty"`
	ReferenceText string               `json:"referenceText,omitempty"`
}

// Turns converts the history to the domain form, preserving order.
func (r ChatRequest) Turns() []domain.ChatTurn {
	turns := make([]domain.ChatTurn, len(r.History))
	for i, t := range r.History {
		turns[i] = domain.ChatTurn{Role: domain.ChatRole(t.Role), Text: t.Text}
	}
	return turns
}

// ChatResponse is the assistant message appended to the dashboard transcript.
type ChatResponse = domain.ChatMessage

// ExtractResponse is the result of POST /callqa/documents/extract.
type ExtractResponse struct {
	Text       string `json:"text"`
	Characters int    `json:"characters"`
	Format     string `json:"format"`
	Truncated  bool   `json:"truncated"`
}

// FailureDetails is the details object of a failed generation request.
type FailureDetails struct {
	Kind       string `json:"kind"`
	Cause      string `json:"cause,omitempty"`
	Violations any    `json:"violations,omitempty"`
}
