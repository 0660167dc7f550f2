// Package ai holds the request shapes and error sentinels shared by the
// generation backend adapters. Adapters live in sub-packages.
package ai

import (
	"errors"

	"google.golang.org/genai"
)

// Roles accepted in chat history. They match the genai content roles.
const (
	RoleUser  = "user"
	RoleModel = "model"
)

// ErrQuotaExceeded marks a rate-limit or quota rejection (HTTP 429, RESOURCE_EXHAUSTED).
// Adapters wrap it so callers can classify failures without depending on a specific SDK.
var ErrQuotaExceeded = errors.New("generation backend quota exceeded")

// AudioPrompt is one structured-output request over an audio recording.
type AudioPrompt struct {
	Audio       []byte
	MIMEType    string
	Instruction string
	Schema      *genai.Schema
}

// Turn is one prior message in a conversation.
type Turn struct {
	Role string
	Text string
}

// ChatPrompt is one conversational request. History is replayed in order and
// Message is always sent last.
type ChatPrompt struct {
	SystemInstruction string
	History           []Turn
	Message           string
}

// Reply is the raw text a backend produced plus the model that produced it.
type Reply struct {
	Text  string
	Model string
}
