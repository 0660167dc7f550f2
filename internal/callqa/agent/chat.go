package agent

import (
	"context"
	"fmt"
	"strings"
	"time"

	"callinsight_backend/internal/callqa/domain"
	"callinsight_backend/internal/callqa/prompt"
	"callinsight_backend/internal/telemetry"
	"callinsight_backend/platform/ai"
	"callinsight_backend/platform/apperr"
	"callinsight_backend/platform/logger"
)

const opChat = "chat"

// FallbackReply is returned when the backend succeeds with no text.
const FallbackReply = "I couldn't generate a response"

// ChatRequest is one chat turn. History is in chronological order.
type ChatRequest struct {
	History         []domain.ChatTurn
	Message         string
	AnalysisContext *domain.CallAnalysis
	ReferenceText   string
}

// ChatConfig wires a ChatService. Telemetry and Logger are optional.
type ChatConfig struct {
	Backend   ChatBackend
	Model     string
	Telemetry TelemetrySink
	Logger    *logger.Logger
}

// ChatService answers follow-up questions. Every call replays the full
// history; nothing is kept between calls.
type ChatService struct {
	backend   ChatBackend
	model     string
	telemetry TelemetrySink
	log       *logger.Logger
}

// NewChatService creates the service.
func NewChatService(cfg ChatConfig) *ChatService {
	s := &ChatService{
		backend:   cfg.Backend,
		model:     cfg.Model,
		telemetry: cfg.Telemetry,
		log:       cfg.Logger,
	}
	if s.telemetry == nil {
		s.telemetry = noopSink{}
	}
	if s.log == nil {
		s.log = logger.Discard()
	}
	return s
}

// Send returns the assistant's reply to req.Message.
func (s *ChatService) Send(ctx context.Context, req ChatRequest) (string, error) {
	if err := validateChat(req); err != nil {
		return "", err
	}

	instruction := prompt.ForChat(req.AnalysisContext, req.ReferenceText)
	history := make([]ai.Turn, len(req.History))
	tokensIn := telemetry.EstimateTextTokens(instruction) + telemetry.EstimateTextTokens(req.Message)
	for i, turn := range req.History {
		history[i] = ai.Turn{Role: string(turn.Role), Text: turn.Text}
		tokensIn += telemetry.EstimateTextTokens(turn.Text)
	}

	start := time.Now()
	reply, err := s.backend.Chat(ctx, ai.ChatPrompt{
		SystemInstruction: instruction,
		History:           history,
		Message:           req.Message,
	})

	event := telemetry.Event{
		Model:            s.modelName(reply),
		Operation:        telemetry.OperationChat,
		DurationMs:       time.Since(start).Milliseconds(),
		TokenEstimateIn:  tokensIn,
		TokenEstimateOut: telemetry.EstimateTextTokens(reply.Text),
	}

	if err != nil {
		failure := &Failure{Kind: KindChat, Op: opChat, Err: err, Cause: backendKind(err)}
		event.Status = telemetry.StatusError
		event.ErrorKind = errorKind(failure)
		s.telemetry.Log(event)
		s.log.WithContext(ctx).BackendFailure(opChat, event.ErrorKind, err)
		return "", failure
	}

	event.Status = telemetry.StatusSuccess
	s.telemetry.Log(event)

	text := strings.TrimSpace(reply.Text)
	if text == "" {
		return FallbackReply, nil
	}
	return text, nil
}

func validateChat(req ChatRequest) error {
	if strings.TrimSpace(req.Message) == "" {
		return apperr.Validation("message is required").WithOp("agent.Chat.Send")
	}
	for i, turn := range req.History {
		if !turn.Role.Valid() {
			return apperr.Validation(fmt.Sprintf("history[%d]: role must be user or model", i)).
				WithOp("agent.Chat.Send")
		}
	}
	return nil
}

func (s *ChatService) modelName(reply ai.Reply) string {
	if reply.Model != "" {
		return reply.Model
	}
	return s.model
}
