package agent

import (
	"context"
	"math"
	"strings"
	"time"

	"google.golang.org/genai"

	"callinsight_backend/internal/callqa/contract"
	"callinsight_backend/internal/callqa/domain"
	"callinsight_backend/internal/callqa/pii"
	"callinsight_backend/internal/callqa/prompt"
	"callinsight_backend/internal/events"
	"callinsight_backend/internal/telemetry"
	"callinsight_backend/platform/ai"
	"callinsight_backend/platform/apperr"
	"callinsight_backend/platform/logger"
)

const (
	opAnalysis = "analysis"

	// DefaultAudioMIMEType is assumed when the caller does not name one.
	DefaultAudioMIMEType = "audio/webm"

	// talkTimeTolerance is how far the two talk-time shares may drift from 100
	// before a warning is logged.
	talkTimeTolerance = 5.0
)

// AnalysisRequest is one recording to analyze.
type AnalysisRequest struct {
	Audio         []byte
	MIMEType      string
	RedactPII     bool
	ReferenceText string
}

// AnalysisConfig wires an AnalysisService. Telemetry, Events and Scrubber are
// optional.
type AnalysisConfig struct {
	Backend   AnalysisBackend
	Contract  *contract.Contract
	Model     string
	Telemetry TelemetrySink
	Events    Publisher
	Scrubber  *pii.Scrubber
	Logger    *logger.Logger
}

// AnalysisService turns audio into a validated CallAnalysis. It holds no
// per-request state and performs no retries.
type AnalysisService struct {
	backend   AnalysisBackend
	contract  *contract.Contract
	schema    *genai.Schema
	model     string
	telemetry TelemetrySink
	events    Publisher
	scrubber  *pii.Scrubber
	log       *logger.Logger
}

// NewAnalysisService creates the service.
func NewAnalysisService(cfg AnalysisConfig) *AnalysisService {
	s := &AnalysisService{
		backend:   cfg.Backend,
		contract:  cfg.Contract,
		model:     cfg.Model,
		telemetry: cfg.Telemetry,
		events:    cfg.Events,
		scrubber:  cfg.Scrubber,
		log:       cfg.Logger,
	}
	if s.contract == nil {
		s.contract = contract.Analysis(contract.Options{Extensions: true})
	}
	s.schema = s.contract.GenAISchema()
	if s.telemetry == nil {
		s.telemetry = noopSink{}
	}
	if s.events == nil {
		s.events = noopPublisher{}
	}
	if s.scrubber == nil {
		s.scrubber = pii.NewScrubber("")
	}
	if s.log == nil {
		s.log = logger.Discard()
	}
	return s
}

// Contract returns the contract replies are validated against.
func (s *AnalysisService) Contract() *contract.Contract {
	return s.contract
}

// Run performs one analysis request. Backend and contract failures are
// returned as *Failure; invalid input as an apperr validation error.
func (s *AnalysisService) Run(ctx context.Context, req AnalysisRequest) (domain.CallAnalysis, error) {
	if len(req.Audio) == 0 {
		return domain.CallAnalysis{}, apperr.Validation("audio is required").WithOp("agent.Analysis.Run")
	}
	mimeType := strings.TrimSpace(req.MIMEType)
	if mimeType == "" {
		mimeType = DefaultAudioMIMEType
	}

	log := s.log.WithContext(ctx)
	instruction := prompt.ForAnalysis(req.ReferenceText, req.RedactPII)

	start := time.Now()
	reply, err := s.backend.GenerateAnalysis(ctx, ai.AudioPrompt{
		Audio:       req.Audio,
		MIMEType:    mimeType,
		Instruction: instruction,
		Schema:      s.schema,
	})

	event := telemetry.Event{
		Model:            s.modelName(reply),
		Operation:        telemetry.OperationAnalysis,
		DurationMs:       time.Since(start).Milliseconds(),
		TokenEstimateIn:  telemetry.EstimateTextTokens(instruction) + telemetry.EstimateAudioTokens(len(req.Audio)),
		TokenEstimateOut: telemetry.EstimateTextTokens(reply.Text),
	}

	analysis, err := s.interpret(reply, err)
	if err != nil {
		event.Status = telemetry.StatusError
		event.ErrorKind = errorKind(err)
		s.telemetry.Log(event)
		log.BackendFailure(opAnalysis, event.ErrorKind, err)
		return domain.CallAnalysis{}, err
	}

	if req.RedactPII {
		var report pii.Report
		analysis, report = s.scrubber.Scrub(analysis)
		if report.Total() > 0 {
			log.Warn("redaction safeguard replaced leaked values",
				"emails", report.Emails,
				"cards", report.Cards,
				"phones", report.Phones,
			)
		}
	}

	s.checkTalkTime(log, analysis)

	score := analysis.QualityScore
	passRate := analysis.CompliancePassRate()
	event.Status = telemetry.StatusSuccess
	event.QualityScore = &score
	event.Sentiment = string(analysis.Sentiment)
	event.CompliancePassRate = &passRate
	s.telemetry.Log(event)

	requestID, _ := ctx.Value(logger.RequestIDKey).(string)
	s.events.Publish(ctx, events.CallAnalyzed{
		BaseEvent:          events.NewBaseEvent(),
		RequestID:          requestID,
		Model:              event.Model,
		QualityScore:       analysis.QualityScore,
		Sentiment:          string(analysis.Sentiment),
		CompliancePassRate: passRate,
		FailedCompliance:   analysis.FailedCompliance(),
		Summary:            analysis.Summary,
		Redacted:           req.RedactPII,
	})

	return analysis, nil
}

func (s *AnalysisService) interpret(reply ai.Reply, err error) (domain.CallAnalysis, error) {
	if err != nil {
		return domain.CallAnalysis{}, &Failure{Kind: backendKind(err), Op: opAnalysis, Err: err}
	}
	if strings.TrimSpace(reply.Text) == "" {
		return domain.CallAnalysis{}, &Failure{Kind: KindEmpty, Op: opAnalysis}
	}
	analysis, err := s.contract.Parse(reply.Text)
	if err != nil {
		return domain.CallAnalysis{}, contractFailure(opAnalysis, err)
	}
	return analysis, nil
}

// checkTalkTime logs when the reported shares do not add up to roughly 100.
// The analysis is returned as reported either way.
func (s *AnalysisService) checkTalkTime(log *logger.Logger, analysis domain.CallAnalysis) {
	stats := analysis.ConversationStats
	if stats == nil {
		return
	}
	sum := stats.AgentTalkTimePct + stats.CustomerTalkTimePct
	if math.Abs(sum-100) > talkTimeTolerance {
		log.Warn("talk-time shares do not sum to 100",
			"agent_pct", stats.AgentTalkTimePct,
			"customer_pct", stats.CustomerTalkTimePct,
			"sum", sum,
		)
	}
	if expected := domain.RatingForAgentShare(stats.AgentTalkTimePct); expected != stats.EffectivenessRating {
		log.Debug("effectiveness rating differs from band rule",
			"reported", stats.EffectivenessRating,
			"expected", expected,
		)
	}
}

func (s *AnalysisService) modelName(reply ai.Reply) string {
	if reply.Model != "" {
		return reply.Model
	}
	return s.model
}
