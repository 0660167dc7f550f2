// Package callqa wires the call QA analysis and chat services into the HTTP
// router.
package callqa

import (
	"callinsight_backend/internal/callqa/agent"
	"callinsight_backend/internal/callqa/contract"
	"callinsight_backend/internal/callqa/handler"
	"callinsight_backend/internal/callqa/pii"
	"callinsight_backend/internal/documents"
	apphttp "callinsight_backend/internal/http"
	"callinsight_backend/platform/config"
	"callinsight_backend/platform/logger"
	"callinsight_backend/platform/validator"
)

// Settings combines the config the module reads.
type Settings interface {
	config.AIConfig
	config.UploadConfig
}

// Deps are the collaborators built by the composition root.
type Deps struct {
	AnalysisBackend agent.AnalysisBackend
	ChatBackend     agent.ChatBackend
	ChatModel       string
	Telemetry       agent.TelemetrySink
	Events          agent.Publisher
	Validator       *validator.Validator
	Logger          *logger.Logger
}

// Module is the call QA bounded context.
type Module struct {
	analysis *agent.AnalysisService
	chat     *agent.ChatService
	handler  *handler.Handler
}

// NewModule builds the services and the HTTP handler.
func NewModule(cfg Settings, deps Deps) *Module {
	analysis := agent.NewAnalysisService(agent.AnalysisConfig{
		Backend:   deps.AnalysisBackend,
		Contract:  contract.Analysis(contract.Options{Extensions: cfg.GetAnalysisExtensions()}),
		Model:     cfg.GetAnalysisModel(),
		Telemetry: deps.Telemetry,
		Events:    deps.Events,
		Scrubber:  pii.NewScrubber(cfg.GetPIIRegion()),
		Logger:    deps.Logger,
	})

	chatModel := deps.ChatModel
	if chatModel == "" {
		chatModel = cfg.GetChatModel()
	}
	chat := agent.NewChatService(agent.ChatConfig{
		Backend:   deps.ChatBackend,
		Model:     chatModel,
		Telemetry: deps.Telemetry,
		Logger:    deps.Logger,
	})

	h := handler.New(handler.Config{
		Analyzer:  analysis,
		Chatter:   chat,
		Documents: documents.NewExtractor(),
		Validator: deps.Validator,
		Limits: handler.Limits{
			MaxAudioBytes:     cfg.GetMaxAudioBytes(),
			MaxDocumentBytes:  cfg.GetMaxDocumentBytes(),
			MaxReferenceChars: cfg.GetMaxReferenceChars(),
			RequestTimeout:    cfg.GetAIRequestTimeout(),
		},
		Extensions: cfg.GetAnalysisExtensions(),
		Logger:     deps.Logger,
	})

	return &Module{analysis: analysis, chat: chat, handler: h}
}

func (m *Module) Name() string {
	return "callqa"
}

// AnalysisService returns the analysis service.
func (m *Module) AnalysisService() *agent.AnalysisService { return m.analysis }

// ChatService returns the chat service.
func (m *Module) ChatService() *agent.ChatService { return m.chat }

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected.Group("/callqa"))
}

var _ apphttp.Module = (*Module)(nil)
