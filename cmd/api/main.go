package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"callinsight_backend/internal/callqa"
	"callinsight_backend/internal/callqa/agent"
	"callinsight_backend/internal/email"
	"callinsight_backend/internal/events"
	apphttp "callinsight_backend/internal/http"
	"callinsight_backend/internal/http/router"
	"callinsight_backend/internal/notification"
	"callinsight_backend/internal/telemetry"
	"callinsight_backend/platform/ai/gemini"
	"callinsight_backend/platform/ai/moonshot"
	"callinsight_backend/platform/config"
	"callinsight_backend/platform/logger"
	"callinsight_backend/platform/validator"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize structured logger
	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	providers, err := telemetry.SetupOTel(ctx, cfg)
	if err != nil {
		log.Error("failed to initialize opentelemetry", "error", err)
		panic("failed to initialize opentelemetry: " + err.Error())
	}
	if providers != nil {
		log.Info("opentelemetry export enabled", "endpoint", cfg.GetOTLPEndpoint())
	}

	exporters := []telemetry.Exporter{telemetry.NewLogExporter(log)}
	var metrics *telemetry.Metrics
	if cfg.IsMetricsEnabled() {
		metrics = telemetry.NewMetrics()
		exporters = append(exporters, metrics)
	}
	if providers != nil {
		exporters = append(exporters, telemetry.NewOTelExporter(nil))
	}
	sink := telemetry.NewSink()
	sink.Initialize(telemetry.Config{
		Buffer:    cfg.GetTelemetryBuffer(),
		Exporters: exporters,
		Logger:    log,
	})

	geminiClient, err := gemini.NewClient(ctx, gemini.Config{
		APIKey:        cfg.GetGeminiAPIKey(),
		AnalysisModel: cfg.GetAnalysisModel(),
		ChatModel:     cfg.GetChatModel(),
	})
	if err != nil {
		log.Error("failed to initialize gemini client", "error", err)
		panic("failed to initialize gemini client: " + err.Error())
	}

	chatBackend, chatModel := selectChatBackend(cfg, geminiClient, log)

	// Event bus for decoupled communication between modules
	eventBus := events.NewInMemoryBus(log)

	// Shared validator instance for dependency injection
	val := validator.New()

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	// Notification module subscribes to domain events (not HTTP-facing)
	notificationModule := notification.New(notification.Config{
		Threshold: cfg.GetQualityAlertThreshold(),
		Recipient: cfg.GetAlertEmailTo(),
	}, newAlertSender(cfg, log), eventBus, log)
	notificationModule.RegisterHandlers(eventBus)

	callqaModule := callqa.NewModule(cfg, callqa.Deps{
		AnalysisBackend: geminiClient,
		ChatBackend:     chatBackend,
		ChatModel:       chatModel,
		Telemetry:       sink,
		Events:          eventBus,
		Validator:       val,
		Logger:          log,
	})

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:   cfg,
		Logger:   log,
		EventBus: eventBus,
		Modules:  []apphttp.Module{callqaModule},
	}
	if metrics != nil {
		app.Metrics = metrics.Handler()
	}

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router.New(app),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutdown signal received, gracefully shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		err := server.Shutdown(shutdownCtx)
		eventBus.Wait()
		if serr := sink.Shutdown(shutdownCtx); serr != nil {
			log.Warn("telemetry shutdown incomplete", "error", serr)
		}
		if perr := providers.Shutdown(shutdownCtx); perr != nil {
			log.Warn("otel shutdown error", "error", perr)
		}
		return err
	})

	if err := g.Wait(); err != nil {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
	log.Info("shutdown complete")
}

func selectChatBackend(cfg config.AIConfig, geminiClient *gemini.Client, log *logger.Logger) (agent.ChatBackend, string) {
	if cfg.GetChatProvider() != "moonshot" {
		return geminiClient, geminiClient.ChatModel()
	}
	model := moonshot.NewModel(moonshot.Config{
		APIKey:  cfg.GetMoonshotAPIKey(),
		Timeout: cfg.GetAIRequestTimeout(),
	})
	log.Info("chat served by moonshot", "model", model.Name())
	return model, model.Name()
}

func newAlertSender(cfg config.AlertConfig, log *logger.Logger) email.Sender {
	if !cfg.IsAlertEmailEnabled() {
		log.Warn("SMTP or ALERT_EMAIL_TO not configured; quality alert e-mails disabled")
		return email.NoopSender{}
	}
	sender, err := email.NewSMTPSender(email.SMTPConfig{
		Host:        cfg.GetSMTPHost(),
		Port:        cfg.GetSMTPPort(),
		Username:    cfg.GetSMTPUsername(),
		Password:    cfg.GetSMTPPassword(),
		FromName:    cfg.GetEmailFromName(),
		FromAddress: cfg.GetEmailFromAddress(),
	})
	if err != nil {
		log.Error("failed to initialize email sender", "error", err)
		return email.NoopSender{}
	}
	return sender
}
