// Package http provides HTTP server infrastructure including module registration.
package http

import (
	"net/http"

	"callinsight_backend/internal/events"
	"callinsight_backend/platform/config"
	"callinsight_backend/platform/logger"
)

// RouterConfig combines the config interfaces needed by the HTTP router.
type RouterConfig interface {
	config.HTTPConfig
	config.JWTConfig
	config.TelemetryConfig
}

// App holds the fully initialized application dependencies.
// This is populated by main.go (the composition root) and passed to the router.
type App struct {
	// Config holds the router configuration.
	Config RouterConfig
	// Logger is the structured logger.
	Logger *logger.Logger
	// Metrics serves the Prometheus registry. Nil disables /metrics.
	Metrics http.Handler
	// EventBus is the domain event bus for cross-module communication.
	EventBus events.Bus
	// Modules contains all HTTP-facing domain modules.
	Modules []Module
}
