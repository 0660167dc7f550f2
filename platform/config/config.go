// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"callinsight_backend/platform/phone"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// JWTConfig provides JWT validation settings for middleware.
type JWTConfig interface {
	GetJWTAccessSecret() string
	IsAuthEnabled() bool
}

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
	GetCORSAllowCreds() bool
	GetRateLimitPerMinute() int
}

// AIConfig provides settings for the generation backends.
type AIConfig interface {
	GetGeminiAPIKey() string
	GetAnalysisModel() string
	GetChatModel() string
	GetChatProvider() string
	GetMoonshotAPIKey() string
	GetAIRequestTimeout() time.Duration
	GetAnalysisExtensions() bool
	// GetPIIRegion is the ISO 3166 region used to read national phone numbers
	// when scrubbing redacted analyses.
	GetPIIRegion() string
}

// UploadConfig provides size caps for uploaded audio and reference documents.
type UploadConfig interface {
	GetMaxAudioBytes() int64
	GetMaxDocumentBytes() int64
	GetMaxReferenceChars() int
}

// TelemetryConfig provides settings for the telemetry sink.
type TelemetryConfig interface {
	GetServiceName() string
	GetOTLPEndpoint() string
	GetOTLPHeaders() string
	IsOTLPEnabled() bool
	IsMetricsEnabled() bool
	GetTelemetryBuffer() int
}

// AlertConfig provides settings for quality alert e-mails.
type AlertConfig interface {
	GetQualityAlertThreshold() int
	GetAlertEmailTo() string
	GetSMTPHost() string
	GetSMTPPort() int
	GetSMTPUsername() string
	GetSMTPPassword() string
	GetEmailFromName() string
	GetEmailFromAddress() string
	IsAlertEmailEnabled() bool
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values.
type Config struct {
	Env                   string
	HTTPAddr              string
	JWTAccessSecret       string
	CORSAllowAll          bool
	CORSOrigins           []string
	CORSAllowCreds        bool
	RateLimitPerMinute    int
	GeminiAPIKey          string
	AnalysisModel         string
	ChatModel             string
	ChatProvider          string
	MoonshotAPIKey        string
	AIRequestTimeout      time.Duration
	AnalysisExtensions    bool
	PIIRegion             string
	MaxAudioBytes         int64
	MaxDocumentBytes      int64
	MaxReferenceChars     int
	ServiceName           string
	OTLPEndpoint          string
	OTLPHeaders           string
	MetricsEnabled        bool
	TelemetryBuffer       int
	QualityAlertThreshold int
	AlertEmailTo          string
	SMTPHost              string
	SMTPPort              int
	SMTPUsername          string
	SMTPPassword          string
	EmailFromName         string
	EmailFromAddress      string
}

// =============================================================================
// Interface Implementations
// =============================================================================

// JWTConfig implementation
func (c *Config) GetJWTAccessSecret() string { return c.JWTAccessSecret }
func (c *Config) IsAuthEnabled() bool        { return c.JWTAccessSecret != "" }

// HTTPConfig implementation
func (c *Config) GetHTTPAddr() string        { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool      { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string   { return c.CORSOrigins }
func (c *Config) GetCORSAllowCreds() bool    { return c.CORSAllowCreds }
func (c *Config) GetRateLimitPerMinute() int { return c.RateLimitPerMinute }

// AIConfig implementation
func (c *Config) GetGeminiAPIKey() string            { return c.GeminiAPIKey }
func (c *Config) GetAnalysisModel() string           { return c.AnalysisModel }
func (c *Config) GetChatModel() string               { return c.ChatModel }
func (c *Config) GetChatProvider() string            { return c.ChatProvider }
func (c *Config) GetMoonshotAPIKey() string          { return c.MoonshotAPIKey }
func (c *Config) GetAIRequestTimeout() time.Duration { return c.AIRequestTimeout }
func (c *Config) GetAnalysisExtensions() bool        { return c.AnalysisExtensions }
func (c *Config) GetPIIRegion() string               { return c.PIIRegion }

// UploadConfig implementation
func (c *Config) GetMaxAudioBytes() int64    { return c.MaxAudioBytes }
func (c *Config) GetMaxDocumentBytes() int64 { return c.MaxDocumentBytes }
func (c *Config) GetMaxReferenceChars() int  { return c.MaxReferenceChars }

// TelemetryConfig implementation
func (c *Config) GetServiceName() string  { return c.ServiceName }
func (c *Config) GetOTLPEndpoint() string { return c.OTLPEndpoint }
func (c *Config) GetOTLPHeaders() string  { return c.OTLPHeaders }
func (c *Config) IsOTLPEnabled() bool     { return c.OTLPEndpoint != "" }
func (c *Config) IsMetricsEnabled() bool  { return c.MetricsEnabled }
func (c *Config) GetTelemetryBuffer() int { return c.TelemetryBuffer }

// AlertConfig implementation
func (c *Config) GetQualityAlertThreshold() int { return c.QualityAlertThreshold }
func (c *Config) GetAlertEmailTo() string       { return c.AlertEmailTo }
func (c *Config) GetSMTPHost() string           { return c.SMTPHost }
func (c *Config) GetSMTPPort() int              { return c.SMTPPort }
func (c *Config) GetSMTPUsername() string       { return c.SMTPUsername }
func (c *Config) GetSMTPPassword() string       { return c.SMTPPassword }
func (c *Config) GetEmailFromName() string      { return c.EmailFromName }
func (c *Config) GetEmailFromAddress() string   { return c.EmailFromAddress }
func (c *Config) IsAlertEmailEnabled() bool {
	return c.SMTPHost != "" && c.AlertEmailTo != "" && c.EmailFromAddress != ""
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	corsOrigins := splitCSV(getEnv("CORS_ORIGINS", "http://localhost:5173"))
	corsAllowAll := strings.EqualFold(getEnv("CORS_ALLOW_ALL", "false"), "true")
	if containsWildcard(corsOrigins) {
		corsAllowAll = true
	}

	cfg := &Config{
		Env:                   getEnv("APP_ENV", "development"),
		HTTPAddr:              getEnv("HTTP_ADDR", ":8080"),
		JWTAccessSecret:       getEnv("JWT_ACCESS_SECRET", ""),
		CORSAllowAll:          corsAllowAll,
		CORSOrigins:           corsOrigins,
		CORSAllowCreds:        strings.EqualFold(getEnv("CORS_ALLOW_CREDENTIALS", "false"), "true"),
		RateLimitPerMinute:    mustInt(getEnv("RATE_LIMIT_PER_MINUTE", "30")),
		GeminiAPIKey:          getEnv("GEMINI_API_KEY", ""),
		AnalysisModel:         getEnv("ANALYSIS_MODEL", "gemini-2.5-flash"),
		ChatModel:             getEnv("CHAT_MODEL", "gemini-2.5-flash"),
		ChatProvider:          strings.ToLower(getEnv("CHAT_PROVIDER", "gemini")),
		MoonshotAPIKey:        getEnv("MOONSHOT_API_KEY", ""),
		AIRequestTimeout:      mustDuration(getEnv("AI_REQUEST_TIMEOUT", "120s")),
		AnalysisExtensions:    strings.EqualFold(getEnv("ANALYSIS_EXTENSIONS", "true"), "true"),
		PIIRegion:             strings.ToUpper(getEnv("PII_REGION", phone.DefaultRegion)),
		MaxAudioBytes:         mustInt64(getEnv("MAX_AUDIO_BYTES", "26214400")),
		MaxDocumentBytes:      mustInt64(getEnv("MAX_DOCUMENT_BYTES", "10485760")),
		MaxReferenceChars:     mustInt(getEnv("MAX_REFERENCE_CHARS", "120000")),
		ServiceName:           getEnv("OTEL_SERVICE_NAME", "callinsight-backend"),
		OTLPEndpoint:          strings.TrimRight(getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""), "/"),
		OTLPHeaders:           getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""),
		MetricsEnabled:        strings.EqualFold(getEnv("METRICS_ENABLED", "true"), "true"),
		TelemetryBuffer:       mustInt(getEnv("TELEMETRY_BUFFER", "256")),
		QualityAlertThreshold: mustInt(getEnv("QUALITY_ALERT_THRESHOLD", "50")),
		AlertEmailTo:          getEnv("ALERT_EMAIL_TO", ""),
		SMTPHost:              getEnv("SMTP_HOST", ""),
		SMTPPort:              mustInt(getEnv("SMTP_PORT", "587")),
		SMTPUsername:          getEnv("SMTP_USERNAME", ""),
		SMTPPassword:          getEnv("SMTP_PASSWORD", ""),
		EmailFromName:         getEnv("EMAIL_FROM_NAME", "Call QA"),
		EmailFromAddress:      getEnv("EMAIL_FROM_ADDRESS", ""),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.GeminiAPIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY is required")
	}
	switch c.ChatProvider {
	case "gemini":
	case "moonshot":
		if c.MoonshotAPIKey == "" {
			return fmt.Errorf("MOONSHOT_API_KEY is required when CHAT_PROVIDER is moonshot")
		}
	default:
		return fmt.Errorf("CHAT_PROVIDER must be gemini or moonshot, got %q", c.ChatProvider)
	}
	if c.AIRequestTimeout <= 0 {
		return fmt.Errorf("AI_REQUEST_TIMEOUT must be a positive duration")
	}
	if !phone.SupportedRegion(c.PIIRegion) {
		return fmt.Errorf("PII_REGION must be an ISO 3166 region code, got %q", c.PIIRegion)
	}
	if c.MaxAudioBytes <= 0 || c.MaxDocumentBytes <= 0 {
		return fmt.Errorf("MAX_AUDIO_BYTES and MAX_DOCUMENT_BYTES must be positive")
	}
	if c.QualityAlertThreshold < 0 || c.QualityAlertThreshold > 100 {
		return fmt.Errorf("QUALITY_ALERT_THRESHOLD must be between 0 and 100")
	}
	if c.CORSAllowAll && c.CORSAllowCreds {
		return fmt.Errorf("CORS_ALLOW_CREDENTIALS cannot be true when CORS_ALLOW_ALL is true")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func mustDuration(value string) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0
	}
	return d
}

func mustInt64(value string) int64 {
	result, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0
	}
	return result
}

func mustInt(value string) int {
	result, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0
	}
	return result
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	results := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			results = append(results, trimmed)
		}
	}
	return results
}

func containsWildcard(values []string) bool {
	for _, value := range values {
		if value == "*" {
			return true
		}
	}
	return false
}
