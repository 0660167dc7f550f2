package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadRequiresGeminiKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GEMINI_API_KEY")
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("CHAT_PROVIDER", "gemini")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "gemini-2.5-flash", cfg.GetAnalysisModel())
	assert.Equal(t, 120*time.Second, cfg.GetAIRequestTimeout())
	assert.Equal(t, int64(26214400), cfg.GetMaxAudioBytes())
	assert.Equal(t, 50, cfg.GetQualityAlertThreshold())
	assert.Equal(t, "US", cfg.GetPIIRegion())
	assert.False(t, cfg.IsAuthEnabled())
	assert.False(t, cfg.IsOTLPEnabled())
}

func TestLoadPIIRegion(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("CHAT_PROVIDER", "gemini")

	t.Setenv("PII_REGION", "id")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "ID", cfg.GetPIIRegion())

	t.Setenv("PII_REGION", "XX")
	_, err = Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PII_REGION")
}

func TestLoadMoonshotNeedsKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("CHAT_PROVIDER", "moonshot")
	t.Setenv("MOONSHOT_API_KEY", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MOONSHOT_API_KEY")
}

func TestLoadRejectsUnknownChatProvider(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("CHAT_PROVIDER", "llama")

	_, err := Load()
	require.Error(t, err)
}

func TestAlertEmailEnabled(t *testing.T) {
	cfg := &Config{SMTPHost: "smtp.example.com", AlertEmailTo: "qa@example.com"}
	assert.False(t, cfg.IsAlertEmailEnabled())

	cfg.EmailFromAddress = "noreply@example.com"
	assert.True(t, cfg.IsAlertEmailEnabled())
}

func TestSplitCSV(t *testing.T) {
	got := splitCSV(" http://a.test , ,http://b.test")
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, got)
	assert.True(t, containsWildcard([]string{"http://a.test", "*"}))
}
