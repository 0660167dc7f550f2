// Package moonshot adapts Moonshot's OpenAI-compatible chat completions API to
// the chat request shape in platform/ai.
package moonshot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"callinsight_backend/platform/ai"
)

// Config for Kimi
type Config struct {
	APIKey          string
	BaseURL         string
	Model           string
	DisableThinking bool // Disable thinking mode for kimi-k2.5 (uses temp 0.6 instead of 1.0)
	Timeout         time.Duration
}

// KimiModel serves chat replies through Moonshot.
type KimiModel struct {
	config Config
	client *http.Client
}

func NewModel(cfg Config) *KimiModel {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.moonshot.ai/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "kimi-k2-turbo-preview"
	}
	return &KimiModel{
		config: cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

func (m *KimiModel) Name() string {
	return m.config.Model
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIResponse struct {
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error interface{} `json:"error"`
}

// Chat sends the system instruction, the replayed history and the new message
// as one completion request.
func (m *KimiModel) Chat(ctx context.Context, prompt ai.ChatPrompt) (ai.Reply, error) {
	payload := map[string]interface{}{
		"model":    m.config.Model,
		"messages": m.convertMessages(prompt),
	}

	// Handle thinking mode for kimi-k2.5
	if m.config.DisableThinking {
		payload["thinking"] = map[string]string{"type": "disabled"}
	}

	jsonBody, err := json.Marshal(payload)
	if err != nil {
		return ai.Reply{Model: m.config.Model}, fmt.Errorf("failed to encode kimi request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, m.config.BaseURL+"/chat/completions", bytes.NewBuffer(jsonBody))
	if err != nil {
		return ai.Reply{Model: m.config.Model}, err
	}
	httpReq.Header.Set("Authorization", "Bearer "+m.config.APIKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(httpReq)
	if err != nil {
		return ai.Reply{Model: m.config.Model}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return ai.Reply{Model: m.config.Model}, fmt.Errorf("%w: kimi api status %d", ai.ErrQuotaExceeded, resp.StatusCode)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return ai.Reply{Model: m.config.Model}, fmt.Errorf("kimi api status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var result openAIResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return ai.Reply{Model: m.config.Model}, fmt.Errorf("failed to decode kimi response: %v", err)
	}
	if result.Error != nil {
		return ai.Reply{Model: m.config.Model}, fmt.Errorf("kimi api error: %v", result.Error)
	}
	if len(result.Choices) == 0 {
		return ai.Reply{Model: m.config.Model}, nil
	}

	return ai.Reply{
		Text:  strings.TrimSpace(result.Choices[0].Message.Content),
		Model: m.config.Model,
	}, nil
}

func (m *KimiModel) convertMessages(prompt ai.ChatPrompt) []openAIMessage {
	messages := make([]openAIMessage, 0, len(prompt.History)+2)
	if strings.TrimSpace(prompt.SystemInstruction) != "" {
		messages = append(messages, openAIMessage{Role: "system", Content: prompt.SystemInstruction})
	}
	for _, turn := range prompt.History {
		if strings.TrimSpace(turn.Text) == "" {
			continue
		}
		messages = append(messages, openAIMessage{
			Role:    roleForTurn(turn.Role),
			Content: turn.Text,
		})
	}
	messages = append(messages, openAIMessage{Role: "user", Content: prompt.Message})
	return messages
}

func roleForTurn(role string) string {
	if role == ai.RoleModel {
		return "assistant"
	}
	return "user"
}
