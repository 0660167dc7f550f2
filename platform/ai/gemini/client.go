// Package gemini adapts the google.golang.org/genai SDK to the request shapes in
// platform/ai. One Client serves both the structured audio analysis call and
// the stateless chat call.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"

	"callinsight_backend/platform/ai"
)

const statusResourceExhausted = "RESOURCE_EXHAUSTED"

// Config for the Gemini client.
type Config struct {
	APIKey        string
	AnalysisModel string
	ChatModel     string
	// BaseURL overrides the API endpoint; empty uses the SDK default.
	BaseURL string
}

// Client wraps a genai.Client.
type Client struct {
	genai         *genai.Client
	analysisModel string
	chatModel     string
}

// NewClient creates a Gemini API client.
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini: API key is required")
	}
	if cfg.AnalysisModel == "" {
		cfg.AnalysisModel = "gemini-2.5-flash"
	}
	if cfg.ChatModel == "" {
		cfg.ChatModel = cfg.AnalysisModel
	}

	clientCfg := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}

	return &Client{
		genai:         client,
		analysisModel: cfg.AnalysisModel,
		chatModel:     cfg.ChatModel,
	}, nil
}

// AnalysisModel returns the model used for audio analysis.
func (c *Client) AnalysisModel() string {
	return c.analysisModel
}

// ChatModel returns the model used for chat replies.
func (c *Client) ChatModel() string {
	return c.chatModel
}

// GenerateAnalysis sends the audio plus instruction and asks for JSON matching
// the given schema. An empty reply is returned as Reply{Text: ""}, not an error.
func (c *Client) GenerateAnalysis(ctx context.Context, prompt ai.AudioPrompt) (ai.Reply, error) {
	contents := []*genai.Content{
		{
			Role: genai.RoleUser,
			Parts: []*genai.Part{
				genai.NewPartFromBytes(prompt.Audio, prompt.MIMEType),
				genai.NewPartFromText(prompt.Instruction),
			},
		},
	}

	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   prompt.Schema,
	}

	resp, err := c.genai.Models.GenerateContent(ctx, c.analysisModel, contents, config)
	if err != nil {
		return ai.Reply{Model: c.analysisModel}, classify(err)
	}

	return ai.Reply{Text: responseText(resp), Model: c.analysisModel}, nil
}

// Chat opens a fresh chat bound to the system instruction and the full history,
// then sends the new message. No server-side session survives the call.
func (c *Client) Chat(ctx context.Context, prompt ai.ChatPrompt) (ai.Reply, error) {
	history := make([]*genai.Content, 0, len(prompt.History))
	for _, turn := range prompt.History {
		history = append(history, genai.NewContentFromText(turn.Text, genai.Role(turn.Role)))
	}

	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(prompt.SystemInstruction, genai.RoleUser),
	}

	chat, err := c.genai.Chats.Create(ctx, c.chatModel, config, history)
	if err != nil {
		return ai.Reply{Model: c.chatModel}, classify(err)
	}

	resp, err := chat.SendMessage(ctx, genai.Part{Text: prompt.Message})
	if err != nil {
		return ai.Reply{Model: c.chatModel}, classify(err)
	}

	return ai.Reply{Text: responseText(resp), Model: c.chatModel}, nil
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	return strings.TrimSpace(resp.Text())
}

// classify wraps quota rejections with ai.ErrQuotaExceeded so callers can tell
// them apart from transport failures.
func classify(err error) error {
	if isQuota(err) {
		return fmt.Errorf("%w: %v", ai.ErrQuotaExceeded, err)
	}
	return err
}

func isQuota(err error) bool {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code == http.StatusTooManyRequests || apiErr.Status == statusResourceExhausted
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return apiErrPtr.Code == http.StatusTooManyRequests || apiErrPtr.Status == statusResourceExhausted
	}
	return false
}
