package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/pavelanni/attendance/internal/llm/prompts"
	"github.com/pavelanni/attendance/internal/model"

	openai "github.com/sashabaranov/go-openai"
)

// Summary is the narrative produced for a report.
type Summary struct {
	Text       string   `json:"summary"`
	Highlights []string `json:"highlights"`
}

// Client wraps an OpenAI-compatible API client.
type Client struct {
	api   *openai.Client
	model string
	tone  prompts.Tone
}

// New creates a new LLM client. An unknown tone falls back to standard.
func New(baseURL, apiKey, modelName, tone string) *Client {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	t := prompts.Tone(tone)
	if !prompts.IsValidTone(tone) {
		t = prompts.ToneStandard
	}
	return &Client{
		api:   openai.NewClientWithConfig(config),
		model: modelName,
		tone:  t,
	}
}

// Summarize asks the model for a narrative of rep written in lang.
func (c *Client) Summarize(ctx context.Context, rep model.Report, lang string) (*Summary, error) {
	if len(rep.Classes) == 0 {
		return &Summary{}, nil
	}

	systemPrompt, err := prompts.BuildSummaryPrompt(c.tone, rep, lang)
	if err != nil {
		return nil, fmt.Errorf("build summary prompt: %w", err)
	}

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: "Write the summary for " + rep.Title + "."},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Temperature: 0.4,
	})
	if err != nil {
		return nil, fmt.Errorf("LLM API call: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("LLM returned no choices")
	}

	raw := resp.Choices[0].Message.Content
	slog.Debug("LLM response", "raw", raw)

	var result Summary
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return nil, fmt.Errorf("parse LLM response: %w (raw: %s)", err, raw)
	}
	return &result, nil
}
