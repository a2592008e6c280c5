package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	openaigo "github.com/sashabaranov/go-openai"
)

const (
	VeniceBaseURL      = "https://api.venice.ai/api/v1"
	DefaultOpenAIModel = "gpt-4o-mini"
)

// OpenAIService implements LLMService for OpenAI and any OpenAI-compatible endpoint
// (Venice, local gateways) selected by base URL.
type OpenAIService struct {
	client    *openaigo.Client
	modelName string
	logger    *slog.Logger
}

func NewOpenAIService(apiKey, modelName, baseURL string, logger *slog.Logger) *OpenAIService {
	cfg := openaigo.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = strings.TrimSuffix(baseURL, "/")
	}
	if modelName == "" {
		modelName = DefaultOpenAIModel
	}
	return &OpenAIService{
		client:    openaigo.NewClientWithConfig(cfg),
		modelName: modelName,
		logger:    logger,
	}
}

func (o *OpenAIService) InitModel(ctx context.Context, modelName string) error {
	if modelName != "" {
		o.modelName = modelName
	}
	return nil
}

func (o *OpenAIService) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := o.client.CreateChatCompletion(ctx, openaigo.ChatCompletionRequest{
		Model: o.modelName,
		Messages: []openaigo.ChatCompletionMessage{
			{Role: openaigo.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("chat completion returned no choices")
	}

	if resp.Usage.TotalTokens > 0 {
		o.logger.Debug("Chat completion usage",
			"model", o.modelName,
			"prompt_tokens", resp.Usage.PromptTokens,
			"completion_tokens", resp.Usage.CompletionTokens)
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
