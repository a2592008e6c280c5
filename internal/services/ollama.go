package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ollama/ollama/api"
)

const DefaultOllamaURL = "http://localhost:11434"

// OllamaService implements the LLMService interface for a local Ollama server
type OllamaService struct {
	client    *api.Client
	modelName string
	logger    *slog.Logger
}

// NewOllamaService creates a new Ollama service instance
func NewOllamaService(baseURL string, modelName string, timeout time.Duration, logger *slog.Logger) (*OllamaService, error) {
	if baseURL == "" {
		baseURL = DefaultOllamaURL
	}
	u, err := url.Parse(strings.TrimSuffix(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid ollama URL %q: %w", baseURL, err)
	}
	return &OllamaService{
		client:    api.NewClient(u, &http.Client{Timeout: timeout}),
		modelName: modelName,
		logger:    logger,
	}, nil
}

// InitModel checks that the model exists locally and pulls it when it does not.
func (s *OllamaService) InitModel(ctx context.Context, modelName string) error {
	if modelName != "" {
		s.modelName = modelName
	}
	s.logger.Info("Initializing LLM model", "model", s.modelName)

	ready, err := s.isModelReady(ctx)
	if err != nil {
		return fmt.Errorf("failed to check model readiness: %w", err)
	}
	if ready {
		s.logger.Info("Model already available", "model", s.modelName)
		return nil
	}

	s.logger.Info("Model not found, pulling it", "model", s.modelName)
	err = s.client.Pull(ctx, &api.PullRequest{Model: s.modelName}, func(p api.ProgressResponse) error {
		s.logger.Debug("Pull progress", "status", p.Status, "completed", p.Completed, "total", p.Total)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to pull model: %w", err)
	}
	s.logger.Info("Model pulled successfully", "model", s.modelName)
	return nil
}

func (s *OllamaService) isModelReady(ctx context.Context) (bool, error) {
	_, err := s.client.Show(ctx, &api.ShowRequest{Model: s.modelName})
	if err == nil {
		return true, nil
	}
	var statusErr api.StatusError
	if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound {
		return false, nil
	}
	return false, err
}

func (s *OllamaService) Complete(ctx context.Context, prompt string) (string, error) {
	stream := false
	req := &api.GenerateRequest{
		Model:  s.modelName,
		Prompt: prompt,
		Stream: &stream,
	}

	var sb strings.Builder
	err := s.client.Generate(ctx, req, func(r api.GenerateResponse) error {
		sb.WriteString(r.Response)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("ollama generate failed: %w", err)
	}
	return strings.TrimSpace(sb.String()), nil
}
