package services

import (
	"context"
)

// LLMService is the text completion gateway used by the narrative engine.
// Every Complete call is independent: no conversation history is kept between calls,
// and errors are returned unchanged without retrying.
type LLMService interface {
	// InitModel prepares the model on startup (e.g. pulls it on a local server)
	InitModel(ctx context.Context, modelName string) error

	// Complete sends one prompt as a fresh conversation and returns the trimmed completion
	Complete(ctx context.Context, prompt string) (string, error)
}
