package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// RetryingLLM retries failed completions with exponential backoff. It never retries
// once the caller's context is done.
type RetryingLLM struct {
	next            LLMService
	maxAttempts     uint
	initialInterval time.Duration
	logger          *slog.Logger
}

func NewRetryingLLM(next LLMService, maxAttempts int, initialInterval time.Duration, logger *slog.Logger) *RetryingLLM {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	if initialInterval <= 0 {
		initialInterval = 500 * time.Millisecond
	}
	return &RetryingLLM{
		next:            next,
		maxAttempts:     uint(maxAttempts),
		initialInterval: initialInterval,
		logger:          logger,
	}
}

func (r *RetryingLLM) InitModel(ctx context.Context, modelName string) error {
	return r.next.InitModel(ctx, modelName)
}

func (r *RetryingLLM) Complete(ctx context.Context, prompt string) (string, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = r.initialInterval

	op := func() (string, error) {
		text, err := r.next.Complete(ctx, prompt)
		if err != nil && ctx.Err() != nil {
			return "", backoff.Permanent(err)
		}
		return text, err
	}

	return backoff.Retry(ctx, op,
		backoff.WithBackOff(b),
		backoff.WithMaxTries(r.maxAttempts),
		backoff.WithNotify(func(err error, next time.Duration) {
			r.logger.Warn("LLM request failed, retrying", "error", err, "retry_in", next)
		}),
	)
}
