package services

import (
	"context"
	"time"

	"github.com/jwebster45206/white-rabbit/internal/metrics"
)

// InstrumentedLLM records request counts and latency for the wrapped provider.
type InstrumentedLLM struct {
	next     LLMService
	provider string
	model    string
}

func NewInstrumentedLLM(next LLMService, provider, model string) *InstrumentedLLM {
	return &InstrumentedLLM{next: next, provider: provider, model: model}
}

func (i *InstrumentedLLM) InitModel(ctx context.Context, modelName string) error {
	if modelName != "" {
		i.model = modelName
	}
	return i.next.InitModel(ctx, modelName)
}

func (i *InstrumentedLLM) Complete(ctx context.Context, prompt string) (string, error) {
	start := time.Now()
	text, err := i.next.Complete(ctx, prompt)
	metrics.LLMRequestDuration.WithLabelValues(i.provider, i.model).Observe(time.Since(start).Seconds())

	status := "success"
	switch {
	case err != nil:
		status = "error"
	case text == "":
		status = "empty"
	}
	metrics.LLMRequestsTotal.WithLabelValues(i.provider, i.model, status).Inc()
	return text, err
}
