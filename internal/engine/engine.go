// Package engine runs the narrative pipeline: prompt, completion, parse, validate.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jwebster45206/white-rabbit/internal/metrics"
	"github.com/jwebster45206/white-rabbit/internal/services"
	"github.com/jwebster45206/white-rabbit/pkg/narrative"
	"github.com/jwebster45206/white-rabbit/pkg/prompts"
	"github.com/jwebster45206/white-rabbit/pkg/textfilter"
)

// Options tune the engine.
type Options struct {
	// Timeout bounds each LLM call. Zero means no timeout beyond the caller's context.
	Timeout time.Duration
	// DebugLLM logs every prompt, raw completion and parsed record.
	DebugLLM bool
	// ContentRating G, PG or PG-13 softens profanity in generated text. Empty or R leaves it alone.
	ContentRating string
}

// Engine generates stage records. It keeps no state between calls.
type Engine struct {
	llm      services.LLMService
	builder  *prompts.Builder
	patterns *narrative.PatternSet
	opts     Options
	filter   *textfilter.ProfanityFilter
	logger   *slog.Logger
}

func New(llm services.LLMService, builder *prompts.Builder, patterns *narrative.PatternSet, opts Options, logger *slog.Logger) *Engine {
	e := &Engine{
		llm:      llm,
		builder:  builder,
		patterns: patterns,
		opts:     opts,
		logger:   logger,
	}
	if textfilter.ShouldFilterContent(opts.ContentRating) {
		e.filter = textfilter.NewProfanityFilter()
	}
	return e
}

// Generate runs one generation call for the request's stage. It returns either a
// complete, validated record or an error, never a partial record.
func (e *Engine) Generate(ctx context.Context, req Request) (narrative.Record, error) {
	if req == nil {
		return nil, &narrative.InvalidStageError{}
	}
	stage := req.Stage()

	prompt, err := e.builder.Build(stage, req.promptContext())
	if err != nil {
		e.count(stage, metrics.ResultPromptError)
		return nil, err
	}

	callCtx := ctx
	if e.opts.Timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, e.opts.Timeout)
		defer cancel()
	}

	raw, err := e.llm.Complete(callCtx, prompt)
	if err != nil {
		e.count(stage, metrics.ResultLLMError)
		e.logger.Error("LLM completion failed", "stage", stage, "error", err)
		return nil, fmt.Errorf("%s narrative generation failed: %w", stage, err)
	}

	rec, err := e.patterns.Parse(raw, stage)
	if e.opts.DebugLLM {
		e.logger.Debug("LLM exchange", "stage", stage, "prompt", prompt, "raw_response", raw, "parsed", rec, "error", err)
	}
	if err != nil {
		var schemaErr *narrative.SchemaError
		if errors.As(err, &schemaErr) {
			e.count(stage, metrics.ResultSchemaError)
		} else {
			e.count(stage, metrics.ResultFormatError)
		}
		e.logger.Warn("Rejected LLM completion", "stage", stage, "error", err)
		return nil, err
	}

	if e.filter != nil && e.filter.FilterRecord(rec) {
		metrics.FilteredRecordsTotal.WithLabelValues(string(stage)).Inc()
		e.logger.Info("Softened generated text", "stage", stage, "content_rating", e.opts.ContentRating)
	}

	e.count(stage, metrics.ResultSuccess)
	return rec, nil
}

// Initial generates the opening record.
func (e *Engine) Initial(ctx context.Context, req InitialRequest) (*narrative.InitialRecord, error) {
	rec, err := e.Generate(ctx, req)
	if err != nil {
		return nil, err
	}
	return rec.(*narrative.InitialRecord), nil
}

// Round generates the record following a player choice.
func (e *Engine) Round(ctx context.Context, req RoundRequest) (*narrative.RoundRecord, error) {
	rec, err := e.Generate(ctx, req)
	if err != nil {
		return nil, err
	}
	return rec.(*narrative.RoundRecord), nil
}

// Final generates the closing record.
func (e *Engine) Final(ctx context.Context, req FinalRequest) (*narrative.FinalRecord, error) {
	rec, err := e.Generate(ctx, req)
	if err != nil {
		return nil, err
	}
	return rec.(*narrative.FinalRecord), nil
}

func (e *Engine) count(stage narrative.Stage, result string) {
	metrics.NarrativeGenerationsTotal.WithLabelValues(string(stage), result).Inc()
}
