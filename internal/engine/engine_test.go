package engine

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/jwebster45206/white-rabbit/internal/metrics"
	"github.com/jwebster45206/white-rabbit/internal/services"
	"github.com/jwebster45206/white-rabbit/pkg/narrative"
	"github.com/jwebster45206/white-rabbit/pkg/prompts"
)

func newTestEngine(t *testing.T, llm services.LLMService, opts Options) *Engine {
	t.Helper()
	builder, err := prompts.NewBuilder(prompts.DefaultConfig())
	if err != nil {
		t.Fatalf("NewBuilder() error = %v", err)
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	return New(llm, builder, narrative.MustDefaultPatternSet(), opts, logger)
}

func TestEngine_Initial(t *testing.T) {
	mock := services.NewMockLLMAPI()
	e := newTestEngine(t, mock, Options{})

	rec, err := e.Initial(context.Background(), InitialRequest{Language: "en"})
	if err != nil {
		t.Fatalf("Initial() error = %v", err)
	}
	if rec.Situation != "A mysterious alley in the rain." {
		t.Errorf("Situation = %q", rec.Situation)
	}
	if len(rec.Choices) != 2 {
		t.Fatalf("expected 2 choices, got %d", len(rec.Choices))
	}

	_, calls := mock.GetCalls()
	if len(calls) != 1 {
		t.Fatalf("expected exactly one LLM call, got %d", len(calls))
	}
	if !strings.Contains(calls[0].Prompt, narrative.Grammar(narrative.StageInitial)) {
		t.Error("initial prompt should carry the initial grammar")
	}
}

func TestEngine_RoundPassesParameters(t *testing.T) {
	mock := services.NewMockLLMAPI()
	e := newTestEngine(t, mock, Options{})

	rec, err := e.Round(context.Background(), RoundRequest{
		NarrativeContext:         "Follow the white rabbit. A mysterious alley in the rain.\n",
		Action:                   "Follow the rabbit into the alley.",
		OutcomeValue:             -1,
		ActionConfirmingSentence: "You follow the rabbit into the alley.",
	})
	if err != nil {
		t.Fatalf("Round() error = %v", err)
	}
	if rec.ConfirmingSentence != "You press on through the dark." {
		t.Errorf("ConfirmingSentence = %q", rec.ConfirmingSentence)
	}

	_, calls := mock.GetCalls()
	prompt := calls[0].Prompt
	for _, want := range []string{
		"A mysterious alley in the rain.",
		"Action: Follow the rabbit into the alley.",
		"Outcome: -1",
		"LATEST CONFIRMING SENTENCE: You follow the rabbit into the alley.",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("round prompt missing %q", want)
		}
	}
}

func TestEngine_Final(t *testing.T) {
	mock := services.NewMockLLMAPI()
	e := newTestEngine(t, mock, Options{})

	rec, err := e.Final(context.Background(), FinalRequest{
		NarrativeContext: "Follow the white rabbit. Rain.\n",
		Result:           narrative.ResultLoss,
	})
	if err != nil {
		t.Fatalf("Final() error = %v", err)
	}
	if rec.Situation != "The rain stops and the city falls silent." {
		t.Errorf("Situation = %q", rec.Situation)
	}
	_, calls := mock.GetCalls()
	if !strings.Contains(calls[0].Prompt, "has LOST") {
		t.Error("final prompt should carry the loss tone")
	}
}

func TestEngine_FailuresAreAtomic(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(m *services.MockLLMAPI)
		req     Request
		checkFn func(t *testing.T, err error)
	}{
		{
			name:  "malformed completion",
			setup: func(m *services.MockLLMAPI) { m.QueueResponses("The story continues without labels.") },
			req:   RoundRequest{},
			checkFn: func(t *testing.T, err error) {
				var formatErr *narrative.FormatError
				if !errors.As(err, &formatErr) {
					t.Fatalf("expected FormatError, got %v", err)
				}
				if formatErr.Raw != "The story continues without labels." {
					t.Errorf("FormatError.Raw = %q", formatErr.Raw)
				}
			},
		},
		{
			name: "blank field",
			setup: func(m *services.MockLLMAPI) {
				m.QueueResponses("CONFIRMING SENTENCE: \n\nSITUATION: Dark.")
			},
			req: FinalRequest{NarrativeContext: "x", Result: narrative.ResultWin},
			checkFn: func(t *testing.T, err error) {
				var schemaErr *narrative.SchemaError
				if !errors.As(err, &schemaErr) {
					t.Fatalf("expected SchemaError, got %v", err)
				}
			},
		},
		{
			name:  "gateway error propagates",
			setup: func(m *services.MockLLMAPI) { m.SetCompleteError(context.DeadlineExceeded) },
			req:   InitialRequest{},
			checkFn: func(t *testing.T, err error) {
				if !errors.Is(err, context.DeadlineExceeded) {
					t.Fatalf("expected wrapped gateway error, got %v", err)
				}
			},
		},
		{
			name:  "invalid language never reaches the model",
			setup: func(m *services.MockLLMAPI) {},
			req:   InitialRequest{Language: "!!"},
			checkFn: func(t *testing.T, err error) {
				if !errors.Is(err, prompts.ErrInvalidLanguage) {
					t.Fatalf("expected ErrInvalidLanguage, got %v", err)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := services.NewMockLLMAPI()
			tt.setup(mock)
			e := newTestEngine(t, mock, Options{})

			rec, err := e.Generate(context.Background(), tt.req)
			if rec != nil {
				t.Errorf("expected no record on failure, got %+v", rec)
			}
			tt.checkFn(t, err)
		})
	}
}

func TestEngine_AppliesTimeout(t *testing.T) {
	mock := services.NewMockLLMAPI()
	mock.CompleteFunc = func(ctx context.Context, prompt string) (string, error) {
		if _, ok := ctx.Deadline(); !ok {
			t.Error("expected a deadline on the LLM call")
		}
		return services.MockInitialResponse, nil
	}
	e := newTestEngine(t, mock, Options{Timeout: time.Minute})

	if _, err := e.Generate(context.Background(), InitialRequest{}); err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
}

func TestEngine_NilRequest(t *testing.T) {
	e := newTestEngine(t, services.NewMockLLMAPI(), Options{})
	_, err := e.Generate(context.Background(), nil)
	var stageErr *narrative.InvalidStageError
	if !errors.As(err, &stageErr) {
		t.Errorf("expected InvalidStageError, got %v", err)
	}
}

func TestEngine_ContentRating(t *testing.T) {
	const raw = `CONFIRMING SENTENCE: You run like hell.

SITUATION: The damn door slams shut.`

	tests := []struct {
		rating        string
		wantSituation string
		wantFiltered  float64
	}{
		{"", "The damn door slams shut.", 0},
		{"R", "The damn door slams shut.", 0},
		{"PG-13", "The dang door slams shut.", 1},
		{"G", "The dang door slams shut.", 1},
	}
	for _, tt := range tests {
		t.Run("rating "+tt.rating, func(t *testing.T) {
			mock := services.NewMockLLMAPI()
			mock.QueueResponses(raw)
			e := newTestEngine(t, mock, Options{ContentRating: tt.rating})
			filtered := metrics.FilteredRecordsTotal.WithLabelValues(string(narrative.StageFinal))
			before := testutil.ToFloat64(filtered)

			rec, err := e.Final(context.Background(), FinalRequest{NarrativeContext: "x", Result: narrative.ResultLoss})
			if err != nil {
				t.Fatalf("Final() error = %v", err)
			}
			if rec.Situation != tt.wantSituation {
				t.Errorf("Situation = %q, want %q", rec.Situation, tt.wantSituation)
			}
			if got := testutil.ToFloat64(filtered) - before; got != tt.wantFiltered {
				t.Errorf("filtered records counted = %v, want %v", got, tt.wantFiltered)
			}
		})
	}
}
