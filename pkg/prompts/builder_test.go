package prompts

import (
	"errors"
	"strings"
	"testing"

	"github.com/jwebster45206/white-rabbit/pkg/narrative"
)

func newTestBuilder(t *testing.T) *Builder {
	t.Helper()
	b, err := NewBuilder(DefaultConfig())
	if err != nil {
		t.Fatalf("NewBuilder() error = %v", err)
	}
	return b
}

func TestBuild_Initial(t *testing.T) {
	b := newTestBuilder(t)

	prompt, err := b.Build(narrative.StageInitial, Context{
		NarrativeContext: "SHOULD NOT APPEAR",
		Action:           "SHOULD NOT APPEAR EITHER",
	})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if !strings.Contains(prompt, "Follow the white rabbit.") {
		t.Error("initial prompt must mandate the opener phrase")
	}
	if !strings.Contains(prompt, narrative.Grammar(narrative.StageInitial)) {
		t.Error("initial prompt must embed the initial grammar")
	}
	if !strings.Contains(prompt, "Write the story in English.") {
		t.Error("initial prompt should default to English")
	}
	if strings.Contains(prompt, "SHOULD NOT APPEAR") {
		t.Error("initial prompt must ignore narrative history and round fields")
	}
}

func TestBuild_Round(t *testing.T) {
	b := newTestBuilder(t)

	tests := []struct {
		name    string
		outcome int
		want    []string
		notWant []string
	}{
		{
			name:    "positive outcome",
			outcome: 1,
			want:    []string{"Outcome: +1", "The choice paid off"},
			notWant: []string{"The choice went badly"},
		},
		{
			name:    "negative outcome",
			outcome: -1,
			want:    []string{"Outcome: -1", "The choice went badly"},
			notWant: []string{"The choice paid off"},
		},
		{
			name:    "zero outcome",
			outcome: 0,
			want:    []string{"Outcome: +0"},
			notWant: []string{"The choice paid off", "The choice went badly"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prompt, err := b.Build(narrative.StageRound, Context{
				Language:                 "en",
				NarrativeContext:         "Follow the white rabbit. A mysterious alley in the rain.\n",
				Action:                   "Step into the alley.",
				OutcomeValue:             tt.outcome,
				ActionConfirmingSentence: "You step into the alley.",
				Result:                   narrative.ResultLoss,
			})
			if err != nil {
				t.Fatalf("Build() error = %v", err)
			}

			want := append([]string{
				"Follow the white rabbit. A mysterious alley in the rain.",
				"Action: Step into the alley.",
				"LATEST CONFIRMING SENTENCE: You step into the alley.",
				narrative.Grammar(narrative.StageRound),
			}, tt.want...)
			for _, s := range want {
				if !strings.Contains(prompt, s) {
					t.Errorf("round prompt missing %q", s)
				}
			}
			for _, s := range tt.notWant {
				if strings.Contains(prompt, s) {
					t.Errorf("round prompt should not contain %q", s)
				}
			}
			if strings.Contains(prompt, "has WON") || strings.Contains(prompt, "has LOST") {
				t.Error("round prompt must ignore the win/loss flag")
			}
		})
	}
}

func TestBuild_Final(t *testing.T) {
	b := newTestBuilder(t)
	transcript := "Follow the white rabbit. A mysterious alley in the rain.\n"

	win, err := b.Build(narrative.StageFinal, Context{
		NarrativeContext: transcript,
		Result:           narrative.ResultWin,
		Action:           "IGNORED ACTION",
		OutcomeValue:     7,
	})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	loss, err := b.Build(narrative.StageFinal, Context{NarrativeContext: transcript, Result: narrative.ResultLoss})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	for _, p := range []string{win, loss} {
		if !strings.Contains(p, transcript) {
			t.Error("final prompt must embed the full transcript")
		}
		if !strings.Contains(p, narrative.Grammar(narrative.StageFinal)) {
			t.Error("final prompt must embed the final grammar")
		}
	}
	if !strings.Contains(win, "has WON") || strings.Contains(win, "has LOST") {
		t.Error("win prompt has the wrong tone")
	}
	if !strings.Contains(loss, "has LOST") || strings.Contains(loss, "has WON") {
		t.Error("loss prompt has the wrong tone")
	}
	if strings.Contains(win, "IGNORED ACTION") || strings.Contains(win, "+7") {
		t.Error("final prompt must ignore round fields")
	}
}

func TestBuild_Language(t *testing.T) {
	b := newTestBuilder(t)

	prompt, err := b.Build(narrative.StageInitial, Context{Language: "fr"})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if !strings.Contains(prompt, "Write the story in French.") {
		t.Error("expected French language instruction")
	}
	if !strings.Contains(prompt, "SITUATION: Follow the white rabbit.") {
		t.Error("line labels must stay in English")
	}

	_, err = b.Build(narrative.StageInitial, Context{Language: "not a tag!"})
	if !errors.Is(err, ErrInvalidLanguage) {
		t.Errorf("expected ErrInvalidLanguage, got %v", err)
	}
}

func TestBuild_InvalidStage(t *testing.T) {
	b := newTestBuilder(t)
	_, err := b.Build(narrative.Stage("epilogue"), Context{})
	var stageErr *narrative.InvalidStageError
	if !errors.As(err, &stageErr) {
		t.Errorf("expected InvalidStageError, got %v", err)
	}
}

func TestNewBuilder_RejectsBrokenTemplates(t *testing.T) {
	tests := []struct {
		name  string
		stage narrative.Stage
		src   string
	}{
		{"syntax error", narrative.StageRound, "{{.NarrativeContext"},
		{"unknown field", narrative.StageFinal, "{{.Action}}"},
		{"unknown function", narrative.StageInitial, "{{shout .Language}}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Templates[tt.stage] = tt.src
			if _, err := NewBuilder(cfg); err == nil {
				t.Error("expected NewBuilder to fail")
			}
		})
	}
}

func TestNewBuilder_EmptyTemplateFallsBack(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Templates[narrative.StageInitial] = "   "
	b, err := NewBuilder(cfg)
	if err != nil {
		t.Fatalf("NewBuilder() error = %v", err)
	}
	prompt, err := b.Build(narrative.StageInitial, Context{})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if !strings.Contains(prompt, "master storyteller") {
		t.Error("expected default initial template")
	}
}
