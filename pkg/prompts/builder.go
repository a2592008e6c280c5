package prompts

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/jwebster45206/white-rabbit/pkg/narrative"
)

// Context carries everything a prompt may draw on. Each stage reads only its own
// fields; the rest are ignored.
type Context struct {
	// Language is a BCP 47 tag. Empty means English.
	Language string

	// Round and final.
	NarrativeContext string

	// Round only.
	Action                   string
	OutcomeValue             int
	ActionConfirmingSentence string

	// Final only.
	Result narrative.Result
}

type initialData struct {
	Opener   string
	Language string
	Format   string
}

type roundData struct {
	NarrativeContext         string
	Action                   string
	OutcomeValue             int
	ActionConfirmingSentence string
	Language                 string
	Format                   string
}

type finalData struct {
	NarrativeContext string
	Win              bool
	Language         string
	Format           string
}

var funcs = template.FuncMap{
	"signed": func(n int) string { return fmt.Sprintf("%+d", n) },
}

// Builder renders stage prompts from compiled templates. It is safe for concurrent use.
type Builder struct {
	templates map[narrative.Stage]*template.Template
}

// NewBuilder compiles the configured templates and renders each once against sample
// data, so a broken template fails here instead of during a turn.
func NewBuilder(cfg *Config) (*Builder, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	b := &Builder{templates: make(map[narrative.Stage]*template.Template, len(narrative.Stages))}
	for _, stage := range narrative.Stages {
		src := cfg.Templates[stage]
		if strings.TrimSpace(src) == "" {
			src = DefaultTemplates[stage]
		}
		tmpl, err := template.New(string(stage)).Funcs(funcs).Option("missingkey=error").Parse(src)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s prompt template: %w", stage, err)
		}
		b.templates[stage] = tmpl
	}

	for _, stage := range narrative.Stages {
		if _, err := b.Build(stage, sampleContext); err != nil {
			return nil, fmt.Errorf("%s prompt template does not render: %w", stage, err)
		}
	}
	return b, nil
}

var sampleContext = Context{
	Language:                 "en",
	NarrativeContext:         narrative.Opener + " A sample situation.\n",
	Action:                   "Sample action.",
	OutcomeValue:             1,
	ActionConfirmingSentence: "You take the sample action.",
	Result:                   narrative.ResultWin,
}

// Build renders the prompt for a stage.
func (b *Builder) Build(stage narrative.Stage, ctx Context) (string, error) {
	tmpl, ok := b.templates[stage]
	if !ok {
		return "", &narrative.InvalidStageError{Stage: string(stage)}
	}
	lang, err := LanguageName(ctx.Language)
	if err != nil {
		return "", err
	}

	var data any
	switch stage {
	case narrative.StageInitial:
		data = initialData{
			Opener:   narrative.Opener,
			Language: lang,
			Format:   narrative.Grammar(stage),
		}
	case narrative.StageRound:
		data = roundData{
			NarrativeContext:         ctx.NarrativeContext,
			Action:                   ctx.Action,
			OutcomeValue:             ctx.OutcomeValue,
			ActionConfirmingSentence: ctx.ActionConfirmingSentence,
			Language:                 lang,
			Format:                   narrative.Grammar(stage),
		}
	case narrative.StageFinal:
		data = finalData{
			NarrativeContext: ctx.NarrativeContext,
			Win:              ctx.Result == narrative.ResultWin,
			Language:         lang,
			Format:           narrative.Grammar(stage),
		}
	}

	var sb strings.Builder
	if err := tmpl.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("failed to render %s prompt: %w", stage, err)
	}
	return sb.String(), nil
}
