package engine

import (
	"fmt"
	"strings"

	"github.com/jwebster45206/white-rabbit/pkg/narrative"
	"github.com/jwebster45206/white-rabbit/pkg/prompts"
)

// Request is one generation call. It is implemented only by InitialRequest,
// RoundRequest and FinalRequest.
type Request interface {
	Stage() narrative.Stage
	promptContext() prompts.Context
}

// InitialRequest opens a game. It carries no story history.
type InitialRequest struct {
	Language string
}

// RoundRequest continues a game after the player picked a choice.
type RoundRequest struct {
	Language                 string
	NarrativeContext         string
	Action                   string
	OutcomeValue             int
	ActionConfirmingSentence string
}

// FinalRequest closes a game.
type FinalRequest struct {
	Language         string
	NarrativeContext string
	Result           narrative.Result
}

func (InitialRequest) Stage() narrative.Stage { return narrative.StageInitial }
func (RoundRequest) Stage() narrative.Stage   { return narrative.StageRound }
func (FinalRequest) Stage() narrative.Stage   { return narrative.StageFinal }

func (r InitialRequest) promptContext() prompts.Context {
	return prompts.Context{Language: r.Language}
}

func (r RoundRequest) promptContext() prompts.Context {
	return prompts.Context{
		Language:                 r.Language,
		NarrativeContext:         r.NarrativeContext,
		Action:                   r.Action,
		OutcomeValue:             r.OutcomeValue,
		ActionConfirmingSentence: r.ActionConfirmingSentence,
	}
}

func (r FinalRequest) promptContext() prompts.Context {
	return prompts.Context{
		Language:         r.Language,
		NarrativeContext: r.NarrativeContext,
		Result:           r.Result,
	}
}

// Params is the flat parameter set accepted by the unified narrative endpoint.
// Fields that do not belong to the requested stage are ignored.
type Params struct {
	NarrativeContext         *string
	Action                   *string
	OutcomeValue             *int
	ActionConfirmingSentence *string
	WinOrLoss                *string
	Language                 string
}

// MissingFieldError reports a field the stage requires but the caller left out.
type MissingFieldError struct {
	Stage narrative.Stage
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("%s stage requires %s", e.Stage, e.Field)
}

// NewRequest selects the stage's request shape from flat parameters.
// Round fields default to empty values; final requires narrative_context and win_or_loss.
func NewRequest(stage string, p Params) (Request, error) {
	s, err := narrative.ParseStage(stage)
	if err != nil {
		return nil, err
	}

	switch s {
	case narrative.StageInitial:
		return InitialRequest{Language: p.Language}, nil
	case narrative.StageRound:
		return RoundRequest{
			Language:                 p.Language,
			NarrativeContext:         deref(p.NarrativeContext),
			Action:                   deref(p.Action),
			OutcomeValue:             derefInt(p.OutcomeValue),
			ActionConfirmingSentence: deref(p.ActionConfirmingSentence),
		}, nil
	default:
		if p.NarrativeContext == nil || strings.TrimSpace(*p.NarrativeContext) == "" {
			return nil, &MissingFieldError{Stage: s, Field: "narrative_context"}
		}
		if p.WinOrLoss == nil {
			return nil, &MissingFieldError{Stage: s, Field: "win_or_loss"}
		}
		result, err := narrative.ParseResult(*p.WinOrLoss)
		if err != nil {
			return nil, err
		}
		return FinalRequest{
			Language:         p.Language,
			NarrativeContext: *p.NarrativeContext,
			Result:           result,
		}, nil
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func derefInt(n *int) int {
	if n == nil {
		return 0
	}
	return *n
}
