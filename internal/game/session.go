// Package game holds the turn rules of a white rabbit game: scoring, transcript
// stitching and game-over detection.
package game

import (
	"context"
	"fmt"
	"strings"

	"github.com/jwebster45206/white-rabbit/internal/engine"
	"github.com/jwebster45206/white-rabbit/pkg/narrative"
	"github.com/jwebster45206/white-rabbit/pkg/state"
)

// DefaultThreshold is the score magnitude that ends a game.
const DefaultThreshold = 3

// Generator produces stage records. *engine.Engine implements it.
type Generator interface {
	Initial(ctx context.Context, req engine.InitialRequest) (*narrative.InitialRecord, error)
	Round(ctx context.Context, req engine.RoundRequest) (*narrative.RoundRecord, error)
	Final(ctx context.Context, req engine.FinalRequest) (*narrative.FinalRecord, error)
}

var _ Generator = (*engine.Engine)(nil)

// TurnResult is the outcome of one Choose call.
type TurnResult struct {
	GameOver         bool
	Score            int
	NarrativeContext string
	// Set while the game continues.
	CurrentRound *narrative.RoundRecord
	// Set once the game is over.
	Result narrative.Result
	Final  *narrative.FinalRecord
}

// Session applies turns to one game state. It is not safe for concurrent use;
// Manager serializes access per session key.
type Session struct {
	gen       Generator
	threshold int
	state     *state.GameState
}

// NewSession wraps gs. A threshold below 1 falls back to DefaultThreshold.
func NewSession(gen Generator, gs *state.GameState, threshold int) *Session {
	if threshold < 1 {
		threshold = DefaultThreshold
	}
	return &Session{gen: gen, threshold: threshold, state: gs}
}

// State returns a copy of the current game state.
func (s *Session) State() *state.GameState {
	return s.state.Clone()
}

// Start begins a new game, discarding whatever the session held before.
// On error the previous state is kept.
func (s *Session) Start(ctx context.Context, language string) (*narrative.InitialRecord, error) {
	rec, err := s.gen.Initial(ctx, engine.InitialRequest{Language: language})
	if err != nil {
		return nil, err
	}

	next := state.NewGameState(s.state.ID)
	next.Language = language
	next.NarrativeContext = narrative.Opener + " " + rec.Situation + "\n"
	next.CurrentRound = rec.AsRound()
	s.state = next
	return rec, nil
}

// Choose plays the choice with the given outcome tag. The state changes only when
// every generation call of the turn has succeeded.
func (s *Session) Choose(ctx context.Context, choiceType string) (*TurnResult, error) {
	outcome, err := narrative.ParseOutcome(choiceType)
	if err != nil {
		return nil, err
	}
	if s.state.GameOver {
		return nil, ErrGameOver
	}
	if s.state.CurrentRound == nil {
		return nil, &IncompleteStateError{Reason: "no current round, start a game first"}
	}
	choice, ok := s.state.CurrentRound.ChoiceFor(outcome)
	if !ok {
		return nil, &ChoiceNotFoundError{Outcome: outcome}
	}

	delta := outcome.Delta()
	round, err := s.gen.Round(ctx, engine.RoundRequest{
		Language:                 s.state.Language,
		NarrativeContext:         s.state.NarrativeContext,
		Action:                   choice.ChoiceDescription,
		OutcomeValue:             delta,
		ActionConfirmingSentence: choice.ConfirmingSentence,
	})
	if err != nil {
		return nil, err
	}

	next := s.state.Clone()
	next.Score += delta
	next.Turns++
	next.CurrentRound = round
	// The new round's own confirming sentence narrates the choice. The one stored
	// with the choice was written before this round existed.
	next.NarrativeContext += roundBlock(choice.ChoiceDescription, round)

	if abs(next.Score) >= s.threshold {
		result := narrative.ResultLoss
		if next.Score >= s.threshold {
			result = narrative.ResultWin
		}
		final, err := s.gen.Final(ctx, engine.FinalRequest{
			Language:         next.Language,
			NarrativeContext: next.NarrativeContext,
			Result:           result,
		})
		if err != nil {
			return nil, err
		}
		next.NarrativeContext += finalBlock(final)
		next.GameOver = true
		next.Result = result
		next.Touch()
		s.state = next

		return &TurnResult{
			GameOver:         true,
			Score:            next.Score,
			NarrativeContext: next.NarrativeContext,
			Result:           result,
			Final:            final,
		}, nil
	}

	next.Touch()
	s.state = next
	return &TurnResult{
		Score:            next.Score,
		NarrativeContext: next.NarrativeContext,
		CurrentRound:     round.Clone(),
	}, nil
}

func roundBlock(decision string, round *narrative.RoundRecord) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Decision: %s\n", decision)
	fmt.Fprintf(&sb, "Player choice: %s\n\n", round.ConfirmingSentence)
	sb.WriteString(round.Situation)
	sb.WriteString("\n")
	return sb.String()
}

func finalBlock(final *narrative.FinalRecord) string {
	return "\n" + final.ConfirmingSentence + " " + final.Situation + "\n"
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
