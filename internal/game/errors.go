package game

import (
	"errors"
	"fmt"

	"github.com/jwebster45206/white-rabbit/pkg/narrative"
)

var (
	// ErrTurnInProgress is returned when a session is already running a turn.
	ErrTurnInProgress = errors.New("a turn is already in progress for this session")
	// ErrGameOver is returned by Choose once the game has ended; only Start leaves this state.
	ErrGameOver = errors.New("game is over: start a new game")
	// ErrSessionNotFound is returned when reading a session that was never started.
	ErrSessionNotFound = errors.New("session not found")
)

// IncompleteStateError reports a turn requested on a session with no current round.
type IncompleteStateError struct {
	Reason string
}

func (e *IncompleteStateError) Error() string {
	return "incomplete game state: " + e.Reason
}

// ChoiceNotFoundError reports a current round without a choice for the requested outcome.
type ChoiceNotFoundError struct {
	Outcome narrative.Outcome
}

func (e *ChoiceNotFoundError) Error() string {
	return fmt.Sprintf("no %s choice in the current round", e.Outcome)
}
