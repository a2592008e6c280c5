package state

import (
	"time"

	"github.com/google/uuid"

	"github.com/jwebster45206/white-rabbit/pkg/narrative"
)

// Status is the lifecycle position of a game.
type Status string

const (
	StatusNotStarted Status = "not_started"
	StatusInProgress Status = "in_progress"
	StatusGameOver   Status = "game_over"
)

// GameState is the state of one game session.
type GameState struct {
	ID       uuid.UUID `json:"id"`                 // Session key
	Language string    `json:"language,omitempty"` // BCP 47 tag passed to every prompt

	NarrativeContext string                 `json:"narrative_context"` // Append-only transcript
	Score            int                    `json:"score"`
	CurrentRound     *narrative.RoundRecord `json:"current_round,omitempty"`
	Turns            int                    `json:"turns"`

	GameOver bool             `json:"game_over"`
	Result   narrative.Result `json:"win_or_loss,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewGameState(id uuid.UUID) *GameState {
	now := time.Now().UTC()
	return &GameState{
		ID:        id,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Status derives the lifecycle position from the state fields.
func (gs *GameState) Status() Status {
	switch {
	case gs.GameOver:
		return StatusGameOver
	case gs.CurrentRound != nil:
		return StatusInProgress
	default:
		return StatusNotStarted
	}
}

// Clone returns a deep copy, so a turn can work on a copy and commit it only on success.
func (gs *GameState) Clone() *GameState {
	if gs == nil {
		return nil
	}
	c := *gs
	c.CurrentRound = gs.CurrentRound.Clone()
	return &c
}

// Touch records a modification.
func (gs *GameState) Touch() {
	gs.UpdatedAt = time.Now().UTC()
}
