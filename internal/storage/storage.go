// Package storage keeps game sessions between requests.
package storage

import (
	"context"

	"github.com/google/uuid"

	"github.com/jwebster45206/white-rabbit/pkg/state"
)

// SessionStore holds one game state per session key.
type SessionStore interface {
	// Health and lifecycle
	Ping(ctx context.Context) error
	Close() error

	// SaveGameState stores a copy of gs under id, replacing any previous state
	SaveGameState(ctx context.Context, id uuid.UUID, gs *state.GameState) error
	// LoadGameState returns nil, nil when no state exists for id
	LoadGameState(ctx context.Context, id uuid.UUID) (*state.GameState, error)
	DeleteGameState(ctx context.Context, id uuid.UUID) error
}
