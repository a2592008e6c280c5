package game

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/jwebster45206/white-rabbit/internal/logger"
	"github.com/jwebster45206/white-rabbit/internal/metrics"
	"github.com/jwebster45206/white-rabbit/internal/storage"
	"github.com/jwebster45206/white-rabbit/pkg/narrative"
	"github.com/jwebster45206/white-rabbit/pkg/state"
)

// ManagerOptions tune a Manager.
type ManagerOptions struct {
	Threshold  int
	DebugState bool
}

// Manager maps session keys to game sessions. It runs at most one turn per session
// at a time and rejects a second concurrent turn with ErrTurnInProgress.
type Manager struct {
	gen        Generator
	store      storage.SessionStore
	threshold  int
	debugState bool
	logger     *slog.Logger

	mu   sync.Mutex
	busy map[uuid.UUID]struct{}
}

func NewManager(gen Generator, store storage.SessionStore, opts ManagerOptions, logger *slog.Logger) *Manager {
	threshold := opts.Threshold
	if threshold < 1 {
		threshold = DefaultThreshold
	}
	return &Manager{
		gen:        gen,
		store:      store,
		threshold:  threshold,
		debugState: opts.DebugState,
		logger:     logger,
		busy:       make(map[uuid.UUID]struct{}),
	}
}

// Threshold returns the score magnitude that ends a game.
func (m *Manager) Threshold() int {
	return m.threshold
}

func (m *Manager) acquire(id uuid.UUID) (func(), error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.busy[id]; ok {
		return nil, ErrTurnInProgress
	}
	m.busy[id] = struct{}{}
	return func() {
		m.mu.Lock()
		delete(m.busy, id)
		m.mu.Unlock()
	}, nil
}

// Start begins or restarts the game stored under id.
func (m *Manager) Start(ctx context.Context, id uuid.UUID, language string) (*state.GameState, error) {
	release, err := m.acquire(id)
	if err != nil {
		return nil, err
	}
	defer release()

	s := NewSession(m.gen, state.NewGameState(id), m.threshold)
	if _, err := s.Start(ctx, language); err != nil {
		return nil, err
	}

	gs := s.State()
	if err := m.store.SaveGameState(ctx, id, gs); err != nil {
		return nil, fmt.Errorf("failed to save game state: %w", err)
	}
	logger.WithSessionID(m.logger, id.String()).Info("Game started", "language", language)
	m.debug("Game state after start", gs)
	return gs, nil
}

// Choose plays one turn of the game stored under id.
func (m *Manager) Choose(ctx context.Context, id uuid.UUID, choiceType string) (*TurnResult, error) {
	outcome, err := narrative.ParseOutcome(choiceType)
	if err != nil {
		return nil, err
	}

	release, err := m.acquire(id)
	if err != nil {
		return nil, err
	}
	defer release()

	gs, err := m.store.LoadGameState(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load game state: %w", err)
	}
	if gs == nil {
		return nil, &IncompleteStateError{Reason: "no game started for this session"}
	}

	s := NewSession(m.gen, gs, m.threshold)
	result, err := s.Choose(ctx, string(outcome))
	if err != nil {
		return nil, err
	}

	next := s.State()
	if err := m.store.SaveGameState(ctx, id, next); err != nil {
		return nil, fmt.Errorf("failed to save game state: %w", err)
	}

	metrics.TurnsTotal.WithLabelValues(string(outcome)).Inc()
	if result.GameOver {
		metrics.GamesFinishedTotal.WithLabelValues(string(result.Result)).Inc()
		logger.WithSessionID(m.logger, id.String()).Info("Game finished", "result", result.Result, "score", result.Score, "turns", next.Turns)
	}
	m.debug("Game state after choice", next)
	return result, nil
}

// End discards the game stored under id.
func (m *Manager) End(ctx context.Context, id uuid.UUID) error {
	release, err := m.acquire(id)
	if err != nil {
		return err
	}
	defer release()

	gs, err := m.store.LoadGameState(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to load game state: %w", err)
	}
	if gs == nil {
		return ErrSessionNotFound
	}
	if err := m.store.DeleteGameState(ctx, id); err != nil {
		return fmt.Errorf("failed to delete game state: %w", err)
	}
	logger.WithSessionID(m.logger, id.String()).Info("Game ended", "score", gs.Score, "turns", gs.Turns)
	return nil
}

// State returns the game stored under id.
func (m *Manager) State(ctx context.Context, id uuid.UUID) (*state.GameState, error) {
	gs, err := m.store.LoadGameState(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load game state: %w", err)
	}
	if gs == nil {
		return nil, ErrSessionNotFound
	}
	return gs, nil
}

func (m *Manager) debug(msg string, gs *state.GameState) {
	if !m.debugState {
		return
	}
	logger.WithSessionID(m.logger, gs.ID.String()).Debug(msg,
		"status", gs.Status(),
		"score", gs.Score,
		"turns", gs.Turns,
		"win_or_loss", gs.Result,
		"current_round", gs.CurrentRound,
		"narrative_context", gs.NarrativeContext)
}
