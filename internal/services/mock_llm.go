package services

import (
	"context"
	"strings"
	"sync"

	"github.com/jwebster45206/white-rabbit/pkg/narrative"
)

// Canned completions returned by MockLLMAPI when nothing is queued.
const (
	MockInitialResponse = `SITUATION: Follow the white rabbit. A mysterious alley in the rain.
ACTION 1: Follow the rabbit into the alley.
ACTION 1 CONFIRM: You follow the rabbit into the alley.
ACTION 2: Walk away.
ACTION 2 CONFIRM: You turn your back on the alley.`

	MockRoundResponse = `CONFIRMING SENTENCE: You press on through the dark.
SITUATION: A door glows at the end of the passage.
ACTION 1: Open the door.
ACTION 1 CONFIRM: You open the door.
ACTION 2: Wait in the shadows.
ACTION 2 CONFIRM: You wait in the shadows.`

	MockFinalResponse = `CONFIRMING SENTENCE: You step through the last door.
SITUATION: The rain stops and the city falls silent.`
)

// MockLLMAPI is a mock implementation of LLMService for testing
type MockLLMAPI struct {
	InitModelFunc func(ctx context.Context, modelName string) error
	CompleteFunc  func(ctx context.Context, prompt string) (string, error)

	// Responses are returned in order before falling back to CompleteFunc or the
	// stage-aware default.
	Responses []string

	// Track calls for testing
	InitModelCalls []string
	CompleteCalls  []CompleteCall

	mu sync.Mutex // protects all fields above
}

type CompleteCall struct {
	Prompt string
}

// NewMockLLMAPI creates a new mock LLM service
func NewMockLLMAPI() *MockLLMAPI {
	return &MockLLMAPI{
		InitModelCalls: make([]string, 0),
		CompleteCalls:  make([]CompleteCall, 0),
	}
}

// InitModel mocks model initialization
func (m *MockLLMAPI) InitModel(ctx context.Context, modelName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.InitModelCalls = append(m.InitModelCalls, modelName)

	if m.InitModelFunc != nil {
		return m.InitModelFunc(ctx, modelName)
	}
	return nil
}

// Complete mocks a completion call
func (m *MockLLMAPI) Complete(ctx context.Context, prompt string) (string, error) {
	m.mu.Lock()
	m.CompleteCalls = append(m.CompleteCalls, CompleteCall{Prompt: prompt})

	if len(m.Responses) > 0 {
		resp := m.Responses[0]
		m.Responses = m.Responses[1:]
		m.mu.Unlock()
		return resp, nil
	}
	fn := m.CompleteFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, prompt)
	}
	return DefaultMockCompletion(prompt), nil
}

// DefaultMockCompletion answers a prompt with a valid completion for the stage whose
// grammar the prompt embeds.
func DefaultMockCompletion(prompt string) string {
	switch {
	case strings.Contains(prompt, narrative.Grammar(narrative.StageInitial)):
		return MockInitialResponse
	case strings.Contains(prompt, narrative.Grammar(narrative.StageRound)):
		return MockRoundResponse
	case strings.Contains(prompt, narrative.Grammar(narrative.StageFinal)):
		return MockFinalResponse
	}
	return "Mock response"
}

// QueueResponses appends completions to be returned by the next Complete calls.
func (m *MockLLMAPI) QueueResponses(responses ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Responses = append(m.Responses, responses...)
}

// Reset clears all call tracking and queued responses
func (m *MockLLMAPI) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.InitModelCalls = make([]string, 0)
	m.CompleteCalls = make([]CompleteCall, 0)
	m.Responses = nil
}

// SetInitModelError sets up the mock to return an error on InitModel
func (m *MockLLMAPI) SetInitModelError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.InitModelFunc = func(ctx context.Context, modelName string) error {
		return err
	}
}

// SetCompleteError sets up the mock to return an error on Complete
func (m *MockLLMAPI) SetCompleteError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CompleteFunc = func(ctx context.Context, prompt string) (string, error) {
		return "", err
	}
}

// GetCalls returns a copy of the call tracking data in a thread-safe way
func (m *MockLLMAPI) GetCalls() ([]string, []CompleteCall) {
	m.mu.Lock()
	defer m.mu.Unlock()

	initCalls := make([]string, len(m.InitModelCalls))
	copy(initCalls, m.InitModelCalls)

	completeCalls := make([]CompleteCall, len(m.CompleteCalls))
	copy(completeCalls, m.CompleteCalls)

	return initCalls, completeCalls
}
