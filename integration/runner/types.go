package runner

import (
	"time"

	"github.com/google/uuid"
)

// Step actions. Any other action is sent as the choice_type of a choose call.
const (
	ActionStart    = "start"
	ActionPositive = "positive"
	ActionNegative = "negative"
	ActionState    = "state"
)

// TestSuite defines a complete integration test game
// Can either be a regular test with Steps, or a suite that references other Cases
type TestSuite struct {
	Name     string     `json:"name"`
	Language string     `json:"language,omitempty"` // Passed to every start step
	Steps    []TestStep `json:"steps,omitempty"`    // Used for regular tests
	Cases    []string   `json:"cases,omitempty"`    // Used for suite tests (list of case files)
}

// IsSequence returns true if this is a suite that sequences other cases
func (ts *TestSuite) IsSequence() bool {
	return len(ts.Cases) > 0
}

// TestStep defines a single game action and its expected outcomes
type TestStep struct {
	Name         string       `json:"name,omitempty"`
	Action       string       `json:"action"`
	Expectations Expectations `json:"expect"`
}

// Expectations defines what to check after a test step executes
type Expectations struct {
	// HTTP status; 200 when omitted
	Status *int `json:"status,omitempty"`

	// Game properties - aligned with handlers.GameResponse
	Score            *int    `json:"score,omitempty"`
	GameOver         *bool   `json:"game_over,omitempty"`
	WinOrLoss        *string `json:"win_or_loss,omitempty"`
	HasCurrentRound  *bool   `json:"has_current_round,omitempty"`
	EndGameThreshold *int    `json:"end_game_threshold,omitempty"`

	// Transcript analysis
	NarrativeContains    []string `json:"narrative_contains,omitempty"`
	NarrativeNotContains []string `json:"narrative_not_contains,omitempty"`
	NarrativeRegex       string   `json:"narrative_regex,omitempty"`

	// Error body analysis for non-200 steps
	ErrorContains string `json:"error_contains,omitempty"`
}

// TestResult contains the outcome of running a test step
type TestResult struct {
	TestName     string
	StepName     string
	Success      bool
	Error        error
	Duration     time.Duration
	ResponseText string
}

// TestJob represents a test suite to be executed
type TestJob struct {
	Name     string
	Suite    TestSuite
	CaseFile string
}

// TestRunResult contains the results of running an entire test suite
type TestRunResult struct {
	Job       TestJob
	Results   []TestResult
	Error     error
	Duration  time.Duration
	SessionID uuid.UUID // Session used for this test
}
