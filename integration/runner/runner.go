package runner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jwebster45206/white-rabbit/internal/handlers"
)

type ErrorHandlingMode string

const ErrorHandlingExit ErrorHandlingMode = "exit"
const ErrorHandlingContinue ErrorHandlingMode = "continue"

// Runner plays scripted games against a running white-rabbit API
type Runner struct {
	BaseURL           string
	Client            *http.Client
	Timeout           time.Duration
	Logger            func(format string, args ...interface{})
	ErrorHandlingMode ErrorHandlingMode
}

// NewRunner creates a new test runner
func NewRunner(baseURL string) *Runner {
	return &Runner{
		BaseURL:           strings.TrimSuffix(baseURL, "/"),
		Client:            &http.Client{Timeout: 3 * time.Minute},
		Timeout:           2 * time.Minute,
		Logger:            func(string, ...interface{}) {},
		ErrorHandlingMode: ErrorHandlingContinue,
	}
}

// LoadTestSuite loads a test suite from a JSON file
func LoadTestSuite(filename string) (TestSuite, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return TestSuite{}, fmt.Errorf("failed to read test file %s: %w", filename, err)
	}

	var suite TestSuite
	if err := json.Unmarshal(content, &suite); err != nil {
		return TestSuite{}, fmt.Errorf("failed to parse JSON in %s: %w", filename, err)
	}

	return suite, nil
}

// LoadTestSuiteWithExpansion loads a test suite and expands it if it's a sequence
// Returns a list of actual test suites (expanded from the sequence if needed)
func LoadTestSuiteWithExpansion(filename string, casesDir string) ([]TestJob, error) {
	suite, err := LoadTestSuite(filename)
	if err != nil {
		return nil, err
	}

	if !suite.IsSequence() {
		return []TestJob{{
			Name:     suite.Name,
			Suite:    suite,
			CaseFile: filename,
		}}, nil
	}

	var jobs []TestJob
	for _, caseFile := range suite.Cases {
		casePath := filepath.Join(casesDir, caseFile)

		// Recursively load (in case a sequence references another sequence)
		subJobs, err := LoadTestSuiteWithExpansion(casePath, casesDir)
		if err != nil {
			return nil, fmt.Errorf("failed to load case '%s' referenced by sequence '%s': %w", caseFile, suite.Name, err)
		}
		jobs = append(jobs, subJobs...)
	}

	return jobs, nil
}

// RunSuite plays a suite on a fresh session
func (r *Runner) RunSuite(ctx context.Context, suite TestSuite) (TestRunResult, error) {
	start := time.Now()
	result := TestRunResult{
		Job: TestJob{
			Name:  suite.Name,
			Suite: suite,
		},
		Results:   make([]TestResult, 0, len(suite.Steps)),
		SessionID: uuid.New(),
	}

	// Transcript of the last successful step, to check it only ever grows
	var transcript string

	for i, step := range suite.Steps {
		r.Logger("    [%d/%d] Running step: %s", i+1, len(suite.Steps), stepName(step))
		stepResult, resp := r.runStep(ctx, result.SessionID, suite, step)

		if stepResult.Error == nil && resp != nil {
			if step.Action != ActionStart && !strings.HasPrefix(resp.NarrativeContext, transcript) {
				stepResult.Success = false
				stepResult.Error = fmt.Errorf("narrative context was rewritten: previous transcript is no longer a prefix")
			} else {
				transcript = resp.NarrativeContext
			}
		}
		result.Results = append(result.Results, stepResult)

		if stepResult.Error != nil {
			r.Logger("    [%d/%d] ✗ %s: %v", i+1, len(suite.Steps), stepResult.StepName, stepResult.Error)
			if result.Error == nil {
				result.Error = fmt.Errorf("step %d (%s) failed: %w", i, stepResult.StepName, stepResult.Error)
			}
			if r.ErrorHandlingMode == ErrorHandlingExit {
				break
			}
			continue
		}
		r.Logger("    [%d/%d] ✓ %s (%v)", i+1, len(suite.Steps), stepResult.StepName, stepResult.Duration)
	}

	result.Duration = time.Since(start)
	return result, result.Error
}

func stepName(step TestStep) string {
	if step.Name != "" {
		return step.Name
	}
	return step.Action
}

func (r *Runner) runStep(ctx context.Context, sessionID uuid.UUID, suite TestSuite, step TestStep) (TestResult, *handlers.GameResponse) {
	start := time.Now()
	result := TestResult{
		TestName: suite.Name,
		StepName: stepName(step),
	}

	ctx, cancel := context.WithTimeout(ctx, r.Timeout)
	defer cancel()

	status, body, err := r.send(ctx, sessionID, suite.Language, step.Action)
	result.Duration = time.Since(start)
	result.ResponseText = string(body)
	if err != nil {
		result.Error = err
		return result, nil
	}

	wantStatus := http.StatusOK
	if step.Expectations.Status != nil {
		wantStatus = *step.Expectations.Status
	}
	if status != wantStatus {
		result.Error = fmt.Errorf("expected status %d, got %d: %s", wantStatus, status, string(body))
		return result, nil
	}

	if status != http.StatusOK {
		var errResp handlers.ErrorResponse
		if err := json.Unmarshal(body, &errResp); err != nil {
			result.Error = fmt.Errorf("failed to parse error response: %w", err)
			return result, nil
		}
		if exp := step.Expectations.ErrorContains; exp != "" && !strings.Contains(errResp.Error, exp) {
			result.Error = fmt.Errorf("expected error containing %q, got %q", exp, errResp.Error)
			return result, nil
		}
		result.Success = true
		return result, nil
	}

	var resp handlers.GameResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		result.Error = fmt.Errorf("failed to parse game response: %w", err)
		return result, nil
	}
	if err := checkExpectations(step.Expectations, &resp); err != nil {
		result.Error = err
		return result, &resp
	}
	result.Success = true
	return result, &resp
}

func (r *Runner) send(ctx context.Context, sessionID uuid.UUID, language, action string) (int, []byte, error) {
	var req *http.Request
	var err error
	switch action {
	case ActionStart:
		url := r.BaseURL + "/api/start"
		if language != "" {
			url += "?language=" + language
		}
		req, err = http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	case ActionState:
		req, err = http.NewRequestWithContext(ctx, http.MethodGet, r.BaseURL+"/api/state", nil)
	default:
		payload, mErr := json.Marshal(handlers.ChooseRequest{ChoiceType: action})
		if mErr != nil {
			return 0, nil, fmt.Errorf("failed to marshal choose request: %w", mErr)
		}
		req, err = http.NewRequestWithContext(ctx, http.MethodPost, r.BaseURL+"/api/choose", bytes.NewBuffer(payload))
		if err == nil {
			req.Header.Set("Content-Type", "application/json")
		}
	}
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set(handlers.SessionHeader, sessionID.String())

	resp, err := r.Client.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to read response: %w", err)
	}
	return resp.StatusCode, body, nil
}

func checkExpectations(exp Expectations, resp *handlers.GameResponse) error {
	var errs []string

	if exp.Score != nil && resp.Score != *exp.Score {
		errs = append(errs, fmt.Sprintf("expected score %d, got %d", *exp.Score, resp.Score))
	}
	if exp.GameOver != nil && resp.GameOver != *exp.GameOver {
		errs = append(errs, fmt.Sprintf("expected game_over %v, got %v", *exp.GameOver, resp.GameOver))
	}
	if exp.WinOrLoss != nil && string(resp.WinOrLoss) != *exp.WinOrLoss {
		errs = append(errs, fmt.Sprintf("expected win_or_loss %q, got %q", *exp.WinOrLoss, resp.WinOrLoss))
	}
	if exp.HasCurrentRound != nil && (resp.CurrentRound != nil) != *exp.HasCurrentRound {
		errs = append(errs, fmt.Sprintf("expected current_round present=%v", *exp.HasCurrentRound))
	}
	if exp.EndGameThreshold != nil && resp.EndGameThreshold != *exp.EndGameThreshold {
		errs = append(errs, fmt.Sprintf("expected end_game_threshold %d, got %d", *exp.EndGameThreshold, resp.EndGameThreshold))
	}

	// Every choice offered must carry a description, a confirming sentence and an outcome
	if resp.CurrentRound != nil {
		if len(resp.CurrentRound.Choices) != 2 {
			errs = append(errs, fmt.Sprintf("expected 2 choices, got %d", len(resp.CurrentRound.Choices)))
		}
		for _, c := range resp.CurrentRound.Choices {
			if c.ChoiceDescription == "" || c.ConfirmingSentence == "" || c.Outcome == "" {
				errs = append(errs, fmt.Sprintf("incomplete choice %+v", c))
			}
		}
	}

	for _, s := range exp.NarrativeContains {
		if !strings.Contains(resp.NarrativeContext, s) {
			errs = append(errs, fmt.Sprintf("narrative does not contain %q", s))
		}
	}
	for _, s := range exp.NarrativeNotContains {
		if strings.Contains(resp.NarrativeContext, s) {
			errs = append(errs, fmt.Sprintf("narrative unexpectedly contains %q", s))
		}
	}
	if exp.NarrativeRegex != "" {
		re, err := regexp.Compile(exp.NarrativeRegex)
		if err != nil {
			errs = append(errs, fmt.Sprintf("invalid narrative_regex: %v", err))
		} else if !re.MatchString(resp.NarrativeContext) {
			errs = append(errs, fmt.Sprintf("narrative does not match %q", exp.NarrativeRegex))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}
