// Package narrative defines the stage records produced by the storyteller model
// and the parser that turns its line-labelled completions into those records.
package narrative

import (
	"strings"
)

// Stage selects the prompt, grammar and schema of a generation call.
type Stage string

const (
	StageInitial Stage = "initial"
	StageRound   Stage = "round"
	StageFinal   Stage = "final"
)

// Stages lists every stage in game order.
var Stages = []Stage{StageInitial, StageRound, StageFinal}

// ParseStage accepts a stage name in any case.
func ParseStage(s string) (Stage, error) {
	switch Stage(strings.ToLower(strings.TrimSpace(s))) {
	case StageInitial:
		return StageInitial, nil
	case StageRound:
		return StageRound, nil
	case StageFinal:
		return StageFinal, nil
	}
	return "", &InvalidStageError{Stage: s}
}

// FieldCount is the number of capture groups the stage's pattern must expose.
func (s Stage) FieldCount() int {
	switch s {
	case StageInitial:
		return 5
	case StageRound:
		return 6
	case StageFinal:
		return 2
	}
	return 0
}

func (s Stage) Valid() bool {
	return s.FieldCount() > 0
}

// Title returns the stage name with an upper-case first letter.
func (s Stage) Title() string {
	if s == "" {
		return ""
	}
	return strings.ToUpper(string(s[:1])) + string(s[1:])
}

// Outcome is the polarity of a choice.
type Outcome string

const (
	OutcomePositive Outcome = "positive"
	OutcomeNegative Outcome = "negative"
)

// ParseOutcome accepts exactly "positive" or "negative".
func ParseOutcome(s string) (Outcome, error) {
	switch Outcome(s) {
	case OutcomePositive:
		return OutcomePositive, nil
	case OutcomeNegative:
		return OutcomeNegative, nil
	}
	return "", &InvalidChoiceError{Choice: s}
}

// Delta is the score change caused by picking a choice with this outcome.
func (o Outcome) Delta() int {
	switch o {
	case OutcomePositive:
		return 1
	case OutcomeNegative:
		return -1
	}
	return 0
}

// Result is the end state of a finished game.
type Result string

const (
	ResultWin  Result = "WIN"
	ResultLoss Result = "LOSS"
)

// ParseResult accepts "win" or "loss" in any case. Surrounding whitespace is rejected.
func ParseResult(s string) (Result, error) {
	switch strings.ToLower(s) {
	case "win":
		return ResultWin, nil
	case "loss":
		return ResultLoss, nil
	}
	return "", &InvalidOutcomeFlagError{Value: s}
}

// Choice is one of the two actions offered to the player.
// ID 1 is always the positive outcome and ID 2 the negative one.
type Choice struct {
	ID                 int     `json:"id"`
	ChoiceDescription  string  `json:"choice_description"`
	ConfirmingSentence string  `json:"confirming_sentence"`
	Outcome            Outcome `json:"outcome"`
}

// Record is the structured result of one generation call.
type Record interface {
	Stage() Stage
	Validate() error
}

// InitialRecord opens a game.
type InitialRecord struct {
	Situation string   `json:"situation"`
	Choices   []Choice `json:"choices"`
}

// RoundRecord continues a game after a choice.
type RoundRecord struct {
	ConfirmingSentence string   `json:"confirming_sentence,omitempty"`
	Situation          string   `json:"situation"`
	Choices            []Choice `json:"choices"`
}

// FinalRecord closes a game.
type FinalRecord struct {
	ConfirmingSentence string `json:"confirming_sentence"`
	Situation          string `json:"situation"`
}

var (
	_ Record = (*InitialRecord)(nil)
	_ Record = (*RoundRecord)(nil)
	_ Record = (*FinalRecord)(nil)
)

func (r *InitialRecord) Stage() Stage { return StageInitial }
func (r *RoundRecord) Stage() Stage   { return StageRound }
func (r *FinalRecord) Stage() Stage   { return StageFinal }

func (r *InitialRecord) Validate() error {
	if err := requireText(StageInitial, "situation", r.Situation); err != nil {
		return err
	}
	return validateChoices(StageInitial, r.Choices)
}

func (r *RoundRecord) Validate() error {
	if err := requireText(StageRound, "confirming_sentence", r.ConfirmingSentence); err != nil {
		return err
	}
	if err := requireText(StageRound, "situation", r.Situation); err != nil {
		return err
	}
	return validateChoices(StageRound, r.Choices)
}

func (r *FinalRecord) Validate() error {
	if err := requireText(StageFinal, "confirming_sentence", r.ConfirmingSentence); err != nil {
		return err
	}
	return requireText(StageFinal, "situation", r.Situation)
}

// AsRound returns the opening record in the shape stored as a game's current round.
// The confirming sentence is empty because nothing has been chosen yet.
func (r *InitialRecord) AsRound() *RoundRecord {
	return &RoundRecord{
		Situation: r.Situation,
		Choices:   append([]Choice(nil), r.Choices...),
	}
}

// ChoiceFor returns the choice carrying the given outcome.
func (r *RoundRecord) ChoiceFor(o Outcome) (Choice, bool) {
	for _, c := range r.Choices {
		if c.Outcome == o {
			return c, true
		}
	}
	return Choice{}, false
}

// Clone returns a deep copy.
func (r *RoundRecord) Clone() *RoundRecord {
	if r == nil {
		return nil
	}
	c := *r
	c.Choices = append([]Choice(nil), r.Choices...)
	return &c
}

// NewChoices builds the positional choice pair: action 1 is positive, action 2 negative.
func NewChoices(action1, confirm1, action2, confirm2 string) []Choice {
	return []Choice{
		{ID: 1, ChoiceDescription: action1, ConfirmingSentence: confirm1, Outcome: OutcomePositive},
		{ID: 2, ChoiceDescription: action2, ConfirmingSentence: confirm2, Outcome: OutcomeNegative},
	}
}

func requireText(stage Stage, field, value string) error {
	if strings.TrimSpace(value) == "" {
		return &SchemaError{Stage: stage, Field: field, Reason: "must not be empty"}
	}
	return nil
}

func validateChoices(stage Stage, choices []Choice) error {
	if len(choices) != 2 {
		return &SchemaError{Stage: stage, Field: "choices", Reason: "there must be exactly two choices"}
	}
	expected := [2]Outcome{OutcomePositive, OutcomeNegative}
	for i, c := range choices {
		if c.ID != i+1 {
			return &SchemaError{Stage: stage, Field: "choices.id", Reason: "choice ids must be 1 and 2 in order"}
		}
		if c.Outcome != expected[i] {
			return &SchemaError{Stage: stage, Field: "choices.outcome", Reason: "choice 1 must be positive and choice 2 negative"}
		}
		if err := requireText(stage, "choices.choice_description", c.ChoiceDescription); err != nil {
			return err
		}
		if err := requireText(stage, "choices.confirming_sentence", c.ConfirmingSentence); err != nil {
			return err
		}
	}
	return nil
}
