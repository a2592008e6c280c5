package narrative

import "fmt"

// FormatError reports a completion that does not follow the stage's line grammar.
type FormatError struct {
	Stage    Stage
	Raw      string
	Expected string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("%s narrative response format invalid. Received response:\n%s", e.Stage.Title(), e.Raw)
}

// SchemaError reports a record that matched the grammar but breaks a structural rule.
type SchemaError struct {
	Stage  Stage
	Field  string
	Reason string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s narrative record invalid: %s %s", e.Stage, e.Field, e.Reason)
}

// InvalidStageError reports a stage name outside initial/round/final.
type InvalidStageError struct {
	Stage string
}

func (e *InvalidStageError) Error() string {
	return fmt.Sprintf("invalid stage %q: use 'initial', 'round', or 'final'", e.Stage)
}

// InvalidChoiceError reports a choice tag outside positive/negative.
type InvalidChoiceError struct {
	Choice string
}

func (e *InvalidChoiceError) Error() string {
	return fmt.Sprintf("invalid choice type %q: use 'positive' or 'negative'", e.Choice)
}

// InvalidOutcomeFlagError reports a win_or_loss value outside win/loss.
type InvalidOutcomeFlagError struct {
	Value string
}

func (e *InvalidOutcomeFlagError) Error() string {
	return fmt.Sprintf("invalid win_or_loss %q: use 'win' or 'loss'", e.Value)
}
