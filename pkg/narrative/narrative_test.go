package narrative

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStage(t *testing.T) {
	tests := []struct {
		in      string
		want    Stage
		wantErr bool
	}{
		{"initial", StageInitial, false},
		{"ROUND", StageRound, false},
		{" Final ", StageFinal, false},
		{"epilogue", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseStage(tt.in)
			if tt.wantErr {
				var stageErr *InvalidStageError
				assert.True(t, errors.As(err, &stageErr), "expected InvalidStageError, got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestOutcome(t *testing.T) {
	o, err := ParseOutcome("positive")
	require.NoError(t, err)
	assert.Equal(t, 1, o.Delta())

	o, err = ParseOutcome("negative")
	require.NoError(t, err)
	assert.Equal(t, -1, o.Delta())

	_, err = ParseOutcome("neutral")
	var choiceErr *InvalidChoiceError
	assert.True(t, errors.As(err, &choiceErr))
	assert.Contains(t, err.Error(), "use 'positive' or 'negative'")

	_, err = ParseOutcome("Positive")
	assert.Error(t, err, "outcome tags are case-sensitive")
}

func TestParseResult(t *testing.T) {
	r, err := ParseResult("WIN")
	require.NoError(t, err)
	assert.Equal(t, ResultWin, r)

	r, err = ParseResult("loss")
	require.NoError(t, err)
	assert.Equal(t, ResultLoss, r)

	r, err = ParseResult("Win")
	require.NoError(t, err)
	assert.Equal(t, ResultWin, r)

	for _, bad := range []string{"draw", " win ", "loss\n", ""} {
		_, err = ParseResult(bad)
		var flagErr *InvalidOutcomeFlagError
		assert.True(t, errors.As(err, &flagErr), "%q should be rejected", bad)
	}
}

func TestRoundRecord_Validate(t *testing.T) {
	valid := func() *RoundRecord {
		return &RoundRecord{
			ConfirmingSentence: "You open the door.",
			Situation:          "A corridor stretches ahead.",
			Choices:            NewChoices("Walk on.", "You walk on.", "Go back.", "You go back."),
		}
	}

	tests := []struct {
		name   string
		mutate func(r *RoundRecord)
		field  string
	}{
		{"valid", func(r *RoundRecord) {}, ""},
		{"one choice", func(r *RoundRecord) { r.Choices = r.Choices[:1] }, "choices"},
		{"swapped outcomes", func(r *RoundRecord) {
			r.Choices[0].Outcome, r.Choices[1].Outcome = r.Choices[1].Outcome, r.Choices[0].Outcome
		}, "choices.outcome"},
		{"bad id", func(r *RoundRecord) { r.Choices[1].ID = 3 }, "choices.id"},
		{"blank situation", func(r *RoundRecord) { r.Situation = "  " }, "situation"},
		{"blank description", func(r *RoundRecord) { r.Choices[0].ChoiceDescription = "" }, "choices.choice_description"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := valid()
			tt.mutate(r)
			err := r.Validate()
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}
			var schemaErr *SchemaError
			require.True(t, errors.As(err, &schemaErr), "expected SchemaError, got %v", err)
			assert.Equal(t, tt.field, schemaErr.Field)
		})
	}
}

func TestInitialRecord_AsRound(t *testing.T) {
	initial := &InitialRecord{
		Situation: "A mysterious alley in the rain.",
		Choices:   NewChoices("Enter.", "You enter.", "Leave.", "You leave."),
	}
	round := initial.AsRound()
	assert.Empty(t, round.ConfirmingSentence)
	assert.Equal(t, initial.Situation, round.Situation)
	assert.Equal(t, initial.Choices, round.Choices)

	round.Choices[0].ChoiceDescription = "changed"
	assert.Equal(t, "Enter.", initial.Choices[0].ChoiceDescription, "AsRound must copy choices")
}

func TestRoundRecord_ChoiceFor(t *testing.T) {
	r := &RoundRecord{Choices: NewChoices("a", "ca", "b", "cb")}

	c, ok := r.ChoiceFor(OutcomeNegative)
	require.True(t, ok)
	assert.Equal(t, 2, c.ID)
	assert.Equal(t, "cb", c.ConfirmingSentence)

	_, ok = (&RoundRecord{}).ChoiceFor(OutcomePositive)
	assert.False(t, ok)
}

func TestNewPatternSet(t *testing.T) {
	t.Run("override replaces one stage", func(t *testing.T) {
		ps, err := NewPatternSet(map[Stage]string{
			StageFinal: `ENDING:\s*(.+?)\s*EPILOGUE:\s*(.+)`,
		})
		require.NoError(t, err)

		rec, err := ps.Parse("ENDING: You wake.\nEPILOGUE: Morning light.", StageFinal)
		require.NoError(t, err)
		assert.Equal(t, &FinalRecord{ConfirmingSentence: "You wake.", Situation: "Morning light."}, rec)

		_, err = ps.Parse(initialResponse, StageInitial)
		assert.NoError(t, err, "initial stage keeps the default pattern")
	})

	t.Run("wrong group count is rejected", func(t *testing.T) {
		_, err := NewPatternSet(map[Stage]string{
			StageFinal: `CONFIRMING SENTENCE:\s*(.+)`,
		})
		assert.ErrorContains(t, err, "expected 2")
	})

	t.Run("bad regex is rejected", func(t *testing.T) {
		_, err := NewPatternSet(map[Stage]string{
			StageRound: `(unclosed`,
		})
		assert.ErrorContains(t, err, "does not compile")
	})
}

func TestParse_PatternGroupMismatch(t *testing.T) {
	re, err := CompilePattern(StageFinal, DefaultPatterns[StageFinal])
	require.NoError(t, err)

	_, err = Parse(initialResponse, StageInitial, re)
	var schemaErr *SchemaError
	require.True(t, errors.As(err, &schemaErr))
	assert.Equal(t, "pattern", schemaErr.Field)
}
