package narrative

import (
	"fmt"
	"regexp"
	"strings"
)

// Parse matches raw against the stage pattern and assembles the stage record.
// The match is all-or-nothing: a miss is a FormatError, and a record that matched
// but breaks the schema is a SchemaError. No partial record is ever returned.
func Parse(raw string, stage Stage, pattern *regexp.Regexp) (Record, error) {
	if !stage.Valid() {
		return nil, &InvalidStageError{Stage: string(stage)}
	}
	if pattern == nil {
		return nil, fmt.Errorf("no pattern configured for %s stage", stage)
	}
	if pattern.NumSubexp() != stage.FieldCount() {
		return nil, &SchemaError{
			Stage:  stage,
			Field:  "pattern",
			Reason: fmt.Sprintf("has %d capture groups, expected %d", pattern.NumSubexp(), stage.FieldCount()),
		}
	}

	m := pattern.FindStringSubmatch(raw)
	if m == nil {
		return nil, &FormatError{Stage: stage, Raw: raw, Expected: Grammar(stage)}
	}
	g := make([]string, len(m)-1)
	for i := range g {
		g[i] = strings.TrimSpace(m[i+1])
	}

	var rec Record
	switch stage {
	case StageInitial:
		rec = &InitialRecord{
			Situation: g[0],
			Choices:   NewChoices(g[1], g[2], g[3], g[4]),
		}
	case StageRound:
		rec = &RoundRecord{
			ConfirmingSentence: g[0],
			Situation:          g[1],
			Choices:            NewChoices(g[2], g[3], g[4], g[5]),
		}
	case StageFinal:
		rec = &FinalRecord{
			ConfirmingSentence: g[0],
			Situation:          g[1],
		}
	}

	if err := rec.Validate(); err != nil {
		return nil, err
	}
	return rec, nil
}
