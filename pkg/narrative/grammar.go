package narrative

import (
	"fmt"
	"regexp"
)

// Opener is the fixed phrase every game begins with.
const Opener = "Follow the white rabbit."

// Grammar returns the line-labelled output format the model must follow for a stage.
func Grammar(stage Stage) string {
	switch stage {
	case StageInitial:
		return "SITUATION: " + Opener + " <Short, gripping description of the context and situation>\n" +
			"ACTION 1: <First action option>\n" +
			"ACTION 1 CONFIRM: <Confirming sentence for action 1>\n" +
			"ACTION 2: <Second action option>\n" +
			"ACTION 2 CONFIRM: <Confirming sentence for action 2>\n"
	case StageRound:
		return "CONFIRMING SENTENCE: <Present-tense confirming sentence>\n" +
			"SITUATION: <Vivid description of the new situation>\n" +
			"ACTION 1: <First action option>\n" +
			"ACTION 1 CONFIRM: <Confirming sentence for action 1>\n" +
			"ACTION 2: <Second action option>\n" +
			"ACTION 2 CONFIRM: <Confirming sentence for action 2>\n"
	case StageFinal:
		return "CONFIRMING SENTENCE: <Present-tense confirming sentence>\n" +
			"SITUATION: <Vivid description of the final situation>\n"
	}
	return ""
}

// DefaultPatterns are the parse patterns matching Grammar. Flags are added by CompilePattern.
// Every label must open its own line and every field ends at its line break, so label
// words inside a field never split it. The last field must end the text.
var DefaultPatterns = map[Stage]string{
	StageInitial: `^[ \t]*SITUATION:[ \t]*Follow the white rabbit\.[ \t]*([^\n]*?)[ \t]*` +
		`\n\s*ACTION 1:[ \t]*([^\n]*?)[ \t]*\n\s*ACTION 1 CONFIRM:[ \t]*([^\n]*?)[ \t]*` +
		`\n\s*ACTION 2:[ \t]*([^\n]*?)[ \t]*\n\s*ACTION 2 CONFIRM:[ \t]*([^\n]*?)\s*\z`,
	StageRound: `^[ \t]*CONFIRMING SENTENCE:[ \t]*([^\n]*?)[ \t]*\n\s*SITUATION:[ \t]*([^\n]*?)[ \t]*` +
		`\n\s*ACTION 1:[ \t]*([^\n]*?)[ \t]*\n\s*ACTION 1 CONFIRM:[ \t]*([^\n]*?)[ \t]*` +
		`\n\s*ACTION 2:[ \t]*([^\n]*?)[ \t]*\n\s*ACTION 2 CONFIRM:[ \t]*([^\n]*?)\s*\z`,
	StageFinal: `^[ \t]*CONFIRMING SENTENCE:[ \t]*([^\n]*?)[ \t]*\n\s*SITUATION:[ \t]*([^\n]*?)\s*\z`,
}

// patternFlags: multiline, case-insensitive, dot matches newline.
const patternFlags = "(?ims)"

// CompilePattern compiles a stage pattern with the parser flags and checks that it
// exposes exactly the stage's field count as capture groups.
func CompilePattern(stage Stage, expr string) (*regexp.Regexp, error) {
	if !stage.Valid() {
		return nil, &InvalidStageError{Stage: string(stage)}
	}
	re, err := regexp.Compile(patternFlags + expr)
	if err != nil {
		return nil, fmt.Errorf("%s pattern does not compile: %w", stage, err)
	}
	if re.NumSubexp() != stage.FieldCount() {
		return nil, fmt.Errorf("%s pattern has %d capture groups, expected %d", stage, re.NumSubexp(), stage.FieldCount())
	}
	return re, nil
}

// PatternSet holds one compiled pattern per stage.
type PatternSet struct {
	patterns map[Stage]*regexp.Regexp
}

// NewPatternSet compiles a pattern for every stage. Stages missing from exprs fall
// back to DefaultPatterns.
func NewPatternSet(exprs map[Stage]string) (*PatternSet, error) {
	ps := &PatternSet{patterns: make(map[Stage]*regexp.Regexp, len(Stages))}
	for _, stage := range Stages {
		expr, ok := exprs[stage]
		if !ok || expr == "" {
			expr = DefaultPatterns[stage]
		}
		re, err := CompilePattern(stage, expr)
		if err != nil {
			return nil, err
		}
		ps.patterns[stage] = re
	}
	return ps, nil
}

// MustDefaultPatternSet returns the compiled default patterns.
func MustDefaultPatternSet() *PatternSet {
	ps, err := NewPatternSet(nil)
	if err != nil {
		panic(err)
	}
	return ps
}

// Pattern returns the compiled pattern for a stage.
func (ps *PatternSet) Pattern(stage Stage) (*regexp.Regexp, error) {
	re, ok := ps.patterns[stage]
	if !ok {
		return nil, &InvalidStageError{Stage: string(stage)}
	}
	return re, nil
}

// Parse parses raw text with the stage's pattern.
func (ps *PatternSet) Parse(raw string, stage Stage) (Record, error) {
	re, err := ps.Pattern(stage)
	if err != nil {
		return nil, err
	}
	return Parse(raw, stage, re)
}
