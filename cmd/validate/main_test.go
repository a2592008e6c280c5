package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/white-rabbit/pkg/narrative"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func run(args ...string) (string, error) {
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestConfigCommand(t *testing.T) {
	good := writeFile(t, "good.yaml", "patterns:\n  final: 'END:\\s*(.+?)\\s*AFTER:\\s*(.+)'\n")
	out, err := run("config", good)
	require.NoError(t, err)
	assert.Contains(t, out, "is valid")

	bad := writeFile(t, "bad.yaml", "patterns:\n  final: 'END:\\s*(.+)'\n")
	_, err = run("config", bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected 2")
}

func TestResponseCommand(t *testing.T) {
	completion := writeFile(t, "final.txt",
		"CONFIRMING SENTENCE: You step through the last door.\nSITUATION: The rain stops.\n")

	out, err := run("response", "--stage", "final", completion)
	require.NoError(t, err)

	var rec narrative.FinalRecord
	require.NoError(t, json.Unmarshal([]byte(out), &rec))
	assert.Equal(t, "You step through the last door.", rec.ConfirmingSentence)
	assert.Equal(t, "The rain stops.", rec.Situation)
}

func TestResponseCommand_Errors(t *testing.T) {
	completion := writeFile(t, "round.txt", "SITUATION: only a situation\n")

	_, err := run("response", "--stage", "round", completion)
	var formatErr *narrative.FormatError
	assert.ErrorAs(t, err, &formatErr)

	_, err = run("response", "--stage", "epilogue", completion)
	var stageErr *narrative.InvalidStageError
	assert.ErrorAs(t, err, &stageErr)

	_, err = run("response", completion)
	assert.Error(t, err, "--stage is required")
}
