package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validCircuits = `package circuits

circuit: pair: {
	qubits: 2
	clbits: 2
	ops: [
		{op: "h", qubits: [0]},
		{op: "cx", qubits: [0, 1]},
		{op: "measure", qubits: [0, 1], clbits: [0, 1]},
	]
}
`

const invalidCircuit = `package circuits

circuit: wide: {
	qubits: 1
	ops: [
		{op: "cx", qubits: [0, 3]},
	]
}
`

func writeCUE(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestValidateValidCircuits(t *testing.T) {
	dir := t.TempDir()
	writeCUE(t, dir, "pair.cue", validCircuits)

	out, err := execute(t, "validate", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ pair")
	assert.Contains(t, out, "✓ All circuits valid")
}

func TestValidateValidCircuitsJSON(t *testing.T) {
	dir := t.TempDir()
	writeCUE(t, dir, "pair.cue", validCircuits)

	out, err := execute(t, "validate", dir, "--format", "json")
	require.NoError(t, err)

	var resp struct {
		Status string           `json:"status"`
		Data   ValidationResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, resp.Data.Valid)
	assert.Equal(t, []string{"pair"}, resp.Data.Circuits)
}

func TestValidateInvalidCircuit(t *testing.T) {
	dir := t.TempDir()
	writeCUE(t, dir, "pair.cue", validCircuits)
	writeCUE(t, dir, "wide.cue", invalidCircuit)

	out, err := execute(t, "validate", dir, "--format", "json")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp struct {
		Status string           `json:"status"`
		Data   ValidationResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.False(t, resp.Data.Valid)
	assert.Equal(t, []string{"pair"}, resp.Data.Circuits)
	require.Len(t, resp.Data.Errors, 1)
	assert.Contains(t, resp.Data.Errors[0].Message, "wide")
}

func TestValidateNonExistentDirectory(t *testing.T) {
	out, err := execute(t, "validate", filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "[E005]")
}

func TestValidateEmptyDirectory(t *testing.T) {
	out, err := execute(t, "validate", t.TempDir(), "--format", "json")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	resp := decodeResponse(t, out)
	assert.Equal(t, ErrCodeNoFiles, resp["error"].(map[string]any)["code"])
}

func TestMapFieldToErrorCode(t *testing.T) {
	tests := []struct {
		field string
		want  string
	}{
		{"cue", ErrCodeCUESyntax},
		{"", ErrCodeInvalidCircuit},
		{"qubits", ErrCodeMissingField},
		{"ops", ErrCodeMissingField},
		{"ops[2].qubits", ErrCodeInvalidOp},
		{"clbits", ErrCodeInvalidCircuit},
	}
	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			assert.Equal(t, tt.want, MapFieldToErrorCode(tt.field))
		})
	}
}
