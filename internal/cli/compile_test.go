package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompileFile(t *testing.T) {
	path := writeCUE(t, t.TempDir(), "pair.cue", validCircuits)

	out, err := execute(t, "compile", path)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Compiled 1 circuit(s)")
	assert.Contains(t, out, "pair: 2 qubits, 6 events, 8 edges")
}

func TestCompileJSON(t *testing.T) {
	path := writeCUE(t, t.TempDir(), "pair.cue", validCircuits)

	out, err := execute(t, "compile", path, "--format", "json")
	require.NoError(t, err)

	var resp struct {
		Status string            `json:"status"`
		Data   CompilationResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	require.Len(t, resp.Data.Circuits, 1)

	c := resp.Data.Circuits[0]
	assert.Equal(t, "pair", c.Name)
	assert.Equal(t, 2, c.NumQubits)
	assert.Equal(t, 2, c.NumClbits)
	assert.Len(t, c.Events, 6)
	assert.NotEmpty(t, c.LogDigest)
	assert.NotEmpty(t, c.GraphDigest)
}

func TestCompileDeterministic(t *testing.T) {
	path := writeCUE(t, t.TempDir(), "pair.cue", validCircuits)

	first, err := execute(t, "compile", path, "--format", "json")
	require.NoError(t, err)
	second, err := execute(t, "compile", path, "--format", "json")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestCompileOutputFile(t *testing.T) {
	dir := t.TempDir()
	path := writeCUE(t, dir, "pair.cue", validCircuits)
	outPath := filepath.Join(dir, "compiled.json")

	out, err := execute(t, "compile", path, "-o", outPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Written to "+outPath)

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	var result CompilationResult
	require.NoError(t, json.Unmarshal(data, &result))
	require.Len(t, result.Circuits, 1)
	assert.Equal(t, "pair", result.Circuits[0].Name)
}

func TestCompileInvalidCircuit(t *testing.T) {
	dir := t.TempDir()
	writeCUE(t, dir, "pair.cue", validCircuits)
	writeCUE(t, dir, "wide.cue", invalidCircuit)

	out, err := execute(t, "compile", dir, "--format", "json")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	resp := decodeResponse(t, out)
	assert.Equal(t, "error", resp["status"])
}

func TestCompileMissingPath(t *testing.T) {
	_, err := execute(t, "compile", filepath.Join(t.TempDir(), "nope.cue"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
