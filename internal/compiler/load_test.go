package compiler

import (
	"os"
	"path/filepath"
	"testing"

	"cuelang.org/go/cue/cuecontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/qtrace/internal/circuit"
)

const twoCircuits = `
circuit: bell: {
	qubits: 2
	clbits: 2
	ops: [
		{op: "h", qubits: [0]},
		{op: "cx", qubits: [0, 1]},
		{op: "measure", qubits: [0, 1], clbits: [0, 1]},
	]
}
circuit: flip: {
	qubits: 1
	ops: [{op: "x", qubits: [0]}]
}
`

func TestCompileCircuitsInOrder(t *testing.T) {
	v := cuecontext.New().CompileString(twoCircuits)
	circuits, errs := CompileCircuits(v)
	require.Empty(t, errs)
	require.Len(t, circuits, 2)
	assert.Equal(t, "bell", circuits[0].Name)
	assert.Equal(t, "flip", circuits[1].Name)
}

func TestCompileCircuitsCollectsErrors(t *testing.T) {
	v := cuecontext.New().CompileString(`
		circuit: good: {qubits: 1, ops: [{op: "h", qubits: [0]}]}
		circuit: bad: {qubits: 1, ops: [{op: "h", qubits: [3]}]}
		circuit: worse: {ops: []}
	`)
	circuits, errs := CompileCircuits(v)
	require.Len(t, circuits, 1)
	assert.Len(t, errs, 2)
	assert.Contains(t, errs[0].Error(), "circuit.bad")
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "circuits.cue")
	require.NoError(t, os.WriteFile(path, []byte(twoCircuits), 0o644))

	circuits, err := LoadFile(path)
	require.NoError(t, err)
	require.Len(t, circuits, 2)
	assert.Equal(t, circuit.Bell(), circuits[0])

	c, ok := Find(circuits, "flip")
	require.True(t, ok)
	assert.Equal(t, 1, c.NumQubits)

	_, ok = Find(circuits, "nope")
	assert.False(t, ok)
}

func TestLoadFileErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadFile(filepath.Join(dir, "missing.cue"))
	assert.Error(t, err)

	empty := filepath.Join(dir, "empty.cue")
	require.NoError(t, os.WriteFile(empty, []byte(`other: 1`), 0o644))
	_, err = LoadFile(empty)
	assert.ErrorContains(t, err, "no circuits")

	broken := filepath.Join(dir, "broken.cue")
	require.NoError(t, os.WriteFile(broken, []byte(`circuit: {`), 0o644))
	_, err = LoadFile(broken)
	assert.Error(t, err)
}
