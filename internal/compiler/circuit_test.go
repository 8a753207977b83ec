package compiler

import (
	"testing"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/qtrace/internal/circuit"
)

func compile(t *testing.T, src, path string) (*circuit.Circuit, error) {
	t.Helper()
	v := cuecontext.New().CompileString(src)
	require.NoError(t, v.Err())
	return CompileCircuit(v.LookupPath(cue.ParsePath(path)))
}

func TestCompileCircuitBell(t *testing.T) {
	c, err := compile(t, `
		circuit: bell: {
			qubits: 2
			clbits: 2
			ops: [
				{op: "h", qubits: [0]},
				{op: "cx", qubits: [0, 1]},
				{op: "measure", qubits: [0, 1], clbits: [0, 1]},
			]
		}
	`, "circuit.bell")
	require.NoError(t, err)

	assert.Equal(t, circuit.Bell(), c)
}

func TestCompileCircuitUsesCUEConstraints(t *testing.T) {
	c, err := compile(t, `
		#Gate: {op: "h" | "x" | "cx", qubits: [...int & >=0]}
		circuit: flip: {
			qubits: 1
			ops: [#Gate & {op: "x", qubits: [0]}]
		}
	`, "circuit.flip")
	require.NoError(t, err)

	assert.Equal(t, "flip", c.Name)
	assert.Equal(t, 0, c.NumClbits)
	require.Len(t, c.Instructions, 1)
	assert.Equal(t, "x", c.Instructions[0].Op)
}

func TestCompileCircuitErrors(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		wantErr string
	}{
		{"missing qubits", `circuit: c: {ops: []}`, "qubits is required"},
		{"missing ops", `circuit: c: {qubits: 1}`, "ops is required"},
		{"missing op name", `circuit: c: {qubits: 1, ops: [{qubits: [0]}]}`, "op is required"},
		{"measure bit mismatch", `circuit: c: {qubits: 2, clbits: 2, ops: [{op: "measure", qubits: [0, 1], clbits: [0]}]}`, "one clbit per qubit"},
		{"qubit out of range", `circuit: c: {qubits: 1, ops: [{op: "cx", qubits: [0, 1]}]}`, "out of range"},
		{"non-integer qubit", `circuit: c: {qubits: 1, ops: [{op: "h", qubits: ["a"]}]}`, "int"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := compile(t, tt.src, "circuit.c")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestCompileErrorFormat(t *testing.T) {
	err := &CompileError{Field: "ops[0]", Message: "op is required"}
	assert.Equal(t, "ops[0]: op is required", err.Error())
}
