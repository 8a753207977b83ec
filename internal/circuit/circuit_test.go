package circuit

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/qtrace/internal/graph"
	"github.com/roach88/qtrace/internal/ir"
)

func TestExtractBell(t *testing.T) {
	log, err := Extract(Bell())
	require.NoError(t, err)

	assert.Equal(t, ir.EventLog{
		ir.NewStart(0),
		ir.NewGate(1, "H", 0),
		ir.NewGate(2, "CX", 0, 1),
		ir.NewMeasurement(3, []int{0}, []int{0}),
		ir.NewMeasurement(4, []int{1}, []int{1}),
		ir.NewEnd(5),
	}, log)
}

func TestExtractGHZ(t *testing.T) {
	log, err := Extract(GHZ())
	require.NoError(t, err)

	require.Len(t, log, 8)
	assert.Equal(t, "CX", log[3].GateName())
	assert.Equal(t, []int{0, 2}, log[3].Qubits())

	g, err := graph.Build(log)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3, 4}, graph.QubitChain(g, 0))
	assert.Equal(t, []int{3, 6}, graph.QubitChain(g, 2))
}

func TestExtractedLogsAreValid(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 1))
	circuits := []*Circuit{Bell(), GHZ(), Random(r, 0), Random(r, 12)}

	for _, c := range circuits {
		log, err := Extract(c)
		require.NoError(t, err, c.Name)
		assert.NoError(t, graph.Validate(log), c.Name)
		for i, e := range log {
			assert.Equal(t, i, e.ID)
			assert.Equal(t, i, e.Timestamp)
		}
	}
}

func TestRandomIsSeeded(t *testing.T) {
	a, err := Lookup("random", Options{Gates: 8, Seed: 42})
	require.NoError(t, err)
	b, err := Lookup("random", Options{Gates: 8, Seed: 42})
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Len(t, a.Instructions, 8+2)
	for _, in := range a.Instructions[:8] {
		assert.Contains(t, []string{"h", "x", "y", "z"}, in.Op)
		assert.Len(t, in.Qubits, 1)
	}
}

func TestRandomDefaultGateCount(t *testing.T) {
	c, err := Lookup("random", Options{})
	require.NoError(t, err)
	assert.Len(t, c.Instructions, DefaultRandomGates+2)
}

func TestLookupUnknown(t *testing.T) {
	_, err := Lookup("teleport", Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bell")
	assert.Equal(t, []string{"bell", "ghz", "random"}, Names())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		circuit *Circuit
		wantErr string
	}{
		{"no name", New("", 1, 0).H(0), "name is required"},
		{"no qubits", New("c", 0, 0), "qubits must be positive"},
		{"qubit out of range", New("c", 1, 0).CX(0, 1), "out of range"},
		{"repeated qubit", New("c", 2, 0).CX(1, 1), "repeated"},
		{"gate without qubits", New("c", 1, 0).Gate("h"), "no qubits"},
		{"measure without clbit", New("c", 1, 0).Measure([]int{0}, nil), "0 clbits for 1 qubits"},
		{"clbit out of range", New("c", 1, 1).Measure([]int{0}, []int{3}), "clbit 3 out of range"},
		{"gate with clbits", &Circuit{Name: "c", NumQubits: 1, NumClbits: 1, Instructions: []Instruction{{Op: "x", Qubits: []int{0}, Clbits: []int{0}}}}, "only measure"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.circuit.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)

			_, err = Extract(tt.circuit)
			assert.Error(t, err)
		})
	}
}
