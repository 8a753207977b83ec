package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/qtrace/internal/circuit"
	"github.com/roach88/qtrace/internal/graph"
	"github.com/roach88/qtrace/internal/ir"
)

func buildExecution(t *testing.T, id string, c *circuit.Circuit) *ir.Execution {
	t.Helper()
	events, err := circuit.Extract(c)
	require.NoError(t, err)
	return &ir.Execution{
		ExecutionMeta: ir.ExecutionMeta{ID: id, CircuitName: c.Name, NumEvents: len(events)},
		Events:        events,
		Graph:         graph.MustBuild(events),
	}
}

func bellResult(t *testing.T) *Result {
	result := NewResult()
	result.Executions = []Recorded{
		{Label: "bell", Execution: buildExecution(t, "exec-0001", circuit.Bell())},
		{Label: "ghz", Execution: buildExecution(t, "exec-0002", circuit.GHZ())},
	}
	return result
}

func boolPtr(b bool) *bool { return &b }

func TestAssertEdge(t *testing.T) {
	result := bellResult(t)

	assert.NoError(t, evaluate(result, Assertion{
		Type: AssertEdge, Label: "bell", Source: 2, Target: 4, Relation: "QUBIT_DEP", Qubits: []int{1},
	}))
	// Qubits are optional.
	assert.NoError(t, evaluate(result, Assertion{
		Type: AssertEdge, Label: "bell", Source: 2, Target: 3, Relation: "QUBIT_DEP",
	}))

	err := evaluate(result, Assertion{
		Type: AssertEdge, Label: "bell", Source: 2, Target: 4, Relation: "QUBIT_DEP", Qubits: []int{0},
	})
	var ae *AssertionError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, "2 -> 4 QUBIT_DEP q[0]", ae.Expected)
	assert.Equal(t, "2 -> 4 QUBIT_DEP q[1]", ae.Actual)
	assert.Contains(t, err.Error(), "Edges:")
}

func TestAssertEdgeCount(t *testing.T) {
	result := bellResult(t)

	assert.NoError(t, evaluate(result, Assertion{Type: AssertEdgeCount, Label: "ghz", Relation: "NEXT", Count: 7}))

	err := evaluate(result, Assertion{Type: AssertEdgeCount, Label: "ghz", Relation: "QUBIT_DEP", Count: 4})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "5 QUBIT_DEP edges")
}

func TestAssertQubitChain(t *testing.T) {
	result := bellResult(t)

	assert.NoError(t, evaluate(result, Assertion{Type: AssertQubitChain, Label: "ghz", Qubit: 1, Chain: []int{2, 5}}))

	err := evaluate(result, Assertion{Type: AssertQubitChain, Label: "ghz", Qubit: 1, Chain: []int{2, 3, 5}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "qubit 1 chain [2 5]")

	// An untouched qubit has an empty chain.
	assert.NoError(t, evaluate(result, Assertion{Type: AssertQubitChain, Label: "bell", Qubit: 7}))
}

func TestAssertDivergence(t *testing.T) {
	result := bellResult(t)

	assert.NoError(t, evaluate(result, Assertion{Type: AssertDivergence, A: "bell", B: "ghz", Count: 3, ExtraB: 2}))
	assert.NoError(t, evaluate(result, Assertion{Type: AssertDivergence, A: "ghz", B: "bell", Count: 3, ExtraA: 2}))
	assert.NoError(t, evaluate(result, Assertion{Type: AssertDivergence, A: "bell", B: "bell"}))

	err := evaluate(result, Assertion{Type: AssertDivergence, A: "bell", B: "ghz", Count: 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "3 divergent steps, 0 extra in bell, 2 extra in ghz")
}

func TestAssertStep(t *testing.T) {
	result := bellResult(t)

	assert.NoError(t, evaluate(result, Assertion{
		Type: AssertStep, Label: "bell", Index: 2, EventType: "GATE",
		HasPrevious: boolPtr(true), HasNext: boolPtr(true),
	}))
	assert.NoError(t, evaluate(result, Assertion{Type: AssertStep, Label: "bell", Index: -1, OutOfRange: true}))

	err := evaluate(result, Assertion{Type: AssertStep, Label: "bell", Index: 5, EventType: "EXECUTION_END", HasNext: boolPtr(true)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "has_next false")

	err = evaluate(result, Assertion{Type: AssertStep, Label: "bell", Index: 3, OutOfRange: true})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "step 3 out of range")

	err = evaluate(result, Assertion{Type: AssertStep, Label: "bell", Index: 9, EventType: "GATE"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of range")
}

func TestEvaluate_UnknownLabel(t *testing.T) {
	err := evaluate(bellResult(t), Assertion{Type: AssertEdgeCount, Label: "teleport", Relation: "NEXT"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown execution label "teleport"`)
}
