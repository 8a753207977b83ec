package harness

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/qtrace/internal/divergence"
	"github.com/roach88/qtrace/internal/graph"
	"github.com/roach88/qtrace/internal/ir"
	"github.com/roach88/qtrace/internal/replay"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string    // Assertion type for categorization
	Expected string    // Human-readable expected outcome
	Actual   string    // Human-readable actual outcome
	Edges    []ir.Edge // Edges of the execution under test, if any
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Edges) > 0 {
		fmt.Fprintf(&buf, "\nEdges:\n")
		for _, edge := range e.Edges {
			fmt.Fprintf(&buf, "  %s\n", formatEdge(edge))
		}
	}
	return buf.String()
}

func formatEdge(e ir.Edge) string {
	if len(e.Qubits) == 0 {
		return fmt.Sprintf("%d -> %d %s", e.Source, e.Target, e.Relation)
	}
	return fmt.Sprintf("%d -> %d %s q%v", e.Source, e.Target, e.Relation, e.Qubits)
}

// evaluate dispatches one assertion against the recorded executions.
func evaluate(result *Result, a Assertion) error {
	switch a.Type {
	case AssertEdge:
		return withExecution(result, a.Label, a, assertEdge)
	case AssertEdgeCount:
		return withExecution(result, a.Label, a, assertEdgeCount)
	case AssertQubitChain:
		return withExecution(result, a.Label, a, assertQubitChain)
	case AssertStep:
		return withExecution(result, a.Label, a, assertStep)
	case AssertDivergence:
		execA, ok := result.Execution(a.A)
		if !ok {
			return fmt.Errorf("unknown execution label %q", a.A)
		}
		execB, ok := result.Execution(a.B)
		if !ok {
			return fmt.Errorf("unknown execution label %q", a.B)
		}
		return assertDivergence(execA, execB, a)
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
}

func withExecution(result *Result, label string, a Assertion, check func(*ir.Execution, Assertion) error) error {
	exec, ok := result.Execution(label)
	if !ok {
		return fmt.Errorf("unknown execution label %q", label)
	}
	return check(exec, a)
}

// assertEdge checks that an edge with the given endpoints and relation
// exists. Qubits are compared only when the assertion lists them.
func assertEdge(exec *ir.Execution, a Assertion) error {
	want := ir.Edge{Source: a.Source, Target: a.Target, Relation: ir.Relation(a.Relation), Qubits: a.Qubits}

	edge, ok := exec.Graph.FindEdge(a.Source, a.Target, ir.Relation(a.Relation))
	if !ok {
		return &AssertionError{
			Type:     AssertEdge,
			Expected: formatEdge(want),
			Actual:   "no such edge",
			Edges:    exec.Graph.Edges,
		}
	}
	if len(a.Qubits) > 0 && !slices.Equal(edge.Qubits, a.Qubits) {
		return &AssertionError{
			Type:     AssertEdge,
			Expected: formatEdge(want),
			Actual:   formatEdge(edge),
			Edges:    exec.Graph.Edges,
		}
	}
	return nil
}

// assertEdgeCount checks the number of edges of one relation.
func assertEdgeCount(exec *ir.Execution, a Assertion) error {
	got := len(exec.Graph.EdgesOf(ir.Relation(a.Relation)))
	if got != a.Count {
		return &AssertionError{
			Type:     AssertEdgeCount,
			Expected: fmt.Sprintf("%d %s edges", a.Count, a.Relation),
			Actual:   fmt.Sprintf("%d %s edges", got, a.Relation),
			Edges:    exec.Graph.Edges,
		}
	}
	return nil
}

// assertQubitChain follows the qubit's QUBIT_DEP edges from its first
// event and compares the visited ids.
func assertQubitChain(exec *ir.Execution, a Assertion) error {
	got := graph.FollowQubit(exec.Graph, a.Qubit)
	if !slices.Equal(got, a.Chain) {
		return &AssertionError{
			Type:     AssertQubitChain,
			Expected: fmt.Sprintf("qubit %d chain %v", a.Qubit, a.Chain),
			Actual:   fmt.Sprintf("qubit %d chain %v", a.Qubit, got),
			Edges:    exec.Graph.Edges,
		}
	}
	return nil
}

// assertDivergence compares A against B.
func assertDivergence(execA, execB *ir.Execution, a Assertion) error {
	r := divergence.Compare(execA, execB)
	if r.DivergenceCount == a.Count && len(r.ExtraEventsA) == a.ExtraA && len(r.ExtraEventsB) == a.ExtraB {
		return nil
	}
	return &AssertionError{
		Type: AssertDivergence,
		Expected: fmt.Sprintf("%d divergent steps, %d extra in %s, %d extra in %s",
			a.Count, a.ExtraA, a.A, a.ExtraB, a.B),
		Actual: fmt.Sprintf("%d divergent steps, %d extra in %s, %d extra in %s",
			r.DivergenceCount, len(r.ExtraEventsA), a.A, len(r.ExtraEventsB), a.B),
	}
}

// assertStep checks one replay step.
func assertStep(exec *ir.Execution, a Assertion) error {
	step, err := replay.New(exec).Step(a.Index)
	if a.OutOfRange {
		if ir.IsOutOfRange(err) {
			return nil
		}
		return &AssertionError{
			Type:     AssertStep,
			Expected: fmt.Sprintf("step %d out of range", a.Index),
			Actual:   fmt.Sprintf("err = %v", err),
		}
	}
	if err != nil {
		return &AssertionError{
			Type:     AssertStep,
			Expected: fmt.Sprintf("step %d is %s", a.Index, a.EventType),
			Actual:   err.Error(),
		}
	}

	var mismatches []string
	if string(step.Event.Type()) != a.EventType {
		mismatches = append(mismatches, fmt.Sprintf("event_type %s", step.Event.Type()))
	}
	if a.HasPrevious != nil && step.HasPrevious != *a.HasPrevious {
		mismatches = append(mismatches, fmt.Sprintf("has_previous %t", step.HasPrevious))
	}
	if a.HasNext != nil && step.HasNext != *a.HasNext {
		mismatches = append(mismatches, fmt.Sprintf("has_next %t", step.HasNext))
	}
	if len(mismatches) > 0 {
		return &AssertionError{
			Type:     AssertStep,
			Expected: fmt.Sprintf("step %d is %s", a.Index, a.EventType),
			Actual:   strings.Join(mismatches, ", "),
		}
	}
	return nil
}
