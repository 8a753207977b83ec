// Package replay serves a recorded execution step by step.
//
// An Engine wraps one immutable execution. It never mutates events and
// holds no cursor, so concurrent callers may share one Engine.
package replay

import (
	"iter"
	"time"

	"github.com/roach88/qtrace/internal/ir"
)

// Engine exposes step-indexed reads over one execution.
type Engine struct {
	exec *ir.Execution
}

// New returns an Engine for exec. The execution must not be modified
// afterwards.
func New(exec *ir.Execution) *Engine {
	return &Engine{exec: exec}
}

// Replay is the full ordered replay of an execution.
type Replay struct {
	ExecutionID string          `json:"execution_id"`
	CircuitName string          `json:"circuit_name"`
	Noise       *ir.NoiseConfig `json:"noise_config,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	TotalSteps  int             `json:"total_steps"`
	Steps       []ir.Event      `json:"steps"`
	Edges       []ir.Edge       `json:"edges"`
}

// Step is one replay position.
type Step struct {
	ExecutionID string   `json:"execution_id"`
	Index       int      `json:"step_index"`
	TotalSteps  int      `json:"total_steps"`
	Event       ir.Event `json:"event"`
	HasPrevious bool     `json:"has_previous"`
	HasNext     bool     `json:"has_next"`

	// DependsOn lists the QUBIT_DEP edges entering this step.
	DependsOn []ir.Edge `json:"depends_on"`
}

// Len returns the number of steps.
func (e *Engine) Len() int {
	return len(e.exec.Events)
}

// Full returns every step plus the edge list and metadata. The result
// shares no memory with the execution.
func (e *Engine) Full() Replay {
	steps := []ir.Event(e.exec.Events.Clone())
	if steps == nil {
		steps = []ir.Event{}
	}
	edges := make([]ir.Edge, len(e.exec.Graph.Edges))
	for i, edge := range e.exec.Graph.Edges {
		edges[i] = edge.Clone()
	}

	return Replay{
		ExecutionID: e.exec.ID,
		CircuitName: e.exec.CircuitName,
		Noise:       e.exec.Noise,
		CreatedAt:   e.exec.CreatedAt,
		TotalSteps:  len(steps),
		Steps:       steps,
		Edges:       edges,
	}
}

// Step returns the event at index i. It fails with
// *ir.StepOutOfRangeError when i is outside [0, Len()-1].
func (e *Engine) Step(i int) (Step, error) {
	n := len(e.exec.Events)
	if i < 0 || i >= n {
		return Step{}, &ir.StepOutOfRangeError{
			ExecutionID: e.exec.ID,
			Index:       i,
			MaxIndex:    n - 1,
		}
	}
	return e.step(i), nil
}

func (e *Engine) step(i int) Step {
	n := len(e.exec.Events)
	deps := []ir.Edge{}
	for _, edge := range e.exec.Graph.Edges {
		if edge.Relation == ir.RelationQubitDep && edge.Target == i {
			deps = append(deps, edge.Clone())
		}
	}
	return Step{
		ExecutionID: e.exec.ID,
		Index:       i,
		TotalSteps:  n,
		Event:       e.exec.Events[i].Clone(),
		HasPrevious: i > 0,
		HasNext:     i < n-1,
		DependsOn:   deps,
	}
}

// Steps iterates over every step in order.
func (e *Engine) Steps() iter.Seq2[int, Step] {
	return func(yield func(int, Step) bool) {
		for i := range e.exec.Events {
			if !yield(i, e.step(i)) {
				return
			}
		}
	}
}
