// Package divergence compares two recorded executions structurally.
//
// Events are aligned by index. Only the common prefix can diverge; the
// tail of the longer log is reported as extra events. Measurement
// outcomes, noise settings and other metadata are never compared.
package divergence

import (
	"slices"

	"github.com/roach88/qtrace/internal/ir"
)

// Difference flags which fields differ at a divergent step.
type Difference struct {
	Type   bool `json:"type"`
	Gate   bool `json:"gate"`
	Qubits bool `json:"qubits"`
}

// Any reports whether any field differs.
func (d Difference) Any() bool {
	return d.Type || d.Gate || d.Qubits
}

// Step is one divergent index with both events.
type Step struct {
	Step       int        `json:"step"`
	Difference Difference `json:"difference"`
	ExecA      ir.Event   `json:"exec_a"`
	ExecB      ir.Event   `json:"exec_b"`
}

// Report is the result of comparing execution A against execution B.
type Report struct {
	ExecutionA      string     `json:"execution_a"`
	ExecutionB      string     `json:"execution_b"`
	TotalStepsA     int        `json:"total_steps_a"`
	TotalStepsB     int        `json:"total_steps_b"`
	DivergenceCount int        `json:"divergence_count"`
	DivergenceSteps []Step     `json:"divergence_steps"`
	ExtraEventsA    []ir.Event `json:"extra_events_a"`
	ExtraEventsB    []ir.Event `json:"extra_events_b"`
}

// Identical reports whether the two logs have the same structure and length.
func (r Report) Identical() bool {
	return r.DivergenceCount == 0 && len(r.ExtraEventsA) == 0 && len(r.ExtraEventsB) == 0
}

// FirstDivergence returns the lowest divergent index.
func (r Report) FirstDivergence() (int, bool) {
	if len(r.DivergenceSteps) == 0 {
		return 0, false
	}
	return r.DivergenceSteps[0].Step, true
}

// Diff compares two events field by field. Qubits are compared as
// ordered sequences.
func Diff(a, b ir.Event) Difference {
	return Difference{
		Type:   a.Type() != b.Type(),
		Gate:   a.GateName() != b.GateName(),
		Qubits: !slices.Equal(a.Qubits(), b.Qubits()),
	}
}

// CompareLogs aligns a and b by index over their common prefix.
func CompareLogs(a, b ir.EventLog) Report {
	common := min(len(a), len(b))

	r := Report{
		TotalStepsA:     len(a),
		TotalStepsB:     len(b),
		DivergenceSteps: []Step{},
		ExtraEventsA:    a[common:].Clone(),
		ExtraEventsB:    b[common:].Clone(),
	}
	// Nil inputs still serialize as [].
	if r.ExtraEventsA == nil {
		r.ExtraEventsA = []ir.Event{}
	}
	if r.ExtraEventsB == nil {
		r.ExtraEventsB = []ir.Event{}
	}

	for i := 0; i < common; i++ {
		if d := Diff(a[i], b[i]); d.Any() {
			r.DivergenceSteps = append(r.DivergenceSteps, Step{
				Step:       i,
				Difference: d,
				ExecA:      a[i].Clone(),
				ExecB:      b[i].Clone(),
			})
		}
	}
	r.DivergenceCount = len(r.DivergenceSteps)
	return r
}

// Compare compares two executions. Neither is modified.
func Compare(a, b *ir.Execution) Report {
	r := CompareLogs(a.Events, b.Events)
	r.ExecutionA = a.ID
	r.ExecutionB = b.ID
	return r
}
