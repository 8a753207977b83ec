package harness

import "github.com/roach88/qtrace/internal/ir"

// Recorded is one execution produced by a scenario, as read back from
// the store.
type Recorded struct {
	Label     string
	Execution *ir.Execution
}

// Result is the outcome of a scenario run.
type Result struct {
	// Pass is true when every assertion held.
	Pass bool `json:"pass"`

	// Executions in scenario order.
	Executions []Recorded `json:"-"`

	// Errors contains assertion failures. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Errors: []string{},
	}
}

// AddError adds a failure and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// Execution returns the execution recorded under label.
func (r *Result) Execution(label string) (*ir.Execution, bool) {
	for _, rec := range r.Executions {
		if rec.Label == label {
			return rec.Execution, true
		}
	}
	return nil, false
}
