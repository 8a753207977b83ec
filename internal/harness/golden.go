package harness

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/qtrace/internal/graph"
)

// Snapshot renders every recorded execution as text: a header line with
// label and circuit, followed by the graph. Execution ids are left out.
func Snapshot(result *Result) ([]byte, error) {
	var buf bytes.Buffer
	for i, rec := range result.Executions {
		if i > 0 {
			buf.WriteByte('\n')
		}
		exec := rec.Execution
		fmt.Fprintf(&buf, "execution %s circuit=%s\n", rec.Label, exec.CircuitName)
		if err := graph.WriteText(&buf, exec.Graph); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

// RunWithGolden executes a scenario and compares its snapshot against a
// golden file stored in testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns the result so callers can check assertions too.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing result against a golden file.
func AssertGolden(t *testing.T, name string, result *Result) error {
	t.Helper()

	snapshot, err := Snapshot(result)
	if err != nil {
		return err
	}
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, snapshot)
	return nil
}
