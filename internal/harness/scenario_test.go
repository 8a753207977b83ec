package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeScenario(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadScenario_Valid(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/bell_vs_ghz.yaml")
	require.NoError(t, err)

	assert.Equal(t, "bell_vs_ghz", s.Name)
	require.Len(t, s.Executions, 2)
	assert.Equal(t, "bell", s.Executions[0].Label)
	assert.Equal(t, "ghz", s.Executions[1].Circuit)

	last := s.Assertions[len(s.Assertions)-1]
	assert.Equal(t, AssertStep, last.Type)
	assert.True(t, last.OutOfRange)

	first := s.Assertions[len(s.Assertions)-3]
	require.NotNil(t, first.HasPrevious)
	assert.False(t, *first.HasPrevious)
}

func TestLoadScenario_ResolvesFileRelativeToScenario(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/custom_circuit.yaml")
	require.NoError(t, err)

	want := filepath.Join("testdata", "circuits", "variants.cue")
	assert.Equal(t, want, s.Executions[1].File)
}

func TestLoadScenario_RejectsUnknownFields(t *testing.T) {
	path := writeScenario(t, t.TempDir(), `
name: typo
description: "misspelled key"
executions:
  - label: bell
    circuit: bell
assertion:
  - type: edge_count
    label: bell
    relation: NEXT
`)
	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario("testdata/scenarios/nope.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestValidateScenario(t *testing.T) {
	valid := func() Scenario {
		return Scenario{
			Name:        "s",
			Description: "d",
			Executions:  []ExecutionSpec{{Label: "bell", Circuit: "bell"}},
			Assertions:  []Assertion{{Type: AssertEdgeCount, Label: "bell", Relation: "NEXT", Count: 5}},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Scenario)
		wantErr string
	}{
		{"valid", func(*Scenario) {}, ""},
		{"missing name", func(s *Scenario) { s.Name = "" }, "name is required"},
		{"missing description", func(s *Scenario) { s.Description = "" }, "description is required"},
		{"no executions", func(s *Scenario) { s.Executions = nil }, "executions list is required"},
		{"no assertions", func(s *Scenario) { s.Assertions = nil }, "assertions list is required"},
		{"missing label", func(s *Scenario) { s.Executions[0].Label = "" }, "label is required"},
		{"duplicate label", func(s *Scenario) {
			s.Executions = append(s.Executions, ExecutionSpec{Label: "bell", Circuit: "ghz"})
		}, "duplicate label"},
		{"no circuit", func(s *Scenario) { s.Executions[0].Circuit = "" }, "circuit or file is required"},
		{"missing file", func(s *Scenario) { s.Executions[0].File = "/does/not/exist.cue" }, "circuit file not found"},
		{"unknown type", func(s *Scenario) { s.Assertions[0].Type = "trace_order" }, "unknown assertion type"},
		{"unknown label", func(s *Scenario) { s.Assertions[0].Label = "ghz" }, `unknown execution label "ghz"`},
		{"edge without relation", func(s *Scenario) { s.Assertions[0].Relation = "" }, "relation is required"},
		{"divergence without b", func(s *Scenario) {
			s.Assertions[0] = Assertion{Type: AssertDivergence, A: "bell"}
		}, "label is required for divergence"},
		{"step without expectation", func(s *Scenario) {
			s.Assertions[0] = Assertion{Type: AssertStep, Label: "bell", Index: 1}
		}, "event_type or out_of_range is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := valid()
			tt.mutate(&s)
			err := validateScenario(&s)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
