package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Scenario defines a conformance test scenario.
type Scenario struct {
	// Name uniquely identifies this scenario. It also names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Executions are recorded in order before any assertion runs.
	Executions []ExecutionSpec `yaml:"executions"`

	// Assertions validate the recorded executions.
	// Supported types: edge, edge_count, qubit_chain, divergence, step
	Assertions []Assertion `yaml:"assertions"`
}

// ExecutionSpec describes one execution to record.
type ExecutionSpec struct {
	// Label is how assertions refer to this execution.
	Label string `yaml:"label"`

	// Circuit is a built-in circuit name, or the circuit to pick from File.
	Circuit string `yaml:"circuit"`

	// File is a CUE file of circuit declarations, relative to the
	// scenario file.
	File string `yaml:"file,omitempty"`

	NoiseType  string `yaml:"noise_type,omitempty"`
	NoiseLevel string `yaml:"noise_level,omitempty"`

	// Gates and Seed parameterize the random built-in.
	Gates int    `yaml:"gates,omitempty"`
	Seed  uint64 `yaml:"seed,omitempty"`
}

// Assertion validates one property of the recorded executions.
type Assertion struct {
	// Type selects the check:
	// - "edge": Source -> Target with Relation exists (Qubits checked if set)
	// - "edge_count": Label's graph has Count edges of Relation
	// - "qubit_chain": following Qubit visits exactly Chain
	// - "divergence": comparing A with B gives Count divergent steps and
	//   ExtraA/ExtraB extra events
	// - "step": replay step Index has EventType and neighbour flags, or is
	//   OutOfRange
	Type string `yaml:"type"`

	// Label names the execution (all types except divergence).
	Label string `yaml:"label,omitempty"`

	Source   int    `yaml:"source,omitempty"`
	Target   int    `yaml:"target,omitempty"`
	Relation string `yaml:"relation,omitempty"`
	Qubits   []int  `yaml:"qubits,omitempty"`

	// Count is the expected edge count or divergence count.
	Count int `yaml:"count,omitempty"`

	Qubit int   `yaml:"qubit,omitempty"`
	Chain []int `yaml:"chain,omitempty"`

	A      string `yaml:"a,omitempty"`
	B      string `yaml:"b,omitempty"`
	ExtraA int    `yaml:"extra_a,omitempty"`
	ExtraB int    `yaml:"extra_b,omitempty"`

	Index       int    `yaml:"index,omitempty"`
	EventType   string `yaml:"event_type,omitempty"`
	HasPrevious *bool  `yaml:"has_previous,omitempty"`
	HasNext     *bool  `yaml:"has_next,omitempty"`
	OutOfRange  bool   `yaml:"out_of_range,omitempty"`
}

// Assertion type constants.
const (
	AssertEdge       = "edge"
	AssertEdgeCount  = "edge_count"
	AssertQubitChain = "qubit_chain"
	AssertDivergence = "divergence"
	AssertStep       = "step"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
// Execution file paths are resolved relative to the scenario file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Strict field validation catches typos like "assertion:" vs "assertions:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	base := filepath.Dir(path)
	for i, exec := range scenario.Executions {
		if exec.File != "" && !filepath.IsAbs(exec.File) {
			scenario.Executions[i].File = filepath.Join(base, exec.File)
		}
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Executions) == 0 {
		return fmt.Errorf("executions list is required and must be non-empty")
	}
	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	labels := make(map[string]bool, len(s.Executions))
	for i, exec := range s.Executions {
		if exec.Label == "" {
			return fmt.Errorf("executions[%d]: label is required", i)
		}
		if labels[exec.Label] {
			return fmt.Errorf("executions[%d]: duplicate label %q", i, exec.Label)
		}
		labels[exec.Label] = true
		if exec.Circuit == "" && exec.File == "" {
			return fmt.Errorf("executions[%d]: circuit or file is required", i)
		}
		if exec.File != "" {
			if _, err := os.Stat(exec.File); os.IsNotExist(err) {
				return fmt.Errorf("executions[%d]: circuit file not found: %s", i, exec.File)
			}
		}
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(i, &a, labels); err != nil {
			return err
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion, labels map[string]bool) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	requireLabel := func(label string) error {
		if label == "" {
			return fmt.Errorf("assertions[%d]: label is required for %s", index, a.Type)
		}
		if !labels[label] {
			return fmt.Errorf("assertions[%d]: unknown execution label %q", index, label)
		}
		return nil
	}

	switch a.Type {
	case AssertEdge, AssertEdgeCount:
		if err := requireLabel(a.Label); err != nil {
			return err
		}
		if a.Relation == "" {
			return fmt.Errorf("assertions[%d]: relation is required for %s", index, a.Type)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative", index)
		}
	case AssertQubitChain:
		if err := requireLabel(a.Label); err != nil {
			return err
		}
	case AssertDivergence:
		if err := requireLabel(a.A); err != nil {
			return err
		}
		if err := requireLabel(a.B); err != nil {
			return err
		}
	case AssertStep:
		if err := requireLabel(a.Label); err != nil {
			return err
		}
		if !a.OutOfRange && a.EventType == "" {
			return fmt.Errorf("assertions[%d]: event_type or out_of_range is required for step", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
