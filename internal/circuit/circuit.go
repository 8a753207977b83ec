// Package circuit models the programs whose executions are recorded and
// turns them into event logs.
package circuit

import (
	"fmt"
	"strings"

	"github.com/roach88/qtrace/internal/ir"
)

// OpMeasure is the instruction name for measurement.
const OpMeasure = "measure"

// Instruction is one operation in a circuit.
type Instruction struct {
	Op     string `json:"op" yaml:"op"`
	Qubits []int  `json:"qubits" yaml:"qubits"`
	Clbits []int  `json:"clbits,omitempty" yaml:"clbits,omitempty"`
}

// Circuit is an ordered instruction list over fixed qubit and classical
// bit registers.
type Circuit struct {
	Name         string        `json:"name" yaml:"name"`
	NumQubits    int           `json:"qubits" yaml:"qubits"`
	NumClbits    int           `json:"clbits" yaml:"clbits"`
	Instructions []Instruction `json:"ops" yaml:"ops"`
}

// New returns an empty circuit.
func New(name string, qubits, clbits int) *Circuit {
	return &Circuit{Name: name, NumQubits: qubits, NumClbits: clbits}
}

// Gate appends a named gate.
func (c *Circuit) Gate(op string, qubits ...int) *Circuit {
	c.Instructions = append(c.Instructions, Instruction{Op: op, Qubits: qubits})
	return c
}

func (c *Circuit) H(q int) *Circuit         { return c.Gate("h", q) }
func (c *Circuit) X(q int) *Circuit         { return c.Gate("x", q) }
func (c *Circuit) Y(q int) *Circuit         { return c.Gate("y", q) }
func (c *Circuit) Z(q int) *Circuit         { return c.Gate("z", q) }
func (c *Circuit) CX(ctl, tgt int) *Circuit { return c.Gate("cx", ctl, tgt) }

// Measure measures qubits[i] into clbits[i]. Each pair becomes its own
// instruction.
func (c *Circuit) Measure(qubits, clbits []int) *Circuit {
	for i := range qubits {
		in := Instruction{Op: OpMeasure, Qubits: []int{qubits[i]}}
		if i < len(clbits) {
			in.Clbits = []int{clbits[i]}
		}
		c.Instructions = append(c.Instructions, in)
	}
	return c
}

// Validate checks register bounds and instruction shape.
func (c *Circuit) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("circuit name is required")
	}
	if c.NumQubits <= 0 {
		return fmt.Errorf("circuit %s: qubits must be positive, got %d", c.Name, c.NumQubits)
	}
	if c.NumClbits < 0 {
		return fmt.Errorf("circuit %s: clbits must not be negative, got %d", c.Name, c.NumClbits)
	}

	for i, in := range c.Instructions {
		if in.Op == "" {
			return fmt.Errorf("ops[%d]: op name is required", i)
		}
		if len(in.Qubits) == 0 {
			return fmt.Errorf("ops[%d] %s: no qubits", i, in.Op)
		}
		seen := make(map[int]bool, len(in.Qubits))
		for _, q := range in.Qubits {
			if q < 0 || q >= c.NumQubits {
				return fmt.Errorf("ops[%d] %s: qubit %d out of range [0, %d)", i, in.Op, q, c.NumQubits)
			}
			if seen[q] {
				return fmt.Errorf("ops[%d] %s: qubit %d repeated", i, in.Op, q)
			}
			seen[q] = true
		}

		if in.Op == OpMeasure {
			if len(in.Clbits) != len(in.Qubits) {
				return fmt.Errorf("ops[%d] measure: %d clbits for %d qubits", i, len(in.Clbits), len(in.Qubits))
			}
			for _, b := range in.Clbits {
				if b < 0 || b >= c.NumClbits {
					return fmt.Errorf("ops[%d] measure: clbit %d out of range [0, %d)", i, b, c.NumClbits)
				}
			}
		} else if len(in.Clbits) > 0 {
			return fmt.Errorf("ops[%d] %s: only measure writes clbits", i, in.Op)
		}
	}
	return nil
}

// Extract emits the event log for a circuit: EXECUTION_START, one event
// per instruction in order, then EXECUTION_END. Gate names are upper-cased.
// Ids and timestamps count from 0.
func Extract(c *Circuit) (ir.EventLog, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	log := make(ir.EventLog, 0, len(c.Instructions)+2)
	log = append(log, ir.NewStart(0))
	for _, in := range c.Instructions {
		id := len(log)
		qubits := append([]int(nil), in.Qubits...)
		if in.Op == OpMeasure {
			log = append(log, ir.NewMeasurement(id, qubits, append([]int(nil), in.Clbits...)))
			continue
		}
		log = append(log, ir.NewGate(id, strings.ToUpper(in.Op), qubits...))
	}
	log = append(log, ir.NewEnd(len(log)))
	return log, nil
}
