package compiler

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/qtrace/internal/circuit"
)

// CompileCircuit parses a CUE value into a Circuit.
//
// The value is the circuit struct itself, labeled with the circuit name:
//
//	circuit: bell: {
//		qubits: 2
//		clbits: 2
//		ops: [
//			{op: "h", qubits: [0]},
//			{op: "cx", qubits: [0, 1]},
//			{op: "measure", qubits: [0, 1], clbits: [0, 1]},
//		]
//	}
//
// A measure over several qubits is split into one instruction per qubit.
func CompileCircuit(v cue.Value) (*circuit.Circuit, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	c := &circuit.Circuit{}
	labels := v.Path().Selectors()
	if len(labels) > 0 {
		c.Name = labels[len(labels)-1].String()
	}

	var err error
	if c.NumQubits, err = requiredInt(v, "qubits"); err != nil {
		return nil, err
	}
	if c.NumClbits, err = optionalInt(v, "clbits"); err != nil {
		return nil, err
	}

	opsVal := v.LookupPath(cue.ParsePath("ops"))
	if !opsVal.Exists() {
		return nil, &CompileError{Field: "ops", Message: "ops is required", Pos: v.Pos()}
	}
	list, err := opsVal.List()
	if err != nil {
		return nil, formatCUEError(err)
	}
	for i := 0; list.Next(); i++ {
		ins, err := parseInstruction(list.Value(), i)
		if err != nil {
			return nil, err
		}
		c.Instructions = append(c.Instructions, ins...)
	}

	if err := c.Validate(); err != nil {
		return nil, &CompileError{Field: c.Name, Message: err.Error(), Pos: v.Pos()}
	}
	return c, nil
}

func parseInstruction(v cue.Value, i int) ([]circuit.Instruction, error) {
	field := fmt.Sprintf("ops[%d]", i)

	opVal := v.LookupPath(cue.ParsePath("op"))
	if !opVal.Exists() {
		return nil, &CompileError{Field: field, Message: "op is required", Pos: v.Pos()}
	}
	op, err := opVal.String()
	if err != nil {
		return nil, formatCUEError(err)
	}

	qubits, err := intList(v, "qubits")
	if err != nil {
		return nil, err
	}
	clbits, err := intList(v, "clbits")
	if err != nil {
		return nil, err
	}

	if op != circuit.OpMeasure {
		return []circuit.Instruction{{Op: op, Qubits: qubits, Clbits: clbits}}, nil
	}
	if len(clbits) != len(qubits) {
		return nil, &CompileError{
			Field:   field,
			Message: fmt.Sprintf("measure needs one clbit per qubit, got %d for %d", len(clbits), len(qubits)),
			Pos:     v.Pos(),
		}
	}
	out := make([]circuit.Instruction, len(qubits))
	for k := range qubits {
		out[k] = circuit.Instruction{Op: op, Qubits: []int{qubits[k]}, Clbits: []int{clbits[k]}}
	}
	return out, nil
}

func requiredInt(v cue.Value, path string) (int, error) {
	f := v.LookupPath(cue.ParsePath(path))
	if !f.Exists() {
		return 0, &CompileError{Field: path, Message: path + " is required", Pos: v.Pos()}
	}
	n, err := f.Int64()
	if err != nil {
		return 0, formatCUEError(err)
	}
	return int(n), nil
}

func optionalInt(v cue.Value, path string) (int, error) {
	if !v.LookupPath(cue.ParsePath(path)).Exists() {
		return 0, nil
	}
	return requiredInt(v, path)
}

func intList(v cue.Value, path string) ([]int, error) {
	f := v.LookupPath(cue.ParsePath(path))
	if !f.Exists() {
		return nil, nil
	}
	iter, err := f.List()
	if err != nil {
		return nil, formatCUEError(err)
	}
	var out []int
	for iter.Next() {
		n, err := iter.Value().Int64()
		if err != nil {
			return nil, formatCUEError(err)
		}
		out = append(out, int(n))
	}
	return out, nil
}

// CompileError represents a compilation error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}
	first := errs[0]
	if positions := errors.Positions(first); len(positions) > 0 {
		return &CompileError{Field: "cue", Message: first.Error(), Pos: positions[0]}
	}
	return err
}
