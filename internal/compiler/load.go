package compiler

import (
	"errors"
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"

	"github.com/roach88/qtrace/internal/circuit"
)

// CompileCircuits compiles every circuit declared under the top-level
// "circuit" field, in declaration order. It keeps going after a bad
// circuit and returns every error it met.
func CompileCircuits(v cue.Value) ([]*circuit.Circuit, []error) {
	root := v.LookupPath(cue.ParsePath("circuit"))
	if !root.Exists() {
		return nil, nil
	}
	iter, err := root.Fields()
	if err != nil {
		return nil, []error{formatCUEError(err)}
	}

	var (
		out  []*circuit.Circuit
		errs []error
	)
	for iter.Next() {
		c, err := CompileCircuit(iter.Value())
		if err != nil {
			errs = append(errs, fmt.Errorf("circuit.%s: %w", iter.Selector(), err))
			continue
		}
		out = append(out, c)
	}
	return out, errs
}

// LoadFile compiles a single CUE file of circuit definitions.
func LoadFile(path string) ([]*circuit.Circuit, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	v := cuecontext.New().CompileBytes(data, cue.Filename(path))
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	circuits, errs := CompileCircuits(v)
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	if len(circuits) == 0 {
		return nil, fmt.Errorf("%s: no circuits declared", path)
	}
	return circuits, nil
}

// Find returns the circuit with the given name.
func Find(circuits []*circuit.Circuit, name string) (*circuit.Circuit, bool) {
	for _, c := range circuits {
		if c.Name == name {
			return c, true
		}
	}
	return nil, false
}
