package circuit

import (
	"fmt"
	"math/rand/v2"
	"slices"
)

// DefaultRandomGates is the gate count of a random circuit when none is
// requested.
const DefaultRandomGates = 5

// Bell prepares and measures a Bell pair.
func Bell() *Circuit {
	return New("bell", 2, 2).
		H(0).
		CX(0, 1).
		Measure([]int{0, 1}, []int{0, 1})
}

// GHZ prepares and measures a three-qubit GHZ state.
func GHZ() *Circuit {
	return New("ghz", 3, 3).
		H(0).
		CX(0, 1).
		CX(0, 2).
		Measure([]int{0, 1, 2}, []int{0, 1, 2})
}

// Random applies n single-qubit gates drawn from h, x, y, z to random
// qubits of a two-qubit register, then measures both.
func Random(r *rand.Rand, n int) *Circuit {
	gates := []string{"h", "x", "y", "z"}
	c := New("random", 2, 2)
	for range n {
		c.Gate(gates[r.IntN(len(gates))], r.IntN(2))
	}
	return c.Measure([]int{0, 1}, []int{0, 1})
}

// Options parameterizes library lookups.
type Options struct {
	// Gates is the gate count for random circuits.
	Gates int

	// Seed makes random circuits reproducible.
	Seed uint64
}

var builtins = map[string]func(Options) *Circuit{
	"bell": func(Options) *Circuit { return Bell() },
	"ghz":  func(Options) *Circuit { return GHZ() },
	"random": func(o Options) *Circuit {
		n := o.Gates
		if n <= 0 {
			n = DefaultRandomGates
		}
		return Random(rand.New(rand.NewPCG(o.Seed, o.Seed^0x9e3779b97f4a7c15)), n)
	},
}

// Names lists the built-in circuits.
func Names() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Lookup returns a built-in circuit by name.
func Lookup(name string, opts Options) (*Circuit, error) {
	build, ok := builtins[name]
	if !ok {
		return nil, fmt.Errorf("unknown circuit %q (choose from %v)", name, Names())
	}
	return build(opts), nil
}
