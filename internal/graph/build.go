package graph

import (
	"slices"

	"github.com/roach88/qtrace/internal/ir"
)

// Build converts a validated event log into its graph. The same log always
// yields an identical graph: nodes in event order, NEXT edges in chain
// order, then QUBIT_DEP edges ordered by target and source.
//
// When an event touches several qubits whose last toucher is the same
// event, the QUBIT_DEP edges are merged into one edge carrying the union of
// those qubits. Distinct sources produce distinct edges.
func Build(log ir.EventLog) (ir.Graph, error) {
	if err := Validate(log); err != nil {
		return ir.Graph{}, err
	}

	events := log.Clone()
	g := ir.Graph{
		Nodes: make([]ir.Node, len(events)),
		Edges: make([]ir.Edge, 0, 2*len(events)),
	}
	for i, e := range events {
		g.Nodes[i] = ir.Node{Event: e}
	}

	for i := 0; i+1 < len(events); i++ {
		g.Edges = append(g.Edges, ir.Edge{
			Source:   events[i].ID,
			Target:   events[i+1].ID,
			Relation: ir.RelationNext,
		})
	}

	lastTouch := make(map[int]int)
	for _, e := range events {
		qubits := e.Qubits()
		if len(qubits) == 0 {
			continue
		}

		var deps []ir.Edge
		for _, q := range qubits {
			p, ok := lastTouch[q]
			if !ok {
				continue
			}
			k := slices.IndexFunc(deps, func(d ir.Edge) bool { return d.Source == p })
			if k < 0 {
				deps = append(deps, ir.Edge{Source: p, Target: e.ID, Relation: ir.RelationQubitDep})
				k = len(deps) - 1
			}
			deps[k].Qubits = append(deps[k].Qubits, q)
		}
		for _, q := range qubits {
			lastTouch[q] = e.ID
		}

		slices.SortFunc(deps, func(a, b ir.Edge) int { return a.Source - b.Source })
		for _, d := range deps {
			slices.Sort(d.Qubits)
			g.Edges = append(g.Edges, d)
		}
	}

	return g, nil
}

// MustBuild is like Build but panics on error.
// Use only in tests or with logs known to be valid.
func MustBuild(log ir.EventLog) ir.Graph {
	g, err := Build(log)
	if err != nil {
		panic(err)
	}
	return g
}
