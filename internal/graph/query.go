package graph

import (
	"slices"

	"github.com/roach88/qtrace/internal/ir"
)

// QubitChain returns, in order, the ids of every event that touches q.
// Following QUBIT_DEP edges for q from the first id visits exactly this
// sequence.
func QubitChain(g ir.Graph, q int) []int {
	chain := []int{}
	for _, n := range g.Nodes {
		if slices.Contains(n.Qubits(), q) {
			chain = append(chain, n.ID)
		}
	}
	return chain
}

// FollowQubit walks QUBIT_DEP edges carrying q starting at the first event
// that touches it. The result equals QubitChain for a well-formed graph.
func FollowQubit(g ir.Graph, q int) []int {
	next := make(map[int]int)
	hasIncoming := make(map[int]bool)
	for _, e := range g.Edges {
		if e.Relation == ir.RelationQubitDep && slices.Contains(e.Qubits, q) {
			next[e.Source] = e.Target
			hasIncoming[e.Target] = true
		}
	}

	chain := []int{}
	start := -1
	for _, n := range g.Nodes {
		if slices.Contains(n.Qubits(), q) && !hasIncoming[n.ID] {
			start = n.ID
			break
		}
	}
	if start < 0 {
		return chain
	}
	for id, ok := start, true; ok; id, ok = next[id] {
		chain = append(chain, id)
	}
	return chain
}

// Dependencies returns the QUBIT_DEP edges entering node id.
func Dependencies(g ir.Graph, id int) []ir.Edge {
	out := []ir.Edge{}
	for _, e := range g.Edges {
		if e.Relation == ir.RelationQubitDep && e.Target == id {
			out = append(out, e)
		}
	}
	return out
}

// Dependents returns the QUBIT_DEP edges leaving node id.
func Dependents(g ir.Graph, id int) []ir.Edge {
	out := []ir.Edge{}
	for _, e := range g.Edges {
		if e.Relation == ir.RelationQubitDep && e.Source == id {
			out = append(out, e)
		}
	}
	return out
}

// Stats summarizes a graph for overview responses.
type Stats struct {
	NumNodes         int   `json:"num_nodes"`
	NumNextEdges     int   `json:"num_next_edges"`
	NumQubitDepEdges int   `json:"num_qubit_dep_edges"`
	Qubits           []int `json:"qubits"`

	// Depth is the number of events on the longest QUBIT_DEP path.
	Depth int `json:"depth"`
}

// Summarize computes Stats for g.
func Summarize(g ir.Graph) Stats {
	s := Stats{NumNodes: len(g.Nodes), Qubits: []int{}}

	seen := make(map[int]bool)
	for _, n := range g.Nodes {
		for _, q := range n.Qubits() {
			if !seen[q] {
				seen[q] = true
				s.Qubits = append(s.Qubits, q)
			}
		}
	}
	slices.Sort(s.Qubits)

	// Edges always point forward in event order, so one pass over nodes
	// in order is a topological traversal.
	depth := make(map[int]int)
	incoming := make(map[int][]int)
	for _, e := range g.Edges {
		switch e.Relation {
		case ir.RelationNext:
			s.NumNextEdges++
		case ir.RelationQubitDep:
			s.NumQubitDepEdges++
			incoming[e.Target] = append(incoming[e.Target], e.Source)
		}
	}
	for _, n := range g.Nodes {
		if len(n.Qubits()) == 0 {
			continue
		}
		d := 1
		for _, src := range incoming[n.ID] {
			d = max(d, depth[src]+1)
		}
		depth[n.ID] = d
		s.Depth = max(s.Depth, d)
	}
	return s
}
