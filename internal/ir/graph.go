package ir

import "slices"

// Relation is the kind of a graph edge.
type Relation string

const (
	// RelationNext links consecutive events.
	RelationNext Relation = "NEXT"

	// RelationQubitDep links the last event touching a qubit to the next
	// event touching the same qubit.
	RelationQubitDep Relation = "QUBIT_DEP"
)

// Node is the graph projection of an event. It serializes exactly like
// the event it wraps.
type Node struct {
	Event
}

// Edge is a directed relation between two node ids. Qubits is only set on
// QUBIT_DEP edges and is kept sorted ascending.
type Edge struct {
	Source   int      `json:"source"`
	Target   int      `json:"target"`
	Relation Relation `json:"relation"`
	Qubits   []int    `json:"qubits,omitempty"`
}

// Clone returns a copy of e that shares no slices with it.
func (e Edge) Clone() Edge {
	e.Qubits = slices.Clone(e.Qubits)
	return e
}

// Graph is the derived graph of one execution.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// EdgesOf returns the edges with the given relation in stored order.
func (g Graph) EdgesOf(rel Relation) []Edge {
	out := []Edge{}
	for _, e := range g.Edges {
		if e.Relation == rel {
			out = append(out, e)
		}
	}
	return out
}

// FindEdge returns the edge source->target with the given relation.
func (g Graph) FindEdge(source, target int, rel Relation) (Edge, bool) {
	for _, e := range g.Edges {
		if e.Source == source && e.Target == target && e.Relation == rel {
			return e, true
		}
	}
	return Edge{}, false
}

// Events returns the events behind the graph's nodes in node order.
func (g Graph) Events() EventLog {
	out := make(EventLog, len(g.Nodes))
	for i, n := range g.Nodes {
		out[i] = n.Event
	}
	return out
}

// Clone returns a deep copy of the graph.
func (g Graph) Clone() Graph {
	out := Graph{
		Nodes: make([]Node, len(g.Nodes)),
		Edges: make([]Edge, len(g.Edges)),
	}
	for i, n := range g.Nodes {
		out.Nodes[i] = Node{Event: n.Event.Clone()}
	}
	for i, e := range g.Edges {
		out.Edges[i] = e.Clone()
	}
	return out
}
