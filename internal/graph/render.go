package graph

import (
	"bufio"
	"fmt"
	"io"

	"github.com/roach88/qtrace/internal/ir"
)

// WriteText renders g as one line per node and one line per edge, in
// stored order:
//
//	nodes:
//	  1 GATE H q[0]
//	  3 MEASUREMENT q[0] -> c[0]
//	edges:
//	  1 -> 2 QUBIT_DEP q[0]
func WriteText(w io.Writer, g ir.Graph) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintln(bw, "nodes:")
	for _, n := range g.Nodes {
		fmt.Fprintf(bw, "  %d %s", n.ID, n.Type())
		if name := n.GateName(); name != "" {
			fmt.Fprintf(bw, " %s", name)
		}
		if q := n.Qubits(); len(q) > 0 {
			fmt.Fprintf(bw, " q%v", q)
		}
		if b := n.ClassicalBits(); len(b) > 0 {
			fmt.Fprintf(bw, " -> c%v", b)
		}
		fmt.Fprintln(bw)
	}

	fmt.Fprintln(bw, "edges:")
	for _, e := range g.Edges {
		fmt.Fprintf(bw, "  %d -> %d %s", e.Source, e.Target, e.Relation)
		if len(e.Qubits) > 0 {
			fmt.Fprintf(bw, " q%v", e.Qubits)
		}
		fmt.Fprintln(bw)
	}
	return bw.Flush()
}
