package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/qtrace/internal/ir"
)

func TestQubitChainBell(t *testing.T) {
	g := MustBuild(bellLog())

	assert.Equal(t, []int{1, 2, 3}, QubitChain(g, 0))
	assert.Equal(t, []int{2, 4}, QubitChain(g, 1))
	assert.Equal(t, []int{}, QubitChain(g, 5))
	assert.Equal(t, []int{2, 4}, FollowQubit(g, 1))
	assert.Equal(t, []int{}, FollowQubit(g, 5))
}

func TestDependents(t *testing.T) {
	g := MustBuild(bellLog())

	out := Dependents(g, 2)
	assert.Equal(t, []ir.Edge{
		{Source: 2, Target: 3, Relation: ir.RelationQubitDep, Qubits: []int{0}},
		{Source: 2, Target: 4, Relation: ir.RelationQubitDep, Qubits: []int{1}},
	}, out)
	assert.Empty(t, Dependents(g, 0))
}

func TestSummarize(t *testing.T) {
	s := Summarize(MustBuild(bellLog()))

	assert.Equal(t, Stats{
		NumNodes:         6,
		NumNextEdges:     5,
		NumQubitDepEdges: 3,
		Qubits:           []int{0, 1},
		Depth:            3,
	}, s)
}
