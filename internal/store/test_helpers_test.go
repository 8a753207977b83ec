package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/roach88/qtrace/internal/ir"
)

// createTestStore creates a new SQLite store in a temp dir.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// forEachBackend runs fn against SQLite and, when QTRACE_TEST_POSTGRES_URL
// is set, against PostgreSQL.
func forEachBackend(t *testing.T, fn func(t *testing.T, s *Store)) {
	t.Helper()
	t.Run("sqlite", func(t *testing.T) {
		fn(t, createTestStore(t))
	})

	url := os.Getenv("QTRACE_TEST_POSTGRES_URL")
	if url == "" {
		return
	}
	t.Run("postgres", func(t *testing.T) {
		s, err := OpenPostgres(context.Background(), PostgresConfig{URL: url})
		if err != nil {
			t.Fatalf("OpenPostgres() failed: %v", err)
		}
		t.Cleanup(func() {
			s.db.Exec(`DELETE FROM executions`)
			s.Close()
		})
		fn(t, s)
	})
}

func bellLog() ir.EventLog {
	return ir.EventLog{
		ir.NewStart(0),
		ir.NewGate(1, "H", 0),
		ir.NewGate(2, "CX", 0, 1),
		ir.NewMeasurement(3, []int{0}, []int{0}),
		ir.NewMeasurement(4, []int{1}, []int{1}),
		ir.NewEnd(5),
	}
}

// createTestExecution builds a bell execution with hand-written edges so
// store tests do not depend on the graph package.
func createTestExecution(id string, created time.Time) *ir.Execution {
	log := bellLog()
	nodes := make([]ir.Node, len(log))
	for i, e := range log {
		nodes[i] = ir.Node{Event: e}
	}
	edges := []ir.Edge{
		{Source: 0, Target: 1, Relation: ir.RelationNext},
		{Source: 1, Target: 2, Relation: ir.RelationNext},
		{Source: 2, Target: 3, Relation: ir.RelationNext},
		{Source: 3, Target: 4, Relation: ir.RelationNext},
		{Source: 4, Target: 5, Relation: ir.RelationNext},
		{Source: 1, Target: 2, Relation: ir.RelationQubitDep, Qubits: []int{0}},
		{Source: 2, Target: 3, Relation: ir.RelationQubitDep, Qubits: []int{0}},
		{Source: 2, Target: 4, Relation: ir.RelationQubitDep, Qubits: []int{1}},
	}
	return &ir.Execution{
		ExecutionMeta: ir.ExecutionMeta{
			ID:          id,
			CircuitName: "bell",
			NumEvents:   len(log),
			NumGates:    log.CountGates(),
			LogDigest:   "log-digest",
			GraphDigest: "graph-digest",
			CreatedAt:   created,
		},
		Events: log,
		Graph:  ir.Graph{Nodes: nodes, Edges: edges},
	}
}
