package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/roach88/qtrace/internal/ir"
)

// Save writes an execution's metadata, events and edges in one
// transaction. Readers never observe a partially stored execution.
// Saving an id that already exists is a no-op.
func (s *Store) Save(ctx context.Context, exec *ir.Execution) error {
	if err := s.checkOpen("save execution"); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return classify("save execution", err)
	}
	defer tx.Rollback()

	if err := s.insertExecution(ctx, tx, exec.ExecutionMeta); err != nil {
		return classify("save execution", err)
	}
	if err := s.insertGraph(ctx, tx, exec.ID, exec.Graph.Nodes, exec.Graph.Edges); err != nil {
		return classify("save execution", err)
	}

	if err := tx.Commit(); err != nil {
		return classify("save execution", err)
	}
	return nil
}

// StoreExecution inserts execution metadata. Uses ON CONFLICT DO NOTHING
// so a repeated write of the same id is ignored.
func (s *Store) StoreExecution(ctx context.Context, meta ir.ExecutionMeta) error {
	if err := s.checkOpen("store execution"); err != nil {
		return err
	}
	return classify("store execution", s.insertExecution(ctx, s.db, meta))
}

// StoreGraph inserts the nodes and edges of an execution whose metadata
// was already stored. Returns NOT_FOUND if it was not.
func (s *Store) StoreGraph(ctx context.Context, executionID string, nodes []ir.Node, edges []ir.Edge) error {
	if err := s.checkOpen("store graph"); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return classify("store graph", err)
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRowContext(ctx, s.rebind(`SELECT 1 FROM executions WHERE id = ?`), executionID).Scan(&exists)
	if err == sql.ErrNoRows {
		return ir.NewNotFoundError(executionID)
	}
	if err != nil {
		return classify("store graph", err)
	}

	if err := s.insertGraph(ctx, tx, executionID, nodes, edges); err != nil {
		return classify("store graph", err)
	}
	if err := tx.Commit(); err != nil {
		return classify("store graph", err)
	}
	return nil
}

// UpdatePerformance replaces the stored performance stats of an
// execution. Returns NOT_FOUND if no such execution exists.
func (s *Store) UpdatePerformance(ctx context.Context, executionID string, stats ir.PerformanceStats) error {
	if err := s.checkOpen("update performance"); err != nil {
		return err
	}
	data, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("marshal performance stats: %w", err)
	}
	res, err := s.db.ExecContext(ctx, s.rebind(`
		UPDATE executions SET performance = ? WHERE id = ?
	`), string(data), executionID)
	if err != nil {
		return classify("update performance", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return classify("update performance", err)
	}
	if n == 0 {
		return ir.NewNotFoundError(executionID)
	}
	return nil
}

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *Store) insertExecution(ctx context.Context, db execer, meta ir.ExecutionMeta) error {
	var noiseType, noiseLevel, noiseJSON, perfJSON sql.NullString
	if meta.Noise != nil {
		data, err := json.Marshal(meta.Noise)
		if err != nil {
			return fmt.Errorf("marshal noise config: %w", err)
		}
		noiseType = sql.NullString{String: meta.Noise.Type, Valid: true}
		noiseLevel = sql.NullString{String: meta.Noise.Level, Valid: true}
		noiseJSON = sql.NullString{String: string(data), Valid: true}
	}
	if meta.Stats != nil {
		data, err := json.Marshal(meta.Stats)
		if err != nil {
			return fmt.Errorf("marshal performance stats: %w", err)
		}
		perfJSON = sql.NullString{String: string(data), Valid: true}
	}

	_, err := db.ExecContext(ctx, s.rebind(`
		INSERT INTO executions
		(id, circuit_name, noise_type, noise_level, noise_config, num_events, num_gates,
		 log_digest, graph_digest, performance, created_at_ns)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO NOTHING
	`),
		meta.ID,
		meta.CircuitName,
		noiseType,
		noiseLevel,
		noiseJSON,
		meta.NumEvents,
		meta.NumGates,
		meta.LogDigest,
		meta.GraphDigest,
		perfJSON,
		meta.CreatedAt.UTC().UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("insert execution: %w", err)
	}
	return nil
}

func (s *Store) insertGraph(ctx context.Context, tx *sql.Tx, executionID string, nodes []ir.Node, edges []ir.Edge) error {
	eventStmt, err := tx.PrepareContext(ctx, s.rebind(`
		INSERT INTO events
		(execution_id, event_id, event_type, ts, gate_name, qubits, classical_bits)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (execution_id, event_id) DO NOTHING
	`))
	if err != nil {
		return fmt.Errorf("prepare events: %w", err)
	}
	defer eventStmt.Close()

	for _, n := range nodes {
		qubits, err := marshalInts(n.Qubits())
		if err != nil {
			return err
		}
		bits, err := marshalInts(n.ClassicalBits())
		if err != nil {
			return err
		}
		gate := sql.NullString{String: n.GateName(), Valid: n.GateName() != ""}
		if _, err := eventStmt.ExecContext(ctx,
			executionID, n.ID, string(n.Type()), n.Timestamp, gate, qubits, bits,
		); err != nil {
			return fmt.Errorf("insert event %d: %w", n.ID, err)
		}
	}

	edgeStmt, err := tx.PrepareContext(ctx, s.rebind(`
		INSERT INTO edges
		(execution_id, ordinal, source, target, relation, qubits)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (execution_id, ordinal) DO NOTHING
	`))
	if err != nil {
		return fmt.Errorf("prepare edges: %w", err)
	}
	defer edgeStmt.Close()

	for i, e := range edges {
		qubits, err := marshalInts(e.Qubits)
		if err != nil {
			return err
		}
		if _, err := edgeStmt.ExecContext(ctx,
			executionID, i, e.Source, e.Target, string(e.Relation), qubits,
		); err != nil {
			return fmt.Errorf("insert edge %d->%d: %w", e.Source, e.Target, err)
		}
	}
	return nil
}

// marshalInts stores an int list as a JSON array, NULL when empty.
func marshalInts(v []int) (sql.NullString, error) {
	if len(v) == 0 {
		return sql.NullString{}, nil
	}
	data, err := ir.MarshalCanonical(v)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("marshal int list: %w", err)
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}
