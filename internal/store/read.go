package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/roach88/qtrace/internal/ir"
)

// MaxListLimit is the largest page size ListExecutions accepts.
const MaxListLimit = 50

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

const executionColumns = `id, circuit_name, noise_config, num_events, num_gates,
	log_digest, graph_digest, performance, created_at_ns`

// FetchMeta returns execution metadata without events or edges.
func (s *Store) FetchMeta(ctx context.Context, executionID string) (ir.ExecutionMeta, error) {
	if err := s.checkOpen("fetch execution"); err != nil {
		return ir.ExecutionMeta{}, err
	}
	row := s.db.QueryRowContext(ctx, s.rebind(`
		SELECT `+executionColumns+`
		FROM executions
		WHERE id = ?
	`), executionID)

	meta, err := scanMeta(row)
	if err == sql.ErrNoRows {
		return ir.ExecutionMeta{}, ir.NewNotFoundError(executionID)
	}
	if err != nil {
		return ir.ExecutionMeta{}, classify("fetch execution", err)
	}
	return meta, nil
}

// FetchExecution returns a stored execution with its events and graph.
// An execution whose graph was never stored is reported as NOT_FOUND.
func (s *Store) FetchExecution(ctx context.Context, executionID string) (*ir.Execution, error) {
	meta, err := s.FetchMeta(ctx, executionID)
	if err != nil {
		return nil, err
	}

	events, err := s.readEvents(ctx, executionID)
	if err != nil {
		return nil, classify("fetch execution", err)
	}
	if len(events) == 0 {
		return nil, ir.NewNotFoundError(executionID)
	}

	edges, err := s.readEdges(ctx, executionID)
	if err != nil {
		return nil, classify("fetch execution", err)
	}

	nodes := make([]ir.Node, len(events))
	for i, e := range events {
		nodes[i] = ir.Node{Event: e}
	}

	return &ir.Execution{
		ExecutionMeta: meta,
		Events:        events,
		Graph:         ir.Graph{Nodes: nodes, Edges: edges},
	}, nil
}

// ListExecutions returns one page of execution summaries, newest first.
// page starts at 1; limit must be in [1, MaxListLimit].
func (s *Store) ListExecutions(ctx context.Context, page, limit int) (ir.ExecutionPage, error) {
	if page < 1 {
		return ir.ExecutionPage{}, fmt.Errorf("%w: page %d must be >= 1", ErrInvalidPage, page)
	}
	if limit < 1 || limit > MaxListLimit {
		return ir.ExecutionPage{}, fmt.Errorf("%w: limit %d must be in [1, %d]", ErrInvalidPage, limit, MaxListLimit)
	}
	if err := s.checkOpen("list executions"); err != nil {
		return ir.ExecutionPage{}, err
	}

	total, err := s.Count(ctx)
	if err != nil {
		return ir.ExecutionPage{}, err
	}

	rows, err := s.db.QueryContext(ctx, s.rebind(`
		SELECT `+executionColumns+`
		FROM executions
		ORDER BY created_at_ns DESC, id ASC
		LIMIT ? OFFSET ?
	`), limit, (page-1)*limit)
	if err != nil {
		return ir.ExecutionPage{}, classify("list executions", err)
	}
	defer rows.Close()

	summaries := []ir.ExecutionSummary{}
	for rows.Next() {
		meta, err := scanMeta(rows)
		if err != nil {
			return ir.ExecutionPage{}, classify("list executions", err)
		}
		summaries = append(summaries, meta.Summary())
	}
	if err := rows.Err(); err != nil {
		return ir.ExecutionPage{}, classify("iterate executions", err)
	}

	return ir.ExecutionPage{
		Page:       page,
		Limit:      limit,
		Total:      total,
		Executions: summaries,
	}, nil
}

// Count returns the number of stored executions.
func (s *Store) Count(ctx context.Context) (int, error) {
	if err := s.checkOpen("count executions"); err != nil {
		return 0, err
	}
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM executions`).Scan(&n); err != nil {
		return 0, classify("count executions", err)
	}
	return n, nil
}

func (s *Store) readEvents(ctx context.Context, executionID string) (ir.EventLog, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(`
		SELECT event_id, event_type, ts, gate_name, qubits, classical_bits
		FROM events
		WHERE execution_id = ?
		ORDER BY event_id ASC
	`), executionID)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	events := ir.EventLog{}
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return events, nil
}

func (s *Store) readEdges(ctx context.Context, executionID string) ([]ir.Edge, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(`
		SELECT source, target, relation, qubits
		FROM edges
		WHERE execution_id = ?
		ORDER BY ordinal ASC
	`), executionID)
	if err != nil {
		return nil, fmt.Errorf("query edges: %w", err)
	}
	defer rows.Close()

	edges := []ir.Edge{}
	for rows.Next() {
		var (
			e      ir.Edge
			rel    string
			qubits sql.NullString
		)
		if err := rows.Scan(&e.Source, &e.Target, &rel, &qubits); err != nil {
			return nil, fmt.Errorf("scan edge: %w", err)
		}
		e.Relation = ir.Relation(rel)
		if e.Qubits, err = unmarshalInts(qubits); err != nil {
			return nil, err
		}
		edges = append(edges, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate edges: %w", err)
	}
	return edges, nil
}

func scanMeta(row rowScanner) (ir.ExecutionMeta, error) {
	var (
		meta      ir.ExecutionMeta
		noiseJSON sql.NullString
		perfJSON  sql.NullString
		createdNs int64
	)
	if err := row.Scan(
		&meta.ID,
		&meta.CircuitName,
		&noiseJSON,
		&meta.NumEvents,
		&meta.NumGates,
		&meta.LogDigest,
		&meta.GraphDigest,
		&perfJSON,
		&createdNs,
	); err != nil {
		return ir.ExecutionMeta{}, err
	}

	if noiseJSON.Valid {
		meta.Noise = &ir.NoiseConfig{}
		if err := json.Unmarshal([]byte(noiseJSON.String), meta.Noise); err != nil {
			return ir.ExecutionMeta{}, fmt.Errorf("unmarshal noise config: %w", err)
		}
	}
	if perfJSON.Valid {
		meta.Stats = &ir.PerformanceStats{}
		if err := json.Unmarshal([]byte(perfJSON.String), meta.Stats); err != nil {
			return ir.ExecutionMeta{}, fmt.Errorf("unmarshal performance stats: %w", err)
		}
	}
	meta.CreatedAt = time.Unix(0, createdNs).UTC()
	return meta, nil
}

func scanEvent(rows rowScanner) (ir.Event, error) {
	var (
		e         ir.Event
		eventType string
		gate      sql.NullString
		qubitsRaw sql.NullString
		bitsRaw   sql.NullString
	)
	if err := rows.Scan(&e.ID, &eventType, &e.Timestamp, &gate, &qubitsRaw, &bitsRaw); err != nil {
		return ir.Event{}, fmt.Errorf("scan event: %w", err)
	}
	qubits, err := unmarshalInts(qubitsRaw)
	if err != nil {
		return ir.Event{}, err
	}
	bits, err := unmarshalInts(bitsRaw)
	if err != nil {
		return ir.Event{}, err
	}

	switch ir.EventType(eventType) {
	case ir.EventStart:
		e.Op = ir.Start{}
	case ir.EventEnd:
		e.Op = ir.End{}
	case ir.EventGate:
		e.Op = ir.Gate{Name: gate.String, Qubits: qubits}
	case ir.EventMeasurement:
		e.Op = ir.Measurement{Qubits: qubits, Bits: bits}
	default:
		return ir.Event{}, fmt.Errorf("event %d: unknown event type %q", e.ID, eventType)
	}
	return e, nil
}

func unmarshalInts(raw sql.NullString) ([]int, error) {
	if !raw.Valid {
		return nil, nil
	}
	var out []int
	if err := json.Unmarshal([]byte(raw.String), &out); err != nil {
		return nil, fmt.Errorf("unmarshal int list: %w", err)
	}
	return out, nil
}
