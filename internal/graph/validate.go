package graph

import "github.com/roach88/qtrace/internal/ir"

// Validate checks the event log invariants:
//   - the log is non-empty
//   - event ids are 0, 1, 2, ... and match their position
//   - timestamps are strictly increasing
//   - exactly one EXECUTION_START, at index 0
//   - exactly one EXECUTION_END, at the last index
//   - GATE and MEASUREMENT events touch at least one qubit, no qubit twice
//   - GATE events are named, MEASUREMENT events write one bit per qubit
//
// Violations are reported as ir.ErrCodeMalformedLog.
func Validate(log ir.EventLog) error {
	if len(log) == 0 {
		return ir.NewMalformedLogError("event log is empty")
	}
	last := len(log) - 1

	for i, e := range log {
		if e.ID != i {
			return ir.NewMalformedLogError("event at position %d has id %d, ids must be contiguous from 0", i, e.ID)
		}
		if i > 0 && e.Timestamp <= log[i-1].Timestamp {
			return ir.NewMalformedLogError("event %d: timestamp %d not after %d", i, e.Timestamp, log[i-1].Timestamp)
		}

		switch op := e.Op.(type) {
		case ir.Start:
			if i != 0 {
				return ir.NewMalformedLogError("event %d: EXECUTION_START must be the first event", i)
			}
		case ir.End:
			if i != last {
				return ir.NewMalformedLogError("event %d: EXECUTION_END must be the last event", i)
			}
		case ir.Gate:
			if op.Name == "" {
				return ir.NewMalformedLogError("event %d: GATE without gate_name", i)
			}
			if err := checkQubits(i, op.Qubits); err != nil {
				return err
			}
		case ir.Measurement:
			if err := checkQubits(i, op.Qubits); err != nil {
				return err
			}
			if len(op.Bits) != len(op.Qubits) {
				return ir.NewMalformedLogError("event %d: %d classical bits for %d qubits", i, len(op.Bits), len(op.Qubits))
			}
		case nil:
			return ir.NewMalformedLogError("event %d: missing event payload", i)
		}
	}

	if log[0].Type() != ir.EventStart {
		return ir.NewMalformedLogError("first event is %s, want %s", log[0].Type(), ir.EventStart)
	}
	if log[last].Type() != ir.EventEnd {
		return ir.NewMalformedLogError("last event is %s, want %s", log[last].Type(), ir.EventEnd)
	}
	return nil
}

func checkQubits(id int, qubits []int) error {
	if len(qubits) == 0 {
		return ir.NewMalformedLogError("event %d: no qubits", id)
	}
	seen := make(map[int]bool, len(qubits))
	for _, q := range qubits {
		if q < 0 {
			return ir.NewMalformedLogError("event %d: negative qubit %d", id, q)
		}
		if seen[q] {
			return ir.NewMalformedLogError("event %d: qubit %d listed twice", id, q)
		}
		seen[q] = true
	}
	return nil
}
