package ir

import (
	"encoding/json"
	"fmt"
	"slices"
)

// EventType names one of the four event kinds on the wire.
type EventType string

const (
	EventStart       EventType = "EXECUTION_START"
	EventGate        EventType = "GATE"
	EventMeasurement EventType = "MEASUREMENT"
	EventEnd         EventType = "EXECUTION_END"
)

// Valid reports whether t is one of the known event types.
func (t EventType) Valid() bool {
	switch t {
	case EventStart, EventGate, EventMeasurement, EventEnd:
		return true
	}
	return false
}

// Op is the payload of an event. It is a sealed interface: only Start,
// Gate, Measurement and End implement it.
type Op interface {
	Type() EventType
	op()
}

// Start marks the beginning of an execution.
type Start struct{}

// Gate is a gate application touching one or more qubits.
type Gate struct {
	Name   string
	Qubits []int
}

// Measurement reads qubits into classical bits.
type Measurement struct {
	Qubits []int
	Bits   []int
}

// End marks the end of an execution.
type End struct{}

func (Start) Type() EventType       { return EventStart }
func (Gate) Type() EventType        { return EventGate }
func (Measurement) Type() EventType { return EventMeasurement }
func (End) Type() EventType         { return EventEnd }

func (Start) op()       {}
func (Gate) op()        {}
func (Measurement) op() {}
func (End) op()         {}

// Event is one observed occurrence in an execution.
type Event struct {
	ID        int
	Timestamp int
	Op        Op
}

// NewStart returns the EXECUTION_START event with the given id.
func NewStart(id int) Event {
	return Event{ID: id, Timestamp: id, Op: Start{}}
}

// NewGate returns a GATE event.
func NewGate(id int, name string, qubits ...int) Event {
	return Event{ID: id, Timestamp: id, Op: Gate{Name: name, Qubits: qubits}}
}

// NewMeasurement returns a MEASUREMENT event.
func NewMeasurement(id int, qubits, bits []int) Event {
	return Event{ID: id, Timestamp: id, Op: Measurement{Qubits: qubits, Bits: bits}}
}

// NewEnd returns the EXECUTION_END event with the given id.
func NewEnd(id int) Event {
	return Event{ID: id, Timestamp: id, Op: End{}}
}

// Type returns the event kind. An event with no payload reports "".
func (e Event) Type() EventType {
	if e.Op == nil {
		return ""
	}
	return e.Op.Type()
}

// GateName returns the gate name for GATE events and "" otherwise.
func (e Event) GateName() string {
	if g, ok := e.Op.(Gate); ok {
		return g.Name
	}
	return ""
}

// Qubits returns the qubits touched by the event, nil for start and end.
func (e Event) Qubits() []int {
	switch op := e.Op.(type) {
	case Gate:
		return op.Qubits
	case Measurement:
		return op.Qubits
	default:
		return nil
	}
}

// ClassicalBits returns the classical bits written by a MEASUREMENT.
func (e Event) ClassicalBits() []int {
	if m, ok := e.Op.(Measurement); ok {
		return m.Bits
	}
	return nil
}

// SameShape reports whether two events agree on type, gate name and the
// ordered qubit list. Ids, timestamps and classical bits are ignored.
func (e Event) SameShape(other Event) bool {
	return e.Type() == other.Type() &&
		e.GateName() == other.GateName() &&
		slices.Equal(e.Qubits(), other.Qubits())
}

// wireEvent is the stable JSON schema for events.
type wireEvent struct {
	EventID       int       `json:"event_id"`
	EventType     EventType `json:"event_type"`
	Timestamp     int       `json:"timestamp"`
	GateName      string    `json:"gate_name,omitempty"`
	Qubits        []int     `json:"qubits,omitempty"`
	ClassicalBits []int     `json:"classical_bits,omitempty"`
}

// MarshalJSON implements json.Marshaler.
func (e Event) MarshalJSON() ([]byte, error) {
	if e.Op == nil {
		return nil, fmt.Errorf("event %d: missing payload", e.ID)
	}
	return json.Marshal(wireEvent{
		EventID:       e.ID,
		EventType:     e.Type(),
		Timestamp:     e.Timestamp,
		GateName:      e.GateName(),
		Qubits:        e.Qubits(),
		ClassicalBits: e.ClassicalBits(),
	})
}

// UnmarshalJSON implements json.Unmarshaler. Fields that do not belong to
// the declared event type are rejected.
func (e *Event) UnmarshalJSON(data []byte) error {
	var w wireEvent
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	switch w.EventType {
	case EventStart, EventEnd:
		if w.GateName != "" || len(w.Qubits) > 0 || len(w.ClassicalBits) > 0 {
			return fmt.Errorf("event %d: %s carries gate or qubit fields", w.EventID, w.EventType)
		}
		if w.EventType == EventStart {
			e.Op = Start{}
		} else {
			e.Op = End{}
		}
	case EventGate:
		if len(w.ClassicalBits) > 0 {
			return fmt.Errorf("event %d: GATE carries classical_bits", w.EventID)
		}
		e.Op = Gate{Name: w.GateName, Qubits: w.Qubits}
	case EventMeasurement:
		if w.GateName != "" {
			return fmt.Errorf("event %d: MEASUREMENT carries gate_name", w.EventID)
		}
		e.Op = Measurement{Qubits: w.Qubits, Bits: w.ClassicalBits}
	default:
		return fmt.Errorf("event %d: unknown event_type %q", w.EventID, w.EventType)
	}

	e.ID = w.EventID
	e.Timestamp = w.Timestamp
	return nil
}

// EventLog is the ordered event sequence of one execution.
type EventLog []Event

// Len returns the number of events.
func (l EventLog) Len() int { return len(l) }

// MaxIndex returns the last valid step index, -1 for an empty log.
func (l EventLog) MaxIndex() int { return len(l) - 1 }

// CountGates returns how many GATE events the log holds.
func (l EventLog) CountGates() int {
	n := 0
	for _, e := range l {
		if e.Type() == EventGate {
			n++
		}
	}
	return n
}

// Clone returns a deep copy so callers cannot alias stored slices.
func (l EventLog) Clone() EventLog {
	if l == nil {
		return nil
	}
	out := make(EventLog, len(l))
	for i, e := range l {
		out[i] = e.Clone()
	}
	return out
}

// Clone returns a copy of e that shares no slices with it.
func (e Event) Clone() Event {
	switch op := e.Op.(type) {
	case Gate:
		e.Op = Gate{Name: op.Name, Qubits: slices.Clone(op.Qubits)}
	case Measurement:
		e.Op = Measurement{Qubits: slices.Clone(op.Qubits), Bits: slices.Clone(op.Bits)}
	}
	return e
}
