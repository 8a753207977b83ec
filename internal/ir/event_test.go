package ir

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventMarshalJSON(t *testing.T) {
	tests := []struct {
		name     string
		event    Event
		expected string
	}{
		{"start", NewStart(0), `{"event_id":0,"event_type":"EXECUTION_START","timestamp":0}`},
		{"gate", NewGate(2, "CX", 0, 1), `{"event_id":2,"event_type":"GATE","timestamp":2,"gate_name":"CX","qubits":[0,1]}`},
		{"measurement", NewMeasurement(3, []int{0}, []int{0}), `{"event_id":3,"event_type":"MEASUREMENT","timestamp":3,"qubits":[0],"classical_bits":[0]}`},
		{"end", NewEnd(5), `{"event_id":5,"event_type":"EXECUTION_END","timestamp":5}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.event)
			require.NoError(t, err)
			assert.JSONEq(t, tt.expected, string(data))
		})
	}
}

func TestEventUnmarshalJSON(t *testing.T) {
	var e Event
	err := json.Unmarshal([]byte(`{"event_id":1,"event_type":"GATE","timestamp":1,"gate_name":"H","qubits":[0]}`), &e)
	require.NoError(t, err)

	assert.Equal(t, EventGate, e.Type())
	assert.Equal(t, "H", e.GateName())
	assert.Equal(t, []int{0}, e.Qubits())
	assert.Nil(t, e.ClassicalBits())
}

func TestEventUnmarshalRejectsInvalidCombinations(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"unknown type", `{"event_id":0,"event_type":"RESET","timestamp":0}`},
		{"start with qubits", `{"event_id":0,"event_type":"EXECUTION_START","timestamp":0,"qubits":[0]}`},
		{"gate with bits", `{"event_id":1,"event_type":"GATE","timestamp":1,"gate_name":"H","qubits":[0],"classical_bits":[0]}`},
		{"measurement with gate name", `{"event_id":1,"event_type":"MEASUREMENT","timestamp":1,"gate_name":"H","qubits":[0]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var e Event
			assert.Error(t, json.Unmarshal([]byte(tt.input), &e))
		})
	}
}

func TestNodeSerializesLikeEvent(t *testing.T) {
	e := NewGate(1, "H", 0)

	eventJSON, err := json.Marshal(e)
	require.NoError(t, err)
	nodeJSON, err := json.Marshal(Node{Event: e})
	require.NoError(t, err)

	assert.Equal(t, string(eventJSON), string(nodeJSON))

	var n Node
	require.NoError(t, json.Unmarshal(nodeJSON, &n))
	assert.Equal(t, e, n.Event)
}

func TestEventSameShape(t *testing.T) {
	a := NewGate(1, "CX", 0, 1)

	assert.True(t, a.SameShape(NewGate(7, "CX", 0, 1)), "ids are ignored")
	assert.False(t, a.SameShape(NewGate(1, "CX", 1, 0)), "qubit order matters")
	assert.False(t, a.SameShape(NewGate(1, "CZ", 0, 1)))
	assert.False(t, NewMeasurement(1, []int{0}, []int{0}).SameShape(NewGate(1, "", 0)))
	assert.True(t, NewMeasurement(1, []int{0}, []int{0}).SameShape(NewMeasurement(1, []int{0}, []int{1})),
		"classical bits are not part of the shape")
}

func TestEventLogClone(t *testing.T) {
	log := EventLog{NewStart(0), NewGate(1, "H", 0), NewEnd(2)}
	clone := log.Clone()

	clone[1].Op.(Gate).Qubits[0] = 9
	assert.Equal(t, []int{0}, log[1].Qubits())
	assert.Equal(t, 1, log.CountGates())
	assert.Equal(t, 2, log.MaxIndex())
}
