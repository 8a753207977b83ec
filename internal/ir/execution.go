package ir

import "time"

// NoiseConfig describes the noise model an execution ran under. It is a
// descriptor only: it never alters the event structure.
type NoiseConfig struct {
	Type             string  `json:"noise_type"`
	Level            string  `json:"noise_level"`
	SingleGateError  float64 `json:"single_gate_error"`
	TwoGateError     float64 `json:"two_gate_error"`
	MeasurementError float64 `json:"measurement_error"`

	// Thermal relaxation parameters in microseconds. Zero for depolarizing.
	T1       float64 `json:"t1,omitempty"`
	T2       float64 `json:"t2,omitempty"`
	GateTime float64 `json:"gate_time,omitempty"`
}

// PerformanceStats records how long each recording phase took.
type PerformanceStats struct {
	EventExtractionMs float64 `json:"event_extraction_time_ms"`
	GraphBuildMs      float64 `json:"in_memory_graph_time_ms"`
	PersistenceMs     float64 `json:"persistence_time_ms"`
	TotalMs           float64 `json:"total_observability_time_ms"`
}

// ExecutionMeta is everything about an execution except its events and
// graph. It is what StoreExecution persists.
type ExecutionMeta struct {
	ID          string            `json:"execution_id"`
	CircuitName string            `json:"circuit_name"`
	Noise       *NoiseConfig      `json:"noise_config,omitempty"`
	NumEvents   int               `json:"num_events"`
	NumGates    int               `json:"num_gates"`
	LogDigest   string            `json:"log_digest,omitempty"`
	GraphDigest string            `json:"graph_digest,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	Stats       *PerformanceStats `json:"performance_stats,omitempty"`
}

// IsNoisy reports whether a noise descriptor is attached.
func (m ExecutionMeta) IsNoisy() bool {
	return m.Noise != nil
}

// Execution is one complete recorded run. It is never mutated after it
// has been built.
type Execution struct {
	ExecutionMeta
	Events EventLog `json:"events"`
	Graph  Graph    `json:"graph"`
}

// Summary projects the execution into a listing row.
func (m ExecutionMeta) Summary() ExecutionSummary {
	s := ExecutionSummary{
		ID:          m.ID,
		CircuitName: m.CircuitName,
		NumEvents:   m.NumEvents,
		CreatedAt:   m.CreatedAt,
		IsNoisy:     m.IsNoisy(),
	}
	if m.Noise != nil {
		s.NoiseType = m.Noise.Type
		s.NoiseLevel = m.Noise.Level
	}
	return s
}

// ExecutionSummary is one row of an execution listing.
type ExecutionSummary struct {
	ID          string    `json:"execution_id"`
	CircuitName string    `json:"circuit_name"`
	NumEvents   int       `json:"num_events"`
	CreatedAt   time.Time `json:"created_at"`
	IsNoisy     bool      `json:"is_noisy"`
	NoiseType   string    `json:"noise_type,omitempty"`
	NoiseLevel  string    `json:"noise_level,omitempty"`
}

// ExecutionPage is one page of summaries, newest first.
type ExecutionPage struct {
	Page       int                `json:"page"`
	Limit      int                `json:"limit"`
	Total      int                `json:"total"`
	Executions []ExecutionSummary `json:"executions"`
}
