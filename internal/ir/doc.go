// Package ir holds the shared data model for recorded executions: events,
// graph nodes and edges, execution metadata and the error taxonomy.
//
// ir imports nothing internal. Every other package builds on these types.
//
// Conventions:
//   - JSON tags use snake_case and match the wire schemas served to clients
//   - Event payloads are a closed variant (Start, Gate, Measurement, End)
//   - Timestamps on events are logical, equal to the event id
package ir
