// Package harness runs conformance scenarios against the full recording
// pipeline.
//
// A scenario records one or more executions through the real recorder
// into a fresh SQLite store, reads them back, and checks assertions about
// the stored graphs, replay steps and divergence reports. Ids and clocks
// are deterministic, so the same scenario always produces the same
// executions and golden snapshots can be compared byte for byte.
//
// # Scenario Format
//
//	name: bell_vs_ghz
//	description: "Bell and GHZ share a prefix"
//	executions:
//	  - label: bell
//	    circuit: bell
//	  - label: custom
//	    file: circuits.cue        # relative to the scenario file
//	    circuit: teleport         # optional when the file has one circuit
//	    noise_type: thermal
//	    noise_level: low
//	assertions:
//	  - type: edge
//	    label: bell
//	    source: 1
//	    target: 2
//	    relation: QUBIT_DEP
//	    qubits: [0]
//	  - type: divergence
//	    a: bell
//	    b: custom
//	    count: 1
//
// # Assertion Types
//
//   - edge: an edge with the given endpoints and relation exists
//   - edge_count: the number of edges of one relation
//   - qubit_chain: the events reached by following a qubit's QUBIT_DEP edges
//   - divergence: divergence count and extra events between two executions
//   - step: the event type and neighbours of one replay step, or that the
//     step is out of range
package harness
