// Package graph derives the execution graph from an event log.
//
// Build is a pure function: it projects every event to a node, links
// consecutive events with NEXT edges and links successive touches of each
// qubit with QUBIT_DEP edges. The last-toucher map lives on Build's stack
// and is never shared between calls.
package graph
