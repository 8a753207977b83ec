package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content digests. The version suffix allows the
// encoding to change without colliding with old digests.
const (
	DomainEventLog = "qtrace/eventlog/v1"
	DomainGraph    = "qtrace/graph/v1"
)

// hashWithDomain computes SHA256(domain + 0x00 + data).
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// canonicalEvent is the digest form of an event. It mirrors the wire
// schema so a digest changes exactly when the served JSON changes.
func canonicalEvent(e Event) map[string]any {
	obj := map[string]any{
		"event_id":   e.ID,
		"event_type": string(e.Type()),
		"timestamp":  e.Timestamp,
	}
	if name := e.GateName(); name != "" {
		obj["gate_name"] = name
	}
	if q := e.Qubits(); len(q) > 0 {
		obj["qubits"] = q
	}
	if b := e.ClassicalBits(); len(b) > 0 {
		obj["classical_bits"] = b
	}
	return obj
}

func canonicalEdge(e Edge) map[string]any {
	obj := map[string]any{
		"source":   e.Source,
		"target":   e.Target,
		"relation": string(e.Relation),
	}
	if len(e.Qubits) > 0 {
		obj["qubits"] = e.Qubits
	}
	return obj
}

// EventLogDigest returns the content digest of an event log.
func EventLogDigest(log EventLog) (string, error) {
	events := make([]any, len(log))
	for i, e := range log {
		events[i] = canonicalEvent(e)
	}
	data, err := MarshalCanonical(events)
	if err != nil {
		return "", fmt.Errorf("EventLogDigest: %w", err)
	}
	return hashWithDomain(DomainEventLog, data), nil
}

// GraphDigest returns the content digest of a graph. Two graphs share a
// digest exactly when their nodes and edges are identical in order.
func GraphDigest(g Graph) (string, error) {
	nodes := make([]any, len(g.Nodes))
	for i, n := range g.Nodes {
		nodes[i] = canonicalEvent(n.Event)
	}
	edges := make([]any, len(g.Edges))
	for i, e := range g.Edges {
		edges[i] = canonicalEdge(e)
	}
	data, err := MarshalCanonical(map[string]any{"nodes": nodes, "edges": edges})
	if err != nil {
		return "", fmt.Errorf("GraphDigest: %w", err)
	}
	return hashWithDomain(DomainGraph, data), nil
}

// MustGraphDigest is like GraphDigest but panics on error.
// Use only in tests or when the graph is known to be valid.
func MustGraphDigest(g Graph) string {
	d, err := GraphDigest(g)
	if err != nil {
		panic(err)
	}
	return d
}
