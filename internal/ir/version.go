package ir

// Version constants for persisted data and the binary.
const (
	// SchemaVersion is the event/graph wire schema version.
	SchemaVersion = "1"

	// Version is the qtrace release version.
	Version = "0.1.0"
)
