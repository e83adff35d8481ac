// Package core defines the shared domain types of the relay: conversation
// keys and records, per-agent result entries, the closed Reply union used to
// interpret remote agent responses, and the error taxonomy crossed by the
// registry, memory and orchestrator layers.
package core
