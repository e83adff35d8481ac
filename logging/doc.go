// Package logging provides the minimal logging interface injected into every
// relay component at construction.
//
// Components depend only on the Logger interface, so callers can plug any
// structured logger. The package ships a slog-backed adapter and a NoOpLogger
// for tests. There is deliberately no package-level default logger: verbosity
// is owned by whoever wires the components, not by global state.
package logging
