package core

import "errors"

var (
	// ErrAgentNotFound indicates a delegation targeted a name absent from
	// the registry.
	ErrAgentNotFound = errors.New("agent not found")

	// ErrMissingIdentity indicates an invocation arrived without both a user
	// id and a chat id. This is the one hard configuration error: it aborts
	// the invocation before any state is touched.
	ErrMissingIdentity = errors.New("both user id and chat id are required")

	// ErrTransport indicates a remote agent call failed below the protocol
	// layer (connection refused, malformed HTTP, RPC error object).
	ErrTransport = errors.New("transport error")

	// ErrTimeout indicates a remote agent call exceeded its deadline.
	ErrTimeout = errors.New("transport timeout")
)
