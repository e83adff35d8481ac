// Package session provides the volatile per-chat session store the planner
// works against. Sessions carry the caller identity and planner scratch
// state; durable conversation history lives in the memory package instead.
package session
