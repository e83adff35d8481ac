// Package a2a implements the request/response protocol spoken between the
// orchestrator and its child agents: agent card discovery under the
// well-known path, the JSON-RPC message/send envelope, an HTTP client that
// turns raw responses into the core.Reply union, and the server glue that
// exposes an executor as an agent.
package a2a
