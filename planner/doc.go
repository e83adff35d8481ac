// Package planner defines the boundary to the decision policy that chooses
// which child agent to delegate to and composes the final relay text. The
// orchestration core treats the planner as opaque: it hands over exactly
// three callable capabilities (list agent names, delegate a message to a
// named agent, fetch rendered history) plus an informational plan hook, and
// consumes the final text. Sub-packages implement the boundary over the
// OpenAI and Anthropic tool-calling APIs.
package planner
