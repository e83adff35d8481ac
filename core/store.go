package core

// ContextItem is one agent result rendered for planner context.
type ContextItem struct {
	Agent  string `json:"agent"`
	Result string `json:"result"`
	Step   int    `json:"step,omitempty"`
}

// ConversationStore persists conversation turns and per-agent result history
// across invocations and process restarts.
//
// Contract:
//   - Append operations always append (never overwrite) and persist before
//     returning.
//   - History renders the most recent lastN turns as role-labelled lines,
//     returning a fixed sentinel line for unknown conversations.
//   - AgentContext with a non-empty agent list returns only those agents'
//     most recent lastN entries each, in the order the caller listed the
//     agents. With a nil/empty list it pools every agent's entries and trims
//     to the last lastN of the pooled sequence; the pooling order is an
//     implementation option.
type ConversationStore interface {
	AppendTurn(key ConversationKey, role Role, content string) error
	AppendAgentResult(key ConversationKey, agent, result string, step int) error
	History(key ConversationKey, lastN int) string
	AgentContext(key ConversationKey, agents []string, lastN int) string
	AgentContextItems(key ConversationKey, agents []string, lastN int) []ContextItem
}
