package a2a

import (
	"encoding/json"

	"agentrelay/core"
)

// WellKnownPath is the discovery endpoint every agent serves its card under.
const WellKnownPath = "/.well-known/agent.json"

// methodSendMessage is the one JSON-RPC method the relay speaks.
const methodSendMessage = "message/send"

// AgentCard describes a remote agent: identity, endpoint and advertised
// capabilities. Cards are immutable once loaded.
type AgentCard struct {
	Name               string       `json:"name"`
	Description        string       `json:"description"`
	URL                string       `json:"url"`
	Version            string       `json:"version"`
	DefaultInputModes  []string     `json:"defaultInputModes,omitempty"`
	DefaultOutputModes []string     `json:"defaultOutputModes,omitempty"`
	Capabilities       Capabilities `json:"capabilities"`
	Skills             []Skill      `json:"skills,omitempty"`
}

// Capabilities lists protocol features an agent supports.
type Capabilities struct {
	Streaming bool `json:"streaming"`
}

// Skill describes one capability an agent advertises on its card.
type Skill struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Examples    []string `json:"examples,omitempty"`
}

// Part is one content segment of a message. Some peers inline the text,
// others nest it under a root object; TextContent handles both.
type Part struct {
	Kind string    `json:"kind,omitempty"`
	Text string    `json:"text,omitempty"`
	Root *PartRoot `json:"root,omitempty"`
}

// PartRoot is the nested text container some peers emit.
type PartRoot struct {
	Kind string `json:"kind,omitempty"`
	Text string `json:"text,omitempty"`
}

// TextContent extracts the part's text, trying the direct field first and
// the nested root second.
func (p Part) TextContent() (string, bool) {
	if p.Text != "" {
		return p.Text, true
	}
	if p.Root != nil && p.Root.Text != "" {
		return p.Root.Text, true
	}
	return "", false
}

// NewTextPart builds a plain text part.
func NewTextPart(text string) Part {
	return Part{Kind: "text", Text: text}
}

// Message is a single protocol message with ordered parts.
type Message struct {
	Role      string `json:"role"`
	Parts     []Part `json:"parts"`
	MessageID string `json:"messageId,omitempty"`
	ContextID string `json:"contextId,omitempty"`
}

// Task is the stateful reply shape: the result text sits at the tail of the
// message history.
type Task struct {
	ID      string      `json:"id,omitempty"`
	History []Message   `json:"history,omitempty"`
	Status  *TaskStatus `json:"status,omitempty"`
}

// TaskStatus carries the task lifecycle state.
type TaskStatus struct {
	State string `json:"state,omitempty"`
}

// sendRequest is the JSON-RPC envelope for message/send.
type sendRequest struct {
	JSONRPC string     `json:"jsonrpc"`
	ID      string     `json:"id"`
	Method  string     `json:"method"`
	Params  sendParams `json:"params"`
}

// sendParams carries the task id, session id, caller metadata and message.
type sendParams struct {
	ID        string            `json:"id,omitempty"`
	SessionID string            `json:"sessionId,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	Message   Message           `json:"message"`
}

// rpcResponse is the JSON-RPC reply envelope; exactly one of Result or Error
// is set.
type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      string          `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// DecodeReply classifies a raw JSON-RPC result into the core.Reply union.
// Task replies (history present) take precedence over direct message
// replies; anything without extractable text is UnrecognizedReply.
func DecodeReply(raw json.RawMessage) core.Reply {
	var task Task
	if err := json.Unmarshal(raw, &task); err == nil && len(task.History) > 0 {
		return decodeHistory(task.History)
	}
	var msg Message
	if err := json.Unmarshal(raw, &msg); err == nil && len(msg.Parts) > 0 {
		if text, ok := msg.Parts[0].TextContent(); ok {
			return core.DirectReply{Text: text}
		}
	}
	return core.UnrecognizedReply{}
}

// decodeHistory extracts the per-message texts of a task history. The reply
// counts as recognized only when the final history message carries text.
func decodeHistory(history []Message) core.Reply {
	last := history[len(history)-1]
	if len(last.Parts) == 0 {
		return core.UnrecognizedReply{}
	}
	if _, ok := last.Parts[0].TextContent(); !ok {
		return core.UnrecognizedReply{}
	}
	var texts []string
	for _, m := range history {
		if len(m.Parts) == 0 {
			continue
		}
		if text, ok := m.Parts[0].TextContent(); ok {
			texts = append(texts, text)
		}
	}
	return core.HistoriedReply{History: texts}
}
