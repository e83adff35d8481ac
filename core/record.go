package core

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"
)

// Role identifies the author of a conversation turn.
type Role string

const (
	// RoleUser marks a turn authored by the end user.
	RoleUser Role = "user"
	// RoleAssistant marks a turn authored by the orchestrator on behalf of
	// the planner.
	RoleAssistant Role = "assistant"
)

// Turn is one conversation message. Turns are append-only: ordering is
// insertion order and entries are never mutated or deleted.
type Turn struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// AgentResult is one delegated call's outcome for a single agent. Step is the
// delegation step number within its orchestration run; zero means unset
// (results written by the legacy schema carried no step).
type AgentResult struct {
	Result string `json:"result"`
	Step   int    `json:"step,omitempty"`
}

// UnmarshalJSON accepts both the current object form and the legacy bare
// string form, so records written by the old schema load without a separate
// migration pass per entry.
func (r *AgentResult) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		r.Result = s
		r.Step = 0
		return nil
	}
	type plain AgentResult
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*r = AgentResult(p)
	return nil
}

// ConversationRecord is the full durable state of one conversation: the
// ordered turn list plus per-agent ordered result lists. AgentOrder preserves
// the order in which agents first produced a result, which the pooled context
// query depends on; Go maps do not retain insertion order, so it is persisted
// explicitly.
type ConversationRecord struct {
	Turns      []Turn
	Results    map[string][]AgentResult
	AgentOrder []string
}

// NewConversationRecord returns an empty record ready for appends.
func NewConversationRecord() *ConversationRecord {
	return &ConversationRecord{Results: map[string][]AgentResult{}}
}

// AppendTurn appends a turn stamped with the current UTC time.
func (c *ConversationRecord) AppendTurn(role Role, content string) {
	c.Turns = append(c.Turns, Turn{Role: role, Content: content, Timestamp: time.Now().UTC()})
}

// AppendResult appends one agent result, registering the agent in AgentOrder
// on its first result.
func (c *ConversationRecord) AppendResult(agent, result string, step int) {
	if c.Results == nil {
		c.Results = map[string][]AgentResult{}
	}
	if _, ok := c.Results[agent]; !ok {
		c.AgentOrder = append(c.AgentOrder, agent)
	}
	c.Results[agent] = append(c.Results[agent], AgentResult{Result: result, Step: step})
}

// recordDoc is the wire form of a persisted conversation file. The JSON keys
// match the files written by earlier revisions of the host.
type recordDoc struct {
	Conversations []Turn                     `json:"conversations"`
	AgentResults  map[string]json.RawMessage `json:"agent_results"`
	AgentOrder    []string                   `json:"agent_order,omitempty"`
}

// MarshalJSON renders the record as the persisted document shape.
func (c *ConversationRecord) MarshalJSON() ([]byte, error) {
	results := make(map[string]json.RawMessage, len(c.Results))
	for agent, entries := range c.Results {
		raw, err := json.Marshal(entries)
		if err != nil {
			return nil, err
		}
		results[agent] = raw
	}
	return json.Marshal(recordDoc{
		Conversations: c.Turns,
		AgentResults:  results,
		AgentOrder:    c.AgentOrder,
	})
}

// UnmarshalJSON loads a persisted document, upgrading legacy shapes in one
// place: a scalar string result for an agent becomes a one-element list, and
// a missing agent_order is reconstructed deterministically (sorted names).
func (c *ConversationRecord) UnmarshalJSON(data []byte) error {
	var doc recordDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	c.Turns = doc.Conversations
	c.Results = make(map[string][]AgentResult, len(doc.AgentResults))
	for agent, raw := range doc.AgentResults {
		var entries []AgentResult
		if err := json.Unmarshal(raw, &entries); err != nil {
			var single AgentResult
			if err := json.Unmarshal(raw, &single); err != nil {
				return fmt.Errorf("agent %q results: %w", agent, err)
			}
			entries = []AgentResult{single}
		}
		c.Results[agent] = entries
	}
	c.AgentOrder = doc.AgentOrder
	if len(c.AgentOrder) == 0 && len(c.Results) > 0 {
		for agent := range c.Results {
			c.AgentOrder = append(c.AgentOrder, agent)
		}
		sort.Strings(c.AgentOrder)
	}
	return nil
}
