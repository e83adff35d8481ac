package planner

import (
	"context"
	"fmt"
)

// Capabilities are the callables the orchestrator grants a planner for one
// invocation. Delegate never returns an error: delegation failures come back
// as user-readable text so the planner can keep driving the turn and report
// the failure itself.
type Capabilities struct {
	// ListAgents returns the registered agent names in registry order.
	ListAgents func() []string
	// Delegate routes one minimal sub-query to the named agent and returns
	// the reply text (or a failure notice).
	Delegate func(ctx context.Context, agent, message string) string
	// History returns the rendered conversation history for this chat.
	History func() string
	// RecordPlan logs the planner's announced plan. Purely informational;
	// it performs no delegation.
	RecordPlan func(query, reasoning string) string
}

// Request is one planning run: the user query, the fixed instruction policy
// and the capabilities bound to the current invocation.
type Request struct {
	Query       string
	Instruction string
	Caps        Capabilities
}

// Planner drives one orchestration run and returns the final relay text.
// An empty string with nil error is a defined terminal state, not a failure:
// the planner produced no content.
type Planner interface {
	Plan(ctx context.Context, req Request) (string, error)
}

// Tool names shared by every planner implementation.
const (
	ToolListAgents = "list_agents"
	ToolDelegate   = "delegate_task"
	ToolHistory    = "get_conversation_history"
	ToolCreatePlan = "create_plan"
)

// ToolSpec declares one planner tool in the minimal JSON-Schema shape the
// provider SDKs accept.
type ToolSpec struct {
	Name        string
	Description string
	Parameters  map[string]any
}

// Tools returns the fixed tool surface exposed to every planner model.
func Tools() []ToolSpec {
	return []ToolSpec{
		{
			Name:        ToolListAgents,
			Description: "List the names of all available remote agents.",
			Parameters:  map[string]any{"type": "object", "properties": map[string]any{}},
		},
		{
			Name:        ToolDelegate,
			Description: "Delegate a minimal, agent-specific sub-query to a named remote agent and return its reply.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"agent_name": map[string]any{"type": "string", "description": "Target agent name"},
					"message":    map[string]any{"type": "string", "description": "Minimal sub-query for this agent"},
				},
				"required": []string{"agent_name", "message"},
			},
		},
		{
			Name:        ToolHistory,
			Description: "Fetch the rendered conversation history for this chat.",
			Parameters:  map[string]any{"type": "object", "properties": map[string]any{}},
		},
		{
			Name:        ToolCreatePlan,
			Description: "Announce the execution plan before delegating: which agents, why, in what order.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"query":     map[string]any{"type": "string", "description": "The user query being planned"},
					"reasoning": map[string]any{"type": "string", "description": "Agent choice and step order"},
				},
				"required": []string{"query", "reasoning"},
			},
		},
	}
}

// Dispatch executes one named tool call against the capabilities. Providers
// call this from their tool loops so routing stays identical across SDKs.
func Dispatch(ctx context.Context, name string, args map[string]any, caps Capabilities) (string, error) {
	switch name {
	case ToolListAgents:
		names := caps.ListAgents()
		return fmt.Sprintf("%v", names), nil
	case ToolDelegate:
		agent, _ := args["agent_name"].(string)
		message, _ := args["message"].(string)
		if agent == "" {
			return "", fmt.Errorf("%s: missing agent_name", ToolDelegate)
		}
		return caps.Delegate(ctx, agent, message), nil
	case ToolHistory:
		return caps.History(), nil
	case ToolCreatePlan:
		query, _ := args["query"].(string)
		reasoning, _ := args["reasoning"].(string)
		return caps.RecordPlan(query, reasoning), nil
	default:
		return "", fmt.Errorf("unknown tool %q", name)
	}
}
