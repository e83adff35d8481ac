package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"agentrelay/core"
	"agentrelay/logging"
	"agentrelay/planner"
	"agentrelay/registry"
	"agentrelay/session"
)

// User-visible failure strings returned from the delegate boundary. A failed
// delegation is reported to the planner as text, never as an error, so the
// planner can finish the turn and explain the failure itself.
const (
	apologyUnknownAgent   = "Sorry, the agent %q is not available."
	apologyDeliveryFailed = "Sorry, the request to agent %q failed. Please try again later."
)

// Options configure the orchestrator.
type Options struct {
	// HistoryTurns caps how many turns the history capability renders for the
	// planner; zero means all.
	HistoryTurns int
	Logger       logging.Logger
}

// Orchestrator routes user queries through the planner to remote agents.
type Orchestrator struct {
	registry    *registry.Registry
	store       core.ConversationStore
	sessions    *session.Store
	planner     planner.Planner
	opts        Options
	logger      logging.Logger
	agentInfo   string
	instruction string
}

// New wires an orchestrator. The agent info block and the planner instruction
// are rendered once here; the registry is immutable after startup, so they
// never go stale.
func New(reg *registry.Registry, store core.ConversationStore, sessions *session.Store, pl planner.Planner, optFns ...func(o *Options)) *Orchestrator {
	opts := Options{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	info := renderAgentInfo(reg)
	return &Orchestrator{
		registry:    reg,
		store:       store,
		sessions:    sessions,
		planner:     pl,
		opts:        opts,
		logger:      opts.Logger,
		agentInfo:   info,
		instruction: planner.Instruction(info),
	}
}

// AgentInfo returns the rendered card block handed to the planner.
func (o *Orchestrator) AgentInfo() string { return o.agentInfo }

// Invoke handles one user query for the identified conversation and returns
// the final relay text. Missing identity is the one hard error and is
// rejected before any state is touched. An empty return with nil error means
// the planner produced no content, which is a defined terminal state.
func (o *Orchestrator) Invoke(ctx context.Context, query, userID, chatID string) (string, error) {
	key := core.ConversationKey{UserID: userID, ChatID: chatID}
	if err := key.Validate(); err != nil {
		return "", fmt.Errorf("invoke: %w", err)
	}
	o.logger.Info("orchestrator.invoke", "key", key.String())

	if err := o.store.AppendTurn(key, core.RoleUser, query); err != nil {
		o.logger.Warn("orchestrator.user_turn_persist", "key", key.String(), "error", err)
	}
	sess := o.sessions.Ensure(key.String(), userID, chatID)
	run := NewSession(key)

	out, err := o.planner.Plan(ctx, planner.Request{
		Query:       query,
		Instruction: o.instruction,
		Caps:        o.capabilities(run, sess),
	})
	if err != nil {
		return "", fmt.Errorf("plan: %w", err)
	}
	if out == "" {
		o.logger.Info("orchestrator.empty_output", "key", key.String(), "steps", run.Step())
		return "", nil
	}
	if err := o.store.AppendTurn(key, core.RoleAssistant, out); err != nil {
		o.logger.Warn("orchestrator.assistant_turn_persist", "key", key.String(), "error", err)
	}
	o.logger.Info("orchestrator.done", "key", key.String(), "steps", run.Step())
	return out, nil
}

// capabilities binds the planner's callables to one invocation's run.
func (o *Orchestrator) capabilities(run *Session, sess *session.Session) planner.Capabilities {
	return planner.Capabilities{
		ListAgents: o.registry.List,
		Delegate: func(ctx context.Context, agent, message string) string {
			return o.delegate(ctx, run, agent, message)
		},
		History: func() string {
			return o.store.History(run.Key(), o.opts.HistoryTurns)
		},
		RecordPlan: func(query, reasoning string) string {
			o.logger.Info("orchestrator.plan", "key", run.Key().String(), "reasoning", reasoning)
			sess.SetState("plan", reasoning)
			return fmt.Sprintf("Plan recorded for: %s", query)
		},
	}
}

// delegate routes one minimal sub-query to the named agent. The step counter
// advances exactly once per call before anything can fail, so the audit trail
// counts attempted delegations, not successful ones. Failures of any kind
// come back as apology text with the store untouched for that step.
func (o *Orchestrator) delegate(ctx context.Context, run *Session, agent, message string) string {
	step := run.NextStep()
	key := run.Key()

	conn, err := o.registry.Get(agent)
	if err != nil {
		o.logger.Warn("orchestrator.unknown_agent", "agent", agent, "step", step, "key", key.String())
		return fmt.Sprintf(apologyUnknownAgent, agent)
	}

	payload, err := json.Marshal(map[string]string{"user_message": message})
	if err != nil {
		o.logger.Error("orchestrator.payload_encode", "agent", agent, "step", step, "error", err)
		return fmt.Sprintf(apologyDeliveryFailed, agent)
	}

	reply, err := conn.Deliver(ctx, string(payload), key.String())
	if err != nil {
		o.logger.Warn("orchestrator.delegation_failed", "agent", agent, "step", step, "key", key.String(), "error", err)
		return fmt.Sprintf(apologyDeliveryFailed, agent)
	}

	text := core.ReplyText(reply)
	if err := o.store.AppendAgentResult(key, agent, text, step); err != nil {
		o.logger.Warn("orchestrator.result_persist", "agent", agent, "step", step, "error", err)
	}
	run.Record(step, agent, message, text)
	o.logger.Info("orchestrator.delegated", "agent", agent, "step", step, "key", key.String())
	return text
}

// renderAgentInfo builds the card block the planner sees: one compact JSON
// object per agent with only the routing-relevant fields.
func renderAgentInfo(reg *registry.Registry) string {
	type skillInfo struct {
		Name        string `json:"name"`
		Description string `json:"description,omitempty"`
	}
	type cardInfo struct {
		Name        string      `json:"name"`
		Description string      `json:"description,omitempty"`
		Skills      []skillInfo `json:"skills,omitempty"`
	}

	var lines []string
	for _, card := range reg.Cards() {
		info := cardInfo{Name: card.Name, Description: card.Description}
		for _, skill := range card.Skills {
			info.Skills = append(info.Skills, skillInfo{Name: skill.Name, Description: skill.Description})
		}
		b, err := json.Marshal(info)
		if err != nil {
			continue
		}
		lines = append(lines, string(b))
	}
	return strings.Join(lines, "\n")
}
