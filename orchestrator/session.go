package orchestrator

import (
	"sync"

	"agentrelay/core"
)

// Entry is one delegated step in an orchestration run.
type Entry struct {
	Step     int
	Agent    string
	SubQuery string
	Result   string
}

// Session tracks the delegation trail of a single orchestration run: the step
// counter and the ordered per-step record of agent, sub-query and result. One
// Session lives for exactly one Invoke and is never persisted; the durable
// agent results go to the conversation store instead.
type Session struct {
	key core.ConversationKey

	mu      sync.Mutex
	step    int
	entries []Entry
}

// NewSession starts a run for the given conversation.
func NewSession(key core.ConversationKey) *Session {
	return &Session{key: key}
}

// Key returns the conversation this run belongs to.
func (s *Session) Key() core.ConversationKey { return s.key }

// NextStep advances the step counter and returns the new step number,
// starting at 1. Every delegated call consumes exactly one step, whether or
// not it succeeds.
func (s *Session) NextStep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.step++
	return s.step
}

// Step returns the current step counter without advancing it.
func (s *Session) Step() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.step
}

// Record appends one completed delegation to the trail.
func (s *Session) Record(step int, agent, subQuery, result string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, Entry{Step: step, Agent: agent, SubQuery: subQuery, Result: result})
}

// Entries returns a copy of the delegation trail in step order.
func (s *Session) Entries() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries := make([]Entry, len(s.entries))
	copy(entries, s.entries)
	return entries
}
