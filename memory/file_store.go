package memory

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"agentrelay/core"
	"agentrelay/logging"
)

// NoHistory is returned by History for conversations the store has never
// seen.
const NoHistory = "no conversation history available"

// PooledOrder selects how the all-agents context variant orders pooled
// entries before trimming to the last N.
type PooledOrder int

const (
	// PooledStorageOrder pools agent-major in first-result order, then entry
	// order. With enough entries from later agents this can drop an earlier
	// agent's results entirely; it matches the store's historical behavior.
	PooledStorageOrder PooledOrder = iota
	// PooledStepOrder sorts pooled entries by their delegation step before
	// trimming, so the tail N really are the most recent delegations.
	PooledStepOrder
)

// Options configure a FileStore.
type Options struct {
	Logger      logging.Logger
	PooledOrder PooledOrder
}

// WithPooledOrder selects the pooled context ordering.
func WithPooledOrder(order PooledOrder) func(o *Options) {
	return func(o *Options) { o.PooledOrder = order }
}

// FileStore is the file-backed core.ConversationStore. All records live in
// memory; every mutation rewrites that record's file before returning.
// A single lock serializes mutations so concurrent turns on the same key
// cannot interleave partial writes.
type FileStore struct {
	dir         string
	logger      logging.Logger
	pooledOrder PooledOrder

	mu      sync.RWMutex
	records map[string]*core.ConversationRecord
	keys    map[string]core.ConversationKey
}

var _ core.ConversationStore = (*FileStore)(nil)

// NewFileStore opens (creating if needed) the store directory and eagerly
// loads every persisted conversation. Unparseable file names and unreadable
// documents are skipped with a warning; a fresh record replaces them on
// first use.
func NewFileStore(dir string, optFns ...func(o *Options)) (*FileStore, error) {
	opts := Options{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating store directory: %w", err)
	}
	s := &FileStore{
		dir:         dir,
		logger:      opts.Logger,
		pooledOrder: opts.PooledOrder,
		records:     map[string]*core.ConversationRecord{},
		keys:        map[string]core.ConversationKey{},
	}
	s.loadAll()
	return s, nil
}

func (s *FileStore) loadAll() {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		s.logger.Warn("memory.load.dir", "dir", s.dir, "error", err)
		return
	}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		key, ok := core.ParseFileName(name)
		if !ok {
			s.logger.Warn("memory.load.bad_filename", "file", name)
			continue
		}
		if strings.Count(strings.TrimSuffix(name, ".json"), "_") > 1 {
			// a user id containing "_" does not round-trip through the file
			// name; the remainder is attributed to the chat id
			s.logger.Warn("memory.load.ambiguous_key", "file", name, "key", key.String())
		}
		data, err := os.ReadFile(filepath.Join(s.dir, name))
		if err != nil {
			s.logger.Warn("memory.load.read", "file", name, "error", err)
			continue
		}
		rec := core.NewConversationRecord()
		if err := json.Unmarshal(data, rec); err != nil {
			s.logger.Warn("memory.load.parse", "file", name, "error", err)
			continue
		}
		s.records[key.String()] = rec
		s.keys[key.String()] = key
		s.logger.Debug("memory.load.record", "key", key.String(), "turns", len(rec.Turns))
	}
}

// record returns the record for key, creating it on first reference. Caller
// must hold the write lock.
func (s *FileStore) recordLocked(key core.ConversationKey) *core.ConversationRecord {
	id := key.String()
	rec, ok := s.records[id]
	if !ok {
		rec = core.NewConversationRecord()
		s.records[id] = rec
		s.keys[id] = key
	}
	return rec
}

// persistLocked rewrites the key's file from its in-memory record. Caller
// must hold the write lock.
func (s *FileStore) persistLocked(key core.ConversationKey) error {
	rec := s.records[key.String()]
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding record %s: %w", key, err)
	}
	path := filepath.Join(s.dir, key.FileName())
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing record %s: %w", key, err)
	}
	s.logger.Debug("memory.persist", "key", key.String(), "path", path)
	return nil
}

// AppendTurn appends a role-stamped turn and persists the record. The
// in-memory state is updated even when the write fails, so the conversation
// proceeds; the caller decides whether a persistence failure matters.
func (s *FileStore) AppendTurn(key core.ConversationKey, role core.Role, content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec := s.recordLocked(key)
	rec.AppendTurn(role, content)
	s.logger.Info("memory.turn", "key", key.String(), "role", string(role))
	return s.persistLocked(key)
}

// AppendAgentResult appends one agent result (step 0 = unset) and persists.
func (s *FileStore) AppendAgentResult(key core.ConversationKey, agent, result string, step int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec := s.recordLocked(key)
	rec.AppendResult(agent, result, step)
	s.logger.Info("memory.agent_result", "key", key.String(), "agent", agent, "step", step)
	return s.persistLocked(key)
}

// History renders the most recent lastN turns as role-labelled lines.
// lastN <= 0 means all turns. Unknown conversations get the NoHistory
// sentinel rather than an error.
func (s *FileStore) History(key core.ConversationKey, lastN int) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[key.String()]
	if !ok || len(rec.Turns) == 0 {
		return NoHistory
	}
	turns := rec.Turns
	if lastN > 0 && len(turns) > lastN {
		turns = turns[len(turns)-lastN:]
	}
	lines := make([]string, 0, len(turns))
	for _, turn := range turns {
		label := "Assistant"
		if turn.Role == core.RoleUser {
			label = "User"
		}
		lines = append(lines, label+": "+turn.Content)
	}
	return strings.Join(lines, "\n")
}

// AgentContextItems returns agent results as structured items. With a
// non-empty agent list it returns each listed agent's most recent lastN
// entries, grouped in the caller's listing order; with an empty list it
// pools every agent's entries and trims to the pooled tail of lastN.
// lastN <= 0 defaults to 1, the minimal-context case.
func (s *FileStore) AgentContextItems(key core.ConversationKey, agents []string, lastN int) []core.ContextItem {
	if lastN <= 0 {
		lastN = 1
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[key.String()]
	if !ok {
		return nil
	}

	if len(agents) > 0 {
		var out []core.ContextItem
		for _, agent := range agents {
			entries := rec.Results[agent]
			if len(entries) > lastN {
				entries = entries[len(entries)-lastN:]
			}
			for _, e := range entries {
				out = append(out, core.ContextItem{Agent: agent, Result: e.Result, Step: e.Step})
			}
		}
		return out
	}

	var pooled []core.ContextItem
	for _, agent := range rec.AgentOrder {
		for _, e := range rec.Results[agent] {
			pooled = append(pooled, core.ContextItem{Agent: agent, Result: e.Result, Step: e.Step})
		}
	}
	if s.pooledOrder == PooledStepOrder {
		sort.SliceStable(pooled, func(i, j int) bool { return pooled[i].Step < pooled[j].Step })
	}
	if len(pooled) > lastN {
		pooled = pooled[len(pooled)-lastN:]
	}
	return pooled
}

// AgentContext renders AgentContextItems as joined "[Agent (step N)] result"
// lines for planner consumption.
func (s *FileStore) AgentContext(key core.ConversationKey, agents []string, lastN int) string {
	items := s.AgentContextItems(key, agents, lastN)
	lines := make([]string, 0, len(items))
	for _, item := range items {
		if item.Step > 0 {
			lines = append(lines, fmt.Sprintf("[%s (step %d)] %s", item.Agent, item.Step, item.Result))
		} else {
			lines = append(lines, fmt.Sprintf("[%s] %s", item.Agent, item.Result))
		}
	}
	return strings.Join(lines, "\n")
}
