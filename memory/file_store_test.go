package memory

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agentrelay/core"
)

var testKey = core.ConversationKey{UserID: "alice", ChatID: "c1"}

func newTestStore(t *testing.T) (*FileStore, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	require.NoError(t, err)
	return store, dir
}

func TestHistoryOrderingAndLastN(t *testing.T) {
	store, _ := newTestStore(t)

	require.NoError(t, store.AppendTurn(testKey, core.RoleUser, "one"))
	require.NoError(t, store.AppendTurn(testKey, core.RoleAssistant, "two"))
	require.NoError(t, store.AppendTurn(testKey, core.RoleUser, "three"))

	assert.Equal(t, "User: one\nAssistant: two\nUser: three", store.History(testKey, 0))
	assert.Equal(t, "Assistant: two\nUser: three", store.History(testKey, 2))
	assert.Equal(t, "User: three", store.History(testKey, 1))
}

func TestHistoryUnknownConversation(t *testing.T) {
	store, _ := newTestStore(t)
	assert.Equal(t, NoHistory, store.History(core.ConversationKey{UserID: "ghost", ChatID: "c"}, 5))
}

func TestResultsSurviveReload(t *testing.T) {
	store, dir := newTestStore(t)

	require.NoError(t, store.AppendTurn(testKey, core.RoleUser, "what's the weather"))
	require.NoError(t, store.AppendAgentResult(testKey, "WeatherAgent", "sunny", 1))
	require.NoError(t, store.AppendAgentResult(testKey, "WeatherAgent", "rainy", 2))

	reloaded, err := NewFileStore(dir)
	require.NoError(t, err)

	items := reloaded.AgentContextItems(testKey, []string{"WeatherAgent"}, 10)
	require.Len(t, items, 2)
	assert.Equal(t, core.ContextItem{Agent: "WeatherAgent", Result: "sunny", Step: 1}, items[0])
	assert.Equal(t, core.ContextItem{Agent: "WeatherAgent", Result: "rainy", Step: 2}, items[1])
	assert.Equal(t, "User: what's the weather", reloaded.History(testKey, 0))
}

func TestLegacyScalarResultUpgradedOnLoad(t *testing.T) {
	dir := t.TempDir()
	legacy := `{"conversations": [], "agent_results": {"WeatherAgent": "sunny"}}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, testKey.FileName()), []byte(legacy), 0o644))

	store, err := NewFileStore(dir)
	require.NoError(t, err)

	require.NoError(t, store.AppendAgentResult(testKey, "WeatherAgent", "rainy", 1))
	items := store.AgentContextItems(testKey, []string{"WeatherAgent"}, 10)
	require.Len(t, items, 2)
	assert.Equal(t, "sunny", items[0].Result)
	assert.Equal(t, "rainy", items[1].Result)
}

func TestScopedAgentContext(t *testing.T) {
	store, _ := newTestStore(t)

	require.NoError(t, store.AppendAgentResult(testKey, "X", "first", 1))
	require.NoError(t, store.AppendAgentResult(testKey, "X", "second", 2))
	require.NoError(t, store.AppendAgentResult(testKey, "X", "third", 3))

	items := store.AgentContextItems(testKey, []string{"X"}, 2)
	require.Len(t, items, 2)
	assert.Equal(t, "second", items[0].Result)
	assert.Equal(t, "third", items[1].Result)
}

func TestScopedAgentContextCallerOrder(t *testing.T) {
	store, _ := newTestStore(t)

	require.NoError(t, store.AppendAgentResult(testKey, "B", "b1", 1))
	require.NoError(t, store.AppendAgentResult(testKey, "A", "a1", 2))

	// grouping follows the caller's listing order, not call order
	items := store.AgentContextItems(testKey, []string{"A", "B"}, 1)
	require.Len(t, items, 2)
	assert.Equal(t, "A", items[0].Agent)
	assert.Equal(t, "B", items[1].Agent)
}

func TestPooledAgentContextStorageOrder(t *testing.T) {
	store, _ := newTestStore(t)

	require.NoError(t, store.AppendAgentResult(testKey, "A", "a1", 1))
	require.NoError(t, store.AppendAgentResult(testKey, "B", "b1", 2))
	require.NoError(t, store.AppendAgentResult(testKey, "A", "a2", 3))

	// agent-major pooling: A's entries first, then B's; tail of 2
	items := store.AgentContextItems(testKey, nil, 2)
	require.Len(t, items, 2)
	assert.Equal(t, "a2", items[0].Result)
	assert.Equal(t, "b1", items[1].Result)
}

func TestPooledAgentContextStepOrder(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir, WithPooledOrder(PooledStepOrder))
	require.NoError(t, err)

	require.NoError(t, store.AppendAgentResult(testKey, "A", "a1", 1))
	require.NoError(t, store.AppendAgentResult(testKey, "B", "b1", 2))
	require.NoError(t, store.AppendAgentResult(testKey, "A", "a2", 3))

	// step order makes the tail the most recent delegations
	items := store.AgentContextItems(testKey, nil, 2)
	require.Len(t, items, 2)
	assert.Equal(t, "b1", items[0].Result)
	assert.Equal(t, "a2", items[1].Result)
}

func TestAgentContextRendering(t *testing.T) {
	store, _ := newTestStore(t)

	require.NoError(t, store.AppendAgentResult(testKey, "X", "pong", 1))
	assert.Equal(t, "[X (step 1)] pong", store.AgentContext(testKey, []string{"X"}, 1))

	assert.Empty(t, store.AgentContext(core.ConversationKey{UserID: "ghost", ChatID: "c"}, nil, 1))
}

func TestBadFilenameSkippedOnLoad(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "nounderscore.json"), []byte(`{}`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, testKey.FileName()),
		[]byte(`{"conversations": [{"role": "user", "content": "hi", "timestamp": "2024-01-01T00:00:00Z"}], "agent_results": {}}`), 0o644))

	store, err := NewFileStore(dir)
	require.NoError(t, err)
	assert.Equal(t, "User: hi", store.History(testKey, 0))
}

func TestUnparseableDocumentSkippedOnLoad(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, testKey.FileName()), []byte("{corrupt"), 0o644))

	store, err := NewFileStore(dir)
	require.NoError(t, err)

	// a fresh record replaces the unreadable one on first use
	assert.Equal(t, NoHistory, store.History(testKey, 0))
	require.NoError(t, store.AppendTurn(testKey, core.RoleUser, "hello again"))
	assert.Equal(t, "User: hello again", store.History(testKey, 0))
}

func TestConcurrentAppendsSameKey(t *testing.T) {
	store, dir := newTestStore(t)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, store.AppendTurn(testKey, core.RoleUser, fmt.Sprintf("turn %d", i)))
		}(i)
	}
	wg.Wait()

	// serialized writes must leave a loadable, complete file
	reloaded, err := NewFileStore(dir)
	require.NoError(t, err)
	history := reloaded.History(testKey, 0)
	require.NotEqual(t, NoHistory, history)
	assert.Len(t, splitLines(history), 20)
}

func TestConcurrentAppendsDistinctKeysIsolated(t *testing.T) {
	store, dir := newTestStore(t)
	keyA := core.ConversationKey{UserID: "alice", ChatID: "a"}
	keyB := core.ConversationKey{UserID: "bob", ChatID: "b"}

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			assert.NoError(t, store.AppendTurn(keyA, core.RoleUser, "from alice"))
		}()
		go func() {
			defer wg.Done()
			assert.NoError(t, store.AppendTurn(keyB, core.RoleUser, "from bob"))
		}()
	}
	wg.Wait()

	reloaded, err := NewFileStore(dir)
	require.NoError(t, err)
	assert.NotContains(t, reloaded.History(keyA, 0), "bob")
	assert.NotContains(t, reloaded.History(keyB, 0), "alice")
	assert.Len(t, splitLines(reloaded.History(keyA, 0)), 10)
	assert.Len(t, splitLines(reloaded.History(keyB, 0)), 10)
}

func splitLines(s string) []string {
	return strings.Split(s, "\n")
}
