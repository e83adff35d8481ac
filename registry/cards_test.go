package registry

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agentrelay/a2a"
)

func writeRegistryFile(t *testing.T, content any) string {
	t.Helper()
	data, err := json.Marshal(content)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "registry.json")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func cardServer(t *testing.T, name string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != a2a.WellKnownPath {
			http.NotFound(w, r)
			return
		}
		_ = json.NewEncoder(w).Encode(a2a.AgentCard{Name: name, URL: srvURL(r)})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func srvURL(r *http.Request) string { return "http://" + r.Host }

func TestLoadCardsObjectForm(t *testing.T) {
	path := writeRegistryFile(t, []a2a.AgentCard{
		{Name: "AgentA", URL: "http://a.example"},
		{Name: "AgentB", URL: "http://b.example"},
	})

	cards, err := LoadCards(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, cards, 2)
	assert.Equal(t, "AgentA", cards[0].Name)
	assert.Equal(t, "AgentB", cards[1].Name)
}

func TestLoadCardsURLFormPartialFailure(t *testing.T) {
	good := cardServer(t, "AgentA")
	// unroutable port, discovery must drop it without failing the load
	path := writeRegistryFile(t, []string{good.URL, "http://127.0.0.1:1"})

	cards, err := LoadCards(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, cards, 1)
	assert.Equal(t, "AgentA", cards[0].Name)
}

func TestLoadCardsURLFormPreservesFileOrder(t *testing.T) {
	first := cardServer(t, "First")
	second := cardServer(t, "Second")
	path := writeRegistryFile(t, []string{first.URL, second.URL})

	cards, err := LoadCards(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, cards, 2)
	assert.Equal(t, "First", cards[0].Name)
	assert.Equal(t, "Second", cards[1].Name)
}

func TestLoadCardsMissingFileIsNotFatal(t *testing.T) {
	cards, err := LoadCards(context.Background(), filepath.Join(t.TempDir(), "absent.json"))
	require.NoError(t, err)
	assert.Empty(t, cards)
}

func TestLoadCardsEmptyPathIsNotFatal(t *testing.T) {
	cards, err := LoadCards(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, cards)
}

func TestLoadCardsMalformedFileIsAnError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registry.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := LoadCards(context.Background(), path)
	assert.Error(t, err)
}
