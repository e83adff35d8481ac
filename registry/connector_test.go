package registry

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agentrelay/a2a"
	"agentrelay/core"
)

// agentEndpoint serves a card plus a fixed message/send reply and counts card
// fetches, so tests can observe lazy client construction.
func agentEndpoint(t *testing.T, replyText string, cardFetches *atomic.Int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == a2a.WellKnownPath {
			cardFetches.Add(1)
			_ = json.NewEncoder(w).Encode(a2a.AgentCard{Name: "TestAgent", URL: "http://" + r.Host})
			return
		}
		result, _ := json.Marshal(a2a.Message{Role: "agent", Parts: []a2a.Part{a2a.NewTextPart(replyText)}})
		_ = json.NewEncoder(w).Encode(map[string]any{"jsonrpc": "2.0", "id": "1", "result": json.RawMessage(result)})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestConnectorDeliver(t *testing.T) {
	var fetches atomic.Int32
	srv := agentEndpoint(t, "pong", &fetches)

	conn := NewConnector("TestAgent", srv.URL)
	reply, err := conn.Deliver(context.Background(), "ping", "s1")
	require.NoError(t, err)
	assert.Equal(t, "pong", core.ReplyText(reply))
}

func TestConnectorBuildsClientOnce(t *testing.T) {
	var fetches atomic.Int32
	srv := agentEndpoint(t, "pong", &fetches)
	conn := NewConnector("TestAgent", srv.URL)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := conn.Deliver(context.Background(), "ping", "s1")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	// racing first calls must construct (and warm up) exactly one client
	assert.Equal(t, int32(1), fetches.Load())
}

func TestConnectorRetriesFailedConstruction(t *testing.T) {
	var fetches atomic.Int32
	var healthy atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == a2a.WellKnownPath {
			fetches.Add(1)
			if !healthy.Load() {
				http.Error(w, "not yet", http.StatusServiceUnavailable)
				return
			}
			_ = json.NewEncoder(w).Encode(a2a.AgentCard{Name: "TestAgent", URL: "http://" + r.Host})
			return
		}
		result, _ := json.Marshal(a2a.Message{Role: "agent", Parts: []a2a.Part{a2a.NewTextPart("pong")}})
		_ = json.NewEncoder(w).Encode(map[string]any{"jsonrpc": "2.0", "id": "1", "result": json.RawMessage(result)})
	}))
	defer srv.Close()

	conn := NewConnector("TestAgent", srv.URL)

	_, err := conn.Deliver(context.Background(), "ping", "s1")
	require.ErrorIs(t, err, core.ErrTransport)

	healthy.Store(true)
	reply, err := conn.Deliver(context.Background(), "ping", "s1")
	require.NoError(t, err)
	assert.Equal(t, "pong", core.ReplyText(reply))
	assert.Equal(t, int32(2), fetches.Load())
}

func TestConnectorDeliverTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == a2a.WellKnownPath {
			_ = json.NewEncoder(w).Encode(a2a.AgentCard{Name: "SlowAgent", URL: "http://" + r.Host})
			return
		}
		<-release
	}))
	defer srv.Close()
	defer close(release)

	conn := NewConnector("SlowAgent", srv.URL, func(o *ConnectorOptions) {
		o.DeliverTimeout = 30 * time.Millisecond
	})
	_, err := conn.Deliver(context.Background(), "ping", "s1")
	assert.ErrorIs(t, err, core.ErrTimeout)
}
