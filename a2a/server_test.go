package a2a

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agentrelay/core"
)

func newEchoServer(t *testing.T) *httptest.Server {
	t.Helper()
	exec := ExecutorFunc(func(_ context.Context, req ExecuteRequest) (string, error) {
		if req.Metadata["fail"] == "yes" {
			return "", errors.New("executor failed")
		}
		return "echo: " + req.Text, nil
	})
	server := NewServer(testCard("EchoAgent"), exec)
	srv := httptest.NewServer(server.Handler())
	t.Cleanup(srv.Close)
	return srv
}

func TestServerServesCard(t *testing.T) {
	srv := newEchoServer(t)

	card, err := NewClient(srv.URL).ResolveCard(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "EchoAgent", card.Name)
}

func TestServerSendRoundTrip(t *testing.T) {
	srv := newEchoServer(t)

	reply, err := NewClient(srv.URL).Send(context.Background(), "hello", "s1", nil)
	require.NoError(t, err)
	assert.Equal(t, "echo: hello", core.ReplyText(reply))
}

func TestServerExecutorErrorBecomesRPCError(t *testing.T) {
	srv := newEchoServer(t)

	_, err := NewClient(srv.URL).Send(context.Background(), "hello", "s1", map[string]string{"fail": "yes"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "executor failed")
}

func TestServerRejectsUnknownMethod(t *testing.T) {
	srv := newEchoServer(t)

	body := `{"jsonrpc": "2.0", "id": "1", "method": "tasks/cancel", "params": {"message": {"parts": []}}}`
	resp, err := srv.Client().Post(srv.URL+"/", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	var rpc rpcResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&rpc))
	require.NotNil(t, rpc.Error)
	assert.Equal(t, -32601, rpc.Error.Code)
}

func TestServerRejectsMalformedBody(t *testing.T) {
	srv := newEchoServer(t)

	resp, err := srv.Client().Post(srv.URL+"/", "application/json", strings.NewReader("{not json"))
	require.NoError(t, err)
	defer resp.Body.Close()

	var rpc rpcResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&rpc))
	require.NotNil(t, rpc.Error)
	assert.Equal(t, -32700, rpc.Error.Code)
}
