package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agentrelay/a2a"
	"agentrelay/core"
)

func TestRegistryListPreservesOrder(t *testing.T) {
	reg := New([]a2a.AgentCard{
		{Name: "Zeta", URL: "http://z"},
		{Name: "Alpha", URL: "http://a"},
	})
	assert.Equal(t, []string{"Zeta", "Alpha"}, reg.List())
}

func TestRegistryGetUnknown(t *testing.T) {
	reg := New(nil)
	_, err := reg.Get("Nope")
	assert.ErrorIs(t, err, core.ErrAgentNotFound)
}

func TestRegistryDuplicateNameLastWins(t *testing.T) {
	reg := New([]a2a.AgentCard{
		{Name: "AgentA", URL: "http://first"},
		{Name: "AgentA", URL: "http://second"},
	})

	assert.Equal(t, []string{"AgentA"}, reg.List())
	conn, err := reg.Get("AgentA")
	require.NoError(t, err)
	assert.Equal(t, "http://second", conn.baseURL)
}
