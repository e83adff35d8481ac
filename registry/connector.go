package registry

import (
	"context"
	"net/http"
	"sync"
	"time"

	"agentrelay/a2a"
	"agentrelay/core"
	"agentrelay/logging"
)

// ConnectorOptions configure a single remote agent handle.
type ConnectorOptions struct {
	// DeliverTimeout bounds one delivered call end to end. Remote agents may
	// do minutes of internal work, so the default is generous.
	DeliverTimeout time.Duration
	// ResolveTimeout bounds the warm-up card fetch on first use.
	ResolveTimeout time.Duration
	HTTPClient     *http.Client
	Logger         logging.Logger
}

// Connector is the reusable handle for one child agent. The transport client
// is constructed on the first Deliver call and cached for the connector's
// lifetime; re-discovery per call would double every exchange's round trips.
type Connector struct {
	name    string
	baseURL string
	opts    ConnectorOptions
	logger  logging.Logger

	mu     sync.Mutex
	client *a2a.Client
}

// NewConnector creates an uninitialized handle for the named agent.
func NewConnector(name, baseURL string, optFns ...func(o *ConnectorOptions)) *Connector {
	opts := ConnectorOptions{
		DeliverTimeout: 300 * time.Second,
		ResolveTimeout: 5 * time.Second,
		HTTPClient:     &http.Client{},
		Logger:         logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Connector{name: name, baseURL: baseURL, opts: opts, logger: opts.Logger}
}

// Name returns the agent name this connector serves.
func (c *Connector) Name() string { return c.name }

// getClient returns the cached transport client, constructing it on first
// use. The card fetch warms up the connection and verifies the endpoint
// still speaks the protocol. Construction is guarded so racing first calls
// build the client exactly once; a failed construction leaves the handle
// uninitialized so the next call retries.
func (c *Connector) getClient(ctx context.Context) (*a2a.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.client != nil {
		return c.client, nil
	}
	client := a2a.NewClient(c.baseURL, func(o *a2a.ClientOptions) {
		o.HTTPClient = c.opts.HTTPClient
		o.ResolveTimeout = c.opts.ResolveTimeout
		o.SendTimeout = c.opts.DeliverTimeout
		o.Logger = c.logger
	})
	card, err := client.ResolveCard(ctx)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("connector.client_ready", "agent", c.name, "card", card.Name)
	c.client = client
	return client, nil
}

// Deliver sends one payload to the agent under the conversation's session id
// and returns the classified reply. Transport failures and timeouts come
// back as errors wrapping core.ErrTransport / core.ErrTimeout; a malformed
// but transported reply comes back as core.UnrecognizedReply with nil error.
func (c *Connector) Deliver(ctx context.Context, payload, sessionID string) (core.Reply, error) {
	client, err := c.getClient(ctx)
	if err != nil {
		return nil, err
	}
	c.logger.Info("connector.deliver", "agent", c.name, "session_id", sessionID)
	return client.Send(ctx, payload, sessionID, nil)
}
