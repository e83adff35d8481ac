package a2a

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"agentrelay/core"
	"agentrelay/logging"
)

// ClientOptions configure a protocol client.
type ClientOptions struct {
	// HTTPClient overrides the underlying transport (shared across calls).
	HTTPClient *http.Client
	// ResolveTimeout bounds card discovery. Discovery is a cheap metadata
	// fetch, so this stays short.
	ResolveTimeout time.Duration
	// SendTimeout bounds a message/send round trip. Child agents may run
	// their own multi-step processing, so this is generous.
	SendTimeout time.Duration
	// Logger receives the request/response pair of every exchange.
	Logger logging.Logger
}

// Client talks to a single agent endpoint. It is safe for concurrent use and
// intended to be constructed once and reused for the process lifetime.
type Client struct {
	baseURL string
	http    *http.Client
	opts    ClientOptions
	logger  logging.Logger
}

// NewClient creates a client for the agent rooted at baseURL. The trailing
// slash is normalized away so callers can pass either form.
func NewClient(baseURL string, optFns ...func(o *ClientOptions)) *Client {
	opts := ClientOptions{
		HTTPClient:     &http.Client{},
		ResolveTimeout: 5 * time.Second,
		SendTimeout:    300 * time.Second,
		Logger:         logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    opts.HTTPClient,
		opts:    opts,
		logger:  opts.Logger,
	}
}

// BaseURL returns the normalized endpoint root.
func (c *Client) BaseURL() string { return c.baseURL }

// ResolveCard fetches the agent card from the well-known discovery path.
func (c *Client) ResolveCard(ctx context.Context) (AgentCard, error) {
	ctx, cancel := context.WithTimeout(ctx, c.opts.ResolveTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+WellKnownPath, nil)
	if err != nil {
		return AgentCard{}, fmt.Errorf("%w: %v", core.ErrTransport, err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return AgentCard{}, wrapTransportErr(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return AgentCard{}, fmt.Errorf("%w: card fetch returned %s", core.ErrTransport, resp.Status)
	}
	var card AgentCard
	if err := json.NewDecoder(resp.Body).Decode(&card); err != nil {
		return AgentCard{}, fmt.Errorf("%w: decoding card: %v", core.ErrTransport, err)
	}
	if card.Name == "" {
		return AgentCard{}, fmt.Errorf("%w: card without a name from %s", core.ErrTransport, c.baseURL)
	}
	return card, nil
}

// Send delivers a text payload with a fresh request/task/message id triple
// and the caller's session id, returning the classified reply. A reply that
// parsed but carried no text comes back as UnrecognizedReply, not an error.
func (c *Client) Send(ctx context.Context, text, sessionID string, metadata map[string]string) (core.Reply, error) {
	ctx, cancel := context.WithTimeout(ctx, c.opts.SendTimeout)
	defer cancel()

	envelope := sendRequest{
		JSONRPC: "2.0",
		ID:      core.NewID(),
		Method:  methodSendMessage,
		Params: sendParams{
			ID:        core.NewID(),
			SessionID: sessionID,
			Metadata:  metadata,
			Message: Message{
				Role:      "user",
				Parts:     []Part{NewTextPart(text)},
				MessageID: core.NewID(),
				ContextID: sessionID,
			},
		},
	}
	body, err := json.Marshal(envelope)
	if err != nil {
		return nil, fmt.Errorf("%w: encoding request: %v", core.ErrTransport, err)
	}

	c.logger.Info("a2a.send.request",
		"endpoint", c.baseURL,
		"session_id", sessionID,
		"request_id", envelope.ID,
		"payload", text,
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrTransport, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, wrapTransportErr(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, wrapTransportErr(err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: message/send returned %s", core.ErrTransport, resp.Status)
	}

	var rpc rpcResponse
	if err := json.Unmarshal(raw, &rpc); err != nil {
		return nil, fmt.Errorf("%w: decoding response: %v", core.ErrTransport, err)
	}
	if rpc.Error != nil {
		return nil, fmt.Errorf("%w: rpc error %d: %s", core.ErrTransport, rpc.Error.Code, rpc.Error.Message)
	}

	c.logger.Info("a2a.send.response",
		"endpoint", c.baseURL,
		"session_id", sessionID,
		"request_id", envelope.ID,
		"response", string(rpc.Result),
	)

	return DecodeReply(rpc.Result), nil
}

// wrapTransportErr maps deadline expiry onto ErrTimeout and everything else
// onto ErrTransport.
func wrapTransportErr(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", core.ErrTimeout, err)
	}
	var timeout interface{ Timeout() bool }
	if errors.As(err, &timeout) && timeout.Timeout() {
		return fmt.Errorf("%w: %v", core.ErrTimeout, err)
	}
	return fmt.Errorf("%w: %v", core.ErrTransport, err)
}
