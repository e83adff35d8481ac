package orchestrator

import (
	"context"
	"fmt"

	"agentrelay/a2a"
	"agentrelay/core"
)

// Metadata keys the host requires on every incoming request. Identity rides
// in request metadata, not in the message body, so child payloads stay free
// of caller identifiers.
const (
	MetadataUserID = "user_id"
	MetadataChatID = "chat_id"
)

// Executor adapts the orchestrator to the agent server boundary. Requests
// without both identity keys are rejected as a JSON-RPC error before any
// conversation state is touched.
func (o *Orchestrator) Executor() a2a.Executor {
	return a2a.ExecutorFunc(func(ctx context.Context, req a2a.ExecuteRequest) (string, error) {
		userID := req.Metadata[MetadataUserID]
		chatID := req.Metadata[MetadataChatID]
		if userID == "" || chatID == "" {
			return "", fmt.Errorf("%w: request metadata must carry %s and %s",
				core.ErrMissingIdentity, MetadataUserID, MetadataChatID)
		}
		return o.Invoke(ctx, req.Text, userID, chatID)
	})
}
