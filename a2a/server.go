package a2a

import (
	"context"
	"encoding/json"
	"net/http"

	"agentrelay/core"
	"agentrelay/logging"
)

// ExecuteRequest is the executor-facing view of an incoming message/send:
// the extracted user text, the session id and the caller's metadata.
type ExecuteRequest struct {
	Text      string
	SessionID string
	Metadata  map[string]string
}

// Executor turns one incoming request into reply text. Returned errors are
// surfaced to the caller as JSON-RPC error objects.
type Executor interface {
	Execute(ctx context.Context, req ExecuteRequest) (string, error)
}

// ExecutorFunc adapts a plain function to the Executor interface.
type ExecutorFunc func(ctx context.Context, req ExecuteRequest) (string, error)

// Execute implements Executor.
func (f ExecutorFunc) Execute(ctx context.Context, req ExecuteRequest) (string, error) {
	return f(ctx, req)
}

// ServerOptions configure an agent server.
type ServerOptions struct {
	Logger logging.Logger
}

// Server exposes an executor as an agent: the card under the well-known
// path and message/send at the root.
type Server struct {
	card   AgentCard
	exec   Executor
	logger logging.Logger
}

// NewServer wires a card and an executor into a servable agent.
func NewServer(card AgentCard, exec Executor, optFns ...func(o *ServerOptions)) *Server {
	opts := ServerOptions{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Server{card: card, exec: exec, logger: opts.Logger}
}

// Handler returns the HTTP handler serving the agent endpoints.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET "+WellKnownPath, s.handleCard)
	mux.HandleFunc("POST /", s.handleSend)
	return mux
}

// ListenAndServe serves the agent on addr until the listener fails.
func (s *Server) ListenAndServe(addr string) error {
	s.logger.Info("a2a.server.start", "agent", s.card.Name, "addr", addr)
	return http.ListenAndServe(addr, s.Handler())
}

func (s *Server) handleCard(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.card); err != nil {
		s.logger.Error("a2a.server.card_encode", "error", err)
	}
}

func (s *Server) handleSend(w http.ResponseWriter, r *http.Request) {
	var req sendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeRPCError(w, "", -32700, "parse error: "+err.Error())
		return
	}
	if req.Method != methodSendMessage {
		writeRPCError(w, req.ID, -32601, "unsupported method: "+req.Method)
		return
	}

	text := ""
	if len(req.Params.Message.Parts) > 0 {
		text, _ = req.Params.Message.Parts[0].TextContent()
	}
	sessionID := req.Params.SessionID
	if sessionID == "" {
		sessionID = req.Params.Message.ContextID
	}

	s.logger.Info("a2a.server.receive",
		"agent", s.card.Name,
		"session_id", sessionID,
		"request_id", req.ID,
	)

	out, err := s.exec.Execute(r.Context(), ExecuteRequest{
		Text:      text,
		SessionID: sessionID,
		Metadata:  req.Params.Metadata,
	})
	if err != nil {
		s.logger.Error("a2a.server.execute", "agent", s.card.Name, "error", err)
		writeRPCError(w, req.ID, -32000, err.Error())
		return
	}

	result := Message{
		Role:      "agent",
		Parts:     []Part{NewTextPart(out)},
		MessageID: core.NewID(),
		ContextID: sessionID,
	}
	raw, err := json.Marshal(result)
	if err != nil {
		writeRPCError(w, req.ID, -32603, "encoding result: "+err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(rpcResponse{JSONRPC: "2.0", ID: req.ID, Result: raw}); err != nil {
		s.logger.Error("a2a.server.respond", "error", err)
	}
}

func writeRPCError(w http.ResponseWriter, id string, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(rpcResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error:   &rpcError{Code: code, Message: msg},
	})
}
