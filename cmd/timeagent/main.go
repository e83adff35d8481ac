// Command timeagent runs a minimal child agent that answers with the current
// time. It doubles as a registry target for exercising the host end to end.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"

	"agentrelay/a2a"
	"agentrelay/logging"
)

var cli struct {
	Host      string `help:"Listen host." default:"localhost"`
	Port      int    `help:"Listen port." default:"8001"`
	LogLevel  string `help:"Log level: debug, info, warn or error." default:"info"`
	LogFormat string `help:"Log format: text or json." default:"text"`
}

func main() {
	_ = godotenv.Load()
	ktx := kong.Parse(&cli,
		kong.Name("timeagent"),
		kong.Description("Remote agent answering current time queries."),
	)
	ktx.FatalIfErrorf(run())
}

func run() error {
	logger := logging.NewSlogLogger(logging.ParseLevel(cli.LogLevel), cli.LogFormat, os.Stderr)
	addr := fmt.Sprintf("%s:%d", cli.Host, cli.Port)

	card := a2a.AgentCard{
		Name:               "CurrentTimeAgent",
		Description:        "Tells the current date and time.",
		URL:                "http://" + addr,
		Version:            "1.0.0",
		DefaultInputModes:  []string{"text"},
		DefaultOutputModes: []string{"text"},
		Skills: []a2a.Skill{{
			ID:          "current_time",
			Name:        "Current time",
			Description: "Answers questions about the current date and time.",
			Tags:        []string{"time", "clock"},
			Examples:    []string{"What time is it?", "What's today's date?"},
		}},
	}

	exec := a2a.ExecutorFunc(func(_ context.Context, req a2a.ExecuteRequest) (string, error) {
		query := unwrapPayload(req.Text)
		logger.Debug("timeagent.query", "session_id", req.SessionID, "query", query)
		now := time.Now()
		return fmt.Sprintf("The current time is %s.", now.Format("2006-01-02 15:04:05 MST")), nil
	})

	server := a2a.NewServer(card, exec, func(o *a2a.ServerOptions) {
		o.Logger = logger
	})
	return server.ListenAndServe(addr)
}

// unwrapPayload extracts the sub-query from the host's JSON delegation
// payload, falling back to the raw text for plain clients.
func unwrapPayload(text string) string {
	var payload struct {
		UserMessage string `json:"user_message"`
	}
	if err := json.Unmarshal([]byte(text), &payload); err == nil && payload.UserMessage != "" {
		return payload.UserMessage
	}
	return text
}
