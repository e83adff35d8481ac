// Command chat is a terminal client for the host orchestrator: it resolves
// the host's card, then sends each typed line as a message and prints the
// relayed reply.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"

	"agentrelay/a2a"
	"agentrelay/core"
	"agentrelay/logging"
	"agentrelay/orchestrator"
)

var cli struct {
	Endpoint string `help:"Host orchestrator endpoint." default:"http://localhost:8000"`
	User     string `help:"User id sent with every message." default:"default_user"`
	Chat     string `help:"Chat id; a fresh one is generated when omitted."`
	LogLevel string `help:"Log level: debug, info, warn or error." default:"warn"`
}

func main() {
	_ = godotenv.Load()
	ktx := kong.Parse(&cli,
		kong.Name("chat"),
		kong.Description("Terminal client for the host orchestrator."),
	)
	ktx.FatalIfErrorf(run())
}

func run() error {
	logger := logging.NewSlogLogger(logging.ParseLevel(cli.LogLevel), "text", os.Stderr)
	chatID := cli.Chat
	if chatID == "" {
		chatID = core.NewID()
	}

	client := a2a.NewClient(cli.Endpoint, func(o *a2a.ClientOptions) {
		o.Logger = logger
	})
	ctx := context.Background()
	card, err := client.ResolveCard(ctx)
	if err != nil {
		return fmt.Errorf("resolving host card: %w", err)
	}
	fmt.Printf("Connected to %s (%s)\n", card.Name, cli.Endpoint)
	fmt.Printf("user=%s chat=%s (type 'exit' to quit)\n\n", cli.User, chatID)

	metadata := map[string]string{
		orchestrator.MetadataUserID: cli.User,
		orchestrator.MetadataChatID: chatID,
	}
	sessionID := cli.User + ":" + chatID

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			break
		}

		reply, err := client.Send(ctx, line, sessionID, metadata)
		if err != nil {
			fmt.Fprintf(os.Stderr, "send failed: %v\n", err)
			continue
		}
		fmt.Println(core.ReplyText(reply))
		fmt.Println()
	}
	return scanner.Err()
}
