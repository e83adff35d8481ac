// Command host runs the orchestrator: it loads the agent registry, opens the
// conversation store and serves the host agent endpoint that routes user
// queries to remote child agents through a tool-calling planner.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/alecthomas/kong"
	"github.com/anthropics/anthropic-sdk-go"
	"github.com/joho/godotenv"

	"agentrelay/a2a"
	"agentrelay/config"
	"agentrelay/logging"
	"agentrelay/memory"
	"agentrelay/orchestrator"
	"agentrelay/planner"
	plannerant "agentrelay/planner/anthropic"
	planneroai "agentrelay/planner/openai"
	"agentrelay/registry"
	"agentrelay/session"
)

var cli struct {
	Config    string `help:"YAML config file." type:"path"`
	Host      string `help:"Listen host (overrides config)."`
	Port      int    `help:"Listen port (overrides config)."`
	Registry  string `help:"Agent registry JSON file (overrides config)." type:"path"`
	MemoryDir string `help:"Conversation store directory (overrides config)." type:"path"`
	Planner   string `help:"Planner provider: openai or anthropic (overrides config)."`
	Model     string `help:"Planner model (overrides provider default)."`
	LogLevel  string `help:"Log level: debug, info, warn or error (overrides config)."`
	LogFormat string `help:"Log format: text or json (overrides config)."`
}

func main() {
	_ = godotenv.Load()
	ktx := kong.Parse(&cli,
		kong.Name("host"),
		kong.Description("Host orchestrator routing user queries to remote agents."),
	)
	ktx.FatalIfErrorf(run())
}

func run() error {
	cfg, err := config.Load(cli.Config)
	if err != nil {
		return err
	}
	mergeFlags(&cfg)

	logger := logging.NewSlogLogger(logging.ParseLevel(cfg.Log.Level), cfg.Log.Format, os.Stderr)
	ctx := context.Background()

	cards, err := registry.LoadCards(ctx, cfg.Registry, func(o *registry.LoadOptions) {
		o.DiscoveryTimeout = cfg.DiscoveryTimeout()
		o.Logger = logger
	})
	if err != nil {
		return fmt.Errorf("loading registry: %w", err)
	}
	logger.Info("host.registry_loaded", "agents", len(cards))

	reg := registry.New(cards, func(o *registry.Options) {
		o.Logger = logger
		o.Connector = []func(o *registry.ConnectorOptions){func(o *registry.ConnectorOptions) {
			o.DeliverTimeout = cfg.DeliverTimeout()
			o.ResolveTimeout = cfg.DiscoveryTimeout()
		}}
	})

	store, err := memory.NewFileStore(cfg.MemoryDir, func(o *memory.Options) {
		o.Logger = logger
	})
	if err != nil {
		return fmt.Errorf("opening conversation store: %w", err)
	}

	pl, err := buildPlanner(cfg, logger)
	if err != nil {
		return err
	}

	orch := orchestrator.New(reg, store, session.NewStore(), pl, func(o *orchestrator.Options) {
		o.Logger = logger
	})

	card := hostCard(cfg.Addr())
	server := a2a.NewServer(card, orch.Executor(), func(o *a2a.ServerOptions) {
		o.Logger = logger
	})
	return server.ListenAndServe(cfg.Addr())
}

// mergeFlags lays explicitly-set CLI flags over the file configuration.
func mergeFlags(cfg *config.Config) {
	if cli.Host != "" {
		cfg.Host = cli.Host
	}
	if cli.Port != 0 {
		cfg.Port = cli.Port
	}
	if cli.Registry != "" {
		cfg.Registry = cli.Registry
	}
	if cli.MemoryDir != "" {
		cfg.MemoryDir = cli.MemoryDir
	}
	if cli.Planner != "" {
		cfg.Planner.Provider = cli.Planner
	}
	if cli.Model != "" {
		cfg.Planner.Model = cli.Model
	}
	if cli.LogLevel != "" {
		cfg.Log.Level = cli.LogLevel
	}
	if cli.LogFormat != "" {
		cfg.Log.Format = cli.LogFormat
	}
}

func buildPlanner(cfg config.Config, logger logging.Logger) (planner.Planner, error) {
	switch cfg.Planner.Provider {
	case "openai":
		return planneroai.NewPlanner(func(o *planneroai.Options) {
			if cfg.Planner.Model != "" {
				o.Model = cfg.Planner.Model
			}
			o.Logger = logger
		}), nil
	case "anthropic":
		return plannerant.NewPlanner(func(o *plannerant.Options) {
			if cfg.Planner.Model != "" {
				o.Model = anthropic.Model(cfg.Planner.Model)
			}
			o.Logger = logger
		}), nil
	default:
		return nil, fmt.Errorf("unknown planner provider %q (want openai or anthropic)", cfg.Planner.Provider)
	}
}

// hostCard describes the orchestrator itself to connecting clients.
func hostCard(addr string) a2a.AgentCard {
	return a2a.AgentCard{
		Name:               "Host-Orchestrator",
		Description:        "Routes user queries to the appropriate remote agents and relays their replies.",
		URL:                "http://" + addr,
		Version:            "1.0.0",
		DefaultInputModes:  []string{"text"},
		DefaultOutputModes: []string{"text"},
		Skills: []a2a.Skill{{
			ID:          "task_routing",
			Name:        "Task routing",
			Description: "Plans, delegates and relays multi-step tasks across registered remote agents.",
			Tags:        []string{"routing", "orchestration"},
		}},
	}
}
