package registry

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"sync"
	"time"

	"agentrelay/a2a"
	"agentrelay/logging"
)

// LoadOptions configure registry file loading.
type LoadOptions struct {
	// DiscoveryTimeout bounds each per-endpoint card fetch independently.
	DiscoveryTimeout time.Duration
	// HTTPClient is shared across the discovery fan-out.
	HTTPClient *http.Client
	Logger     logging.Logger
}

// LoadCards reads the registry file at path and returns the resolved agent
// cards. The file is a JSON array of either bare endpoint URLs (resolved
// concurrently over the network) or full card objects (no network access).
// A missing path, missing file or failing endpoint degrades to a smaller
// result with a warning; only a malformed file is an error.
func LoadCards(ctx context.Context, path string, optFns ...func(o *LoadOptions)) ([]a2a.AgentCard, error) {
	opts := LoadOptions{
		DiscoveryTimeout: 5 * time.Second,
		HTTPClient:       &http.Client{},
		Logger:           logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	if path == "" {
		opts.Logger.Warn("registry.load.no_path", "detail", "no registry file provided, no child agents discovered")
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		opts.Logger.Warn("registry.load.unreadable", "path", path, "error", err)
		return nil, nil
	}

	var entries []json.RawMessage
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, nil
	}

	var url string
	if err := json.Unmarshal(entries[0], &url); err == nil {
		urls := make([]string, 0, len(entries))
		for _, raw := range entries {
			var u string
			if err := json.Unmarshal(raw, &u); err != nil {
				opts.Logger.Warn("registry.load.mixed_entry", "path", path, "entry", string(raw))
				continue
			}
			urls = append(urls, u)
		}
		return discoverCards(ctx, urls, opts), nil
	}

	cards := make([]a2a.AgentCard, 0, len(entries))
	for _, raw := range entries {
		var card a2a.AgentCard
		if err := json.Unmarshal(raw, &card); err != nil {
			opts.Logger.Warn("registry.load.bad_card", "path", path, "error", err)
			continue
		}
		cards = append(cards, card)
	}
	return cards, nil
}

// discoverCards fetches one card per endpoint concurrently. Each fetch has
// its own timeout and failure isolation: one unreachable endpoint never
// blocks or fails the others. Result order follows the registry file.
func discoverCards(ctx context.Context, urls []string, opts LoadOptions) []a2a.AgentCard {
	results := make([]*a2a.AgentCard, len(urls))
	var wg sync.WaitGroup
	for i, url := range urls {
		wg.Add(1)
		go func(i int, url string) {
			defer wg.Done()
			client := a2a.NewClient(url, func(o *a2a.ClientOptions) {
				o.HTTPClient = opts.HTTPClient
				o.ResolveTimeout = opts.DiscoveryTimeout
			})
			card, err := client.ResolveCard(ctx)
			if err != nil {
				opts.Logger.Warn("registry.discover.failed", "endpoint", url, "error", err)
				return
			}
			results[i] = &card
		}(i, url)
	}
	wg.Wait()

	cards := make([]a2a.AgentCard, 0, len(urls))
	for _, card := range results {
		if card != nil {
			cards = append(cards, *card)
		}
	}
	return cards
}
