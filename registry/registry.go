package registry

import (
	"fmt"

	"agentrelay/a2a"
	"agentrelay/core"
	"agentrelay/logging"
)

// Options configure registry construction; connector options are forwarded
// to every handle.
type Options struct {
	Connector []func(o *ConnectorOptions)
	Logger    logging.Logger
}

// Registry maps agent names to their connectors. It is built once at startup
// from resolved cards and is read-only afterwards, so lookups need no lock.
type Registry struct {
	names      []string
	connectors map[string]*Connector
	cards      []a2a.AgentCard
	logger     logging.Logger
}

// New builds a registry from resolved cards. Duplicate names are a
// configuration error; the last card wins and a warning is logged.
func New(cards []a2a.AgentCard, optFns ...func(o *Options)) *Registry {
	opts := Options{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}

	r := &Registry{
		connectors: make(map[string]*Connector, len(cards)),
		cards:      cards,
		logger:     opts.Logger,
	}
	connectorOpts := append([]func(o *ConnectorOptions){func(o *ConnectorOptions) {
		o.Logger = opts.Logger
	}}, opts.Connector...)

	for _, card := range cards {
		if _, exists := r.connectors[card.Name]; exists {
			r.logger.Warn("registry.duplicate_name", "agent", card.Name, "endpoint", card.URL)
		} else {
			r.names = append(r.names, card.Name)
		}
		r.connectors[card.Name] = NewConnector(card.Name, card.URL, connectorOpts...)
	}
	return r
}

// List returns the agent names in registry order.
func (r *Registry) List() []string {
	names := make([]string, len(r.names))
	copy(names, r.names)
	return names
}

// Cards returns the resolved cards backing this registry.
func (r *Registry) Cards() []a2a.AgentCard { return r.cards }

// Get returns the connector for name, or an error wrapping
// core.ErrAgentNotFound.
func (r *Registry) Get(name string) (*Connector, error) {
	conn, ok := r.connectors[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", core.ErrAgentNotFound, name)
	}
	return conn, nil
}
