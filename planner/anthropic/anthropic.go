// Package anthropic implements the planner boundary over the Anthropic
// Messages API with tool use.
package anthropic

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/anthropics/anthropic-sdk-go/shared/constant"

	"agentrelay/logging"
	"agentrelay/planner"
)

// Options configure the Anthropic planner.
type Options struct {
	Model     anthropic.Model
	MaxTokens int64
	// MaxIterations bounds the tool loop.
	MaxIterations int
	APIKey        string
	Logger        logging.Logger
}

// Planner drives the routing policy through Anthropic messages.
type Planner struct {
	client *anthropic.Client
	opts   Options
	logger logging.Logger
}

var _ planner.Planner = (*Planner)(nil)

// NewPlanner creates a planner using the official client; the API key falls
// back to the environment when unset.
func NewPlanner(optFns ...func(o *Options)) *Planner {
	opts := defaultOptions(optFns)
	var clientOpts []option.RequestOption
	if opts.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(opts.APIKey))
	}
	client := anthropic.NewClient(clientOpts...)
	return &Planner{client: &client, opts: opts, logger: opts.Logger}
}

// NewPlannerFromClient creates a planner from an existing client.
func NewPlannerFromClient(client *anthropic.Client, optFns ...func(o *Options)) *Planner {
	opts := defaultOptions(optFns)
	return &Planner{client: client, opts: opts, logger: opts.Logger}
}

func defaultOptions(optFns []func(o *Options)) Options {
	opts := Options{
		Model:         anthropic.ModelClaude3_5Sonnet20241022,
		MaxTokens:     4096,
		MaxIterations: 16,
		Logger:        logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return opts
}

// Plan implements planner.Planner. The final relay text is the newline join
// of every text block in the model's closing message, in emission order.
func (p *Planner) Plan(ctx context.Context, req planner.Request) (string, error) {
	messages := []anthropic.MessageParam{
		anthropic.NewUserMessage(anthropic.NewTextBlock(req.Query)),
	}
	tools := buildTools()

	for i := 0; i < p.opts.MaxIterations; i++ {
		resp, err := p.client.Messages.New(ctx, anthropic.MessageNewParams{
			Model:     p.opts.Model,
			MaxTokens: p.opts.MaxTokens,
			System:    []anthropic.TextBlockParam{{Text: req.Instruction}},
			Messages:  messages,
			Tools:     tools,
		})
		if err != nil {
			return "", fmt.Errorf("anthropic message: %w", err)
		}

		var texts []string
		var results []anthropic.ContentBlockParamUnion
		for _, block := range resp.Content {
			switch block.Type {
			case "text":
				if t := block.AsText().Text; t != "" {
					texts = append(texts, t)
				}
			case "tool_use":
				tu := block.AsToolUse()
				args := map[string]any{}
				if raw, err := json.Marshal(tu.Input); err == nil {
					if err := json.Unmarshal(raw, &args); err != nil {
						p.logger.Warn("planner.anthropic.bad_args", "tool", tu.Name, "error", err)
					}
				}
				out, err := planner.Dispatch(ctx, tu.Name, args, req.Caps)
				isErr := err != nil
				if isErr {
					out = fmt.Sprintf("tool error: %v", err)
				}
				p.logger.Debug("planner.anthropic.tool", "tool", tu.Name, "fc_id", tu.ID)
				results = append(results, anthropic.NewToolResultBlock(tu.ID, out, isErr))
			}
		}

		if len(results) == 0 {
			return strings.Join(texts, "\n"), nil
		}
		messages = append(messages, resp.ToParam())
		messages = append(messages, anthropic.NewUserMessage(results...))
	}
	return "", fmt.Errorf("planner exceeded %d tool iterations", p.opts.MaxIterations)
}

// buildTools converts the shared tool specs into Anthropic tool params.
func buildTools() []anthropic.ToolUnionParam {
	specs := planner.Tools()
	tools := make([]anthropic.ToolUnionParam, len(specs))
	for i, spec := range specs {
		schema := anthropic.ToolInputSchemaParam{Type: constant.Object("object")}
		if props, ok := spec.Parameters["properties"]; ok {
			schema.Properties = props
		}
		if req, ok := spec.Parameters["required"].([]string); ok {
			schema.Required = req
		}
		tool := anthropic.ToolUnionParamOfTool(schema, spec.Name)
		if tool.OfTool != nil {
			tool.OfTool.Description = anthropic.String(spec.Description)
		}
		tools[i] = tool
	}
	return tools
}
