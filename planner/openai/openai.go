// Package openai implements the planner boundary over the OpenAI Chat
// Completions API with function/tool calling. Each plan run is a tool loop:
// the model's tool calls are executed through the invocation's capabilities
// and fed back until the model stops calling tools and produces text.
package openai

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/openai/openai-go"

	"agentrelay/logging"
	"agentrelay/planner"
)

// Options configure the OpenAI planner.
type Options struct {
	Model       string
	Temperature float64
	// MaxIterations bounds the tool loop so a misbehaving model cannot spin
	// delegations forever.
	MaxIterations int
	Logger        logging.Logger
}

// Planner drives the routing policy through OpenAI chat completions.
type Planner struct {
	client *openai.Client
	opts   Options
	logger logging.Logger
}

var _ planner.Planner = (*Planner)(nil)

// NewPlanner creates a planner using the default client (API key from the
// environment).
func NewPlanner(optFns ...func(o *Options)) *Planner {
	client := openai.NewClient()
	return NewPlannerFromClient(&client, optFns...)
}

// NewPlannerFromClient creates a planner from an existing client.
func NewPlannerFromClient(client *openai.Client, optFns ...func(o *Options)) *Planner {
	opts := Options{
		Model:         openai.ChatModelGPT4o,
		Temperature:   0.2,
		MaxIterations: 16,
		Logger:        logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Planner{client: client, opts: opts, logger: opts.Logger}
}

// Plan implements planner.Planner.
func (p *Planner) Plan(ctx context.Context, req planner.Request) (string, error) {
	messages := []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(req.Instruction),
		openai.UserMessage(req.Query),
	}
	tools := buildTools()

	for i := 0; i < p.opts.MaxIterations; i++ {
		resp, err := p.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
			Model:       p.opts.Model,
			Messages:    messages,
			Tools:       tools,
			Temperature: openai.Float(p.opts.Temperature),
		})
		if err != nil {
			return "", fmt.Errorf("openai completion: %w", err)
		}
		if len(resp.Choices) == 0 {
			return "", nil
		}
		msg := resp.Choices[0].Message
		if len(msg.ToolCalls) == 0 {
			return msg.Content, nil
		}

		messages = append(messages, msg.ToParam())
		for _, tc := range msg.ToolCalls {
			args := map[string]any{}
			if tc.Function.Arguments != "" {
				if err := json.Unmarshal([]byte(tc.Function.Arguments), &args); err != nil {
					p.logger.Warn("planner.openai.bad_args", "tool", tc.Function.Name, "error", err)
				}
			}
			out, err := planner.Dispatch(ctx, tc.Function.Name, args, req.Caps)
			if err != nil {
				out = fmt.Sprintf("tool error: %v", err)
			}
			p.logger.Debug("planner.openai.tool", "tool", tc.Function.Name, "fc_id", tc.ID)
			messages = append(messages, openai.ToolMessage(out, tc.ID))
		}
	}
	return "", fmt.Errorf("planner exceeded %d tool iterations", p.opts.MaxIterations)
}

// buildTools converts the shared tool specs into OpenAI tool params.
func buildTools() []openai.ChatCompletionToolParam {
	specs := planner.Tools()
	tools := make([]openai.ChatCompletionToolParam, len(specs))
	for i, spec := range specs {
		tools[i] = openai.ChatCompletionToolParam{
			Type: "function",
			Function: openai.FunctionDefinitionParam{
				Name:        spec.Name,
				Description: openai.String(spec.Description),
				Parameters:  spec.Parameters,
			},
		}
	}
	return tools
}
