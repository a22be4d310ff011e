package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/aretw0/concierge/pkg/domain"
	"github.com/aretw0/concierge/pkg/ports"
	go_openai "github.com/sashabaranov/go-openai"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gpt-4o-mini"

// ErrEmptyResponse is returned when the endpoint answers without choices.
var ErrEmptyResponse = errors.New("model returned no choices")

// Planner asks a chat completion model what the active agent should do next.
type Planner struct {
	client      *go_openai.Client
	model       string
	temperature float32
	logger      *slog.Logger
}

var _ ports.Planner = (*Planner)(nil)

type config struct {
	baseURL     string
	httpClient  *http.Client
	model       string
	temperature float32
	logger      *slog.Logger
}

// Option configures the Planner.
type Option func(*config)

// WithModel selects the chat model.
func WithModel(model string) Option {
	return func(c *config) {
		if model != "" {
			c.model = model
		}
	}
}

// WithBaseURL points the client at a compatible endpoint (Azure proxies, local servers, tests).
func WithBaseURL(url string) Option {
	return func(c *config) {
		c.baseURL = url
	}
}

// WithHTTPClient replaces the transport.
func WithHTTPClient(client *http.Client) Option {
	return func(c *config) {
		c.httpClient = client
	}
}

// WithTemperature sets the sampling temperature.
func WithTemperature(t float32) Option {
	return func(c *config) {
		c.temperature = t
	}
}

// WithLogger sets a structured logger for request diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New creates a Planner authenticated with apiKey.
func New(apiKey string, opts ...Option) *Planner {
	cfg := &config{
		model:  DefaultModel,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	clientConfig := go_openai.DefaultConfig(apiKey)
	if cfg.baseURL != "" {
		clientConfig.BaseURL = cfg.baseURL
	}
	if cfg.httpClient != nil {
		clientConfig.HTTPClient = cfg.httpClient
	}

	return &Planner{
		client:      go_openai.NewClientWithConfig(clientConfig),
		model:       cfg.model,
		temperature: cfg.temperature,
		logger:      cfg.logger,
	}
}

// Plan implements ports.Planner.
func (p *Planner) Plan(ctx context.Context, req ports.PlanRequest) (domain.PlanResult, error) {
	completion := go_openai.ChatCompletionRequest{
		Model:       p.model,
		Messages:    MakeMessages(req.Instructions, req.Messages),
		Temperature: p.temperature,
	}
	tools := append(MakeTools(req.Tools), MakeTools(req.Handoffs)...)
	if len(tools) > 0 {
		completion.Tools = tools
	}

	resp, err := p.client.CreateChatCompletion(ctx, completion)
	if err != nil {
		return nil, fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, ErrEmptyResponse
	}

	msg := resp.Choices[0].Message
	p.logger.Debug("plan received",
		"agent", req.Agent,
		"tool_calls", len(msg.ToolCalls),
		"finish_reason", resp.Choices[0].FinishReason,
		"total_tokens", resp.Usage.TotalTokens)

	return p.interpret(msg)
}

func (p *Planner) interpret(msg go_openai.ChatCompletionMessage) (domain.PlanResult, error) {
	if len(msg.ToolCalls) == 0 {
		return domain.Reply{Text: msg.Content}, nil
	}

	calls := make([]domain.ToolCall, 0, len(msg.ToolCalls))
	for _, tc := range msg.ToolCalls {
		args, err := decodeArguments(tc.Function.Arguments)
		if err != nil {
			return nil, fmt.Errorf("tool call %s: %w", tc.Function.Name, err)
		}
		calls = append(calls, domain.ToolCall{ID: tc.ID, Name: tc.Function.Name, Args: args})
	}

	// A handoff wins over anything else requested in the same step.
	for _, c := range calls {
		if !domain.IsHandoff(c.Name) {
			continue
		}
		if len(calls) > 1 {
			p.logger.Warn("dropping tool calls issued alongside a handoff", "handoff", c.Name, "dropped", len(calls)-1)
		}
		sig, err := domain.DecodeHandoff(c.Name, c.Args)
		if err != nil {
			return nil, err
		}
		return domain.Handoff{CallID: c.ID, Signal: sig}, nil
	}

	return domain.ToolCalls{Calls: calls, Text: msg.Content}, nil
}

func decodeArguments(raw string) (map[string]any, error) {
	if raw == "" {
		return map[string]any{}, nil
	}
	var args map[string]any
	if err := json.Unmarshal([]byte(raw), &args); err != nil {
		return nil, fmt.Errorf("invalid arguments: %w", err)
	}
	if args == nil {
		args = map[string]any{}
	}
	return args, nil
}

// MakeMessages converts a session history into chat messages, with the agent
// instructions as the leading system message.
func MakeMessages(instructions string, history []domain.Message) []go_openai.ChatCompletionMessage {
	msgs := make([]go_openai.ChatCompletionMessage, 0, len(history)+1)
	if instructions != "" {
		msgs = append(msgs, go_openai.ChatCompletionMessage{
			Role:    go_openai.ChatMessageRoleSystem,
			Content: instructions,
		})
	}

	for _, m := range history {
		switch m.Role {
		case domain.RoleUser:
			msgs = append(msgs, go_openai.ChatCompletionMessage{
				Role:    go_openai.ChatMessageRoleUser,
				Content: m.Content,
			})
		case domain.RoleAssistant:
			out := go_openai.ChatCompletionMessage{
				Role:    go_openai.ChatMessageRoleAssistant,
				Content: m.Content,
			}
			for _, c := range m.ToolCalls {
				out.ToolCalls = append(out.ToolCalls, go_openai.ToolCall{
					ID:   c.ID,
					Type: go_openai.ToolTypeFunction,
					Function: go_openai.FunctionCall{
						Name:      c.Name,
						Arguments: encodeArguments(c.Args),
					},
				})
			}
			msgs = append(msgs, out)
		case domain.RoleTool:
			msgs = append(msgs, go_openai.ChatCompletionMessage{
				Role:       go_openai.ChatMessageRoleTool,
				Content:    m.Content,
				ToolCallID: m.ToolCallID,
			})
		case domain.RoleSystem:
			msgs = append(msgs, go_openai.ChatCompletionMessage{
				Role:    go_openai.ChatMessageRoleSystem,
				Content: m.Content,
			})
		}
	}
	return msgs
}

func encodeArguments(args map[string]any) string {
	if len(args) == 0 {
		return "{}"
	}
	b, err := json.Marshal(args)
	if err != nil {
		return "{}"
	}
	return string(b)
}

// MakeTools converts descriptors into function definitions.
func MakeTools(descriptors []domain.ToolDescriptor) []go_openai.Tool {
	tools := make([]go_openai.Tool, 0, len(descriptors))
	for _, d := range descriptors {
		var params any = map[string]any{"type": "object", "properties": map[string]any{}}
		if d.Parameters != nil {
			params = d.Parameters
		}
		tools = append(tools, go_openai.Tool{
			Type: go_openai.ToolTypeFunction,
			Function: &go_openai.FunctionDefinition{
				Name:        d.Name,
				Description: d.Description,
				Parameters:  params,
			},
		})
	}
	return tools
}
