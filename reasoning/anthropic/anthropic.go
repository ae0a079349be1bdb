// Package anthropic adapts the Anthropic Messages API to the
// reasoning.Service interface used by the orchestration core.
package anthropic

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/hupe1980/agentforge/reasoning"
)

// Options configure the Anthropic reasoning adapter (model id, temperature,
// max tokens, API key). Fields act as defaults; individual requests may
// override model and temperature.
type Options struct {
	Model       anthropic.Model
	Temperature float64
	MaxTokens   int64
	APIKey      string
}

// Service wraps the Anthropic Messages API behind reasoning.Service.
type Service struct {
	client *anthropic.Client
	opts   Options
}

// NewService creates a new Anthropic service using the official client.
func NewService(optFns ...func(o *Options)) *Service {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}

	var clientOpts []option.RequestOption
	if opts.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(opts.APIKey))
	}
	client := anthropic.NewClient(clientOpts...)

	return &Service{client: &client, opts: opts}
}

// NewServiceFromClient creates a new Anthropic service from an existing client.
func NewServiceFromClient(client *anthropic.Client, optFns ...func(o *Options)) *Service {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Service{client: client, opts: opts}
}

func defaultOptions() Options {
	return Options{
		Model:       anthropic.ModelClaude3_5Sonnet20241022,
		Temperature: 0.7,
		MaxTokens:   4096,
	}
}

// CompleteText implements reasoning.Service.
func (s *Service) CompleteText(ctx context.Context, req reasoning.Request) (*reasoning.Response, error) {
	model := s.opts.Model
	if req.Model != "" {
		model = anthropic.Model(req.Model)
	}
	temperature := s.opts.Temperature
	if req.Temperature > 0 {
		temperature = req.Temperature
	}
	maxTokens := s.opts.MaxTokens
	if req.MaxTokens > 0 {
		maxTokens = req.MaxTokens
	}

	params := anthropic.MessageNewParams{
		Model:       model,
		Messages:    []anthropic.MessageParam{anthropic.NewUserMessage(anthropic.NewTextBlock(req.Prompt))},
		MaxTokens:   maxTokens,
		Temperature: anthropic.Float(temperature),
	}
	if req.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.System}}
	}

	resp, err := s.client.Messages.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("anthropic api error: %w", err)
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.AsText().Text)
		}
	}

	return &reasoning.Response{
		Text:  text.String(),
		Model: string(resp.Model),
		Usage: reasoning.Usage{
			InputTokens:  resp.Usage.InputTokens,
			OutputTokens: resp.Usage.OutputTokens,
		},
	}, nil
}

// Provider implements reasoning.Service.
func (s *Service) Provider() string { return "anthropic" }
