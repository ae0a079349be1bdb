// Package openai adapts the OpenAI Chat Completions API to the
// reasoning.Service interface used by the orchestration core.
package openai

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"

	"github.com/hupe1980/agentforge/reasoning"
)

// Options configure the OpenAI reasoning adapter. Fields act as defaults;
// individual requests may override model and temperature.
type Options struct {
	Model               string
	Temperature         float64
	MaxCompletionTokens int64
}

// Service wraps the OpenAI Chat Completions API behind reasoning.Service.
type Service struct {
	client *openai.Client
	opts   Options
}

// NewService creates a new OpenAI service using the official client, which
// reads its API key from the environment.
func NewService(optFns ...func(o *Options)) *Service {
	client := openai.NewClient()
	return NewServiceFromClient(&client, optFns...)
}

// NewServiceFromClient creates a new OpenAI service from an existing client.
func NewServiceFromClient(client *openai.Client, optFns ...func(o *Options)) *Service {
	opts := Options{
		Model:               openai.ChatModelGPT4oMini,
		Temperature:         0.7,
		MaxCompletionTokens: 4096,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Service{client: client, opts: opts}
}

// CompleteText implements reasoning.Service.
func (s *Service) CompleteText(ctx context.Context, req reasoning.Request) (*reasoning.Response, error) {
	var messages []openai.ChatCompletionMessageParamUnion
	if req.System != "" {
		messages = append(messages, openai.SystemMessage(req.System))
	}
	messages = append(messages, openai.UserMessage(req.Prompt))

	model := s.opts.Model
	if req.Model != "" {
		model = req.Model
	}
	temperature := s.opts.Temperature
	if req.Temperature > 0 {
		temperature = req.Temperature
	}
	maxTokens := s.opts.MaxCompletionTokens
	if req.MaxTokens > 0 {
		maxTokens = req.MaxTokens
	}

	resp, err := s.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages:            messages,
		Model:               model,
		Temperature:         openai.Float(temperature),
		MaxCompletionTokens: openai.Int(maxTokens),
	})
	if err != nil {
		return nil, fmt.Errorf("openai api error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("openai: no choices returned")
	}

	return &reasoning.Response{
		Text:  resp.Choices[0].Message.Content,
		Model: resp.Model,
		Usage: reasoning.Usage{
			InputTokens:  resp.Usage.PromptTokens,
			OutputTokens: resp.Usage.CompletionTokens,
		},
	}, nil
}

// Provider implements reasoning.Service.
func (s *Service) Provider() string { return "openai" }
