package reasoning

import (
	"context"
	"fmt"

	"github.com/hupe1980/agentforge/internal/schema"
)

// Request captures one prompt for the reasoning service. Zero values for
// Model, Temperature and MaxTokens mean "use the adapter default"; callers
// that need a specific sampling profile (the worker factory's per-archetype
// rules, for example) set them explicitly.
type Request struct {
	Prompt      string  `json:"prompt"`
	System      string  `json:"system,omitempty"`
	Model       string  `json:"model,omitempty"`
	Temperature float64 `json:"temperature,omitempty"`
	MaxTokens   int64   `json:"max_tokens,omitempty"`
}

// Usage captures token usage statistics for a response.
type Usage struct {
	InputTokens  int64 `json:"input_tokens"`
	OutputTokens int64 `json:"output_tokens"`
}

// TotalTokens returns the combined input and output token count.
func (u Usage) TotalTokens() int64 { return u.InputTokens + u.OutputTokens }

// Response is the final completion returned by a provider.
type Response struct {
	Text  string `json:"text"`
	Model string `json:"model"`
	Usage Usage  `json:"usage"`
}

// Service is the minimal interface the orchestration core requires from a
// reasoning provider. Implementations must honor context cancellation.
type Service interface {
	CompleteText(ctx context.Context, req Request) (*Response, error)

	// Provider identifies the backing implementation ("openai",
	// "anthropic", "mock", etc.) for logs and metrics.
	Provider() string
}

// Structured issues a completion and decodes the first JSON object in the
// response into T. Models often wrap payloads in markdown fences or prose;
// both are tolerated. A response without a decodable object is an error the
// caller maps to its own failure taxonomy.
func Structured[T any](ctx context.Context, svc Service, req Request) (*T, error) {
	resp, err := svc.CompleteText(ctx, req)
	if err != nil {
		return nil, err
	}

	var out T
	if err := schema.Decode(resp.Text, &out); err != nil {
		return nil, fmt.Errorf("structured completion: %w", err)
	}
	return &out, nil
}

// DescribeSchema renders the expected response shape of T as compact JSON
// for inlining into prompts, so the model returns a parseable object.
func DescribeSchema[T any]() string {
	var zero T
	return schema.Describe(zero)
}
